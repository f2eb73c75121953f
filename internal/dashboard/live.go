package dashboard

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/survey"
)

const liveWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// answerEvent is one change made by the respondent. Values is used for
// checkbox questions, Value for everything else.
type answerEvent struct {
	QuestionID string   `json:"questionId"`
	Value      string   `json:"value"`
	Values     []string `json:"values"`
	Clear      bool     `json:"clear"`
}

// handleSurveyLive upgrades to a websocket bound to one respondent session.
// Every answer event is answered with the visible questions and progress.
func (s *server) handleSurveyLive(c *gin.Context) {
	_, sv, err := db.GetTemplate(s.db, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess := survey.NewSession(sv)
	if err := writeState(conn, stateOf(sess)); err != nil {
		return
	}

	for {
		var ev answerEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("dashboard: websocket: %v", err)
			}
			return
		}
		state := stateOf(sess)
		if err := applyAnswer(sess, ev); err != nil {
			state.Error = err.Error()
		} else {
			state = stateOf(sess)
		}
		if err := writeState(conn, state); err != nil {
			return
		}
	}
}

func applyAnswer(sess *survey.Session, ev answerEvent) error {
	q, ok := sess.Survey().Question(ev.QuestionID)
	if !ok {
		return survey.ErrQuestionNotFound
	}
	switch {
	case ev.Clear:
		sess.Clear(q.ID)
		return nil
	case q.IsMultiple():
		return sess.Set(q.ID, survey.Multi(ev.Values...))
	default:
		return sess.Set(q.ID, survey.Single(ev.Value))
	}
}

func writeState(conn *websocket.Conn, state visibility) error {
	conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteJSON(state)
}
