package survey

// Session is one respondent filling in one survey. It holds the answers
// explicitly; nothing is shared between sessions.
type Session struct {
	survey  Survey
	answers Answers
}

// NewSession starts an empty session on s.
func NewSession(s Survey) *Session {
	return &Session{survey: s, answers: Answers{}}
}

// Survey returns the survey being answered.
func (s *Session) Survey() Survey { return s.survey }

// Set records a for question id.
func (s *Session) Set(id string, a Answer) error {
	if _, ok := s.survey.Question(id); !ok {
		return ErrQuestionNotFound
	}
	s.answers[id] = a
	return nil
}

// SetText records a single value, or the decoded set for checkbox
// questions.
func (s *Session) SetText(id, v string) error {
	q, ok := s.survey.Question(id)
	if !ok {
		return ErrQuestionNotFound
	}
	s.answers[id] = DecodeAnswer(v, q.IsMultiple())
	return nil
}

// Toggle selects or deselects option v of checkbox question id.
func (s *Session) Toggle(id, v string, on bool) error {
	if _, ok := s.survey.Question(id); !ok {
		return ErrQuestionNotFound
	}
	s.answers[id] = s.answers[id].Toggle(v, on)
	return nil
}

// Clear forgets the answer to id.
func (s *Session) Clear(id string) { delete(s.answers, id) }

// Answers returns a copy of the current answers.
func (s *Session) Answers() Answers {
	out := make(Answers, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Visible returns the questions currently shown.
func (s *Session) Visible() []Question {
	return VisibleQuestions(s.survey, s.answers)
}

// VisibleIDs returns the ids of Visible.
func (s *Session) VisibleIDs() []string {
	vis := s.Visible()
	ids := make([]string, len(vis))
	for i, q := range vis {
		ids[i] = q.ID
	}
	return ids
}

// Progress reports completion of the visible questions.
func (s *Session) Progress() Progress {
	return ProgressOf(s.survey, s.answers)
}

// Submission returns the wire answers of the visible questions only.
// Answers to questions hidden by later changes are left out.
func (s *Session) Submission() map[string]string {
	out := make(map[string]string)
	for _, q := range s.Visible() {
		if a, ok := s.answers[q.ID]; ok && !a.Empty() {
			out[q.ID] = a.Encode()
		}
	}
	return out
}

// Unanswered returns the ids of visible questions with no answer, in
// survey order.
func (s *Session) Unanswered() []string {
	var ids []string
	for _, q := range s.Visible() {
		if a, ok := s.answers[q.ID]; !ok || a.Empty() {
			ids = append(ids, q.ID)
		}
	}
	return ids
}
