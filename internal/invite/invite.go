// Package invite issues and checks the signed links that let a respondent
// open a survey.
package invite

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an invitation stays valid when none is configured.
const DefaultTTL = 30 * 24 * time.Hour

var (
	// ErrInvalid is returned for tokens that fail signature or expiry checks.
	ErrInvalid = errors.New("invite: invalid token")
	// ErrWrongSurvey is returned when a valid token names another survey.
	ErrWrongSurvey = errors.New("invite: token is for a different survey")
	// ErrDisabled is returned by Issue when no secret is configured.
	ErrDisabled = errors.New("invite: no token secret configured")
)

// Claims identify the survey and, optionally, the respondent.
type Claims struct {
	SurveyID   string `json:"sid"`
	Respondent string `json:"resp,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs invitations with HS256. A manager without a secret is open:
// every request is admitted and nothing can be issued.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a manager. ttl <= 0 selects DefaultTTL.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Open reports whether the manager admits requests without a token.
func (m *Manager) Open() bool { return len(m.secret) == 0 }

// Issue returns a token for surveyID and respondent.
func (m *Manager) Issue(surveyID, respondent string) (string, error) {
	if m.Open() {
		return "", ErrDisabled
	}
	now := m.now()
	claims := Claims{
		SurveyID:   surveyID,
		Respondent: respondent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   respondent,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("invite: sign: %w", err)
	}
	return signed, nil
}

// Parse validates token and returns its claims.
func (m *Manager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims, ok := parsed.Claims.(*Claims); ok && parsed.Valid {
		return claims, nil
	}
	return nil, ErrInvalid
}

// Check admits token for surveyID. Open managers admit everything and
// return nil claims.
func (m *Manager) Check(token, surveyID string) (*Claims, error) {
	if m.Open() {
		return nil, nil
	}
	claims, err := m.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.SurveyID != surveyID {
		return nil, ErrWrongSurvey
	}
	return claims, nil
}
