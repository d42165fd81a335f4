package wizard

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

const (
	sessionName = "wizard"
	stateKey    = "state"
	// MaxStateBytes keeps the signed, twice base64-encoded cookie under the
	// 4096 bytes browsers and securecookie accept.
	MaxStateBytes = 2048
)

// Store keeps wizard state in a signed cookie, one per browser.
type Store struct {
	sessions sessions.Store
}

func NewStore(cfg config.SessionConfig) *Store {
	cs := sessions.NewCookieStore([]byte(cfg.Key))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{sessions: cs}
}

// Load returns the request's wizard state. A missing, expired or tampered
// cookie yields a fresh state.
func (s *Store) Load(r *http.Request) *State {
	state := &State{}

	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		logger.DebugContext(r.Context(), "Discarding unreadable wizard session", "error", err)
		return state
	}
	raw, ok := sess.Values[stateKey].(string)
	if !ok {
		return state
	}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		logger.WarnContext(r.Context(), "Discarding malformed wizard state", "error", err)
		return &State{}
	}
	return state
}

func (s *Store) Save(w http.ResponseWriter, r *http.Request, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode wizard state: %w", err)
	}
	if len(raw) > MaxStateBytes {
		return domain.Invalid("", "wizard content is too long, shorten the longer texts")
	}
	// Get returns a usable new session alongside a decode error.
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values[stateKey] = string(raw)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Options.MaxAge = -1
	delete(sess.Values, stateKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear wizard session: %w", err)
	}
	return nil
}
