// Package wizard holds the step-by-step state a host builds up before an
// invitation is created.
package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

type Step string

const (
	StepEventType Step = "event-type"
	StepDetails   Step = "details"
	StepTheme     Step = "theme"
	StepGallery   Step = "gallery"
	StepMusic     Step = "music"
	StepRSVP      Step = "rsvp"
	// StepReview follows the last step; only submit remains.
	StepReview Step = "review"
)

// Steps lists the editable steps in the order the wizard visits them.
var Steps = []Step{StepEventType, StepDetails, StepTheme, StepGallery, StepMusic, StepRSVP}

func (s Step) index() int {
	if s == StepReview {
		return len(Steps)
	}
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

func ParseStep(s string) (Step, bool) {
	step := Step(s)
	if i := step.index(); i < 0 || i == len(Steps) {
		return "", false
	}
	return step, true
}

type Gallery struct {
	Enabled bool `json:"enabled"`
}

type Music struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
}

type RSVP struct {
	Enabled      bool   `json:"enabled"`
	Deadline     string `json:"deadline,omitempty"`
	GiftInfo     string `json:"giftInfo,omitempty"`
	CustomPhrase string `json:"customPhrase,omitempty"`
}

// Style is the payload of the theme step. Feature toggles come from the
// later steps.
type Style struct {
	PrimaryColor    *string `json:"primaryColor,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	TextColor       *string `json:"textColor,omitempty"`
	Font            *string `json:"font,omitempty"`
	BackgroundImage *string `json:"backgroundImage,omitempty"`
}

type eventTypePayload struct {
	EventType domain.EventType `json:"eventType"`
}

// State is one host's wizard progress. The zero value is a fresh wizard.
type State struct {
	Current   Step                 `json:"current"`
	EventType domain.EventType     `json:"eventType,omitempty"`
	Details   *domain.EventDetails `json:"details,omitempty"`
	Style     *Style               `json:"style,omitempty"`
	Gallery   *Gallery             `json:"gallery,omitempty"`
	Music     *Music               `json:"music,omitempty"`
	RSVP      *RSVP                `json:"rsvp,omitempty"`
}

// Step is the step the host is on.
func (s *State) Step() Step {
	if s.Current == "" {
		return StepEventType
	}
	return s.Current
}

// Apply validates payload for step, stores it and moves to the next step when
// step is the current one. Earlier steps can be revisited; later ones cannot.
func (s *State) Apply(step Step, payload json.RawMessage) error {
	idx := step.index()
	if idx < 0 || idx == len(Steps) {
		return domain.Invalid("step", fmt.Sprintf("unknown step %q", step))
	}
	if idx > s.Step().index() {
		return domain.Invalid("step", fmt.Sprintf("complete %q first", s.Step()))
	}

	var err error
	switch step {
	case StepEventType:
		err = s.applyEventType(payload)
	case StepDetails:
		err = s.applyDetails(payload)
	case StepTheme:
		err = s.applyStyle(payload)
	case StepGallery:
		var g Gallery
		if err = decode(payload, &g); err == nil {
			s.Gallery = &g
		}
	case StepMusic:
		err = s.applyMusic(payload)
	case StepRSVP:
		err = s.applyRSVP(payload)
	}
	if err != nil {
		return err
	}

	if step == s.Step() {
		s.Current = next(step)
	}
	return nil
}

func next(step Step) Step {
	i := step.index() + 1
	if i >= len(Steps) {
		return StepReview
	}
	return Steps[i]
}

func decode(payload json.RawMessage, v any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return domain.Invalid("", "request body is required")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("", "invalid JSON: "+err.Error())
	}
	return nil
}

func (s *State) applyEventType(payload json.RawMessage) error {
	var p eventTypePayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	et, ok := domain.ParseEventType(string(p.EventType))
	if !ok {
		return domain.Invalid("eventType", "must be one of BIRTHDAY, QUINCE, WEDDING")
	}
	s.EventType = et
	return nil
}

func (s *State) applyDetails(payload json.RawMessage) error {
	var d domain.EventDetails
	if err := decode(payload, &d); err != nil {
		return err
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return err
	}
	s.Details = &d
	return nil
}

func (s *State) applyStyle(payload json.RawMessage) error {
	var st Style
	if err := decode(payload, &st); err != nil {
		return err
	}
	if err := domain.ValidateTheme(st.config()); err != nil {
		return err
	}
	s.Style = &st
	return nil
}

func (s *State) applyMusic(payload json.RawMessage) error {
	var m Music
	if err := decode(payload, &m); err != nil {
		return err
	}
	if m.Enabled && m.URL == "" {
		return domain.Invalid("url", "is required when music is enabled")
	}
	if err := (domain.Content{MusicURL: m.URL}).Validate(); err != nil {
		return err
	}
	s.Music = &m
	return nil
}

func (s *State) applyRSVP(payload json.RawMessage) error {
	var r RSVP
	if err := decode(payload, &r); err != nil {
		return err
	}
	c := domain.Content{RSVPDeadline: r.Deadline, GiftInfo: r.GiftInfo, CustomPhrase: r.CustomPhrase}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	r.Deadline, r.GiftInfo, r.CustomPhrase = c.RSVPDeadline, c.GiftInfo, c.CustomPhrase
	s.RSVP = &r
	return nil
}

// Back moves to the previous step. Data entered so far is kept.
func (s *State) Back() {
	if i := s.Step().index(); i > 0 {
		s.Current = Steps[i-1]
	}
}

func (s *State) Reset() {
	*s = State{}
}

func (st *Style) config() theme.Config {
	if st == nil {
		return theme.Config{}
	}
	return theme.Config{
		PrimaryColor:    st.PrimaryColor,
		BackgroundColor: st.BackgroundColor,
		TextColor:       st.TextColor,
		Font:            st.Font,
		BackgroundImage: st.BackgroundImage,
	}
}

func ptr[T any](v T) *T { return &v }

// ThemeConfig is the stored configuration the wizard has built so far.
func (s *State) ThemeConfig() theme.Config {
	cfg := s.Style.config()
	if s.Gallery != nil {
		cfg.Features.Gallery = ptr(s.Gallery.Enabled)
	}
	if s.Music != nil {
		cfg.Features.Music = ptr(s.Music.Enabled)
	}
	if s.RSVP != nil {
		cfg.Features.RSVP = ptr(s.RSVP.Enabled)
		cfg.Features.GiftInfo = ptr(s.RSVP.GiftInfo != "")
		cfg.Features.CustomPhrase = ptr(s.RSVP.CustomPhrase != "")
	}
	return cfg
}

// Preview resolves the in-progress theme.
func (s *State) Preview() theme.Theme {
	cfg := s.ThemeConfig()
	return theme.Resolve(&cfg)
}

// ToCreateInput converts the state into an invitation create request. The
// event type and details steps are required; the rest fall back to defaults.
func (s *State) ToCreateInput() (*domain.CreateInvitationInput, error) {
	if s.EventType == "" {
		return nil, domain.Invalid("step", "event-type is required")
	}
	if s.Details == nil {
		return nil, domain.Invalid("step", "details is required")
	}

	in := &domain.CreateInvitationInput{
		EventType: s.EventType,
		Details:   *s.Details,
		Theme:     s.ThemeConfig(),
	}
	if s.Music != nil && s.Music.Enabled {
		in.Content.MusicURL = s.Music.URL
	}
	if s.RSVP != nil {
		in.Content.RSVPDeadline = s.RSVP.Deadline
		in.Content.GiftInfo = s.RSVP.GiftInfo
		in.Content.CustomPhrase = s.RSVP.CustomPhrase
	}
	return in, nil
}
