package wizard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/wizard"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func completeState(t *testing.T) *wizard.State {
	t.Helper()
	s := &wizard.State{}
	require.NoError(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"wedding"}`)))
	require.NoError(t, s.Apply(wizard.StepDetails, raw(`{"title":"Boda Juan & María","eventDate":"2026-12-12"}`)))
	require.NoError(t, s.Apply(wizard.StepTheme, raw(`{"primaryColor":"#112233","font":"lora"}`)))
	require.NoError(t, s.Apply(wizard.StepGallery, raw(`{"enabled":false}`)))
	require.NoError(t, s.Apply(wizard.StepMusic, raw(`{"enabled":true,"url":"https://example.com/song.mp3"}`)))
	require.NoError(t, s.Apply(wizard.StepRSVP, raw(`{"enabled":true,"deadline":"2026-11-30","giftInfo":"Mesa de regalos"}`)))
	return s
}

func TestStepsAdvanceInOrder(t *testing.T) {
	s := &wizard.State{}

	err := s.Apply(wizard.StepDetails, raw(`{"title":"x"}`))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "step", ve.Field)

	require.NoError(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"BIRTHDAY"}`)))
	require.Equal(t, wizard.StepDetails, s.Current)

	// Revisiting an earlier step keeps the position.
	require.NoError(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"QUINCE"}`)))
	require.Equal(t, wizard.StepDetails, s.Current)
	require.Equal(t, domain.EventQuince, s.EventType)

	s = completeState(t)
	require.Equal(t, wizard.StepReview, s.Current)
}

func TestApplyValidatesPayload(t *testing.T) {
	s := &wizard.State{}
	var ve *domain.ValidationError

	require.ErrorAs(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"PARTY"}`)), &ve)
	require.ErrorAs(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"WEDDING","extra":1}`)), &ve)
	require.ErrorAs(t, s.Apply(wizard.StepEventType, raw(``)), &ve)
	require.ErrorAs(t, s.Apply("confetti", raw(`{}`)), &ve)
	require.Equal(t, wizard.StepEventType, s.Step())

	require.NoError(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"WEDDING"}`)))
	require.ErrorAs(t, s.Apply(wizard.StepDetails, raw(`{"title":""}`)), &ve)
	require.Equal(t, "title", ve.Field)
	require.NoError(t, s.Apply(wizard.StepDetails, raw(`{"title":"Boda"}`)))

	require.ErrorAs(t, s.Apply(wizard.StepTheme, raw(`{"primaryColor":"red;}"}`)), &ve)
	require.Equal(t, "primaryColor", ve.Field)
	require.NoError(t, s.Apply(wizard.StepTheme, raw(`{}`)))
	require.NoError(t, s.Apply(wizard.StepGallery, raw(`{"enabled":true}`)))

	require.ErrorAs(t, s.Apply(wizard.StepMusic, raw(`{"enabled":true}`)), &ve)
	require.Equal(t, "url", ve.Field)
}

func TestBackAndReset(t *testing.T) {
	s := &wizard.State{}
	s.Back()
	require.Equal(t, wizard.StepEventType, s.Step())

	require.NoError(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"WEDDING"}`)))
	s.Back()
	require.Equal(t, wizard.StepEventType, s.Current)
	require.Equal(t, domain.EventWedding, s.EventType)

	s.Reset()
	require.Equal(t, wizard.State{}, *s)
}

func TestToCreateInput(t *testing.T) {
	s := &wizard.State{}
	_, err := s.ToCreateInput()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	require.NoError(t, s.Apply(wizard.StepEventType, raw(`{"eventType":"WEDDING"}`)))
	_, err = s.ToCreateInput()
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Message, "details")

	in, err := completeState(t).ToCreateInput()
	require.NoError(t, err)
	require.NoError(t, in.Validate())
	require.Equal(t, domain.EventWedding, in.EventType)
	require.Equal(t, "https://example.com/song.mp3", in.Content.MusicURL)
	require.Equal(t, "2026-11-30", in.Content.RSVPDeadline)

	resolved := theme.Resolve(&in.Theme)
	require.False(t, resolved.Features.Gallery)
	require.True(t, resolved.Features.Music)
	require.True(t, resolved.Features.GiftInfo)
	require.False(t, resolved.Features.CustomPhrase)
	require.Equal(t, "lora", resolved.Font.ID)
}

func TestPreview(t *testing.T) {
	require.Equal(t, theme.Default, (&wizard.State{}).Preview())

	p := completeState(t).Preview()
	require.Equal(t, "#112233", p.PrimaryColor)
}

func TestStoreRoundTrip(t *testing.T) {
	store := wizard.NewStore(config.SessionConfig{Key: "0123456789abcdef0123456789abcdef", MaxAge: time.Hour})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/wizard/steps/details", nil)
	require.NoError(t, store.Save(rec, req, completeState(t)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/wizard", nil)
	next.AddCookie(cookies[0])
	loaded := store.Load(next)
	require.Equal(t, wizard.StepReview, loaded.Current)
	require.Equal(t, "Boda Juan & María", loaded.Details.Title)

	// A cookie signed with another key is ignored. Sessions are cached per
	// request, so the other store reads from a request of its own.
	other := wizard.NewStore(config.SessionConfig{Key: "another-key-another-key-another-k", MaxAge: time.Hour})
	foreign := httptest.NewRequest(http.MethodGet, "/wizard", nil)
	foreign.AddCookie(cookies[0])
	require.Equal(t, &wizard.State{}, other.Load(foreign))

	rec = httptest.NewRecorder()
	require.NoError(t, store.Clear(rec, next))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Less(t, cleared[0].MaxAge, 0)
}

func TestStoreRejectsOversizedState(t *testing.T) {
	store := wizard.NewStore(config.SessionConfig{Key: "0123456789abcdef0123456789abcdef", MaxAge: time.Hour})

	// Every field is within its own limit; together they do not fit a cookie.
	state := completeState(t)
	state.Details.VenueAddress = strings.Repeat("Calle ", domain.MaxAddressLength/6)
	state.RSVP.GiftInfo = strings.Repeat("& ", domain.MaxGiftInfoLength/2)
	require.NoError(t, state.Details.Validate())

	rec := httptest.NewRecorder()
	err := store.Save(rec, httptest.NewRequest(http.MethodPut, "/wizard/steps/rsvp", nil), state)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, rec.Result().Cookies())
}

func TestStoreFitsStateAtLimit(t *testing.T) {
	store := wizard.NewStore(config.SessionConfig{Key: "0123456789abcdef0123456789abcdef", MaxAge: time.Hour})

	state := completeState(t)
	base, err := json.Marshal(state)
	require.NoError(t, err)
	state.Details.HonoreeNames = strings.Repeat("a", wizard.MaxStateBytes-len(base))
	encoded, err := json.Marshal(state)
	require.NoError(t, err)
	require.Len(t, encoded, wizard.MaxStateBytes)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodPut, "/wizard/steps/details", nil), state))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.LessOrEqual(t, len(cookies[0].Value), 4096)
}
