package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cris-imc/invitaciones-sub002/pkg/textutil"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

type EventType string

const (
	EventBirthday EventType = "BIRTHDAY"
	EventQuince   EventType = "QUINCE"
	EventWedding  EventType = "WEDDING"
)

func ParseEventType(s string) (EventType, bool) {
	switch EventType(strings.ToUpper(strings.TrimSpace(s))) {
	case EventBirthday:
		return EventBirthday, true
	case EventQuince:
		return EventQuince, true
	case EventWedding:
		return EventWedding, true
	default:
		return "", false
	}
}

// Label is the human name used in page titles and emails.
func (t EventType) Label() string {
	switch t {
	case EventBirthday:
		return "Cumpleaños"
	case EventQuince:
		return "XV Años"
	case EventWedding:
		return "Boda"
	default:
		return string(t)
	}
}

const DateLayout = "2006-01-02"

// Text limits in bytes. They keep a whole invitation small enough to travel
// in the wizard cookie.
const (
	MaxTitleLength    = 200
	MaxNameLength     = 200
	MaxAddressLength  = 300
	MaxShortLength    = 100
	MaxURLLength      = 500
	MaxGiftInfoLength = 800
	MaxPhraseLength   = 300
)

type lengthLimit struct {
	field string
	value string
	max   int
}

func checkLengths(limits []lengthLimit) error {
	for _, l := range limits {
		if len(l.value) > l.max {
			return Invalid(l.field, fmt.Sprintf("must be at most %d characters", l.max))
		}
	}
	return nil
}

type EventDetails struct {
	Title        string `json:"title"`
	HonoreeNames string `json:"honoreeNames"`
	EventDate    string `json:"eventDate"`
	EventTime    string `json:"eventTime"`
	VenueName    string `json:"venueName"`
	VenueAddress string `json:"venueAddress"`
	MapURL       string `json:"mapUrl"`
	DressCode    string `json:"dressCode"`
}

func (d *EventDetails) Normalize() {
	d.Title = textutil.NormalizeString(d.Title)
	d.HonoreeNames = textutil.NormalizeString(d.HonoreeNames)
	d.EventDate = strings.TrimSpace(d.EventDate)
	d.EventTime = strings.TrimSpace(d.EventTime)
	d.VenueName = textutil.NormalizeString(d.VenueName)
	d.VenueAddress = textutil.NormalizeString(d.VenueAddress)
	d.MapURL = strings.TrimSpace(d.MapURL)
	d.DressCode = textutil.NormalizeString(d.DressCode)
}

func (d EventDetails) Validate() error {
	if d.Title == "" {
		return Invalid("title", "is required")
	}
	if err := checkLengths([]lengthLimit{
		{"title", d.Title, MaxTitleLength},
		{"honoreeNames", d.HonoreeNames, MaxNameLength},
		{"eventTime", d.EventTime, MaxShortLength},
		{"venueName", d.VenueName, MaxNameLength},
		{"venueAddress", d.VenueAddress, MaxAddressLength},
		{"mapUrl", d.MapURL, MaxURLLength},
		{"dressCode", d.DressCode, MaxShortLength},
	}); err != nil {
		return err
	}
	if d.EventDate != "" {
		if _, err := time.Parse(DateLayout, d.EventDate); err != nil {
			return Invalid("eventDate", "must be a date in YYYY-MM-DD format")
		}
	}
	if d.MapURL != "" && !isHTTPURL(d.MapURL) {
		return Invalid("mapUrl", "must be an http(s) URL")
	}
	return nil
}

// Date parses EventDate; ok is false when it is empty or malformed.
func (d EventDetails) Date() (time.Time, bool) {
	t, err := time.Parse(DateLayout, d.EventDate)
	return t, err == nil
}

// Content is the text and media behind the feature toggles.
type Content struct {
	MusicURL     string `json:"musicUrl"`
	GiftInfo     string `json:"giftInfo"`
	CustomPhrase string `json:"customPhrase"`
	RSVPDeadline string `json:"rsvpDeadline"`
}

func (c *Content) Normalize() {
	c.MusicURL = strings.TrimSpace(c.MusicURL)
	c.GiftInfo = strings.TrimSpace(c.GiftInfo)
	c.CustomPhrase = strings.TrimSpace(c.CustomPhrase)
	c.RSVPDeadline = strings.TrimSpace(c.RSVPDeadline)
}

func (c Content) Validate() error {
	if err := checkLengths([]lengthLimit{
		{"musicUrl", c.MusicURL, MaxURLLength},
		{"giftInfo", c.GiftInfo, MaxGiftInfoLength},
		{"customPhrase", c.CustomPhrase, MaxPhraseLength},
	}); err != nil {
		return err
	}
	if c.MusicURL != "" && !isHTTPURL(c.MusicURL) && !strings.HasPrefix(c.MusicURL, "/") {
		return Invalid("musicUrl", "must be an http(s) URL or an uploaded file path")
	}
	if c.RSVPDeadline != "" {
		if _, err := time.Parse(DateLayout, c.RSVPDeadline); err != nil {
			return Invalid("rsvpDeadline", "must be a date in YYYY-MM-DD format")
		}
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type Invitation struct {
	ID        int64        `json:"id"`
	Slug      string       `json:"slug"`
	EventType EventType    `json:"eventType"`
	Details   EventDetails `json:"details"`
	Theme     theme.Config `json:"theme"`
	Content   Content      `json:"content"`
	OwnerID   *int64       `json:"ownerId,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ResolvedTheme is the render-ready theme of the invitation.
func (i *Invitation) ResolvedTheme() theme.Theme {
	return theme.Resolve(&i.Theme)
}

type CreateInvitationInput struct {
	Slug      string       `json:"slug"`
	EventType EventType    `json:"eventType"`
	Details   EventDetails `json:"details"`
	Theme     theme.Config `json:"theme"`
	Content   Content      `json:"content"`
}

func (in *CreateInvitationInput) Normalize() {
	in.Slug = strings.TrimSpace(in.Slug)
	if et, ok := ParseEventType(string(in.EventType)); ok {
		in.EventType = et
	}
	in.Details.Normalize()
	in.Content.Normalize()
}

func (in CreateInvitationInput) Validate() error {
	if _, ok := ParseEventType(string(in.EventType)); !ok {
		return Invalid("eventType", "must be one of BIRTHDAY, QUINCE, WEDDING")
	}
	if err := in.Details.Validate(); err != nil {
		return err
	}
	if err := ValidateTheme(in.Theme); err != nil {
		return err
	}
	return in.Content.Validate()
}

// ValidateTheme rejects values a host typed wrong. Resolve would silently
// fall back, which hides the mistake from the wizard.
func ValidateTheme(c theme.Config) error {
	colors := []struct {
		field string
		value *string
	}{
		{"primaryColor", c.PrimaryColor},
		{"backgroundColor", c.BackgroundColor},
		{"textColor", c.TextColor},
	}
	for _, col := range colors {
		if col.value != nil && *col.value != "" && !theme.ValidColor(strings.TrimSpace(*col.value)) {
			return Invalid(col.field, "must be a CSS color")
		}
	}
	if c.BackgroundImage != nil && len(*c.BackgroundImage) > MaxURLLength {
		return Invalid("backgroundImage", fmt.Sprintf("must be at most %d characters", MaxURLLength))
	}
	if c.Font != nil && *c.Font != "" && !theme.KnownFont(*c.Font) {
		return Invalid("font", "is not a known font")
	}
	return nil
}

// InvitationPatch updates an invitation. Details and content are replaced as
// a whole when present; theme fields are merged one by one.
type InvitationPatch struct {
	EventType *EventType    `json:"eventType,omitempty"`
	Details   *EventDetails `json:"details,omitempty"`
	Theme     *theme.Config `json:"theme,omitempty"`
	Content   *Content      `json:"content,omitempty"`
}

func (p *InvitationPatch) Normalize() {
	if p.EventType != nil {
		if et, ok := ParseEventType(string(*p.EventType)); ok {
			p.EventType = &et
		}
	}
	if p.Details != nil {
		p.Details.Normalize()
	}
	if p.Content != nil {
		p.Content.Normalize()
	}
}

func (p InvitationPatch) Validate() error {
	if p.EventType != nil {
		if _, ok := ParseEventType(string(*p.EventType)); !ok {
			return Invalid("eventType", "must be one of BIRTHDAY, QUINCE, WEDDING")
		}
	}
	if p.Details != nil {
		if err := p.Details.Validate(); err != nil {
			return err
		}
	}
	if p.Theme != nil {
		if err := ValidateTheme(*p.Theme); err != nil {
			return err
		}
	}
	if p.Content != nil {
		return p.Content.Validate()
	}
	return nil
}

// Apply writes the patch onto inv.
func (p InvitationPatch) Apply(inv *Invitation) {
	if p.EventType != nil {
		inv.EventType = *p.EventType
	}
	if p.Details != nil {
		inv.Details = *p.Details
	}
	if p.Theme != nil {
		inv.Theme = inv.Theme.Merge(*p.Theme)
	}
	if p.Content != nil {
		inv.Content = *p.Content
	}
}

type GuestCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Declined  int `json:"declined"`
	Expected  int `json:"expected"`
	Attending int `json:"attending"`
}

type RSVPCounts struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
	Declined  int `json:"declined"`
	// ConfirmedAttendees counts each confirming respondent plus companions.
	ConfirmedAttendees int `json:"confirmedAttendees"`
}

type Dashboard struct {
	InvitationID  int64       `json:"invitationId"`
	Slug          string      `json:"slug"`
	Guests        GuestCounts `json:"guests"`
	RSVPs         RSVPCounts  `json:"rsvps"`
	PendingPhotos int         `json:"pendingPhotos"`
}
