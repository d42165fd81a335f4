package domain

import (
	"strings"
	"time"

	"github.com/cris-imc/invitaciones-sub002/pkg/textutil"
)

type GuestType string

const (
	GuestIndividual GuestType = "INDIVIDUAL"
	GuestFamily     GuestType = "FAMILY"
)

func ParseGuestType(s string) (GuestType, bool) {
	switch GuestType(strings.ToUpper(strings.TrimSpace(s))) {
	case GuestIndividual:
		return GuestIndividual, true
	case GuestFamily:
		return GuestFamily, true
	default:
		return "", false
	}
}

type GuestStatus string

const (
	GuestPending   GuestStatus = "PENDING"
	GuestConfirmed GuestStatus = "CONFIRMED"
	GuestDeclined  GuestStatus = "DECLINED"
)

func ParseGuestStatus(s string) (GuestStatus, bool) {
	switch GuestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case GuestPending:
		return GuestPending, true
	case GuestConfirmed:
		return GuestConfirmed, true
	case GuestDeclined:
		return GuestDeclined, true
	default:
		return "", false
	}
}

const (
	TokenLength      = 32
	MaxExpectedCount = 50
)

type Guest struct {
	ID             int64       `json:"id"`
	InvitationID   int64       `json:"invitationId"`
	Name           string      `json:"name"`
	Type           GuestType   `json:"type"`
	ExpectedCount  int         `json:"expectedCount"`
	Token          string      `json:"token"`
	Status         GuestStatus `json:"status"`
	AttendingCount int         `json:"attendingCount"`
	Message        string      `json:"message"`
	Email          string      `json:"email,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// GuestDTO is a guest as the host sees it, with the shareable link.
type GuestDTO struct {
	Guest
	Link string `json:"link"`
}

type GuestInput struct {
	Name          string    `json:"name"`
	Type          GuestType `json:"type"`
	ExpectedCount *int      `json:"expectedCount,omitempty"`
	Email         string    `json:"email"`
	Message       string    `json:"message"`
}

func (in *GuestInput) Normalize() {
	in.Name = textutil.NormalizeString(in.Name)
	in.Email = textutil.NormalizeEmail(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if in.Type == "" {
		in.Type = GuestIndividual
	} else if gt, ok := ParseGuestType(string(in.Type)); ok {
		in.Type = gt
	}
}

func (in GuestInput) Validate() error {
	if in.Name == "" {
		return Invalid("name", "is required")
	}
	if _, ok := ParseGuestType(string(in.Type)); !ok {
		return Invalid("type", "must be INDIVIDUAL or FAMILY")
	}
	if in.ExpectedCount != nil && (*in.ExpectedCount < 0 || *in.ExpectedCount > MaxExpectedCount) {
		return Invalid("expectedCount", "must be between 0 and 50")
	}
	if in.Email != "" && !textutil.IsValidEmail(in.Email) {
		return Invalid("email", "is not a valid email address")
	}
	return nil
}

// Expected returns the expected attendee count, defaulting to 1.
func (in GuestInput) Expected() int {
	if in.ExpectedCount == nil {
		return 1
	}
	return *in.ExpectedCount
}

type GuestPatch struct {
	Name           *string      `json:"name,omitempty"`
	Type           *GuestType   `json:"type,omitempty"`
	ExpectedCount  *int         `json:"expectedCount,omitempty"`
	AttendingCount *int         `json:"attendingCount,omitempty"`
	Status         *GuestStatus `json:"status,omitempty"`
	Message        *string      `json:"message,omitempty"`
	Email          *string      `json:"email,omitempty"`
}

func (p *GuestPatch) Normalize() {
	if p.Name != nil {
		v := textutil.NormalizeString(*p.Name)
		p.Name = &v
	}
	if p.Type != nil {
		if gt, ok := ParseGuestType(string(*p.Type)); ok {
			p.Type = &gt
		}
	}
	if p.Status != nil {
		if st, ok := ParseGuestStatus(string(*p.Status)); ok {
			p.Status = &st
		}
	}
	if p.Email != nil {
		v := textutil.NormalizeEmail(*p.Email)
		p.Email = &v
	}
}

func (p GuestPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return Invalid("name", "cannot be empty")
	}
	if p.Type != nil {
		if _, ok := ParseGuestType(string(*p.Type)); !ok {
			return Invalid("type", "must be INDIVIDUAL or FAMILY")
		}
	}
	if p.Status != nil {
		if _, ok := ParseGuestStatus(string(*p.Status)); !ok {
			return Invalid("status", "must be PENDING, CONFIRMED or DECLINED")
		}
	}
	if p.ExpectedCount != nil && (*p.ExpectedCount < 0 || *p.ExpectedCount > MaxExpectedCount) {
		return Invalid("expectedCount", "must be between 0 and 50")
	}
	if p.AttendingCount != nil && (*p.AttendingCount < 0 || *p.AttendingCount > MaxExpectedCount) {
		return Invalid("attendingCount", "must be between 0 and 50")
	}
	if p.Email != nil && *p.Email != "" && !textutil.IsValidEmail(*p.Email) {
		return Invalid("email", "is not a valid email address")
	}
	return nil
}

func (p GuestPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.ExpectedCount == nil && p.AttendingCount == nil &&
		p.Status == nil && p.Message == nil && p.Email == nil
}

// PatchFromRSVP is the guest update an RSVP through a personal link triggers.
func PatchFromRSVP(attendance Attendance, companions int) GuestPatch {
	status := GuestDeclined
	attending := 0
	if attendance == AttendanceConfirms {
		status = GuestConfirmed
		attending = 1 + companions
	}
	return GuestPatch{Status: &status, AttendingCount: &attending}
}
