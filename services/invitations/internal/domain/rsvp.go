package domain

import (
	"strings"
	"time"

	"github.com/cris-imc/invitaciones-sub002/pkg/textutil"
)

type Attendance string

const (
	AttendanceConfirms Attendance = "confirms"
	AttendanceDeclines Attendance = "declines"
)

func ParseAttendance(s string) (Attendance, bool) {
	switch Attendance(strings.ToLower(strings.TrimSpace(s))) {
	case AttendanceConfirms:
		return AttendanceConfirms, true
	case AttendanceDeclines:
		return AttendanceDeclines, true
	default:
		return "", false
	}
}

const MaxCompanions = 20

type RSVP struct {
	ID           int64      `json:"id"`
	InvitationID int64      `json:"invitationId"`
	GuestID      *int64     `json:"guestId,omitempty"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Attendance   Attendance `json:"attendance"`
	Companions   int        `json:"companions"`
	Message      string     `json:"message,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type RSVPInput struct {
	InvitationID int64      `json:"invitationId"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Attendance   Attendance `json:"attendance"`
	Companions   *int       `json:"companions,omitempty"`
	Message      string     `json:"message"`
}

func (in *RSVPInput) Normalize() {
	in.Name = textutil.NormalizeString(in.Name)
	in.Email = textutil.NormalizeEmail(in.Email)
	in.Phone = textutil.NormalizePhone(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if a, ok := ParseAttendance(string(in.Attendance)); ok {
		in.Attendance = a
	}
}

func (in RSVPInput) Validate() error {
	if in.InvitationID <= 0 {
		return Invalid("invitationId", "is required")
	}
	if in.Name == "" {
		return Invalid("name", "is required")
	}
	if in.Attendance == "" {
		return Invalid("attendance", "is required")
	}
	if _, ok := ParseAttendance(string(in.Attendance)); !ok {
		return Invalid("attendance", "must be confirms or declines")
	}
	if in.Companions != nil && (*in.Companions < 0 || *in.Companions > MaxCompanions) {
		return Invalid("companions", "must be between 0 and 20")
	}
	if in.Email != "" && !textutil.IsValidEmail(in.Email) {
		return Invalid("email", "is not a valid email address")
	}
	return nil
}

// CompanionCount returns the companion count, defaulting to 0.
func (in RSVPInput) CompanionCount() int {
	if in.Companions == nil {
		return 0
	}
	return *in.Companions
}

type RSVPFilter struct {
	Attendance *Attendance
	Limit      int
	Offset     int
}
