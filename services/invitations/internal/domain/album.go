package domain

import "time"

type Album struct {
	ID                int64     `json:"id"`
	InvitationID      int64     `json:"invitationId"`
	Title             string    `json:"title"`
	ModerationEnabled bool      `json:"moderationEnabled"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Photo struct {
	ID           int64     `json:"id"`
	AlbumID      int64     `json:"albumId"`
	InvitationID int64     `json:"invitationId"`
	URL          string    `json:"url"`
	UploaderName string    `json:"uploaderName"`
	Caption      string    `json:"caption"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AlbumView is what guests see. Album is nil until the first upload.
type AlbumView struct {
	Album  *Album  `json:"album"`
	Photos []Photo `json:"photos"`
}

type PhotoInput struct {
	UploaderName string
	Caption      string
}
