package entity

import "time"

// Staff is a row of the staff directory. The chat core only reads the
// directory; staff records are managed by the rest of the back office.
type Staff struct {
	Id           int64  `bson:"_id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Role         string `bson:"role" json:"role"`
	LoginId      string `bson:"loginId" json:"loginId"`
	PasswordHash string `bson:"passwordHash" json:"-"`
	Active       bool   `bson:"active" json:"active"`
}

// PartnerSummary is one entry of a viewer's contact roster: a chat
// partner annotated with unread count and last-activity time.
type PartnerSummary struct {
	Id              int64      `json:"id"`
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	UnreadCount     int64      `json:"unreadCount"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
}
