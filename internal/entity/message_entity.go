package entity

import "time"

// Content shown in place of a revoked message.
const (
	RevokedNoticeSender = "You deleted this message"
	RevokedNoticeOther  = "This message was deleted"
)

// Message is a single directed message between two staff members.
// Records are append-mostly: once written, only the flag fields change,
// and each flag only ever goes false -> true. "Deletion" is per-party
// visibility, never removal; revocation replaces the rendered content
// but leaves the stored content untouched.
type Message struct {
	Id                string    `bson:"_id" json:"id"`
	SenderId          int64     `bson:"senderId" json:"senderId"`
	ReceiverId        int64     `bson:"receiverId" json:"receiverId"`
	Content           string    `bson:"content" json:"content"`
	Timestamp         time.Time `bson:"timestamp" json:"timestamp"`
	Seq               int64     `bson:"seq" json:"-"` // insertion counter, tie-break for equal timestamps
	IsRead            bool      `bson:"isRead" json:"isRead"`
	DeletedBySender   bool      `bson:"deletedBySender" json:"-"`
	DeletedByReceiver bool      `bson:"deletedByReceiver" json:"-"`
	IsRevoked         bool      `bson:"isRevoked" json:"-"`
}

// VisibleTo reports whether the message appears in viewerId's transcript.
// Each party's delete flag hides the message for that party only; a
// viewer who is neither sender nor receiver never sees it.
func (m Message) VisibleTo(viewerId int64) bool {
	switch viewerId {
	case m.SenderId:
		return !m.DeletedBySender
	case m.ReceiverId:
		return !m.DeletedByReceiver
	default:
		return false
	}
}

// ContentFor returns the content to render for viewerId. Revoked
// messages render a notice instead of the stored text.
func (m Message) ContentFor(viewerId int64) string {
	if !m.IsRevoked {
		return m.Content
	}
	if viewerId == m.SenderId {
		return RevokedNoticeSender
	}
	return RevokedNoticeOther
}

// MessageView is the transport projection of a Message. The delete and
// revoke flags are never exposed directly, only their effect.
type MessageView struct {
	Id         string `json:"id"`
	SenderId   int64  `json:"senderId"`
	ReceiverId int64  `json:"receiverId"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	IsRead     bool   `json:"isRead"`
}

// ViewFor builds the transport view of the message for viewerId.
func (m Message) ViewFor(viewerId int64) MessageView {
	return MessageView{
		Id:         m.Id,
		SenderId:   m.SenderId,
		ReceiverId: m.ReceiverId,
		Content:    m.ContentFor(viewerId),
		Timestamp:  m.Timestamp.UTC().Format(time.RFC3339Nano),
		IsRead:     m.IsRead,
	}
}

// MessageFlagFilter selects the messages a flag update applies to.
// A nil Ids slice means "no id restriction"; a non-nil empty slice
// matches nothing, so bulk calls with an empty selection are no-ops.
type MessageFlagFilter struct {
	Ids        []string
	SenderId   int64 // 0 = any sender
	ReceiverId int64 // 0 = any receiver
	UnreadOnly bool
}

// MessageFlagPatch lists the flags to raise. Flags are monotone, so a
// patch only ever sets them true; a zero patch is a no-op.
type MessageFlagPatch struct {
	IsRead            bool
	DeletedBySender   bool
	DeletedByReceiver bool
	IsRevoked         bool
}

// IsZero reports whether the patch raises no flags.
func (p MessageFlagPatch) IsZero() bool {
	return !p.IsRead && !p.DeletedBySender && !p.DeletedByReceiver && !p.IsRevoked
}
