package models

import "time"

// DeletedMessageContent replaces the body of a soft-deleted message.
const DeletedMessageContent = "[deleted]"

type Message struct {
	ID       int    `json:"id" db:"id"`
	Room     string `json:"room" db:"room"`
	SenderID int    `json:"sender_id" db:"sender_id"`
	Content  string `json:"content" db:"content"`
	// Threading: replies reference their parent, which carries a
	// denormalized reply counter incremented at write time.
	ParentID   *int      `json:"parent_id,omitempty" db:"parent_id"`
	ReplyCount int       `json:"reply_count" db:"reply_count"`
	Deleted    bool      `json:"deleted" db:"deleted"`
	Delivered  bool      `json:"delivered" db:"delivered"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Sender *User `json:"sender,omitempty" db:"-"`
}
