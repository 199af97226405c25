package store

import "time"

// Message is a single chat message. ReplyTo is a soft reference: it is not
// enforced as a foreign key, so a reply may point at a message that was
// deleted later.
type Message struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Content   string    `json:"content"    gorm:"type:text"`
	Author    string    `json:"author"     gorm:"type:varchar(64);not null;index"`
	ReplyTo   *uint     `json:"reply_to,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Message) TableName() string { return "messages" }

// Reaction holds at most one entry per (message, author) pair; a second
// reaction from the same author replaces the first.
type Reaction struct {
	MessageID uint   `json:"message_id" gorm:"primaryKey;autoIncrement:false"`
	Author    string `json:"author"     gorm:"primaryKey;type:varchar(64)"`
	Reaction  string `json:"reaction"   gorm:"type:varchar(32);not null"`
}

func (Reaction) TableName() string { return "reactions" }

// HistoryEntry is one replayed message together with its reactions.
type HistoryEntry struct {
	Message   Message
	Reactions []Reaction
}
