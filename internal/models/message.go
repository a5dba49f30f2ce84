package models

import (
	"time"
)

type Message struct {
	ID         string    `bson:"id" json:"id"`
	LegacyID   string    `bson:"_id,omitempty" json:"_id,omitempty"`
	TicketID   string    `bson:"ticketId" json:"ticketId"`
	Content    string    `bson:"content" json:"content"`
	Author     string    `bson:"author" json:"author"`
	AuthorID   string    `bson:"authorId" json:"authorId"`
	AuthorRole string    `bson:"authorRole" json:"authorRole"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Likes      []string  `bson:"likes" json:"likes"`
	LikeCount  int       `bson:"likeCount" json:"likeCount"`

	Pending bool `bson:"-" json:"-"`
}

// ToggleLike flips userID's membership in Likes and reports whether the message is liked afterwards.
func (m *Message) ToggleLike(userID string) bool {
	var liked bool
	m.Likes, liked = ToggleMember(m.Likes, userID)
	m.LikeCount = len(m.Likes)
	return liked
}

// SetLikes replaces the like set. An incoming count is never trusted; it is always derived.
func (m *Message) SetLikes(likes []string) {
	m.Likes = UniqueMembers(likes)
	m.LikeCount = len(m.Likes)
}

func (m Message) Clone() Message {
	m.Likes = append([]string{}, m.Likes...)
	return m
}
