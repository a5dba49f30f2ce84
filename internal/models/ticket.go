package models

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityEasy   Priority = "easy"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for sorting. Unknown values rank below low.
func (p Priority) Rank() float64 {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityEasy:
		return 1.5
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type TicketStatus string

const (
	StatusOpen   TicketStatus = "open"
	StatusSolved TicketStatus = "solved"
)

type CommentPreview struct {
	Author    string    `bson:"author" json:"author"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Ticket struct {
	ID          string           `bson:"id" json:"id"`
	Title       string           `bson:"title" json:"title"`
	Description string           `bson:"description" json:"description"`
	Category    string           `bson:"category" json:"category"`
	Priority    Priority         `bson:"priority" json:"priority"`
	Status      TicketStatus     `bson:"status" json:"status"`
	Progress    int              `bson:"progress" json:"progress"`
	Author      string           `bson:"author" json:"author"`
	AuthorID    string           `bson:"authorId" json:"authorId"`
	AuthorRole  string           `bson:"authorRole" json:"authorRole"`
	Upvotes     int              `bson:"upvotes" json:"upvotes"`
	Voters      []string         `bson:"voters" json:"voters"`
	Comments    []CommentPreview `bson:"comments,omitempty" json:"comments,omitempty"`
	Location    string           `bson:"location,omitempty" json:"location,omitempty"`
	AssignedTo  string           `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`

	// Pending is set on optimistic inserts and cleared once the server echoes the ticket.
	Pending bool `bson:"-" json:"-"`
}

// ToggleVote flips userID's membership in Voters and keeps Upvotes equal to the voter count.
// It reports whether the user is a voter afterwards.
func (t *Ticket) ToggleVote(userID string) bool {
	var voted bool
	t.Voters, voted = ToggleMember(t.Voters, userID)
	t.Upvotes = len(t.Voters)
	return voted
}

// SetVoters replaces the voter set, dropping duplicates, and recomputes Upvotes.
func (t *Ticket) SetVoters(voters []string) {
	t.Voters = UniqueMembers(voters)
	t.Upvotes = len(t.Voters)
}

func (t *Ticket) MarkDone() {
	t.Status = StatusSolved
	t.Progress = 100
}

func (t Ticket) Clone() Ticket {
	t.Voters = append([]string{}, t.Voters...)
	if t.Comments != nil {
		t.Comments = append([]CommentPreview(nil), t.Comments...)
	}
	return t
}

// TicketDraft is what a citizen submits; the store fills in authorship and bookkeeping.
type TicketDraft struct {
	ID          string       `json:"id,omitempty" validate:"omitempty,max=128"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description" validate:"required,max=2000"`
	Category    string       `json:"category" validate:"required,eq=Infrastructure|eq=Healthcare|eq=Education|eq=Environment|eq=Transportation|eq=Public Safety|eq=Utilities|eq=Other"`
	Priority    Priority     `json:"priority,omitempty" validate:"omitempty,eq=low|eq=easy|eq=medium|eq=high|eq=urgent"`
	Status      TicketStatus `json:"status,omitempty" validate:"omitempty,eq=open|eq=solved"`
	Location    string       `json:"location,omitempty" validate:"max=100"`
}

type IssueSource struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// ExternalIssue is a ticket-shaped record observed outside the user base. Its ID is derived from URL.
type ExternalIssue struct {
	Ticket        `bson:",inline"`
	IsOnlineIssue bool        `bson:"isOnlineIssue" json:"isOnlineIssue"`
	Source        IssueSource `bson:"source" json:"source"`
	URL           string      `bson:"url,omitempty" json:"url,omitempty"`
	ImageURL      string      `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	LastUpdated   time.Time   `bson:"lastUpdated" json:"lastUpdated"`
}

func (e ExternalIssue) Clone() ExternalIssue {
	e.Ticket = e.Ticket.Clone()
	return e
}

// CombinedIssue is a read-only row of the merged ticket/online-issue list.
type CombinedIssue struct {
	Ticket
	IsOnlineIssue bool         `json:"isOnlineIssue"`
	Source        *IssueSource `json:"source,omitempty"`
	URL           string       `json:"url,omitempty"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	Pending       bool         `json:"pending"`
}

// ToggleMember adds id to set when absent and removes every occurrence otherwise.
func ToggleMember(set []string, id string) ([]string, bool) {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, v := range set {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return UniqueMembers(out), !found
}

func UniqueMembers(set []string) []string {
	seen := make(map[string]struct{}, len(set))
	out := make([]string, 0, len(set))
	for _, v := range set {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func ContainsMember(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}
