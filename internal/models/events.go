package models

// Event names are the wire contract with the realtime server and must not change.
const (
	EventCreateTicket     = "create_ticket"
	EventVoteTicket       = "vote_ticket"
	EventMarkTicketDone   = "mark_ticket_done"
	EventAssignPolitician = "assign_politician"
	EventDeleteTicket     = "delete_ticket"
	EventSendMessage      = "send_message"
	EventLikeComment      = "like_comment"
	EventDeleteComment    = "delete_comment"
	EventLoadMessages     = "load_messages"
	EventJoinTicketRoom   = "join_ticket_room"
	EventLeaveTicketRoom  = "leave_ticket_room"
	EventLoadTickets      = "load_tickets"

	EventTicketCreated   = "ticket_created"
	EventTicketUpdated   = "ticket_updated"
	EventTicketVoted     = "ticket_voted"
	EventTicketsLoaded   = "tickets_loaded"
	EventTicketDeleted   = "ticket_deleted"
	EventMessageReceived = "message_received"
	EventMessagesLoaded  = "messages_loaded"
	EventCommentLiked    = "comment_liked"
	EventCommentDeleted  = "comment_deleted"
)

const (
	LikeActionLike   = "like"
	LikeActionUnlike = "unlike"
)

type VoteTicketPayload struct {
	TicketID string `json:"ticketId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type MarkTicketDonePayload struct {
	TicketID     string `json:"ticketId"`
	MarkedBy     string `json:"markedBy"`
	MarkedByName string `json:"markedByName"`
	MarkedByRole string `json:"markedByRole"`
}

type AssignPoliticianPayload struct {
	TicketID     string `json:"ticketId"`
	PoliticianID string `json:"politicianId"`
	AssignedBy   string `json:"assignedBy"`
}

type DeleteTicketPayload struct {
	TicketID      string `json:"ticketId"`
	DeletedBy     string `json:"deletedBy"`
	DeletedByName string `json:"deletedByName"`
	DeletedByRole string `json:"deletedByRole"`
}

type LikeCommentPayload struct {
	TicketID  string `json:"ticketId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Action    string `json:"action"`
}

type DeleteCommentPayload struct {
	TicketID      string `json:"ticketId"`
	MessageID     string `json:"messageId"`
	DeletedBy     string `json:"deletedBy"`
	DeletedByName string `json:"deletedByName"`
	DeletedByRole string `json:"deletedByRole"`
}

// TicketRoomPayload is shared by load_messages, join_ticket_room and leave_ticket_room.
type TicketRoomPayload struct {
	TicketID string `json:"ticketId"`
}

type TicketVotedPayload struct {
	TicketID string   `json:"ticketId"`
	Upvotes  int      `json:"upvotes"`
	Voters   []string `json:"voters"`
}

type CommentLikedPayload struct {
	MessageID string   `json:"messageId"`
	Likes     []string `json:"likes"`
	LikeCount int      `json:"likeCount"`
}

type TicketDeletedPayload struct {
	TicketID string `json:"ticketId"`
}

type CommentDeletedPayload struct {
	TicketID  string `json:"ticketId"`
	MessageID string `json:"messageId"`
}
