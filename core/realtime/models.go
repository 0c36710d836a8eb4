package realtime

import "time"

// Chat types
const (
	ChatDirect = "direct"
	ChatGroup  = "group"
)

// Message types
const (
	MessageText   = "text"
	MessageImage  = "image"
	MessageFile   = "file"
	MessageSystem = "system"
)

// Connection states
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// Live event types
const (
	EventMessage  = "message"
	EventPresence = "presence"
	EventTyping   = "typing"
)

type (
	Participant struct {
		UserID   string    `json:"user_id"`
		Name     string    `json:"name"`
		Role     string    `json:"role"`
		Online   bool      `json:"online"`
		LastSeen time.Time `json:"last_seen"`
	}

	Attachment struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
	}

	Message struct {
		ID          string       `json:"id"`
		ChatID      string       `json:"chat_id"`
		SenderID    string       `json:"sender_id"`
		SenderName  string       `json:"sender_name"`
		SenderRole  string       `json:"sender_role"`
		Content     string       `json:"content"`
		Type        string       `json:"type"`
		Attachments []Attachment `json:"attachments,omitempty"`
		Delivered   bool         `json:"delivered"`
		Read        bool         `json:"read"`
		SentAt      time.Time    `json:"sent_at"` // UTC
	}

	Chat struct {
		ID           string        `json:"id"`
		Name         string        `json:"name"`
		Type         string        `json:"type"`
		Participants []Participant `json:"participants"`
		LastMessage  *Message      `json:"last_message,omitempty"`
		// UnreadCount is always recomputed from message read flags, scoped
		// to messages not authored by the current principal.
		UnreadCount int       `json:"unread_count"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	// LiveEvent is a synthetic event on the store's publish/subscribe
	// channel, independent of any real transport.
	LiveEvent struct {
		ID         string      `json:"id"`
		Type       string      `json:"type"`
		ChatID     string      `json:"chat_id,omitempty"`
		UserID     string      `json:"user_id,omitempty"`
		Payload    interface{} `json:"payload,omitempty"`
		OccurredAt time.Time   `json:"occurred_at"`
	}
)
