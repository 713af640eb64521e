package models

import "time"

// Conversation is a chat thread about one ad between a fixed set of
// participants. The participant set is established at creation and never
// changes afterwards.
type Conversation struct {
	Model
	AdID         uint      `json:"ad_id" gorm:"index;not null"`
	Ad           Ad        `json:"-" gorm:"foreignKey:AdID;constraint:OnDelete:CASCADE"`
	Participants []User    `json:"-" gorm:"many2many:conversation_participants;"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	Messages     []Message `json:"-" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// Message belongs to exactly one conversation. Messages are immutable after
// creation except for the unread-to-read transition.
type Message struct {
	Model
	ConversationID uint                `json:"conversation_id" gorm:"index;not null"`
	SenderID       uint                `json:"sender_id" gorm:"index;not null"`
	Sender         User                `json:"-" gorm:"foreignKey:SenderID"`
	Content        string              `json:"content"`
	IsRead         bool                `json:"is_read" gorm:"default:false"`
	Attachments    []MessageAttachment `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// MessageAttachment is an image reference attached to a message.
type MessageAttachment struct {
	Model
	MessageID uint   `json:"message_id" gorm:"index;not null"`
	ImageURL  string `json:"image_url" gorm:"not null"`
}

// AttachmentResponse is the wire shape for an attachment.
type AttachmentResponse struct {
	ID        uint      `json:"id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageResponse is the wire shape for a message. The realtime channel and
// the REST surface both serialize messages through this type so the two paths
// are indistinguishable to clients.
type MessageResponse struct {
	ID          uint                 `json:"id"`
	Content     string               `json:"content"`
	CreatedAt   time.Time            `json:"created_at"`
	IsRead      bool                 `json:"is_read"`
	Sender      UserResponse         `json:"sender"`
	Attachments []AttachmentResponse `json:"attachments"`
}

func NewMessageResponse(m *Message) MessageResponse {
	attachments := make([]AttachmentResponse, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, AttachmentResponse{
			ID:        a.ID,
			ImageURL:  a.ImageURL,
			CreatedAt: a.CreatedAt,
		})
	}
	return MessageResponse{
		ID:          m.ID,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
		IsRead:      m.IsRead,
		Sender:      NewUserResponse(&m.Sender),
		Attachments: attachments,
	}
}

// ConversationResponse is the wire shape for a conversation, including the
// last message in canonical (persisted) order.
type ConversationResponse struct {
	ID           uint             `json:"id"`
	Ad           AdResponse       `json:"ad"`
	Participants []UserResponse   `json:"participants"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	LastMessage  *MessageResponse `json:"last_message"`
}

func NewConversationResponse(c *Conversation) ConversationResponse {
	participants := make([]UserResponse, 0, len(c.Participants))
	for i := range c.Participants {
		participants = append(participants, NewUserResponse(&c.Participants[i]))
	}

	var last *MessageResponse
	if n := len(c.Messages); n > 0 {
		resp := NewMessageResponse(&c.Messages[n-1])
		last = &resp
	}

	return ConversationResponse{
		ID:           c.ID,
		Ad:           NewAdResponse(&c.Ad),
		Participants: participants,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		LastMessage:  last,
	}
}
