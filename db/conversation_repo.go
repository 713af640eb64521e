package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/AmmarC10/ContractinGO-BE/models"
)

type ConversationRepository interface {
	FindConversationByID(id uint) (*models.Conversation, error)
	FindOrCreateConversation(adID, userID, otherUserID uint) (*models.Conversation, error)
	ListConversations(userID uint) ([]models.Conversation, error)
	ListParticipants(conversationID uint) ([]models.User, error)
	CreateMessage(conversationID, senderID uint, content string) (*models.Message, error)
	CreateAttachment(messageID uint, imageURL string) (*models.MessageAttachment, error)
	FindMessageByID(id uint) (*models.Message, error)
	ListMessages(conversationID uint) ([]models.Message, error)
	MarkMessagesRead(conversationID, excludeSenderID uint) error
	UnreadCount(userID uint) (int64, error)
	ConversationUnreadCount(conversationID, userID uint) (int64, error)
	DeleteConversation(id uint) error
}

type conversationRepo struct {
	DB *gorm.DB
}

func NewConversationRepo(db *GormDB) ConversationRepository {
	return &conversationRepo{db.DB}
}

func (r *conversationRepo) FindConversationByID(id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.DB.
		Preload("Ad.AdType").
		Preload("Ad.User").
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC, messages.id ASC").
				Preload("Sender").Preload("Attachments")
		}).
		First(&conversation, id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindOrCreateConversation returns the active conversation about the ad
// between the two users, creating it when none exists. Creation is idempotent
// per (ad, participant pair).
func (r *conversationRepo) FindOrCreateConversation(adID, userID, otherUserID uint) (*models.Conversation, error) {
	var existing models.Conversation
	err := r.DB.
		Joins("JOIN conversation_participants p1 ON p1.conversation_id = conversations.id AND p1.user_id = ?", userID).
		Joins("JOIN conversation_participants p2 ON p2.conversation_id = conversations.id AND p2.user_id = ?", otherUserID).
		Where("conversations.ad_id = ? AND conversations.is_active = ?", adID, true).
		First(&existing).Error
	if err == nil {
		return r.FindConversationByID(existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "failed to look up conversation")
	}

	var participants []models.User
	if err := r.DB.Find(&participants, []uint{userID, otherUserID}).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load participants")
	}
	if len(participants) != 2 {
		return nil, gorm.ErrRecordNotFound
	}

	conversation := models.Conversation{AdID: adID, IsActive: true}
	err = r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		return tx.Model(&conversation).Association("Participants").Append(&participants)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}

	return r.FindConversationByID(conversation.ID)
}

func (r *conversationRepo) ListConversations(userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.DB.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id AND cp.user_id = ?", userID).
		Where("conversations.is_active = ?", true).
		Order("conversations.updated_at DESC").
		Preload("Ad.AdType").
		Preload("Ad.User").
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC, messages.id ASC").
				Preload("Sender").Preload("Attachments")
		}).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *conversationRepo) ListParticipants(conversationID uint) ([]models.User, error) {
	var users []models.User
	err := r.DB.
		Joins("JOIN conversation_participants cp ON cp.user_id = users.id").
		Where("cp.conversation_id = ?", conversationID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateMessage appends a message to the conversation and bumps the
// conversation's updated_at so listings sort by recency.
func (r *conversationRepo) CreateMessage(conversationID, senderID uint, content string) (*models.Message, error) {
	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			UpdateColumn("updated_at", message.CreatedAt).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create message")
	}

	return r.FindMessageByID(message.ID)
}

func (r *conversationRepo) CreateAttachment(messageID uint, imageURL string) (*models.MessageAttachment, error) {
	attachment := models.MessageAttachment{MessageID: messageID, ImageURL: imageURL}
	if err := r.DB.Create(&attachment).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create attachment")
	}
	return &attachment, nil
}

func (r *conversationRepo) FindMessageByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.DB.Preload("Sender").Preload("Attachments").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *conversationRepo) ListMessages(conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.DB.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Preload("Sender").
		Preload("Attachments").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkMessagesRead flips every unread message in the conversation that was
// not sent by the caller. The transition is one-directional and repeating it
// is a no-op.
func (r *conversationRepo) MarkMessagesRead(conversationID, excludeSenderID uint) error {
	return r.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, excludeSenderID, false).
		UpdateColumn("is_read", true).Error
}

func (r *conversationRepo) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Message{}).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = messages.conversation_id AND cp.user_id = ?", userID).
		Where("messages.is_read = ? AND messages.sender_id <> ?", false, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *conversationRepo) ConversationUnreadCount(conversationID, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND is_read = ? AND sender_id <> ?", conversationID, false, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteConversation hard-deletes the conversation. Messages, attachments and
// participant rows go with it via the foreign key constraints.
func (r *conversationRepo) DeleteConversation(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM message_attachments WHERE message_id IN (SELECT id FROM messages WHERE conversation_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM conversation_participants WHERE conversation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, id).Error
	})
}
