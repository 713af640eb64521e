package services

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AmmarC10/ContractinGO-BE/config"
	"github.com/AmmarC10/ContractinGO-BE/db"
	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
	"github.com/AmmarC10/ContractinGO-BE/realtime"
)

// MessagingService owns conversations and messages. SendMessage is the single
// append-and-broadcast operation shared by the REST handlers and the
// websocket sessions, so subscribers cannot tell the two paths apart.
type MessagingService interface {
	realtime.MessageSender

	AuthorizeParticipant(conversationID, userID uint) (*models.Conversation, error)
	ListUserConversations(userID uint) ([]models.ConversationResponse, error)
	GetConversation(conversationID, userID uint) (*models.ConversationResponse, error)
	GetOrCreateConversation(adID, userID, otherUserID uint) (*models.ConversationResponse, error)
	ListMessages(conversationID, userID uint) ([]models.MessageResponse, error)
	MarkRead(conversationID, userID uint) error
	UnreadCount(userID uint) (int64, error)
	ConversationUnreadCount(conversationID, userID uint) (int64, error)
	DeleteConversation(conversationID, userID uint) error
}

type messagingService struct {
	Config           *config.Config
	conversationRepo db.ConversationRepository
	authRepo         db.AuthRepository
	adRepo           db.AdRepository
	broker           realtime.Broker
	notifier         Notifier
	logger           *zap.SugaredLogger
}

func NewMessagingService(
	conversationRepo db.ConversationRepository,
	authRepo db.AuthRepository,
	adRepo db.AdRepository,
	broker realtime.Broker,
	notifier Notifier,
	conf *config.Config,
	logger *zap.SugaredLogger,
) MessagingService {
	return &messagingService{
		Config:           conf,
		conversationRepo: conversationRepo,
		authRepo:         authRepo,
		adRepo:           adRepo,
		broker:           broker,
		notifier:         notifier,
		logger:           logger,
	}
}

// AuthorizeParticipant loads the conversation for a caller who must be a
// participant. A missing, inactive or foreign conversation all yield the same
// not-found error so callers cannot probe for existence.
func (m *messagingService) AuthorizeParticipant(conversationID, userID uint) (*models.Conversation, error) {
	conversation, err := m.conversationRepo.FindConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("conversation not found", http.StatusNotFound)
		}
		m.logger.Errorw("failed to load conversation", "conversation_id", conversationID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	if !conversation.IsActive {
		return nil, apiError.New("conversation not found", http.StatusNotFound)
	}
	for i := range conversation.Participants {
		if conversation.Participants[i].ID == userID {
			return conversation, nil
		}
	}
	return nil, apiError.New("conversation not found", http.StatusNotFound)
}

func (m *messagingService) ListUserConversations(userID uint) ([]models.ConversationResponse, error) {
	conversations, err := m.conversationRepo.ListConversations(userID)
	if err != nil {
		m.logger.Errorw("failed to list conversations", "user_id", userID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	responses := make([]models.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		responses = append(responses, models.NewConversationResponse(&conversations[i]))
	}
	return responses, nil
}

func (m *messagingService) GetConversation(conversationID, userID uint) (*models.ConversationResponse, error) {
	conversation, err := m.AuthorizeParticipant(conversationID, userID)
	if err != nil {
		return nil, err
	}
	response := models.NewConversationResponse(conversation)
	return &response, nil
}

func (m *messagingService) GetOrCreateConversation(adID, userID, otherUserID uint) (*models.ConversationResponse, error) {
	if userID == otherUserID {
		return nil, apiError.New("cannot start a conversation with yourself", http.StatusBadRequest)
	}
	if _, err := m.adRepo.FindAdByID(adID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("ad not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if _, err := m.authRepo.FindUserByID(otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("user not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}

	conversation, err := m.conversationRepo.FindOrCreateConversation(adID, userID, otherUserID)
	if err != nil {
		m.logger.Errorw("failed to get or create conversation",
			"ad_id", adID, "user_id", userID, "other_user_id", otherUserID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	response := models.NewConversationResponse(conversation)
	return &response, nil
}

// SendMessage persists the message (and its attachment, when an image
// reference is supplied) and publishes it to the conversation's broadcast
// group. An attachment failure is logged and the message still goes out
// without it; a publish failure is logged because persisted history, not the
// live channel, is authoritative.
func (m *messagingService) SendMessage(ctx context.Context, conversationID, senderID uint, content, imageURL string) (models.MessageResponse, error) {
	if content == "" && imageURL == "" {
		return models.MessageResponse{}, apiError.New("Message content or image required", http.StatusBadRequest)
	}

	if _, err := m.AuthorizeParticipant(conversationID, senderID); err != nil {
		return models.MessageResponse{}, err
	}

	message, err := m.conversationRepo.CreateMessage(conversationID, senderID, content)
	if err != nil {
		m.logger.Errorw("failed to create message", "conversation_id", conversationID, "error", err)
		return models.MessageResponse{}, apiError.ErrInternalServerError
	}

	if imageURL != "" {
		attachment, err := m.conversationRepo.CreateAttachment(message.ID, imageURL)
		if err != nil {
			m.logger.Warnw("attachment creation failed, delivering message without it",
				"message_id", message.ID, "error", err)
		} else {
			message.Attachments = append(message.Attachments, *attachment)
		}
	}

	response := models.NewMessageResponse(message)

	event, err := realtime.NewMessageEvent(response)
	if err != nil {
		m.logger.Errorw("failed to encode message event", "message_id", message.ID, "error", err)
		return response, nil
	}
	if err := m.broker.Publish(ctx, realtime.GroupName(conversationID), event); err != nil {
		m.logger.Errorw("failed to publish message event", "message_id", message.ID, "error", err)
	}

	m.pushToParticipants(conversationID, senderID, &response)

	return response, nil
}

// pushToParticipants sends a best-effort push notification to every other
// participant's registered devices.
func (m *messagingService) pushToParticipants(conversationID, senderID uint, message *models.MessageResponse) {
	if m.notifier == nil {
		return
	}

	participants, err := m.conversationRepo.ListParticipants(conversationID)
	if err != nil {
		m.logger.Warnw("failed to list participants for push", "conversation_id", conversationID, "error", err)
		return
	}
	recipientIDs := make([]uint, 0, len(participants))
	for i := range participants {
		if participants[i].ID != senderID {
			recipientIDs = append(recipientIDs, participants[i].ID)
		}
	}
	tokens, err := m.authRepo.ListDeviceTokens(recipientIDs)
	if err != nil || len(tokens) == 0 {
		return
	}

	body := message.Content
	if body == "" {
		body = "Sent a photo"
	}
	go func() {
		if err := m.notifier.PushMessage(context.Background(), tokens, message.Sender.Name, body, map[string]string{
			"conversation_id": strconv.FormatUint(uint64(conversationID), 10),
		}); err != nil {
			m.logger.Warnw("push notification failed", "conversation_id", conversationID, "error", err)
		}
	}()
}

func (m *messagingService) ListMessages(conversationID, userID uint) ([]models.MessageResponse, error) {
	if _, err := m.AuthorizeParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	messages, err := m.conversationRepo.ListMessages(conversationID)
	if err != nil {
		m.logger.Errorw("failed to list messages", "conversation_id", conversationID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, models.NewMessageResponse(&messages[i]))
	}
	return responses, nil
}

func (m *messagingService) MarkRead(conversationID, userID uint) error {
	if _, err := m.AuthorizeParticipant(conversationID, userID); err != nil {
		return err
	}
	if err := m.conversationRepo.MarkMessagesRead(conversationID, userID); err != nil {
		m.logger.Errorw("failed to mark messages read", "conversation_id", conversationID, "error", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (m *messagingService) UnreadCount(userID uint) (int64, error) {
	count, err := m.conversationRepo.UnreadCount(userID)
	if err != nil {
		m.logger.Errorw("failed to count unread messages", "user_id", userID, "error", err)
		return 0, apiError.ErrInternalServerError
	}
	return count, nil
}

func (m *messagingService) ConversationUnreadCount(conversationID, userID uint) (int64, error) {
	if _, err := m.AuthorizeParticipant(conversationID, userID); err != nil {
		return 0, err
	}
	count, err := m.conversationRepo.ConversationUnreadCount(conversationID, userID)
	if err != nil {
		m.logger.Errorw("failed to count unread messages", "conversation_id", conversationID, "error", err)
		return 0, apiError.ErrInternalServerError
	}
	return count, nil
}

func (m *messagingService) DeleteConversation(conversationID, userID uint) error {
	if _, err := m.AuthorizeParticipant(conversationID, userID); err != nil {
		return err
	}
	if err := m.conversationRepo.DeleteConversation(conversationID); err != nil {
		m.logger.Errorw("failed to delete conversation", "conversation_id", conversationID, "error", err)
		return apiError.ErrInternalServerError
	}
	return nil
}
