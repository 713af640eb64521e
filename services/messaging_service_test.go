package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AmmarC10/ContractinGO-BE/config"
	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
	"github.com/AmmarC10/ContractinGO-BE/realtime"
)

type fakeConversationRepo struct {
	conversations map[uint]*models.Conversation
	participants  map[uint][]models.User
	nextMessageID uint
	messages      []models.Message

	attachmentErr error
	createErr     error
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[uint]*models.Conversation),
		participants:  make(map[uint][]models.User),
		nextMessageID: 1,
	}
}

func (f *fakeConversationRepo) FindConversationByID(id uint) (*models.Conversation, error) {
	c, ok := f.conversations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeConversationRepo) FindOrCreateConversation(adID, userID, otherUserID uint) (*models.Conversation, error) {
	for _, c := range f.conversations {
		if c.AdID == adID && f.isMember(c.ID, userID) && f.isMember(c.ID, otherUserID) {
			return c, nil
		}
	}
	id := uint(len(f.conversations) + 1)
	c := &models.Conversation{
		Model:    models.Model{ID: id},
		AdID:     adID,
		IsActive: true,
		Participants: []models.User{
			{Model: models.Model{ID: userID}},
			{Model: models.Model{ID: otherUserID}},
		},
	}
	f.conversations[id] = c
	f.participants[id] = c.Participants
	return c, nil
}

func (f *fakeConversationRepo) ListConversations(userID uint) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range f.conversations {
		if c.IsActive && f.isMember(c.ID, userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) isMember(conversationID, userID uint) bool {
	for _, u := range f.participants[conversationID] {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func (f *fakeConversationRepo) ListParticipants(conversationID uint) ([]models.User, error) {
	return f.participants[conversationID], nil
}

func (f *fakeConversationRepo) CreateMessage(conversationID, senderID uint, content string) (*models.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	message := models.Message{
		Model:          models.Model{ID: f.nextMessageID, CreatedAt: time.Now()},
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Sender:         models.User{Model: models.Model{ID: senderID}},
	}
	f.nextMessageID++
	f.messages = append(f.messages, message)
	return &message, nil
}

func (f *fakeConversationRepo) CreateAttachment(messageID uint, imageURL string) (*models.MessageAttachment, error) {
	if f.attachmentErr != nil {
		return nil, f.attachmentErr
	}
	return &models.MessageAttachment{Model: models.Model{ID: 1}, MessageID: messageID, ImageURL: imageURL}, nil
}

func (f *fakeConversationRepo) FindMessageByID(id uint) (*models.Message, error) {
	for i := range f.messages {
		if f.messages[i].ID == id {
			return &f.messages[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConversationRepo) ListMessages(conversationID uint) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) MarkMessagesRead(conversationID, excludeSenderID uint) error {
	for i := range f.messages {
		if f.messages[i].ConversationID == conversationID && f.messages[i].SenderID != excludeSenderID {
			f.messages[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeConversationRepo) UnreadCount(userID uint) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.SenderID != userID && !m.IsRead && f.isMember(m.ConversationID, userID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeConversationRepo) ConversationUnreadCount(conversationID, userID uint) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.ConversationID == conversationID && m.SenderID != userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeConversationRepo) DeleteConversation(id uint) error {
	delete(f.conversations, id)
	delete(f.participants, id)
	return nil
}

type fakeAuthRepo struct {
	users  map[uint]*models.User
	tokens map[uint][]string
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[uint]*models.User), tokens: make(map[uint][]string)}
}

func (f *fakeAuthRepo) FindUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeAuthRepo) FindUserByUID(uid string) (*models.User, error) {
	for _, u := range f.users {
		if u.UID == uid {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) GetOrCreateUser(user *models.User) (*models.User, error) {
	if existing, err := f.FindUserByUID(user.UID); err == nil {
		return existing, nil
	}
	user.ID = uint(len(f.users) + 1)
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeAuthRepo) UpdateUser(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeAuthRepo) EditUserProfile(userID uint, details *models.EditProfileRequest) error {
	if _, ok := f.users[userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (f *fakeAuthRepo) SaveDeviceToken(userID uint, token string) error {
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakeAuthRepo) ListDeviceTokens(userIDs []uint) ([]string, error) {
	var out []string
	for _, id := range userIDs {
		out = append(out, f.tokens[id]...)
	}
	return out, nil
}

type fakeAdRepo struct {
	ads     map[uint]*models.Ad
	adTypes map[uint]*models.AdType
}

func newFakeAdRepo() *fakeAdRepo {
	return &fakeAdRepo{ads: make(map[uint]*models.Ad), adTypes: make(map[uint]*models.AdType)}
}

func (f *fakeAdRepo) CreateAd(ad *models.Ad) error {
	ad.ID = uint(len(f.ads) + 1)
	f.ads[ad.ID] = ad
	return nil
}

func (f *fakeAdRepo) FindAdByID(id uint) (*models.Ad, error) {
	ad, ok := f.ads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ad, nil
}

func (f *fakeAdRepo) ListAds(filter *models.AdFilter) ([]models.Ad, error) {
	var out []models.Ad
	for _, ad := range f.ads {
		out = append(out, *ad)
	}
	return out, nil
}

func (f *fakeAdRepo) UpdateAd(ad *models.Ad) error {
	f.ads[ad.ID] = ad
	return nil
}

func (f *fakeAdRepo) DeleteAd(id uint) error {
	delete(f.ads, id)
	return nil
}

func (f *fakeAdRepo) FindAdTypeByID(id uint) (*models.AdType, error) {
	t, ok := f.adTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeAdRepo) ListAdTypes() ([]models.AdType, error) {
	var out []models.AdType
	for _, t := range f.adTypes {
		out = append(out, *t)
	}
	return out, nil
}

type publishedEvent struct {
	Group string
	Event realtime.Event
}

type fakeBroker struct {
	mu        sync.Mutex
	published []publishedEvent
	err       error
}

func (f *fakeBroker) Subscribe(group string, c *realtime.Client)   {}
func (f *fakeBroker) Unsubscribe(group string, c *realtime.Client) {}

func (f *fakeBroker) Publish(_ context.Context, group string, event realtime.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{Group: group, Event: event})
	return nil
}

func (f *fakeBroker) events() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.published...)
}

type messagingFixture struct {
	service          MessagingService
	conversationRepo *fakeConversationRepo
	authRepo         *fakeAuthRepo
	adRepo           *fakeAdRepo
	broker           *fakeBroker
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	conversationRepo := newFakeConversationRepo()
	authRepo := newFakeAuthRepo()
	adRepo := newFakeAdRepo()
	broker := &fakeBroker{}
	service := NewMessagingService(conversationRepo, authRepo, adRepo, broker, nil, &config.Config{}, zap.NewNop().Sugar())
	return &messagingFixture{
		service:          service,
		conversationRepo: conversationRepo,
		authRepo:         authRepo,
		adRepo:           adRepo,
		broker:           broker,
	}
}

func (fx *messagingFixture) seedConversation(id, adID uint, active bool, participantIDs ...uint) {
	participants := make([]models.User, 0, len(participantIDs))
	for _, pid := range participantIDs {
		participants = append(participants, models.User{Model: models.Model{ID: pid}})
	}
	c := &models.Conversation{
		Model:        models.Model{ID: id},
		AdID:         adID,
		IsActive:     active,
		Participants: participants,
	}
	fx.conversationRepo.conversations[id] = c
	fx.conversationRepo.participants[id] = participants
}

func TestSendMessage(t *testing.T) {
	t.Run("persists and publishes to the conversation group", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(7, 1, true, 1, 2)

		response, err := fx.service.SendMessage(context.Background(), 7, 1, "hello", "")
		require.NoError(t, err)
		require.Equal(t, "hello", response.Content)

		events := fx.broker.events()
		require.Len(t, events, 1)
		require.Equal(t, realtime.GroupName(7), events[0].Group)
		require.Equal(t, realtime.KindMessage, events[0].Event.Kind)
		require.Equal(t, uint(1), events[0].Event.SenderID)

		var frame struct {
			Type    string                 `json:"type"`
			Message models.MessageResponse `json:"message"`
		}
		require.NoError(t, json.Unmarshal(events[0].Event.Payload, &frame))
		require.Equal(t, "message", frame.Type)
		require.Equal(t, "hello", frame.Message.Content)
	})

	t.Run("rejects a message with no content and no image", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(7, 1, true, 1, 2)

		_, err := fx.service.SendMessage(context.Background(), 7, 1, "", "")
		require.Error(t, err)
		var apiErr *apiError.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.Status)
		require.Empty(t, fx.broker.events())
	})

	t.Run("rejects an inactive conversation like a missing one", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(8, 1, false, 1, 2)

		_, err := fx.service.SendMessage(context.Background(), 8, 1, "anyone there", "")
		var apiErr *apiError.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.Status)
		require.Empty(t, fx.broker.events())
		require.Empty(t, fx.conversationRepo.messages)
	})

	t.Run("sequential sends persist in submission order", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(7, 1, true, 1, 2)

		const n = 10
		for i := 0; i < n; i++ {
			_, err := fx.service.SendMessage(context.Background(), 7, 1, fmt.Sprintf("m%d", i), "")
			require.NoError(t, err)
		}

		stored := fx.conversationRepo.messages
		require.Len(t, stored, n)
		for i := 0; i < n; i++ {
			require.Equal(t, fmt.Sprintf("m%d", i), stored[i].Content)
			if i > 0 {
				require.Greater(t, stored[i].ID, stored[i-1].ID)
				require.False(t, stored[i].CreatedAt.Before(stored[i-1].CreatedAt))
			}
		}

		// the live channel saw them in the same order
		events := fx.broker.events()
		require.Len(t, events, n)
		for i, e := range events {
			var frame struct {
				Message models.MessageResponse `json:"message"`
			}
			require.NoError(t, json.Unmarshal(e.Event.Payload, &frame))
			require.Equal(t, fmt.Sprintf("m%d", i), frame.Message.Content)
		}
	})

	t.Run("rejects a sender who is not a participant", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(7, 1, true, 1, 2)

		_, err := fx.service.SendMessage(context.Background(), 7, 99, "hi", "")
		var apiErr *apiError.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.Status)
		require.Empty(t, fx.broker.events())
	})

	t.Run("image-only message carries the attachment", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(7, 1, true, 1, 2)

		response, err := fx.service.SendMessage(context.Background(), 7, 1, "", "https://cdn.example.com/pic.png")
		require.NoError(t, err)
		require.Len(t, response.Attachments, 1)
		require.Equal(t, "https://cdn.example.com/pic.png", response.Attachments[0].ImageURL)
	})

	t.Run("attachment failure still delivers the message", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(7, 1, true, 1, 2)
		fx.conversationRepo.attachmentErr = errors.New("bucket offline")

		response, err := fx.service.SendMessage(context.Background(), 7, 1, "look", "https://cdn.example.com/pic.png")
		require.NoError(t, err)
		require.Empty(t, response.Attachments)
		require.Len(t, fx.broker.events(), 1)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		fx := newMessagingFixture(t)
		fx.seedConversation(7, 1, true, 1, 2)
		fx.broker.err = errors.New("redis down")

		_, err := fx.service.SendMessage(context.Background(), 7, 1, "hello", "")
		require.NoError(t, err)
		require.Len(t, fx.conversationRepo.messages, 1)
	})
}

func TestAuthorizeParticipant(t *testing.T) {
	fx := newMessagingFixture(t)
	fx.seedConversation(7, 1, true, 1, 2)
	fx.seedConversation(8, 1, false, 1, 2)

	t.Run("allows a participant of an active conversation", func(t *testing.T) {
		conversation, err := fx.service.AuthorizeParticipant(7, 1)
		require.NoError(t, err)
		require.Equal(t, uint(7), conversation.ID)
	})

	notFoundCases := map[string]struct {
		conversationID uint
		userID         uint
	}{
		"missing conversation":  {conversationID: 999, userID: 1},
		"inactive conversation": {conversationID: 8, userID: 1},
		"non-participant":       {conversationID: 7, userID: 99},
	}
	for name, tc := range notFoundCases {
		t.Run(name+" yields the same not-found error", func(t *testing.T) {
			_, err := fx.service.AuthorizeParticipant(tc.conversationID, tc.userID)
			var apiErr *apiError.Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, http.StatusNotFound, apiErr.Status)
			require.Equal(t, "conversation not found", apiErr.Message)
		})
	}
}

func TestGetOrCreateConversation(t *testing.T) {
	fx := newMessagingFixture(t)
	fx.adRepo.ads[1] = &models.Ad{Model: models.Model{ID: 1}, Title: "fix my sink", IsActive: true}
	fx.authRepo.users[1] = &models.User{Model: models.Model{ID: 1}, UID: "u1"}
	fx.authRepo.users[2] = &models.User{Model: models.Model{ID: 2}, UID: "u2"}

	t.Run("creating twice returns the same conversation", func(t *testing.T) {
		first, err := fx.service.GetOrCreateConversation(1, 1, 2)
		require.NoError(t, err)
		second, err := fx.service.GetOrCreateConversation(1, 1, 2)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)

		// order of the pair does not matter
		third, err := fx.service.GetOrCreateConversation(1, 2, 1)
		require.NoError(t, err)
		require.Equal(t, first.ID, third.ID)
	})

	t.Run("rejects a conversation with yourself", func(t *testing.T) {
		_, err := fx.service.GetOrCreateConversation(1, 1, 1)
		var apiErr *apiError.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.Status)
	})

	t.Run("rejects an unknown ad", func(t *testing.T) {
		_, err := fx.service.GetOrCreateConversation(99, 1, 2)
		var apiErr *apiError.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.Status)
	})

	t.Run("rejects an unknown counterpart", func(t *testing.T) {
		_, err := fx.service.GetOrCreateConversation(1, 1, 42)
		var apiErr *apiError.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.Status)
	})
}

func TestMarkReadAndUnreadCounts(t *testing.T) {
	fx := newMessagingFixture(t)
	fx.seedConversation(7, 1, true, 1, 2)

	_, err := fx.service.SendMessage(context.Background(), 7, 1, "one", "")
	require.NoError(t, err)
	_, err = fx.service.SendMessage(context.Background(), 7, 1, "two", "")
	require.NoError(t, err)
	_, err = fx.service.SendMessage(context.Background(), 7, 2, "reply", "")
	require.NoError(t, err)

	count, err := fx.service.ConversationUnreadCount(7, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.NoError(t, fx.service.MarkRead(7, 2))

	count, err = fx.service.ConversationUnreadCount(7, 2)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	// the reader's own message stays unread for the other side
	count, err = fx.service.ConversationUnreadCount(7, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
