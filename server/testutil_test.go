package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmmarC10/ContractinGO-BE/config"
	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
	"github.com/AmmarC10/ContractinGO-BE/realtime"
	"github.com/AmmarC10/ContractinGO-BE/services"
	"github.com/AmmarC10/ContractinGO-BE/services/jwt"
)

const testJWTSecret = "test-signing-secret"

type fakeAuthService struct {
	users        map[string]*models.User
	resolveCalls int32
	syncCalls    int32
}

func newFakeAuthService(users ...*models.User) *fakeAuthService {
	byUID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byUID[u.UID] = u
	}
	return &fakeAuthService{users: byUID}
}

func (f *fakeAuthService) SyncUser(claims *jwt.Claims) (*models.User, error) {
	atomic.AddInt32(&f.syncCalls, 1)
	if u, ok := f.users[claims.UID]; ok {
		return u, nil
	}
	u := &models.User{Model: models.Model{ID: uint(len(f.users) + 1)}, UID: claims.UID, Name: claims.Name, Email: claims.Email}
	f.users[claims.UID] = u
	return u, nil
}

func (f *fakeAuthService) ResolveUser(claims *jwt.Claims) (*models.User, error) {
	atomic.AddInt32(&f.resolveCalls, 1)
	if u, ok := f.users[claims.UID]; ok {
		return u, nil
	}
	return nil, apiError.ErrUnauthorized
}

func (f *fakeAuthService) GetUserProfile(userID uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apiError.New("user not found", http.StatusNotFound)
}

func (f *fakeAuthService) EditUserProfile(userID uint, details *models.EditProfileRequest) error {
	return nil
}

func (f *fakeAuthService) RegisterDeviceToken(userID uint, token string) error {
	return nil
}

type fakeMessagingService struct {
	broker       realtime.Broker
	participants map[uint][]uint

	authorizeCalls int32
	nextMessageID  uint32
}

func newFakeMessagingService(broker realtime.Broker) *fakeMessagingService {
	return &fakeMessagingService{
		broker:       broker,
		participants: make(map[uint][]uint),
	}
}

func (f *fakeMessagingService) isMember(conversationID, userID uint) bool {
	for _, id := range f.participants[conversationID] {
		if id == userID {
			return true
		}
	}
	return false
}

func (f *fakeMessagingService) AuthorizeParticipant(conversationID, userID uint) (*models.Conversation, error) {
	atomic.AddInt32(&f.authorizeCalls, 1)
	if !f.isMember(conversationID, userID) {
		return nil, apiError.New("conversation not found", http.StatusNotFound)
	}
	return &models.Conversation{Model: models.Model{ID: conversationID}, IsActive: true}, nil
}

func (f *fakeMessagingService) SendMessage(ctx context.Context, conversationID, senderID uint, content, imageURL string) (models.MessageResponse, error) {
	if content == "" && imageURL == "" {
		return models.MessageResponse{}, apiError.New("Message content or image required", http.StatusBadRequest)
	}
	if !f.isMember(conversationID, senderID) {
		return models.MessageResponse{}, apiError.New("conversation not found", http.StatusNotFound)
	}

	response := models.MessageResponse{
		ID:      uint(atomic.AddUint32(&f.nextMessageID, 1)),
		Content: content,
		Sender:  models.UserResponse{ID: senderID},
	}
	event, err := realtime.NewMessageEvent(response)
	if err != nil {
		return models.MessageResponse{}, err
	}
	if err := f.broker.Publish(ctx, realtime.GroupName(conversationID), event); err != nil {
		return models.MessageResponse{}, err
	}
	return response, nil
}

func (f *fakeMessagingService) ListUserConversations(userID uint) ([]models.ConversationResponse, error) {
	return []models.ConversationResponse{}, nil
}

func (f *fakeMessagingService) GetConversation(conversationID, userID uint) (*models.ConversationResponse, error) {
	if _, err := f.AuthorizeParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	return &models.ConversationResponse{ID: conversationID}, nil
}

func (f *fakeMessagingService) GetOrCreateConversation(adID, userID, otherUserID uint) (*models.ConversationResponse, error) {
	if userID == otherUserID {
		return nil, apiError.New("cannot start a conversation with yourself", http.StatusBadRequest)
	}
	id := adID*100 + userID + otherUserID
	f.participants[id] = []uint{userID, otherUserID}
	return &models.ConversationResponse{ID: id}, nil
}

func (f *fakeMessagingService) ListMessages(conversationID, userID uint) ([]models.MessageResponse, error) {
	if _, err := f.AuthorizeParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	return []models.MessageResponse{}, nil
}

func (f *fakeMessagingService) MarkRead(conversationID, userID uint) error {
	_, err := f.AuthorizeParticipant(conversationID, userID)
	return err
}

func (f *fakeMessagingService) UnreadCount(userID uint) (int64, error) {
	return 0, nil
}

func (f *fakeMessagingService) ConversationUnreadCount(conversationID, userID uint) (int64, error) {
	if _, err := f.AuthorizeParticipant(conversationID, userID); err != nil {
		return 0, err
	}
	return 0, nil
}

func (f *fakeMessagingService) DeleteConversation(conversationID, userID uint) error {
	_, err := f.AuthorizeParticipant(conversationID, userID)
	return err
}

var _ services.MessagingService = (*fakeMessagingService)(nil)
var _ services.AuthService = (*fakeAuthService)(nil)

type testEnv struct {
	server    *httptest.Server
	hub       *realtime.Hub
	auth      *fakeAuthService
	messaging *fakeMessagingService
}

func newTestEnv(t *testing.T, users ...*models.User) *testEnv {
	t.Helper()
	t.Setenv("GIN_MODE", "test")

	hub := realtime.NewHub(zap.NewNop().Sugar())
	auth := newFakeAuthService(users...)
	messaging := newFakeMessagingService(hub)

	s := &Server{
		Config: &config.Config{
			SupabaseJWTSecret:       testJWTSecret,
			WsHandshakeGraceSeconds: 5,
		},
		Logger:           zap.NewNop().Sugar(),
		AuthService:      auth,
		MessagingService: messaging,
		Broker:           hub,
	}

	srv := httptest.NewServer(s.setupRouter())
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, hub: hub, auth: auth, messaging: messaging}
}

func signTestToken(t *testing.T, uid, name string) string {
	t.Helper()
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":  uid,
		"name": name,
		"aud":  "authenticated",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}
