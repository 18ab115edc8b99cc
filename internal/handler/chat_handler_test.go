package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/skillswap/skillswap-backend/internal/handler"
	"github.com/skillswap/skillswap-backend/internal/repository"
	"github.com/skillswap/skillswap-backend/internal/routes"
	"github.com/skillswap/skillswap-backend/internal/service"
	"github.com/skillswap/skillswap-backend/internal/ws"
	"github.com/skillswap/skillswap-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	auth   service.AuthService
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Each pool connection to :memory: is a separate database; the websocket
	// pumps touch the db from their own goroutines, so pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.User{},
		&domain.ConnectionRequest{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.MessageRead{},
	)
	require.NoError(t, err)

	jwtManager := jwt.NewManager("test-secret", 15*time.Minute, time.Hour)

	userRepo := repository.NewUserRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	authService := service.NewAuthService(userRepo, jwtManager)
	connectionService := service.NewConnectionService(connRepo, userRepo)
	chatService := service.NewChatService(convRepo, msgRepo, userRepo, connRepo, nil)

	hub := ws.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)

	router := gin.New()
	routes.Setup(
		router,
		handler.NewAuthHandler(authService),
		handler.NewChatHandler(chatService, hub),
		handler.NewConnectionHandler(connectionService),
		handler.NewUserHandler(userRepo),
		handler.NewWSHandler(hub, chatService, jwtManager, ""),
		jwtManager,
	)

	return &apiFixture{router: router, db: db, auth: authService}
}

// registerUser creates an account and returns its id with a valid bearer token.
func (f *apiFixture) registerUser(t *testing.T, username string) (int64, string) {
	t.Helper()
	resp, err := f.auth.Register(&domain.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	return resp.User.ID, resp.AccessToken
}

func (f *apiFixture) connect(t *testing.T, a, b int64) {
	t.Helper()
	require.NoError(t, f.db.Create(&domain.ConnectionRequest{
		RequesterID: a,
		RecipientID: b,
		Status:      domain.ConnectionAccepted,
	}).Error)
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func TestConversationEndpointRequiresAuth(t *testing.T) {
	f := setupAPI(t)

	w := f.do(t, http.MethodPost, "/api/chat/conversation", "", gin.H{"receiver_id": 2})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConversationEndpointGate(t *testing.T) {
	f := setupAPI(t)
	aliceID, aliceToken := f.registerUser(t, "alice")
	bobID, _ := f.registerUser(t, "bob")

	// Without an accepted connection the directory refuses.
	w := f.do(t, http.MethodPost, "/api/chat/conversation", aliceToken, gin.H{"receiver_id": bobID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/chat/conversation", aliceToken, gin.H{"receiver_id": aliceID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/chat/conversation", aliceToken, gin.H{"receiver_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.connect(t, aliceID, bobID)
	w = f.do(t, http.MethodPost, "/api/chat/conversation", aliceToken, gin.H{"receiver_id": bobID})
	require.Equal(t, http.StatusOK, w.Code)

	var conv domain.ConversationResponse
	decodeData(t, w, &conv)
	assert.ElementsMatch(t, []int64{aliceID, bobID}, conv.Participants)
}

func TestSendAndListMessages(t *testing.T) {
	f := setupAPI(t)
	aliceID, aliceToken := f.registerUser(t, "alice")
	bobID, bobToken := f.registerUser(t, "bob")
	f.connect(t, aliceID, bobID)

	w := f.do(t, http.MethodPost, "/api/chat/conversation", aliceToken, gin.H{"receiver_id": bobID})
	require.Equal(t, http.StatusOK, w.Code)
	var conv domain.ConversationResponse
	decodeData(t, w, &conv)

	w = f.do(t, http.MethodPost, "/api/chat/message", aliceToken, gin.H{
		"conversation_id": conv.ID,
		"text":            "hello bob",
		"client_token":    "tok-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var sent domain.MessageResponse
	decodeData(t, w, &sent)
	assert.Equal(t, "tok-1", sent.ClientToken)
	assert.Equal(t, []int64{aliceID}, sent.ReadBy)

	// Bob's fetch returns the log and marks it read.
	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/chat/messages/%d", conv.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []domain.MessageResponse
	decodeData(t, w, &msgs)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].ReadBy, bobID)

	// Outsiders cannot read the log.
	_, eveToken := f.registerUser(t, "eve")
	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/chat/messages/%d", conv.ID), eveToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSendMessageRejectsBlankText(t *testing.T) {
	f := setupAPI(t)
	aliceID, aliceToken := f.registerUser(t, "alice")
	bobID, _ := f.registerUser(t, "bob")
	f.connect(t, aliceID, bobID)

	w := f.do(t, http.MethodPost, "/api/chat/conversation", aliceToken, gin.H{"receiver_id": bobID})
	require.Equal(t, http.StatusOK, w.Code)
	var conv domain.ConversationResponse
	decodeData(t, w, &conv)

	w = f.do(t, http.MethodPost, "/api/chat/message", aliceToken, gin.H{
		"conversation_id": conv.ID,
		"text":            "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSidebarEndpoint(t *testing.T) {
	f := setupAPI(t)
	aliceID, aliceToken := f.registerUser(t, "alice")
	bobID, bobToken := f.registerUser(t, "bob")
	f.connect(t, aliceID, bobID)

	w := f.do(t, http.MethodPost, "/api/chat/conversation", aliceToken, gin.H{"receiver_id": bobID})
	require.Equal(t, http.StatusOK, w.Code)
	var conv domain.ConversationResponse
	decodeData(t, w, &conv)

	w = f.do(t, http.MethodPost, "/api/chat/message", bobToken, gin.H{
		"conversation_id": conv.ID,
		"text":            "hey alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/chat/conversations", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sidebar []domain.ConversationSummary
	decodeData(t, w, &sidebar)
	require.Len(t, sidebar, 1)
	assert.Equal(t, "bob", sidebar[0].OtherUser.Username)
	assert.Equal(t, int64(1), sidebar[0].UnreadCount)
	require.NotNil(t, sidebar[0].LastMessage)
	assert.Equal(t, "hey alice", sidebar[0].LastMessage.Text)
}

func TestConnectionFlow(t *testing.T) {
	f := setupAPI(t)
	_, aliceToken := f.registerUser(t, "alice")
	bobID, bobToken := f.registerUser(t, "bob")

	w := f.do(t, http.MethodPost, "/api/connections", aliceToken, gin.H{"recipient_id": bobID})
	require.Equal(t, http.StatusOK, w.Code)
	var sent domain.ConnectionResponse
	decodeData(t, w, &sent)
	assert.Equal(t, domain.ConnectionPending, sent.Status)

	w = f.do(t, http.MethodPatch, fmt.Sprintf("/api/connections/%d", sent.ID), bobToken, gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)

	// Now the pair can converse.
	w = f.do(t, http.MethodPost, "/api/chat/conversation", bobToken, gin.H{"receiver_id": sent.Requester.ID})
	assert.Equal(t, http.StatusOK, w.Code)
}
