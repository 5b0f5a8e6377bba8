package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/domain"
	"chatrelay/internal/infrastructure/stream"
	"chatrelay/internal/services/history"
	"chatrelay/internal/services/registry"
	"chatrelay/internal/services/relay"
)

type fakeDirectory struct {
	users map[string]stream.DirectoryUser
}

func (f *fakeDirectory) QueryUsers(_ context.Context, userID string) ([]stream.DirectoryUser, error) {
	if u, ok := f.users[userID]; ok {
		return []stream.DirectoryUser{u}, nil
	}
	return nil, nil
}

func (f *fakeDirectory) UpsertUser(_ context.Context, user stream.DirectoryUser) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeDirectory) EnsureChannel(context.Context, string, string) error {
	return nil
}

func (f *fakeDirectory) Publish(context.Context, string, string, string) error {
	return nil
}

type fakeStore struct {
	users     map[string]domain.User
	chats     map[string][]domain.ChatRecord
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]domain.User),
		chats: make(map[string][]domain.ChatRecord),
	}
}

func (f *fakeStore) UpsertUser(_ context.Context, user domain.User) error {
	if _, ok := f.users[user.UserID]; !ok {
		f.users[user.UserID] = user
	}
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	if u, ok := f.users[userID]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertChat(_ context.Context, userID, message, reply string) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.chats[userID] = append(f.chats[userID], domain.ChatRecord{
		UserID:    userID,
		Message:   message,
		Reply:     reply,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeStore) ListChats(_ context.Context, userID string) ([]domain.ChatRecord, error) {
	return f.chats[userID], nil
}

type fakeGenerator struct {
	reply string
}

func (f *fakeGenerator) Generate(context.Context, string) (string, error) {
	return f.reply, nil
}

type env struct {
	directory *fakeDirectory
	store     *fakeStore
	generator *fakeGenerator
	registry  *registry.Service
	relay     *relay.Service
	history   *history.Service
}

func newEnv() *env {
	e := &env{
		directory: &fakeDirectory{users: make(map[string]stream.DirectoryUser)},
		store:     newFakeStore(),
		generator: &fakeGenerator{reply: "hi there"},
	}
	e.registry = registry.NewService(e.directory, e.store, time.Second)
	e.relay = relay.NewService(e.directory, e.directory, e.generator, e.store, time.Second)
	e.history = history.NewService(e.store, time.Second)
	return e
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func TestHandleRegisterUser(t *testing.T) {
	e := newEnv()
	handler := func(w http.ResponseWriter, r *http.Request) {
		HandleRegisterUser(e.registry, w, r)
	}

	t.Run("registers and returns identity", func(t *testing.T) {
		w := postJSON(handler, `{"name":"Ann Lee","email":"ann.lee@x.com"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var user domain.User
		require.NoError(t, json.NewDecoder(w.Body).Decode(&user))
		assert.Equal(t, "ann_lee_x_com", user.UserID)
		assert.Equal(t, "Ann Lee", user.Name)
		assert.Equal(t, "ann.lee@x.com", user.Email)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(handler, `{"name":"Ann Lee"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Name and email are required fields.", decodeError(t, w))
	})

	t.Run("empty body", func(t *testing.T) {
		w := postJSON(handler, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Name and email are required fields.", decodeError(t, w))
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := postJSON(handler, `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleChat(t *testing.T) {
	e := newEnv()
	chatHandler := func(w http.ResponseWriter, r *http.Request) {
		HandleChat(e.relay, w, r)
	}
	registerHandler := func(w http.ResponseWriter, r *http.Request) {
		HandleRegisterUser(e.registry, w, r)
	}

	postJSON(registerHandler, `{"name":"Ann Lee","email":"ann.lee@x.com"}`)

	t.Run("relays a message", func(t *testing.T) {
		w := postJSON(chatHandler, `{"userId":"ann_lee_x_com","message":"hello"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp ChatResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "hi there", resp.Reply)
	})

	t.Run("unregistered user", func(t *testing.T) {
		w := postJSON(chatHandler, `{"userId":"stranger","message":"hello"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found.", decodeError(t, w))
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(chatHandler, `{"userId":"ann_lee_x_com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Message and userId are required fields.", decodeError(t, w))
	})

	t.Run("dependency failure maps to 500", func(t *testing.T) {
		e.store.insertErr = errors.New("db down")
		defer func() { e.store.insertErr = nil }()

		w := postJSON(chatHandler, `{"userId":"ann_lee_x_com","message":"hello"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error.", decodeError(t, w))
	})
}

func TestHandleGetMessages(t *testing.T) {
	e := newEnv()
	handler := func(w http.ResponseWriter, r *http.Request) {
		HandleGetMessages(e.history, w, r)
	}

	t.Run("empty history", func(t *testing.T) {
		w := postJSON(handler, `{"userId":"nobody_yet"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"messages":[]}`, w.Body.String())
	})

	t.Run("returns records", func(t *testing.T) {
		require.NoError(t, e.store.InsertChat(context.Background(), "ann_lee_x_com", "hello", "hi there"))

		w := postJSON(handler, `{"userId":"ann_lee_x_com"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp GetMessagesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Messages, 1)
		assert.Equal(t, "hello", resp.Messages[0].Message)
		assert.Equal(t, "hi there", resp.Messages[0].Reply)
	})

	t.Run("missing userId", func(t *testing.T) {
		w := postJSON(handler, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User ID is required.", decodeError(t, w))
	})
}
