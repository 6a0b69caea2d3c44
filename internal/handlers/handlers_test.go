package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/batepapo/internal/domain"
	"github.com/nfrund/batepapo/internal/handlers"
	"github.com/nfrund/batepapo/internal/middleware"
	"github.com/nfrund/batepapo/internal/room"
	"github.com/nfrund/batepapo/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type testAPI struct {
	e     *echo.Echo
	room  *room.Service
	clock *fixedClock
}

func newTestAPI(t *testing.T, opts ...room.Option) *testAPI {
	t.Helper()

	clock := &fixedClock{now: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}
	svc := room.NewService(storage.NewParticipantStore(), storage.NewMessageStore(),
		append([]room.Option{room.WithClock(clock)}, opts...)...)

	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Use(middleware.Identity)

	h := handlers.NewRoomHandler(svc)
	e.POST("/participants", h.Join)
	e.GET("/participants", h.ListParticipants)
	e.POST("/messages", h.PostMessage)
	e.GET("/messages", h.ListMessages)
	e.PUT("/messages/:id", h.EditMessage)
	e.DELETE("/messages/:id", h.DeleteMessage)
	e.POST("/status", h.Heartbeat)

	return &testAPI{e: e, room: svc, clock: clock}
}

func (a *testAPI) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(middleware.UserHeader, user)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoomHandler_EndToEnd(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[domain.Participant](t, rec)
	assert.Equal(t, "Alice", p.Name)

	rec = api.do(t, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decode[handlers.ErrorResponse](t, rec).Code)

	rec = api.do(t, http.MethodPost, "/messages", "Alice", `{"to":"Todos","text":"hi","type":"message"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	posted := decode[map[string]any](t, rec)
	assert.Equal(t, "Alice", posted["from"])
	assert.Equal(t, "message", posted["type"])
	assert.Equal(t, "09:30:00", posted["time"])
	assert.NotEmpty(t, posted["id"])

	// Bob never joined; listing does not require presence.
	rec = api.do(t, http.MethodGet, "/messages", "Bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sawHi bool
	for _, m := range decode[[]domain.Message](t, rec) {
		if m.Text == "hi" {
			sawHi = true
		}
	}
	assert.True(t, sawHi)

	rec = api.do(t, http.MethodGet, "/messages?limit=1", "Alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	last := decode[[]domain.Message](t, rec)
	require.Len(t, last, 1)
	assert.Equal(t, "hi", last[0].Text)

	rec = api.do(t, http.MethodGet, "/participants", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Participant](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)
}

func TestRoomHandler_NamesWithPunctuation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/participants", "", `{"name":"O'Brien"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "O'Brien", decode[domain.Participant](t, rec).Name)

	rec = api.do(t, http.MethodPost, "/status", "O'Brien", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/messages", "O'Brien", `{"to":"Todos","text":"Tom & Jerry say 2 < 3","type":"message"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Tom & Jerry say 2 < 3", decode[domain.Message](t, rec).Text)
}

func TestRoomHandler_Join_Validation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{}`},
		{"blank name", `{"name":"   "}`},
		{"malformed json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/participants", "", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "unprocessable_entity", decode[handlers.ErrorResponse](t, rec).Code)
		})
	}
}

func TestRoomHandler_PostMessage_Errors(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.room.Join(context.Background(), "Alice")
	require.NoError(t, err)

	tests := []struct {
		name string
		user string
		body string
	}{
		{"sender not online", "Bob", `{"to":"Todos","text":"hi","type":"message"}`},
		{"missing user header", "", `{"to":"Todos","text":"hi","type":"message"}`},
		{"status kind rejected", "Alice", `{"to":"Todos","text":"hi","type":"status"}`},
		{"missing text", "Alice", `{"to":"Todos","type":"message"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/messages", tt.user, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestRoomHandler_ListMessages_Errors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/messages", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodGet, "/messages?limit=abc", "Alice", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodGet, "/messages?limit=0", "Alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRoomHandler_PrivateMessages(t *testing.T) {
	api := newTestAPI(t)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, err := api.room.Join(context.Background(), name)
		require.NoError(t, err)
	}

	rec := api.do(t, http.MethodPost, "/messages", "Alice", `{"to":"Bob","text":"psst","type":"private_message"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	texts := func(user string) []string {
		rec := api.do(t, http.MethodGet, "/messages", user, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var out []string
		for _, m := range decode[[]domain.Message](t, rec) {
			out = append(out, m.Text)
		}
		return out
	}

	assert.Contains(t, texts("Alice"), "psst")
	assert.Contains(t, texts("Bob"), "psst")
	assert.NotContains(t, texts("Carol"), "psst")
}

func TestRoomHandler_Heartbeat(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.room.Join(context.Background(), "Alice")
	require.NoError(t, err)

	rec := api.do(t, http.MethodPost, "/status", "Alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/status", "Bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/status", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoomHandler_EditAndDelete(t *testing.T) {
	api := newTestAPI(t)
	for _, name := range []string{"Alice", "Bob"} {
		_, err := api.room.Join(context.Background(), name)
		require.NoError(t, err)
	}

	rec := api.do(t, http.MethodPost, "/messages", "Alice", `{"to":"Todos","text":"hi","type":"message"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[domain.Message](t, rec).ID

	rec = api.do(t, http.MethodPut, "/messages/"+id, "Bob", `{"text":"hacked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, "/messages/missing", "Alice", `{"text":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, "/messages/"+id, "Alice", `{"text":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPut, "/messages/"+id, "Alice", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", decode[domain.Message](t, rec).Text)

	rec = api.do(t, http.MethodDelete, "/messages/"+id, "Bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodDelete, "/messages/"+id, "Alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodDelete, "/messages/"+id, "Alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.GET("/ok", handlers.NewHealthHandler(nil).Health)
	e.GET("/down", handlers.NewHealthHandler(stubPinger{
		err: errors.Join(domain.ErrUnavailable, errors.New("connection refused")),
	}).Health)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode[handlers.ErrorResponse](t, rec).Code)
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[handlers.ErrorResponse](t, rec).Code)
}
