package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedbackquest/internal/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeValidator struct{}

func (fakeValidator) ValidateToken(token string) (*model.ParticipantClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid")
	}
	return &model.ParticipantClaims{UserID: "anon_1"}, nil
}

type fakeProgress struct{}

func (fakeProgress) Load(ctx context.Context, userID string) (*model.UserProgress, error) {
	return &model.UserProgress{Level: 5, CurrentXP: 38, TotalXP: 850}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestHub_SendToUserReachesEveryConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Stop()

	a := &Connection{UserID: "u1", Send: make(chan []byte, 4), Hub: hub}
	b := &Connection{UserID: "u1", Send: make(chan []byte, 4), Hub: hub}
	other := &Connection{UserID: "u2", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)
	waitFor(t, func() bool { return hub.ConnectionCount("u1") == 2 })

	hub.SendToUser("u1", string(MsgLevelUp), map[string]int{"level": 6})

	for _, conn := range []*Connection{a, b} {
		select {
		case data := <-conn.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, MsgLevelUp, msg.Type)
			assert.JSONEq(t, `{"level":6}`, string(msg.Payload))
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Stop()

	conn := &Connection{UserID: "u1", Send: make(chan []byte, 1), Hub: hub}
	hub.Register(conn)
	waitFor(t, func() bool { return hub.ConnectionCount("u1") == 1 })

	hub.Unregister(conn)
	waitFor(t, func() bool { return hub.ConnectionCount("u1") == 0 })

	_, ok := <-conn.Send
	assert.False(t, ok)
}

func TestProgressWS_RejectsBadToken(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Stop()
	h := NewHandler(hub, fakeValidator{}, fakeProgress{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ProgressWS(rec, httptest.NewRequest(http.MethodGet, "/v1/ws/progress?token=bad", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ProgressWS(rec, httptest.NewRequest(http.MethodGet, "/v1/ws/progress", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProgressWS_SendsSnapshotAndEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Stop()
	h := NewHandler(hub, fakeValidator{}, fakeProgress{}, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(h.ProgressWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=good"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	client.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot Message
	require.NoError(t, client.ReadJSON(&snapshot))
	assert.Equal(t, MsgProgressUpdated, snapshot.Type)
	assert.JSONEq(t, `{"level":5,"currentXP":38,"totalXP":850}`, string(snapshot.Payload))

	hub.SendToUser("anon_1", string(MsgLevelUp), map[string]int{"level": 6})

	var event Message
	require.NoError(t, client.ReadJSON(&event))
	assert.Equal(t, MsgLevelUp, event.Type)
}
