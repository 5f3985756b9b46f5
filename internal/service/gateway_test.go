package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedbackquest/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKeyEnv = "TEST_AI_GATEWAY_KEY"

func newTestGateway(t *testing.T, handler http.HandlerFunc, timeout time.Duration) GatewayClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGatewayClient(&config.AIConfig{
		APIKeyEnv: testKeyEnv,
		BaseURL:   srv.URL,
		Model:     "test-model",
		Timeout:   timeout,
	}, zap.NewNop())
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestGatewayClient_Success(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")

	var got chatRequest
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(completion(`{"xp": 80}`)))
	}, time.Second)

	out, err := gw.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, `{"xp": 80}`, out)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, []ChatMessage{{Role: "user", Content: "hi"}}, got.Messages)
}

func TestGatewayClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "payment required", status: http.StatusPaymentRequired, wantErr: ErrPaymentRequired},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrUpstream},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrUpstream},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ErrUpstream},
		{name: "malformed body", status: http.StatusOK, body: `not json`, wantErr: ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKeyEnv, "sk-test")
			calls := 0
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, time.Second)

			_, err := gw.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, calls, "no retries")
		})
	}
}

func TestGatewayClient_MissingKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent without a key")
	}, time.Second)

	_, err := gw.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGatewayClient_Timeout(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	start := time.Now()
	_, err := gw.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, ErrGatewayTimeout)
	assert.Less(t, time.Since(start), time.Second)
}
