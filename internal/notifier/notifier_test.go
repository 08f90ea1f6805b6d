package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"VegeNavi/internal/handler"
)

func TestFormatRunReport(t *testing.T) {
	at := time.Date(2024, 5, 3, 6, 0, 0, 0, time.UTC)

	msg := FormatRunReport(handler.Response{StatusCode: 500, Body: "予期せぬエラーが発生しました: <nil>"}, at, 1234*time.Millisecond)
	assert.Contains(t, msg, "❌")
	assert.Contains(t, msg, "2024-05-03 06:00")
	assert.Contains(t, msg, "1.234s")
	assert.Contains(t, msg, "&lt;nil&gt;")

	msg = FormatRunReport(handler.Response{StatusCode: 200, Body: handler.SuccessBody}, at, time.Second)
	assert.Contains(t, msg, "✅")
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "まだ実行されていません", FormatStatus(nil, time.Time{}))
	msg := FormatStatus(&handler.Response{StatusCode: 200, Body: handler.SuccessBody}, time.Now())
	assert.Contains(t, msg, "ステータス: 200")
}

type telegramStub struct {
	mu     sync.Mutex
	sent   []map[string]string
	status int
	polled int
	sentCh chan struct{}
}

func (s *telegramStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		s.mu.Lock()
		s.sent = append(s.sent, payload)
		s.mu.Unlock()
		if s.sentCh != nil {
			s.sentCh <- struct{}{}
		}
		w.WriteHeader(s.status)
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		s.mu.Lock()
		s.polled++
		first := s.polled == 1
		s.mu.Unlock()
		if first {
			_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /status "}}]}`))
			return
		}
		<-r.Context().Done()
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(url string) *TelegramNotifier {
	tn := NewTelegramNotifier("TOKEN", "42", "", zap.NewNop())
	tn.APIBase = url
	return tn
}

func TestSend(t *testing.T) {
	stub := &telegramStub{status: http.StatusOK}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "hello"))
	require.Len(t, stub.sent, 1)
	assert.Equal(t, "42", stub.sent[0]["chat_id"])
	assert.Equal(t, "hello", stub.sent[0]["text"])
	assert.Equal(t, "HTML", stub.sent[0]["parse_mode"])
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	stub := &telegramStub{status: http.StatusBadGateway}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "hello", 0)
	assert.ErrorContains(t, err, "all 1 retries exhausted")
}

func TestStartPolling(t *testing.T) {
	stub := &telegramStub{status: http.StatusOK, sentCh: make(chan struct{}, 1)}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var got string
	go func() {
		defer close(done)
		newTestNotifier(srv.URL).StartPolling(ctx, func(cmd string) string {
			got = cmd
			return "pong"
		})
	}()

	select {
	case <-stub.sentCh:
	case <-time.After(3 * time.Second):
		t.Fatal("reply was not sent")
	}
	cancel()
	<-done

	assert.Equal(t, "/status", got)
	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Equal(t, "pong", stub.sent[0]["text"])
}
