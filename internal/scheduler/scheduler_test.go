package scheduler

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"VegeNavi/internal/handler"
)

type fakeRunner struct {
	mu    sync.Mutex
	resp  handler.Response
	calls int
}

func (f *fakeRunner) Handle(context.Context, json.RawMessage) (handler.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, nil
}

func (f *fakeRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSender struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

var (
	ok     = handler.Response{StatusCode: 200, Body: handler.SuccessBody}
	failed = handler.Response{StatusCode: 500, Body: "CSVファイルの取得中にエラーが発生しました: GET x: status 404"}
)

func TestRegister_InvalidSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeRunner{resp: ok}, nil, zap.NewNop())
	assert.Error(t, s.Register("not a cron spec"))
}

func TestRunNow_NotifiesOnFailure(t *testing.T) {
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), &fakeRunner{resp: failed}, sender, zap.NewNop())

	resp := s.RunNow()
	assert.Equal(t, 500, resp.StatusCode)
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "500")

	last, at := s.Last()
	require.NotNil(t, last)
	assert.Equal(t, failed, *last)
	assert.False(t, at.IsZero())
}

func TestRunNow_QuietOnSuccess(t *testing.T) {
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), &fakeRunner{resp: ok}, sender, zap.NewNop())

	s.RunNow()
	assert.Empty(t, sender.texts)

	s.NotifySuccess = true
	s.RunNow()
	assert.Len(t, sender.texts, 1)
}

func TestHandleCommand(t *testing.T) {
	runner := &fakeRunner{resp: ok}
	s := NewScheduler(context.Background(), runner, nil, zap.NewNop())

	assert.Equal(t, "まだ実行されていません", s.HandleCommand("/status"))
	assert.Equal(t, handler.SuccessBody, s.HandleCommand("/run"))
	assert.Equal(t, 1, runner.Calls())
	assert.Contains(t, s.HandleCommand("/status"), "ステータス: 200")
	assert.True(t, strings.Contains(s.HandleCommand("hello"), "/run"))
}

func TestScheduledRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{resp: ok}
	s := NewScheduler(context.Background(), runner, nil, zap.NewNop())
	require.NoError(t, s.Register("* * * * * *"))
	s.Start()

	assert.Eventually(t, func() bool { return runner.Calls() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}
