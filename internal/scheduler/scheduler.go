package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"VegeNavi/internal/handler"
	"VegeNavi/internal/notifier"
)

// Runner is the function invoked on every tick.
type Runner interface {
	Handle(ctx context.Context, event json.RawMessage) (handler.Response, error)
}

// Sender delivers reports. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// scheduledEvent is passed to the runner on cron ticks.
var scheduledEvent = json.RawMessage(`{"source":"scheduler"}`)

// Scheduler runs the handler on a cron schedule.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Sender Sender // may be nil
	Logger *zap.Logger
	Ctx    context.Context

	// NotifySuccess also reports successful runs.
	NotifySuccess bool

	runMu  sync.Mutex // one run at a time
	mu     sync.Mutex
	last   *handler.Response
	lastAt time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, sender Sender, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Sender: sender,
		Logger: logger,
		Ctx:    ctx,
	}
}

// Register adds the collection task at spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.task); err != nil {
		return fmt.Errorf("register collection task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the task immediately and returns its result.
func (s *Scheduler) RunNow() handler.Response {
	return s.run()
}

// Last returns the most recent result and its time.
func (s *Scheduler) Last() (*handler.Response, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastAt
}

func (s *Scheduler) task() {
	s.run()
}

func (s *Scheduler) run() handler.Response {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.Logger.Info("running collection task")
	start := time.Now()
	resp, err := s.Runner.Handle(s.Ctx, scheduledEvent)
	if err != nil {
		resp = handler.Response{StatusCode: 500, Body: err.Error()}
	}
	elapsed := time.Since(start)

	s.mu.Lock()
	s.last = &resp
	s.lastAt = start
	s.mu.Unlock()

	if !resp.OK() || s.NotifySuccess {
		s.trySend(notifier.FormatRunReport(resp, start, elapsed))
	}
	return resp
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run", "集計":
		resp := s.run()
		if !resp.OK() || s.NotifySuccess {
			return ""
		}
		return resp.Body
	case "/status", "状態":
		last, at := s.Last()
		return notifier.FormatStatus(last, at)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}
