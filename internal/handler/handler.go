package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"VegeNavi/internal/calculator"
	"VegeNavi/internal/collector"
	"VegeNavi/internal/model"
	"VegeNavi/internal/publisher"
	"VegeNavi/internal/recorder"
)

// SuccessBody is returned when both files were processed.
const SuccessBody = "CSV file successfully processed"

// Failure message prefixes.
const (
	fetchErrorPrefix      = "CSVファイルの取得中にエラーが発生しました: "
	unexpectedErrorPrefix = "予期せぬエラーが発生しました: "
)

// Response is the invocation result in the shape the hosting platform expects.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// OK reports whether the run succeeded.
func (r Response) OK() bool { return r.StatusCode == http.StatusOK }

// Options tune the analysis.
type Options struct {
	TrendPeriods  int
	RatePrecision int
}

// Handler runs one fetch, summarize and publish cycle per invocation.
type Handler struct {
	Collector *collector.Collector
	Publisher publisher.Publisher
	Recorder  recorder.Recorder
	Options   Options
	Logger    *zap.Logger
}

// New creates a Handler. A nil publisher or recorder becomes a no-op.
func New(col *collector.Collector, pub publisher.Publisher, rec recorder.Recorder, opts Options, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = publisher.NewNoopPublisher()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{Collector: col, Publisher: pub, Recorder: rec, Options: opts, Logger: logger}
}

// Handle is the function entry point. The event is not inspected. Failures are
// reported in the Response; the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, _ json.RawMessage) (Response, error) {
	evt := &recorder.RunEvent{RunID: uuid.NewString(), StartedAt: time.Now()}
	logger := h.Logger.With(zap.String("run_id", evt.RunID))
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With(zap.String("aws_request_id", lc.AwsRequestID))
	}

	summary, err := h.process(ctx, logger, evt)
	resp := classify(err)
	if err != nil {
		logger.Error("run failed", zap.String("body", resp.Body), zap.Error(err))
	} else {
		logger.Info("run succeeded",
			zap.Int("trend_items", evt.TrendItems),
			zap.Int("rate_items", evt.RateItems),
			zap.String("latest_period", evt.LatestPeriod))
	}

	evt.Duration = time.Since(evt.StartedAt)
	evt.StatusCode = resp.StatusCode
	evt.Message = resp.Body
	h.record(logger, evt, summary)
	return resp, nil
}

func (h *Handler) process(ctx context.Context, logger *zap.Logger, evt *recorder.RunEvent) (summary *model.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered panic", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	ds, err := h.Collector.Collect(ctx)
	if err != nil {
		return nil, err
	}
	evt.HistoricalRows = ds.Historical.Rows()
	evt.RecentRows = ds.Recent.Rows()

	summary, err = calculator.Summarize(ds, h.Options.TrendPeriods, h.Options.RatePrecision)
	if err != nil {
		return nil, err
	}
	evt.TrendItems = len(summary.Trend)
	evt.RateItems = len(summary.Rates)
	evt.LatestPeriod = summary.Latest.Label()

	files, err := publisher.Files(summary)
	if err != nil {
		return nil, err
	}
	if err := publisher.PublishAll(ctx, h.Publisher, files); err != nil {
		return nil, err
	}
	return summary, nil
}

func (h *Handler) record(logger *zap.Logger, evt *recorder.RunEvent, summary *model.Summary) {
	if err := h.Recorder.RecordRun(evt); err != nil {
		logger.Error("record run", zap.Error(err))
	}
	if summary == nil || len(summary.Rates) == 0 {
		return
	}
	if err := h.Recorder.RecordRates(evt.RunID, evt.LatestPeriod, summary.Rates); err != nil {
		logger.Error("record rates", zap.Error(err))
	}
}

// classify maps an error to the result returned to the platform.
func classify(err error) Response {
	if err == nil {
		return Response{StatusCode: http.StatusOK, Body: SuccessBody}
	}
	var reqErr *collector.RequestError
	if errors.As(err, &reqErr) {
		return Response{StatusCode: http.StatusInternalServerError, Body: fetchErrorPrefix + err.Error()}
	}
	return Response{StatusCode: http.StatusInternalServerError, Body: unexpectedErrorPrefix + err.Error()}
}
