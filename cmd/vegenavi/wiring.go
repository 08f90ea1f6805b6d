package main

import (
	"go.uber.org/zap"

	"VegeNavi/internal/collector"
	"VegeNavi/internal/config"
	"VegeNavi/internal/handler"
	"VegeNavi/internal/publisher"
	"VegeNavi/internal/recorder"
)

// buildHandler wires the handler from config. The returned cleanup closes the recorder.
func buildHandler(cfg *config.Config, logger *zap.Logger) (*handler.Handler, func()) {
	fetcher := collector.NewHTTPFetcher(cfg.Source.BaseURL, cfg.Proxy, cfg.Source.Timeout, logger)
	parser := &collector.Parser{Encoding: collector.Encoding(cfg.Source.Encoding), Logger: logger}
	col := collector.NewCollector(fetcher, parser, cfg.Source.HistoricalCSV, cfg.Source.RecentCSV, logger)

	pub := buildPublisher(cfg)
	logger.Info("publisher selected", zap.String("publisher", pub.Name()))

	rec := buildRecorder(cfg, logger)
	h := handler.New(col, pub, rec, handler.Options{
		TrendPeriods:  cfg.Analysis.TrendPeriods,
		RatePrecision: cfg.Analysis.RatePrecision,
	}, logger)

	return h, func() {
		if err := rec.Close(); err != nil {
			logger.Warn("close recorder", zap.Error(err))
		}
	}
}

func buildPublisher(cfg *config.Config) publisher.Publisher {
	switch {
	case cfg.Publish.EndpointURL != "":
		return publisher.NewHTTPPublisher(cfg.Publish.EndpointURL, cfg.Proxy, cfg.Source.Timeout)
	case cfg.Publish.Dir != "":
		return publisher.NewDirPublisher(cfg.Publish.Dir)
	default:
		return publisher.NewNoopPublisher()
	}
}

// buildRecorder prefers Postgres, then SQLite, and falls back to a no-op
// recorder when neither is configured or opening fails.
func buildRecorder(cfg *config.Config, logger *zap.Logger) recorder.Recorder {
	if dsn := cfg.Database.PostgresDSN; dsn != "" {
		pr, err := recorder.NewPostgresRecorder(dsn, logger)
		if err == nil {
			return pr
		}
		logger.Warn("init postgres recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	if path := cfg.Database.SQLitePath; path != "" {
		sr, err := recorder.NewSQLiteRecorder(path, logger)
		if err == nil {
			return sr
		}
		logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
	}
	return recorder.NewNoopRecorder()
}
