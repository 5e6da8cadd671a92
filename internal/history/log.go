package history

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend persists summaries. LoadAll returns them most recent first.
type Backend interface {
	Append(ctx context.Context, s Summary) error
	LoadAll(ctx context.Context) ([]Summary, error)
	Clear(ctx context.Context) error
}

// Log is the history collaborators talk to. It owns no state of its own; the
// backend decides where summaries live.
type Log struct {
	backend Backend
	logger  *slog.Logger
}

func NewLog(backend Backend, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{backend: backend, logger: logger}
}

func (l *Log) Append(ctx context.Context, s Summary) error {
	if err := l.backend.Append(ctx, s); err != nil {
		return fmt.Errorf("append quote %s to history: %w", s.Number, err)
	}
	l.logger.Info("quote saved to history",
		"number", s.Number,
		"client", s.ClientName,
		"client_total", s.ClientTotal.StringFixed(2),
		"items", s.ItemCount,
	)
	return nil
}

func (l *Log) LoadAll(ctx context.Context) ([]Summary, error) {
	all, err := l.backend.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return all, nil
}

func (l *Log) Clear(ctx context.Context) error {
	if err := l.backend.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	l.logger.Info("history cleared")
	return nil
}
