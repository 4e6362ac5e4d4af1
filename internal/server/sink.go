package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Receipt is an accepted submission.
type Receipt struct {
	ID         uuid.UUID      `json:"id"`
	FormID     string         `json:"form"`
	Data       map[string]any `json:"data"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// Sink receives accepted submissions. Persistence lives outside this module.
type Sink interface {
	Store(ctx context.Context, receipt Receipt) error
}

// SinkFunc adapts plain functions to the Sink interface.
type SinkFunc func(ctx context.Context, receipt Receipt) error

// Store calls fn.
func (fn SinkFunc) Store(ctx context.Context, receipt Receipt) error {
	return fn(ctx, receipt)
}

// LogSink logs each receipt and keeps nothing.
func LogSink(logger *zap.Logger) Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return SinkFunc(func(_ context.Context, receipt Receipt) error {
		logger.Info("submission accepted",
			zap.String("form", receipt.FormID),
			zap.String("receipt", receipt.ID.String()),
			zap.Any("data", receipt.Data),
		)
		return nil
	})
}

// MemorySink keeps receipts in memory.
type MemorySink struct {
	mu       sync.Mutex
	receipts []Receipt
}

// Store appends receipt.
func (m *MemorySink) Store(_ context.Context, receipt Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, receipt)
	return nil
}

// Receipts returns a copy of the stored receipts.
func (m *MemorySink) Receipts() []Receipt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Receipt(nil), m.receipts...)
}
