// Package journal persists receipts of executed transfers.
package journal

import (
	"context"
	"sync"

	"github.com/yourorg/settlement-switch/internal/model"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit
const DefaultListLimit = 100

// Journal is an append-only record of executed transfers
type Journal interface {
	// Record appends a receipt
	Record(ctx context.Context, r model.Receipt) error

	// List returns up to limit receipts, newest first
	List(ctx context.Context, limit int) ([]model.Receipt, error)

	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// Memory keeps receipts in process memory
type Memory struct {
	mu       sync.RWMutex
	receipts []model.Receipt
}

// NewMemory creates an empty in-memory journal
func NewMemory() *Memory {
	return &Memory{}
}

// Record implements Journal
func (m *Memory) Record(_ context.Context, r model.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, r)
	return nil
}

// List implements Journal
func (m *Memory) List(_ context.Context, limit int) ([]model.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit = normalizeLimit(limit)

	out := make([]model.Receipt, 0, limit)
	for i := len(m.receipts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.receipts[i])
	}
	return out, nil
}

// Close implements Journal
func (m *Memory) Close() error { return nil }
