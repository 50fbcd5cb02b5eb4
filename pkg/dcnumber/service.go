package dcnumber

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service issues DC numbers backed by the sys_sequences counter table.
type Service struct {
	querier Querier
}

// New creates a DC number service.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// Next returns the next DC number for a unit at the given business time.
// The sequence resets per financial year; the UPSERT makes the increment
// atomic under concurrent callers.
func (s *Service) Next(ctx context.Context, unitShortCode string, at time.Time) (string, error) {
	fy := FinancialYear(at)

	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, SequenceKey(unitShortCode, fy)).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next dc sequence: %w", err)
	}

	return Format(unitShortCode, int(num), fy), nil
}

// SeedFromExisting raises the counter to at least maxExisting. Used once at
// startup to migrate from installations that derived the sequence by
// scanning existing DC numbers; the counter never moves backwards.
func (s *Service) SeedFromExisting(ctx context.Context, unitShortCode, financialYear string, maxExisting int) error {
	var current int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET current_val = GREATEST(sys_sequences.current_val, $2)
        RETURNING current_val
	`, SequenceKey(unitShortCode, financialYear), maxExisting).Scan(&current)
	if err != nil {
		return fmt.Errorf("seed dc sequence: %w", err)
	}
	return nil
}
