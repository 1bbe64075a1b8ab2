// Package app holds the application services and business logic.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"converter/internal/domain"
)

const maxRecentLimit = 100

// ConvertService encapsulates the conversion use cases.
type ConvertService struct {
	history domain.HistoryRepository
	now     func() time.Time
}

// NewConvertService creates a ConvertService that records conversions of
// signed-in users in history.
func NewConvertService(history domain.HistoryRepository) *ConvertService {
	return &ConvertService{history: history, now: time.Now}
}

// Convert parses and converts input. When userID is non-zero the result is
// stored in the user's history.
func (s *ConvertService) Convert(ctx context.Context, userID int64, input string) (*domain.Conversion, error) {
	c, err := domain.Parse(input)
	if err != nil {
		return nil, err
	}
	if userID == 0 || s.history == nil {
		return c, nil
	}

	rec := domain.ConversionRecord{
		UserID:     userID,
		Input:      strings.TrimSpace(input),
		InitNum:    c.InitNum,
		InitUnit:   domain.Unit(strings.ToLower(c.InitUnit)),
		ReturnNum:  c.ReturnNum,
		ReturnUnit: c.ReturnUnit,
		CreatedAt:  s.now(),
	}
	if _, err := s.history.AddConversion(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("record conversion: %w", err)
	}
	return c, nil
}

// ListRecent returns the most recent conversions up to limit, which is
// clamped to 1..100.
func (s *ConvertService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.ConversionRecord, error) {
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	if limit < 1 {
		limit = 1
	}
	return s.history.ListRecentConversions(ctx, userID, limit)
}

// UndoLast deletes the most recent conversion and reports whether one existed.
func (s *ConvertService) UndoLast(ctx context.Context, userID int64) (bool, error) {
	return s.history.DeleteLatestConversion(ctx, userID)
}
