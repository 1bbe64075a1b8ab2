package domain

import (
	"context"
	"time"
)

// ConversionRecord is a conversion performed by a signed-in user.
type ConversionRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Input      string    `json:"input"`
	InitNum    float64   `json:"initNum"`
	InitUnit   Unit      `json:"initUnit"`
	ReturnNum  float64   `json:"returnNum"`
	ReturnUnit string    `json:"returnUnit"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HistoryRepository is the port for conversion history persistence.
type HistoryRepository interface {
	AddConversion(ctx context.Context, userID int64, rec ConversionRecord) (int64, error)
	ListRecentConversions(ctx context.Context, userID int64, limit int) ([]ConversionRecord, error)
	DeleteLatestConversion(ctx context.Context, userID int64) (bool, error)
	UnitCountsForLocalDay(ctx context.Context, userID int64, localDay string) (map[Unit]int, error)
}
