package app

import (
	"context"
	"time"

	"converter/internal/domain"
)

const maxStatsDays = 366

// StatsService encapsulates history summary use cases.
type StatsService struct {
	history domain.HistoryRepository
	now     func() time.Time
}

// NewStatsService creates a StatsService backed by the given repository.
func NewStatsService(history domain.HistoryRepository) *StatsService {
	return &StatsService{history: history, now: time.Now}
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day    string         `json:"day"`
	Total  int            `json:"total"`
	ByUnit map[string]int `json:"byUnit"`
}

// GetDaily returns per-day conversion counts for the last days days, oldest
// first.
func (s *StatsService) GetDaily(ctx context.Context, userID int64, days int) ([]DayPoint, error) {
	if days > maxStatsDays {
		days = maxStatsDays
	}
	if days < 1 {
		days = 1
	}

	today := s.now().In(time.Local)
	points := make([]DayPoint, 0, days)

	for i := days - 1; i >= 0; i-- {
		dayStr := today.AddDate(0, 0, -i).Format("2006-01-02")

		counts, err := s.history.UnitCountsForLocalDay(ctx, userID, dayStr)
		if err != nil {
			return nil, err
		}

		p := DayPoint{Day: dayStr, ByUnit: make(map[string]int, len(counts))}
		for u, n := range counts {
			p.ByUnit[string(u)] = n
			p.Total += n
		}
		points = append(points, p)
	}
	return points, nil
}
