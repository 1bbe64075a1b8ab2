package app_test

import (
	"context"
	"errors"
	"time"

	"converter/internal/domain"
)

type mockHistoryRepo struct {
	addFn    func(ctx context.Context, userID int64, rec domain.ConversionRecord) (int64, error)
	listFn   func(ctx context.Context, userID int64, limit int) ([]domain.ConversionRecord, error)
	deleteFn func(ctx context.Context, userID int64) (bool, error)
	countsFn func(ctx context.Context, userID int64, localDay string) (map[domain.Unit]int, error)
}

func (m *mockHistoryRepo) AddConversion(ctx context.Context, userID int64, rec domain.ConversionRecord) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, rec)
	}
	return 1, nil
}

func (m *mockHistoryRepo) ListRecentConversions(ctx context.Context, userID int64, limit int) ([]domain.ConversionRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockHistoryRepo) DeleteLatestConversion(ctx context.Context, userID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return false, nil
}

func (m *mockHistoryRepo) UnitCountsForLocalDay(ctx context.Context, userID int64, localDay string) (map[domain.Unit]int, error) {
	if m.countsFn != nil {
		return m.countsFn(ctx, userID, localDay)
	}
	return nil, nil
}

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn     func(ctx context.Context, token string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}
