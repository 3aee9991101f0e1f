package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/songii00/random-push/internal/domain"
	"github.com/songii00/random-push/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Connect opens a PostgreSQL connection with exponential backoff retry.
// Transient startup failures (database still booting) are retried until
// maxElapsed is exhausted.
func Connect(dsn string, maxElapsed time.Duration) (*gorm.DB, error) {
	var db *gorm.DB

	operation := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return fmt.Errorf("failed to open postgres connection: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to get underlying sql.DB: %w", err))
		}
		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to ping postgres: %w", err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return db, nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

// CreatePush persists a push and its shares in a single transaction
func (s *pgStore) CreatePush(ctx context.Context, push *schema.Push, shares []schema.PushShare) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(push).Error; err != nil {
			return fmt.Errorf("failed to create push: %w", err)
		}

		for i := range shares {
			shares[i].PushID = push.ID
		}
		if err := tx.Create(&shares).Error; err != nil {
			return fmt.Errorf("failed to create push shares: %w", err)
		}
		return nil
	})
}

// GetPush retrieves a push with its shares by hashed token and room
func (s *pgStore) GetPush(ctx context.Context, token, roomID string) (*schema.Push, error) {
	var push schema.Push
	err := s.db.WithContext(ctx).
		Preload("Shares", func(db *gorm.DB) *gorm.DB {
			return db.Order("push_shares.id ASC")
		}).
		Where("token = ? AND room_id = ?", token, roomID).
		First(&push).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPushNotFound
		}
		return nil, fmt.Errorf("failed to get push: %w", err)
	}
	return &push, nil
}

// ClaimFirstShare atomically claims the first unclaimed share of a push
func (s *pgStore) ClaimFirstShare(ctx context.Context, pushID int64, claimUserID string, now time.Time) (int, error) {
	var amount int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the first unclaimed share so concurrent claimants serialize here.
		// Use SELECT ... FOR UPDATE to prevent double-claiming the same row.
		var share schema.PushShare
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("push_id = ? AND claimed = ?", pushID, false).
			Order("id ASC").
			First(&share).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrShareExhausted
			}
			return fmt.Errorf("failed to lock unclaimed share: %w", err)
		}

		err = tx.Model(&schema.PushShare{}).
			Where("id = ?", share.ID).
			Updates(map[string]interface{}{
				"claimed":       true,
				"claim_user_id": claimUserID,
				"claimed_at":    now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to claim share: %w", err)
		}

		err = tx.Model(&schema.Push{}).
			Where("id = ?", pushID).
			Update("claimed_amount", gorm.Expr("claimed_amount + ?", share.Amount)).Error
		if err != nil {
			return fmt.Errorf("failed to increase claimed amount: %w", err)
		}

		amount = share.Amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}
