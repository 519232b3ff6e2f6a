package testrun

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/qa-agent/logger"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed test run store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new test run in the database.
func (s *MySQLStore) Create(ctx context.Context, testRun *TestRun) error {
	if testRun.Verdict == "" {
		testRun.Verdict = VerdictPending
	}
	if err := testRun.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to create test run", map[string]interface{}{
			"error":      err.Error(),
			"suite_name": testRun.SuiteName,
			"case_id":    testRun.CaseID,
		})
		return err
	}

	s.logger.Info(ctx, "test run created", map[string]interface{}{
		"run_id":     testRun.ID.String(),
		"suite_name": testRun.SuiteName,
		"case_id":    testRun.CaseID,
		"mode":       string(testRun.Mode),
	})
	return nil
}

// GetByID retrieves a test run by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error) {
	var testRun TestRun
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&testRun).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestRunNotFound
		}
		s.logger.Error(ctx, "failed to get test run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		return nil, err
	}

	return &testRun, nil
}

// Update applies the given setters to a test run inside a transaction.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var testRun TestRun
		if err := tx.WithContext(ctx).Where("id = ?", id).First(&testRun).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTestRunNotFound
			}
			return err
		}

		for _, setter := range setters {
			if err := setter(&testRun); err != nil {
				return err
			}
		}

		return tx.WithContext(ctx).Save(&testRun).Error
	})

	if err != nil {
		if !errors.Is(err, ErrTestRunNotFound) {
			s.logger.Error(ctx, "failed to update test run", map[string]interface{}{
				"error":  err.Error(),
				"run_id": id.String(),
			})
		}
		return err
	}

	return nil
}

// ListBySuite retrieves a paginated list of runs for a suite, newest first.
func (s *MySQLStore) ListBySuite(ctx context.Context, suiteName string, limit, offset int) ([]*TestRun, error) {
	var runs []*TestRun
	err := s.db.WithContext(ctx).
		Where("suite_name = ?", suiteName).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list test runs", map[string]interface{}{
			"error":      err.Error(),
			"suite_name": suiteName,
		})
		return nil, err
	}

	return runs, nil
}

// Start marks a test run as started through the lifecycle guard.
func (s *MySQLStore) Start(ctx context.Context, id uuid.UUID) error {
	return s.Update(ctx, id, func(tr *TestRun) error {
		return tr.Start()
	})
}

// Complete marks a test run as completed through the lifecycle guard.
func (s *MySQLStore) Complete(ctx context.Context, id uuid.UUID, verdict Verdict, output string) error {
	return s.Update(ctx, id, func(tr *TestRun) error {
		return tr.Complete(verdict, output)
	})
}
