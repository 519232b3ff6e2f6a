package suite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/qa-agent/logger"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed suite store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new suite in the database. The name pre-check races with
// concurrent creates; the unique index on name is the backstop.
func (s *MySQLStore) Create(ctx context.Context, suite *Suite) error {
	if err := suite.Validate(); err != nil {
		return err
	}

	if _, err := s.GetByName(ctx, suite.Name); err == nil {
		return ErrSuiteExists
	} else if !errors.Is(err, ErrSuiteNotFound) {
		return err
	}

	if err := s.db.WithContext(ctx).Create(suite).Error; err != nil {
		s.logger.Error(ctx, "failed to create suite", map[string]interface{}{
			"error": err.Error(),
			"name":  suite.Name,
		})
		return err
	}

	s.logger.Info(ctx, "suite created", map[string]interface{}{
		"suite_id": suite.ID.String(),
		"name":     suite.Name,
	})
	return nil
}

// GetByName retrieves a suite by its unique name.
func (s *MySQLStore) GetByName(ctx context.Context, name string) (*Suite, error) {
	var suite Suite
	err := s.db.WithContext(ctx).
		Where("name = ?", name).
		First(&suite).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSuiteNotFound
		}
		s.logger.Error(ctx, "failed to get suite by name", map[string]interface{}{
			"error": err.Error(),
			"name":  name,
		})
		return nil, err
	}

	return &suite, nil
}

// List retrieves a paginated list of suites, newest first.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*Suite, error) {
	var suites []*Suite
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&suites).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list suites", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return suites, nil
}

// Update applies the given setters to a suite inside a transaction.
func (s *MySQLStore) Update(ctx context.Context, name string, setters ...UpdateSetter) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var suite Suite
		if err := tx.WithContext(ctx).Where("name = ?", name).First(&suite).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSuiteNotFound
			}
			return err
		}

		for _, setter := range setters {
			if err := setter(&suite); err != nil {
				return err
			}
		}

		return tx.WithContext(ctx).Save(&suite).Error
	})

	if err != nil {
		if !errors.Is(err, ErrSuiteNotFound) {
			s.logger.Error(ctx, "failed to update suite", map[string]interface{}{
				"error": err.Error(),
				"name":  name,
			})
		}
		return err
	}

	return nil
}

// Delete removes a suite by name.
func (s *MySQLStore) Delete(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).
		Where("name = ?", name).
		Delete(&Suite{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete suite", map[string]interface{}{
			"error": result.Error.Error(),
			"name":  name,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSuiteNotFound
	}

	s.logger.Info(ctx, "suite deleted", map[string]interface{}{
		"name": name,
	})
	return nil
}
