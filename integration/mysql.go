package integration

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

// NewMySQLStore creates a new MySQL-backed integration store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new integration in the database.
func (s *MySQLStore) Create(ctx context.Context, integration *Integration) error {
	if err := integration.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(integration).Error; err != nil {
		s.logger.Error(ctx, "failed to create integration", map[string]interface{}{
			"error": err.Error(),
			"name":  integration.Name,
		})
		return err
	}

	s.logger.Info(ctx, "integration created", map[string]interface{}{
		"integration_id": integration.ID.String(),
		"name":           integration.Name,
		"provider":       string(integration.Provider),
	})
	return nil
}

// GetByID retrieves an integration by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Integration, error) {
	var integration Integration
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&integration).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntegrationNotFound
		}
		s.logger.Error(ctx, "failed to get integration", map[string]interface{}{
			"error":          err.Error(),
			"integration_id": id.String(),
		})
		return nil, err
	}

	return &integration, nil
}

// List retrieves a paginated list of integrations, newest first.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*Integration, error) {
	var integrations []*Integration
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&integrations).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list integrations", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return integrations, nil
}

// ListActive retrieves every active integration.
func (s *MySQLStore) ListActive(ctx context.Context) ([]*Integration, error) {
	var integrations []*Integration
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&integrations).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list active integrations", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return integrations, nil
}

// Update applies the given setters to an integration inside a transaction.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var integration Integration
		if err := tx.WithContext(ctx).Where("id = ?", id).First(&integration).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIntegrationNotFound
			}
			return err
		}

		for _, setter := range setters {
			if err := setter(&integration); err != nil {
				return err
			}
		}

		return tx.WithContext(ctx).Save(&integration).Error
	})

	if err != nil {
		if !errors.Is(err, ErrIntegrationNotFound) {
			s.logger.Error(ctx, "failed to update integration", map[string]interface{}{
				"error":          err.Error(),
				"integration_id": id.String(),
			})
		}
		return err
	}

	return nil
}

// Delete removes an integration by ID.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Integration{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete integration", map[string]interface{}{
			"error":          result.Error.Error(),
			"integration_id": id.String(),
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIntegrationNotFound
	}

	s.logger.Info(ctx, "integration deleted", map[string]interface{}{
		"integration_id": id.String(),
	})
	return nil
}

// CreateIssueLink records an issue filed for a failing run.
func (s *MySQLStore) CreateIssueLink(ctx context.Context, link *IssueLink) error {
	if err := link.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		s.logger.Error(ctx, "failed to create issue link", map[string]interface{}{
			"error":  err.Error(),
			"run_id": link.RunID.String(),
		})
		return err
	}

	return nil
}

// ListIssueLinksByRun retrieves the issues filed for one run.
func (s *MySQLStore) ListIssueLinksByRun(ctx context.Context, runID uuid.UUID) ([]*IssueLink, error) {
	var links []*IssueLink
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&links).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list issue links", map[string]interface{}{
			"error":  err.Error(),
			"run_id": runID.String(),
		})
		return nil, err
	}

	return links, nil
}
