// internal/services/activity_service.go
package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/compia/editora-backend/internal/models"
	"github.com/compia/editora-backend/internal/utils"
)

type ActivityService struct {
	db *gorm.DB
}

type ActivityEntry struct {
	UserID     *uint
	Username   string
	Action     string
	Resource   string
	ResourceID *uint
	Details    string
	IPAddress  string
}

type ActivityFilter struct {
	utils.PaginationParams
	Action   string
	Resource string
	Username string
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record appends an audit row. Failures are logged, never propagated; an
// audit hiccup must not fail the mutation it describes.
func (s *ActivityService) Record(entry ActivityEntry) {
	log := &models.ActivityLog{
		UserID:     entry.UserID,
		Username:   entry.Username,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
	}

	if err := s.db.Create(log).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":   entry.Action,
			"resource": entry.Resource,
		}).Error("Failed to record activity log")
	}
}

func (s *ActivityService) List(filter ActivityFilter) ([]models.ActivityLog, int64, error) {
	query := s.db.Model(&models.ActivityLog{})

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "action", "resource", "username"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var logs []models.ActivityLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch activity logs: %w", err)
	}

	return logs, total, nil
}
