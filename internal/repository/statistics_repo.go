package repository

import (
	"context"
	"fmt"
	"time"

	"portfee/internal/model"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	// SubmittedBetween returns the forms submitted in [from, to), without line items.
	SubmittedBetween(ctx context.Context, from, to time.Time) ([]model.HarborDuesForm, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) SubmittedBetween(ctx context.Context, from, to time.Time) ([]model.HarborDuesForm, error) {
	var forms []model.HarborDuesForm
	if err := GetDB(ctx, r.db).
		Preload("PortOfCall").
		Where("status <> ?", model.StatusDraft).
		Where("date_of_submission >= ? AND date_of_submission < ?", from.UTC(), to.UTC()).
		Order("date_of_submission ASC, id ASC").
		Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to query submitted forms: %w", err)
	}
	return forms, nil
}
