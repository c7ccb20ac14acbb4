package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"gorm.io/gorm"
)

type StageRepository struct {
	db *gorm.DB
}

func NewStageRepository(db *gorm.DB) *StageRepository {
	return &StageRepository{db: db}
}

func (r *StageRepository) Create(ctx context.Context, stage *domain.PipelineStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

func (r *StageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PipelineStage, error) {
	var stage domain.PipelineStage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// GetByName looks up a stage by name, case-insensitively. Used by the deal
// importer to resolve the stage column.
func (r *StageRepository) GetByName(ctx context.Context, name string) (*domain.PipelineStage, error) {
	var stage domain.PipelineStage
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// GetDefault returns the first stage by display order. This is the explicit
// default-resolution policy for deals created without a stage.
func (r *StageRepository) GetDefault(ctx context.Context) (*domain.PipelineStage, error) {
	var stage domain.PipelineStage
	err := r.db.WithContext(ctx).Order("display_order ASC").First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *StageRepository) Update(ctx context.Context, stage *domain.PipelineStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

func (r *StageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PipelineStage{}, "id = ?", id).Error
}

func (r *StageRepository) List(ctx context.Context) ([]domain.PipelineStage, error) {
	var stages []domain.PipelineStage
	err := r.db.WithContext(ctx).Order("display_order ASC").Find(&stages).Error
	return stages, err
}

func (r *StageRepository) GetDealCount(ctx context.Context, stageID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("stage_id = ?", stageID).Count(&count).Error
	return int(count), err
}

// UpdateDisplayOrder sets the display order for a single stage
func (r *StageRepository) UpdateDisplayOrder(ctx context.Context, id uuid.UUID, order int) error {
	return r.db.WithContext(ctx).Model(&domain.PipelineStage{}).
		Where("id = ?", id).
		Update("display_order", order).Error
}
