package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"gorm.io/gorm"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) GetByIDWithProposals(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Proposals").
		Preload("Proposals.Items").
		Where("id = ?", id).First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

// UpdateValuation writes only the aggregated value columns. The valuation
// aggregator owns these fields; nothing else on the row is touched.
func (r *DealRepository) UpdateValuation(ctx context.Context, id uuid.UUID, value, subscriptionValue, oneTimeValue float64) error {
	return r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"value":              value,
			"subscription_value": subscriptionValue,
			"one_time_value":     oneTimeValue,
		}).Error
}

func (r *DealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Deal{}, "id = ?", id).Error
}

func (r *DealRepository) List(ctx context.Context, page, pageSize int, search string, customerID, stageID *uuid.UUID) ([]domain.Deal, int64, error) {
	var deals []domain.Deal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Deal{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(customer_name) LIKE ?", searchPattern, searchPattern)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if stageID != nil {
		query = query.Where("stage_id = ?", *stageID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&deals).Error

	return deals, total, err
}

func (r *DealRepository) ListByStage(ctx context.Context, stageID uuid.UUID) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

func (r *DealRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

// CountProposals counts proposals attached to the deal, any status
func (r *DealRepository) CountProposals(ctx context.Context, dealID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Where("deal_id = ?", dealID).Count(&count).Error
	return int(count), err
}

// OpenDealStats returns count and summed value of deals in non-closed stages
func (r *DealRepository) OpenDealStats(ctx context.Context) (int, float64, error) {
	type row struct {
		Count int
		Sum   float64
	}
	var res row
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("COUNT(*) as count, COALESCE(SUM(deals.value), 0) as sum").
		Joins("JOIN pipeline_stages ON pipeline_stages.id = deals.stage_id").
		Where("pipeline_stages.is_closed = ?", false).
		Scan(&res).Error
	return res.Count, res.Sum, err
}

// StageBreakdown returns per-stage deal counts and summed values
func (r *DealRepository) StageBreakdown(ctx context.Context) ([]domain.StageBreakdownItem, error) {
	var items []domain.StageBreakdownItem
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("deals.stage_id as stage_id, deals.stage_name as stage_name, COUNT(*) as deal_count, COALESCE(SUM(deals.value), 0) as value").
		Group("deals.stage_id, deals.stage_name").
		Scan(&items).Error
	return items, err
}
