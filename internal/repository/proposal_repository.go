package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"gorm.io/gorm"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("proposal_items.display_order ASC")
		}).
		Where("id = ?", id).First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// Update saves the proposal and replaces its items in one transaction.
// GORM's Save does not delete removed association rows, so items are
// cleared and re-inserted explicitly.
func (r *ProposalRepository) Update(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", proposal.ID).Delete(&domain.ProposalItem{}).Error; err != nil {
			return err
		}
		for i := range proposal.Items {
			proposal.Items[i].ID = uuid.Nil
			proposal.Items[i].ProposalID = proposal.ID
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(proposal).Error
	})
}

// UpdateStatus writes the status and the matching timestamp column
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProposalStatus, at time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case domain.ProposalStatusSent:
		updates["sent_at"] = at
	case domain.ProposalStatusAccepted, domain.ProposalStatusRejected:
		updates["decided_at"] = at
	}
	return r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&domain.ProposalItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Proposal{}, "id = ?", id).Error
	})
}

func (r *ProposalRepository) List(ctx context.Context, page, pageSize int, search string, customerID, dealID *uuid.UUID, status domain.ProposalStatus) ([]domain.Proposal, int64, error) {
	var proposals []domain.Proposal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Proposal{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(number) LIKE ? OR LOWER(customer_name) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if dealID != nil {
		query = query.Where("deal_id = ?", *dealID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&proposals).Error

	return proposals, total, err
}

// ListByDeal returns ALL proposals attached to the deal, every status
// included. The valuation aggregator counts drafts and rejected proposals
// alike, so no status filter is applied here.
func (r *ProposalRepository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]domain.Proposal, error) {
	var proposals []domain.Proposal
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&proposals).Error
	return proposals, err
}

// ListExpirable returns sent or viewed proposals whose validity window has
// passed, for the expiry job.
func (r *ProposalRepository) ListExpirable(ctx context.Context, now time.Time) ([]domain.Proposal, error) {
	var proposals []domain.Proposal
	err := r.db.WithContext(ctx).
		Where("status IN ?", []domain.ProposalStatus{domain.ProposalStatusSent, domain.ProposalStatusViewed}).
		Where("valid_until IS NOT NULL AND valid_until < ?", now).
		Find(&proposals).Error
	return proposals, err
}

// OpenProposalStats returns count and summed total of draft/sent/viewed proposals
func (r *ProposalRepository) OpenProposalStats(ctx context.Context) (int, float64, error) {
	type row struct {
		Count int
		Sum   float64
	}
	var res row
	err := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Select("COUNT(*) as count, COALESCE(SUM(total), 0) as sum").
		Where("status IN ?", []domain.ProposalStatus{
			domain.ProposalStatusDraft,
			domain.ProposalStatusSent,
			domain.ProposalStatusViewed,
		}).
		Scan(&res).Error
	return res.Count, res.Sum, err
}
