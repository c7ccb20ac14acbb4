package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/salesbridge/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for number sequences.
// Sequences are kept per entity type (proposal, invoice) and year so numbers
// like P-2026-0001 restart each January.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically retrieves and increments the sequence for an
// entity type/year. Uses SELECT FOR UPDATE so concurrent callers never see
// the same number. If no sequence exists yet, it is created starting at 1.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, entityType string, year int) (int, error) {
	var seq domain.NumberSequence
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("entity_type = ? AND year = ?", entityType, year).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				EntityType: entityType,
				Year:       year,
				LastNumber: 1,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else {
			next = seq.LastNumber + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_number": next,
				"updated_at":  time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return next, nil
}

// GetCurrentNumber retrieves the current sequence value without incrementing.
// Returns 0 if no sequence exists for the entity type/year.
func (r *NumberSequenceRepository) GetCurrentNumber(ctx context.Context, entityType string, year int) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("entity_type = ? AND year = ?", entityType, year).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastNumber, nil
}
