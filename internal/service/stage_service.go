package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StageService struct {
	stageRepo *repository.StageRepository
	logger    *zap.Logger
}

func NewStageService(stageRepo *repository.StageRepository, logger *zap.Logger) *StageService {
	return &StageService{stageRepo: stageRepo, logger: logger}
}

func (s *StageService) Create(ctx context.Context, req *domain.CreateStageRequest) (*domain.PipelineStage, error) {
	stage := &domain.PipelineStage{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		IsClosed:     req.IsClosed,
	}
	if req.Color != "" {
		stage.Color = req.Color
	}

	if err := s.stageRepo.Create(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}

	s.logger.Info("Pipeline stage created",
		zap.String("stage_id", stage.ID.String()),
		zap.String("name", stage.Name),
	)

	return stage, nil
}

func (s *StageService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PipelineStage, error) {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	return stage, nil
}

// Default returns the stage used for deals created without one: the first
// stage by display order
func (s *StageService) Default(ctx context.Context) (*domain.PipelineStage, error) {
	stage, err := s.stageRepo.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get default stage: %w", err)
	}
	return stage, nil
}

func (s *StageService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateStageRequest) (*domain.PipelineStage, error) {
	stage, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stage.Name = req.Name
	stage.DisplayOrder = req.DisplayOrder
	stage.IsClosed = req.IsClosed
	if req.Color != "" {
		stage.Color = req.Color
	}

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	return stage, nil
}

// Delete removes a stage. Stages still referenced by deals cannot be deleted.
func (s *StageService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.stageRepo.GetDealCount(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count deals for stage: %w", err)
	}
	if count > 0 {
		return ErrStageInUse
	}

	if err := s.stageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}
	return nil
}

func (s *StageService) List(ctx context.Context) ([]domain.PipelineStage, error) {
	return s.stageRepo.List(ctx)
}

// Reorder assigns display order following the given sequence of stage IDs
func (s *StageService) Reorder(ctx context.Context, stageIDs []uuid.UUID) error {
	for i, id := range stageIDs {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.stageRepo.UpdateDisplayOrder(ctx, id, i); err != nil {
			return fmt.Errorf("failed to reorder stage %s: %w", id, err)
		}
	}
	return nil
}
