package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DealService struct {
	dealRepo         *repository.DealRepository
	customerRepo     *repository.CustomerRepository
	stageRepo        *repository.StageRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewDealService(
	dealRepo *repository.DealRepository,
	customerRepo *repository.CustomerRepository,
	stageRepo *repository.StageRepository,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *DealService {
	return &DealService{
		dealRepo:         dealRepo,
		customerRepo:     customerRepo,
		stageRepo:        stageRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *DealService) Create(ctx context.Context, req *domain.CreateDealRequest) (*domain.Deal, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	var stage *domain.PipelineStage
	if req.StageID != nil {
		stage, err = s.stageRepo.GetByID(ctx, *req.StageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStageNotFound
			}
			return nil, fmt.Errorf("failed to get stage: %w", err)
		}
	} else {
		// Deals created without a stage land in the first stage by display order
		stage, err = s.stageRepo.GetDefault(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStageNotFound
			}
			return nil, fmt.Errorf("failed to get default stage: %w", err)
		}
	}

	probability := 50
	if req.Probability != nil {
		probability = *req.Probability
	}

	dealType := req.DealType
	if dealType == "" {
		dealType = domain.DealTypeNewBusiness
	}
	if !dealType.IsValid() {
		return nil, fmt.Errorf("%w: invalid deal type %q", ErrInvalidInput, req.DealType)
	}

	deal := &domain.Deal{
		Title:             req.Title,
		Description:       req.Description,
		CustomerID:        customer.ID,
		CustomerName:      customer.Name,
		StageID:           stage.ID,
		StageName:         stage.Name,
		Probability:       probability,
		Value:             req.Value,
		DealType:          dealType,
		ExpectedCloseDate: req.ExpectedCloseDate,
		OwnerID:           req.OwnerID,
		Source:            req.Source,
		Notes:             req.Notes,
	}
	if req.Currency != "" {
		deal.Currency = req.Currency
	}
	if user, ok := auth.FromContext(ctx); ok && deal.OwnerID == "" {
		deal.OwnerID = user.UserID
		deal.OwnerName = user.DisplayName
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	s.logActivity(ctx, deal.ID, "Deal created", deal.Title)

	s.logger.Info("Deal created",
		zap.String("deal_id", deal.ID.String()),
		zap.String("title", deal.Title),
		zap.String("customer_id", customer.ID.String()),
	)

	return deal, nil
}

func (s *DealService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

// Update edits a deal. Once proposals reference the deal, the value fields
// are owned by the valuation aggregator and a manual value edit is rejected.
func (s *DealService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDealRequest) (*domain.Deal, error) {
	deal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Value != nil && *req.Value != deal.Value {
		proposalCount, err := s.dealRepo.CountProposals(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count proposals: %w", err)
		}
		if proposalCount > 0 {
			return nil, ErrValueManagedByProposals
		}
		deal.Value = *req.Value
	}

	if req.StageID != nil && *req.StageID != deal.StageID {
		stage, err := s.stageRepo.GetByID(ctx, *req.StageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStageNotFound
			}
			return nil, fmt.Errorf("failed to get stage: %w", err)
		}
		deal.StageID = stage.ID
		deal.StageName = stage.Name
	}

	if req.Probability != nil {
		deal.Probability = *req.Probability
	}
	if req.DealType != "" {
		if !req.DealType.IsValid() {
			return nil, fmt.Errorf("%w: invalid deal type %q", ErrInvalidInput, req.DealType)
		}
		deal.DealType = req.DealType
	}
	if req.Currency != "" {
		deal.Currency = req.Currency
	}

	deal.Title = req.Title
	deal.Description = req.Description
	deal.ExpectedCloseDate = req.ExpectedCloseDate
	deal.Source = req.Source
	deal.Notes = req.Notes
	if req.OwnerID != "" {
		deal.OwnerID = req.OwnerID
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	return deal, nil
}

// MoveToStage moves the deal to another pipeline stage, recording an
// activity and notifying the deal owner.
func (s *DealService) MoveToStage(ctx context.Context, id uuid.UUID, req *domain.MoveDealStageRequest) (*domain.Deal, error) {
	deal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if deal.StageID == req.StageID {
		return deal, nil
	}

	stage, err := s.stageRepo.GetByID(ctx, req.StageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	fromStage := deal.StageName
	deal.StageID = stage.ID
	deal.StageName = stage.Name

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to move deal: %w", err)
	}

	body := fmt.Sprintf("Moved from %s to %s", fromStage, stage.Name)
	if req.Notes != "" {
		body += ": " + req.Notes
	}
	s.logActivity(ctx, deal.ID, "Deal stage changed", body)

	if deal.OwnerID != "" {
		s.notify(ctx, deal.OwnerID, "deal_stage_changed", "Deal moved",
			fmt.Sprintf("%s moved to %s", deal.Title, stage.Name), deal.ID)
	}

	s.logger.Info("Deal moved to stage",
		zap.String("deal_id", deal.ID.String()),
		zap.String("from", fromStage),
		zap.String("to", stage.Name),
	)

	return deal, nil
}

// Delete removes a deal. Deals that proposals still reference cannot be
// deleted; the proposals must be detached or deleted first.
func (s *DealService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	proposalCount, err := s.dealRepo.CountProposals(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count deal proposals: %w", err)
	}
	if proposalCount > 0 {
		return ErrDealHasProposals
	}
	if err := s.dealRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	s.logger.Info("Deal deleted", zap.String("deal_id", id.String()))
	return nil
}

func (s *DealService) List(ctx context.Context, page, pageSize int, search string, customerID, stageID *uuid.UUID) ([]domain.Deal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.dealRepo.List(ctx, page, pageSize, search, customerID, stageID)
}

// PipelineOverview groups deals per stage for the board view
func (s *DealService) PipelineOverview(ctx context.Context) ([]domain.PipelineStage, map[uuid.UUID][]domain.Deal, error) {
	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list stages: %w", err)
	}

	dealsByStage := make(map[uuid.UUID][]domain.Deal, len(stages))
	for _, stage := range stages {
		deals, err := s.dealRepo.ListByStage(ctx, stage.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list deals for stage %s: %w", stage.ID, err)
		}
		dealsByStage[stage.ID] = deals
	}

	return stages, dealsByStage, nil
}

func (s *DealService) logActivity(ctx context.Context, dealID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:   domain.ActivityTargetDeal,
		TargetID:     dealID,
		Title:        title,
		Body:         body,
		ActivityType: domain.ActivityTypeSystem,
	}
	if user, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = user.UserID
		activity.CreatorName = user.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("Failed to log deal activity", zap.Error(err))
	}
}

func (s *DealService) notify(ctx context.Context, userID, notifType, title, message string, entityID uuid.UUID) {
	notification := &domain.Notification{
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		EntityID:   &entityID,
		EntityType: string(domain.ActivityTargetDeal),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("Failed to create notification", zap.Error(err))
	}
}
