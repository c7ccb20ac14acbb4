package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, logger: logger}
}

func (s *ActivityService) Create(ctx context.Context, req *domain.CreateActivityRequest) (*domain.Activity, error) {
	activityType := req.ActivityType
	if activityType == "" {
		activityType = domain.ActivityTypeNote
	}
	if !activityType.IsValid() {
		return nil, fmt.Errorf("%w: invalid activity type %q", ErrInvalidInput, req.ActivityType)
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	activity := &domain.Activity{
		TargetType:   req.TargetType,
		TargetID:     req.TargetID,
		Title:        req.Title,
		Body:         req.Body,
		ActivityType: activityType,
		OccurredAt:   occurredAt,
	}
	if user, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = user.UserID
		activity.CreatorName = user.DisplayName
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	return activity, nil
}

func (s *ActivityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.activityRepo.Delete(ctx, id)
}

func (s *ActivityService) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.activityRepo.ListByTarget(ctx, targetType, targetID, limit)
}

func (s *ActivityService) List(ctx context.Context, page, pageSize int) ([]domain.Activity, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.activityRepo.List(ctx, page, pageSize)
}
