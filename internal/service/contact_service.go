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

type ContactService struct {
	contactRepo  *repository.ContactRepository
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	customerRepo *repository.CustomerRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo:  contactRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (s *ContactService) Create(ctx context.Context, customerID uuid.UUID, req *domain.CreateContactRequest) (*domain.Contact, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.IsPrimary {
		if err := s.contactRepo.ClearPrimary(ctx, customerID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contact: %w", err)
		}
	}

	contact := &domain.Contact{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Title:      req.Title,
		CustomerID: customerID,
		IsPrimary:  req.IsPrimary,
		Notes:      req.Notes,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("Contact created",
		zap.String("contact_id", contact.ID.String()),
		zap.String("customer_id", customerID.String()),
	)

	return contact, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.Contact, error) {
	contact, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsPrimary && !contact.IsPrimary {
		if err := s.contactRepo.ClearPrimary(ctx, contact.CustomerID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contact: %w", err)
		}
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Title = req.Title
	contact.IsPrimary = req.IsPrimary
	contact.Notes = req.Notes

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (s *ContactService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Contact, error) {
	return s.contactRepo.ListByCustomer(ctx, customerID)
}
