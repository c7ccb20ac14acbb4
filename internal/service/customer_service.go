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

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	if existing, err := s.customerRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing customer: %w", err)
	}

	status := req.Status
	if status == "" {
		status = domain.CustomerStatusActive
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid customer status %q", ErrInvalidInput, req.Status)
	}

	customer := &domain.Customer{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Status:      status,
		Tags:        req.Tags,
		Notes:       req.Notes,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logActivity(ctx, customer.ID, "Customer created", customer.Name)

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("name", customer.Name),
	)

	return customer, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Email changes must not collide with another customer
	if req.Email != customer.Email {
		if existing, err := s.customerRepo.GetByEmail(ctx, req.Email); err == nil && existing.ID != id {
			return nil, ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check for existing customer: %w", err)
		}
	}

	status := req.Status
	if status == "" {
		status = customer.Status
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid customer status %q", ErrInvalidInput, req.Status)
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.CompanyName = req.CompanyName
	customer.Address = req.Address
	customer.City = req.City
	customer.PostalCode = req.PostalCode
	customer.Country = req.Country
	customer.Status = status
	customer.Tags = req.Tags
	customer.Notes = req.Notes

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return customer, nil
}

// Delete removes a customer. Customers with open deals cannot be deleted;
// the deals must be closed or reassigned first.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	openDeals, err := s.customerRepo.GetOpenDealsCount(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count open deals: %w", err)
	}
	if openDeals > 0 {
		return ErrCustomerHasOpenDeals
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
	return nil
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string, status domain.CustomerStatus) ([]domain.Customer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.customerRepo.List(ctx, page, pageSize, search, status)
}

func (s *CustomerService) Search(ctx context.Context, query string, limit int) ([]domain.Customer, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.customerRepo.Search(ctx, query, limit)
}

func (s *CustomerService) logActivity(ctx context.Context, customerID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:   domain.ActivityTargetCustomer,
		TargetID:     customerID,
		Title:        title,
		Body:         body,
		ActivityType: domain.ActivityTypeSystem,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		// Activity logging is best-effort
		s.logger.Warn("Failed to log customer activity", zap.Error(err))
	}
}
