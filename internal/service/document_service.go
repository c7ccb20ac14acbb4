package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"github.com/salesbridge/crm-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService handles document uploads attached to proposals and invoices
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	proposalRepo *repository.ProposalRepository
	invoiceRepo  *repository.InvoiceRepository
	activityRepo *repository.ActivityRepository
	storage      storage.Storage
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	proposalRepo *repository.ProposalRepository,
	invoiceRepo *repository.InvoiceRepository,
	activityRepo *repository.ActivityRepository,
	storage storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		proposalRepo: proposalRepo,
		invoiceRepo:  invoiceRepo,
		activityRepo: activityRepo,
		storage:      storage,
		logger:       logger,
	}
}

// UploadToProposal uploads a document and attaches it to a proposal
func (s *DocumentService) UploadToProposal(ctx context.Context, proposalID uuid.UUID, filename, contentType string, data io.Reader) (*domain.Document, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	document := &domain.Document{
		ProposalID: &proposalID,
	}

	if err := s.upload(ctx, document, filename, contentType, data); err != nil {
		return nil, err
	}

	s.logActivity(ctx, domain.ActivityTargetProposal, proposal.ID, "Document uploaded",
		fmt.Sprintf("Document '%s' was attached to proposal %s", filename, proposal.Number))

	return document, nil
}

// UploadToInvoice uploads a document and attaches it to an invoice
func (s *DocumentService) UploadToInvoice(ctx context.Context, invoiceID uuid.UUID, filename, contentType string, data io.Reader) (*domain.Document, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	document := &domain.Document{
		InvoiceID: &invoiceID,
	}

	if err := s.upload(ctx, document, filename, contentType, data); err != nil {
		return nil, err
	}

	s.logActivity(ctx, domain.ActivityTargetInvoice, invoice.ID, "Document uploaded",
		fmt.Sprintf("Document '%s' was attached to invoice %s", filename, invoice.Number))

	return document, nil
}

// upload handles the common storage write plus record creation.
// The storage object is removed again if the database insert fails.
func (s *DocumentService) upload(ctx context.Context, document *domain.Document, filename, contentType string, data io.Reader) error {
	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}

	document.Filename = filename
	document.ContentType = contentType
	document.Size = size
	document.StoragePath = storagePath

	if user, ok := auth.FromContext(ctx); ok {
		document.UploadedBy = user.UserID
	}

	if err := s.documentRepo.Create(ctx, document); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up document from storage after DB error",
				zap.Error(delErr),
				zap.String("storagePath", storagePath),
			)
		}
		return fmt.Errorf("failed to create document record: %w", err)
	}

	return nil
}

// GetByID retrieves a document record by its ID
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return document, nil
}

// Download retrieves a document's content for download.
// Returns reader, filename and content type.
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrNotFound
		}
		return nil, "", "", fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.storage.Download(ctx, document.StoragePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to download document: %w", err)
	}

	return reader, document.Filename, document.ContentType, nil
}

// ListByProposal returns all documents attached to a proposal
func (s *DocumentService) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]domain.Document, error) {
	if _, err := s.proposalRepo.GetByID(ctx, proposalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	documents, err := s.documentRepo.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposal documents: %w", err)
	}
	return documents, nil
}

// ListByInvoice returns all documents attached to an invoice
func (s *DocumentService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.Document, error) {
	if _, err := s.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	documents, err := s.documentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice documents: %w", err)
	}
	return documents, nil
}

// Delete removes a document from both storage and the database
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	// Storage failure does not block removal of the record
	if err := s.storage.Delete(ctx, document.StoragePath); err != nil {
		s.logger.Warn("failed to delete document from storage",
			zap.Error(err),
			zap.String("storagePath", document.StoragePath),
			zap.String("documentID", id.String()),
		)
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	return nil
}

func (s *DocumentService) logActivity(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:   targetType,
		TargetID:     targetID,
		Title:        title,
		Body:         body,
		ActivityType: domain.ActivityTypeSystem,
	}

	if user, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = user.UserID
		activity.CreatorName = user.DisplayName
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to create document activity",
			zap.Error(err),
			zap.String("targetID", targetID.String()),
		)
	}
}
