package mapper

import (
	"time"

	"github.com/salesbridge/crm-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:          customer.ID,
		Name:        customer.Name,
		Email:       customer.Email,
		Phone:       customer.Phone,
		CompanyName: customer.CompanyName,
		Address:     customer.Address,
		City:        customer.City,
		PostalCode:  customer.PostalCode,
		Country:     customer.Country,
		Status:      customer.Status,
		Tags:        customer.Tags,
		Notes:       customer.Notes,
		CreatedAt:   formatTime(customer.CreatedAt),
		UpdatedAt:   formatTime(customer.UpdatedAt),
	}
}

// ToCustomerDTOs converts a slice of Customers to DTOs
func ToCustomerDTOs(customers []domain.Customer) []domain.CustomerDTO {
	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = ToCustomerDTO(&customers[i])
	}
	return dtos
}

// ToContactDTO converts Contact to ContactDTO
func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:         contact.ID,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		FullName:   contact.FullName(),
		Email:      contact.Email,
		Phone:      contact.Phone,
		Title:      contact.Title,
		CustomerID: contact.CustomerID,
		IsPrimary:  contact.IsPrimary,
		Notes:      contact.Notes,
		CreatedAt:  formatTime(contact.CreatedAt),
		UpdatedAt:  formatTime(contact.UpdatedAt),
	}
}

// ToContactDTOs converts a slice of Contacts to DTOs
func ToContactDTOs(contacts []domain.Contact) []domain.ContactDTO {
	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = ToContactDTO(&contacts[i])
	}
	return dtos
}

// ToPipelineStageDTO converts PipelineStage to PipelineStageDTO
func ToPipelineStageDTO(stage *domain.PipelineStage) domain.PipelineStageDTO {
	return domain.PipelineStageDTO{
		ID:           stage.ID,
		Name:         stage.Name,
		DisplayOrder: stage.DisplayOrder,
		Color:        stage.Color,
		IsClosed:     stage.IsClosed,
	}
}

// ToPipelineStageDTOs converts a slice of PipelineStages to DTOs
func ToPipelineStageDTOs(stages []domain.PipelineStage) []domain.PipelineStageDTO {
	dtos := make([]domain.PipelineStageDTO, len(stages))
	for i := range stages {
		dtos[i] = ToPipelineStageDTO(&stages[i])
	}
	return dtos
}

// ToDealDTO converts Deal to DealDTO
func ToDealDTO(deal *domain.Deal) domain.DealDTO {
	return domain.DealDTO{
		ID:                deal.ID,
		Title:             deal.Title,
		Description:       deal.Description,
		CustomerID:        deal.CustomerID,
		CustomerName:      deal.CustomerName,
		StageID:           deal.StageID,
		StageName:         deal.StageName,
		Probability:       deal.Probability,
		Value:             deal.Value,
		SubscriptionValue: deal.SubscriptionValue,
		OneTimeValue:      deal.OneTimeValue,
		Currency:          deal.Currency,
		DealType:          deal.DealType,
		ExpectedCloseDate: formatTimePtr(deal.ExpectedCloseDate),
		OwnerID:           deal.OwnerID,
		OwnerName:         deal.OwnerName,
		Source:            deal.Source,
		Notes:             deal.Notes,
		ProposalCount:     len(deal.Proposals),
		CreatedAt:         formatTime(deal.CreatedAt),
		UpdatedAt:         formatTime(deal.UpdatedAt),
	}
}

// ToDealDTOs converts a slice of Deals to DTOs
func ToDealDTOs(deals []domain.Deal) []domain.DealDTO {
	dtos := make([]domain.DealDTO, len(deals))
	for i := range deals {
		dtos[i] = ToDealDTO(&deals[i])
	}
	return dtos
}

// ToProposalDTO converts Proposal to ProposalDTO
func ToProposalDTO(proposal *domain.Proposal) domain.ProposalDTO {
	items := make([]domain.ProposalItemDTO, len(proposal.Items))
	for i := range proposal.Items {
		items[i] = ToProposalItemDTO(&proposal.Items[i])
	}

	return domain.ProposalDTO{
		ID:                 proposal.ID,
		Number:             proposal.Number,
		Title:              proposal.Title,
		DealID:             proposal.DealID,
		CustomerID:         proposal.CustomerID,
		CustomerName:       proposal.CustomerName,
		Status:             proposal.Status,
		Items:              items,
		Subtotal:           proposal.Subtotal,
		DiscountPercentage: proposal.DiscountPercentage,
		DiscountAmount:     proposal.DiscountAmount,
		TaxPercentage:      proposal.TaxPercentage,
		TaxAmount:          proposal.TaxAmount,
		Total:              proposal.Total,
		Currency:           proposal.Currency,
		ValidUntil:         formatTimePtr(proposal.ValidUntil),
		SentAt:             formatTimePtr(proposal.SentAt),
		DecidedAt:          formatTimePtr(proposal.DecidedAt),
		OwnerID:            proposal.OwnerID,
		OwnerName:          proposal.OwnerName,
		Notes:              proposal.Notes,
		CreatedAt:          formatTime(proposal.CreatedAt),
		UpdatedAt:          formatTime(proposal.UpdatedAt),
	}
}

// ToProposalDTOs converts a slice of Proposals to DTOs
func ToProposalDTOs(proposals []domain.Proposal) []domain.ProposalDTO {
	dtos := make([]domain.ProposalDTO, len(proposals))
	for i := range proposals {
		dtos[i] = ToProposalDTO(&proposals[i])
	}
	return dtos
}

// ToProposalItemDTO converts ProposalItem to ProposalItemDTO
func ToProposalItemDTO(item *domain.ProposalItem) domain.ProposalItemDTO {
	return domain.ProposalItemDTO{
		ID:             item.ID,
		Description:    item.Description,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		Total:          item.Total,
		IsSubscription: item.IsSubscription,
		DisplayOrder:   item.DisplayOrder,
	}
}

// ToInvoiceDTO converts Invoice to InvoiceDTO
func ToInvoiceDTO(invoice *domain.Invoice) domain.InvoiceDTO {
	return domain.InvoiceDTO{
		ID:             invoice.ID,
		Number:         invoice.Number,
		ProposalID:     invoice.ProposalID,
		CustomerID:     invoice.CustomerID,
		CustomerName:   invoice.CustomerName,
		Status:         invoice.Status,
		Subtotal:       invoice.Subtotal,
		DiscountAmount: invoice.DiscountAmount,
		TaxAmount:      invoice.TaxAmount,
		Total:          invoice.Total,
		Currency:       invoice.Currency,
		IssuedAt:       formatTime(invoice.IssuedAt),
		DueDate:        formatTimePtr(invoice.DueDate),
		PaidAt:         formatTimePtr(invoice.PaidAt),
		ERPReference:   invoice.ERPReference,
		CreatedAt:      formatTime(invoice.CreatedAt),
		UpdatedAt:      formatTime(invoice.UpdatedAt),
	}
}

// ToInvoiceDTOs converts a slice of Invoices to DTOs
func ToInvoiceDTOs(invoices []domain.Invoice) []domain.InvoiceDTO {
	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = ToInvoiceDTO(&invoices[i])
	}
	return dtos
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:           activity.ID,
		TargetType:   activity.TargetType,
		TargetID:     activity.TargetID,
		Title:        activity.Title,
		Body:         activity.Body,
		ActivityType: activity.ActivityType,
		OccurredAt:   formatTime(activity.OccurredAt),
		CreatorID:    activity.CreatorID,
		CreatorName:  activity.CreatorName,
		CreatedAt:    formatTime(activity.CreatedAt),
	}
}

// ToActivityDTOs converts a slice of Activities to DTOs
func ToActivityDTOs(activities []domain.Activity) []domain.ActivityDTO {
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = ToActivityDTO(&activities[i])
	}
	return dtos
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		Read:       notification.Read,
		ReadAt:     formatTimePtr(notification.ReadAt),
		EntityID:   notification.EntityID,
		EntityType: notification.EntityType,
		CreatedAt:  formatTime(notification.CreatedAt),
	}
}

// ToNotificationDTOs converts a slice of Notifications to DTOs
func ToNotificationDTOs(notifications []domain.Notification) []domain.NotificationDTO {
	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = ToNotificationDTO(&notifications[i])
	}
	return dtos
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(document *domain.Document) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:          document.ID,
		Filename:    document.Filename,
		ContentType: document.ContentType,
		Size:        document.Size,
		ProposalID:  document.ProposalID,
		InvoiceID:   document.InvoiceID,
		UploadedBy:  document.UploadedBy,
		CreatedAt:   formatTime(document.CreatedAt),
	}
}

// ToDocumentDTOs converts a slice of Documents to DTOs
func ToDocumentDTOs(documents []domain.Document) []domain.DocumentDTO {
	dtos := make([]domain.DocumentDTO, len(documents))
	for i := range documents {
		dtos[i] = ToDocumentDTO(&documents[i])
	}
	return dtos
}
