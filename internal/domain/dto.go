package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type CustomerDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone,omitempty"`
	CompanyName string         `json:"companyName,omitempty"`
	Address     string         `json:"address,omitempty"`
	City        string         `json:"city,omitempty"`
	PostalCode  string         `json:"postalCode,omitempty"`
	Country     string         `json:"country,omitempty"`
	Status      CustomerStatus `json:"status"`
	Tags        []string       `json:"tags,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   string         `json:"createdAt"` // ISO 8601
	UpdatedAt   string         `json:"updatedAt"` // ISO 8601
	OpenDeals   int            `json:"openDeals,omitempty"`
	TotalValue  float64        `json:"totalValue,omitempty"`
}

type ContactDTO struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Title      string    `json:"title,omitempty"`
	CustomerID uuid.UUID `json:"customerId"`
	IsPrimary  bool      `json:"isPrimary"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

type PipelineStageDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	Color        string    `json:"color"`
	IsClosed     bool      `json:"isClosed"`
	DealCount    int       `json:"dealCount,omitempty"`
}

type DealDTO struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	CustomerID        uuid.UUID `json:"customerId"`
	CustomerName      string    `json:"customerName,omitempty"`
	StageID           uuid.UUID `json:"stageId"`
	StageName         string    `json:"stageName,omitempty"`
	Probability       int       `json:"probability"`
	Value             float64   `json:"value"`
	SubscriptionValue float64   `json:"subscriptionValue"`
	OneTimeValue      float64   `json:"oneTimeValue"`
	Currency          string    `json:"currency"`
	DealType          DealType  `json:"dealType"`
	ExpectedCloseDate *string   `json:"expectedCloseDate,omitempty"`
	OwnerID           string    `json:"ownerId,omitempty"`
	OwnerName         string    `json:"ownerName,omitempty"`
	Source            string    `json:"source,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	ProposalCount     int       `json:"proposalCount"`
	CreatedAt         string    `json:"createdAt"`
	UpdatedAt         string    `json:"updatedAt"`
}

type ProposalDTO struct {
	ID                 uuid.UUID         `json:"id"`
	Number             string            `json:"number,omitempty"`
	Title              string            `json:"title"`
	DealID             *uuid.UUID        `json:"dealId,omitempty"`
	CustomerID         uuid.UUID         `json:"customerId"`
	CustomerName       string            `json:"customerName,omitempty"`
	Status             ProposalStatus    `json:"status"`
	Items              []ProposalItemDTO `json:"items"`
	Subtotal           float64           `json:"subtotal"`
	DiscountPercentage float64           `json:"discountPercentage"`
	DiscountAmount     float64           `json:"discountAmount"`
	TaxPercentage      float64           `json:"taxPercentage"`
	TaxAmount          float64           `json:"taxAmount"`
	Total              float64           `json:"total"`
	Currency           string            `json:"currency"`
	ValidUntil         *string           `json:"validUntil,omitempty"`
	SentAt             *string           `json:"sentAt,omitempty"`
	DecidedAt          *string           `json:"decidedAt,omitempty"`
	OwnerID            string            `json:"ownerId,omitempty"`
	OwnerName          string            `json:"ownerName,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	CreatedAt          string            `json:"createdAt"`
	UpdatedAt          string            `json:"updatedAt"`
}

type ProposalItemDTO struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unitPrice"`
	Total          float64   `json:"total"`
	IsSubscription bool      `json:"isSubscription"`
	DisplayOrder   int       `json:"displayOrder"`
}

type InvoiceDTO struct {
	ID             uuid.UUID     `json:"id"`
	Number         string        `json:"number"`
	ProposalID     uuid.UUID     `json:"proposalId"`
	CustomerID     uuid.UUID     `json:"customerId"`
	CustomerName   string        `json:"customerName,omitempty"`
	Status         InvoiceStatus `json:"status"`
	Subtotal       float64       `json:"subtotal"`
	DiscountAmount float64       `json:"discountAmount"`
	TaxAmount      float64       `json:"taxAmount"`
	Total          float64       `json:"total"`
	Currency       string        `json:"currency"`
	IssuedAt       string        `json:"issuedAt"`
	DueDate        *string       `json:"dueDate,omitempty"`
	PaidAt         *string       `json:"paidAt,omitempty"`
	ERPReference   string        `json:"erpReference,omitempty"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

type ActivityDTO struct {
	ID           uuid.UUID          `json:"id"`
	TargetType   ActivityTargetType `json:"targetType"`
	TargetID     uuid.UUID          `json:"targetId"`
	Title        string             `json:"title"`
	Body         string             `json:"body,omitempty"`
	ActivityType ActivityType       `json:"activityType"`
	OccurredAt   string             `json:"occurredAt"`
	CreatorID    string             `json:"creatorId,omitempty"`
	CreatorName  string             `json:"creatorName,omitempty"`
	CreatedAt    string             `json:"createdAt"`
}

type DocumentDTO struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	ProposalID  *uuid.UUID `json:"proposalId,omitempty"`
	InvoiceID   *uuid.UUID `json:"invoiceId,omitempty"`
	UploadedBy  string     `json:"uploadedBy,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	ReadAt     *string    `json:"readAt,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	EntityType string     `json:"entityType,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

// AuthUserDTO is the identity payload returned by /auth/me
type AuthUserDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Initials string   `json:"initials"`
	IsAdmin  bool     `json:"isAdmin"`
	CanWrite bool     `json:"canWrite"`
}

type UserDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// PipelineOverviewDTO groups open deals per stage for the board view
type PipelineOverviewDTO struct {
	Stages []PipelineStageGroupDTO `json:"stages"`
}

type PipelineStageGroupDTO struct {
	Stage PipelineStageDTO `json:"stage"`
	Deals []DealDTO        `json:"deals"`
	Value float64          `json:"value"`
}

// DashboardMetricsDTO summarizes pipeline health for the UI landing page
type DashboardMetricsDTO struct {
	CustomerCount     int                  `json:"customerCount"`
	OpenDealCount     int                  `json:"openDealCount"`
	OpenDealValue     float64              `json:"openDealValue"`
	OpenProposalCount int                  `json:"openProposalCount"`
	OpenProposalValue float64              `json:"openProposalValue"`
	UnpaidInvoiceSum  float64              `json:"unpaidInvoiceSum"`
	StageBreakdown    []StageBreakdownItem `json:"stageBreakdown"`
}

type StageBreakdownItem struct {
	StageID   uuid.UUID `json:"stageId"`
	StageName string    `json:"stageName"`
	DealCount int       `json:"dealCount"`
	Value     float64   `json:"value"`
}

// ImportResult is the outcome of a CSV bulk import. Errors are
// human-readable, prefixed with the spreadsheet row number (header is row 1,
// so the first data row is row 2). Row-level failures never abort the batch.
type ImportResult struct {
	SuccessCount int      `json:"successCount"`
	Errors       []string `json:"errors"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

type CreateCustomerRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Email       string         `json:"email" validate:"required,email"`
	Phone       string         `json:"phone,omitempty" validate:"max=50"`
	CompanyName string         `json:"companyName,omitempty" validate:"max=200"`
	Address     string         `json:"address,omitempty" validate:"max=500"`
	City        string         `json:"city,omitempty" validate:"max=100"`
	PostalCode  string         `json:"postalCode,omitempty" validate:"max=20"`
	Country     string         `json:"country,omitempty" validate:"max=100"`
	Status      CustomerStatus `json:"status,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Email       string         `json:"email" validate:"required,email"`
	Phone       string         `json:"phone,omitempty" validate:"max=50"`
	CompanyName string         `json:"companyName,omitempty" validate:"max=200"`
	Address     string         `json:"address,omitempty" validate:"max=500"`
	City        string         `json:"city,omitempty" validate:"max=100"`
	PostalCode  string         `json:"postalCode,omitempty" validate:"max=20"`
	Country     string         `json:"country,omitempty" validate:"max=100"`
	Status      CustomerStatus `json:"status,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

type CreateContactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"max=50"`
	Title     string `json:"title,omitempty" validate:"max=100"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateContactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"max=50"`
	Title     string `json:"title,omitempty" validate:"max=100"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type CreateStageRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	DisplayOrder int    `json:"displayOrder,omitempty" validate:"gte=0"`
	Color        string `json:"color,omitempty" validate:"max=20"`
	IsClosed     bool   `json:"isClosed,omitempty"`
}

type UpdateStageRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	DisplayOrder int    `json:"displayOrder,omitempty" validate:"gte=0"`
	Color        string `json:"color,omitempty" validate:"max=20"`
	IsClosed     bool   `json:"isClosed,omitempty"`
}

type ReorderStagesRequest struct {
	StageIDs []uuid.UUID `json:"stageIds" validate:"required,min=1"`
}

type CreateDealRequest struct {
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description,omitempty"`
	CustomerID        uuid.UUID  `json:"customerId" validate:"required"`
	StageID           *uuid.UUID `json:"stageId,omitempty"`
	Probability       *int       `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Value             float64    `json:"value,omitempty" validate:"gte=0"`
	Currency          string     `json:"currency,omitempty" validate:"max=3"`
	DealType          DealType   `json:"dealType,omitempty"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	OwnerID           string     `json:"ownerId,omitempty" validate:"max=100"`
	Source            string     `json:"source,omitempty" validate:"max=100"`
	Notes             string     `json:"notes,omitempty"`
}

type UpdateDealRequest struct {
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description,omitempty"`
	StageID           *uuid.UUID `json:"stageId,omitempty"`
	Probability       *int       `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Value             *float64   `json:"value,omitempty" validate:"omitempty,gte=0"`
	Currency          string     `json:"currency,omitempty" validate:"max=3"`
	DealType          DealType   `json:"dealType,omitempty"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	OwnerID           string     `json:"ownerId,omitempty" validate:"max=100"`
	Source            string     `json:"source,omitempty" validate:"max=100"`
	Notes             string     `json:"notes,omitempty"`
}

type MoveDealStageRequest struct {
	StageID uuid.UUID `json:"stageId" validate:"required"`
	Notes   string    `json:"notes,omitempty"`
}

type CreateProposalRequest struct {
	Title              string                      `json:"title" validate:"required,max=200"`
	DealID             *uuid.UUID                  `json:"dealId,omitempty"`
	CustomerID         uuid.UUID                   `json:"customerId" validate:"required"`
	Items              []CreateProposalItemRequest `json:"items" validate:"dive"`
	DiscountPercentage float64                     `json:"discountPercentage,omitempty" validate:"gte=0,lte=100"`
	TaxPercentage      float64                     `json:"taxPercentage,omitempty" validate:"gte=0,lte=100"`
	Currency           string                      `json:"currency,omitempty" validate:"max=3"`
	ValidUntil         *time.Time                  `json:"validUntil,omitempty"`
	Notes              string                      `json:"notes,omitempty"`
}

type UpdateProposalRequest struct {
	Title              string                      `json:"title" validate:"required,max=200"`
	DealID             *uuid.UUID                  `json:"dealId,omitempty"`
	Items              []CreateProposalItemRequest `json:"items" validate:"dive"`
	DiscountPercentage float64                     `json:"discountPercentage,omitempty" validate:"gte=0,lte=100"`
	TaxPercentage      float64                     `json:"taxPercentage,omitempty" validate:"gte=0,lte=100"`
	Currency           string                      `json:"currency,omitempty" validate:"max=3"`
	ValidUntil         *time.Time                  `json:"validUntil,omitempty"`
	Notes              string                      `json:"notes,omitempty"`
}

type CreateProposalItemRequest struct {
	Description    string  `json:"description" validate:"required,max=500"`
	Quantity       int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice      float64 `json:"unitPrice" validate:"gte=0"`
	IsSubscription bool    `json:"isSubscription,omitempty"`
	DisplayOrder   int     `json:"displayOrder,omitempty" validate:"gte=0"`
}

type RejectProposalRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type GenerateInvoiceRequest struct {
	DueDate *time.Time `json:"dueDate,omitempty"`
}

type CreateActivityRequest struct {
	TargetType   ActivityTargetType `json:"targetType" validate:"required"`
	TargetID     uuid.UUID          `json:"targetId" validate:"required"`
	Title        string             `json:"title" validate:"required,max=200"`
	Body         string             `json:"body,omitempty" validate:"max=2000"`
	ActivityType ActivityType       `json:"activityType,omitempty"`
	OccurredAt   *time.Time         `json:"occurredAt,omitempty"`
}
