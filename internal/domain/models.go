package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate generates the primary key app-side so inserts do not depend
// on a database default
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusLead     CustomerStatus = "lead"
	CustomerStatusChurned  CustomerStatus = "churned"
)

// IsValid checks if the CustomerStatus is a valid enum value
func (cs CustomerStatus) IsValid() bool {
	switch cs {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusLead, CustomerStatusChurned:
		return true
	}
	return false
}

// Customer represents an organization in the CRM.
// Email is the natural key used for duplicate detection during CSV import.
type Customer struct {
	BaseModel
	Name        string         `gorm:"type:varchar(200);not null;index"`
	Email       string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone       string         `gorm:"type:varchar(50)"`
	CompanyName string         `gorm:"type:varchar(200);column:company_name"`
	Address     string         `gorm:"type:varchar(500)"`
	City        string         `gorm:"type:varchar(100)"`
	PostalCode  string         `gorm:"type:varchar(20)"`
	Country     string         `gorm:"type:varchar(100)"`
	Status      CustomerStatus `gorm:"type:varchar(50);not null;default:'active';index"`
	Tags        pq.StringArray `gorm:"type:text[]"`
	Notes       string         `gorm:"type:text"`
	Contacts    []Contact      `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Deals       []Deal         `gorm:"foreignKey:CustomerID"`
	Proposals   []Proposal     `gorm:"foreignKey:CustomerID"`
}

// Contact represents an individual person at a customer
type Contact struct {
	BaseModel
	FirstName  string    `gorm:"type:varchar(100);not null;column:first_name"`
	LastName   string    `gorm:"type:varchar(100);not null;column:last_name"`
	Email      string    `gorm:"type:varchar(255);index"`
	Phone      string    `gorm:"type:varchar(50)"`
	Title      string    `gorm:"type:varchar(100)"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID"`
	IsPrimary  bool      `gorm:"not null;default:false;column:is_primary"`
	Notes      string    `gorm:"type:text"`
}

// FullName returns the contact's full name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// PipelineStage represents a stage of the deal pipeline.
// Stages are data, not an enum: the UI groups deals by stage, and the CSV
// importer falls back to the first stage by display order when a row does not
// name a resolvable stage.
type PipelineStage struct {
	BaseModel
	Name         string `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayOrder int    `gorm:"not null;default:0;column:display_order;index"`
	Color        string `gorm:"type:varchar(20);not null;default:'#6b7280'"`
	IsClosed     bool   `gorm:"not null;default:false;column:is_closed"`
	Deals        []Deal `gorm:"foreignKey:StageID"`
}

// DealType classifies the revenue character of a deal
type DealType string

const (
	DealTypeNewBusiness DealType = "new_business"
	DealTypeExpansion   DealType = "expansion"
	DealTypeRenewal     DealType = "renewal"
)

// IsValid checks if the DealType is a valid enum value
func (dt DealType) IsValid() bool {
	switch dt {
	case DealTypeNewBusiness, DealTypeExpansion, DealTypeRenewal:
		return true
	}
	return false
}

// Deal represents a sales opportunity in the pipeline.
//
// Value, SubscriptionValue and OneTimeValue are derived: as soon as at least
// one proposal references the deal, they are owned by the valuation
// aggregator and recomputed from proposal line items on every proposal
// mutation. Manual edits to them are rejected while proposals exist, and
// Value == SubscriptionValue + OneTimeValue holds after every aggregation.
type Deal struct {
	BaseModel
	Title             string         `gorm:"type:varchar(200);not null;index"`
	Description       string         `gorm:"type:text"`
	CustomerID        uuid.UUID      `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer          *Customer      `gorm:"foreignKey:CustomerID"`
	CustomerName      string         `gorm:"type:varchar(200);column:customer_name"`
	StageID           uuid.UUID      `gorm:"type:uuid;not null;index;column:stage_id"`
	Stage             *PipelineStage `gorm:"foreignKey:StageID"`
	StageName         string         `gorm:"type:varchar(100);column:stage_name"`
	Probability       int            `gorm:"type:int;not null;default:0"`
	Value             float64        `gorm:"type:decimal(15,2);not null;default:0"`
	SubscriptionValue float64        `gorm:"type:decimal(15,2);not null;default:0;column:subscription_value"`
	OneTimeValue      float64        `gorm:"type:decimal(15,2);not null;default:0;column:one_time_value"`
	Currency          string         `gorm:"type:varchar(3);not null;default:'EUR'"`
	DealType          DealType       `gorm:"type:varchar(50);not null;default:'new_business';column:deal_type"`
	ExpectedCloseDate *time.Time     `gorm:"type:date;column:expected_close_date"`
	OwnerID           string         `gorm:"type:varchar(100);column:owner_id"`
	OwnerName         string         `gorm:"type:varchar(200);column:owner_name"`
	Source            string         `gorm:"type:varchar(100)"`
	Notes             string         `gorm:"type:text"`
	Proposals         []Proposal     `gorm:"foreignKey:DealID"`
}

// ProposalStatus represents the lifecycle status of a proposal
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusViewed   ProposalStatus = "viewed"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
	ProposalStatusExpired  ProposalStatus = "expired"
)

// IsValid checks if the ProposalStatus is a valid enum value
func (ps ProposalStatus) IsValid() bool {
	switch ps {
	case ProposalStatusDraft, ProposalStatusSent, ProposalStatusViewed,
		ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions
func (ps ProposalStatus) IsTerminal() bool {
	return ps == ProposalStatusAccepted || ps == ProposalStatusRejected || ps == ProposalStatusExpired
}

// Proposal represents a quote document with line items.
//
// Subtotal, DiscountAmount, TaxAmount and Total are derived and recomputed on
// every edit to the items or the percentages. Tax applies to the
// post-discount amount. Proposals of any status (drafts included) contribute
// to their deal's aggregated value fields.
type Proposal struct {
	BaseModel
	Number             string         `gorm:"type:varchar(50);uniqueIndex"`
	Title              string         `gorm:"type:varchar(200);not null"`
	DealID             *uuid.UUID     `gorm:"type:uuid;index;column:deal_id"`
	Deal               *Deal          `gorm:"foreignKey:DealID"`
	CustomerID         uuid.UUID      `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer           *Customer      `gorm:"foreignKey:CustomerID"`
	CustomerName       string         `gorm:"type:varchar(200);column:customer_name"`
	Status             ProposalStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Items              []ProposalItem `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
	Subtotal           float64        `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountPercentage float64        `gorm:"type:decimal(5,2);not null;default:0;column:discount_percentage"`
	DiscountAmount     float64        `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	TaxPercentage      float64        `gorm:"type:decimal(5,2);not null;default:0;column:tax_percentage"`
	TaxAmount          float64        `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	Total              float64        `gorm:"type:decimal(15,2);not null;default:0"`
	Currency           string         `gorm:"type:varchar(3);not null;default:'EUR'"`
	ValidUntil         *time.Time     `gorm:"type:date;column:valid_until"`
	SentAt             *time.Time     `gorm:"column:sent_at"`
	DecidedAt          *time.Time     `gorm:"column:decided_at"`
	OwnerID            string         `gorm:"type:varchar(100);column:owner_id"`
	OwnerName          string         `gorm:"type:varchar(200);column:owner_name"`
	Notes              string         `gorm:"type:text"`
	Documents          []Document     `gorm:"foreignKey:ProposalID"`
}

// ProposalItem represents one line entry in a proposal.
// Total = Quantity * UnitPrice is derived. IsSubscription controls which
// bucket the line contributes to when deal values are aggregated.
type ProposalItem struct {
	BaseModel
	ProposalID     uuid.UUID `gorm:"type:uuid;not null;index;column:proposal_id"`
	Proposal       *Proposal `gorm:"foreignKey:ProposalID"`
	Description    string    `gorm:"type:varchar(500);not null"`
	Quantity       int       `gorm:"type:int;not null;default:1"`
	UnitPrice      float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Total          float64   `gorm:"type:decimal(15,2);not null;default:0"`
	IsSubscription bool      `gorm:"not null;default:false;column:is_subscription"`
	DisplayOrder   int       `gorm:"not null;default:0;column:display_order"`
}

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the InvoiceStatus is a valid enum value
func (is InvoiceStatus) IsValid() bool {
	switch is {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice represents a billing document generated from an accepted proposal.
// Amounts are copied from the proposal at generation time and are not
// recomputed afterwards. Payment status may be reconciled against the
// accounting ERP mirror.
type Invoice struct {
	BaseModel
	Number         string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProposalID     uuid.UUID     `gorm:"type:uuid;not null;index;column:proposal_id"`
	Proposal       *Proposal     `gorm:"foreignKey:ProposalID"`
	CustomerID     uuid.UUID     `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer       *Customer     `gorm:"foreignKey:CustomerID"`
	CustomerName   string        `gorm:"type:varchar(200);column:customer_name"`
	Status         InvoiceStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Subtotal       float64       `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount float64       `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	TaxAmount      float64       `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	Total          float64       `gorm:"type:decimal(15,2);not null;default:0"`
	Currency       string        `gorm:"type:varchar(3);not null;default:'EUR'"`
	IssuedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;column:issued_at"`
	DueDate        *time.Time    `gorm:"type:date;column:due_date"`
	PaidAt         *time.Time    `gorm:"column:paid_at"`
	ERPReference   string        `gorm:"type:varchar(100);column:erp_reference;index"`
}

// ActivityTargetType represents the type of entity an activity is associated with
type ActivityTargetType string

const (
	ActivityTargetCustomer ActivityTargetType = "Customer"
	ActivityTargetContact  ActivityTargetType = "Contact"
	ActivityTargetDeal     ActivityTargetType = "Deal"
	ActivityTargetProposal ActivityTargetType = "Proposal"
	ActivityTargetInvoice  ActivityTargetType = "Invoice"
)

// ActivityType represents the type of activity
type ActivityType string

const (
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeTask    ActivityType = "task"
	ActivityTypeNote    ActivityType = "note"
	ActivityTypeSystem  ActivityType = "system"
)

// IsValid checks if the ActivityType is a valid enum value
func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityTypeMeeting, ActivityTypeCall, ActivityTypeEmail, ActivityTypeTask, ActivityTypeNote, ActivityTypeSystem:
		return true
	}
	return false
}

// Activity represents an event log entry for any entity
type Activity struct {
	BaseModel
	TargetType   ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID     uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title        string             `gorm:"type:varchar(200);not null"`
	Body         string             `gorm:"type:varchar(2000)"`
	ActivityType ActivityType       `gorm:"type:varchar(50);not null;default:'note';column:activity_type"`
	OccurredAt   time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	CreatorID    string             `gorm:"type:varchar(100);column:creator_id"`
	CreatorName  string             `gorm:"type:varchar(200);column:creator_name"`
}

// Notification represents a user notification
type Notification struct {
	BaseModel
	UserID     string `gorm:"type:varchar(100);not null;index;column:user_id"`
	Type       string `gorm:"type:varchar(50);not null"`
	Title      string `gorm:"type:varchar(200);not null"`
	Message    string `gorm:"type:varchar(500);not null"`
	Read       bool   `gorm:"column:read;not null;default:false;index"`
	ReadAt     *time.Time
	EntityID   *uuid.UUID `gorm:"type:uuid"`
	EntityType string     `gorm:"type:varchar(50)"`
}

// NumberSequence provides per-entity yearly counters for generated
// document numbers (P-2026-0001, INV-2026-0001)
type NumberSequence struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityType string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_sequence_entity_year;column:entity_type"`
	Year       int       `gorm:"not null;uniqueIndex:idx_sequence_entity_year"`
	LastNumber int       `gorm:"not null;default:0;column:last_number"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Document represents a stored file attached to a proposal or invoice
// (uploaded proposal documents, CSV import source files)
type Document struct {
	BaseModel
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique"`
	ProposalID  *uuid.UUID `gorm:"type:uuid;index;column:proposal_id"`
	Proposal    *Proposal  `gorm:"foreignKey:ProposalID"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index;column:invoice_id"`
	UploadedBy  string     `gorm:"type:varchar(100);column:uploaded_by"`
}

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleSalesRep   UserRoleType = "sales_rep"
	RoleViewer     UserRoleType = "viewer"
	RoleAPIService UserRoleType = "api_service"
)

// User represents a principal provisioned by the external identity provider.
// The CRM never manages credentials; it only records identity echoed from
// validated tokens.
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}
