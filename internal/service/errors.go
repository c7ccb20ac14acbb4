package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateEmail is returned when a customer with the same email already exists
	ErrDuplicateEmail = errors.New("customer with this email already exists")

	// ErrCustomerHasOpenDeals is returned when deleting a customer with open deals
	ErrCustomerHasOpenDeals = errors.New("customer has open deals")

	// ErrStageInUse is returned when deleting a stage that deals still reference
	ErrStageInUse = errors.New("stage is referenced by existing deals")

	// ErrStageNotFound is returned when a pipeline stage cannot be resolved
	ErrStageNotFound = errors.New("pipeline stage not found")

	// ErrDealHasProposals is returned when deleting a deal that proposals
	// still reference
	ErrDealHasProposals = errors.New("deal has proposals")

	// ErrValueManagedByProposals is returned when manually editing deal value
	// fields while proposals exist; the valuation aggregator owns them
	ErrValueManagedByProposals = errors.New("deal value is derived from proposals and cannot be edited directly")

	// ErrInvalidStatusTransition is returned for a disallowed proposal status change
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrProposalNotAccepted is returned when generating an invoice from a
	// proposal that has not been accepted
	ErrProposalNotAccepted = errors.New("proposal is not accepted")

	// ErrInvoiceAlreadyExists is returned when a proposal already has an invoice
	ErrInvoiceAlreadyExists = errors.New("invoice already generated for this proposal")

	// ErrInvoiceNotPayable is returned when marking an invoice paid from a
	// status that does not allow it
	ErrInvoiceNotPayable = errors.New("invoice cannot be marked paid in its current status")

	// ErrErpDisabled is returned when ERP reconciliation is requested but the
	// ERP connection is not configured
	ErrErpDisabled = errors.New("erp connection is not enabled")
)
