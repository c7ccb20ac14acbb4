package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImportService handles CSV bulk imports of customers and deals.
//
// Files are parsed per RFC 4180 (quoted fields, doubled-quote escaping).
// Rows are processed strictly sequentially and each insert is completed
// before the next row's duplicate check, so a duplicate within the same
// batch is caught. Row-level failures are recorded and skipped; only a
// structurally broken file (empty, or header missing required columns)
// aborts the import before any row is processed.
//
// Error strings are prefixed with the spreadsheet row number: the header is
// row 1, the first data row is row 2.
type ImportService struct {
	customerRepo *repository.CustomerRepository
	dealRepo     *repository.DealRepository
	stageRepo    *repository.StageRepository
	logger       *zap.Logger
}

func NewImportService(
	customerRepo *repository.CustomerRepository,
	dealRepo *repository.DealRepository,
	stageRepo *repository.StageRepository,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		customerRepo: customerRepo,
		dealRepo:     dealRepo,
		stageRepo:    stageRepo,
		logger:       logger,
	}
}

var (
	customerRequiredColumns = []string{"name", "email"}
	dealRequiredColumns     = []string{"title", "customeremail", "value"}
)

// readHeader reads and normalizes the header row, returning a column→index
// map. Missing required columns (or an empty file) yield the single
// structural error message and a nil map.
func readHeader(reader *csv.Reader, required []string) (map[string]int, string) {
	header, err := reader.Read()
	if err != nil {
		return nil, "Missing required fields: " + strings.Join(required, ", ")
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, "Missing required fields: " + strings.Join(missing, ", ")
	}

	return columns, ""
}

// cell returns the trimmed value of the named column, or "" when the row is
// too short or the column is absent.
func cell(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// ImportCustomers imports customers from CSV data.
// Expected header: name,email,phone,company,address (name and email required).
func (s *ImportService) ImportCustomers(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	result := &domain.ImportResult{Errors: []string{}}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	columns, structural := readHeader(reader, customerRequiredColumns)
	if structural != "" {
		result.Errors = append(result.Errors, structural)
		return result, nil
	}

	// Emails inserted during this batch; later rows must not duplicate them
	seen := make(map[string]bool)

	rowNum := 1
	for {
		rowNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		name := cell(record, columns, "name")
		email := cell(record, columns, "email")

		if name == "" || email == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing required fields (name, email)", rowNum))
			continue
		}

		emailKey := strings.ToLower(email)
		duplicate := seen[emailKey]
		if !duplicate {
			_, err := s.customerRepo.GetByEmail(ctx, email)
			if err == nil {
				duplicate = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
		}
		if duplicate {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Customer with email %s already exists", rowNum, email))
			continue
		}

		customer := &domain.Customer{
			Name:        name,
			Email:       email,
			Phone:       cell(record, columns, "phone"),
			CompanyName: cell(record, columns, "company"),
			Address:     cell(record, columns, "address"),
			Status:      domain.CustomerStatusActive,
		}

		if err := s.customerRepo.Create(ctx, customer); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		seen[emailKey] = true
		result.SuccessCount++
	}

	s.logger.Info("Customer import finished",
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", len(result.Errors)),
	)

	return result, nil
}

// ImportDeals imports deals from CSV data.
// Expected header: title,customerEmail,value,probability,stage,type,description
// (title, customerEmail and value required).
//
// customerEmail is resolved case-insensitively against existing customers.
// stage is resolved case-insensitively by name; an absent or unknown stage
// falls back to the first stage by display order. probability defaults to 50
// when absent or non-numeric. A malformed value is a row error, not a silent
// zero.
func (s *ImportService) ImportDeals(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	result := &domain.ImportResult{Errors: []string{}}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	columns, structural := readHeader(reader, dealRequiredColumns)
	if structural != "" {
		result.Errors = append(result.Errors, structural)
		return result, nil
	}

	rowNum := 1
	for {
		rowNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		title := cell(record, columns, "title")
		customerEmail := cell(record, columns, "customeremail")
		rawValue := cell(record, columns, "value")

		if title == "" || customerEmail == "" || rawValue == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing required fields (title, customerEmail, value)", rowNum))
			continue
		}

		customer, err := s.customerRepo.GetByEmail(ctx, customerEmail)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: No customer found with email %s", rowNum, customerEmail))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			}
			continue
		}

		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid value %q", rowNum, rawValue))
			continue
		}

		probability := 50
		if raw := cell(record, columns, "probability"); raw != "" {
			if p, err := strconv.Atoi(raw); err == nil {
				probability = p
			}
		}

		stage, err := s.resolveStage(ctx, cell(record, columns, "stage"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		dealType := domain.DealType(strings.ToLower(cell(record, columns, "type")))
		if !dealType.IsValid() {
			dealType = domain.DealTypeNewBusiness
		}

		deal := &domain.Deal{
			Title:        title,
			Description:  cell(record, columns, "description"),
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			StageID:      stage.ID,
			StageName:    stage.Name,
			Probability:  probability,
			Value:        value,
			DealType:     dealType,
		}

		if err := s.dealRepo.Create(ctx, deal); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		result.SuccessCount++
	}

	s.logger.Info("Deal import finished",
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", len(result.Errors)),
	)

	return result, nil
}

// resolveStage maps a stage name to a stage, falling back to the first stage
// by display order when the name is empty or unknown.
func (s *ImportService) resolveStage(ctx context.Context, name string) (*domain.PipelineStage, error) {
	if name != "" {
		stage, err := s.stageRepo.GetByName(ctx, name)
		if err == nil {
			return stage, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	stage, err := s.stageRepo.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return stage, nil
}
