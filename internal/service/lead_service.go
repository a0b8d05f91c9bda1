package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-leads-api/internal/models"
	"github.com/noah-isme/enroll-leads-api/internal/repository"
	appErrors "github.com/noah-isme/enroll-leads-api/pkg/errors"
	"github.com/noah-isme/enroll-leads-api/pkg/export"
)

type leadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	FindByEmail(ctx context.Context, email string) (*models.Lead, error)
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
	SetSheetRowID(ctx context.Context, id, rowID string) error
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error)
}

type leadMirror interface {
	Append(ctx context.Context, lead *models.Lead) (string, error)
	UpdateStatusCell(ctx context.Context, rowRef string, status models.LeadStatus) error
	Active() bool
}

type metricsObserver interface {
	ObserveMirrorSync(operation string, err error)
	ObserveDBQuery(query string, duration time.Duration)
}

// CreateLeadRequest holds the public submission payload.
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=7,max=20"`
	Course  string `json:"course" validate:"required,max=100"`
	College string `json:"college" validate:"required,max=200"`
	Year    string `json:"year" validate:"required,max=20"`
}

// UpdateStatusRequest holds the status transition payload.
type UpdateStatusRequest struct {
	Status models.LeadStatus `json:"status" validate:"required,oneof=NEW CONTACTED"`
}

// LeadService orchestrates lead use-cases over the repository and the
// spreadsheet mirror.
type LeadService struct {
	repo      leadRepository
	mirror    leadMirror
	validator *validator.Validate
	logger    *zap.Logger
	metrics   metricsObserver

	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewLeadService constructs the lead service.
func NewLeadService(repo leadRepository, mirror leadMirror, validate *validator.Validate, logger *zap.Logger, metrics metricsObserver) *LeadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		repo:      repo,
		mirror:    mirror,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Submit creates a lead from a public form submission. The spreadsheet
// mirror append and the row-reference backfill are post-commit steps whose
// failures are logged and swallowed; the persisted lead is returned
// regardless.
func (s *LeadService) Submit(ctx context.Context, req CreateLeadRequest) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lead payload")
	}

	// Emails are normalised at write time so uniqueness and search agree on
	// case.
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a lead with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for existing lead")
	}

	lead := &models.Lead{
		Name:    strings.TrimSpace(req.Name),
		Email:   email,
		Phone:   strings.TrimSpace(req.Phone),
		Course:  strings.TrimSpace(req.Course),
		College: strings.TrimSpace(req.College),
		Year:    strings.TrimSpace(req.Year),
		Status:  models.LeadStatusNew,
	}

	start := time.Now()
	if err := s.repo.Create(ctx, lead); err != nil {
		// The unique constraint catches writers racing past the pre-check.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a lead with this email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lead")
	}
	s.observeQuery("create_lead", start)

	s.mirrorAppend(ctx, lead)

	return lead, nil
}

// mirrorAppend runs the best-effort sheet append and row-reference backfill.
// Never returns an error: mirror staleness is an accepted outcome.
func (s *LeadService) mirrorAppend(ctx context.Context, lead *models.Lead) {
	if !s.mirror.Active() {
		return
	}

	rowRef, err := s.mirror.Append(ctx, lead)
	s.observeMirror("append", err)
	if err != nil {
		s.logger.Warn("sheet mirror append failed",
			zap.String("lead_id", lead.ID),
			zap.Error(err))
		return
	}
	if rowRef == "" {
		return
	}

	if err := s.repo.SetSheetRowID(ctx, lead.ID, rowRef); err != nil {
		s.logger.Warn("failed to persist sheet row reference",
			zap.String("lead_id", lead.ID),
			zap.String("row_ref", rowRef),
			zap.Error(err))
		return
	}
	lead.SheetRowID = &rowRef
}

// List returns leads matching the filter with pagination metadata.
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	start := time.Now()
	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
	}
	s.observeQuery("list_leads", start)
	if leads == nil {
		leads = []models.Lead{}
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}
	return leads, pagination, nil
}

// Get returns a single lead by id.
func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	return lead, nil
}

// UpdateStatus advances a lead's pipeline status. Transitions are forward
// only: re-applying the current status succeeds, regressing from CONTACTED
// back to NEW is rejected. The mirror status cell is updated best-effort when
// the lead carries a row reference.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}

	if lead.Status == models.LeadStatusContacted && req.Status == models.LeadStatusNew {
		return nil, appErrors.Clone(appErrors.ErrConflict, "lead status cannot move back to NEW")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lead status")
	}
	lead.Status = req.Status

	if lead.SheetRowID != nil && s.mirror.Active() {
		err := s.mirror.UpdateStatusCell(ctx, *lead.SheetRowID, lead.Status)
		s.observeMirror("update_status", err)
		if err != nil {
			s.logger.Warn("sheet mirror status update failed",
				zap.String("lead_id", lead.ID),
				zap.String("row_ref", *lead.SheetRowID),
				zap.Error(err))
		}
	}

	return lead, nil
}

// Export renders all leads matching the filter as CSV or PDF.
func (s *LeadService) Export(ctx context.Context, filter models.LeadFilter, format string) ([]byte, string, error) {
	filter.Page = 1
	filter.Limit = 100

	var all []models.Lead
	for {
		start := time.Now()
		leads, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect leads for export")
		}
		s.observeQuery("export_leads", start)
		all = append(all, leads...)
		if len(all) >= total || len(leads) == 0 {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Name", "Email", "Phone", "Course", "College", "Year", "Status", "Created At"},
	}
	for _, lead := range all {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":         lead.ID,
			"Name":       lead.Name,
			"Email":      lead.Email,
			"Phone":      lead.Phone,
			"Course":     lead.Course,
			"College":    lead.College,
			"Year":       lead.Year,
			"Status":     string(lead.Status),
			"Created At": lead.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	switch format {
	case "pdf":
		data, err := s.pdf.Render(dataset, "Enrollment Leads")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return data, "application/pdf", nil
	case "", "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return data, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *LeadService) observeMirror(operation string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveMirrorSync(operation, err)
	}
}

func (s *LeadService) observeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}
