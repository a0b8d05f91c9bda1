package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/enroll-leads-api/internal/models"
)

// ErrDuplicateEmail signals a unique-constraint violation on the lead email.
var ErrDuplicateEmail = errors.New("lead email already exists")

const pqUniqueViolation = "23505"

// LeadRepository manages persistence for lead records.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs a LeadRepository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead. The database unique constraint on email is the
// authoritative duplicate check; a violation surfaces as ErrDuplicateEmail
// even when two inserts race.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO leads (id, name, email, phone, course, college, year, status, sheet_row_id, created_at)
        VALUES (:id, :name, :email, :phone, :course, :college, :year, :status, :sheet_row_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lead); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// FindByEmail returns the lead with the given email or sql.ErrNoRows.
func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	const query = `SELECT id, name, email, phone, course, college, year, status, sheet_row_id, created_at FROM leads WHERE email = $1 LIMIT 1`
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lead by email: %w", err)
	}
	return &lead, nil
}

// FindByID returns the lead with the given id or sql.ErrNoRows.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	const query = `SELECT id, name, email, phone, course, college, year, status, sheet_row_id, created_at FROM leads WHERE id = $1 LIMIT 1`
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lead by id: %w", err)
	}
	return &lead, nil
}

// UpdateStatus writes a new status for the lead. Returns sql.ErrNoRows when
// the id references nothing.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE leads SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetSheetRowID backfills the external row reference once. Rows that already
// carry a reference are left untouched.
func (r *LeadRepository) SetSheetRowID(ctx context.Context, id, rowID string) error {
	const query = `UPDATE leads SET sheet_row_id = $2 WHERE id = $1 AND sheet_row_id IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, rowID); err != nil {
		return fmt.Errorf("set sheet row id: %w", err)
	}
	return nil
}

// List returns leads matching the filter, newest first, with the total match
// count ignoring pagination.
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error) {
	baseQuery := "FROM leads WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(course) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Course))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf("SELECT id, name, email, phone, course, college, year, status, sheet_row_id, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, limit, offset)

	var leads []models.Lead
	if err := r.db.SelectContext(ctx, &leads, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	return leads, total, nil
}
