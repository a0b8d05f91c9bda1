package models

import "time"

// LeadStatus enumerates the lead pipeline states.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
)

// Valid reports whether the status is one of the known values.
func (s LeadStatus) Valid() bool {
	return s == LeadStatusNew || s == LeadStatusContacted
}

// Lead represents a prospective-student enrollment inquiry.
type Lead struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Phone      string     `db:"phone" json:"phone"`
	Course     string     `db:"course" json:"course"`
	College    string     `db:"college" json:"college"`
	Year       string     `db:"year" json:"year"`
	Status     LeadStatus `db:"status" json:"status"`
	SheetRowID *string    `db:"sheet_row_id" json:"sheetRowId"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// LeadFilter captures the filtering and pagination criteria for listing leads.
// Absent fields impose no constraint.
type LeadFilter struct {
	Search string
	Course string
	Status LeadStatus
	Page   int
	Limit  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
