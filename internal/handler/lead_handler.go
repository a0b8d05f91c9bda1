package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-leads-api/internal/models"
	"github.com/noah-isme/enroll-leads-api/internal/service"
	appErrors "github.com/noah-isme/enroll-leads-api/pkg/errors"
	"github.com/noah-isme/enroll-leads-api/pkg/response"
)

type leadService interface {
	Submit(ctx context.Context, req service.CreateLeadRequest) (*models.Lead, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id string, req service.UpdateStatusRequest) (*models.Lead, error)
	Export(ctx context.Context, filter models.LeadFilter, format string) ([]byte, string, error)
}

// LeadHandler exposes lead endpoints.
type LeadHandler struct {
	leads leadService
}

// NewLeadHandler constructs LeadHandler.
func NewLeadHandler(leads leadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// Create godoc
// @Summary Submit an enrollment lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body service.CreateLeadRequest true "Lead payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lead, err := h.leads.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lead)
}

// List godoc
// @Summary List leads
// @Tags Leads
// @Produce json
// @Param search query string false "Substring match on name or email"
// @Param course query string false "Exact course filter"
// @Param status query string false "Status filter (NEW or CONTACTED)"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	filter, err := parseLeadFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	leads, pagination, err := h.leads.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leads, pagination)
}

// Get godoc
// @Summary Get a lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// UpdateStatus godoc
// @Summary Update lead status
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payload body service.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lead, err := h.leads.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// Export godoc
// @Summary Export leads as CSV or PDF
// @Tags Leads
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Substring match on name or email"
// @Param course query string false "Exact course filter"
// @Param status query string false "Status filter (NEW or CONTACTED)"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /leads/export [get]
func (h *LeadHandler) Export(c *gin.Context) {
	filter, err := parseLeadFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	data, contentType, err := h.leads.Export(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "csv"
	if format == "pdf" {
		ext = "pdf"
	}
	filename := fmt.Sprintf("leads-%s.%s", time.Now().UTC().Format("20060102-150405"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func parseLeadFilter(c *gin.Context) (models.LeadFilter, error) {
	var filter models.LeadFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Course = strings.TrimSpace(c.Query("course"))

	if status := c.Query("status"); status != "" {
		s := models.LeadStatus(strings.ToUpper(status))
		if !s.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "status must be NEW or CONTACTED")
		}
		filter.Status = s
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.Limit = limit
	}

	return filter, nil
}
