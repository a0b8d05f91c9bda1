package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-leads-api/internal/models"
	"github.com/noah-isme/enroll-leads-api/internal/repository"
	appErrors "github.com/noah-isme/enroll-leads-api/pkg/errors"
)

type mockLeadRepo struct {
	leads      map[string]*models.Lead
	byEmail    map[string]*models.Lead
	listItems  []models.Lead
	listTotal  int
	lastFilter models.LeadFilter
	listCalls  int

	createErr   error
	createCalls int
	sheetRows   map[string]string
}

func newMockLeadRepo() *mockLeadRepo {
	return &mockLeadRepo{
		leads:     map[string]*models.Lead{},
		byEmail:   map[string]*models.Lead{},
		sheetRows: map[string]string{},
	}
}

func (m *mockLeadRepo) Create(ctx context.Context, lead *models.Lead) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if lead.ID == "" {
		lead.ID = "lead-1"
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	m.leads[lead.ID] = lead
	m.byEmail[lead.Email] = lead
	return nil
}

func (m *mockLeadRepo) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	if lead, ok := m.byEmail[email]; ok {
		return lead, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLeadRepo) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	if lead, ok := m.leads[id]; ok {
		copied := *lead
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLeadRepo) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	lead, ok := m.leads[id]
	if !ok {
		return sql.ErrNoRows
	}
	lead.Status = status
	return nil
}

func (m *mockLeadRepo) SetSheetRowID(ctx context.Context, id, rowID string) error {
	m.sheetRows[id] = rowID
	return nil
}

func (m *mockLeadRepo) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error) {
	m.listCalls++
	m.lastFilter = filter
	return m.listItems, m.listTotal, nil
}

type mockMirror struct {
	active    bool
	appendRef string
	appendErr error
	updateErr error

	appendCalls int
	updateCalls int
	lastRowRef  string
	lastStatus  models.LeadStatus
}

func (m *mockMirror) Append(ctx context.Context, lead *models.Lead) (string, error) {
	m.appendCalls++
	return m.appendRef, m.appendErr
}

func (m *mockMirror) UpdateStatusCell(ctx context.Context, rowRef string, status models.LeadStatus) error {
	m.updateCalls++
	m.lastRowRef = rowRef
	m.lastStatus = status
	return m.updateErr
}

func (m *mockMirror) Active() bool { return m.active }

type mockMetrics struct {
	mirrorSyncs map[string]int
	queryObs    map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{mirrorSyncs: map[string]int{}, queryObs: map[string]int{}}
}

func (m *mockMetrics) ObserveMirrorSync(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.mirrorSyncs[operation+":"+outcome]++
}

func (m *mockMetrics) ObserveDBQuery(query string, duration time.Duration) {
	m.queryObs[query]++
}

func validSubmission() CreateLeadRequest {
	return CreateLeadRequest{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "9876543210",
		Course:  "Web Development",
		College: "MIT",
		Year:    "2nd Year",
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestLeadServiceSubmit(t *testing.T) {
	repo := newMockLeadRepo()
	mirror := &mockMirror{}
	svc := NewLeadService(repo, mirror, nil, nil, nil)

	lead, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Nil(t, lead.SheetRowID)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, 0, mirror.appendCalls, "inactive mirror must not be invoked")
}

func TestLeadServiceSubmitNormalisesEmail(t *testing.T) {
	repo := newMockLeadRepo()
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	req := validSubmission()
	req.Email = "  Jane@Example.COM "
	lead, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", lead.Email)
}

func TestLeadServiceSubmitDuplicateEmail(t *testing.T) {
	repo := newMockLeadRepo()
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	req := validSubmission()
	req.Name = "Someone Else"
	_, err = svc.Submit(context.Background(), req)
	assertAppErrorCode(t, err, appErrors.ErrConflict.Code)
	assert.Equal(t, 1, repo.createCalls, "duplicate must not reach the insert")
}

func TestLeadServiceSubmitDuplicateRace(t *testing.T) {
	repo := newMockLeadRepo()
	repo.createErr = repository.ErrDuplicateEmail
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), validSubmission())
	assertAppErrorCode(t, err, appErrors.ErrConflict.Code)
}

func TestLeadServiceSubmitInvalidPayload(t *testing.T) {
	repo := newMockLeadRepo()
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	req := validSubmission()
	req.Email = "not-an-email"
	_, err := svc.Submit(context.Background(), req)
	assertAppErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, 0, repo.createCalls)
}

func TestLeadServiceSubmitMirrorBackfill(t *testing.T) {
	repo := newMockLeadRepo()
	mirror := &mockMirror{active: true, appendRef: "5"}
	svc := NewLeadService(repo, mirror, nil, nil, nil)

	lead, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	require.NotNil(t, lead.SheetRowID)
	assert.Equal(t, "5", *lead.SheetRowID)
	assert.Equal(t, "5", repo.sheetRows[lead.ID])
}

func TestLeadServiceSubmitMirrorFailureStillSucceeds(t *testing.T) {
	repo := newMockLeadRepo()
	mirror := &mockMirror{active: true, appendErr: errors.New("sheets unavailable")}
	svc := NewLeadService(repo, mirror, nil, nil, nil)

	lead, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Nil(t, lead.SheetRowID)
	assert.Equal(t, 1, mirror.appendCalls)
	assert.Equal(t, 1, repo.createCalls)
}

func TestLeadServiceListDefaults(t *testing.T) {
	repo := newMockLeadRepo()
	repo.listTotal = 25
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	leads, pagination, err := svc.List(context.Background(), models.LeadFilter{})
	require.NoError(t, err)
	assert.NotNil(t, leads, "nil result set must surface as empty slice")
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 10, pagination.Limit)
	assert.Equal(t, 25, pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestLeadServiceListClampsBounds(t *testing.T) {
	repo := newMockLeadRepo()
	repo.listTotal = 150
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	_, pagination, err := svc.List(context.Background(), models.LeadFilter{Page: -3, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 100, repo.lastFilter.Limit)
	assert.Equal(t, 2, pagination.TotalPages)
}

func TestLeadServiceGetNotFound(t *testing.T) {
	svc := NewLeadService(newMockLeadRepo(), &mockMirror{}, nil, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assertAppErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestLeadServiceUpdateStatus(t *testing.T) {
	repo := newMockLeadRepo()
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	created, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), created.ID, UpdateStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)
}

func TestLeadServiceUpdateStatusNotFound(t *testing.T) {
	svc := NewLeadService(newMockLeadRepo(), &mockMirror{}, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "missing", UpdateStatusRequest{Status: models.LeadStatusContacted})
	assertAppErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestLeadServiceUpdateStatusRejectsRegression(t *testing.T) {
	repo := newMockLeadRepo()
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	created, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), created.ID, UpdateStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), created.ID, UpdateStatusRequest{Status: models.LeadStatusNew})
	assertAppErrorCode(t, err, appErrors.ErrConflict.Code)
}

func TestLeadServiceUpdateStatusIdempotent(t *testing.T) {
	repo := newMockLeadRepo()
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	created, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		updated, err := svc.UpdateStatus(context.Background(), created.ID, UpdateStatusRequest{Status: models.LeadStatusContacted})
		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusContacted, updated.Status)
	}
}

func TestLeadServiceUpdateStatusSkipsMirrorWithoutRowRef(t *testing.T) {
	repo := newMockLeadRepo()
	mirror := &mockMirror{active: true, appendErr: errors.New("sheets unavailable")}
	svc := NewLeadService(repo, mirror, nil, nil, nil)

	created, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	require.Nil(t, created.SheetRowID)

	_, err = svc.UpdateStatus(context.Background(), created.ID, UpdateStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	assert.Equal(t, 0, mirror.updateCalls, "mirror update needs a row reference")
}

func TestLeadServiceUpdateStatusMirrorsCell(t *testing.T) {
	repo := newMockLeadRepo()
	mirror := &mockMirror{active: true, appendRef: "7"}
	svc := NewLeadService(repo, mirror, nil, nil, nil)

	created, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	require.NotNil(t, created.SheetRowID)

	_, err = svc.UpdateStatus(context.Background(), created.ID, UpdateStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	assert.Equal(t, 1, mirror.updateCalls)
	assert.Equal(t, "7", mirror.lastRowRef)
	assert.Equal(t, models.LeadStatusContacted, mirror.lastStatus)
}

func TestLeadServiceUpdateStatusMirrorFailureStillSucceeds(t *testing.T) {
	repo := newMockLeadRepo()
	mirror := &mockMirror{active: true, appendRef: "7", updateErr: errors.New("sheets unavailable")}
	svc := NewLeadService(repo, mirror, nil, nil, nil)

	created, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), created.ID, UpdateStatusRequest{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)
}

func TestLeadServiceRecordsQueryTimings(t *testing.T) {
	repo := newMockLeadRepo()
	metrics := newMockMetrics()
	svc := NewLeadService(repo, &mockMirror{active: true, appendErr: errors.New("sheets unavailable")}, nil, nil, metrics)

	_, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), models.LeadFilter{})
	require.NoError(t, err)
	_, _, err = svc.Export(context.Background(), models.LeadFilter{}, "csv")
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.queryObs["create_lead"])
	assert.Equal(t, 1, metrics.queryObs["list_leads"])
	assert.Equal(t, 1, metrics.queryObs["export_leads"])
	assert.Equal(t, 1, metrics.mirrorSyncs["append:failure"])
}

func TestLeadServiceExportCSV(t *testing.T) {
	repo := newMockLeadRepo()
	repo.listItems = []models.Lead{
		{ID: "lead-1", Name: "Jane Doe", Email: "jane@example.com", Phone: "9876543210", Course: "Web Development", College: "MIT", Year: "2nd Year", Status: models.LeadStatusNew},
	}
	repo.listTotal = 1
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	data, contentType, err := svc.Export(context.Background(), models.LeadFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(data)
	assert.True(t, strings.HasPrefix(body, "ID,Name,Email"))
	assert.Contains(t, body, "jane@example.com")
}

func TestLeadServiceExportPDF(t *testing.T) {
	repo := newMockLeadRepo()
	repo.listItems = []models.Lead{
		{ID: "lead-1", Name: "Jane Doe", Email: "jane@example.com", Status: models.LeadStatusNew},
	}
	repo.listTotal = 1
	svc := NewLeadService(repo, &mockMirror{}, nil, nil, nil)

	data, contentType, err := svc.Export(context.Background(), models.LeadFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestLeadServiceExportUnknownFormat(t *testing.T) {
	svc := NewLeadService(newMockLeadRepo(), &mockMirror{}, nil, nil, nil)

	_, _, err := svc.Export(context.Background(), models.LeadFilter{}, "xlsx")
	assertAppErrorCode(t, err, appErrors.ErrValidation.Code)
}
