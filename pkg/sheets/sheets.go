package sheets

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/noah-isme/enroll-leads-api/internal/models"
	"github.com/noah-isme/enroll-leads-api/pkg/config"
)

// statusColumn is where the lead status lives in the mirrored row
// (column 8 of [id name email phone course college year status createdAt]).
const statusColumn = "H"

var rowNumberPattern = regexp.MustCompile(`(\d+)$`)

// Mirror copies lead data one-way into an external spreadsheet. All
// operations are best-effort from the caller's perspective: the lead store
// remains the source of truth and a failed mirror write is never retried.
type Mirror interface {
	// Append writes one row for the lead and returns an opaque row
	// reference, or "" when the placement cannot be determined.
	Append(ctx context.Context, lead *models.Lead) (string, error)
	// UpdateStatusCell overwrites the status column of a previously
	// appended row.
	UpdateStatusCell(ctx context.Context, rowRef string, status models.LeadStatus) error
	// Active reports whether the mirror is configured.
	Active() bool
}

// New selects the mirror implementation at construction time: a live Sheets
// client when credentials are configured, otherwise a documented no-op.
func New(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Mirror, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ClientEmail == "" || cfg.PrivateKey == "" || cfg.SpreadsheetID == "" {
		logger.Warn("sheets mirror not configured, mirroring disabled")
		return &noopMirror{}, nil
	}

	conf := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

// Client mirrors leads into a Google spreadsheet.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
	logger        *zap.Logger
}

// Active always reports true for a live client.
func (c *Client) Active() bool { return true }

// Append adds one row with all lead fields in fixed column order and returns
// the sheet row number parsed from the updated range.
func (c *Client) Append(ctx context.Context, lead *models.Lead) (string, error) {
	values := &gsheets.ValueRange{
		Values: [][]interface{}{{
			lead.ID,
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Course,
			lead.College,
			lead.Year,
			string(lead.Status),
			lead.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}},
	}

	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, fmt.Sprintf("%s!A:I", c.sheetName), values).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append lead row: %w", err)
	}

	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return "", nil
	}

	// The updated range looks like "Sheet1!A5:I5"; the trailing number is
	// the row reference.
	if match := rowNumberPattern.FindString(resp.Updates.UpdatedRange); match != "" {
		return match, nil
	}
	return "", nil
}

// UpdateStatusCell overwrites the status cell of the row identified by rowRef.
func (c *Client) UpdateStatusCell(ctx context.Context, rowRef string, status models.LeadStatus) error {
	values := &gsheets.ValueRange{Values: [][]interface{}{{string(status)}}}

	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, fmt.Sprintf("%s!%s%s", c.sheetName, statusColumn, rowRef), values).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update status cell: %w", err)
	}
	return nil
}

// noopMirror is selected when the sheets integration is unconfigured.
type noopMirror struct{}

func (n *noopMirror) Active() bool { return false }

func (n *noopMirror) Append(ctx context.Context, lead *models.Lead) (string, error) {
	return "", nil
}

func (n *noopMirror) UpdateStatusCell(ctx context.Context, rowRef string, status models.LeadStatus) error {
	return nil
}
