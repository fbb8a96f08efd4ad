// Package sheets talks straight to the backing spreadsheet, bypassing
// the web-app bridge. Each fiscal year lives on a sheet named after the
// year key, rows laid out as date, item, details, amount, payee, memo
// starting at row 2 (row 1 is the header). The sheet row index doubles
// as the record's row number, exactly like the bridge reports it.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/ledger"
)

const (
	dateLayout = "2006-01-02"
	firstRow   = 2 // data starts under the header row
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	year          string
	editable      bool

	sheetID      int64
	sheetIDKnown bool
}

var _ ledger.Service = (*Client)(nil)

// NewFromEnv creates a client for one fiscal year using service account
// credentials. Required: GOOGLE_SPREADSHEET_ID plus one of
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Direct spreadsheet access implies
// edit rights, so the snapshot is editable unless KAIKEI_READ_ONLY is
// set.
func NewFromEnv(ctx context.Context, year string) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		year:          year,
		editable:      strings.TrimSpace(os.Getenv("KAIKEI_READ_ONLY")) == "",
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) FetchAll(ctx context.Context) (ledger.Snapshot, error) {
	rng := fmt.Sprintf("%s!A%d:F", c.year, firstRow)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return ledger.Snapshot{}, &ledger.RemoteError{Message: fmt.Sprintf("read %s: %v", rng, err)}
	}

	records := make([]core.Record, 0, len(resp.Values))
	for i, row := range resp.Values {
		rec, ok := parseRow(row, int64(firstRow+i))
		if !ok {
			// Blank filler rows are common at the sheet tail.
			continue
		}
		records = append(records, rec)
	}
	slog.DebugContext(ctx, "spreadsheet read complete", "year", c.year, "records", len(records))
	return ledger.Snapshot{Records: records, Editable: c.editable}, nil
}

func (c *Client) Append(ctx context.Context, r core.Record) error {
	if err := r.ValidateNew(); err != nil {
		return &ledger.RemoteError{Message: err.Error()}
	}
	if !c.editable {
		return &ledger.RemoteError{Message: "編集権限がありません"}
	}
	vr := &gsheet.ValueRange{Values: [][]any{{
		r.Date.Format(dateLayout), r.Category, r.Details, r.Amount.String(), r.Payee, r.Memo,
	}}}
	rng := fmt.Sprintf("%s!A:F", c.year)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return &ledger.RemoteError{Message: fmt.Sprintf("append to %s: %v", rng, err)}
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, rowNum int64) error {
	if !c.editable {
		return &ledger.RemoteError{Message: "編集権限がありません"}
	}
	if rowNum < firstRow {
		return &ledger.RemoteError{Message: fmt.Sprintf("指定された行が見つかりません: %d", rowNum)}
	}
	sheetID, err := c.lookupSheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{
			Range: &gsheet.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: rowNum - 1, // API indexes rows from zero
				EndIndex:   rowNum,
			},
		},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return &ledger.RemoteError{Message: fmt.Sprintf("delete row %d: %v", rowNum, err)}
	}
	return nil
}

func (c *Client) lookupSheetID(ctx context.Context) (int64, error) {
	if c.sheetIDKnown {
		return c.sheetID, nil
	}
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, &ledger.RemoteError{Message: fmt.Sprintf("spreadsheet metadata: %v", err)}
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.year {
			c.sheetID = sh.Properties.SheetId
			c.sheetIDKnown = true
			return c.sheetID, nil
		}
	}
	return 0, &ledger.RemoteError{Message: fmt.Sprintf("年度シートが見つかりません: %s", c.year)}
}
