package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"smartfinance/internal/core"
	"smartfinance/internal/log"
	ports "smartfinance/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const DefaultSheetName = "Transactions"

// Client mirrors transactions into one sheet of a spreadsheet. Column A holds
// the transaction id and is used to locate rows.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.TransactionMirror = (*Client)(nil)

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = DefaultSheetName
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// NewFromConfig builds a client authenticated with service account
// credentials taken from the environment.
func NewFromConfig(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID, strings.TrimSpace(sheetName)), nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountCredentials(ctx)
	if err != nil {
		return nil, err
	}
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	log.ForComponent(log.ComponentSheets).InfoContext(ctx, "Google Sheets service created", "scope", gsheet.SpreadsheetsScope)
	return service, nil
}

func serviceAccountCredentials(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		log.ForComponent(log.ComponentSheets).DebugContext(ctx, "Using inline JSON credentials", "json_length", len(serviceAccountJSON))
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		log.ForComponent(log.ComponentSheets).DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Upsert writes the transaction into the row already holding its id, or
// after the last used row. An empty sheet gets the header row first.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID <= 0 {
		return "", fmt.Errorf("%w: transaction id is required", core.ErrValidation)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	ids, err := c.readIDs(ctx)
	if err != nil {
		return "", err
	}

	values := [][]any{ports.Row(t)}
	row := findRow(ids, t.ID)
	first := row
	if row == 0 {
		row = len(ids) + 1
		first = row
		if len(ids) == 0 {
			header := make([]any, len(ports.Header))
			for i, h := range ports.Header {
				header[i] = h
			}
			values = append([][]any{header}, values...)
			first, row = 1, 2
		}
	}

	rng := c.a1(fmt.Sprintf("A%d:G%d", first, row))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return c.a1(fmt.Sprintf("A%d:G%d", row, row)), nil
}

// Delete clears the row holding id. Rows below are not shifted.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row == 0 {
		return nil
	}
	rng := c.a1(fmt.Sprintf("A%d:G%d", row, row))
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", rng, err)
	}
	return nil
}

func (c *Client) readIDs(ctx context.Context) ([]string, error) {
	rng := c.a1("A:A")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return firstColumn(resp.Values), nil
}

// a1 qualifies a range with the quoted sheet name.
func (c *Client) a1(rng string) string {
	return "'" + strings.ReplaceAll(c.sheetName, "'", "''") + "'!" + rng
}

func firstColumn(values [][]any) []string {
	out := make([]string, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
	}
	return out
}

// findRow returns the 1-based row whose first cell equals id, or 0.
func findRow(ids []string, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, v := range ids {
		if v == want {
			return i + 1
		}
	}
	return 0
}
