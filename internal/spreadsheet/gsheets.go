package spreadsheet

import (
	"context"
	"fmt"
	"time"

	"sheet2form/internal/config"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetRange covers the first worksheet when a source names no range.
const DefaultSheetRange = "A1:ZZ"

// SheetsAPI reads cell values from Google Sheets.
//
// Values arrive as [][]interface{} because that is what the Google API returns.
// Wrap them with NewCell() before use.
type SheetsAPI interface {
	ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error)
}

// SheetsClient implements SheetsAPI using the Google Sheets API.
type SheetsClient struct {
	service *sheets.Service
}

// NewSheetsClient creates a Google Sheets client with the provided credentials.
func NewSheetsClient(ctx context.Context, credentialsFile string) (*SheetsClient, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsClient{service: service}, nil
}

// ReadSheet reads the formatted values of range_, exactly as the sheet displays them.
func (c *SheetsClient) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, range_).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	return resp.Values, nil
}

// GoogleSheetLoader reads one range of a Google spreadsheet.
type GoogleSheetLoader struct {
	api           SheetsAPI
	spreadsheetID string
	readRange     string
	retry         config.RetryConfig
}

// NewGoogleSheetLoader creates a loader. An empty readRange reads DefaultSheetRange.
func NewGoogleSheetLoader(api SheetsAPI, spreadsheetID, readRange string) *GoogleSheetLoader {
	if readRange == "" {
		readRange = DefaultSheetRange
	}
	return &GoogleSheetLoader{
		api:           api,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		retry:         config.DefaultResilienceConfig.SheetRead,
	}
}

func (l *GoogleSheetLoader) source() string {
	return fmt.Sprintf("gsheet:%s!%s", l.spreadsheetID, l.readRange)
}

// Load reads the range, retrying transient API failures.
func (l *GoogleSheetLoader) Load(ctx context.Context) (*Sheet, error) {
	var lastErr error

	for attempt := 1; attempt <= l.retry.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, l.retry.Timeout)
		values, err := l.api.ReadSheet(attemptCtx, l.spreadsheetID, l.readRange)
		cancel()
		if err == nil {
			sheet, err := newSheet(toRecords(values))
			if err != nil {
				return nil, &ReadError{Source: l.source(), Err: err}
			}
			log.Debug().
				Str("spreadsheet_id", l.spreadsheetID).
				Str("range", l.readRange).
				Int("rows", sheet.TotalRows()).
				Int("attempt", attempt).
				Msg("Read Google sheet")
			return sheet, nil
		}
		lastErr = err

		if attempt == l.retry.MaxAttempts || ctx.Err() != nil {
			break
		}

		wait := l.retry.Backoff(attempt)
		log.Warn().
			Err(err).
			Str("spreadsheet_id", l.spreadsheetID).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Sheet read failed, retrying")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, &ReadError{Source: l.source(), Err: ctx.Err()}
		}
	}

	return nil, &ReadError{Source: l.source(), Err: lastErr}
}

func toRecords(values [][]interface{}) [][]string {
	records := make([][]string, len(values))
	for i, row := range values {
		record := make([]string, len(row))
		for j, raw := range row {
			record[j] = NewCell(raw).String()
		}
		records[i] = record
	}
	return records
}
