package spreadsheet

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"sheet2form/internal/app"
	"sheet2form/internal/config"
	"sheet2form/internal/spreadsheet/mocks"
)

func newTestGoogleLoader(api SheetsAPI, readRange string) *GoogleSheetLoader {
	l := NewGoogleSheetLoader(api, "sheet-123", readRange)
	l.retry = config.RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
		Timeout:     time.Second,
	}
	return l
}

func TestGoogleSheetLoader(t *testing.T) {
	api := &mocks.MockSheetsAPI{
		ReadSheetResponse: [][]interface{}{
			{"Name", "Score", "Active"},
			{"Alice", "42%", "TRUE"},
			{"Bob"},
			{float64(3), float64(0.5), true},
			{nil, "", "x"},
		},
	}

	sheet, err := newTestGoogleLoader(api, "").Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(api.ReadSheetCalledWith, []string{"sheet-123", DefaultSheetRange}) {
		t.Errorf("Unexpected read arguments %v", api.ReadSheetCalledWith)
	}

	expected := []app.Row{
		{"Alice", "42%", "TRUE"},
		{"Bob", "", ""},
		{"3", "0.5", "true"},
		{"", "", "x"},
	}
	if !reflect.DeepEqual(sheet.Rows, expected) {
		t.Errorf("Expected %q, got %q", expected, sheet.Rows)
	}
	if !reflect.DeepEqual(sheet.Headers, []string{"Name", "Score", "Active"}) {
		t.Errorf("Unexpected headers %v", sheet.Headers)
	}
}

func TestGoogleSheetLoaderRetry(t *testing.T) {
	transient := errors.New("503 backend error")

	tests := []struct {
		name          string
		errors        []error
		expectError   bool
		expectedCalls int
	}{
		{"first attempt succeeds", nil, false, 1},
		{"recovers on third attempt", []error{transient, transient}, false, 3},
		{"gives up after max attempts", []error{transient, transient, transient}, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockSheetsAPI{
				ReadSheetResponse: [][]interface{}{{"Name"}, {"Alice"}},
				ReadSheetErrors:   tt.errors,
			}

			sheet, err := newTestGoogleLoader(api, "Form!A1:D").Load(context.Background())

			if api.ReadSheetCalls != tt.expectedCalls {
				t.Errorf("Expected %d calls, got %d", tt.expectedCalls, api.ReadSheetCalls)
			}
			if tt.expectError {
				var readErr *ReadError
				if !errors.As(err, &readErr) || !errors.Is(err, transient) {
					t.Fatalf("Expected ReadError wrapping the API error, got %v", err)
				}
				if readErr.Source != "gsheet:sheet-123!Form!A1:D" {
					t.Errorf("Unexpected source %q", readErr.Source)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if sheet.TotalRows() != 1 {
				t.Errorf("Expected 1 row, got %d", sheet.TotalRows())
			}
		})
	}
}

func TestGoogleSheetLoaderEmpty(t *testing.T) {
	_, err := newTestGoogleLoader(&mocks.MockSheetsAPI{}, "").Load(context.Background())
	if !errors.Is(err, ErrEmptySheet) {
		t.Errorf("Expected ErrEmptySheet, got %v", err)
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		raw      interface{}
		expected string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(42), "42"},
		{float64(0.25), "0.25"},
		{true, "true"},
		{int64(7), "7"},
	}

	for _, tt := range tests {
		cell := NewCell(tt.raw)
		if got := cell.String(); got != tt.expected {
			t.Errorf("NewCell(%v).String() = %q, expected %q", tt.raw, got, tt.expected)
		}
		if cell.IsEmpty() != (tt.expected == "") {
			t.Errorf("NewCell(%v).IsEmpty() = %v", tt.raw, cell.IsEmpty())
		}
	}
}
