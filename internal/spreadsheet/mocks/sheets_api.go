package mocks

import (
	"context"
	"sync"

	"sheet2form/internal/remote"
)

// MockSheetsAPI is a test double for spreadsheet.SheetsAPI
type MockSheetsAPI struct {
	mu sync.Mutex

	// Responses to return
	ReadSheetResponse [][]interface{}

	// Errors to return, one per call; calls past the end succeed
	ReadSheetErrors []error

	// Call tracking
	ReadSheetCalls      int
	ReadSheetCalledWith []string
}

// ReadSheet returns the next scripted error or the configured response
func (m *MockSheetsAPI) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadSheetCalls++
	m.ReadSheetCalledWith = []string{spreadsheetID, range_}
	if m.ReadSheetCalls <= len(m.ReadSheetErrors) {
		if err := m.ReadSheetErrors[m.ReadSheetCalls-1]; err != nil {
			return nil, err
		}
	}
	return m.ReadSheetResponse, nil
}

// MockFetcher is a test double for spreadsheet.Fetcher
type MockFetcher struct {
	// Responses to return
	Data []byte

	// Errors to return
	FetchError error

	// Call tracking
	FetchCalls      int
	FetchCalledWith remote.Target
}

// Fetch returns the configured data
func (m *MockFetcher) Fetch(ctx context.Context, target remote.Target) ([]byte, error) {
	m.FetchCalls++
	m.FetchCalledWith = target
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.Data, nil
}
