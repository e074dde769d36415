package spreadsheet

import "sheet2form/internal/remote"

// Compile-time checks that implementations satisfy their interfaces.
var (
	_ Loader    = (*FileLoader)(nil)
	_ Loader    = (*RemoteLoader)(nil)
	_ Loader    = (*GoogleSheetLoader)(nil)
	_ SheetsAPI = (*SheetsClient)(nil)
	_ Fetcher   = (*remote.SSHFetcher)(nil)
)
