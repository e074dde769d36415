package submission

// Compile-time interface compliance checks
var (
	_ RowSubmitter = (*Submitter)(nil)
	_ EventSink    = (*EventQueue)(nil)
)
