package spreadsheet

import (
	"context"
	"fmt"
	"strings"

	"sheet2form/internal/app"
	"sheet2form/internal/remote"
)

// GoogleSheetPrefix marks a Google Sheets source: gsheet:<spreadsheetID>[!<A1 range>].
const GoogleSheetPrefix = "gsheet:"

// SourceKind is where a spreadsheet is read from.
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceGoogle
	SourceSSH
)

func (k SourceKind) String() string {
	switch k {
	case SourceGoogle:
		return "google"
	case SourceSSH:
		return "ssh"
	default:
		return "local"
	}
}

// Source is a parsed spreadsheet location.
type Source struct {
	Kind SourceKind

	// SourceLocal
	Path string

	// SourceGoogle
	SpreadsheetID string
	Range         string

	// SourceSSH
	Target remote.Target
}

// ParseSource classifies a spreadsheet location string.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Source{}, fmt.Errorf("spreadsheet source is empty")
	}

	if rest, ok := strings.CutPrefix(s, GoogleSheetPrefix); ok {
		id, readRange, _ := strings.Cut(rest, "!")
		if id == "" {
			return Source{}, fmt.Errorf("invalid Google Sheets source %q: missing spreadsheet ID", s)
		}
		return Source{Kind: SourceGoogle, SpreadsheetID: id, Range: readRange}, nil
	}

	if remote.LooksRemote(s) {
		target, err := remote.ParseTarget(s)
		if err != nil {
			return Source{}, err
		}
		return Source{Kind: SourceSSH, Target: target}, nil
	}

	return Source{Kind: SourceLocal, Path: s}, nil
}

// Open returns the loader for source, configured from cfg.
func Open(ctx context.Context, source string, cfg *app.Config) (Loader, error) {
	parsed, err := ParseSource(source)
	if err != nil {
		return nil, &ReadError{Source: source, Err: err}
	}

	switch parsed.Kind {
	case SourceGoogle:
		client, err := NewSheetsClient(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, &ReadError{Source: source, Err: err}
		}
		return NewGoogleSheetLoader(client, parsed.SpreadsheetID, parsed.Range), nil
	case SourceSSH:
		return &RemoteLoader{
			Fetcher: remote.NewSSHFetcher(cfg.SSHKeyFile, cfg.SSHKnownHosts),
			Target:  parsed.Target,
		}, nil
	default:
		return &FileLoader{Path: parsed.Path}, nil
	}
}

// Load opens source and reads it.
func Load(ctx context.Context, source string, cfg *app.Config) (*Sheet, error) {
	loader, err := Open(ctx, source, cfg)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}
