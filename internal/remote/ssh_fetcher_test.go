package remote

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sheet2form/internal/config"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Target
		expectError bool
	}{
		{
			name:     "absolute path",
			input:    "ops@files.example.com:/srv/data/book.xlsx",
			expected: Target{User: "ops", Host: "files.example.com", Path: "/srv/data/book.xlsx"},
		},
		{
			name:     "relative path",
			input:    "ops@10.0.0.5:book.xlsx",
			expected: Target{User: "ops", Host: "10.0.0.5", Path: "book.xlsx"},
		},
		{
			name:     "path with colon",
			input:    "ops@host:/data/a:b.xlsx",
			expected: Target{User: "ops", Host: "host", Path: "/data/a:b.xlsx"},
		},
		{name: "empty", input: "", expectError: true},
		{name: "missing user", input: "@host:/book.xlsx", expectError: true},
		{name: "missing path", input: "ops@host", expectError: true},
		{name: "empty path", input: "ops@host:", expectError: true},
		{name: "no at sign", input: "host:/book.xlsx", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ParseTarget(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %q, got %+v", tt.input, target)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if target != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, target)
			}
			if target.String() != tt.input {
				t.Errorf("Expected String() %q, got %q", tt.input, target.String())
			}
		})
	}
}

func TestLooksRemote(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"ops@host:/book.xlsx", true},
		{"ops@host:book.xlsx", true},
		{"./book.xlsx", false},
		{"/home/ops/book.xlsx", false},
		{"C:\\sheets\\book.xlsx", false},
		{"https://user@example.com/book.xlsx", false},
		{"reports/me@home.xlsx", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LooksRemote(tt.input); got != tt.expected {
				t.Errorf("LooksRemote(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/srv/book.xlsx", "'/srv/book.xlsx'"},
		{"/srv/my book.xlsx", "'/srv/my book.xlsx'"},
		{"/srv/it's.xlsx", `'/srv/it'\''s.xlsx'`},
	}

	for _, tt := range tests {
		if got := shellQuote(tt.input); got != tt.expected {
			t.Errorf("shellQuote(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestCatCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/srv/book.xlsx", "cat '/srv/book.xlsx'"},
		{"~/book.xlsx", "cat 'book.xlsx'"},
		{"~/shared/my book.xlsx", "cat 'shared/my book.xlsx'"},
		{"reports/book.xlsx", "cat 'reports/book.xlsx'"},
		{"/srv/~/book.xlsx", "cat '/srv/~/book.xlsx'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := catCommand(tt.input); got != tt.expected {
				t.Errorf("catCommand(%q) = %s, expected %s", tt.input, got, tt.expected)
			}
		})
	}
}

func testRetry() config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
		Timeout:     time.Second,
	}
}

func TestFetchRetries(t *testing.T) {
	target := Target{User: "ops", Host: "host", Path: "/book.xlsx"}

	t.Run("SucceedsAfterTransientFailures", func(t *testing.T) {
		f := NewSSHFetcher("unused", "")
		f.retry = testRetry()
		calls := 0
		f.fetchOnce = func(ctx context.Context, got Target) ([]byte, error) {
			calls++
			if got != target {
				t.Errorf("Expected target %v, got %v", target, got)
			}
			if calls < 3 {
				return nil, errors.New("connection reset")
			}
			return []byte("xlsx-bytes"), nil
		}

		data, err := f.Fetch(context.Background(), target)
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if string(data) != "xlsx-bytes" || calls != 3 {
			t.Errorf("Expected data after 3 calls, got %q after %d", data, calls)
		}
	})

	t.Run("GivesUpAfterMaxAttempts", func(t *testing.T) {
		f := NewSSHFetcher("unused", "")
		f.retry = testRetry()
		calls := 0
		cause := errors.New("permission denied")
		f.fetchOnce = func(ctx context.Context, got Target) ([]byte, error) {
			calls++
			return nil, cause
		}

		_, err := f.Fetch(context.Background(), target)
		if !errors.Is(err, cause) {
			t.Errorf("Expected wrapped cause, got %v", err)
		}
		if calls != 3 {
			t.Errorf("Expected 3 attempts, got %d", calls)
		}
		if !strings.Contains(err.Error(), target.String()) {
			t.Errorf("Expected target in error, got %v", err)
		}
	})

	t.Run("StopsWhenCancelled", func(t *testing.T) {
		f := NewSSHFetcher("unused", "")
		f.retry = testRetry()
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		f.fetchOnce = func(ctx context.Context, got Target) ([]byte, error) {
			calls++
			cancel()
			return nil, errors.New("timeout")
		}

		if _, err := f.Fetch(ctx, target); err == nil {
			t.Fatal("Expected error, got nil")
		}
		if calls != 1 {
			t.Errorf("Expected 1 attempt, got %d", calls)
		}
	})
}

func TestClientConfigErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("MissingKey", func(t *testing.T) {
		f := NewSSHFetcher(filepath.Join(dir, "missing.pem"), "")
		if _, err := f.clientConfig("ops"); err == nil || !strings.Contains(err.Error(), "failed to read SSH key file") {
			t.Errorf("Expected key read error, got %v", err)
		}
	})

	t.Run("InvalidKey", func(t *testing.T) {
		keyPath := filepath.Join(dir, "bad.pem")
		if err := os.WriteFile(keyPath, []byte("not a key"), 0o600); err != nil {
			t.Fatal(err)
		}
		f := NewSSHFetcher(keyPath, "")
		if _, err := f.clientConfig("ops"); err == nil || !strings.Contains(err.Error(), "failed to parse SSH private key") {
			t.Errorf("Expected key parse error, got %v", err)
		}
	})
}

func TestHostKeyCallback(t *testing.T) {
	dir := t.TempDir()

	t.Run("NotConfigured", func(t *testing.T) {
		callback, err := NewSSHFetcher("", "").hostKeyCallback()
		if err != nil || callback == nil {
			t.Errorf("Expected insecure callback, got %v", err)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		callback, err := NewSSHFetcher("", filepath.Join(dir, "known_hosts")).hostKeyCallback()
		if err != nil || callback == nil {
			t.Errorf("Expected insecure callback, got %v", err)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := filepath.Join(dir, "empty_known_hosts")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		callback, err := NewSSHFetcher("", path).hostKeyCallback()
		if err != nil || callback == nil {
			t.Errorf("Expected known_hosts callback, got %v", err)
		}
	})
}
