package config

import (
	"testing"
	"time"
)

func TestRetryConfigBackoff(t *testing.T) {
	config := RetryConfig{
		MaxAttempts: 5,
		InitialWait: 1 * time.Second,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}

	tests := []struct {
		retry    int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{10, 5 * time.Second},
	}

	for _, tt := range tests {
		if got := config.Backoff(tt.retry); got != tt.expected {
			t.Errorf("Backoff(%d) = %v, expected %v", tt.retry, got, tt.expected)
		}
	}
}

func TestDefaultResilienceConfig(t *testing.T) {
	if DefaultResilienceConfig.SheetRead.MaxAttempts != 3 {
		t.Errorf("Expected default SheetRead MaxAttempts 3, got %d", DefaultResilienceConfig.SheetRead.MaxAttempts)
	}

	if DefaultResilienceConfig.SheetRead.InitialWait != 500*time.Millisecond {
		t.Errorf("Expected default SheetRead InitialWait 500ms, got %v", DefaultResilienceConfig.SheetRead.InitialWait)
	}

	if DefaultResilienceConfig.RemoteFetch.MaxAttempts != 3 {
		t.Errorf("Expected default RemoteFetch MaxAttempts 3, got %d", DefaultResilienceConfig.RemoteFetch.MaxAttempts)
	}

	if DefaultResilienceConfig.RemoteFetch.Timeout != 30*time.Second {
		t.Errorf("Expected default RemoteFetch Timeout 30s, got %v", DefaultResilienceConfig.RemoteFetch.Timeout)
	}
}

func TestSettlePauses(t *testing.T) {
	if FieldInputSettle >= SubmitClickSettle {
		t.Errorf("Expected field settle %v to be shorter than submit settle %v", FieldInputSettle, SubmitClickSettle)
	}
	if PageLoadSettle <= 0 {
		t.Errorf("Expected positive page load settle, got %v", PageLoadSettle)
	}
}
