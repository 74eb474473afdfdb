package tlunit

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastRetry(retries int) RetryConfig {
	return RetryConfig{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestWithRetry(t *testing.T) {
	transient := &ProviderError{Message: "rate limited", Retryable: true}
	fatal := &ProviderError{Message: "invalid API key"}

	tests := []struct {
		name      string
		failures  []error // returned by successive calls, then success
		retries   int
		wantCalls int
		wantErr   error
	}{
		{"first try", nil, 3, 1, nil},
		{"recovers", []error{transient, transient}, 3, 3, nil},
		{"count mismatch is retried", []error{&CountMismatchError{Expected: 2, Got: 1}}, 3, 2, nil},
		{"non-retryable stops", []error{fatal, transient}, 3, 1, fatal},
		{"attempts used up", []error{transient, transient, transient}, 2, 3, transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := WithRetry(context.Background(), fastRetry(tt.retries), func() (string, error) {
				calls++
				if calls <= len(tt.failures) {
					return "", tt.failures[calls-1]
				}
				return "ok", nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != "ok" {
				t.Errorf("got %q, %v", got, err)
			}
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(ctx, cfg, func() (int, error) {
		return 0, &ProviderError{Message: "overloaded", Retryable: true}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := DefaultRetryConfig()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{5, 30 * time.Second}, // capped
		{80, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := cfg.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"final provider error", &ProviderError{}, false},
		{"count mismatch", &CountMismatchError{Expected: 3, Got: 2}, true},
		{"plain error", errors.New("boom"), false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"wrapped canceled provider error", &ProviderError{Retryable: true, Cause: context.Canceled}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, &ProviderError{Message: "temporary failure", Retryable: true}
	}
	out := make([]string, len(req.Texts))
	for i, s := range req.Texts {
		out[i] = "<" + s + ">"
	}
	return out, nil
}

func TestRetryableProvider(t *testing.T) {
	inner := &flakyProvider{failures: 2}
	var logs bytes.Buffer

	p := NewRetryableProvider(inner, fastRetry(3)).WithLogger(zerolog.New(&logs))

	got, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Attack"}, TargetLang: "fr"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(got) != 1 || got[0] != "<Attack>" {
		t.Errorf("unexpected result %v", got)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
	if n := strings.Count(logs.String(), "translation attempt failed"); n != 2 {
		t.Errorf("expected two logged failures, got %d:\n%s", n, logs.String())
	}
}
