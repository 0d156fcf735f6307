package oracle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedOracle struct {
	errs  []error
	calls int
}

func (s *scriptedOracle) Name() string { return "scripted" }

func (s *scriptedOracle) Transform(ctx context.Context, raw string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok:" + raw, nil
}

var fastRetry = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    time.Millisecond,
	MaxDelay:        2 * time.Millisecond,
	BackoffMultiple: 2,
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindFatal},
		{"rate limit", &StatusError{Code: 429}, KindRetry},
		{"server error", fmt.Errorf("wrap: %w", &StatusError{Code: 502}), KindRetry},
		{"request timeout", &StatusError{Code: 408}, KindRetry},
		{"bad request", &StatusError{Code: 400}, KindFatal},
		{"unauthorized", &StatusError{Code: 401}, KindFatal},
		{"canceled", context.Canceled, KindFatal},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindFatal},
		{"empty", ErrEmptyResponse, KindFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestCallWithRetry_RecoversFromTransient(t *testing.T) {
	o := &scriptedOracle{errs: []error{&StatusError{Code: 503}, &StatusError{Code: 429}}}
	out, err := CallWithRetry(context.Background(), o, "x", fastRetry)
	require.NoError(t, err)
	assert.Equal(t, "ok:x", out)
	assert.Equal(t, 3, o.calls)
}

func TestCallWithRetry_StopsOnFatal(t *testing.T) {
	o := &scriptedOracle{errs: []error{&StatusError{Code: 400}}}
	_, err := CallWithRetry(context.Background(), o, "x", fastRetry)
	require.Error(t, err)
	assert.Equal(t, 1, o.calls)
}

func TestCallWithRetry_GivesUp(t *testing.T) {
	transient := &StatusError{Code: 500}
	o := &scriptedOracle{errs: []error{transient, transient, transient, transient}}
	_, err := CallWithRetry(context.Background(), o, "x", fastRetry)
	require.Error(t, err)
	assert.Equal(t, 3, o.calls)

	var se *StatusError
	assert.True(t, errors.As(err, &se))
}

func TestWithRetry_KeepsName(t *testing.T) {
	o := WithRetry(&scriptedOracle{}, fastRetry)
	assert.Equal(t, "scripted", o.Name())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffMultiple: 2}
	assert.Equal(t, time.Second, calculateBackoff(0, cfg))
	assert.Equal(t, 4*time.Second, calculateBackoff(2, cfg))
	assert.Equal(t, 5*time.Second, calculateBackoff(5, cfg))
}
