package apierr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/habedi/photofeed/pkg/apierr"
	"github.com/stretchr/testify/assert"
)

func TestError_MessageIncludesOpKindAndCause(t *testing.T) {
	err := apierr.New(apierr.DecodingFailure, "list photos", errors.New("unexpected EOF"))
	assert.Equal(t, "list photos: decoding_failure: unexpected EOF", err.Error())
}

func TestStatus_KeepsCodeAndBody(t *testing.T) {
	err := apierr.Status("like photo", 403, "forbidden")
	assert.Equal(t, apierr.TransportFailure, err.Kind)
	assert.Equal(t, 403, err.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 403")
	assert.Contains(t, err.Error(), "forbidden")
}

func TestKindOf_FindsWrappedError(t *testing.T) {
	inner := apierr.New(apierr.Unauthorized, "set liked", nil)
	wrapped := fmt.Errorf("toggle failed: %w", inner)

	assert.Equal(t, apierr.Unauthorized, apierr.KindOf(wrapped))
	assert.True(t, apierr.Is(wrapped, apierr.Unauthorized))
	assert.False(t, apierr.Is(wrapped, apierr.TransportFailure))
	assert.Equal(t, apierr.Kind(""), apierr.KindOf(errors.New("plain")))
}

func TestUnwrap_ExposesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := apierr.New(apierr.TransportFailure, "exchange code", cause)
	assert.ErrorIs(t, err, cause)
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		kind apierr.Kind
		want bool
	}{
		{apierr.TransportFailure, true},
		{apierr.Canceled, true},
		{apierr.StorageFailure, true},
		{apierr.DecodingFailure, false},
		{apierr.MalformedRequest, false},
		{apierr.DuplicateRequest, false},
		{apierr.Unauthorized, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, apierr.Retryable(apierr.New(tc.kind, "op", nil)))
		})
	}
}

func TestRetryable_StatusCodes(t *testing.T) {
	assert.True(t, apierr.Retryable(apierr.Status("list photos", 503, "")))
	assert.False(t, apierr.Retryable(apierr.Status("list photos", 404, "")))
	assert.False(t, apierr.Retryable(apierr.Status("get current user", 401, "")))
	assert.False(t, apierr.Retryable(errors.New("plain")))
}
