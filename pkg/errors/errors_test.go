package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewError tests the basic creation of errors.
func TestNewError(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
	}{
		{
			name:    "SessionNotFound",
			code:    SessionNotFound,
			message: "session not found",
		},
		{
			name:    "BlueprintInvalid",
			code:    BlueprintInvalid,
			message: "blueprint failed validation",
		},
		{
			name:    "LLMGenerationFailed",
			code:    LLMGenerationFailed,
			message: "generation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)

			customErr, ok := err.(*Error)
			require.True(t, ok, "should be a custom *Error")

			assert.Equal(t, tt.code, customErr.Code())
			assert.Equal(t, tt.message, customErr.Error())
			assert.Nil(t, customErr.Unwrap())
		})
	}
}

// TestWrapError tests error wrapping functionality.
func TestWrapError(t *testing.T) {
	originalErr := stderrors.New("original error")

	wrapped := Wrap(originalErr, AgentExecutionFailed, "agent context")
	require.NotNil(t, wrapped)

	customErr, ok := wrapped.(*Error)
	require.True(t, ok)
	assert.Equal(t, AgentExecutionFailed, customErr.Code())
	assert.Equal(t, originalErr, customErr.Unwrap())
	assert.Contains(t, wrapped.Error(), "agent context")
	assert.Contains(t, wrapped.Error(), "original error")

	assert.Nil(t, Wrap(nil, AgentExecutionFailed, "ignored"))
}

func TestWithFields(t *testing.T) {
	err := New(SessionNotFound, "session not found")
	err = WithFields(err, Fields{"session_id": "abc-123"})

	customErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, SessionNotFound, customErr.Code())
	assert.Equal(t, "abc-123", customErr.Fields()["session_id"])
	assert.Contains(t, err.Error(), "session_id=abc-123")

	// Fields on a plain error promote it to Unknown.
	plain := WithFields(stderrors.New("plain"), Fields{"k": "v"})
	plainErr, ok := plain.(*Error)
	require.True(t, ok)
	assert.Equal(t, Unknown, plainErr.Code())
}

func TestErrorIs(t *testing.T) {
	err := New(Timeout, "took too long")
	assert.True(t, stderrors.Is(err, New(Timeout, "different message")))
	assert.False(t, stderrors.Is(err, New(Canceled, "took too long")))
}

func TestCode(t *testing.T) {
	assert.Equal(t, Unknown, Code(nil))
	assert.Equal(t, Unknown, Code(stderrors.New("plain")))
	assert.Equal(t, SessionNotCancellable, Code(New(SessionNotCancellable, "done")))
	assert.Equal(t, StorageFailed, Code(Wrap(stderrors.New("io"), StorageFailed, "write")))
}

func TestCheckContext(t *testing.T) {
	assert.Nil(t, CheckContext(context.Background(), "noop"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := CheckContext(ctx, "generation")
	require.NotNil(t, err)
	assert.Equal(t, Canceled, Code(err))

	deadlineCtx, cancel2 := context.WithTimeout(context.Background(), 0)
	defer cancel2()
	<-deadlineCtx.Done()
	err = CheckContext(deadlineCtx, "generation")
	require.NotNil(t, err)
	assert.Equal(t, Timeout, Code(err))
}
