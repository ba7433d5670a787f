package lightning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func Test_TranslateRPCError(t *testing.T) {
	tests := []struct {
		code     codes.Code
		expected ErrorKind
	}{
		{code: codes.Unavailable, expected: KindTransport},
		{code: codes.DeadlineExceeded, expected: KindTransport},
		{code: codes.Internal, expected: KindTransport},
		{code: codes.Unknown, expected: KindRemoteRejection},
		{code: codes.InvalidArgument, expected: KindRemoteRejection},
		{code: codes.NotFound, expected: KindRemoteRejection},
		{code: codes.Unimplemented, expected: KindParse},
	}

	for _, tst := range tests {
		t.Run(tst.code.String(), func(t *testing.T) {
			err := TranslateRPCError(status.Error(tst.code, "boom"))
			kind, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, tst.expected, kind)
		})
	}
}

func Test_TranslateRPCError_Nil(t *testing.T) {
	assert.NoError(t, TranslateRPCError(nil))
}

func Test_TranslateRPCError_Context(t *testing.T) {
	kind, ok := KindOf(TranslateRPCError(context.Canceled))
	assert.True(t, ok)
	assert.Equal(t, KindTransport, kind)
}

func Test_Retryable(t *testing.T) {
	assert.True(t, Retryable(NewError(KindTransport, errors.New("reset"))))
	assert.False(t, Retryable(NewError(KindRemoteRejection, errors.New("no"))))
	assert.False(t, Retryable(NewError(KindLocalValidation, errors.New("bad"))))
	assert.False(t, Retryable(ErrClientUnavailable))
	assert.False(t, Retryable(errors.New("untyped")))
}

func Test_ErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewError(KindTransport, inner)
	assert.True(t, errors.Is(err, inner))
}
