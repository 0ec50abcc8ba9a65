package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		err  *MemError
		want codes.Code
	}{
		{AddressOutOfRange(10, 8), codes.OutOfRange},
		{WidthMismatch(4, 8), codes.InvalidArgument},
		{MaskMismatch(2, 1), codes.InvalidArgument},
		{InvalidGeometry("zero depth", nil), codes.InvalidArgument},
		{InvalidReplica("none"), codes.InvalidArgument},
		{VotingFailure(0, "01", "02", "03"), codes.DataLoss},
		{InternalError("boom", nil), codes.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.ToGRPCStatus().Code(), "code for %v", tt.err.Code)
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := InternalError("replica read failed", cause)

	assert.Contains(t, err.Error(), "replica read failed")
	assert.Contains(t, err.Error(), "underlying")
	assert.Equal(t, cause, err.Unwrap())
}

func TestDetails(t *testing.T) {
	err := AddressOutOfRange(42, 16)
	assert.Equal(t, uint(42), err.Details["address"])
	assert.Equal(t, uint(16), err.Details["depth"])

	err = err.WithDetail("op", "read")
	assert.Equal(t, "read", err.Details["op"])
}

func TestGetCode(t *testing.T) {
	require.True(t, IsMemError(VotingFailure(0, "a", "b", "c")))
	assert.Equal(t, ErrCodeVotingFailure, GetCode(VotingFailure(0, "a", "b", "c")))

	assert.False(t, IsMemError(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("plain")))
}
