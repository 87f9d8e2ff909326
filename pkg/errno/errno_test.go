package errno

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCodeAndCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrGasOracle.Wrap(cause)

	assert.True(t, errors.Is(err, ErrGasOracle))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrEstimateGas))
	assert.Equal(t, "failed to fetch gas prices: dial tcp: connection refused", err.Error())

	// 全局变量不应被修改
	assert.Equal(t, "failed to fetch gas prices", ErrGasOracle.Error())
}

func TestDecode(t *testing.T) {
	code, msg := Decode(nil)
	assert.Equal(t, OK.Code, code)
	assert.Equal(t, OK.Message, msg)

	code, msg = Decode(fmt.Errorf("prepare: %w", ErrGasBelowEstimate.WithMessage("gas below estimate: 21000")))
	assert.Equal(t, ErrGasBelowEstimate.Code, code)
	assert.Equal(t, "gas below estimate: 21000", msg)

	code, msg = Decode(errors.New("boom"))
	assert.Equal(t, InternalServerError.Code, code)
	assert.Equal(t, "boom", msg)
}

func TestKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		upstream   bool
		status     int
	}{
		{"invalid value", ErrInvalidValue, true, false, http.StatusBadRequest},
		{"unknown tier", ErrInvalidGasPriceTier, true, false, http.StatusBadRequest},
		{"oracle", ErrGasOracle.Wrap(errors.New("timeout")), false, true, http.StatusBadGateway},
		{"estimate wrapped", fmt.Errorf("x: %w", ErrEstimateGas), false, true, http.StatusBadGateway},
		{"bind", ErrBind, false, false, http.StatusBadRequest},
		{"rate limit", ErrTooManyRequests, false, false, http.StatusTooManyRequests},
		{"plain", errors.New("plain"), false, false, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.upstream, IsUpstream(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
