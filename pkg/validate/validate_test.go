package validate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Symbol    string  `json:"symbol" validate:"required"`
	Threshold string  `json:"threshold" validate:"finite"`
	Weight    float64 `json:"weight" validate:"finite"`
	Mode      string  `json:"mode" validate:"oneof=fast slow"`
}

func TestStructValid(t *testing.T) {
	err := Struct(context.Background(), sample{Symbol: "EURUSD", Threshold: " 0.002 ", Weight: 1, Mode: "fast"})
	assert.NoError(t, err)
}

func TestFieldErrorsMapping(t *testing.T) {
	err := Struct(context.Background(), sample{Threshold: "NaN", Weight: math.Inf(1), Mode: "medium"})
	require.Error(t, err)

	byField := map[string]FieldError{}
	for _, fe := range FieldErrors(err) {
		byField[fe.Field] = fe
	}
	require.Len(t, byField, 4)

	assert.Equal(t, "ERR_REQUIRED", byField["symbol"].Code)
	assert.Equal(t, "symbol is required", byField["symbol"].Message)
	assert.Equal(t, "ERR_FINITE", byField["threshold"].Code)
	assert.Equal(t, "weight must be a finite number", byField["weight"].Message)
	assert.Equal(t, "mode must be one of: fast, slow", byField["mode"].Message)
	assert.Equal(t, []string{"fast", "slow"}, byField["mode"].Params["options"])
}

func TestFieldErrorsOther(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))

	got := FieldErrors(errors.New("decode failed"))
	require.Len(t, got, 1)
	assert.Equal(t, "ERR_UNKNOWN", got[0].Code)
	assert.Equal(t, "decode failed", got[0].Message)
}

func TestFiniteRejectsGarbage(t *testing.T) {
	type s struct {
		V string `json:"v" validate:"finite"`
	}
	assert.Error(t, Struct(context.Background(), s{V: "abc"}))
	assert.Error(t, Struct(context.Background(), s{V: "+Inf"}))
	assert.NoError(t, Struct(context.Background(), s{V: "-1e3"}))
}
