package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/memecataloger/memecataloger-web/internal/errors"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]int{"count": 2})
	require.NoError(t, err)

	env, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.True(t, env.Success)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.Equal(t, map[string]int{"count": 2}, env.Data)
}

func TestEnvelopeTransformer_ErrorStatusIsNotSuccess(t *testing.T) {
	for _, status := range []string{"400", "404", "500", "503"} {
		result, err := EnvelopeTransformer(nil, status, map[string]string{"detail": "x"})
		require.NoError(t, err)
		assert.False(t, result.(APIEnvelope).Success, status)
	}
}

func TestEnvelopeTransformer_SimpleAPIError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", &APIError{Message: "image not found"})
	require.NoError(t, err)

	env, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "image not found", env.Error)
	assert.Nil(t, env.Data)
}

func TestEnvelopeTransformer_CodedAPIError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "403", &APIError{
		Code:    "FORBIDDEN",
		Message: "tag editing is disabled",
	})
	require.NoError(t, err)

	env, ok := result.(APIErrorEnvelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "FORBIDDEN", env.Code)
	assert.Equal(t, "tag editing is disabled", env.Error)
	assert.Equal(t, env.Error, env.Message)
}

func TestEnvelopeTransformer_PlainError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "500", errors.New("boom"))
	require.NoError(t, err)

	env, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "boom", env.Error)
}

func TestEnvelopeTransformer_OmitsEmptyData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":true}`, string(body))
}

func TestRegisterErrorHandler_MapsDomainErrors(t *testing.T) {
	RegisterErrorHandler()

	err := huma.NewError(500, "wrapped", domainerrors.NotFound("image not found"))

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.GetStatus())
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestRegisterErrorHandler_ValidationDetails(t *testing.T) {
	RegisterErrorHandler()

	err := huma.NewError(422, "validation failed", errors.New("body.name: required"))

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, []string{"body.name: required"}, apiErr.Details)
}

func TestStatusToCode(t *testing.T) {
	tests := map[int]string{
		400: "VALIDATION",
		403: "FORBIDDEN",
		404: "NOT_FOUND",
		429: "RATE_LIMITED",
		502: "UNAVAILABLE",
		500: "INTERNAL",
	}
	for status, want := range tests {
		assert.Equal(t, want, statusToCode(status), status)
	}
}
