package apierror

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ToJSON(t *testing.T) {
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(Unauthorized("").ToJSON(), &body))

	assert.False(t, body.Success)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	assert.Equal(t, "Authentication required", body.Error.Message)
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom").StatusCode)
	assert.Equal(t, "boom", InternalError("boom").Error())
	assert.Equal(t, http.StatusServiceUnavailable, ServiceUnavailable("").StatusCode)
}
