package apihandlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHelpers(t *testing.T) {
	testCases := []struct {
		name       string
		respond    func(*gin.Context, string)
		wantStatus int
		wantCode   string
	}{
		{"bad request", BadRequest, http.StatusBadRequest, "bad_request"},
		{"not found", NotFound, http.StatusNotFound, "not_found"},
		{"internal", Internal, http.StatusInternalServerError, "internal_error"},
		{"payload too large", PayloadTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tc.respond(c, "something went wrong")

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.True(t, c.IsAborted())
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, APIError{Code: tc.wantCode, Message: "something went wrong"}, body.Error)
		})
	}
}
