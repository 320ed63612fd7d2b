package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in the "code" field of every non-2xx classifier response.
const (
	codeBadRequest      = "bad_request"
	codeNotFound        = "not_found"
	codeInternal        = "internal_error"
	codePayloadTooLarge = "payload_too_large"
)

// APIError is the body of a failed request:
//
//	{"error": {"code": "bad_request", "message": "No texts provided or invalid format"}}
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError aborts the request with status and an APIError body. Handlers
// return right after calling it.
func JSONError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// BadRequest reports input the classifier cannot accept: missing text, an
// empty or oversized batch, an unreadable upload.
func BadRequest(c *gin.Context, msg string) {
	JSONError(c, http.StatusBadRequest, codeBadRequest, msg)
}

func NotFound(c *gin.Context, msg string) {
	JSONError(c, http.StatusNotFound, codeNotFound, msg)
}

func Internal(c *gin.Context, msg string) {
	JSONError(c, http.StatusInternalServerError, codeInternal, msg)
}

// PayloadTooLarge rejects uploads over Options.MaxUploadBytes.
func PayloadTooLarge(c *gin.Context, msg string) {
	JSONError(c, http.StatusRequestEntityTooLarge, codePayloadTooLarge, msg)
}
