package response

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace-settlement/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CtxRequestID is the gin context key holding the request id.
	CtxRequestID = "request_id"
	// HeaderRequestID echoes the request id back to the caller.
	HeaderRequestID = "X-Request-ID"

	// retryAfterSeconds is advertised on 429 and 503 so the payment gateway
	// and sellers back off before retrying.
	retryAfterSeconds = 5
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      any    `json:"data"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the standard error envelope. Codes are listed in pkg/apperror.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	success(c, http.StatusOK, data)
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data any) {
	success(c, http.StatusCreated, data)
}

// Error sends the error envelope for err. Anything that is not an
// *apperror.AppError becomes SYS_001 without its text.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}

	retryable := appErr.HTTPStatus == http.StatusServiceUnavailable || appErr.HTTPStatus == http.StatusTooManyRequests
	if retryable && c.Writer.Header().Get("Retry-After") == "" {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		RequestID: RequestID(c),
		Timestamp: timestamp(),
	})
}

// Abort writes the error envelope and stops the middleware chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// RequestID returns the id assigned by the request-id middleware. Outside of
// it a fresh id is generated and remembered for the rest of the request.
func RequestID(c *gin.Context) string {
	if s := c.GetString(CtxRequestID); s != "" {
		return s
	}
	id := uuid.NewString()
	c.Set(CtxRequestID, id)
	return id
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: RequestID(c),
		Timestamp: timestamp(),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
