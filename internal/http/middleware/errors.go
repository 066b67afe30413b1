package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/swapi-mirror/internal/clients/swapi"
	"github.com/yungbote/swapi-mirror/internal/data/dberr"
	"github.com/yungbote/swapi-mirror/internal/http/response"
	pkgerrors "github.com/yungbote/swapi-mirror/internal/pkg/errors"
	"github.com/yungbote/swapi-mirror/internal/platform/apierr"
	"github.com/yungbote/swapi-mirror/internal/platform/ctxutil"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

const (
	msgDatabaseError = "Database error occurred. Please check logs."
	msgInternalError = "Internal server error. Check logs."
)

// ErrorHandler renders the last error a handler pushed with c.Error, unless the
// handler already wrote a response.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, code, msg := classify(err)
		if status >= 500 {
			log.Error("Request failed", append(ctxutil.LogFields(c.Request.Context()),
				"path", c.Request.URL.Path, "status", status, "error", err)...)
		}
		response.RespondErrorMessage(c, status, code, msg)
	}
}

func classify(err error) (int, string, string) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ae.Code, ae.Error()
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "invalid_request", ve.Error()
	}
	var de *dberr.Error
	switch {
	case errors.Is(err, swapi.ErrRemoteFetch):
		return http.StatusBadGateway, "remote_fetch_failed", err.Error()
	case errors.As(err, &de):
		return http.StatusInternalServerError, "database_error", msgDatabaseError
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", err.Error()
	}
	return http.StatusInternalServerError, "internal_error", msgInternalError
}

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("Panic recovered", append(ctxutil.LogFields(c.Request.Context()),
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
			"stack", string(debug.Stack()),
		)...)
		response.RespondErrorMessage(c, http.StatusInternalServerError, "internal_error", msgInternalError)
	})
}
