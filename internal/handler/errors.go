package handler

import (
	"net/http"

	"github.com/evently/backend/internal/apperr"
	"github.com/evently/backend/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// writeError renders err as JSON. Server-side failures are logged with their
// cause and returned to the client without detail.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Wrap(apperr.KindInternal, "unclassified error", err)
	}

	status := apperr.HTTPStatus(appErr.Kind)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("kind", appErr.Kind.String()).
			Str("request_id", c.GetString(requestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.AbortWithStatusJSON(status, model.ErrorResponse{
			Error: "internal server error",
			Code:  apperr.CodeInternal,
		})
		return
	}

	c.AbortWithStatusJSON(status, model.ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}
