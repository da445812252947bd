package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/model"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"
	"google.golang.org/api/googleapi"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var verr *service.ValidationError
	var gerr *googleapi.Error

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotConfigured),
		errors.Is(err, service.ErrBlurbNotConfigured),
		errors.Is(err, service.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrUnknownFormat),
		errors.Is(err, service.ErrInvalidQuestion):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &gerr):
		switch gerr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
			http.StatusNotFound, http.StatusTooManyRequests:
			return gerr.Code
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": ...} with the mapped status.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Request failed (%s %s): %v", c.Request.Method, c.FullPath(), err)
	}
	_ = c.Error(err)

	resp := model.ErrorResponse{Error: err.Error()}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "book is not ready for export"
		resp.Errors = verr.Errors
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: msg})
}
