package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "todo-api.com/todo-api/internal/data_models"
	apperrors "todo-api.com/todo-api/internal/errors"
)

func StatusCode(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusUnprocessableEntity
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every error as {"message": ...}. Server side
// failures are logged with the request id and answered generically.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status  int
		message string
		he      *echo.HTTPError
	)
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		status = StatusCode(err)
		message = apperrors.PublicMessage(err)
	}

	if status >= http.StatusInternalServerError {
		log.Printf("request %s %s %s failed: %v",
			c.Response().Header().Get(echo.HeaderXRequestID),
			c.Request().Method,
			c.Request().URL.Path,
			err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, dto.ErrorResponse{Message: message})
	}
	if writeErr != nil {
		log.Printf("failed to write error response: %v", writeErr)
	}
}
