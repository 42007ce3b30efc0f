package apperror

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterErrorHandler installs the coded error handler on e.
func RegisterErrorHandler(e *echo.Echo, logger *slog.Logger) {
	e.HTTPErrorHandler = NewHTTPErrorHandler(StatusCodes(), logger).Handler
}

// StatusCodes maps error codes to HTTP status codes.
func StatusCodes() map[string]int {
	return map[string]int{
		ErrBadParameter:        http.StatusBadRequest,
		ErrEntityNotFound:      http.StatusNotFound,
		ErrInternalServerError: http.StatusInternalServerError,
	}
}

type HTTPErrorHandler struct {
	statusCodes map[string]int
	logger      *slog.Logger
}

func NewHTTPErrorHandler(statusCodes map[string]int, logger *slog.Logger) *HTTPErrorHandler {
	return &HTTPErrorHandler{
		statusCodes: statusCodes,
		logger:      logger,
	}
}

func (h *HTTPErrorHandler) statusCode(code string) int {
	if status, ok := h.statusCodes[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// Handler handles errors returned by echo handlers.
func (h *HTTPErrorHandler) Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var status int
	coded := As(err)

	if he, ok := err.(*echo.HTTPError); ok {
		message, _ := he.Message.(string)
		code := ErrInternalServerError
		if he.Code < http.StatusInternalServerError {
			code = ErrBadParameter
		}
		if he.Code == http.StatusNotFound {
			code = ErrEntityNotFound
		}
		coded = New(code, message, err)
		status = he.Code
	} else {
		if coded == nil {
			coded = New(ErrInternalServerError, "an internal server error has occurred", err)
		}
		status = h.statusCode(coded.Code)
	}

	h.logger.Error("HTTP request error",
		slog.String("method", c.Request().Method),
		slog.String("path", c.Request().URL.Path),
		slog.Int("status", status),
		slog.Any("err", err))

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, Response{Error: coded})
}

// Response is the error body written to API consumers.
type Response struct {
	Error *Error `json:"error,omitempty"`
}
