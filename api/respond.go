package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
)

// Fail maps an application error to its HTTP response. Unknown errors are
// reported as 500 without leaking internals.
func Fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	msg := "internal error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		msg = appErr.Msg
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// ParseID reads a path parameter as an unsigned integer id.
func ParseID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(id), nil
}
