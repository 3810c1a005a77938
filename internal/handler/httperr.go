package handler

import (
	"errors"
	"net/http"

	"digimarket/internal/model"

	"github.com/labstack/echo/v4"
)

// httpError maps domain errors onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrDuplicatePayment):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrBelowMinimumWithdrawal),
		errors.Is(err, model.ErrInsufficientBalance),
		errors.Is(err, model.ErrCouponInvalid),
		errors.Is(err, model.ErrLimitReached),
		errors.Is(err, model.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrPlanUnavailable):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return err
	}
}
