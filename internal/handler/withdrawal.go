package handler

import (
	"net/http"

	"digimarket/internal/dto"
	"digimarket/internal/middleware"
	"digimarket/internal/service"

	"github.com/labstack/echo/v4"
)

type WithdrawalHandler struct {
	withdrawalService service.WithdrawalService
}

func NewWithdrawalHandler(withdrawalService service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
	}
}

func (h *WithdrawalHandler) Request(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req dto.WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	withdrawal, err := h.withdrawalService.Request(ctx, userID, req.AmountCents)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, withdrawal)
}

func (h *WithdrawalHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	withdrawals, err := h.withdrawalService.ListByUser(ctx, userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, withdrawals)
}

func (h *WithdrawalHandler) Reject(c echo.Context) error {
	ctx := c.Request().Context()

	withdrawal, err := h.withdrawalService.Reject(ctx, c.Param("withdrawalID"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) Complete(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.WithdrawalResolution
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	withdrawal, err := h.withdrawalService.Complete(ctx, c.Param("withdrawalID"), req.TransferRef)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, withdrawal)
}
