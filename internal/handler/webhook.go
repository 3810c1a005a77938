package handler

import (
	"errors"
	"net/http"

	"digimarket/internal/dto"
	"digimarket/internal/model"
	"digimarket/internal/service"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	settlementService service.SettlementService
}

func NewWebhookHandler(settlementService service.SettlementService) *WebhookHandler {
	return &WebhookHandler{
		settlementService: settlementService,
	}
}

// HandlePaymentSucceeded settles a trusted payment event. Signature
// verification happens at the gateway edge before this route is reached.
func (h *WebhookHandler) HandlePaymentSucceeded(c echo.Context) error {
	ctx := c.Request().Context()

	var event dto.PaymentEvent
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event body")
	}
	if event.EventID == "" || event.PaymentRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing event_id or payment_ref")
	}

	sale, err := h.settlementService.Settle(ctx, &event)
	if err != nil {
		// at-least-once delivery: a replayed event is acknowledged, not failed,
		// so the provider stops retrying
		if errors.Is(err, model.ErrDuplicatePayment) {
			return c.JSON(http.StatusOK, map[string]string{"status": "already_processed"})
		}
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.SettlementResponse{
		SaleID:               sale.ID,
		AmountCents:          sale.AmountCents,
		SellerAmountCents:    sale.SellerAmountCents,
		AffiliateAmountCents: sale.AffiliateAmountCents,
		PlatformFeeCents:     sale.PlatformFeeCents,
		Status:               string(sale.Status),
	})
}

// RefundSale reverses a completed sale (admin only path, wired behind auth).
func (h *WebhookHandler) RefundSale(c echo.Context) error {
	ctx := c.Request().Context()

	saleID := c.Param("saleID")
	sale, err := h.settlementService.Refund(ctx, saleID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, sale)
}
