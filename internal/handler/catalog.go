package handler

import (
	"net/http"

	"digimarket/internal/dto"
	"digimarket/internal/middleware"
	"digimarket/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	couponService  service.CouponService
}

func NewCatalogHandler(catalogService service.CatalogService, couponService service.CouponService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		couponService:  couponService,
	}
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	product, err := h.catalogService.CreateProduct(ctx, sellerID, &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.catalogService.UpdateProduct(ctx, sellerID, c.Param("productID"), &req); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.DeleteProduct(ctx, sellerID, c.Param("productID")); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	products, err := h.catalogService.ListProducts(ctx, sellerID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateCouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	coupon, err := h.couponService.Create(ctx, sellerID, &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, coupon)
}

func (h *CatalogHandler) ListCoupons(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	coupons, err := h.couponService.ListBySeller(ctx, sellerID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, coupons)
}

func (h *CatalogHandler) DeleteCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.couponService.Delete(ctx, sellerID, c.Param("couponID")); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) RequestAffiliation(c echo.Context) error {
	ctx := c.Request().Context()

	affiliateID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req dto.AffiliateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	relation, err := h.catalogService.RequestAffiliation(ctx, affiliateID, req.ProductID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, relation)
}

func (h *CatalogHandler) ApproveAffiliation(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.ApproveAffiliation(ctx, sellerID, c.Param("relationID")); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) RejectAffiliation(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.RejectAffiliation(ctx, sellerID, c.Param("relationID")); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
