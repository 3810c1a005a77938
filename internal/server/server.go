package server

import (
	"digimarket/internal/handler"
	"digimarket/internal/middleware"
	"digimarket/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo              *echo.Echo
	jwtSecret         string
	webhookHandler    *handler.WebhookHandler
	withdrawalHandler *handler.WithdrawalHandler
	userHandler       *handler.UserHandler
	catalogHandler    *handler.CatalogHandler
}

func NewServer(
	jwtSecret string,
	settlementService service.SettlementService,
	withdrawalService service.WithdrawalService,
	userService service.UserService,
	catalogService service.CatalogService,
	couponService service.CouponService,
) *Server {
	e := echo.New()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:              e,
		jwtSecret:         jwtSecret,
		webhookHandler:    handler.NewWebhookHandler(settlementService),
		withdrawalHandler: handler.NewWithdrawalHandler(withdrawalService),
		userHandler:       handler.NewUserHandler(userService),
		catalogHandler:    handler.NewCatalogHandler(catalogService, couponService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.POST("/users/register", s.userHandler.Register)
	api.GET("/plans", s.userHandler.ListPlans)

	// -------- trusted payment provider callbacks --------
	api.POST("/webhook/payment", s.webhookHandler.HandlePaymentSucceeded)

	// -------- authenticated --------
	auth := api.Group("", middleware.AuthMiddleware(s.jwtSecret))

	auth.GET("/users/me", s.userHandler.Me)
	auth.POST("/users/subscribe", s.userHandler.Subscribe)

	auth.POST("/products", s.catalogHandler.CreateProduct)
	auth.GET("/products", s.catalogHandler.ListProducts)
	auth.PATCH("/products/:productID", s.catalogHandler.UpdateProduct)
	auth.DELETE("/products/:productID", s.catalogHandler.DeleteProduct)

	auth.POST("/coupons", s.catalogHandler.CreateCoupon)
	auth.GET("/coupons", s.catalogHandler.ListCoupons)
	auth.DELETE("/coupons/:couponID", s.catalogHandler.DeleteCoupon)

	auth.POST("/affiliations", s.catalogHandler.RequestAffiliation)
	auth.POST("/affiliations/:relationID/approve", s.catalogHandler.ApproveAffiliation)
	auth.POST("/affiliations/:relationID/reject", s.catalogHandler.RejectAffiliation)

	auth.POST("/withdrawals", s.withdrawalHandler.Request)
	auth.GET("/withdrawals", s.withdrawalHandler.List)

	// -------- admin --------
	auth.POST("/withdrawals/:withdrawalID/reject", s.withdrawalHandler.Reject)
	auth.POST("/withdrawals/:withdrawalID/complete", s.withdrawalHandler.Complete)
	auth.POST("/sales/:saleID/refund", s.webhookHandler.RefundSale)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
