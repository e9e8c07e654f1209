package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Dividend-Distribution-Backend/internal/api/middleware"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/config"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	roundService *service.RoundService,
	paymentService *service.PaymentService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/round", func(r chi.Router) {
			roundHandler := handlers.NewRoundHandler(roundService)
			paymentHandler := handlers.NewPaymentHandler(paymentService)

			r.Get("/", roundHandler.GetRounds)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", roundHandler.CreateRound)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", roundHandler.GetRound)
				r.Get("/dividend", roundHandler.RoundDividends)
				r.With(custommiddleware.APIKeyMiddleware).Post("/ready", roundHandler.MarkReady)
				r.With(custommiddleware.APIKeyMiddleware).Post("/payment", paymentHandler.CreatePayment)
			})
		})

		r.Route("/payment/{uuid}", func(r chi.Router) {
			paymentHandler := handlers.NewPaymentHandler(paymentService)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", paymentHandler.GetPayment)
			r.With(custommiddleware.APIKeyMiddleware).Post("/refresh", paymentHandler.RefreshPayment)
		})

		r.Route("/company/{uuid}", func(r chi.Router) {
			companyHandler := handlers.NewCompanyHandler(paymentService)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/balance-transactions", companyHandler.BalanceTransactions)
			r.With(custommiddleware.APIKeyMiddleware).Post("/payment-source", companyHandler.CreatePaymentSource)
		})

		// Gateway webhooks authenticate by payload, not API key.
		webhookHandler := handlers.NewWebhookHandler(paymentService)
		r.Post("/webhook/gateway", webhookHandler.GatewayWebhook)
	})

	return r
}
