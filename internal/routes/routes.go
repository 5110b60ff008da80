// Package routes wires the HTTP handlers onto the fiber app.
package routes

import (
	"fanzvault/internal/handlers"
	"fanzvault/internal/logger"
	"fanzvault/internal/middleware"
	"fanzvault/internal/repositories"
	"fanzvault/internal/services/credit"
	"fanzvault/internal/services/revenue"
	"fanzvault/internal/services/token"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP surface exposes.
type Dependencies struct {
	Store       repositories.Store
	Redis       *redis.Client
	Wallets     wallet.Service
	Coordinator *transaction.Coordinator
	Credit      credit.Service
	Tokens      token.Service
	Revenue     revenue.Service
	JWTSecret   string
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	log := logger.OrNop(deps.Log)

	health := handlers.NewHealthHandler(deps.Store, deps.Redis)
	app.Get("/health", health.HealthCheck)
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authMiddleware := middleware.NewAuthMiddleware(deps.JWTSecret, log)
	admin := middleware.AdminAuthMiddleware
	api := app.Group("/api/v1", authMiddleware.Handler)

	walletHandler := handlers.NewWalletHandler(deps.Wallets, deps.Coordinator, log)
	api.Post("/wallets", walletHandler.GetOrCreateWallet)
	api.Get("/wallets/:id", walletHandler.GetWallet)
	api.Get("/wallets/:id/balance", walletHandler.GetBalance)
	api.Post("/wallets/:id/status", admin, walletHandler.SetWalletStatus)
	api.Get("/users/:userId/wallets", walletHandler.ListUserWallets)

	txnHandler := handlers.NewTransactionHandler(deps.Coordinator, log)
	api.Post("/transactions", txnHandler.RecordTransaction)
	api.Get("/transactions", txnHandler.GetTransactionHistory)
	api.Post("/transfers", txnHandler.TransferFunds)

	creditHandler := handlers.NewCreditHandler(deps.Credit, log)
	api.Post("/credit-lines", creditHandler.CreateCreditLine)
	api.Get("/credit-lines/:id", creditHandler.GetCreditLine)
	api.Post("/credit-lines/:id/approve", admin, creditHandler.ApproveCreditLine)
	api.Post("/credit-lines/:id/draw", creditHandler.DrawCredit)
	api.Post("/credit-lines/:id/close", admin, creditHandler.CloseCreditLine)
	api.Get("/users/:userId/credit-lines", creditHandler.GetUserCreditLines)

	tokenHandler := handlers.NewTokenHandler(deps.Tokens, log)
	api.Get("/users/:userId/tokens", tokenHandler.ListUserTokenBalances)
	api.Get("/users/:userId/tokens/:type", tokenHandler.GetOrCreateTokenBalance)
	api.Post("/tokens/mint", admin, tokenHandler.MintTokens)
	api.Post("/tokens/burn", tokenHandler.BurnTokens)
	api.Post("/tokens/purchase", tokenHandler.PurchaseTokens)

	revenueHandler := handlers.NewRevenueHandler(deps.Revenue, log)
	api.Post("/revenue-shares", revenueHandler.ProcessRevenueShare)
	api.Get("/revenue-shares/:id", revenueHandler.GetRevenueShare)
}
