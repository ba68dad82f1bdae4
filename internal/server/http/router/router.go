package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/hubsai/internal/server/http/handlers"
	"github.com/polkiloo/hubsai/internal/server/http/middleware"
)

const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ClientFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/healthz", handlers.NewHealthHandler(facade).Check)

	authHandler := handlers.NewAuthHandler(facade)
	walletHandler := handlers.NewWalletHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	onboardingHandler := handlers.NewOnboardingHandler(facade)
	dashboardHandler := handlers.NewDashboardHandler(facade)

	api := engine.Group("/api")
	api.Use(middleware.ClientSession(facade))

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/signout", authHandler.SignOut)
	auth.GET("/session", authHandler.Session)

	api.GET("/wallet", walletHandler.Get)
	api.POST("/wallet", walletHandler.Ensure)
	api.POST("/wallet/recreate", walletHandler.Recreate)
	api.POST("/wallet/setup-complete", walletHandler.SetupComplete)

	api.GET("/orders/lookup", orderHandler.Lookup)
	api.POST("/events", orderHandler.Track)

	onboarding := api.Group("/onboarding")
	onboarding.GET("", onboardingHandler.Get)
	onboarding.POST("/start", onboardingHandler.Start)
	onboarding.POST("/next", onboardingHandler.Next)
	onboarding.POST("/skip", onboardingHandler.Skip)
	onboarding.POST("/back", onboardingHandler.Back)
	onboarding.POST("/reset", onboardingHandler.Reset)
	onboarding.POST("/external-wallet", onboardingHandler.ExternalWallet)

	dashboard := api.Group("/dashboard")
	dashboard.GET("", dashboardHandler.Get)
	dashboard.PUT("/tab", dashboardHandler.SelectTab)
	dashboard.POST("/nfts/:id/stake", dashboardHandler.Stake)
	dashboard.POST("/nfts/:id/unstake", dashboardHandler.Unstake)
	dashboard.POST("/nfts/:id/transfer", dashboardHandler.Transfer)
	dashboard.PUT("/settings", dashboardHandler.UpdateSettings)

	return engine
}
