package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fedwallet/walletgate/metrics"
	"github.com/fedwallet/walletgate/service"
)

// RouterConfig carries the transport-level settings.
type RouterConfig struct {
	// ChallengeRPS and ChallengeBurst rate-limit challenge issuance per
	// wallet address; zero disables the limit.
	ChallengeRPS   float64
	ChallengeBurst int
}

// SetupRouter sets up the Gin router
func SetupRouter(
	authService *service.AuthService,
	directoryService *service.DirectoryService,
	m *metrics.Metrics,
	cfg RouterConfig,
) *gin.Engine {
	router := gin.Default()

	limiter := newAddressLimiter(cfg.ChallengeRPS, cfg.ChallengeBurst)
	authHandlers := NewAuthHandlers(authService, m, limiter)
	directoryHandlers := NewDirectoryHandlers(directoryService, m)

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", authHandlers.Challenge)
		auth.POST("/login", authHandlers.Login)
		auth.GET("/whoami", authHandlers.Whoami)
	}

	directory := router.Group("/directory")
	{
		directory.POST("/register", directoryHandlers.Register)
		directory.POST("/unregister", directoryHandlers.Unregister)
		directory.GET("/:address", directoryHandlers.Lookup)
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return router
}
