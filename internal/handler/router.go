package handler

import (
	"context"
	"net/http"

	"portfee/internal/logger"
	"portfee/internal/middleware"
	"portfee/internal/model"
	"portfee/internal/service"
	"portfee/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Services are the dependencies the HTTP layer dispatches to.
type Services struct {
	Users      service.UserService
	Forms      service.FormService
	TaxRates   service.TaxRatesService
	Reference  service.ReferenceService
	Audit      service.AuditService
	Statistics service.StatisticsService
	Policies   service.PolicyService
}

type RouterConfig struct {
	JWTSecret    []byte
	CORSOrigins  []string
	SecureCookie bool
	Hub          *websocket.Hub // nil disables /ws
	Swagger      bool
	Log          *zap.Logger
}

// NewRouter assembles the gin engine: public routes, the authenticated /api
// group and the operational endpoints.
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	log := logger.OrNop(cfg.Log)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	if cfg.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Hub != nil {
		resolve := func(ctx context.Context, token string) (*model.User, error) {
			return middleware.ResolveToken(ctx, svc.Users, cfg.JWTSecret, token)
		}
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(cfg.Hub, c, middleware.TokenFromRequest(c), resolve)
		})
	}

	public := router.Group("")
	api := router.Group("/api")
	api.Use(middleware.Authenticate(svc.Users, cfg.JWTSecret))

	NewUserHandler(svc.Users, cfg.SecureCookie).RegisterRoutes(public, api)
	NewFormHandler(svc.Forms).RegisterRoutes(api)
	NewTaxRatesHandler(svc.TaxRates).RegisterRoutes(api)
	NewReferenceHandler(svc.Reference).RegisterRoutes(api)
	NewAuditHandler(svc.Audit).RegisterRoutes(api)
	NewStatisticsHandler(svc.Statistics).RegisterRoutes(api)
	NewPolicyHandler(svc.Policies).RegisterRoutes(api)

	return router
}
