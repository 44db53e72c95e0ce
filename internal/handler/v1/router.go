package v1

import (
	"net/http"

	"github.com/clinsys/examflow/internal/config"
	"github.com/clinsys/examflow/internal/service"
	"github.com/clinsys/examflow/pkg/auth"
	"github.com/clinsys/examflow/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Config      *config.Config
	JWTManager  *auth.JWTManager
	AuthSvc     *service.AuthService
	WorkflowSvc *service.WorkflowService
	Collector   *metrics.Collector
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics(deps.Collector))
	r.Use(RateLimit(deps.Config.RateLimit))
	r.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.CORS.AllowedOrigins,
		AllowMethods: deps.Config.CORS.AllowedMethods,
		AllowHeaders: deps.Config.CORS.AllowedHeaders,
		MaxAge:       deps.Config.CORS.MaxAge,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": deps.Config.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.AuthSvc)
	examHandler := NewExamRequestHandler(deps.WorkflowSvc)
	checkupHandler := NewCheckupRequestHandler(deps.WorkflowSvc)

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth", AuthRateLimit(deps.Config.RateLimit))
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)

	protected := api.Group("", RequireAuth(deps.JWTManager))

	exams := protected.Group("/exam-requests")
	exams.POST("", examHandler.Create)
	exams.GET("", examHandler.List)
	exams.GET("/:id", examHandler.Get)
	exams.POST("/:id/transition", examHandler.Transition)
	exams.DELETE("/:id", examHandler.Delete)

	checkups := protected.Group("/checkup-requests")
	checkups.POST("", checkupHandler.Create)
	checkups.GET("", checkupHandler.List)
	checkups.GET("/:id", checkupHandler.Get)
	checkups.POST("/:id/transition", checkupHandler.Transition)
	checkups.DELETE("/:id", checkupHandler.Delete)

	return r
}
