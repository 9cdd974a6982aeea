package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamzen/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	teamH *TeamHandler,
	cycleH *CycleHandler,
	respH *ResponseHandler,
	adviceH *AdviceHandler,
	eventsH *EventsHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)

	authed := r.Group("", JWTAuthMiddleware(jwtSvc))

	teams := authed.Group("/teams")
	teams.POST("", teamH.Create)
	teams.GET("", teamH.List)
	teams.POST("/join", teamH.Join)
	teams.GET("/:id", teamH.Get)
	teams.PATCH("/:id", teamH.Update)
	teams.GET("/:id/members", teamH.ListMembers)
	teams.PATCH("/:id/members/me", teamH.UpdateMyMembership)
	teams.POST("/:id/invite/send", teamH.SendInvite)
	teams.POST("/:id/cycles", cycleH.Launch)
	teams.POST("/:id/cycles/close", cycleH.Close)
	teams.GET("/:id/cycles", cycleH.List)
	teams.GET("/:id/cycles/active", cycleH.GetActive)
	teams.GET("/:id/metrics", adviceH.TeamMetrics)
	teams.GET("/:id/advice", adviceH.TeamAdvice)
	teams.GET("/:id/events", eventsH.Stream)

	cycles := authed.Group("/cycles")
	cycles.POST("/:id/responses", respH.Submit)
	cycles.GET("/:id/participation", respH.Participation)

	authed.POST("/responses", respH.SubmitIndividual)

	me := authed.Group("/me")
	me.GET("/responses", respH.ListMine)
	me.POST("/advice", adviceH.MyAdvice)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
