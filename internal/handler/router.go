package handler

import (
	"github.com/evently/backend/internal/metrics"
	"github.com/evently/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Auth           *service.AuthService
	Events         *service.EventService
	Metrics        *metrics.Metrics
	Log            zerolog.Logger
	AllowedOrigins []string
}

// NewRouter mounts every route on a fresh gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Recovery(deps.Log),
		RequestLogger(deps.Log),
		CORSMiddleware(deps.AllowedOrigins, false),
	)
	if deps.Metrics != nil {
		router.Use(Instrument(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// 건강 체크 및 테스트용 기본 엔드포인트
	router.GET("/ping", Ping)
	router.GET("/", Root)

	authn := NewAuthenticator(deps.Auth.Tokens(), deps.Metrics, deps.Log)
	authHandler := NewAuthHandler(deps.Auth, deps.Metrics, deps.Log)
	eventHandler := NewEventHandler(deps.Events, deps.Log)

	users := router.Group("/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
		users.POST("/refresh-token", authHandler.Refresh)
		users.GET("/me", authn.Authenticate(), authHandler.Me)
		users.DELETE("/me", authn.Authenticate(), authHandler.DeleteMe)
	}

	events := router.Group("/events")
	{
		events.GET("", authn.OptionalAuth(), eventHandler.ListEvents)
		events.GET("/:id", authn.OptionalAuth(), eventHandler.GetEvent)
		events.POST("", authn.Authenticate(), eventHandler.CreateEvent)
		events.PUT("/:id", authn.Authenticate(), eventHandler.UpdateEvent)
		events.DELETE("/:id", authn.Authenticate(), eventHandler.DeleteEvent)
		events.POST("/:id/register", authn.Authenticate(), eventHandler.RegisterParticipant)
	}

	return router
}
