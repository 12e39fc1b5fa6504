package handlers

import (
	"net/http"

	_ "session_auth/docs"
	"session_auth/internal/logger"
	"session_auth/internal/service"
	"session_auth/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultMinPasswordLength = 4

// Options holds HTTP-layer tuning knobs.
type Options struct {
	MinPasswordLength int
	CORSOrigins       []string
}

// Handler wires HTTP layer to services, the session cookie and logging.
type Handler struct {
	services *service.Service
	cookie   *session.Cookie
	opts     Options
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. log may be nil.
func NewHandler(services *service.Service, cookie *session.Cookie, opts Options, log *logger.Logger) *Handler {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = defaultMinPasswordLength
	}
	return &Handler{services: services, cookie: cookie, opts: opts, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	if len(h.opts.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = h.opts.CORSOrigins
		// session cookie must travel on cross-origin requests
		corsConfig.AllowCredentials = true
		router.Use(cors.New(corsConfig))
	}

	router.Use(h.errorHandler)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register",
			h.guarded(h.checkPasswordLength, h.checkCredentials, h.checkUsernameFree),
			h.register,
		)
		auth.POST("/login", h.guarded(h.checkUsernameExists), h.login)
		auth.GET("/logout", h.logout)
	}
}

// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
