package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/shopfront/catalog-api/internal/api/handler"
	"github.com/shopfront/catalog-api/internal/api/middleware"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

const loginLimiterExpiry = 3 * time.Minute

// Dependencies is everything the HTTP layer needs from the composition root.
type Dependencies struct {
	ProjectName string
	APIPrefix   string
	CORSOrigins []string
	// LoginRateLimit is login attempts per second per client IP; 0 disables the limiter.
	LoginRateLimit float64

	Auth    ports.AuthService
	Access  ports.AccessControl
	Catalog ports.CatalogService
	// Probes are pinged by the readiness endpoint, keyed by dependency name.
	Probes map[string]ports.Pinger

	// Registerer and Gatherer back the HTTP metrics and GET /metrics.
	// A nil Registerer disables both.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderOrigin},
	}))

	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "catalog",
			Subsystem:  "http",
			Registerer: deps.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
			DoNotUseRequestPathFor404: true,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	categoryHandler := handler.NewCategoryHandler(deps.Catalog)
	productHandler := handler.NewProductHandler(deps.Catalog)
	healthHandler := handler.NewHealthHandler(deps.Probes, deps.Log)

	authenticated := []echo.MiddlewareFunc{middleware.Auth(deps.Access), middleware.RequireActive()}
	adminOnly := []echo.MiddlewareFunc{middleware.Auth(deps.Access), middleware.RequireActive(), middleware.RequireAdmin()}

	// --- Unversioned routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to " + deps.ProjectName})
	})
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group(deps.APIPrefix)

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login, loginLimiter(deps.LoginRateLimit)...)
	auth.GET("/me", authHandler.Me, authenticated...)

	// --- Catalog routes ---
	products := v1.Group("/products")
	products.GET("/categories", categoryHandler.List)
	products.POST("/categories", categoryHandler.Create, adminOnly...)
	products.DELETE("/categories/:id", categoryHandler.Delete, adminOnly...)

	products.GET("", productHandler.List)
	products.POST("", productHandler.Create, adminOnly...)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update, adminOnly...)
	products.PATCH("/:id", productHandler.Update, adminOnly...)
	products.DELETE("/:id", productHandler.Delete, adminOnly...)

	return e
}

// loginLimiter throttles credential guessing per client IP.
func loginLimiter(perSecond float64) []echo.MiddlewareFunc {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: loginLimiterExpiry,
	})
	return []echo.MiddlewareFunc{echomiddleware.RateLimiter(store)}
}
