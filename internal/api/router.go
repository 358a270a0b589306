package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/playhouse/roomhub/internal/api/docs"
	"github.com/playhouse/roomhub/internal/api/handler"
	"github.com/playhouse/roomhub/internal/api/middleware"
	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Auth      ports.AuthService
	Catalog   ports.CatalogService
	Purchases ports.PurchaseService
	Inventory ports.InventoryService
	Ledger    ports.LedgerService
	Rooms     ports.RoomService
	Presence  ports.PresenceService
	Feed      handler.RoomFeed

	// Checks are pinged by the readiness probe.
	Checks map[string]handler.Check

	JWTSecret string
	Log       zerolog.Logger

	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "roomhub",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	shopHandler := handler.NewShopHandler(d.Catalog, d.Purchases, d.Inventory, d.Ledger)
	roomHandler := handler.NewRoomHandler(d.Rooms, d.Presence, d.Auth, d.Feed)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1.GET("/me", authHandler.Me)

	v1.GET("/catalog", shopHandler.ListCatalog)
	v1.POST("/catalog", shopHandler.AddCatalogItem, adminOnly)
	v1.POST("/purchases", shopHandler.Buy)
	v1.GET("/inventory", shopHandler.Inventory)
	v1.POST("/users/:id/credit", shopHandler.Credit, adminOnly)
	v1.GET("/admin/purchases/unreconciled", shopHandler.Unreconciled, adminOnly)

	v1.POST("/rooms", roomHandler.Create)
	v1.GET("/rooms", roomHandler.Active)
	v1.GET("/rooms/:id", roomHandler.Get)
	v1.POST("/rooms/:id/start", roomHandler.Start)
	v1.POST("/rooms/:id/join", roomHandler.Join)
	v1.POST("/presence/leave", roomHandler.Leave)
	v1.GET("/rooms/:id/ws", roomHandler.Stream)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
