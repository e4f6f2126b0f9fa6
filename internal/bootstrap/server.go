package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/eleven-am/voice-client/internal/gateway"
	"github.com/eleven-am/voice-client/internal/health"
)

var defaultCORSConfig = middleware.CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodOptions,
	},
	AllowHeaders: []string{
		"Accept",
		"Authorization",
		"Content-Type",
	},
	MaxAge: 86400,
}

func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func NewEchoServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(defaultCORSConfig))
	return e
}

func NewGatewayConfig(cfg *Config) gateway.Config {
	return gateway.Config{
		APIBase:   cfg.APIBase,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Voice:     cfg.Voice,
		ChatModel: cfg.ChatModel,
	}
}

func NewHealthHandler(cfg *Config) *health.Handler {
	return health.NewHandler(cfg.APIBase)
}

func RegisterRoutes(e *echo.Echo, gw *gateway.Handler, hh *health.Handler) {
	hh.RegisterRoutes(e)
	gw.RegisterRoutes(e.Group("/api/v1"))
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

var ServerModule = fx.Options(
	fx.Provide(NewEchoServer, NewGatewayConfig, NewHealthHandler),
	fx.Invoke(RegisterRoutes, StartServer),
)

// Run starts the credential/completion service and blocks until shutdown.
func Run() {
	fx.New(
		fx.Provide(LoadConfig, NewLogger),
		gateway.Module,
		ServerModule,
	).Run()
}
