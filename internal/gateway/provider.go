package gateway

import (
	"log/slog"

	"go.uber.org/fx"
)

func ProvideHandler(cfg Config, logger *slog.Logger) *Handler {
	return NewHandler(cfg, logger.With("handler", "gateway"))
}

var Module = fx.Options(
	fx.Provide(ProvideHandler),
)
