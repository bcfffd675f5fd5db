package http

import (
	"log/slog"

	"github.com/dandedj/csp-client/internal/adapters/valkey"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/core/usecases"
	"github.com/dandedj/csp-client/internal/pkg/config"
)

// Dependencies holds the services shared by every HTTP handler. Map
// sessions additionally build their own per-connection load controller
// on top of Source, since load state is private to one viewer.
type Dependencies struct {
	Source   ports.PlaqueSource
	Detail   *usecases.DetailService
	Boundary ports.BoundaryProvider
	Policy   usecases.DensityPolicy
	Cache    *valkey.Cache
	Cfg      *config.Config
	Log      *slog.Logger
}
