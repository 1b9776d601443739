package httpapi

import (
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/foxseedlab/boothscan/internal/offline"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		coordinator := do.MustInvoke[*offline.Coordinator](i)
		return NewServer(cfg.HTTPAddr, coordinator), nil
	})
}
