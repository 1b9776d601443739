package queue

import (
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/foxseedlab/boothscan/internal/offline"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*SQLiteQueue, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return Open(cfg.OfflineQueuePath)
	})
	do.Provide(injector, func(i do.Injector) (offline.Queue, error) {
		return do.MustInvoke[*SQLiteQueue](i), nil
	})
}
