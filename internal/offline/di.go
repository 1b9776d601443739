package offline

import (
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/foxseedlab/boothscan/internal/scan"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Coordinator, error) {
		queue := do.MustInvoke[Queue](i)
		classifier := do.MustInvoke[*scan.Classifier](i)
		repo := do.MustInvoke[repository.Repository](i)
		return NewCoordinator(queue, classifier, repo, classifier.Messages()), nil
	})
	do.Provide(injector, func(i do.Injector) (*Monitor, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		coordinator := do.MustInvoke[*Coordinator](i)
		return NewMonitor(repo, coordinator, cfg.ConnectivityProbeInterval), nil
	})
}
