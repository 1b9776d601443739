package scan

import (
	"github.com/foxseedlab/boothscan/internal/alert"
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/foxseedlab/boothscan/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Classifier, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		alerts := do.MustInvoke[alert.Sender](i)
		return NewClassifier(cfg, repo, alerts)
	})
}
