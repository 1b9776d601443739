package webhook

import (
	"github.com/foxseedlab/boothscan/internal/alert"
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/samber/do/v2"
)

const ServiceName = "alert.webhook"

func RegisterDI(injector do.Injector) {
	do.ProvideNamed(injector, ServiceName, func(i do.Injector) (alert.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPSender(c.OperatorWebhookURL), nil
	})
}
