package discord

import (
	"github.com/foxseedlab/boothscan/internal/alert"
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/samber/do/v2"
)

const ServiceName = "alert.discord"

func RegisterDI(injector do.Injector) {
	do.ProvideNamed(injector, ServiceName, func(i do.Injector) (alert.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		if !c.DiscordAlertsEnabled() {
			return alert.Fanout{}, nil
		}
		return NewAlertChannel(c.DiscordToken, c.DiscordAlertChannelID)
	})
}
