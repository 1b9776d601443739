package alert

import (
	"fmt"

	"github.com/samber/do/v2"
)

// RegisterDI provides the Sender used by the scan engine: a fan-out over the
// named senders registered by the external adapters.
func RegisterDI(injector do.Injector, senderNames ...string) {
	do.Provide(injector, func(i do.Injector) (Sender, error) {
		fanout := make(Fanout, 0, len(senderNames))
		for _, name := range senderNames {
			s, err := do.InvokeNamed[Sender](i, name)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve alert sender %s: %w", name, err)
			}
			fanout = append(fanout, s)
		}
		return fanout, nil
	})
}
