package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// HelpCommand lists every registered command with its description.
type HelpCommand struct {
	registry  *Registry
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewHelpCommand builds the help command over a registry.
func NewHelpCommand(registry *Registry, transport interfaces.ReplyTransport, log *logrus.Logger) *HelpCommand {
	return &HelpCommand{registry: registry, transport: transport, log: log}
}

func (c *HelpCommand) Name() string { return "help" }

func (c *HelpCommand) Description() string {
	return "Lists every available command"
}

func (c *HelpCommand) Handle(ctx context.Context, ev types.CommandEvent) {
	var b strings.Builder
	for _, h := range c.registry.List() {
		fmt.Fprintf(&b, "`/%s` %s\n", h.Name(), h.Description())
	}

	page := types.Page{
		Title:       "Commands",
		Description: b.String(),
		Color:       badgerRed,
	}
	if _, err := c.transport.Reply(ctx, ev.ID, types.Reply{Page: &page, Ephemeral: true}); err != nil {
		c.log.WithError(err).Warn("failed to send help reply")
	}
}
