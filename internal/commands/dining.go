package commands

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/dispatch"
	"badgerbot/internal/producers"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// MenuFetcher fetches the menus for a dining market on a given day.
type MenuFetcher interface {
	DailyMenus(ctx context.Context, market string, day time.Time) ([]producers.MealMenu, error)
}

// DiningCommand shows today's menus for a dining market, one page per meal.
type DiningCommand struct {
	menus     MenuFetcher
	pager     *dispatch.Paginator
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewDiningCommand builds the dining command.
func NewDiningCommand(menus MenuFetcher, pager *dispatch.Paginator, transport interfaces.ReplyTransport, log *logrus.Logger) *DiningCommand {
	return &DiningCommand{menus: menus, pager: pager, transport: transport, log: log}
}

func (c *DiningCommand) Name() string { return "dining" }

func (c *DiningCommand) Description() string {
	return "Displays today's menus for a dining market"
}

func (c *DiningCommand) Handle(ctx context.Context, ev types.CommandEvent) {
	market := strings.TrimSpace(ev.Options["market"])
	if market == "" {
		c.replyEphemeral(ctx, ev.ID, "Give me a dining market to look up.")
		return
	}

	menus, err := c.menus.DailyMenus(ctx, market, time.Now())
	if err != nil {
		c.log.WithError(err).Error("dining menu fetch failed")
		c.replyEphemeral(ctx, ev.ID, "An error has occurred. Unable to fetch menus at this time, please try again later!")
		return
	}

	pages := DiningPages(market, menus)
	if err := c.pager.Respond(ctx, ev.ID, ev.UserID, pages); err != nil {
		c.log.WithError(err).Error("failed to send dining menus")
	}
}

func (c *DiningCommand) replyEphemeral(ctx context.Context, interactionID, content string) {
	if err := c.transport.ReplyEphemeral(ctx, interactionID, content); err != nil {
		c.log.WithError(err).Warn("failed to send reply")
	}
}
