package commands

import (
	"context"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/producers"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// OccupancyFetcher fetches live headcounts for recreation facilities.
type OccupancyFetcher interface {
	Occupancy(ctx context.Context) ([]producers.FacilityCount, error)
}

// GymCommand shows live occupancy for the recreation facilities.
type GymCommand struct {
	gym       OccupancyFetcher
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewGymCommand builds the gym command.
func NewGymCommand(gym OccupancyFetcher, transport interfaces.ReplyTransport, log *logrus.Logger) *GymCommand {
	return &GymCommand{gym: gym, transport: transport, log: log}
}

func (c *GymCommand) Name() string { return "gym" }

func (c *GymCommand) Description() string {
	return "Displays live occupancy for recreation facilities"
}

func (c *GymCommand) Handle(ctx context.Context, ev types.CommandEvent) {
	counts, err := c.gym.Occupancy(ctx)
	if err != nil {
		c.log.WithError(err).Error("gym occupancy fetch failed")
		if err := c.transport.ReplyEphemeral(ctx, ev.ID, "An error has occurred. Unable to fetch gym occupancy at this time, please try again later!"); err != nil {
			c.log.WithError(err).Warn("failed to send reply")
		}
		return
	}

	page := GymPage(counts)
	if _, err := c.transport.Reply(ctx, ev.ID, types.Reply{Page: &page}); err != nil {
		c.log.WithError(err).Warn("failed to send reply")
	}
}
