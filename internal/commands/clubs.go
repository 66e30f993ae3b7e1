package commands

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/dispatch"
	"badgerbot/internal/producers"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// OrgSearcher searches the student organization directory.
type OrgSearcher interface {
	Search(ctx context.Context, query string) ([]producers.StudentOrg, error)
}

// ClubsCommand searches student organizations and pages through the results.
type ClubsCommand struct {
	orgs      OrgSearcher
	pager     *dispatch.Paginator
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewClubsCommand builds the clubs command.
func NewClubsCommand(orgs OrgSearcher, pager *dispatch.Paginator, transport interfaces.ReplyTransport, log *logrus.Logger) *ClubsCommand {
	return &ClubsCommand{orgs: orgs, pager: pager, transport: transport, log: log}
}

func (c *ClubsCommand) Name() string { return "clubs" }

func (c *ClubsCommand) Description() string {
	return "Searches student organizations"
}

func (c *ClubsCommand) Handle(ctx context.Context, ev types.CommandEvent) {
	query := strings.TrimSpace(ev.Options["query"])
	if query == "" {
		if err := c.transport.ReplyEphemeral(ctx, ev.ID, "Give me something to search for."); err != nil {
			c.log.WithError(err).Warn("failed to send reply")
		}
		return
	}

	orgs, err := c.orgs.Search(ctx, query)
	if err != nil {
		c.log.WithError(err).Error("student org search failed")
		if err := c.transport.ReplyEphemeral(ctx, ev.ID, "An error has occurred. Unable to fetch student organizations at this time, please try again later!"); err != nil {
			c.log.WithError(err).Warn("failed to send reply")
		}
		return
	}

	pages := ClubPages(query, orgs)
	if err := c.pager.Respond(ctx, ev.ID, ev.UserID, pages); err != nil {
		c.log.WithError(err).Error("failed to send org search results")
	}
}
