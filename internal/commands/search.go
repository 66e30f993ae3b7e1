package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/components"
	"badgerbot/internal/dispatch"
	"badgerbot/internal/producers"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// CourseSearcher finds courses for a free-form query.
type CourseSearcher interface {
	SearchCourses(ctx context.Context, query string) ([]producers.CourseResult, error)
}

// SearchCommand queries courses and shows the top results with one detail
// button per hit.
type SearchCommand struct {
	searcher  CourseSearcher
	pager     *dispatch.Paginator
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewSearchCommand builds the search command.
func NewSearchCommand(searcher CourseSearcher, pager *dispatch.Paginator, transport interfaces.ReplyTransport, log *logrus.Logger) *SearchCommand {
	return &SearchCommand{searcher: searcher, pager: pager, transport: transport, log: log}
}

func (c *SearchCommand) Name() string { return "search" }

func (c *SearchCommand) Description() string {
	return "Queries courses and displays the top results"
}

func (c *SearchCommand) Handle(ctx context.Context, ev types.CommandEvent) {
	query := ev.Options["query"]
	if query == "" {
		c.replyEphemeral(ctx, ev.ID, "Give me something to search for.")
		return
	}

	results, err := c.searcher.SearchCourses(ctx, query)
	if err != nil {
		c.log.WithError(err).Error("course search failed")
		results = nil
	}
	if len(results) == 0 {
		c.replyEphemeral(ctx, ev.ID, "No results found.")
		return
	}

	items := make([]components.ActionItem, 0, len(results))
	for _, r := range results {
		items = append(items, components.ActionItem{
			Payload: types.EncodeValue(r.Subject, r.Number),
			Label:   fmt.Sprintf("%s %s", r.Subject, r.Number),
		})
	}

	page := SearchResultsPage(query, results)
	if err := c.pager.RespondWithActions(ctx, ev.ID, ev.UserID, page, types.RoleCourseDetail, items, nil); err != nil {
		c.log.WithError(err).Error("failed to send search results")
		c.replyEphemeral(ctx, ev.ID, "An error has occurred. Please try again later.")
	}
}

func (c *SearchCommand) replyEphemeral(ctx context.Context, interactionID, content string) {
	if err := c.transport.ReplyEphemeral(ctx, interactionID, content); err != nil {
		c.log.WithError(err).Warn("failed to send reply")
	}
}
