package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/components"
	"badgerbot/internal/dispatch"
	"badgerbot/internal/producers"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// ProfessorLookup resolves an instructor profile by name.
type ProfessorLookup interface {
	LookupProfessor(ctx context.Context, name string) (*producers.Professor, error)
}

// ProfessorCommand shows an instructor's rating profile and offers a
// per-course student ratings browser.
type ProfessorCommand struct {
	ratings   ProfessorLookup
	pager     *dispatch.Paginator
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewProfessorCommand builds the professor command.
func NewProfessorCommand(ratings ProfessorLookup, pager *dispatch.Paginator, transport interfaces.ReplyTransport, log *logrus.Logger) *ProfessorCommand {
	return &ProfessorCommand{ratings: ratings, pager: pager, transport: transport, log: log}
}

func (c *ProfessorCommand) Name() string { return "professor" }

func (c *ProfessorCommand) Description() string {
	return "Displays an instructor's ratings profile"
}

func (c *ProfessorCommand) Handle(ctx context.Context, ev types.CommandEvent) {
	name := strings.TrimSpace(ev.Options["name"])
	if name == "" {
		c.replyEphemeral(ctx, ev.ID, "Give me an instructor name to look up.")
		return
	}

	prof, err := c.ratings.LookupProfessor(ctx, name)
	if err != nil {
		c.log.WithError(err).Error("professor lookup failed")
		c.replyEphemeral(ctx, ev.ID, "An error has occurred. Please try again later.")
		return
	}
	if prof == nil {
		c.replyEphemeral(ctx, ev.ID, fmt.Sprintf("Could not find `%s`!", name))
		return
	}

	page := ProfessorPage(prof)
	if len(prof.CoursesTaught) == 0 {
		if _, err := c.transport.Reply(ctx, ev.ID, types.Reply{Page: &page}); err != nil {
			c.log.WithError(err).Warn("failed to send reply")
		}
		return
	}

	// The select menu shown after the button press can hold at most 25
	// choices, so the course list is capped up front.
	options := make([]string, 0, len(prof.CoursesTaught))
	for _, course := range prof.CoursesTaught {
		if len(options) == types.MaxControlsPerMessage {
			break
		}
		options = append(options, types.EncodeValue(course, prof.FullName()))
	}

	items := []components.ActionItem{{Payload: prof.ID, Label: "Student Ratings"}}
	if err := c.pager.RespondWithActions(ctx, ev.ID, ev.UserID, page, types.RoleRatingsMenu, items, options); err != nil {
		c.log.WithError(err).Error("failed to send professor profile")
		c.replyEphemeral(ctx, ev.ID, "An error has occurred. Please try again later.")
	}
}

func (c *ProfessorCommand) replyEphemeral(ctx context.Context, interactionID, content string) {
	if err := c.transport.ReplyEphemeral(ctx, interactionID, content); err != nil {
		c.log.WithError(err).Warn("failed to send reply")
	}
}
