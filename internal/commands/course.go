package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/database"
	"badgerbot/internal/producers"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// GuideLookup scrapes the course guide when the local catalog has no entry.
type GuideLookup interface {
	Lookup(ctx context.Context, subject, number string) (*producers.GuideCourse, error)
}

// CourseCommand resolves a single course by subject and number.
type CourseCommand struct {
	catalog   *database.Manager
	guide     GuideLookup
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewCourseCommand builds the course command.
func NewCourseCommand(catalog *database.Manager, guide GuideLookup, transport interfaces.ReplyTransport, log *logrus.Logger) *CourseCommand {
	return &CourseCommand{catalog: catalog, guide: guide, transport: transport, log: log}
}

func (c *CourseCommand) Name() string { return "course" }

func (c *CourseCommand) Description() string {
	return "Displays details for a course by subject and number"
}

func (c *CourseCommand) Handle(ctx context.Context, ev types.CommandEvent) {
	subject := strings.ToUpper(strings.TrimSpace(ev.Options["subject"]))
	number := strings.TrimSpace(ev.Options["number"])
	if subject == "" || number == "" {
		c.replyEphemeral(ctx, ev.ID, "I need both a subject and a course number.")
		return
	}

	course, err := c.catalog.GetCourse(ctx, subject, number)
	if err == nil {
		c.reply(ctx, ev.ID, CoursePage(course))
		return
	}
	if !errors.Is(err, database.ErrCourseNotFound) {
		c.log.WithError(err).Error("catalog lookup failed")
		c.replyEphemeral(ctx, ev.ID, "An error has occurred. Unable to fetch courses at this time, please try again later!")
		return
	}

	guideCourse, err := c.guide.Lookup(ctx, subject, number)
	if err != nil {
		c.log.WithError(err).Error("guide lookup failed")
		c.replyEphemeral(ctx, ev.ID, "An error has occurred. Unable to fetch courses at this time, please try again later!")
		return
	}
	if guideCourse == nil {
		c.replyEphemeral(ctx, ev.ID, fmt.Sprintf("Could not find `%s %s`!", subject, number))
		return
	}
	c.reply(ctx, ev.ID, GuideCoursePage(guideCourse))
}

func (c *CourseCommand) reply(ctx context.Context, interactionID string, page types.Page) {
	if _, err := c.transport.Reply(ctx, interactionID, types.Reply{Page: &page}); err != nil {
		c.log.WithError(err).Warn("failed to send reply")
	}
}

func (c *CourseCommand) replyEphemeral(ctx context.Context, interactionID, content string) {
	if err := c.transport.ReplyEphemeral(ctx, interactionID, content); err != nil {
		c.log.WithError(err).Warn("failed to send reply")
	}
}
