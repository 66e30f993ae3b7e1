package producers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// GuideCourse is course information scraped from the public course guide.
// Used as the fallback when the local catalog has no row for a course.
type GuideCourse struct {
	Title       string
	Credits     string
	Description string
	Requisites  string
	Designation string
	Repeatable  string
	LastTaught  string
}

// GuideClient scrapes the university's public course guide.
type GuideClient struct {
	baseURL string
	client  *client
	log     *logrus.Logger
}

// NewGuideClient builds a course guide scraper.
func NewGuideClient(baseURL string, timeout time.Duration, log *logrus.Logger) *GuideClient {
	return &GuideClient{
		baseURL: baseURL,
		client:  newClient("guide", timeout, log),
		log:     log,
	}
}

// Lookup scrapes the guide page for a subject and picks the block matching
// the course number. A nil result with nil error means the guide has no such
// course.
func (g *GuideClient) Lookup(ctx context.Context, subject, number string) (*GuideCourse, error) {
	endpoint := fmt.Sprintf("%s/courses/%s/", g.baseURL, url.PathEscape(strings.ToLower(subject)))

	body, err := g.client.get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("course guide fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse course guide page: %w", err)
	}

	var course *GuideCourse
	doc.Find("div.sc_sccoursedescs div.courseblock").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		title := strings.TrimSpace(block.Find("p.courseblocktitle").Text())
		if !strings.Contains(title, number) {
			return true
		}

		course = &GuideCourse{
			Title:       title,
			Credits:     strings.TrimSpace(block.Find("p.courseblockcredits").Text()),
			Description: strings.TrimSpace(block.Find("p.courseblockdesc").Text()),
		}

		// The extras block lists requisites, designation, repeatability and
		// last-taught term; designation is absent on some courses.
		extras := block.Find("div.cb-extras p.courseblockextra span.cbextra-data")
		values := make([]string, 0, extras.Length())
		extras.Each(func(_ int, s *goquery.Selection) {
			values = append(values, strings.TrimSpace(s.Text()))
		})

		switch {
		case len(values) >= 4:
			course.Requisites = values[0]
			course.Designation = values[1]
			course.Repeatable = values[2]
			course.LastTaught = values[3]
		case len(values) == 3:
			course.Requisites = values[0]
			course.Repeatable = values[1]
			course.LastTaught = values[2]
		case len(values) > 0:
			course.Requisites = values[0]
		}
		return false
	})

	return course, nil
}
