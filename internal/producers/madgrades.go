package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// CourseResult is one hit from the course search API.
type CourseResult struct {
	Subject string
	Number  string
	Name    string
}

// MadgradesClient queries the madgrades course search API.
type MadgradesClient struct {
	baseURL string
	apiKey  string
	client  *client
}

// NewMadgradesClient builds a course search client.
func NewMadgradesClient(baseURL, apiKey string, timeout time.Duration, log *logrus.Logger) *MadgradesClient {
	return &MadgradesClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  newClient("madgrades", timeout, log),
	}
}

type madgradesSearchResponse struct {
	Results []struct {
		Number   json.Number `json:"number"`
		Name     string      `json:"name"`
		Subjects []struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"subjects"`
	} `json:"results"`
}

// SearchCourses returns up to ten course hits for a free-form query. An empty
// slice means no results; callers render that as "No results found."
func (m *MadgradesClient) SearchCourses(ctx context.Context, query string) ([]CourseResult, error) {
	endpoint := fmt.Sprintf("%s/courses?query=%s", m.baseURL, url.QueryEscape(query))

	body, err := m.client.get(ctx, endpoint, map[string]string{
		"Authorization": "Token " + m.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("course search failed: %w", err)
	}

	var parsed madgradesSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode course search response: %w", err)
	}

	results := make([]CourseResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if len(r.Subjects) == 0 {
			continue
		}
		results = append(results, CourseResult{
			Subject: r.Subjects[0].Abbreviation,
			Number:  r.Number.String(),
			Name:    r.Name,
		})
		if len(results) == 10 {
			break
		}
	}
	return results, nil
}
