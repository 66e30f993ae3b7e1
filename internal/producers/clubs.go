package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// StudentOrg is one registered student organization.
type StudentOrg struct {
	Name       string
	Summary    string
	Categories []string
	WebsiteKey string
}

// ClubClient queries the student-organization directory.
type ClubClient struct {
	baseURL string
	client  *client
}

// NewClubClient builds a student-org search client.
func NewClubClient(baseURL string, timeout time.Duration, log *logrus.Logger) *ClubClient {
	return &ClubClient{
		baseURL: baseURL,
		client:  newClient("clubs", timeout, log),
	}
}

type orgSearchResponse struct {
	Value []struct {
		Name          string   `json:"Name"`
		Summary       string   `json:"Summary"`
		CategoryNames []string `json:"CategoryNames"`
		WebsiteKey    string   `json:"WebsiteKey"`
	} `json:"value"`
}

// Search returns organizations matching the query keyword.
func (c *ClubClient) Search(ctx context.Context, query string) ([]StudentOrg, error) {
	endpoint := fmt.Sprintf("%s?top=50&query=%s&skip=0", c.baseURL, url.QueryEscape(query))

	body, err := c.client.get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("student org search failed: %w", err)
	}

	var parsed orgSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode student org response: %w", err)
	}

	orgs := make([]StudentOrg, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		orgs = append(orgs, StudentOrg{
			Name:       v.Name,
			Summary:    v.Summary,
			Categories: v.CategoryNames,
			WebsiteKey: v.WebsiteKey,
		})
	}
	return orgs, nil
}
