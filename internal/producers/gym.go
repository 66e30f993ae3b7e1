package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// FacilityCount is the live usage of one gym area.
type FacilityCount struct {
	Facility  string
	Location  string
	Count     int
	UpdatedAt string
}

// GymClient queries the recreation department's live facility counts.
type GymClient struct {
	baseURL string
	apiKey  string
	client  *client
}

// NewGymClient builds a gym occupancy client.
func NewGymClient(baseURL, apiKey string, timeout time.Duration, log *logrus.Logger) *GymClient {
	return &GymClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  newClient("gym", timeout, log),
	}
}

type facilityCountResponse []struct {
	FacilityName  string `json:"FacilityName"`
	LocationName  string `json:"LocationName"`
	LastCount     int    `json:"LastCount"`
	LastUpdatedAt string `json:"LastUpdatedDateAndTime"`
}

// Occupancy fetches live usage for every tracked gym area, busiest first.
func (g *GymClient) Occupancy(ctx context.Context) ([]FacilityCount, error) {
	endpoint := fmt.Sprintf("%s/GetCountsByAccount?AccountAPIKey=%s", g.baseURL, g.apiKey)

	body, err := g.client.get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("gym occupancy fetch failed: %w", err)
	}

	var parsed facilityCountResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode gym occupancy response: %w", err)
	}

	counts := make([]FacilityCount, 0, len(parsed))
	for _, f := range parsed {
		counts = append(counts, FacilityCount{
			Facility:  f.FacilityName,
			Location:  f.LocationName,
			Count:     f.LastCount,
			UpdatedAt: f.LastUpdatedAt,
		})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}
