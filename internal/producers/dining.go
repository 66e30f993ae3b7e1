package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MealMenu is the served items for one meal at one dining market.
type MealMenu struct {
	Meal  string
	Items map[string][]string // station -> food names
}

// DiningClient queries the dining service menu API.
type DiningClient struct {
	baseURL string
	client  *client
}

// NewDiningClient builds a dining menu client.
func NewDiningClient(baseURL string, timeout time.Duration, log *logrus.Logger) *DiningClient {
	return &DiningClient{
		baseURL: baseURL,
		client:  newClient("dining", timeout, log),
	}
}

var mealTypes = []string{"breakfast", "lunch", "dinner"}

type menuResponse struct {
	Days []struct {
		Date      string `json:"date"`
		MenuItems []struct {
			Food *struct {
				Name string `json:"name"`
			} `json:"food"`
			Station string `json:"station,omitempty"`
			Text    string `json:"text"`
		} `json:"menu_items"`
	} `json:"days"`
}

// DailyMenus fetches today's menus for a dining market, one fetch per meal
// type, issued concurrently. Meals whose menu is empty are omitted; all three
// empty yields an empty slice.
func (d *DiningClient) DailyMenus(ctx context.Context, market string, day time.Time) ([]MealMenu, error) {
	date := day.Format("2006/01/02")

	var mu sync.Mutex
	menus := make(map[string]MealMenu, len(mealTypes))

	g, gctx := errgroup.WithContext(ctx)
	for _, meal := range mealTypes {
		meal := meal
		g.Go(func() error {
			menu, err := d.fetchMeal(gctx, market, meal, date)
			if err != nil {
				return err
			}
			if len(menu.Items) > 0 {
				mu.Lock()
				menus[meal] = menu
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]MealMenu, 0, len(menus))
	for _, meal := range mealTypes {
		if m, ok := menus[meal]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

func (d *DiningClient) fetchMeal(ctx context.Context, market, meal, date string) (MealMenu, error) {
	endpoint := fmt.Sprintf("%s/menu/api/weeks/school/%s/menu-type/%s/%s/", d.baseURL, market, meal, date)

	body, err := d.client.get(ctx, endpoint, nil)
	if err != nil {
		return MealMenu{}, fmt.Errorf("dining menu fetch (%s) failed: %w", meal, err)
	}

	var parsed menuResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return MealMenu{}, fmt.Errorf("failed to decode dining menu (%s): %w", meal, err)
	}

	menu := MealMenu{Meal: meal, Items: make(map[string][]string)}
	wanted := strings.ReplaceAll(date, "/", "-")
	for _, dayEntry := range parsed.Days {
		if dayEntry.Date != wanted {
			continue
		}
		station := "General"
		for _, item := range dayEntry.MenuItems {
			// Station headers arrive as text-only rows preceding their foods.
			if item.Food == nil {
				if item.Text != "" {
					station = item.Text
				}
				continue
			}
			menu.Items[station] = append(menu.Items[station], item.Food.Name)
		}
	}

	for station := range menu.Items {
		sort.Strings(menu.Items[station])
	}
	return menu, nil
}
