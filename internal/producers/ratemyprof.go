package producers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// schoolID is the GraphQL node id of the university on the ratings site.
const schoolID = "U2Nob29sLTE4NDE4"

// Professor is the aggregate rating profile for one instructor.
type Professor struct {
	ID                    string
	LegacyID              string
	FirstName             string
	LastName              string
	Department            string
	AvgRating             float64
	AvgDifficulty         float64
	NumRatings            int
	WouldTakeAgainPercent float64
	TopTags               []string
	CoursesTaught         []string
}

// FullName returns the professor's display name.
func (p *Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}

// StudentRating is one student review of a professor for one course.
type StudentRating struct {
	Course         string
	Quality        int
	Difficulty     int
	Comment        string
	Grade          string
	Date           string
	Tags           []string
	ThumbsUp       int
	ThumbsDown     int
	WouldTakeAgain bool
}

// RateMyProfClient talks to the professor ratings GraphQL endpoint.
type RateMyProfClient struct {
	endpoint string
	apiKey   string
	client   *client
}

// NewRateMyProfClient builds a ratings client. The key is sent as basic auth,
// matching the public site's own frontend.
func NewRateMyProfClient(endpoint, apiKey string, timeout time.Duration, log *logrus.Logger) *RateMyProfClient {
	return &RateMyProfClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   newClient("ratemyprof", timeout, log),
	}
}

func (r *RateMyProfClient) graphql(ctx context.Context, query string, variables map[string]interface{}) ([]byte, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return r.client.do(req)
}

const teacherSearchQuery = `
query TeacherSearch($query: TeacherSearchQuery!) {
  search: newSearch {
    teachers(query: $query, first: 1) {
      edges {
        node {
          id
          legacyId
          firstName
          lastName
          department
          avgRating
          avgDifficulty
          numRatings
          wouldTakeAgainPercent
          teacherRatingTags { tagName tagCount }
          courseCodes { courseName }
        }
      }
    }
  }
}`

type teacherSearchResponse struct {
	Data struct {
		Search struct {
			Teachers struct {
				Edges []struct {
					Node struct {
						ID                    string      `json:"id"`
						LegacyID              json.Number `json:"legacyId"`
						FirstName             string      `json:"firstName"`
						LastName              string      `json:"lastName"`
						Department            string      `json:"department"`
						AvgRating             float64     `json:"avgRating"`
						AvgDifficulty         float64     `json:"avgDifficulty"`
						NumRatings            int         `json:"numRatings"`
						WouldTakeAgainPercent float64     `json:"wouldTakeAgainPercent"`
						TeacherRatingTags     []struct {
							TagName  string `json:"tagName"`
							TagCount int    `json:"tagCount"`
						} `json:"teacherRatingTags"`
						CourseCodes []struct {
							CourseName string `json:"courseName"`
						} `json:"courseCodes"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"teachers"`
		} `json:"search"`
	} `json:"data"`
}

// LookupProfessor resolves the best-matching professor for a name query.
// A nil result with nil error means no match at this school.
func (r *RateMyProfClient) LookupProfessor(ctx context.Context, name string) (*Professor, error) {
	body, err := r.graphql(ctx, teacherSearchQuery, map[string]interface{}{
		"query": map[string]interface{}{
			"text":     name,
			"schoolID": schoolID,
			"fallback": false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("professor lookup failed: %w", err)
	}

	var parsed teacherSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode professor lookup response: %w", err)
	}

	edges := parsed.Data.Search.Teachers.Edges
	if len(edges) == 0 {
		return nil, nil
	}

	node := edges[0].Node
	prof := &Professor{
		ID:                    node.ID,
		LegacyID:              node.LegacyID.String(),
		FirstName:             node.FirstName,
		LastName:              node.LastName,
		Department:            node.Department,
		AvgRating:             node.AvgRating,
		AvgDifficulty:         node.AvgDifficulty,
		NumRatings:            node.NumRatings,
		WouldTakeAgainPercent: node.WouldTakeAgainPercent,
	}
	for i, tag := range node.TeacherRatingTags {
		if i == 5 {
			break
		}
		prof.TopTags = append(prof.TopTags, tag.TagName)
	}
	for _, c := range node.CourseCodes {
		prof.CoursesTaught = append(prof.CoursesTaught, c.CourseName)
	}
	return prof, nil
}

const ratingsQuery = `
query TeacherRatings($id: ID!, $courseFilter: String) {
  node(id: $id) {
    ... on Teacher {
      ratings(first: 20, courseFilter: $courseFilter) {
        edges {
          node {
            class
            qualityRating
            difficultyRatingRounded
            comment
            grade
            date
            ratingTags
            thumbsUpTotal
            thumbsDownTotal
            iWouldTakeAgain
          }
        }
      }
    }
  }
}`

type ratingsResponse struct {
	Data struct {
		Node struct {
			Ratings struct {
				Edges []struct {
					Node struct {
						Class                   string `json:"class"`
						QualityRating           int    `json:"qualityRating"`
						DifficultyRatingRounded int    `json:"difficultyRatingRounded"`
						Comment                 string `json:"comment"`
						Grade                   string `json:"grade"`
						Date                    string `json:"date"`
						RatingTags              string `json:"ratingTags"`
						ThumbsUpTotal           int    `json:"thumbsUpTotal"`
						ThumbsDownTotal         int    `json:"thumbsDownTotal"`
						IWouldTakeAgain         *bool  `json:"iWouldTakeAgain"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"ratings"`
		} `json:"node"`
	} `json:"data"`
}

// StudentRatings fetches per-course reviews for a professor node id. An empty
// slice means the course has no reviews.
func (r *RateMyProfClient) StudentRatings(ctx context.Context, profID, course string) ([]StudentRating, error) {
	body, err := r.graphql(ctx, ratingsQuery, map[string]interface{}{
		"id":           profID,
		"courseFilter": course,
	})
	if err != nil {
		return nil, fmt.Errorf("student ratings fetch failed: %w", err)
	}

	var parsed ratingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode student ratings response: %w", err)
	}

	var ratings []StudentRating
	for _, edge := range parsed.Data.Node.Ratings.Edges {
		n := edge.Node
		rating := StudentRating{
			Course:     n.Class,
			Quality:    n.QualityRating,
			Difficulty: n.DifficultyRatingRounded,
			Comment:    n.Comment,
			Grade:      n.Grade,
			Date:       n.Date,
			ThumbsUp:   n.ThumbsUpTotal,
			ThumbsDown: n.ThumbsDownTotal,
		}
		if n.IWouldTakeAgain != nil {
			rating.WouldTakeAgain = *n.IWouldTakeAgain
		}
		if n.RatingTags != "" {
			rating.Tags = splitTags(n.RatingTags)
		}
		ratings = append(ratings, rating)
	}
	return ratings, nil
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range bytes.Split([]byte(raw), []byte("--")) {
		if s := string(bytes.TrimSpace(t)); s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}
