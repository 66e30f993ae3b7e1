package commands

import (
	"fmt"
	"strings"

	"badgerbot/internal/database"
	"badgerbot/internal/producers"
	"badgerbot/pkg/types"
)

// badgerRed is the accent color used on every page.
const badgerRed = 0xC5050C

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// CoursePage renders a full catalog entry.
func CoursePage(c *database.Course) types.Page {
	gpa := "N/A"
	if c.CumulativeGPA.Valid {
		gpa = fmt.Sprintf("%.2f", c.CumulativeGPA.Float64)
	}

	crosslist := "None"
	if c.CrosslistSubjects != "" {
		crosslist = c.CrosslistSubjects + " " + c.Number
	}

	return types.Page{
		Title:       fmt.Sprintf("%s %s — %s", c.SubjectAbbrev, c.Number, c.Title),
		Description: c.Description,
		Color:       badgerRed,
		Fields: []types.Field{
			{Name: "Cumulative GPA", Value: gpa},
			{Name: "Credits", Value: orNone(c.Credits)},
			{Name: "Requisites", Value: orNone(c.Requisites)},
			{Name: "Course Designation", Value: orNone(c.Designation)},
			{Name: "Repeatable For Credit", Value: orNone(c.Repeatable)},
			{Name: "Last Taught", Value: orNone(c.LastTaught)},
			{Name: "Cross-listed Subjects", Value: crosslist},
		},
	}
}

// GuideCoursePage renders a course scraped from the public guide.
func GuideCoursePage(g *producers.GuideCourse) types.Page {
	return types.Page{
		Title:       g.Title,
		Description: g.Description,
		Color:       badgerRed,
		Fields: []types.Field{
			{Name: "Credits", Value: orNone(g.Credits)},
			{Name: "Requisites", Value: orNone(g.Requisites)},
			{Name: "Course Designation", Value: orNone(g.Designation)},
			{Name: "Repeatable For Credit", Value: orNone(g.Repeatable)},
			{Name: "Last Taught", Value: orNone(g.LastTaught)},
		},
	}
}

// ProfessorPage renders a professor's aggregate rating profile.
func ProfessorPage(p *producers.Professor) types.Page {
	tags := "None"
	if len(p.TopTags) > 0 {
		var b strings.Builder
		for _, t := range p.TopTags {
			fmt.Fprintf(&b, "`%s`\n", t)
		}
		tags = b.String()
	}

	courses := "None"
	if len(p.CoursesTaught) > 0 {
		var b strings.Builder
		for _, c := range p.CoursesTaught {
			fmt.Fprintf(&b, "`%s`\n", c)
		}
		courses = b.String()
	}

	return types.Page{
		Title: p.FullName(),
		Color: badgerRed,
		Fields: []types.Field{
			{Name: "Department", Value: orNone(p.Department)},
			{Name: "Average Rating", Value: fmt.Sprintf("%.1f/5", p.AvgRating), Inline: true},
			{Name: "Average Difficulty", Value: fmt.Sprintf("%.1f/5", p.AvgDifficulty), Inline: true},
			{Name: "Total Ratings", Value: fmt.Sprintf("%d", p.NumRatings), Inline: true},
			{Name: "Would Take Again", Value: fmt.Sprintf("%.0f%%", p.WouldTakeAgainPercent), Inline: true},
			{Name: "Top Tags", Value: tags},
			{Name: "Courses Taught", Value: courses},
		},
	}
}

// RatingsPages renders one page per student rating, newest first as the
// producer returns them.
func RatingsPages(profName string, ratings []producers.StudentRating) []types.Page {
	pages := make([]types.Page, 0, len(ratings))
	for _, r := range ratings {
		taken := "No"
		if r.WouldTakeAgain {
			taken = "Yes"
		}
		tags := "None"
		if len(r.Tags) > 0 {
			tags = "`" + strings.Join(r.Tags, "` `") + "`"
		}

		pages = append(pages, types.Page{
			Title:       fmt.Sprintf("%s — %s", profName, r.Course),
			Description: r.Comment,
			Color:       badgerRed,
			Footer:      r.Date,
			Fields: []types.Field{
				{Name: "Quality", Value: fmt.Sprintf("%d/5", r.Quality), Inline: true},
				{Name: "Difficulty", Value: fmt.Sprintf("%d/5", r.Difficulty), Inline: true},
				{Name: "Grade", Value: orNone(r.Grade), Inline: true},
				{Name: "Would Take Again", Value: taken, Inline: true},
				{Name: "Tags", Value: tags},
				{Name: "Helpful", Value: fmt.Sprintf("👍 %d  👎 %d", r.ThumbsUp, r.ThumbsDown), Inline: true},
			},
		})
	}
	return pages
}

// SearchResultsPage renders the course search hit list.
func SearchResultsPage(query string, results []producers.CourseResult) types.Page {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "`%s %s - %s`\n", r.Subject, r.Number, r.Name)
	}

	sizeLine := fmt.Sprintf("Showing all %d results.", len(results))
	if len(results) >= 10 {
		sizeLine = fmt.Sprintf("Showing the first %d results.", len(results))
	}

	return types.Page{
		Title:       "Query: " + query,
		Description: sizeLine,
		Color:       badgerRed,
		Fields:      []types.Field{{Name: "Results", Value: b.String()}},
	}
}

// GymPage renders live facility counts.
func GymPage(counts []producers.FacilityCount) types.Page {
	fields := make([]types.Field, 0, len(counts))
	for _, c := range counts {
		fields = append(fields, types.Field{
			Name:   fmt.Sprintf("%s — %s", c.Facility, c.Location),
			Value:  fmt.Sprintf("%d people (as of %s)", c.Count, c.UpdatedAt),
			Inline: false,
		})
	}
	return types.Page{
		Title:  "Live Gym Usage",
		Color:  badgerRed,
		Fields: fields,
	}
}

// DiningPages renders one page per meal.
func DiningPages(market string, menus []producers.MealMenu) []types.Page {
	pages := make([]types.Page, 0, len(menus))
	for _, menu := range menus {
		fields := make([]types.Field, 0, len(menu.Items))
		for station, foods := range menu.Items {
			fields = append(fields, types.Field{
				Name:  station,
				Value: strings.Join(foods, "\n"),
			})
		}
		pages = append(pages, types.Page{
			Title:  fmt.Sprintf("%s — %s", market, capitalize(menu.Meal)),
			Color:  badgerRed,
			Fields: fields,
		})
	}
	return pages
}

// ClubPages renders student organizations five per page.
func ClubPages(query string, orgs []producers.StudentOrg) []types.Page {
	const perPage = 5

	var pages []types.Page
	for start := 0; start < len(orgs); start += perPage {
		end := start + perPage
		if end > len(orgs) {
			end = len(orgs)
		}

		fields := make([]types.Field, 0, end-start)
		for _, org := range orgs[start:end] {
			value := org.Summary
			if value == "" {
				value = "No description available."
			}
			if len(org.Categories) > 0 {
				value += "\n`" + strings.Join(org.Categories, "` `") + "`"
			}
			fields = append(fields, types.Field{Name: org.Name, Value: value})
		}

		pages = append(pages, types.Page{
			Title:  "Student Organizations: " + query,
			Color:  badgerRed,
			Fields: fields,
		})
	}
	return pages
}
