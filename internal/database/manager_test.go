package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func sampleCourse() *Course {
	return &Course{
		SubjectAbbrev:   "COMP SCI",
		FullSubjectName: "Computer Sciences",
		Number:          "577",
		Title:           "Introduction to Algorithms",
		Description:     "Basic paradigms for the design and analysis of efficient algorithms.",
		CumulativeGPA:   sql.NullFloat64{Float64: 3.2, Valid: true},
		Credits:         "4",
		Requisites:      "COMP SCI 240",
		LastTaught:      "Spring 2026",
	}
}

func TestUpsertAndGetCourse(t *testing.T) {
	m := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, m.UpsertCourse(ctx, sampleCourse()))

	got, err := m.GetCourse(ctx, "COMP SCI", "577")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to Algorithms", got.Title)
	assert.True(t, got.CumulativeGPA.Valid)
	assert.InDelta(t, 3.2, got.CumulativeGPA.Float64, 0.001)
}

func TestGetCourseNotFound(t *testing.T) {
	m := openTestCatalog(t)

	_, err := m.GetCourse(context.Background(), "COMP SCI", "999")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	m := openTestCatalog(t)
	ctx := context.Background()

	c := sampleCourse()
	require.NoError(t, m.UpsertCourse(ctx, c))

	c.Title = "Intro to Algorithms (revised)"
	require.NoError(t, m.UpsertCourse(ctx, c))

	got, err := m.GetCourse(ctx, "COMP SCI", "577")
	require.NoError(t, err)
	assert.Equal(t, "Intro to Algorithms (revised)", got.Title)
}

func TestNullGPA(t *testing.T) {
	m := openTestCatalog(t)
	ctx := context.Background()

	c := sampleCourse()
	c.CumulativeGPA = sql.NullFloat64{}
	require.NoError(t, m.UpsertCourse(ctx, c))

	got, err := m.GetCourse(ctx, "COMP SCI", "577")
	require.NoError(t, err)
	assert.False(t, got.CumulativeGPA.Valid)
}

func TestHealthCheck(t *testing.T) {
	m := openTestCatalog(t)
	assert.NoError(t, m.HealthCheck(context.Background()))
}
