// Package database provides the sqlite-backed course catalog. The catalog is
// read-heavy: it is populated out of band and queried by the course lookup
// flows.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var ErrCourseNotFound = errors.New("course not found")

// Course is one catalog row.
type Course struct {
	SubjectAbbrev     string
	FullSubjectName   string
	CrosslistSubjects string
	Number            string
	Title             string
	Description       string
	CumulativeGPA     sql.NullFloat64
	Credits           string
	Requisites        string
	Designation       string
	Repeatable        string
	LastTaught        string
}

const schema = `
CREATE TABLE IF NOT EXISTS courses (
	subject_abbrev     TEXT NOT NULL,
	full_subject_name  TEXT NOT NULL DEFAULT '',
	crosslist_subjects TEXT NOT NULL DEFAULT '',
	number             TEXT NOT NULL,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	cumulative_gpa     REAL,
	credits            TEXT NOT NULL DEFAULT '',
	requisites         TEXT NOT NULL DEFAULT '',
	course_designation TEXT NOT NULL DEFAULT '',
	repeatable         TEXT NOT NULL DEFAULT '',
	last_taught        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (subject_abbrev, number)
);`

// Manager wraps the catalog connection pool.
type Manager struct {
	db *sql.DB
}

// NewManager opens the catalog and bootstraps the schema. WAL keeps readers
// unblocked if an out-of-band import is writing.
func NewManager(path string) (*Manager, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open course catalog: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to bootstrap course catalog schema: %w", err)
	}

	return &Manager{db: db}, nil
}

// GetCourse fetches a course by subject abbreviation and catalog number.
func (m *Manager) GetCourse(ctx context.Context, subjectAbbrev, number string) (*Course, error) {
	const query = `
		SELECT subject_abbrev, full_subject_name, crosslist_subjects, number,
		       title, description, cumulative_gpa, credits, requisites,
		       course_designation, repeatable, last_taught
		FROM courses
		WHERE subject_abbrev = ? AND number = ?`

	var c Course
	err := m.db.QueryRowContext(ctx, query, subjectAbbrev, number).Scan(
		&c.SubjectAbbrev, &c.FullSubjectName, &c.CrosslistSubjects, &c.Number,
		&c.Title, &c.Description, &c.CumulativeGPA, &c.Credits, &c.Requisites,
		&c.Designation, &c.Repeatable, &c.LastTaught,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrCourseNotFound, subjectAbbrev, number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query course %s %s: %w", subjectAbbrev, number, err)
	}

	return &c, nil
}

// UpsertCourse inserts or replaces a catalog row. Used by catalog imports and
// tests.
func (m *Manager) UpsertCourse(ctx context.Context, c *Course) error {
	const stmt = `
		INSERT OR REPLACE INTO courses (
			subject_abbrev, full_subject_name, crosslist_subjects, number,
			title, description, cumulative_gpa, credits, requisites,
			course_designation, repeatable, last_taught
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := m.db.ExecContext(ctx, stmt,
		c.SubjectAbbrev, c.FullSubjectName, c.CrosslistSubjects, c.Number,
		c.Title, c.Description, c.CumulativeGPA, c.Credits, c.Requisites,
		c.Designation, c.Repeatable, c.LastTaught,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert course %s %s: %w", c.SubjectAbbrev, c.Number, err)
	}
	return nil
}

// HealthCheck verifies the catalog connection.
func (m *Manager) HealthCheck(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	return m.db.Close()
}
