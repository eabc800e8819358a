// Package store persists accounts, breathing sessions and the practice
// stats in sqlite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var (
	// ErrUserExists is returned when the email is already registered,
	// compared case-insensitively.
	ErrUserExists = errors.New("account already exists")
	// ErrMissingField is returned when a required field is blank.
	ErrMissingField = errors.New("name and email are required")
)

const (
	DefaultSessionMinutes = 5
	DefaultSessionBreaths = 30

	// fixed width so stamps sort as text
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	maxStreakDays = 30
	maxCalmScore  = 100
)

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	ID              string    `json:"id"`
	DurationMinutes float64   `json:"durationMinutes"`
	Breaths         int       `json:"breaths"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Stats struct {
	TotalMinutes     float64 `json:"totalMinutes"`
	StreakDays       int     `json:"streakDays"`
	BreathsCompleted int     `json:"breathsCompleted"`
	CalmScore        int     `json:"calmScore"`
}

type DB struct {
	*sql.DB
	now func() time.Time
}

// NewDB opens or creates the database at path and applies the schema.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{DB: db, now: time.Now}, nil
}

// SetNow replaces the clock used for created_at stamps.
func (db *DB) SetNow(now func() time.Time) { db.now = now }

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// CreateUser registers an account.
func (db *DB) CreateUser(ctx context.Context, name, email string) (User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return User{}, ErrMissingField
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE lower(email) = lower(?)", email).Scan(&exists)
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	if exists > 0 {
		return User{}, ErrUserExists
	}

	u := User{ID: newID("user"), Name: name, Email: email, CreatedAt: db.now().UTC()}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (user_id, name, email, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.CreatedAt.Format(timeLayout))
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, tx.Commit()
}

// Users lists accounts, oldest first.
func (db *DB) Users(ctx context.Context) ([]User, error) {
	rows, err := db.QueryContext(ctx, "SELECT user_id, name, email, created_at FROM users ORDER BY created_at, user_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var created string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &created); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.ID, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Stats returns the current practice stats.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	return queryStats(ctx, db.DB)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryStats(ctx context.Context, q queryer) (Stats, error) {
	var s Stats
	err := q.QueryRowContext(ctx,
		"SELECT total_minutes, streak_days, breaths_completed, calm_score FROM stats WHERE stats_id = 1",
	).Scan(&s.TotalMinutes, &s.StreakDays, &s.BreathsCompleted, &s.CalmScore)
	if err != nil {
		return Stats{}, fmt.Errorf("read stats: %w", err)
	}
	return s, nil
}

// RecordSession stores a finished session and folds it into the stats.
// Negative values count as zero; streak and calm score are capped.
func (db *DB) RecordSession(ctx context.Context, minutes float64, breaths int) (Session, Stats, error) {
	minutes = max(0, minutes)
	breaths = max(0, breaths)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, Stats{}, err
	}
	defer tx.Rollback()

	s := Session{ID: newID("session"), DurationMinutes: minutes, Breaths: breaths, CreatedAt: db.now().UTC()}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (session_id, duration_minutes, breaths, created_at) VALUES (?, ?, ?, ?)",
		s.ID, s.DurationMinutes, s.Breaths, s.CreatedAt.Format(timeLayout))
	if err != nil {
		return Session{}, Stats{}, fmt.Errorf("insert session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE stats SET
			total_minutes = total_minutes + ?,
			breaths_completed = breaths_completed + ?,
			streak_days = min(?, streak_days + 1),
			calm_score = min(?, calm_score + 1)
		WHERE stats_id = 1`,
		minutes, breaths, maxStreakDays, maxCalmScore)
	if err != nil {
		return Session{}, Stats{}, fmt.Errorf("update stats: %w", err)
	}

	stats, err := queryStats(ctx, tx)
	if err != nil {
		return Session{}, Stats{}, err
	}
	return s, stats, tx.Commit()
}

// Sessions returns up to limit sessions, newest first.
func (db *DB) Sessions(ctx context.Context, limit int) ([]Session, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT session_id, duration_minutes, breaths, created_at FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var created string
		if err := rows.Scan(&s.ID, &s.DurationMinutes, &s.Breaths, &created); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("session %s: %w", s.ID, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
