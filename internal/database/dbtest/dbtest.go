// Package dbtest builds throwaway SQLite fixture databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edgard/consolidator/internal/database"
	"github.com/edgard/consolidator/internal/logger"
)

// User is a row of the raw users table.
type User struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Email      string `db:"email"`
	IsCustomer int    `db:"is_customer"`
}

// ConversationStart is a row of the raw conversation_start table.
type ConversationStart struct {
	ID         int64   `db:"id"`
	Email      string  `db:"conv_dataset_email"`
	Channel    string  `db:"channel"`
	AssigneeID *int64  `db:"assignee_id"`
	CreatedAt  string  `db:"conversation_created_at"`
	Message    *string `db:"message"`
}

// ConversationPart is a row of the raw conversation_parts table.
type ConversationPart struct {
	ID             int64   `db:"id"`
	Email          string  `db:"conv_dataset_email"`
	ConversationID int64   `db:"conversation_id"`
	PartType       *string `db:"part_type"`
	Message        *string `db:"message"`
	CreatedAt      string  `db:"created_at"`
}

// Fixture is the content of a fixture database.
type Fixture struct {
	Users         []User
	Conversations []ConversationStart
	Parts         []ConversationPart
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Basic returns two users, one conversation and three conversation parts.
func Basic() Fixture {
	return Fixture{
		Users: []User{
			{ID: 1, Name: "Alice", Email: "alice@example.com", IsCustomer: 1},
			{ID: 2, Name: "Bob", Email: "bob@example.com", IsCustomer: 0},
		},
		Conversations: []ConversationStart{
			{ID: 100, Email: "alice@example.com", Channel: "email", AssigneeID: Ptr(int64(2)),
				CreatedAt: "2024-01-01T10:00:00Z", Message: Ptr("Hi, I need help")},
		},
		Parts: []ConversationPart{
			{ID: 1, Email: "alice@example.com", ConversationID: 100, PartType: Ptr("comment"),
				Message: Ptr("Hi, I need help"), CreatedAt: "2024-01-01T10:00:00Z"},
			{ID: 2, Email: "bob@example.com", ConversationID: 100, PartType: Ptr("assignment"),
				CreatedAt: "2024-01-01T10:05:00Z"},
			{ID: 3, Email: "bob@example.com", ConversationID: 100, PartType: Ptr("comment"),
				Message: Ptr("Happy to help"), CreatedAt: "2024-01-01T10:06:00Z"},
		},
	}
}

// Path returns a fresh database file path inside a test temp directory.
func Path(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "database", "fixture.db")
}

// Create bootstraps the raw tables at path, seeds them with f and returns
// the path. The connection used for seeding is closed before returning.
func Create(t *testing.T, path string, f Fixture) string {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, database.EnsureDir(path))
	db, err := database.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.ApplyMigrations(db.DB, logger.Discard()))
	Seed(t, db, f)
	return path
}

// Seed inserts the rows of f into the raw tables.
func Seed(t *testing.T, db *sqlx.DB, f Fixture) {
	t.Helper()

	for _, u := range f.Users {
		_, err := db.NamedExec(`INSERT INTO users (id, name, email, is_customer)
            VALUES (:id, :name, :email, :is_customer)`, u)
		require.NoError(t, err)
	}
	for _, c := range f.Conversations {
		_, err := db.NamedExec(`INSERT INTO conversation_start
            (id, conv_dataset_email, channel, assignee_id, conversation_created_at, message)
            VALUES (:id, :conv_dataset_email, :channel, :assignee_id, :conversation_created_at, :message)`, c)
		require.NoError(t, err)
	}
	for _, p := range f.Parts {
		_, err := db.NamedExec(`INSERT INTO conversation_parts
            (id, conv_dataset_email, conversation_id, part_type, message, created_at)
            VALUES (:id, :conv_dataset_email, :conversation_id, :part_type, :message, :created_at)`, p)
		require.NoError(t, err)
	}
}
