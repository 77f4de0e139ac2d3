// Package testutil provides shared test infrastructure for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// PGTest opens a test database connection and returns the *sql.DB plus a
// cleanup function. Schema setup is the store's job (call Migrate on it);
// cleanup truncates the scoring tables so tests start from a clean slate.
//
// Tests should call this at the top:
//
//	db, cleanup := testutil.PGTest(t)
//	defer cleanup()
//
// If POSTGRES_URL is not set, the test is skipped.
func PGTest(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	dbURL := os.Getenv("POSTGRES_URL")
	if dbURL == "" {
		t.Skip("POSTGRES_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("pgtest: open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Fatalf("pgtest: connect to database: %v", err)
	}

	cleanup := func() {
		truncateAll(context.Background(), db)
		_ = db.Close()
	}
	return db, cleanup
}

// truncateAll clears the application tables between tests. Best effort; a
// missing table just means the store never migrated in this test.
func truncateAll(ctx context.Context, db *sql.DB) {
	for _, table := range []string{"scored_customers"} {
		_, _ = db.ExecContext(ctx, "TRUNCATE "+table) // #nosec G202 -- fixed table list, not user input
	}
}
