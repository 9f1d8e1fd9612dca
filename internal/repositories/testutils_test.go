package repositories_test

import (
	"context"
	"io"
	"testing"

	_ "embed"

	"github.com/EnesGoktekin/detective-ai/internal/sqlite"
	"github.com/EnesGoktekin/detective-ai/internal/testhelpers"
)

//go:embed testdata/fixtures.sql
var testFixtures string

// newTestDB creates a new in-memory database with case fixtures applied.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	var (
		dbs *sqlite.Database
		err error
	)

	logger := testhelpers.NewLogger(io.Discard)
	if dbs, err = sqlite.NewDatabase(context.Background(), ":memory:", logger); err != nil {
		t.Fatal(err)
	}

	if _, err = dbs.ReadWrite.Exec(testFixtures); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err = dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return dbs
}
