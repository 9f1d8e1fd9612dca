package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "embed"

	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/random"
)

//go:embed schema.sql
var schemaDefinition string

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database and initializes the schema.
//
// It establishes two database connections, one for read/write operations and one for read-only operations.
// This is a best practice mentioned in https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sqlx.DB
		readDB      *sqlx.DB
	)

	// For in-memory databases, we need shared cache mode so that both connections access the same data.
	//
	// For parallel tests, we need to use a different database name for each test to avoid sharing data.
	// See https://www.sqlite.org/inmemorydb.html.
	isInMemory := strings.Contains(url, ":memory:")
	inMemoryConfig := ""
	if isInMemory {
		var (
			randomID     string
			dbNameLength uint = 20
		)
		if randomID, err = random.Letters(dbNameLength); err != nil {
			return nil, errors.Wrap(err, "generate random ID")
		}
		url = randomID
		inMemoryConfig = "&mode=memory&cache=shared"
	}
	commonConfig := strings.Join([]string{
		// Write-ahead logging enables higher performance and concurrent readers.
		"_journal_mode=wal",
		// Avoids SQLITE_BUSY errors when database is under load.
		"_busy_timeout=5000",
		// Increases performance at the cost of durability https://www.sqlite.org/pragma.html#pragma_synchronous.
		"_synchronous=normal",
		// Enables foreign key constraints.
		"_foreign_keys=on",
	}, "&")

	// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
	// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
	readWriteConfig := fmt.Sprintf("file:%s?_txlock=immediate&%s%s", url, commonConfig, inMemoryConfig)
	readConfig := fmt.Sprintf("file:%s?_txlock=deferred&_query_only=true&%s%s", url, commonConfig, inMemoryConfig)

	if readWriteDB, err = sqlx.ConnectContext(ctx, "sqlite3", readWriteConfig); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}

	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	// Initialize the database schema.
	if _, err = readWriteDB.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "initialize schema")
	}

	if readDB, err = sqlx.ConnectContext(ctx, "sqlite3", readConfig); err != nil {
		return nil, errors.Wrap(err, "open read database")
	}

	maxReadConns := 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	db := Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
		logger:    logger,
	}

	return &db, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	var errs []error
	if err := db.ReadOnly.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "close read-only database"))
	}
	if err := db.ReadWrite.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "close read-write database"))
	}
	return errors.Join(errs...)
}
