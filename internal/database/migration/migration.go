package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var postgresSteps = []migrationStep{
	{
		Name: "create_table_authors",
		SQL: `CREATE TABLE IF NOT EXISTS authors (
  id          BIGSERIAL   PRIMARY KEY,
  first_name  TEXT        NOT NULL,
  last_name   TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_genres",
		SQL: `CREATE TABLE IF NOT EXISTS genres (
  id          BIGSERIAL   PRIMARY KEY,
  name        TEXT        NOT NULL UNIQUE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_books",
		SQL: `CREATE TABLE IF NOT EXISTS books (
  id              BIGSERIAL   PRIMARY KEY,
  title           TEXT        NOT NULL,
  isbn            TEXT        NOT NULL UNIQUE,
  author_id       BIGINT      NOT NULL REFERENCES authors (id) ON DELETE RESTRICT,
  genre_id        BIGINT      NOT NULL REFERENCES genres (id) ON DELETE RESTRICT,
  published_year  INTEGER     NOT NULL DEFAULT 0,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_book_lendings",
		SQL: `CREATE TABLE IF NOT EXISTS book_lendings (
  id              BIGSERIAL   PRIMARY KEY,
  book_id         BIGINT      NOT NULL REFERENCES books (id) ON DELETE RESTRICT,
  borrower_name   TEXT        NOT NULL,
  borrower_email  TEXT        NOT NULL,
  lent_at         TIMESTAMPTZ NOT NULL,
  due_at          TIMESTAMPTZ NOT NULL,
  returned_at     TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_index_books_author_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id);`,
	},
	{
		Name: "create_index_books_genre_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_genre_id ON books (genre_id);`,
	},
	{
		Name: "create_index_book_lendings_book_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_book_lendings_book_id ON book_lendings (book_id);`,
	},
	{
		Name: "create_index_book_lendings_open",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_book_lendings_open ON book_lendings (book_id) WHERE returned_at IS NULL;`,
	},
}

var sqliteSteps = []migrationStep{
	{
		Name: "create_table_authors",
		SQL: `CREATE TABLE IF NOT EXISTS authors (
  id          INTEGER  PRIMARY KEY AUTOINCREMENT,
  first_name  TEXT     NOT NULL,
  last_name   TEXT     NOT NULL,
  created_at  DATETIME NOT NULL
);`,
	},
	{
		Name: "create_table_genres",
		SQL: `CREATE TABLE IF NOT EXISTS genres (
  id          INTEGER  PRIMARY KEY AUTOINCREMENT,
  name        TEXT     NOT NULL UNIQUE,
  created_at  DATETIME NOT NULL
);`,
	},
	{
		Name: "create_table_books",
		SQL: `CREATE TABLE IF NOT EXISTS books (
  id              INTEGER  PRIMARY KEY AUTOINCREMENT,
  title           TEXT     NOT NULL,
  isbn            TEXT     NOT NULL UNIQUE,
  author_id       INTEGER  NOT NULL REFERENCES authors (id) ON DELETE RESTRICT,
  genre_id        INTEGER  NOT NULL REFERENCES genres (id) ON DELETE RESTRICT,
  published_year  INTEGER  NOT NULL DEFAULT 0,
  created_at      DATETIME NOT NULL
);`,
	},
	{
		Name: "create_table_book_lendings",
		SQL: `CREATE TABLE IF NOT EXISTS book_lendings (
  id              INTEGER  PRIMARY KEY AUTOINCREMENT,
  book_id         INTEGER  NOT NULL REFERENCES books (id) ON DELETE RESTRICT,
  borrower_name   TEXT     NOT NULL,
  borrower_email  TEXT     NOT NULL,
  lent_at         DATETIME NOT NULL,
  due_at          DATETIME NOT NULL,
  returned_at     DATETIME NULL
);`,
	},
	{
		Name: "create_index_books_author_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id);`,
	},
	{
		Name: "create_index_books_genre_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_genre_id ON books (genre_id);`,
	},
	{
		Name: "create_index_book_lendings_book_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_book_lendings_book_id ON book_lendings (book_id);`,
	},
	{
		Name: "create_index_book_lendings_open",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_book_lendings_open ON book_lendings (book_id) WHERE returned_at IS NULL;`,
	},
}

// sentinelQuery reports whether the last table of the schema exists.
var sentinelQuery = map[string]string{
	"postgres": "SELECT to_regclass('public.book_lendings') IS NOT NULL",
	"sqlite":   "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'book_lendings'",
}

var dialectSteps = map[string][]migrationStep{
	"postgres": postgresSteps,
	"sqlite":   sqliteSteps,
}

// EnsureMigrated checks if the schema exists and runs migrations if it doesn't.
// dialect is "postgres" or "sqlite".
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect string, logger *slog.Logger, dbHost string) error {
	steps, ok := dialectSteps[dialect]
	if !ok {
		return fmt.Errorf("unsupported migration dialect: %s", dialect)
	}
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost, "dialect", dialect)

	log.InfoContext(ctx, "db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery[dialect]).Scan(&exists); err != nil {
		log.ErrorContext(ctx, "db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.InfoContext(ctx, "db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.InfoContext(ctx, "db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.InfoContext(ctx, "db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.InfoContext(ctx, "db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
