// Package storage implements the three-table relational inverted index
// (documents, terms, postings) backed by PostgreSQL, plus the conjunctive
// search query over it.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ryzhov/crawlsearch/pkg/failure"
)

// Store is the storage layer for a single crawlsearch database. All
// access goes through sql.DB's own connection pool, so concurrent callers
// run their transactions on separate pooled connections; they are not
// serialized against each other.
type Store struct {
	db *sql.DB
}

// Open connects to dsn (a libpq-style connection string) via the pgx
// stdlib driver and verifies connectivity.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id           BIGSERIAL PRIMARY KEY,
	url          TEXT NOT NULL UNIQUE,
	content_hash TEXT
);

CREATE TABLE IF NOT EXISTS terms (
	id   BIGSERIAL PRIMARY KEY,
	term TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS postings (
	document_id BIGINT NOT NULL REFERENCES documents(id),
	term_id     BIGINT NOT NULL REFERENCES terms(id),
	frequency   INTEGER NOT NULL,
	PRIMARY KEY (document_id, term_id)
);
`

// Init creates the schema if it does not already exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("storage: init schema: %w", err)
	}
	return nil
}

// SaveDocument upserts the document (and its content hash), upserts every
// term in freq, and upserts each posting so the stored frequency equals
// freq exactly — never accumulated. The whole write is one transaction;
// any failure rolls it back and no partial posting set becomes visible.
func (s *Store) SaveDocument(ctx context.Context, url, contentHash string, freq map[string]int) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		// BeginTx failing means the connection pool itself is unusable,
		// not that this one document is bad — escalate rather than skip.
		return failure.Wrap(failure.SeverityFatal, fmt.Errorf("storage: begin tx: %w", err))
	}
	defer tx.Rollback()

	var docID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (url, content_hash) VALUES ($1, $2)
		ON CONFLICT (url) DO UPDATE SET content_hash = EXCLUDED.content_hash
		RETURNING id`, url, contentHash).Scan(&docID)
	if err != nil {
		return recoverable("storage: upsert document: %w", err)
	}

	for term, count := range freq {
		var termID int64
		err = tx.QueryRowContext(ctx, `
			INSERT INTO terms (term) VALUES ($1)
			ON CONFLICT (term) DO UPDATE SET term = EXCLUDED.term
			RETURNING id`, term).Scan(&termID)
		if err != nil {
			return recoverable("storage: upsert term %q: %w", term, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO postings (document_id, term_id, frequency) VALUES ($1, $2, $3)
			ON CONFLICT (document_id, term_id) DO UPDATE SET frequency = EXCLUDED.frequency`,
			docID, termID, count)
		if err != nil {
			return recoverable("storage: upsert posting (doc=%d, term=%q): %w", docID, term, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return recoverable("storage: commit: %w", err)
	}
	return nil
}

func recoverable(format string, args ...any) error {
	return failure.Wrap(failure.SeverityRecoverable, fmt.Errorf(format, args...))
}

// ContentHash returns the content hash stored for url, if the document
// already exists. found is false for a URL never saved before.
func (s *Store) ContentHash(ctx context.Context, url string) (hash string, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT content_hash FROM documents WHERE url = $1`, url)

	var h sql.NullString
	if err := row.Scan(&h); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, recoverable("storage: lookup content hash: %w", err)
	}
	return h.String, h.Valid, nil
}

// Result is one ranked match from Search.
type Result struct {
	URL   string
	Score int
}

// Search returns the top 10 documents whose postings cover every term in
// terms (conjunctive AND), ordered by summed frequency descending. An
// empty term list returns an empty result without issuing any query.
func (s *Store) Search(ctx context.Context, terms []string) ([]Result, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(terms))
	args := make([]any, len(terms)+1)
	for i, t := range terms {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = t
	}
	args[0] = len(terms)

	query := fmt.Sprintf(`
		SELECT d.url, SUM(p.frequency) AS total
		FROM postings p
		JOIN documents d ON d.id = p.document_id
		JOIN terms t ON t.id = p.term_id
		WHERE t.term IN (%s)
		GROUP BY d.url
		HAVING COUNT(DISTINCT t.term) = $1
		ORDER BY total DESC
		LIMIT 10`, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.URL, &r.Score); err != nil {
			return nil, fmt.Errorf("storage: scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate results: %w", err)
	}
	return results, nil
}
