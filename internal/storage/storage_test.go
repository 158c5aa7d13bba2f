package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{db: db}, mock
}

func TestSaveDocumentUpsertsAndCommits(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs("http://h/a", "hash123").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO terms").
		WithArgs("hello").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec("INSERT INTO postings").
		WithArgs(int64(1), int64(10), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.SaveDocument(context.Background(), "http://h/a", "hash123", map[string]int{"hello": 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDocumentRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs("http://h/a", "hash123").
		WillReturnError(assertErr{})
	mock.ExpectRollback()

	err := store.SaveDocument(context.Background(), "http://h/a", "hash123", map[string]int{"hello": 2})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEmptyTermsShortCircuits(t *testing.T) {
	store, mock := newMockStore(t)

	results, err := store.Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentHashFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT content_hash FROM documents").
		WithArgs("http://h/a").
		WillReturnRows(sqlmock.NewRows([]string{"content_hash"}).AddRow("hash123"))

	hash, found, err := store.ContentHash(context.Background(), "http://h/a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hash123", hash)
}

func TestContentHashNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT content_hash FROM documents").
		WithArgs("http://h/new").
		WillReturnError(sql.ErrNoRows)

	_, found, err := store.ContentHash(context.Background(), "http://h/new")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearchConjunctiveRanking(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT d.url, SUM").
		WithArgs(2, "hello", "world").
		WillReturnRows(sqlmock.NewRows([]string{"url", "total"}).AddRow("http://h/doc1", 3))

	results, err := store.Search(context.Background(), []string{"hello", "world"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "http://h/doc1", results[0].URL)
	assert.Equal(t, 3, results[0].Score)
}

type assertErr struct{}

func (assertErr) Error() string { return "mock failure" }
