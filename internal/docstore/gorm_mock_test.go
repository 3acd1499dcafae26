package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

const selectDocument = `SELECT * FROM "documents" WHERE collection_key = $1 LIMIT $2`

func TestGormStore_Get_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectDocument)).
		WithArgs("v1:topics", 1).
		WillReturnError(errors.New("connection timeout"))

	got, found, err := s.Get(context.Background(), "v1:topics")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Get_Found(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewGormStore(db)

	rows := sqlmock.NewRows([]string{"collection_key", "body", "version"}).
		AddRow("v1:topics", []byte(`[{"id":"t1"}]`), 4)
	mock.ExpectQuery(regexp.QuoteMeta(selectDocument)).
		WithArgs("v1:topics", 1).
		WillReturnRows(rows)

	got, found, err := s.Get(context.Background(), "v1:topics")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"t1"}]`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Update_StaleVersionIsRetried(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewGormStore(db)

	// First attempt reads version 1 but another writer has moved on.
	mock.ExpectQuery(regexp.QuoteMeta(selectDocument)).
		WithArgs("k", 1).
		WillReturnRows(sqlmock.NewRows([]string{"collection_key", "body", "version"}).AddRow("k", []byte("1"), 1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "documents" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Second attempt sees version 2 and succeeds.
	mock.ExpectQuery(regexp.QuoteMeta(selectDocument)).
		WithArgs("k", 1).
		WillReturnRows(sqlmock.NewRows([]string{"collection_key", "body", "version"}).AddRow("k", []byte("5"), 2))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "documents" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen []string
	err := s.Update(context.Background(), "k", func(current json.RawMessage, found bool) (json.RawMessage, error) {
		seen = append(seen, string(current))
		return increment(current, found)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5"}, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Update_WriteError(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectDocument)).
		WithArgs("k", 1).
		WillReturnRows(sqlmock.NewRows([]string{"collection_key", "body", "version"}).AddRow("k", []byte("1"), 1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "documents" SET`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Update(context.Background(), "k", increment)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
