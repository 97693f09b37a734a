package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFromDB(db), mock
}

func TestSave_BeginFails(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errBoom)

	_, err := Save(context.Background(), s, "chair", compiled(t, furniture(t)))
	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_UpsertFailsRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").WillReturnError(errBoom)
	mock.ExpectRollback()

	_, err := Save(context.Background(), s, "chair", compiled(t, furniture(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert document")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_EntryInsertFailsRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WithArgs("chair", sqlmock.AnyArg(), sqlmock.AnyArg(), 0, 3, int64(1000), int64(1200), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM entries").WithArgs("chair").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO entries").
		WithArgs("chair", 0, "create", int64(1000), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO entries").WillReturnError(errBoom)
	mock.ExpectRollback()

	_, err := Save(context.Background(), s, "chair", compiled(t, furniture(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert entry 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_CommitFails(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM entries").WillReturnResult(sqlmock.NewResult(0, 0))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO entries").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit().WillReturnError(errBoom)

	_, err := Save(context.Background(), s, "chair", compiled(t, furniture(t)))
	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_QueryFails(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT kind, timestamp, signature, data").WithArgs("chair").WillReturnError(errBoom)

	_, err := Load[string](context.Background(), s, "chair")
	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_UnknownKindRow(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"kind", "timestamp", "signature", "data"}).
		AddRow("rename", int64(1), nil, `{}`)
	mock.ExpectQuery("SELECT kind, timestamp, signature, data").WillReturnRows(rows)

	_, err := Load[string](context.Background(), s, "chair")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestLoad_FromMockRows(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"kind", "timestamp", "signature", "data"}).
		AddRow("create", int64(10), `"ana"`, `{"stage":"carpentry"}`).
		AddRow("patch", int64(20), nil, `{"stage":"painting"}`).
		AddRow("remove", int64(30), `"ben"`, nil)
	mock.ExpectQuery("SELECT kind, timestamp, signature, data").WithArgs("chair").WillReturnRows(rows)

	sc, err := Load[string](context.Background(), s, "chair")
	require.NoError(t, err)
	assert.Equal(t, 3, sc.Len())
	assert.True(t, sc.IsRemoved())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDocuments_RowsError(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "state", "history_hash", "removed", "entry_count", "created_at", "updated_at", "engine_version"}).
		AddRow("chair", `{}`, "h", 0, 1, int64(1), int64(1), "0.1.0").
		RowError(0, errBoom)
	mock.ExpectQuery("FROM documents").WillReturnRows(rows)

	_, err := s.ListDocuments(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestDeleteDocument_Errors(t *testing.T) {
	t.Run("entries delete fails", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM entries").WillReturnError(errBoom)
		mock.ExpectRollback()

		assert.ErrorIs(t, s.DeleteDocument(context.Background(), "chair"), errBoom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing document rolls back", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM entries").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM documents").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, s.DeleteDocument(context.Background(), "chair"), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
