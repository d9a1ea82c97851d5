package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/auspex/internal/domain/prompts"
)

func newMock(t *testing.T) (*PromptRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPromptRepository(db), mock
}

var columns = []string{"key", "name", "content", "is_default", "updated_at"}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS prompts`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestCount(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM prompts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestInsert(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO prompts \(key, name, content, is_default\)`).
		WithArgs("step1_analyze", "Step 1: Diagram Analysis", "text", true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), &domain.Record{
		Key: domain.KeyAnalyze, Name: "Step 1: Diagram Analysis", Content: "text", IsDefault: true,
	})
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	repo, mock := newMock(t)
	ts := time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT key, name, content, is_default, updated_at FROM prompts ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("step1_analyze", "Step 1", "a", true, ts).
			AddRow("step2_app_desc", "Step 2A", "b", false, nil))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.KeyAnalyze, got[0].Key)
	require.NotNil(t, got[0].UpdatedAt)
	assert.True(t, ts.Equal(*got[0].UpdatedAt))
	assert.False(t, got[1].IsDefault)
	assert.Nil(t, got[1].UpdatedAt)
}

func TestList_EmptyTable(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT key, name, content, is_default, updated_at FROM prompts ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got, "encodes as [] rather than null")
	assert.Empty(t, got)
}

func TestGet(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM prompts WHERE key=\$1`).
		WithArgs("step3_aws").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("step3_aws", "Step 3: AWS", "aws text", false, nil))

	got, err := repo.Get(context.Background(), domain.KeyThreatAWS)
	require.NoError(t, err)
	assert.Equal(t, "aws text", got.Content)
}

func TestGet_Missing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM prompts WHERE key=\$1`).
		WithArgs("step3_aws").
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.Get(context.Background(), domain.KeyThreatAWS)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGet_Error(t *testing.T) {
	repo, mock := newMock(t)
	boom := errors.New("connection refused")
	mock.ExpectQuery(`FROM prompts`).WillReturnError(boom)

	_, err := repo.Get(context.Background(), domain.KeyAnalyze)
	assert.ErrorIs(t, err, boom)
}

func TestSetContent(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE prompts SET content=\$1, is_default=\$2, updated_at=CURRENT_TIMESTAMP WHERE key=\$3`).
		WithArgs("new", false, "step1_analyze").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE prompts`).
		WithArgs("new", false, "step1_analyze").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SetContent(context.Background(), domain.KeyAnalyze, "new", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetContent(context.Background(), domain.KeyAnalyze, "new", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	require.NoError(t, NewPromptRepository(db).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
