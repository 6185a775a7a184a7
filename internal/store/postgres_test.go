package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtally/dispense-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO runs (id, request, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "pending", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), testRequest("lisinopril"))
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusPending, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`)).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", &model.Recommendation{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRunNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET result = $1`)).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", &model.Recommendation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgresStore_FailRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`)).
		WithArgs("boom", "failed", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.FailRun(context.Background(), "run-1", "boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockStore(t)

	req := testRequest("metformin")
	reqJSON, err := json.Marshal(req)
	require.NoError(t, err)
	resultJSON, err := json.Marshal(&model.Recommendation{
		Quantity: model.QuantityResult{Total: 60, Unit: "tablet"},
	})
	require.NoError(t, err)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "request", "status", "result", "error", "created_at", "updated_at"}).
		AddRow("run-1", reqJSON, model.RunStatusComplete, resultJSON, (*string)(nil), now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, request, status, result, error, created_at, updated_at FROM runs WHERE id = $1`)).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "metformin", run.Request.DrugName)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, 60.0, run.Result.Quantity.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRunsFilters(t *testing.T) {
	s, mock := newMockStore(t)

	reqJSON, err := json.Marshal(testRequest("lisinopril"))
	require.NoError(t, err)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "request", "status", "result", "error", "created_at", "updated_at"}).
		AddRow("run-1", reqJSON, model.RunStatusFailed, []byte(nil), ptr("boom"), now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`AND status = $1`)).
		WithArgs("failed", 100).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "boom", runs[0].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr(s string) *string { return &s }
