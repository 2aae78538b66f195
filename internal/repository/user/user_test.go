package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/ports/persistence"
)

type recordedExec struct {
	query string
	args  []interface{}
}

// fakeTx записывает запросы внутри транзакции
type fakeTx struct {
	execs      []recordedExec
	execErrs   map[int]error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...interface{}) error {
	n := len(t.execs)
	t.execs = append(t.execs, recordedExec{query: query, args: args})
	return t.execErrs[n]
}

func (t *fakeTx) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (t *fakeTx) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (t *fakeTx) ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return 0, nil
}

func (t *fakeTx) NamedExec(ctx context.Context, query string, arg interface{}) error {
	return nil
}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

// fakeDB реализует persistence.TxPersistence без настоящей базы
type fakeDB struct {
	tx *fakeTx

	getErr     error
	execResult int64
	execErr    error

	execs []recordedExec
}

func (d *fakeDB) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return d.getErr
}

func (d *fakeDB) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (d *fakeDB) Exec(ctx context.Context, query string, args ...interface{}) error {
	d.execs = append(d.execs, recordedExec{query: query, args: args})
	return d.execErr
}

func (d *fakeDB) ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error) {
	d.execs = append(d.execs, recordedExec{query: query, args: args})
	return d.execResult, d.execErr
}

func (d *fakeDB) NamedExec(ctx context.Context, query string, arg interface{}) error {
	return nil
}

func (d *fakeDB) QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}

func (d *fakeDB) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	if err := fn(ctx, d.tx); err != nil {
		d.tx.rolledBack = true
		return err
	}
	d.tx.committed = true
	return nil
}

func testRepo(db *fakeDB) *Repository {
	return New(db, slog.New(slog.NewTextHandler(io.Discard, nil))).(*Repository)
}

func testBirthData() *domain.UserBirthData {
	return &domain.UserBirthData{
		UserID:    42,
		BirthDate: "1990-05-15",
		BirthTime: "14:30:00",
		Timezone:  "Europe/Moscow",
		Latitude:  55.7558,
		Longitude: 37.6173,
	}
}

func TestSetBirthData_RunsInTransaction(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	repo := testRepo(db)

	require.NoError(t, repo.SetBirthData(context.Background(), testBirthData()))

	require.Len(t, db.tx.execs, 2, "ожидаются два запроса в одной транзакции")
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)

	// Строка пользователя создаётся при необходимости, без перезаписи
	userInsert := db.tx.execs[0]
	assert.Contains(t, userInsert.query, "INSERT INTO users")
	assert.Contains(t, userInsert.query, "DO NOTHING")
	assert.Equal(t, []interface{}{int64(42)}, userInsert.args)

	// Повторное сохранение сбрасывает chart_id и кэш натальной карты
	birthUpsert := db.tx.execs[1]
	assert.Contains(t, birthUpsert.query, "INSERT INTO birth_data")
	assert.Contains(t, birthUpsert.query, "ON CONFLICT (user_id) DO UPDATE")
	assert.Contains(t, birthUpsert.query, "chart_id = NULL")
	assert.Contains(t, birthUpsert.query, "natal_chart_cache = NULL")
	assert.Equal(t, int64(42), birthUpsert.args[0])
}

func TestSetBirthData_RollsBackOnFailure(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{execErrs: map[int]error{1: errors.New("constraint violation")}}}
	repo := testRepo(db)

	err := repo.SetBirthData(context.Background(), testBirthData())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set birth data")
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestUpsert(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	repo := testRepo(db)

	username := "alice"
	require.NoError(t, repo.Upsert(context.Background(), &domain.User{
		TelegramID: 42,
		Username:   &username,
	}))

	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0].query, "ON CONFLICT (telegram_id) DO UPDATE"))
}

func TestGetBirthData_NoRows(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}, getErr: sql.ErrNoRows}
	repo := testRepo(db)

	_, err := repo.GetBirthData(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNoBirthData)
}

func TestSetChartID_NoBirthData(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}, execResult: 0}
	repo := testRepo(db)

	err := repo.SetChartID(context.Background(), 42, "chart-1")
	assert.ErrorIs(t, err, domain.ErrNoBirthData)
}

func TestDeleteBirthData_NoBirthData(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}, execResult: 0}
	repo := testRepo(db)

	err := repo.DeleteBirthData(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNoBirthData)
}
