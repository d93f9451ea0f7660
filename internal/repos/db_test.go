package repos_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studioapi/internal/domain"
	"studioapi/internal/repos"
	"studioapi/internal/testutil"
)

func newMockDB(t *testing.T) (*repos.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestExecuteQuery_ReturnsRowsAsMaps(t *testing.T) {
	db := testutil.OpenDB(t, testutil.Config(t))

	rows, err := db.ExecuteQuery(context.Background(),
		`SELECT id, email, role FROM users WHERE role = :role ORDER BY id`,
		map[string]any{"role": "user"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "bob@studio.test", rows[0]["email"])
	assert.EqualValues(t, 2, rows[0]["id"])
	assert.Equal(t, "nopass@studio.test", rows[1]["email"])
}

func TestExecuteQuery_NoParams(t *testing.T) {
	db := testutil.OpenDB(t, testutil.Config(t))

	rows, err := db.ExecuteQuery(context.Background(), `SELECT COUNT(*) AS n FROM users`, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3, rows[0]["n"])
}

func TestExecuteQuery_ErrorIsReturned(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM users WHERE email = \?`).
		WithArgs("a@b.com").
		WillReturnError(errors.New("db down"))

	_, err := db.ExecuteQuery(context.Background(), `SELECT * FROM users WHERE email = :email`, map[string]any{"email": "a@b.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteQuery_MissingParam(t *testing.T) {
	db, _ := newMockDB(t)

	_, err := db.ExecuteQuery(context.Background(), `SELECT * FROM users WHERE email = :email`, map[string]any{})
	assert.Error(t, err)
}

func TestInsertRow_Success(t *testing.T) {
	db := testutil.OpenDB(t, testutil.Config(t))

	repo := repos.NewProcessLogRepo(db)
	repo.Append(context.Background(), domain.ProcessLog{UserID: 1, ResultData: "x", CreatedAt: time.Now().UTC()})

	assert.Equal(t, 1, testutil.CountProcessLogs(t, db))
	assert.Zero(t, db.WriteFailures())

	var got struct {
		UserID     int64  `db:"user_id"`
		ResultData string `db:"result_data"`
	}
	require.NoError(t, db.GetContext(context.Background(), &got, `SELECT user_id, result_data FROM process_logs`))
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "x", got.ResultData)
}

func TestInsertRow_BuildsSortedStatementInTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO process_logs (created_at, result_data, user_id) VALUES (?, ?, ?)`)).
		WithArgs(sqlmock.AnyArg(), "x", int64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	db.InsertRow(context.Background(), "process_logs", domain.ProcessLog{UserID: 7, ResultData: "x", CreatedAt: time.Now()}.Fields())

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Zero(t, db.WriteFailures())
}

func TestInsertRow_FailureIsSwallowedAndCounted(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO process_logs`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	db.InsertRow(context.Background(), "process_logs", map[string]any{"user_id": 1})

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, uint64(1), db.WriteFailures())
}

func TestInsertRow_BeginFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	db.InsertRow(context.Background(), "process_logs", map[string]any{"user_id": 1})

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, uint64(1), db.WriteFailures())
}

func TestInsertRow_RejectsBadIdentifiers(t *testing.T) {
	db, mock := newMockDB(t)

	db.InsertRow(context.Background(), "logs; DROP TABLE users", map[string]any{"user_id": 1})
	db.InsertRow(context.Background(), "process_logs", map[string]any{"user_id) VALUES (1); --": 1})
	db.InsertRow(context.Background(), "process_logs", nil)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, uint64(3), db.WriteFailures())
}

func TestUserRepo_ByEmail(t *testing.T) {
	db := testutil.OpenDB(t, testutil.Config(t))
	repo := repos.NewUserRepo(db)
	ctx := context.Background()

	u, err := repo.ByEmail(ctx, "alice@studio.test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	require.NotNil(t, u.Role)
	assert.Equal(t, "admin", *u.Role)
	assert.Equal(t, "Alice", *u.Name)
	assert.Equal(t, "active", *u.Status)
	assert.NotEmpty(t, u.Password)

	u, err = repo.ByEmail(ctx, "nopass@studio.test")
	require.NoError(t, err)
	assert.Empty(t, u.Password)

	_, err = repo.ByEmail(ctx, "ghost@studio.test")
	assert.ErrorIs(t, err, repos.ErrUserNotFound)
}

func TestUserRepo_ByEmailNullColumnsStayNull(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM users WHERE email = \?`).WithArgs("legacy@b.com").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "role", "name", "status", "password"}).
			AddRow(int64(8), "legacy@b.com", nil, nil, "active", "pw"))

	u, err := repos.NewUserRepo(db).ByEmail(context.Background(), "legacy@b.com")
	require.NoError(t, err)
	assert.Nil(t, u.Role)
	assert.Nil(t, u.Name)
	require.NotNil(t, u.Status)
	assert.Equal(t, "active", *u.Status)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":8,"email":"legacy@b.com","role":null,"name":null,"status":"active"}`, string(raw))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ByEmailDBError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM users WHERE email = \?`).WithArgs("a@b.com").WillReturnError(errors.New("too many connections"))

	_, err := repos.NewUserRepo(db).ByEmail(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repos.ErrUserNotFound)
	assert.Contains(t, err.Error(), "too many connections")
}

func TestOpenDB_MigrationFailure(t *testing.T) {
	restore := repos.SetGooseUp(func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("bad migration")
	})
	defer restore()

	_, err := repos.OpenDB(testutil.Config(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad migration")
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.DBDriver = "nope"

	_, err := repos.OpenDB(cfg)
	assert.Error(t, err)
}

func TestOpenDB_PoolSizedFromConfig(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.DBPoolSize = 4
	db := testutil.OpenDB(t, cfg)

	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
}

func TestOpenDB_PrivateMemoryDatabaseUsesOneConnection(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.DBName = ":memory:"
	cfg.DBPoolSize = 8
	db, err := repos.OpenDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	// the migrated schema lives on the only connection
	_, err = db.ExecContext(context.Background(), `INSERT INTO users(email) VALUES ('solo@studio.test')`)
	require.NoError(t, err)
	var n int
	require.NoError(t, db.GetContext(context.Background(), &n, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, n)
}
