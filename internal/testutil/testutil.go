// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studioapi/internal/auth"
	"studioapi/internal/config"
	"studioapi/internal/repos"
)

const (
	Secret   = "test-secret"
	Password = "Passw0rd!"
)

var dbSeq atomic.Int64

// Config returns a sqlite config pointing at a fresh shared-cache in-memory
// database with migrations enabled.
func Config(t *testing.T) config.Config {
	t.Helper()
	name := fmt.Sprintf("file:studio_%d?mode=memory&cache=shared", dbSeq.Add(1))
	return config.Config{
		DBDriver:       "sqlite",
		DBName:         name,
		DBPassword:     "unused",
		DBPoolSize:     4,
		DBPoolRecycle:  time.Hour,
		DBMigrate:      true,
		JWTSecret:      Secret,
		AllowedOrigins: "*",
	}
}

// OpenDB opens a migrated in-memory database seeded with:
//
//	1 alice@studio.test  bcrypt hash of Password, role admin
//	2 bob@studio.test    legacy plaintext "legacy-pass", role user
//	3 nopass@studio.test NULL password
func OpenDB(t *testing.T, cfg config.Config) *repos.DB {
	t.Helper()
	db, err := repos.OpenDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hash, err := auth.HashPassword(Password)
	require.NoError(t, err)

	_, err = db.ExecContext(context.Background(), `
		INSERT INTO users(id, email, role, name, status, password) VALUES
		  (1, 'alice@studio.test', 'admin', 'Alice', 'active', ?),
		  (2, 'bob@studio.test', 'user', 'Bob', 'active', 'legacy-pass'),
		  (3, 'nopass@studio.test', 'user', 'Nobody', 'disabled', NULL)`, hash)
	require.NoError(t, err)
	return db
}

// Token signs a token for userID with the test secret.
func Token(t *testing.T, userID int64, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.NewTokenIssuer(Secret).Issue(auth.TokenSubject{ID: userID, Role: "user"}, ttl)
	require.NoError(t, err)
	return tok
}

// CountProcessLogs returns the number of rows in process_logs.
func CountProcessLogs(t *testing.T, db *repos.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.GetContext(context.Background(), &n, `SELECT COUNT(*) FROM process_logs`))
	return n
}
