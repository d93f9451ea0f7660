package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studioapi/internal/auth"
	"studioapi/internal/domain"
	"studioapi/internal/repos"
	"studioapi/internal/services"
)

type fakeUsers map[string]domain.User

func (f fakeUsers) ByEmail(_ context.Context, email string) (*domain.User, error) {
	if email == "boom@x.io" {
		return nil, errors.New("connection refused")
	}
	u, ok := f[email]
	if !ok {
		return nil, repos.ErrUserNotFound
	}
	return &u, nil
}

func ptr(s string) *string { return &s }

type recordingLogs struct{ got []domain.ProcessLog }

func (r *recordingLogs) Append(_ context.Context, p domain.ProcessLog) { r.got = append(r.got, p) }

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("Passw0rd!")
	require.NoError(t, err)

	svc := services.NewAuthService(fakeUsers{
		"alice@x.io": {ID: 1, Email: "alice@x.io", Role: ptr("admin"), Name: ptr("Alice"), Status: ptr("active"), Password: hash},
		"bob@x.io":   {ID: 2, Email: "bob@x.io", Password: "legacy"},
	})
	ctx := context.Background()

	u, err := svc.Login(ctx, "alice@x.io", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Empty(t, u.Password)

	u, err = svc.Login(ctx, "bob@x.io", "legacy")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)
	assert.Nil(t, u.Name)
	assert.Empty(t, u.Password)

	_, err = svc.Login(ctx, "alice@x.io", "nope")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	_, err = svc.Login(ctx, "ghost@x.io", "x")
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = svc.Login(ctx, "boom@x.io", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrBadCreds)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestResultService_Record(t *testing.T) {
	logs := &recordingLogs{}
	svc := services.NewResultService(logs)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	svc.Now = func() time.Time { return at }

	svc.Record(context.Background(), 9, json.RawMessage(`"x"`))

	require.Len(t, logs.got, 1)
	assert.Equal(t, int64(9), logs.got[0].UserID)
	assert.Equal(t, "x", logs.got[0].ResultData)
	assert.Equal(t, at.UTC(), logs.got[0].CreatedAt)
}

func TestResultText(t *testing.T) {
	cases := map[string]string{
		``:                  "null",
		`null`:              "null",
		`"plain"`:           "plain",
		`"with \"quotes\""`: `with "quotes"`,
		`42`:                "42",
		`true`:              "true",
		`{ "score" : 0.9 }`: `{"score":0.9}`,
		"[1, 2,\n 3]":       "[1,2,3]",
	}
	for in, want := range cases {
		assert.Equal(t, want, services.ResultText(json.RawMessage(in)), in)
	}
}
