package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapWriteError(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "invitations_slug_key"}
	err := mapWriteError(fmt.Errorf("insert: %w", dup))
	require.True(t, errors.Is(err, ErrDuplicate))
	require.Contains(t, err.Error(), "invitations_slug_key")

	other := errors.New("connection reset")
	require.Equal(t, other, mapWriteError(other))
}

func TestClampPage(t *testing.T) {
	l, o := clampPage(0, -5)
	require.Equal(t, 20, l)
	require.Equal(t, 0, o)

	l, o = clampPage(500, 40)
	require.Equal(t, 20, l)
	require.Equal(t, 40, o)

	l, _ = clampPage(50, 0)
	require.Equal(t, 50, l)
}

func TestUnmarshalJSONEmptyIsNoop(t *testing.T) {
	var v struct{ A int }
	require.NoError(t, unmarshalJSON(nil, &v))
	require.NoError(t, unmarshalJSON([]byte(`{"A":3}`), &v))
	require.Equal(t, 3, v.A)
}

func TestHashKeyHidesEmail(t *testing.T) {
	h := HashKey("login:host@example.com")
	require.Len(t, h, 64)
	require.NotContains(t, h, "host")
	require.Equal(t, h, HashKey("login:host@example.com"))
	require.NotEqual(t, h, HashKey("login:other@example.com"))
}
