package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Usage(t *testing.T) {
	assert.ErrorIs(t, run(context.Background(), nil), pflag.ErrHelp)
	assert.ErrorIs(t, run(context.Background(), []string{"help"}), pflag.ErrHelp)
	assert.EqualError(t, run(context.Background(), []string{"purge"}), `unknown command "purge"`)
}

func TestRun_RLSArguments(t *testing.T) {
	err := run(context.Background(), []string{"rls", "maybe"})
	assert.EqualError(t, err, "rls expects exactly one argument: on or off")
}

func TestRun_TokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	err := run(context.Background(), []string{"token", "--account", uuid.NewString()})
	assert.Error(t, err)
}

func TestParseAccount(t *testing.T) {
	_, err := parseAccount("")
	assert.EqualError(t, err, "--account is required")

	_, err = parseAccount("seller-1")
	assert.Error(t, err)

	id := uuid.New()
	got, err := parseAccount(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
