package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, "seed", seed.Name())

	fileFlag := seed.Flags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)
	assert.Equal(t, "", fileFlag.DefValue)

	for _, name := range []string{"verbose", "migrate"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}
}

func TestRootAcceptsArbitraryArgs(t *testing.T) {
	root := newRootCommand()

	cmd, _, err := root.Find([]string{"serve", "--now"})
	require.NoError(t, err)
	assert.Equal(t, root, cmd)
	assert.NoError(t, root.Args(root, []string{"serve", "--now"}))
}

func TestExtraArgsAndFlagsReachStartup(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"seed with extra args", []string{"seed", "extra.csv"}},
		{"seed with unknown flag", []string{"seed", "--dry-run"}},
		{"serve with unknown flag", []string{"--bogus"}},
		{"serve with positional args", []string{"serve", "now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("ENV", "test")

			root := newRootCommand()
			root.SetArgs(tt.args)

			// Startup fails on configuration, which means argument parsing succeeded
			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "DATABASE_URL must be set")
		})
	}
}

func TestMissingDatabaseURLFailsStartup(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENV", "test")

	root := newRootCommand()
	root.SetArgs([]string{"seed"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL must be set")
}
