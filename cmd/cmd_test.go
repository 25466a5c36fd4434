package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubcommandsRegistered(t *testing.T) {
	expected := []string{"compile", "watch", "serve", "list", "audit", "version"}
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %q should be registered", name)
	}
}

func TestCommandAliases(t *testing.T) {
	byName := map[string][]string{}
	for _, c := range rootCmd.Commands() {
		byName[c.Name()] = c.Aliases
	}
	assert.Contains(t, byName["compile"], "c")
	assert.Contains(t, byName["watch"], "w")
	assert.Contains(t, byName["serve"], "s")
}

func TestVersionCommandRejectsBadFormat(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"version"})
	require.NoError(t, err)

	versionFormat = "xml"
	t.Cleanup(func() { versionFormat = "text" })
	assert.Error(t, runVersionCommand(cmd, nil))
}
