package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"birth", "bike", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "korea-atlas", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestBirthCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range birthCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["diff"])
	assert.True(t, names["export"])

	flag := birthExportCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, "out/birth", flag.DefValue)
}

func TestBikeCommand_Flags(t *testing.T) {
	for _, c := range []string{"start", "end", "year", "region", "input"} {
		assert.NotNil(t, bikeSummaryCmd.Flags().Lookup(c), c)
		assert.NotNil(t, bikeExportCmd.Flags().Lookup(c), c)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
