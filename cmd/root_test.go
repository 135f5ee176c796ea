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

	for _, name := range []string{"render", "census"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "urban-map", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRenderCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range renderCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["density"])
	assert.True(t, names["local-authority"])
}

func TestRenderDensityCommand_Flags(t *testing.T) {
	flag := renderDensityCmd.Flags().Lookup("ent-type")
	require.NotNil(t, flag, "density should have --ent-type flag")
	assert.Equal(t, "GND", flag.DefValue)

	flag = renderDensityCmd.Flags().Lookup("threshold")
	require.NotNil(t, flag, "density should have --threshold flag")
	assert.Equal(t, "1500", flag.DefValue)
}

func TestCensusImportCommand_RequiredFlags(t *testing.T) {
	flag := censusImportCmd.Flags().Lookup("tsv")
	require.NotNil(t, flag, "census import should have --tsv flag")
	assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
}
