package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBuildFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := AddBuildFlags(cmd)

	require.NoError(t, cmd.ParseFlags([]string{"-j", "3", "--dedup", "--poll-interval", "20ms", "-s", "a.toml,b.yaml"}))
	assert.Equal(t, 3, flags.Workers)
	assert.True(t, flags.Dedup)
	assert.Equal(t, 20*time.Millisecond, flags.PollInterval)
	assert.Equal(t, []string{"a.toml", "b.yaml"}, flags.Symbols)
	assert.Equal(t, 64, flags.MaxDepth)
}

func TestBuildFlagValidation(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	AddBuildFlags(cmd)

	assert.Error(t, cmd.ParseFlags([]string{"--workers", "-1"}))
	assert.Error(t, cmd.ParseFlags([]string{"--max-depth", "0"}))
}

func TestBindFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	AddBuildFlags(cmd)
	require.NoError(t, BindFlags(cmd, buildFlagKeys))
	require.NoError(t, cmd.ParseFlags([]string{"--workers", "5", "--compile"}))

	assert.Equal(t, 5, viper.GetInt("build.workers"))
	assert.True(t, viper.GetBool("compiler.enabled"))
	assert.Equal(t, 64, viper.GetInt("build.max_depth"))

	// Unknown flags are skipped
	assert.NoError(t, BindFlags(cmd, map[string]string{"nope": "x.y"}))
}

func TestValidateFormat(t *testing.T) {
	valid := []string{"table", "json", "yaml"}

	assert.NoError(t, ValidateFormat("json", valid))
	assert.NoError(t, ValidateFormat("YAML", valid))

	err := ValidateFormat("js", valid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "json"`)

	err = ValidateFormat("xml", valid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json, yaml")
}

func TestNumberValidators(t *testing.T) {
	assert.NoError(t, ValidateNonNegative("0"))
	assert.Error(t, ValidateNonNegative("-1"))
	assert.Error(t, ValidateNonNegative("two"))

	assert.NoError(t, ValidatePositive("1"))
	assert.Error(t, ValidatePositive("0"))
}
