package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storium/figmentator/internal/config"
	"github.com/storium/figmentator/internal/figmodel"
)

func TestEnvHelpersFallBackToDefault(t *testing.T) {
	assert.Equal(t, "fallback", config.EnvString("FIG_TEST_TRULY_UNSET", "fallback"))
	assert.Equal(t, 7, config.EnvInt("FIG_TEST_TRULY_UNSET", 7))
	assert.Equal(t, 1.5, config.EnvFloat("FIG_TEST_TRULY_UNSET", 1.5))
	assert.Equal(t, true, config.EnvBool("FIG_TEST_TRULY_UNSET", true))
}

func TestEnvHelpersParseSetValues(t *testing.T) {
	t.Setenv("FIG_TEST_STR", "hello")
	t.Setenv("FIG_TEST_INT", "42")
	t.Setenv("FIG_TEST_FLOAT", "0.25")
	t.Setenv("FIG_TEST_BOOL", "true")

	assert.Equal(t, "hello", config.EnvString("FIG_TEST_STR", "fallback"))
	assert.Equal(t, 42, config.EnvInt("FIG_TEST_INT", 0))
	assert.Equal(t, 0.25, config.EnvFloat("FIG_TEST_FLOAT", 0))
	assert.Equal(t, true, config.EnvBool("FIG_TEST_BOOL", false))
}

func TestSchedulerSettingsForUsesPerTypePrefix(t *testing.T) {
	t.Setenv("FIG_SCHEDULER_SCENE_ENTRY_WAIT_TIME", "0.25")
	t.Setenv("FIG_SCHEDULER_SCENE_ENTRY_MAX_BATCH_SIZE", "20")
	t.Setenv("FIG_SCHEDULER_SCENE_ENTRY_NUM_WORKERS", "5")

	settings := config.SchedulerSettingsFor(figmodel.SceneEntrySuggestion)
	assert.Equal(t, 250*time.Millisecond, settings.WaitTime)
	assert.Equal(t, 20, settings.MaxBatchSize)
	assert.Equal(t, 5, settings.NumWorkers)
}

func TestSchedulerSettingsForDefaultsWhenUnset(t *testing.T) {
	settings := config.SchedulerSettingsFor(figmodel.SuggestionType("unused_type"))
	assert.Equal(t, 100*time.Millisecond, settings.WaitTime)
	assert.Equal(t, 10, settings.MaxBatchSize)
	assert.Equal(t, 3, settings.NumWorkers)
}

func TestLoadFactoryConfigEmptyWhenUnset(t *testing.T) {
	cfg, err := config.LoadFactoryConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg)
}

func TestLoadFactoryConfigParsesJSON(t *testing.T) {
	t.Setenv("FIG_FACTORY_FIGMENTATORS", `{"scene_entry":{"cls":"process","requires":["figmentator-worker"],"properties":{"model_path":"/models/x"}}}`)

	cfg, err := config.LoadFactoryConfig()
	require.NoError(t, err)
	require.Contains(t, cfg, figmodel.SceneEntrySuggestion)
	entry := cfg[figmodel.SceneEntrySuggestion]
	assert.Equal(t, "process", entry.Class)
	assert.Equal(t, []string{"figmentator-worker"}, entry.Requires)
	assert.Equal(t, "/models/x", entry.Properties["model_path"])
}
