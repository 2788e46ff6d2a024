package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/registry"
	_ "github.com/storium/figmentator/internal/stubmodel"
)

func TestNewBuildsRegisteredModel(t *testing.T) {
	m, err := registry.New(figmodel.SceneEntrySuggestion)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewUnknownTypeErrors(t *testing.T) {
	_, err := registry.New(figmodel.SuggestionType("unknown"))
	assert.Error(t, err)
}

func TestTypesIncludesRegisteredModels(t *testing.T) {
	assert.Contains(t, registry.Types(), figmodel.SceneEntrySuggestion)
}
