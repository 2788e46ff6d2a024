package figmodel

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// sceneEntryAlias avoids infinite recursion when the custom
// (Un)MarshalJSON methods below delegate back into jsoniter.
type sceneEntryAlias SceneEntry

// MarshalJSON merges the modeled fields with whatever unmodeled fields
// were captured in Extra, so a SceneEntry round-trips without losing
// caller data this gateway doesn't understand.
func (e SceneEntry) MarshalJSON() ([]byte, error) {
	modeled, err := api.Marshal(sceneEntryAlias(e))
	if err != nil {
		return nil, fmt.Errorf("figmodel: marshaling scene entry: %w", err)
	}
	return mergeExtra(modeled, e.Extra)
}

// UnmarshalJSON decodes the modeled fields and stashes every other
// top-level key into Extra.
func (e *SceneEntry) UnmarshalJSON(data []byte) error {
	var alias sceneEntryAlias
	if err := api.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("figmodel: unmarshaling scene entry: %w", err)
	}

	extra, err := splitExtra(data, modeledSceneEntryKeys)
	if err != nil {
		return err
	}

	*e = SceneEntry(alias)
	e.Extra = extra
	return nil
}

type cardAlias Card

func (c Card) MarshalJSON() ([]byte, error) {
	modeled, err := api.Marshal(cardAlias(c))
	if err != nil {
		return nil, fmt.Errorf("figmodel: marshaling card: %w", err)
	}
	return mergeExtra(modeled, c.Extra)
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var alias cardAlias
	if err := api.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("figmodel: unmarshaling card: %w", err)
	}

	extra, err := splitExtra(data, modeledCardKeys)
	if err != nil {
		return err
	}

	*c = Card(alias)
	c.Extra = extra
	return nil
}

var modeledSceneEntryKeys = keySet(
	"user_pid", "seq_id", "format", "pretty_format", "character_seq_id", "role",
	"description", "created_at", "image", "hand_context", "challenge_cards",
	"target_challenge_card", "cards_played_on_challenge",
	"challenge_completion_polarity", "place_card", "cards_for_pickup",
	"autotexts", "author_is_narrator_when_published",
)

var modeledCardKeys = keySet(
	"card_id", "name", "namespace", "image", "polarity", "description",
	"is_deleted", "is_wild",
)

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// splitExtra parses data as a JSON object and returns every key not in
// modeled.
func splitExtra(data []byte, modeled map[string]struct{}) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := api.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("figmodel: splitting unmodeled fields: %w", err)
	}

	for key := range modeled {
		delete(raw, key)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// mergeExtra decodes modeled (a JSON object) and writes back in every key
// from extra that isn't already present.
func mergeExtra(modeled []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return modeled, nil
	}

	var merged map[string]json.RawMessage
	if err := api.Unmarshal(modeled, &merged); err != nil {
		return nil, fmt.Errorf("figmodel: merging extra fields: %w", err)
	}
	for k, v := range extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}

	out, err := api.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("figmodel: marshaling merged fields: %w", err)
	}
	return out, nil
}
