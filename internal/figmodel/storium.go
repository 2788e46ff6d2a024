package figmodel

import "encoding/json"

// EntryFormat describes what kind of move a SceneEntry represents.
type EntryFormat string

const (
	FormatEstablishment EntryFormat = "establishment"
	FormatAddition      EntryFormat = "addition"
	FormatConclusion    EntryFormat = "conclusion"
	FormatMove          EntryFormat = "move"
	FormatRefresh       EntryFormat = "refresh"
	FormatSubplot       EntryFormat = "subplot"
)

// CardNamespace is the type of a Card.
type CardNamespace string

const (
	NamespaceCharType  CardNamespace = "chartype"
	NamespaceGoal      CardNamespace = "goal"
	NamespacePerson    CardNamespace = "person"
	NamespacePlace     CardNamespace = "place"
	NamespaceThing     CardNamespace = "thing"
	NamespaceStrength  CardNamespace = "strength"
	NamespaceWeakness  CardNamespace = "weakness"
	NamespaceObstacle  CardNamespace = "obstacle"
	NamespaceSubplot   CardNamespace = "subplot"
)

// Image is a user-facing image asset attached to a card or entry.
type Image struct {
	URL             *string `json:"url,omitempty"`
	AttributionURL  *string `json:"attribution_url,omitempty"`
	AttributionText *string `json:"attribution_text,omitempty"`
	AltText         *string `json:"alt_text,omitempty"`
}

// Card is a single card in Storium's export format. Only the fields this
// gateway reads or round-trips are modeled explicitly; anything else
// carried by a card lands in Extra.
type Card struct {
	CardID      string        `json:"card_id"`
	Name        *string       `json:"name,omitempty"`
	Namespace   CardNamespace `json:"namespace"`
	Image       *Image        `json:"image,omitempty"`
	Polarity    int           `json:"polarity"`
	Description *string       `json:"description,omitempty"`
	IsDeleted   bool          `json:"is_deleted"`
	IsWild      bool          `json:"is_wild"`

	Extra map[string]json.RawMessage `json:"-"`
}

// HandCardStack is a stack of identical cards in a player's hand.
type HandCardStack struct {
	CardID    string `json:"card_id"`
	StackSize int    `json:"stack_size"`
}

// HandContext captures the pre/post state of an entry's role's hand. The
// export format allows the literal string "unchanged" in place of a card
// list as a size optimization, so both fields are raw JSON.
type HandContext struct {
	Pre  json.RawMessage `json:"pre"`
	Post json.RawMessage `json:"post"`
}

// Autotext annotates a mechanical card change made as part of a move.
type Autotext struct {
	Type             string  `json:"type"`
	ToCharacterSeqID *string `json:"to_character_seq_id,omitempty"`
	Card             *Card   `json:"card,omitempty"`
	NewCard          *Card   `json:"new_card,omitempty"`
	Automatic        bool    `json:"automatic"`
	Text             string  `json:"text"`
}

// SceneEntry is a single move in a Storium scene. It is the object this
// gateway mutates: a model appends generated text to Description and the
// mutated entry is returned to the caller. Fields not modeled here are
// preserved via Extra so that round-tripping through this gateway never
// drops caller data.
//
// https://storium.com/help/export/json/0.9.2
type SceneEntry struct {
	UserPid                       string       `json:"user_pid"`
	SeqID                         string       `json:"seq_id"`
	Format                        EntryFormat  `json:"format"`
	PrettyFormat                  string       `json:"pretty_format"`
	CharacterSeqID                *string      `json:"character_seq_id,omitempty"`
	Role                          string       `json:"role"`
	Description                   *string      `json:"description"`
	CreatedAt                     string       `json:"created_at"`
	Image                         *Image       `json:"image,omitempty"`
	HandContext                   *HandContext `json:"hand_context,omitempty"`
	ChallengeCards                []Card       `json:"challenge_cards"`
	TargetChallengeCard           *Card        `json:"target_challenge_card,omitempty"`
	CardsPlayedOnChallenge        []Card       `json:"cards_played_on_challenge"`
	ChallengeCompletionPolarity   *int         `json:"challenge_completion_polarity,omitempty"`
	PlaceCard                     *Card        `json:"place_card,omitempty"`
	CardsForPickup                []Card       `json:"cards_for_pickup"`
	Autotexts                     []Autotext   `json:"autotexts"`
	AuthorIsNarratorWhenPublished bool         `json:"author_is_narrator_when_published"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Clone returns a deep-enough copy of the entry for a model to mutate
// without affecting the caller's original.
func (e *SceneEntry) Clone() *SceneEntry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Description != nil {
		desc := *e.Description
		clone.Description = &desc
	}
	if e.Extra != nil {
		clone.Extra = make(map[string]json.RawMessage, len(e.Extra))
		for k, v := range e.Extra {
			clone.Extra[k] = v
		}
	}
	return &clone
}
