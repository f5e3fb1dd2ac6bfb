package story

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
)

//go:embed decks/*.json
var deckFiles embed.FS

// Deck maps card categories to their card pool.
type Deck map[string][]string

// storyDeckOrder is the debate order for the story seed: character first,
// then motivation, object, obstacle, and flavor. Earlier selections feed the
// context of later debates.
var storyDeckOrder = []string{"agents", "engines", "anchors", "conflicts", "aspects"}

// worldDeckOrder is the debate order for the setting microsetting.
var worldDeckOrder = []string{"regions", "landmarks", "namesakes", "attributes", "advents"}

func loadDeck(name string) (Deck, error) {
	data, err := deckFiles.ReadFile("decks/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("story: load deck %s: %w", name, err)
	}
	var deck Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("story: parse deck %s: %w", name, err)
	}
	return deck, nil
}

// drawCards samples count distinct cards of one category.
func drawCards(rng *rand.Rand, deck Deck, category string, count int) ([]string, error) {
	pool, ok := deck[category]
	if !ok {
		return nil, fmt.Errorf("story: deck has no category %q", category)
	}
	if count > len(pool) {
		count = len(pool)
	}
	perm := rng.Perm(len(pool))
	cards := make([]string, count)
	for i := 0; i < count; i++ {
		cards[i] = pool[perm[i]]
	}
	return cards, nil
}

// composeStoryPrompt assembles the final seed sentence from the selected
// cards, in the deck's fixed grammatical order.
func composeStoryPrompt(selected map[string]string) string {
	return fmt.Sprintf("%s %s %s %s %s",
		selected["aspects"],
		selected["agents"],
		selected["engines"],
		selected["anchors"],
		selected["conflicts"],
	)
}

// composeSettingPrompt assembles the microsetting sentence.
func composeSettingPrompt(selected map[string]string) string {
	return fmt.Sprintf("%s, featuring %s, %s, %s, %s",
		selected["regions"],
		selected["landmarks"],
		selected["namesakes"],
		selected["attributes"],
		selected["advents"],
	)
}
