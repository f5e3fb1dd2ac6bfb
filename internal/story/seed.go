package story

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/pipeline"
)

// runSeedStoryPrompt draws card options per category and debates each
// selection in deck order, earlier winners feeding later debates.
func runSeedStoryPrompt(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	deck, err := loadDeck("story_engine")
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selections, selected, err := debateDeck(ctx, rc, rng, deck, storyDeckOrder)
	if err != nil {
		return nil, err
	}
	return seedStoryFragment{
		prompt:     composeStoryPrompt(selected),
		selections: selections,
	}, nil
}

// runSeedSettingPrompt does the same over the world deck and fixes the run's
// visual style.
func runSeedSettingPrompt(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	deck, err := loadDeck("deck_of_worlds")
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selections, selected, err := debateDeck(ctx, rc, rng, deck, worldDeckOrder)
	if err != nil {
		return nil, err
	}
	return seedSettingFragment{
		prompt:     composeSettingPrompt(selected),
		selections: selections,
		style:      pickStyle(rng),
	}, nil
}

func debateDeck(ctx context.Context, rc *pipeline.RunContext, rng *rand.Rand, deck Deck, order []string) ([]codex.CardSelection, map[string]string, error) {
	roster := cardRoster()
	selections := make([]codex.CardSelection, 0, len(order))
	selected := make(map[string]string, len(order))
	var background strings.Builder
	for _, category := range order {
		cards, err := drawCards(rng, deck, category, rc.Config.CardsPerDraw)
		if err != nil {
			return nil, nil, err
		}
		session, err := rc.Debate.Decide(ctx, roster, debate.Context{
			Topic:      fmt.Sprintf("the %s card", strings.ToUpper(category)),
			Background: background.String(),
			Options:    cards,
		})
		if err != nil {
			return nil, nil, err
		}
		winner := session.WinnerOption()
		selected[category] = winner
		selections = append(selections, codex.CardSelection{
			Category:   category,
			Candidates: cards,
			Winner:     winner,
			Debate:     debateRecord(session),
		})
		fmt.Fprintf(&background, "%s: %s\n", category, winner)
		rc.Log.Printf("seed: %s -> %s", category, winner)
	}
	return selections, selected, nil
}
