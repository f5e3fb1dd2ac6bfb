package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/pipeline"
)

func runCharacterProfiles(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	seed := rc.Codex.Outputs.Seed
	outline := rc.Codex.Outputs.Outline
	if seed == nil || outline == nil || len(outline.Acts) == 0 {
		return nil, fmt.Errorf("story: seed or outline missing")
	}
	profile, err := rc.Config.Scope.Profile()
	if err != nil {
		return nil, err
	}
	text, err := rc.Gateway.Text.Complete(ctx, writerSystem, profilesPrompt(outlineSummary(outline, nil), seed.SettingPrompt, profile))
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Characters []codex.Character `json:"characters"`
		Locations  []codex.Location  `json:"locations"`
	}
	if err := decodeInto(text, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Characters) == 0 {
		return nil, fmt.Errorf("story: profiles response has no characters")
	}
	if len(decoded.Characters) > profile.MaxCharacters {
		decoded.Characters = decoded.Characters[:profile.MaxCharacters]
	}
	if len(decoded.Locations) > profile.MaxLocations {
		decoded.Locations = decoded.Locations[:profile.MaxLocations]
	}
	for i := range decoded.Characters {
		decoded.Characters[i].ID = fmt.Sprintf("char_%03d", i+1)
	}
	for i := range decoded.Locations {
		decoded.Locations[i].ID = fmt.Sprintf("loc_%03d", i+1)
	}
	return charactersProfilesFragment{characters: decoded.Characters, locations: decoded.Locations}, nil
}

// nameCandidateCount is how many alternatives the naming debate weighs per
// character, in addition to keeping the draft name.
const nameCandidateCount = 4

func runCharacterNames(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	seed := rc.Codex.Outputs.Seed
	chars := rc.Codex.Outputs.Characters
	if seed == nil || chars == nil || len(chars.Characters) == 0 {
		return nil, fmt.Errorf("story: character profiles missing")
	}
	taken := make([]string, 0, len(chars.Characters))
	for _, ch := range chars.Characters {
		taken = append(taken, ch.Name)
	}
	decisions := make([]codex.NameDecision, 0, len(chars.Characters))
	for _, ch := range chars.Characters {
		decision, err := debateName(ctx, rc, ch, seed.SettingPrompt, taken)
		if err != nil {
			return nil, fmt.Errorf("story: name character %s: %w", ch.ID, err)
		}
		decisions = append(decisions, decision)
		if decision.Name != decision.OldName {
			taken = append(taken, decision.Name)
		}
	}
	return charactersNamesFragment{decisions: decisions}, nil
}

// debateName proposes fresh name candidates for one character and has the
// naming roster vote between them and the draft name.
func debateName(ctx context.Context, rc *pipeline.RunContext, ch codex.Character, settingPrompt string, taken []string) (codex.NameDecision, error) {
	text, err := rc.Gateway.Text.Complete(ctx, writerSystem, nameCandidatesPrompt(ch, settingPrompt, nameCandidateCount, taken))
	if err != nil {
		return codex.NameDecision{}, err
	}
	var decoded struct {
		Candidates []string `json:"candidates"`
	}
	if err := decodeInto(text, &decoded); err != nil {
		return codex.NameDecision{}, err
	}
	options := make([]string, 0, len(decoded.Candidates)+1)
	options = append(options, ch.Name)
	for _, candidate := range decoded.Candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || candidate == ch.Name {
			continue
		}
		options = append(options, candidate)
	}
	session, err := rc.Debate.Decide(ctx, nameRoster(), debate.Context{
		Topic: fmt.Sprintf("the final name for %s", ch.Name),
		Background: fmt.Sprintf("Role: %s\nDescription: %s\nSetting: %s\nNames already in use: %s",
			ch.Role, ch.Description, settingPrompt, strings.Join(taken, ", ")),
		Options: options,
	})
	if err != nil {
		return codex.NameDecision{}, err
	}
	return codex.NameDecision{
		CharacterID: ch.ID,
		OldName:     ch.Name,
		Name:        session.WinnerOption(),
		Candidates:  options,
		Debate:      debateRecord(session),
	}, nil
}
