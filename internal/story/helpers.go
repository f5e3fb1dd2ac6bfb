package story

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/debate"
)

// decodeInto parses a model response as JSON, tolerating markdown code
// fences around the document.
func decodeInto(text string, v any) error {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return fmt.Errorf("story: decode model response: %w", err)
	}
	return nil
}

// debateRecord converts a finished session into its persisted form.
func debateRecord(s *debate.Session) *codex.DebateRecord {
	if s == nil {
		return nil
	}
	record := &codex.DebateRecord{
		Topic:     s.Context.Topic,
		Options:   append([]string(nil), s.Context.Options...),
		Tally:     append([]int(nil), s.Tally...),
		Winner:    s.Winner,
		TieBroken: s.TieBroken,
	}
	for _, round := range s.Rounds {
		rec := codex.DebateRound{Number: round.Number}
		for _, st := range round.Statements {
			rec.Statements = append(rec.Statements, codex.DebateStatement{Persona: st.Persona, Text: st.Text})
		}
		record.Rounds = append(record.Rounds, rec)
	}
	for _, vote := range s.Votes {
		record.Votes = append(record.Votes, codex.DebateVote{Persona: vote.Persona, Choice: vote.Choice, Abstained: vote.Abstained})
	}
	return record
}

// nameMapping builds old-name -> final-name substitutions from the name
// decisions. Downstream steps apply it when rendering outline or profile
// text; the stored outline itself stays untouched (it belongs to the outline
// steps).
func nameMapping(p *codex.CharactersPayload) map[string]string {
	if p == nil {
		return nil
	}
	mapping := make(map[string]string, len(p.NameDecisions))
	for _, decision := range p.NameDecisions {
		if decision.OldName != "" && decision.Name != "" && decision.OldName != decision.Name {
			mapping[decision.OldName] = decision.Name
		}
	}
	return mapping
}

// substituteNames applies the rename mapping to free text.
func substituteNames(text string, mapping map[string]string) string {
	for old, final := range mapping {
		text = strings.ReplaceAll(text, old, final)
	}
	return text
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// outlineSummary renders the outline compactly for prompt context, with
// debated character names applied.
func outlineSummary(outline *codex.OutlinePayload, mapping map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nLogline: %s\n", outline.Title, outline.Logline)
	for _, act := range outline.Acts {
		fmt.Fprintf(&b, "Act %d - %s:\n", act.Number, act.Name)
		for _, scene := range act.Scenes {
			fmt.Fprintf(&b, "  Scene %d (%s): %s\n", scene.Number, scene.Title, scene.Summary)
		}
	}
	return substituteNames(b.String(), mapping)
}

// charactersSummary renders the cast compactly for prompt context.
func charactersSummary(p *codex.CharactersPayload) string {
	var b strings.Builder
	for _, ch := range p.Characters {
		fmt.Fprintf(&b, "%s (%s): %s\n", ch.Name, ch.Role, ch.Description)
	}
	for _, loc := range p.Locations {
		fmt.Fprintf(&b, "Location %s: %s\n", loc.Name, loc.Description)
	}
	return b.String()
}

// tail returns the last n runes of prior prose, used to keep scene-to-scene
// continuity without resending whole acts.
func tail(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
