package story

import (
	"strings"
	"testing"

	"github.com/kingrea/storyforge/internal/codex"
)

func TestDecodeIntoToleratesFences(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}
	cases := []string{
		`{"title": "bare"}`,
		"```json\n{\"title\": \"bare\"}\n```",
		"```\n{\"title\": \"bare\"}\n```",
		"  \n{\"title\": \"bare\"}\n  ",
	}
	for _, text := range cases {
		var p payload
		if err := decodeInto(text, &p); err != nil {
			t.Fatalf("decode %q: %v", text, err)
		}
		if p.Title != "bare" {
			t.Fatalf("decode %q gave %+v", text, p)
		}
	}
	var p payload
	if err := decodeInto("the model apologized instead of answering", &p); err == nil {
		t.Fatal("non-JSON must fail")
	}
}

func TestNameMappingAndSubstitution(t *testing.T) {
	chars := &codex.CharactersPayload{
		NameDecisions: []codex.NameDecision{
			{CharacterID: "char_001", OldName: "Mara", Name: "Ilsabet"},
			{CharacterID: "char_002", OldName: "Tomas", Name: "Tomas"},
		},
	}
	mapping := nameMapping(chars)
	if len(mapping) != 1 {
		t.Fatalf("mapping = %v, unchanged names must be excluded", mapping)
	}
	got := substituteNames("Mara waits while Tomas watches the gate.", mapping)
	if got != "Ilsabet waits while Tomas watches the gate." {
		t.Fatalf("substituted = %q", got)
	}
	if nameMapping(nil) != nil {
		t.Fatal("nil payload should yield nil mapping")
	}
}

func TestOutlineSummaryAppliesMapping(t *testing.T) {
	outline := &codex.OutlinePayload{
		Title:   "The Salt Road",
		Logline: "Mara crosses the flats.",
		Acts: []codex.ActOutline{
			{Number: 1, Name: "Setup", Scenes: []codex.SceneOutline{
				{Number: 1, Title: "Departure", Summary: "Mara leaves home."},
			}},
		},
	}
	summary := outlineSummary(outline, map[string]string{"Mara": "Ilsabet"})
	if strings.Contains(summary, "Mara") {
		t.Fatalf("summary still has old name:\n%s", summary)
	}
	if !strings.Contains(summary, "Ilsabet leaves home.") {
		t.Fatalf("summary missing renamed scene:\n%s", summary)
	}
	// The stored outline is untouched.
	if outline.Acts[0].Scenes[0].Summary != "Mara leaves home." {
		t.Fatal("outline payload mutated by rendering")
	}
}

func TestTail(t *testing.T) {
	if got := tail("abcdef", 3); got != "def" {
		t.Fatalf("tail = %q", got)
	}
	if got := tail("ab", 5); got != "ab" {
		t.Fatalf("short tail = %q", got)
	}
}

func TestWordCount(t *testing.T) {
	if got := wordCount("  one two\nthree  "); got != 3 {
		t.Fatalf("wordCount = %d", got)
	}
}
