package story

import (
	"strings"
	"testing"
)

func TestDecodeOutlineDraftEnforcesSceneRange(t *testing.T) {
	doc := `{
		"title": "The Salt Road",
		"logline": "A crossing that costs too much.",
		"acts": [
			{"number": 1, "name": "Setup", "scenes": [
				{"number": 1, "title": "Departure", "summary": "Leaving."},
				{"number": 2, "title": "The Flats", "summary": "Crossing."}
			]},
			{"number": 2, "name": "Confrontation", "scenes": [
				{"number": 3, "title": "Ambush", "summary": "Trouble."}
			]},
			{"number": 3, "name": "Resolution", "scenes": [
				{"number": 4, "title": "Arrival", "summary": "Home."}
			]}
		]
	}`
	draft, err := decodeOutlineDraft(doc, 3, 4)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if draft.Title != "The Salt Road" || len(draft.Acts) != 3 {
		t.Fatalf("draft = %+v", draft)
	}

	if _, err := decodeOutlineDraft(doc, 6, 8); err == nil {
		t.Fatal("four scenes must fail a 6-8 scope")
	} else if !strings.Contains(err.Error(), "4 scenes") {
		t.Fatalf("err = %v, want scene count named", err)
	}

	untitled := strings.Replace(doc, `"title": "The Salt Road",`, `"title": "",`, 1)
	if _, err := decodeOutlineDraft(untitled, 3, 4); err == nil {
		t.Fatal("missing title must fail")
	}
}
