package codex

// PhaseOutputs is the tagged union of phase payloads, keyed by phase name at
// the type level so cross-phase shape mismatches fail at compile time while
// the document still serializes to one flexible JSON object.
type PhaseOutputs struct {
	Seed       *SeedPayload       `json:"seed,omitempty"`
	Outline    *OutlinePayload    `json:"outline,omitempty"`
	Characters *CharactersPayload `json:"characters,omitempty"`
	Narrative  *NarrativePayload  `json:"narrative,omitempty"`
	Storyboard *StoryboardPayload `json:"storyboard,omitempty"`
	Prompts    *PromptsPayload    `json:"prompts,omitempty"`
	Media      *MediaPayload      `json:"media,omitempty"`
}

// DebateRecord is the persisted transcript of one Decision Session: every
// round, every statement, the tally, and the selected option. Only the
// winner is consumed downstream; the rest is kept for audit.
type DebateRecord struct {
	Topic     string         `json:"topic"`
	Options   []string       `json:"options"`
	Rounds    []DebateRound  `json:"rounds"`
	Votes     []DebateVote   `json:"votes"`
	Tally     []int          `json:"tally"`
	Winner    int            `json:"winner"`
	TieBroken bool           `json:"tie_broken,omitempty"`
}

// DebateRound holds the ordered statements of one round.
type DebateRound struct {
	Number     int               `json:"number"`
	Statements []DebateStatement `json:"statements"`
}

// DebateStatement is one persona's contribution to a round.
type DebateStatement struct {
	Persona string `json:"persona"`
	Text    string `json:"text"`
}

// DebateVote is one persona's ballot.
type DebateVote struct {
	Persona   string `json:"persona"`
	Choice    int    `json:"choice"`
	Abstained bool   `json:"abstained,omitempty"`
}

// VisualStyle is the look selected at seed time and threaded into every
// image prompt of the run.
type VisualStyle struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Modifiers   []string `json:"modifiers,omitempty"`
}

// CardSelection records one card category's debate outcome.
type CardSelection struct {
	Category   string        `json:"category"`
	Candidates []string      `json:"candidates"`
	Winner     string        `json:"winner"`
	Debate     *DebateRecord `json:"debate,omitempty"`
}

// SeedPayload is phase "seed": the story and setting prompts every later
// phase builds on.
type SeedPayload struct {
	StoryPrompt       string          `json:"story_prompt,omitempty"`
	StorySelections   []CardSelection `json:"story_selections,omitempty"`
	SettingPrompt     string          `json:"setting_prompt,omitempty"`
	SettingSelections []CardSelection `json:"setting_selections,omitempty"`
	VisualStyle       *VisualStyle    `json:"visual_style,omitempty"`
}

// StoryStructure is the high-level three-act skeleton.
type StoryStructure struct {
	Theme           string   `json:"theme"`
	CentralConflict string   `json:"central_conflict"`
	ActSummaries    []string `json:"act_summaries"`
}

// ActBeats is the beat sheet for one act.
type ActBeats struct {
	Act   int      `json:"act"`
	Beats []string `json:"beats"`
}

// SceneOutline describes one planned scene.
type SceneOutline struct {
	Number     int      `json:"number"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Location   string   `json:"location,omitempty"`
	Characters []string `json:"characters,omitempty"`
}

// ActOutline groups the scenes of one act.
type ActOutline struct {
	Number int            `json:"number"`
	Name   string         `json:"name"`
	Scenes []SceneOutline `json:"scenes"`
}

// OutlineCritique holds the critique texts plus the debated resolution.
type OutlineCritique struct {
	Structure string        `json:"structure"`
	Pacing    string        `json:"pacing"`
	Direction string        `json:"direction"`
	Decision  *DebateRecord `json:"decision,omitempty"`
}

// OutlinePayload is phase "outline". Structure, BeatSheet, and Critique are
// owned by their respective steps; Title/Logline/Acts are written by the
// scenes step and replaced wholesale by the revise step.
type OutlinePayload struct {
	Structure *StoryStructure  `json:"structure,omitempty"`
	BeatSheet []ActBeats       `json:"beat_sheet,omitempty"`
	Title     string           `json:"title,omitempty"`
	Logline   string           `json:"logline,omitempty"`
	Acts      []ActOutline     `json:"acts,omitempty"`
	Critique  *OutlineCritique `json:"critique,omitempty"`
	Revised   bool             `json:"revised,omitempty"`
}

// SceneCount sums scenes across acts.
func (p *OutlinePayload) SceneCount() int {
	total := 0
	for _, act := range p.Acts {
		total += len(act.Scenes)
	}
	return total
}

// Character is one cast record. IDs are assigned once at creation and never
// reused within a run.
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Appearance  string `json:"appearance,omitempty"`
	Motivation  string `json:"motivation,omitempty"`
}

// Location is one setting record.
type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Atmosphere  string `json:"atmosphere,omitempty"`
}

// NameDecision records the debated rename of one character.
type NameDecision struct {
	CharacterID string        `json:"character_id"`
	OldName     string        `json:"old_name"`
	Name        string        `json:"name"`
	Candidates  []string      `json:"candidates"`
	Debate      *DebateRecord `json:"debate,omitempty"`
}

// CharactersPayload is phase "characters". Characters/Locations are owned by
// the profiles step; NameDecisions by the names step (which also rewrites the
// Name fields it decided).
type CharactersPayload struct {
	Characters    []Character    `json:"characters,omitempty"`
	Locations     []Location     `json:"locations,omitempty"`
	NameDecisions []NameDecision `json:"name_decisions,omitempty"`
}

// CharacterByID finds a character record.
func (p *CharactersPayload) CharacterByID(id string) (Character, bool) {
	for _, ch := range p.Characters {
		if ch.ID == id {
			return ch, true
		}
	}
	return Character{}, false
}

// SceneProse is the written prose for one scene.
type SceneProse struct {
	Number    int    `json:"number"`
	Title     string `json:"title,omitempty"`
	Prose     string `json:"prose"`
	WordCount int    `json:"word_count,omitempty"`
}

// NarrativeAct groups the prose of one act.
type NarrativeAct struct {
	Number int          `json:"number"`
	Name   string       `json:"name"`
	Scenes []SceneProse `json:"scenes"`
}

// NarrativeCritique holds the manuscript critique plus its debated resolution.
type NarrativeCritique struct {
	Notes         string        `json:"notes"`
	FlaggedScenes []int         `json:"flagged_scenes,omitempty"`
	Direction     string        `json:"direction"`
	Decision      *DebateRecord `json:"decision,omitempty"`
}

// NarrativePayload is phase "narrative". Each act slot is owned by its own
// step; Critique by the critique step; Revised by the revise step.
type NarrativePayload struct {
	Acts     []NarrativeAct     `json:"acts,omitempty"`
	Critique *NarrativeCritique `json:"critique,omitempty"`
	Revised  bool               `json:"revised,omitempty"`
}

// Act returns the act with the given number, if written.
func (p *NarrativePayload) Act(number int) (NarrativeAct, bool) {
	for _, act := range p.Acts {
		if act.Number == number {
			return act, true
		}
	}
	return NarrativeAct{}, false
}

// Shot is one storyboard entry.
type Shot struct {
	Number          int     `json:"number"`
	Type            string  `json:"type"`
	DurationSeconds float64 `json:"duration_seconds"`
	Description     string  `json:"description"`
}

// SceneShots is the shot breakdown of one scene.
type SceneShots struct {
	Scene int    `json:"scene"`
	Shots []Shot `json:"shots"`
}

// StoryboardPayload is phase "storyboard".
type StoryboardPayload struct {
	Scenes []SceneShots `json:"scenes,omitempty"`
}

// ImagePrompt is one generation prompt tied to the entity it depicts.
type ImagePrompt struct {
	SubjectID string `json:"subject_id"`
	Subject   string `json:"subject"`
	Prompt    string `json:"prompt"`
}

// PromptsPayload is phase "prompts". Each slice is owned by its own step.
type PromptsPayload struct {
	CharacterPrompts []ImagePrompt `json:"character_prompts,omitempty"`
	LocationPrompts  []ImagePrompt `json:"location_prompts,omitempty"`
	ScenePrompts     []ImagePrompt `json:"scene_prompts,omitempty"`
}

// MediaResult records the outcome of one submitted media job. Failed leaves
// keep their error here instead of failing the whole step.
type MediaResult struct {
	SubjectID string   `json:"subject_id"`
	JobID     string   `json:"job_id,omitempty"`
	Status    string   `json:"status"`
	Outputs   []string `json:"outputs,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// MediaPayload is phase "media". Each slice is owned by its own step.
type MediaPayload struct {
	Portraits   []MediaResult `json:"portraits,omitempty"`
	SceneImages []MediaResult `json:"scene_images,omitempty"`
}
