package debate

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Generator produces persona statements and ballots. The gateway's text
// client satisfies this; tests substitute a scripted fake.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Engine runs Decision Sessions. The same engine is reused for card
// selection, name selection, and critique resolution; only the Context shape
// differs per call site.
type Engine struct {
	gen    Generator
	rounds int
}

// Option customizes the engine.
type Option func(*Engine)

// WithRounds overrides the total round count (default 2: opinions then
// rebuttal).
func WithRounds(rounds int) Option {
	return func(e *Engine) {
		if rounds > 0 {
			e.rounds = rounds
		}
	}
}

// NewEngine wires a debate engine to a statement generator.
func NewEngine(gen Generator, opts ...Option) (*Engine, error) {
	if gen == nil {
		return nil, fmt.Errorf("debate: generator is required")
	}
	engine := &Engine{gen: gen, rounds: 2}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Decide runs the full protocol: statement rounds, one ballot per voting
// persona, majority tally, tie-break. The returned session carries the full
// transcript; on NoConsensusError the transcript collected so far is still
// returned alongside the error.
func (e *Engine) Decide(ctx context.Context, roster []Persona, dc Context) (*Session, error) {
	if err := validateRoster(roster); err != nil {
		return nil, err
	}
	session := &Session{Context: dc, Winner: -1}
	if len(dc.Options) == 0 {
		return session, &NoConsensusError{Topic: dc.Topic}
	}
	voters, tieBreak := splitRoster(roster)

	// Round 1 conditions only on the decision context; later rounds see the
	// accumulated transcript.
	for number := 1; number <= e.rounds; number++ {
		round := Round{Number: number}
		transcript := session.Transcript()
		for _, persona := range voters {
			prompt := statementPrompt(dc, transcript)
			text, err := e.gen.Complete(ctx, persona.System, prompt)
			if err != nil {
				return session, err
			}
			round.Statements = append(round.Statements, Statement{Persona: persona.Name, Text: strings.TrimSpace(text)})
		}
		session.Rounds = append(session.Rounds, round)
	}

	transcript := session.Transcript()
	for _, persona := range voters {
		text, err := e.gen.Complete(ctx, persona.System, ballotPrompt(dc, transcript))
		if err != nil {
			return session, err
		}
		choice, ok := parseChoice(text, len(dc.Options))
		session.Votes = append(session.Votes, Vote{Persona: persona.Name, Choice: choice, Abstained: !ok})
	}

	session.Tally = tallyVotes(session.Votes, len(dc.Options))
	winner, leaders := selectWinner(session.Tally)
	if winner >= 0 {
		session.Winner = winner
		return session, nil
	}

	if tieBreak == nil {
		return session, &NoConsensusError{Topic: dc.Topic, Tied: leaders}
	}
	text, err := e.gen.Complete(ctx, tieBreak.System, tieBreakPrompt(dc, leaders, transcript))
	if err != nil {
		return session, err
	}
	choice, ok := parseChoice(text, len(dc.Options))
	vote := Vote{Persona: tieBreak.Name, Choice: choice, Abstained: !ok || !contains(leaders, choice)}
	session.TieBreakVote = &vote
	if vote.Abstained {
		return session, &NoConsensusError{Topic: dc.Topic, Tied: leaders}
	}
	session.Winner = vote.Choice
	session.TieBroken = true
	return session, nil
}

// tallyVotes counts non-abstaining ballots per option.
func tallyVotes(votes []Vote, options int) []int {
	tally := make([]int, options)
	for _, vote := range votes {
		if vote.Abstained {
			continue
		}
		if vote.Choice >= 0 && vote.Choice < options {
			tally[vote.Choice]++
		}
	}
	return tally
}

// selectWinner applies the deterministic rule: an option with a strict
// plurality wins; otherwise the tied leaders go to the tie-break. With no
// votes at all every option is a leader.
func selectWinner(tally []int) (winner int, leaders []int) {
	max := 0
	for _, count := range tally {
		if count > max {
			max = count
		}
	}
	if max == 0 {
		for i := range tally {
			leaders = append(leaders, i)
		}
		return -1, leaders
	}
	for i, count := range tally {
		if count == max {
			leaders = append(leaders, i)
		}
	}
	if len(leaders) == 1 {
		return leaders[0], leaders
	}
	return -1, leaders
}

// parseChoice extracts the first in-range option number from a ballot.
// Ballots are one-based on the wire; the returned index is zero-based.
func parseChoice(text string, options int) (int, bool) {
	value := 0
	inNumber := false
	flush := func() (int, bool) {
		if inNumber && value >= 1 && value <= options {
			return value - 1, true
		}
		return -1, false
	}
	for _, r := range text {
		if unicode.IsDigit(r) {
			value = value*10 + int(r-'0')
			inNumber = true
			continue
		}
		if choice, ok := flush(); ok {
			return choice, ok
		}
		value = 0
		inNumber = false
	}
	return flush()
}

func contains(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func formatOptions(options []string) string {
	var b strings.Builder
	for i, option := range options {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, option)
	}
	return b.String()
}

func statementPrompt(dc Context, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "We are deciding: %s.\n\n", dc.Topic)
	if dc.Background != "" {
		fmt.Fprintf(&b, "Context:\n%s\n\n", dc.Background)
	}
	fmt.Fprintf(&b, "Options:\n%s", formatOptions(dc.Options))
	if transcript != "" {
		fmt.Fprintf(&b, "\nPrevious discussion:\n%s", transcript)
	}
	b.WriteString("\nFrom your perspective, which option do you advocate for and why? State your preferred option number and reasoning in 2-3 sentences.")
	return b.String()
}

func ballotPrompt(dc Context, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the debate, cast your final vote for: %s.\n\n", dc.Topic)
	if dc.Background != "" {
		fmt.Fprintf(&b, "Context:\n%s\n\n", dc.Background)
	}
	fmt.Fprintf(&b, "Options:\n%s", formatOptions(dc.Options))
	fmt.Fprintf(&b, "\nDebate transcript:\n%s", transcript)
	fmt.Fprintf(&b, "\nReply with ONLY the number of your chosen option (1-%d).", len(dc.Options))
	return b.String()
}

func tieBreakPrompt(dc Context, leaders []int, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The vote on %s is tied. You must cast the deciding vote.\n\n", dc.Topic)
	if dc.Background != "" {
		fmt.Fprintf(&b, "Context:\n%s\n\n", dc.Background)
	}
	b.WriteString("Tied options:\n")
	for _, idx := range leaders {
		fmt.Fprintf(&b, "  %d. %s\n", idx+1, dc.Options[idx])
	}
	fmt.Fprintf(&b, "\nDebate transcript:\n%s", transcript)
	b.WriteString("\nConsider the arguments made and reply with ONLY the number of your chosen option.")
	return b.String()
}
