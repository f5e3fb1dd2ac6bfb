package debate

import (
	"fmt"
	"strings"
)

// Context frames one Decision Session: the options under consideration and
// the background the personas condition on.
type Context struct {
	// Topic names what is being decided, e.g. "AGENTS card" or
	// "outline revision direction".
	Topic string
	// Background carries prior selections or the artifact under critique.
	Background string
	// Options is the bounded decision space. Votes reference options by
	// zero-based index.
	Options []string
}

// Statement is one persona's contribution to a round.
type Statement struct {
	Persona string
	Text    string
}

// Round holds the ordered statements of one round. Order follows the
// roster's declared order for transcript reproducibility; it carries no
// weight in the vote.
type Round struct {
	Number     int
	Statements []Statement
}

// Vote is one persona's ballot. An unparseable ballot is an abstention.
type Vote struct {
	Persona   string
	Choice    int
	Abstained bool
}

// Session is the ephemeral record of one debate: transcript, tally, and the
// selected option. It is returned whole so callers can persist it for audit
// even though only the decision is consumed downstream.
type Session struct {
	Context      Context
	Rounds       []Round
	Votes        []Vote
	Tally        []int
	Winner       int
	TieBroken    bool
	TieBreakVote *Vote
}

// WinnerOption returns the selected option text.
func (s *Session) WinnerOption() string {
	if s.Winner < 0 || s.Winner >= len(s.Context.Options) {
		return ""
	}
	return s.Context.Options[s.Winner]
}

// Transcript renders all statements so far as conditioning text for later
// rounds and ballots.
func (s *Session) Transcript() string {
	var b strings.Builder
	for _, round := range s.Rounds {
		for _, st := range round.Statements {
			fmt.Fprintf(&b, "%s: %s\n", st.Persona, st.Text)
		}
	}
	return b.String()
}

// NoConsensusError reports a session that produced no decidable outcome. It
// is surfaced to the caller, never silently defaulted.
type NoConsensusError struct {
	Topic string
	Tied  []int
}

func (e *NoConsensusError) Error() string {
	if len(e.Tied) > 0 {
		return fmt.Sprintf("debate: no consensus on %s: %d options tied and tie-break abstained", e.Topic, len(e.Tied))
	}
	return fmt.Sprintf("debate: no consensus on %s: no decidable outcome", e.Topic)
}
