// Package debate runs fixed-round, synchronous debates between agent
// personas over a bounded option set and returns a consensus choice plus the
// full transcript. The selection rule (majority, then tie-break) is fully
// deterministic given the votes; only the statement text depends on the
// external generator.
package debate

import "fmt"

// Persona is a named role with a fixed advocacy stance. Personas are
// stateless across sessions; only the stance is a design-time constant.
type Persona struct {
	Name string
	Role string
	// System is the stance prompt handed to the generator for every call
	// this persona makes.
	System string
	// TieBreak marks the persona that decides unresolved votes. Tie-break
	// personas do not speak in rounds and do not vote in the main tally.
	TieBreak bool
}

func validateRoster(roster []Persona) error {
	if len(roster) == 0 {
		return fmt.Errorf("debate: roster is empty")
	}
	voters := 0
	tieBreakers := 0
	seen := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		if p.Name == "" {
			return fmt.Errorf("debate: persona name is required")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("debate: duplicate persona %s", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.TieBreak {
			tieBreakers++
		} else {
			voters++
		}
	}
	if voters == 0 {
		return fmt.Errorf("debate: roster needs at least one voting persona")
	}
	if tieBreakers > 1 {
		return fmt.Errorf("debate: roster has %d tie-break personas, want at most one", tieBreakers)
	}
	return nil
}

func splitRoster(roster []Persona) (voters []Persona, tieBreak *Persona) {
	for i := range roster {
		if roster[i].TieBreak {
			tieBreak = &roster[i]
			continue
		}
		voters = append(voters, roster[i])
	}
	return voters, tieBreak
}
