// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/compound-engine/pkg/types"
)

const (
	defaultMaxSentences = 5
	// maxProseTargetLen filters target names too long to read as prose.
	maxProseTargetLen = 60
)

// Summary builds a short prose description of a profile (R3.1-R3.4). The
// first few activities become sentences; rows whose target names are purely
// numeric or impractically long are skipped as unreadable.
func Summary(p *types.CompoundProfile, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = defaultMaxSentences
	}

	name := p.Compound.Name
	if name == "" {
		name = p.Query
	}

	var b strings.Builder
	if p.Resolved() {
		fmt.Fprintf(&b, "%s (CID %d, %s) has %d recorded bioactivity measurements across %d targets.",
			name, p.Compound.CID, orNA(p.Compound.Formula), len(p.Activities), len(p.Targets))
	} else {
		fmt.Fprintf(&b, "%s has %d recorded bioactivity measurements across %d targets.",
			name, len(p.Activities), len(p.Targets))
	}

	if len(p.Activities) == 0 {
		return b.String()
	}

	written := 0
	for _, a := range p.Activities {
		if written >= maxSentences {
			break
		}
		if skipInProse(a.Target) {
			continue
		}
		fmt.Fprintf(&b, " It shows %s of %s %s against %s", a.Type, FormatNumber(a.Value, 2), a.Unit, a.Target)
		if a.Potency != nil {
			fmt.Fprintf(&b, " (pChEMBL %s)", FormatNumber(a.Potency, 2))
		}
		b.WriteString(".")
		written++
	}

	if len(p.Proteins) > 0 {
		accessions := make([]string, len(p.Proteins))
		for i, pr := range p.Proteins {
			accessions[i] = pr.Accession
		}
		fmt.Fprintf(&b, " Annotated protein accessions: %s.", strings.Join(accessions, ", "))
	}

	return b.String()
}

// skipInProse reports whether a target name would read as noise in a
// sentence: purely numeric placeholder names and names longer than
// maxProseTargetLen runes are filtered (R3.3).
func skipInProse(target string) bool {
	if purelyNumeric(target) {
		return true
	}
	return utf8.RuneCountInString(target) > maxProseTargetLen
}

// purelyNumeric reports whether s contains only digits and dots. ChEMBL
// occasionally carries placeholder numeric names.
func purelyNumeric(s string) bool {
	seenDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.':
		default:
			return false
		}
	}
	return seenDigit || s == ""
}
