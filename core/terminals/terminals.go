// Package terminals holds the fixed identity data for Washington State
// Ferries passenger terminals. Lookup tables are built once at construction
// and never mutated.
package terminals

import "strings"

// validAbbrevs is the fixed set of 20 passenger terminals. Maintenance-only
// berths are deliberately absent; trips touching them never enter training.
var validAbbrevs = []string{
	"ANA", "BBI", "BRE", "CLI", "COU",
	"EDM", "FAU", "FRH", "KIN", "LOP",
	"MUK", "ORI", "P52", "PTD", "PTT",
	"SHI", "SID", "SOU", "TAH", "VAS",
}

// nameToAbbrev maps the free-text terminal names used by the history feed to
// abbreviations. This is data, not logic; unknown names are simply unmapped.
var nameToAbbrev = map[string]string{
	"anacortes":         "ANA",
	"bainbridge":        "BBI",
	"bainbridge island": "BBI",
	"bremerton":         "BRE",
	"clinton":           "CLI",
	"coupeville":        "COU",
	"edmonds":           "EDM",
	"fauntleroy":        "FAU",
	"friday harbor":     "FRH",
	"kingston":          "KIN",
	"lopez":             "LOP",
	"lopez island":      "LOP",
	"mukilteo":          "MUK",
	"orcas":             "ORI",
	"orcas island":      "ORI",
	"seattle":           "P52",
	"pier 52":           "P52",
	"point defiance":    "PTD",
	"port townsend":     "PTT",
	"shaw":              "SHI",
	"shaw island":       "SHI",
	"sidney b.c.":       "SID",
	"sidney bc":         "SID",
	"southworth":        "SOU",
	"tahlequah":         "TAH",
	"vashon":            "VAS",
	"vashon island":     "VAS",
}

// Table resolves terminal identity questions for the trackers and the
// training pipeline. Construct it once with NewTable and share it; it is
// immutable and safe for concurrent use.
type Table struct {
	valid  map[string]struct{}
	byName map[string]string
}

// NewTable builds the immutable lookup table.
func NewTable() *Table {
	valid := make(map[string]struct{}, len(validAbbrevs))
	for _, a := range validAbbrevs {
		valid[a] = struct{}{}
	}
	byName := make(map[string]string, len(nameToAbbrev))
	for k, v := range nameToAbbrev {
		byName[k] = v
	}
	return &Table{valid: valid, byName: byName}
}

// IsValid reports whether abbrev names a passenger terminal.
func (t *Table) IsValid(abbrev string) bool {
	_, ok := t.valid[abbrev]
	return ok
}

// AbbrevForName maps a free-text terminal name to its abbreviation. The
// second return is false when the name is unknown; callers drop the record.
func (t *Table) AbbrevForName(name string) (string, bool) {
	a, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Count returns the number of valid passenger terminals.
func (t *Table) Count() int { return len(t.valid) }
