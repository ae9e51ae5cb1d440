// Package roster converts the family notes of a household between the
// persisted text form and a structured list.
//
// The text form is a comma-joined list of Name(TAG) entries, e.g.
// "Rajvi(W),Tom(S)". Historical records sometimes hold free text without
// tags; those decode into entries tagged "?".
package roster

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyName       = errors.New("family member name is required")
	ErrInvalidName     = errors.New("family member name may not contain commas or parentheses")
	ErrUnknownRelation = errors.New("unknown relation")
	ErrIndexOutOfRange = errors.New("family member index out of range")
)

// Relation is the tag stored in parentheses after a name.
type Relation string

const (
	Wife     Relation = "W"
	Husband  Relation = "H"
	Son      Relation = "S"
	Daughter Relation = "D"
	Mother   Relation = "M"
	Father   Relation = "F"
	Unknown  Relation = "?"
)

var relationLabels = map[Relation]string{
	Wife:     "Wife",
	Husband:  "Husband",
	Son:      "Son",
	Daughter: "Daughter",
	Mother:   "Mother",
	Father:   "Father",
	Unknown:  "Unknown",
}

// Relations lists the tags a new entry may be added with, in menu order.
func Relations() []Relation {
	return []Relation{Wife, Husband, Son, Daughter, Father, Mother}
}

// ParseRelation normalizes s and reports whether it is an assignable relation.
func ParseRelation(s string) (Relation, bool) {
	r := Relation(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case Wife, Husband, Son, Daughter, Mother, Father:
		return r, true
	}
	return r, false
}

// Label is the human readable relation; tags outside the known set are shown as-is.
func (r Relation) Label() string {
	if l, ok := relationLabels[r]; ok {
		return l
	}
	return string(r)
}

// Member is one entry of a household roster.
type Member struct {
	Name     string   `json:"name"`
	Relation Relation `json:"relation"`
}

// Roster is an ordered family list. Duplicates are allowed.
type Roster []Member

// entryPattern captures "Name(Tag)" where Name holds no comma or parenthesis.
var entryPattern = regexp.MustCompile(`([^\s,()][^,()]*?)\s*\(([^)]+)\)`)

// legacyMinLen is the length an untagged string must exceed to be kept as legacy entries.
const legacyMinLen = 3

// Decode parses raw family notes. It never fails.
func Decode(raw string) Roster {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Roster{}
	}

	matches := entryPattern.FindAllStringSubmatch(trimmed, -1)
	if len(matches) == 0 {
		if len(trimmed) <= legacyMinLen {
			return Roster{}
		}
		return decodeLegacy(trimmed)
	}

	out := make(Roster, 0, len(matches))
	for _, m := range matches {
		out = append(out, Member{
			Name:     strings.TrimSpace(m[1]),
			Relation: Relation(strings.ToUpper(strings.TrimSpace(m[2]))),
		})
	}
	return out
}

func decodeLegacy(s string) Roster {
	parts := strings.Split(s, ",")
	out := make(Roster, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		out = append(out, Member{Name: name, Relation: Unknown})
	}
	return out
}

// Encode serializes r as comma-joined Name(TAG) entries with no spaces between entries.
func Encode(r Roster) string {
	parts := make([]string, 0, len(r))
	for _, m := range r {
		parts = append(parts, m.Name+"("+string(m.Relation)+")")
	}
	return strings.Join(parts, ",")
}

// Add returns a copy of r with a new entry appended. r is never modified.
func (r Roster) Add(name string, rel Relation) (Roster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return r, ErrEmptyName
	}
	if strings.ContainsAny(name, ",()") {
		return r, ErrInvalidName
	}
	rel, ok := ParseRelation(string(rel))
	if !ok {
		return r, ErrUnknownRelation
	}
	out := make(Roster, len(r), len(r)+1)
	copy(out, r)
	return append(out, Member{Name: name, Relation: rel}), nil
}

// Remove returns a copy of r without the entry at index.
func (r Roster) Remove(index int) (Roster, error) {
	if index < 0 || index >= len(r) {
		return r, ErrIndexOutOfRange
	}
	out := make(Roster, 0, len(r)-1)
	out = append(out, r[:index]...)
	return append(out, r[index+1:]...), nil
}
