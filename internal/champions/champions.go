package champions

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed champions.yaml
var builtinTable []byte

// ID is the numeric champion key used by the client API.
type ID int

type Champion struct {
	ID         ID
	Name       string
	normalized string
}

// Table resolves display names to champion ids. It is immutable once built.
type Table struct {
	list []Champion // sorted by name
}

// Builtin returns the embedded champion table.
func Builtin() (*Table, error) {
	var entries map[string]int
	if err := yaml.Unmarshal(builtinTable, &entries); err != nil {
		return nil, fmt.Errorf("parse builtin champions: %w", err)
	}
	return NewTable(entries), nil
}

func NewTable(entries map[string]int) *Table {
	t := &Table{list: make([]Champion, 0, len(entries))}
	for name, id := range entries {
		t.list = append(t.list, Champion{ID: ID(id), Name: name, normalized: Normalize(name)})
	}
	sort.Slice(t.list, func(i, j int) bool { return t.list[i].Name < t.list[j].Name })
	return t
}

// With returns a copy of t with extra entries added. Extra entries win on name collisions.
func (t *Table) With(extra map[string]int) *Table {
	if len(extra) == 0 {
		return t
	}
	merged := make(map[string]int, len(t.list)+len(extra))
	for _, c := range t.list {
		merged[c.Name] = int(c.ID)
	}
	for name, id := range extra {
		merged[name] = id
	}
	return NewTable(merged)
}

func (t *Table) Len() int { return len(t.list) }

// FindByName resolves a display name, a partial name or a numeric id.
// Exact normalized matches win over partial ones.
func (t *Table) FindByName(text string) (ID, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(text); err == nil {
		if n <= 0 {
			return 0, false
		}
		return ID(n), true
	}

	search := Normalize(text)
	lower := strings.ToLower(text)
	for _, c := range t.list {
		if c.normalized == search {
			return c.ID, true
		}
	}
	if search == "" {
		return 0, false
	}
	for _, c := range t.list {
		if strings.Contains(c.normalized, search) || strings.Contains(strings.ToLower(c.Name), lower) {
			return c.ID, true
		}
	}
	return 0, false
}

// Resolve translates names into ids, keeping order and dropping duplicates.
// Names that cannot be resolved are returned separately.
func (t *Table) Resolve(names []string) (ids []ID, unknown []string) {
	seen := make(map[ID]bool, len(names))
	for _, name := range names {
		id, ok := t.FindByName(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, unknown
}

// Name returns the display name for id, or the id itself when unknown.
func (t *Table) Name(id ID) string {
	for _, c := range t.list {
		if c.ID == id {
			return c.Name
		}
	}
	return strconv.Itoa(int(id))
}

// Normalize strips accents, punctuation and whitespace and lower-cases the
// rest, so "Dr. Mundo" becomes "drmundo" and "Cho'Gath" becomes "chogath".
func Normalize(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}
	var b strings.Builder
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return cases.Lower(language.Und).String(b.String())
}
