// Package answers holds the curated answer table: exact and fuzzy question
// matching plus the keyword -> page-link maps used to decorate generated
// answers.
package answers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

//go:embed default_answers.json
var defaultAnswersJSON []byte

const DefaultFuzzyThreshold = 80

// Entry is one curated answer with the question phrasings that map to it.
type Entry struct {
	Keys   []string `json:"keys"`
	Answer string   `json:"answer"`
	Link   string   `json:"link,omitempty"`
	Label  string   `json:"label,omitempty"`
}

type tableFile struct {
	Entries []Entry           `json:"entries"`
	Links   map[string]string `json:"links"`
	Labels  map[string]string `json:"labels"`
}

// Match is the result of an exact or fuzzy lookup.
type Match struct {
	Answer string
	Link   string
	Label  string
	Score  int // fuzzy partial ratio; 100 for exact matches
}

// Table is safe for concurrent reads; Reload swaps the data atomically.
type Table struct {
	mu             sync.RWMutex
	path           string
	fuzzyThreshold int

	entries  []Entry
	exact    map[string]*Entry // normalized key -> entry
	links    map[string]string
	labels   map[string]string
	keywords []string // link keywords, longest first for containment scans
}

// Load reads the answer table from a JSON file. An empty path loads the
// embedded defaults.
func Load(path string, fuzzyThreshold int) (*Table, error) {
	t := &Table{
		path:           path,
		fuzzyThreshold: fuzzyThreshold,
	}
	if t.fuzzyThreshold <= 0 {
		t.fuzzyThreshold = DefaultFuzzyThreshold
	}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Default builds a table from the embedded dataset.
func Default() *Table {
	t, err := Load("", DefaultFuzzyThreshold)
	if err != nil {
		// The embedded file is validated by tests; a parse failure here is a build defect.
		panic(err)
	}
	return t
}

// Reload re-reads the backing file and swaps the lookup structures.
// Callers keep serving from the old data until the swap.
func (t *Table) Reload() error {
	raw := defaultAnswersJSON
	if t.path != "" {
		data, err := os.ReadFile(t.path)
		if err != nil {
			return fmt.Errorf("read answer table: %w", err)
		}
		raw = data
	}

	var file tableFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse answer table: %w", err)
	}
	if len(file.Entries) == 0 {
		return fmt.Errorf("answer table has no entries")
	}

	exact := make(map[string]*Entry, len(file.Entries)*2)
	for i := range file.Entries {
		e := &file.Entries[i]
		for _, key := range e.Keys {
			exact[Normalize(key)] = e
		}
	}

	keywords := make([]string, 0, len(file.Links))
	for kw := range file.Links {
		keywords = append(keywords, kw)
	}
	// Longest keyword wins ("term dates" before "terms"); ties resolve
	// alphabetically so scans stay deterministic.
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})

	t.mu.Lock()
	t.entries = file.Entries
	t.exact = exact
	t.links = file.Links
	t.labels = file.Labels
	t.keywords = keywords
	t.mu.Unlock()
	return nil
}

// ExactMatch looks the normalized question up against every curated key.
func (t *Table) ExactMatch(question string) (*Match, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.exact[Normalize(question)]
	if !ok {
		return nil, false
	}
	return &Match{Answer: e.Answer, Link: e.Link, Label: e.Label, Score: 100}, true
}

// FuzzyMatch scans entries in file order and returns the FIRST key whose
// partial ratio against the question exceeds the threshold. First-match
// semantics keep the tier deterministic across runs.
func (t *Table) FuzzyMatch(question string) (*Match, bool) {
	q := Normalize(question)
	if q == "" {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.entries {
		e := &t.entries[i]
		for _, key := range e.Keys {
			score := fuzzy.PartialRatio(q, Normalize(key))
			if score > t.fuzzyThreshold {
				return &Match{Answer: e.Answer, Link: e.Link, Label: e.Label, Score: score}, true
			}
		}
	}
	return nil, false
}

// linkFuzzyThreshold is the word-level similarity bar for the misspelling
// fallback in LinkFor.
const linkFuzzyThreshold = 80

// LinkFor finds a page link whose keyword appears in the question. Used to
// decorate retrieval-tier answers with an official page reference. When no
// keyword phrase is contained verbatim, words longer than three characters
// are compared fuzzily so misspellings ("scholorships") still attach the
// right page.
func (t *Table) LinkFor(question string) (url, label string, ok bool) {
	q := Normalize(question)
	if q == "" {
		return "", "", false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, kw := range t.keywords {
		if strings.Contains(q, kw) {
			return t.linkEntry(kw)
		}
	}

	words := strings.Fields(q)
	for _, kw := range t.keywords {
		for _, kwWord := range strings.Fields(kw) {
			if len(kwWord) <= 3 {
				continue
			}
			for _, word := range words {
				if len(word) <= 3 {
					continue
				}
				if fuzzy.Ratio(word, kwWord) > linkFuzzyThreshold {
					return t.linkEntry(kw)
				}
			}
		}
	}
	return "", "", false
}

func (t *Table) linkEntry(kw string) (url, label string, ok bool) {
	url = t.links[kw]
	label = t.labels[url]
	if label == "" {
		label = "More information"
	}
	return url, label, true
}

// Size returns the number of curated entries (used for startup logging).
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

var (
	punctRe = regexp.MustCompile(`[?!.,;:'"]+`)
	wsRe    = regexp.MustCompile(`\s+`)
)

// Normalize lowercases, strips punctuation and collapses whitespace so that
// "What are the FEES?" and "what are the fees" hit the same key.
func Normalize(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = punctRe.ReplaceAllString(q, "")
	q = wsRe.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
