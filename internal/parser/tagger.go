package parser

import (
	"regexp"
	"sort"
	"strings"
)

// CollapseFunc maps a matched vocabulary term to its canonical tag.
type CollapseFunc func(term string) string

// Tagger matches free text against a controlled vocabulary.
// Only whole-word, case-insensitive matches count.
type Tagger struct {
	terms    []string
	patterns []*regexp.Regexp
	collapse CollapseFunc
}

// NewTagger compiles a tagger for vocab. A nil collapse passes matches through.
func NewTagger(vocab []string, collapse CollapseFunc) *Tagger {
	t := &Tagger{collapse: collapse}
	seen := make(map[string]bool, len(vocab))
	for _, term := range vocab {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		t.terms = append(t.terms, term)
		t.patterns = append(t.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(term))+`\b`))
	}
	return t
}

// Tags returns the sorted set of canonical tags found in text.
func (t *Tagger) Tags(text string) []string {
	lower := strings.ToLower(text)
	found := make(map[string]bool)
	for i, re := range t.patterns {
		if !re.MatchString(lower) {
			continue
		}
		tag := t.terms[i]
		if t.collapse != nil {
			tag = t.collapse(tag)
		}
		found[tag] = true
	}

	tags := make([]string, 0, len(found))
	for tag := range found {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Vocabulary returns the terms the tagger matches, in declaration order.
func (t *Tagger) Vocabulary() []string {
	out := make([]string, len(t.terms))
	copy(out, t.terms)
	return out
}

// TagKeywords tags text against vocab without any collapsing.
func TagKeywords(text string, vocab []string) []string {
	return NewTagger(vocab, nil).Tags(text)
}

// CollapsePhotographyTag folds overlapping photography service terms into one tag.
func CollapsePhotographyTag(term string) string {
	lower := strings.ToLower(term)
	switch {
	case strings.Contains(lower, "album"):
		return "Albums"
	case strings.Contains(lower, "cinematography"),
		strings.Contains(lower, "films"),
		strings.Contains(lower, "video"):
		if strings.Contains(lower, "pre-wedding") {
			return "Pre-Wedding Films"
		}
		return "Wedding Cinematography / Films"
	case strings.Contains(lower, "bridal photography"),
		strings.Contains(lower, "bridal portraits"):
		return "Bridal Portraits"
	}
	return term
}
