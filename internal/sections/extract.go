// Package sections extracts the labeled regions of a raw answer produced
// by the document QA backend. The backend is prompted to structure its
// answers as four labeled sections in a fixed order; real responses only
// mostly comply, so extraction is positional and fail-soft.
package sections

import (
	"log/slog"
	"strings"
)

// Canonical section markers, in the order the backend is asked to emit them.
// Matching is exact and case-sensitive.
const (
	MarkerAnswer      = "Answer:"
	MarkerSources     = "Sources:"
	MarkerConfidence  = "Confidence:"
	MarkerAssumptions = "Assumptions (if any):"
)

// Sections holds the text of each labeled region. A section is the empty
// string when its marker (or a marker it depends on for its end boundary)
// is absent from the raw text.
type Sections struct {
	Answer      string `json:"answer"`
	Sources     string `json:"sources"`
	Confidence  string `json:"confidence"`
	Assumptions string `json:"assumptions"`
}

// Field is a labeled section in render order.
type Field struct {
	Label string
	Text  string
}

// Fields returns the sections in canonical render order.
func (s Sections) Fields() []Field {
	return []Field{
		{Label: "answer", Text: s.Answer},
		{Label: "sources", Text: s.Sources},
		{Label: "confidence", Text: s.Confidence},
		{Label: "assumptions", Text: s.Assumptions},
	}
}

// Extract slices raw into the four canonical sections. Each section runs
// from the end of its own marker to the start of the next marker in
// canonical order; the last section runs to the end of the text. Missing
// markers yield empty sections rather than errors.
//
// Markers appearing out of canonical order are sliced by textual position
// regardless, which can attribute text to the wrong section. That matches
// the behavior answers have been rendered with so far; see the note in
// DESIGN.md before changing it.
//
// Extract never panics: any slicing panic is recovered, logged, and
// reported as all-empty sections.
func Extract(raw string) (s Sections) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("section extraction failed", "panic", r)
			s = Sections{}
		}
	}()

	answerAt := strings.Index(raw, MarkerAnswer)
	sourcesAt := strings.Index(raw, MarkerSources)
	confidenceAt := strings.Index(raw, MarkerConfidence)
	assumptionsAt := strings.Index(raw, MarkerAssumptions)

	if answerAt != -1 && sourcesAt != -1 {
		s.Answer = sliceBetween(raw, answerAt+len(MarkerAnswer), sourcesAt)
	}
	if sourcesAt != -1 && confidenceAt != -1 {
		s.Sources = sliceBetween(raw, sourcesAt+len(MarkerSources), confidenceAt)
	}
	if confidenceAt != -1 && assumptionsAt != -1 {
		s.Confidence = sliceBetween(raw, confidenceAt+len(MarkerConfidence), assumptionsAt)
	}
	if assumptionsAt != -1 {
		s.Assumptions = strings.TrimSpace(raw[assumptionsAt+len(MarkerAssumptions):])
	}

	return s
}

// sliceBetween returns the trimmed substring raw[start:end], treating a
// reversed range (end before start, as happens with out-of-order markers)
// as empty instead of panicking.
func sliceBetween(raw string, start, end int) string {
	if end < start {
		return ""
	}
	return strings.TrimSpace(raw[start:end])
}
