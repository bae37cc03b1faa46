// Package langdetect classifies sketch folder files into tab kinds.
// It uses go-enry so that extension aliases and ambiguous files resolve
// the same way linguist resolves them.
package langdetect

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Kind is the role a file plays in a sketch.
type Kind int

const (
	// KindOther is any file that is not a tab.
	KindOther Kind = iota

	// KindSketch is a dialect tab that goes through preprocessing.
	KindSketch

	// KindJava is a plain Java tab. It belongs to the sketch but is not analyzed.
	KindJava
)

// Linguist language names.
const (
	langProcessing = "Processing"
	langJava       = "Java"
)

func (k Kind) String() string {
	switch k {
	case KindSketch:
		return "sketch"
	case KindJava:
		return "java"
	default:
		return "other"
	}
}

// IsTab reports whether the kind belongs in the tab list.
func (k Kind) IsTab() bool {
	return k == KindSketch || k == KindJava
}

// Analyzable reports whether tabs of this kind are preprocessed.
func (k Kind) Analyzable() bool {
	return k == KindSketch
}

// Classify returns the kind of the named file. Content is only consulted
// when the extension is ambiguous.
func Classify(name string, content []byte) Kind {
	base := filepath.Base(name)

	// Strategy 1: hidden and editor backup files are never tabs.
	if enry.IsDotFile(base) || strings.HasSuffix(base, "~") {
		return KindOther
	}

	// Strategy 2: the extension decides in almost every case.
	lang, safe := enry.GetLanguageByExtension(base)
	if safe {
		return kindOf(lang)
	}

	// Strategy 3: ambiguous extension, ask the classifier between the two tab languages.
	candidates := enry.GetLanguagesByExtension(base, content, nil)
	if len(candidates) == 0 || len(content) == 0 {
		return KindOther
	}
	if lang, _ := enry.GetLanguageByClassifier(content, candidates); lang != "" {
		return kindOf(lang)
	}

	return KindOther
}

func kindOf(lang string) Kind {
	switch lang {
	case langProcessing:
		return KindSketch
	case langJava:
		return KindJava
	default:
		return KindOther
	}
}
