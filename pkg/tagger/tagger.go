// Package tagger defines the tokenizer/part-of-speech capability the converter
// consumes, plus two implementations: a built-in rule tagger and an HTTP
// adapter for an external NLP service.
//
// A tagger turns text into an ordered token sequence. Concatenating every
// token's Text followed by its Whitespace reproduces the input exactly.
package tagger

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned when a tagger cannot be initialised
// (missing lexicon, unreachable service).
var ErrUnavailable = errors.New("tagger unavailable")

// Tag is a coarse Universal POS tag. The zero value means no confident tag.
type Tag string

const (
	None         Tag = ""
	Noun         Tag = "NOUN"
	ProperNoun   Tag = "PROPN"
	Verb         Tag = "VERB"
	Aux          Tag = "AUX"
	Adjective    Tag = "ADJ"
	Adverb       Tag = "ADV"
	Interjection Tag = "INTJ"
	Pronoun      Tag = "PRON"
	Determiner   Tag = "DET"
	Adposition   Tag = "ADP"
	CoordConj    Tag = "CCONJ"
	SubordConj   Tag = "SCONJ"
	Numeral      Tag = "NUM"
	Particle     Tag = "PART"
	Punctuation  Tag = "PUNCT"
	Symbol       Tag = "SYM"
	Space        Tag = "SPACE"
	Other        Tag = "X"
)

var knownTags = map[Tag]bool{
	Noun: true, ProperNoun: true, Verb: true, Aux: true, Adjective: true,
	Adverb: true, Interjection: true, Pronoun: true, Determiner: true,
	Adposition: true, CoordConj: true, SubordConj: true, Numeral: true,
	Particle: true, Punctuation: true, Symbol: true, Space: true, Other: true,
}

// ParseTag converts a tag name (case-insensitive) to a Tag. The empty string
// is None, "CONJ" is read as CCONJ, and unknown names report false.
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToUpper(strings.TrimSpace(s)))
	if t == None {
		return None, true
	}
	if t == "CONJ" {
		return CoordConj, true
	}
	return t, knownTags[t]
}

// Token is one unit of tagged text.
type Token struct {
	Text       string `json:"text"`
	Lower      string `json:"lower"`
	Tag        Tag    `json:"pos"`
	Whitespace string `json:"whitespace"`
}

// Tagger tokenizes and tags text.
type Tagger interface {
	Tokenize(ctx context.Context, text string) ([]Token, error)
}

// Join rebuilds the text a token sequence was produced from.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
		b.WriteString(tok.Whitespace)
	}
	return b.String()
}
