package tagger

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Rule is a deterministic tokenizer and tagger. Text is split on Unicode word
// boundaries (UAX #29) and English clitics are split off their host word
// ("Cat's" is "Cat" + "'s", "don't" is "do" + "n't"). Whitespace runs become
// the preceding token's trailing whitespace. Tags come from a lexicon, suffix
// heuristics and a few context rules for noun/verb homographs.
//
// A Rule is read-only after construction and safe for concurrent use.
type Rule struct {
	lexicon Lexicon
	modals  map[string]bool
}

// Option configures a Rule.
type Option func(*Rule)

// WithLexicon adds entries on top of the built-in lexicon; they win on conflicts.
func WithLexicon(lex Lexicon) Option {
	return func(r *Rule) {
		for w, e := range lex {
			r.lexicon[strings.ToLower(w)] = e
		}
	}
}

// NewRule creates a rule tagger with the built-in English lexicon.
func NewRule(opts ...Option) *Rule {
	r := &Rule{
		lexicon: defaultLexicon(),
		modals:  make(map[string]bool, len(modals)),
	}
	for _, m := range modals {
		r.modals[m] = true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRuleFromFile creates a rule tagger extended with the lexicon at path.
// A missing or unreadable lexicon is reported as ErrUnavailable.
func NewRuleFromFile(path string, opts ...Option) (*Rule, error) {
	lex, err := LoadLexiconFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: lexicon %s: %w", ErrUnavailable, path, err)
	}
	return NewRule(append([]Option{WithLexicon(lex)}, opts...)...), nil
}

// Tokenize implements Tagger.
func (r *Rule) Tokenize(ctx context.Context, text string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	toks := segment(text)
	r.tag(toks)
	return toks, nil
}

// segment splits text into tokens. Leading whitespace becomes a SPACE token
// of its own; any later whitespace is attached to the token before it.
// Concatenating Text and Whitespace over the result gives back text.
func segment(text string) []Token {
	var toks []Token
	var seg string
	state := -1
	for len(text) > 0 {
		seg, text, state = uniseg.FirstWordInString(text, state)
		if isSpace(seg) {
			if n := len(toks); n > 0 {
				toks[n-1].Whitespace += seg
				continue
			}
			toks = append(toks, Token{Text: seg, Lower: seg, Tag: Space})
			continue
		}
		if host, clitic := splitClitic(seg); clitic != "" {
			toks = append(toks, Token{Text: host, Lower: strings.ToLower(host)})
			seg = clitic
		}
		toks = append(toks, Token{Text: seg, Lower: strings.ToLower(seg)})
	}
	return toks
}

// clitics are checked longest first. Both the straight and the typographic
// apostrophe are accepted.
var clitics = []string{"n't", "'re", "'ve", "'ll", "'s", "'m", "'d"}

// splitClitic cuts a contracted or possessive ending off word. clitic is
// empty when word has none or when nothing would be left of the host.
func splitClitic(word string) (host, clitic string) {
	lower := strings.ToLower(word)
	for _, c := range clitics {
		for _, form := range []string{c, strings.Replace(c, "'", "’", 1)} {
			if len(lower) > len(form) && strings.HasSuffix(lower, form) {
				cut := len(word) - len(form)
				return word[:cut], word[cut:]
			}
		}
	}
	return word, ""
}

func (r *Rule) tag(toks []Token) {
	ambiguous := make([]bool, len(toks))

	// Pass 1: lexicon, shape and suffix heuristics.
	for i := range toks {
		if toks[i].Tag == Space {
			continue
		}
		tag, amb := r.baseline(toks, i)
		toks[i].Tag = tag
		ambiguous[i] = amb
	}

	// Pass 2: context rules, homographs only.
	for i := range toks {
		if !ambiguous[i] {
			continue
		}
		prev := previousWord(toks, i)
		if prev < 0 || sentenceStart(toks, i) {
			continue
		}
		p := toks[prev]
		switch {
		case p.Tag == Determiner || p.Tag == Adjective:
			// "the record", "a close shave"
			toks[i].Tag = Noun
		case p.Lower == "to" || r.modals[p.Lower] || isFutureClitic(p.Lower):
			// "want to record", "can lead", "they'll record"
			toks[i].Tag = Verb
		case p.Tag == Pronoun && isSubject(p.Lower):
			// "they record"
			toks[i].Tag = Verb
		}
	}
}

func (r *Rule) baseline(toks []Token, i int) (Tag, bool) {
	tok := toks[i]
	switch {
	case isPunct(tok.Text):
		return Punctuation, false
	case isSymbol(tok.Text):
		return Symbol, false
	case isNumber(tok.Text):
		return Numeral, false
	}

	if e, ok := r.lexicon[tok.Lower]; ok {
		return e.Tag, e.Ambiguous
	}

	first, _ := utf8.DecodeRuneInString(tok.Text)
	if unicode.IsUpper(first) && !sentenceStart(toks, i) {
		return ProperNoun, false
	}
	return bySuffix(tok.Lower), false
}

func bySuffix(lower string) Tag {
	hasSuffix := func(suffixes ...string) bool {
		for _, s := range suffixes {
			if len(lower) > len(s)+1 && strings.HasSuffix(lower, s) {
				return true
			}
		}
		return false
	}
	switch {
	case hasSuffix("ly"):
		return Adverb
	case hasSuffix("ing", "ed", "ize", "ise"):
		return Verb
	case hasSuffix("ful", "less", "ous", "ive", "able", "ible", "ic", "al"):
		return Adjective
	default:
		return Noun
	}
}

// previousWord returns the index of the closest earlier non-space token, or -1.
func previousWord(toks []Token, i int) int {
	for j := i - 1; j >= 0; j-- {
		if toks[j].Tag != Space {
			return j
		}
	}
	return -1
}

// sentenceStart reports whether token i opens a sentence: nothing but
// whitespace and opening quotes/brackets lie between it and the start of
// the text or a terminal mark.
func sentenceStart(toks []Token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch t := toks[j]; {
		case t.Tag == Space || isOpener(t.Text):
			continue
		case t.Text == "." || t.Text == "!" || t.Text == "?" || t.Text == "…":
			return true
		default:
			return false
		}
	}
	return true
}

func isSubject(lower string) bool {
	switch lower {
	case "i", "you", "we", "they", "he", "she", "it", "who":
		return true
	}
	return false
}

// isFutureClitic matches 'll and 'd, which always precede a bare verb.
func isFutureClitic(lower string) bool {
	switch lower {
	case "'ll", "’ll", "'d", "’d":
		return true
	}
	return false
}

func isOpener(s string) bool {
	switch s {
	case "\"", "'", "“", "‘", "(", "[", "{", "«":
		return true
	}
	return false
}

func isSpace(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !unicode.IsSpace(c) {
			return false
		}
	}
	return true
}

func isPunct(s string) bool {
	for _, c := range s {
		if !unicode.IsPunct(c) {
			return false
		}
	}
	return s != ""
}

func isSymbol(s string) bool {
	for _, c := range s {
		if !unicode.IsSymbol(c) && !unicode.IsPunct(c) {
			return false
		}
	}
	return s != ""
}

func isNumber(s string) bool {
	digits := 0
	for _, c := range s {
		switch {
		case unicode.IsDigit(c):
			digits++
		case c == '.' || c == ',' || c == ':' || c == '%':
		default:
			return false
		}
	}
	return digits > 0
}
