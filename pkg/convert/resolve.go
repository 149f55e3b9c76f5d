// CLAUDE:SUMMARY Precedence-ordered dictionary lookup for one token, forward and reverse.
package convert

import (
	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/tagger"
)

// Tier records which lookup produced a replacement.
type Tier int

const (
	// TierPassthrough means nothing matched and the token text is kept.
	TierPassthrough Tier = iota
	// TierLower is the lowercase form without a part-of-speech constraint.
	TierLower
	// TierLowerPOS is the lowercase form with the tagged part of speech.
	TierLowerPOS
	// TierText is the original text without a part-of-speech constraint.
	TierText
	// TierTextPOS is the original text with the tagged part of speech.
	TierTextPOS
)

var tierNames = [...]string{
	TierPassthrough: "passthrough",
	TierLower:       "lower",
	TierLowerPOS:    "lower+pos",
	TierText:        "text",
	TierTextPOS:     "text+pos",
}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return "unknown"
	}
	return tierNames[t]
}

// lowercase reports whether the tier matched on the lowercase key, which is
// when casing has to be restored.
func (t Tier) lowercase() bool {
	return t == TierLower || t == TierLowerPOS
}

// Resolution is the outcome of resolving one token.
type Resolution struct {
	Replacement string
	Tier        Tier
	Matched     bool
}

var tagPOS = map[tagger.Tag]dict.POS{
	tagger.Noun:         dict.POSNoun,
	tagger.Verb:         dict.POSVerb,
	tagger.Adjective:    dict.POSAdjective,
	tagger.Adverb:       dict.POSAdverb,
	tagger.Interjection: dict.POSInterjection,
}

// posFromTag maps a coarse tag to the dictionary's part-of-speech code.
// Every tag outside the five dictionary classes maps to POSNone.
func posFromTag(t tagger.Tag) dict.POS {
	return tagPOS[t]
}

// resolveForward tries (lower, none), (lower, pos), (text, none), (text, pos)
// in that order. The first hit wins.
func resolveForward(tok tagger.Token, ix dict.ForwardIndex) Resolution {
	pos := posFromTag(tok.Tag)

	if alt, ok := ix.Get(tok.Lower, dict.POSNone); ok {
		return Resolution{Replacement: alt, Tier: TierLower, Matched: true}
	}
	if pos != dict.POSNone {
		if alt, ok := ix.Get(tok.Lower, pos); ok {
			return Resolution{Replacement: alt, Tier: TierLowerPOS, Matched: true}
		}
	}
	if alt, ok := ix.Get(tok.Text, dict.POSNone); ok {
		return Resolution{Replacement: alt, Tier: TierText, Matched: true}
	}
	if pos != dict.POSNone {
		if alt, ok := ix.Get(tok.Text, pos); ok {
			return Resolution{Replacement: alt, Tier: TierTextPOS, Matched: true}
		}
	}
	return Resolution{Replacement: tok.Text, Tier: TierPassthrough}
}

// resolveReverse tries the lowercase form, then the original text.
func resolveReverse(tok tagger.Token, ix dict.ReverseIndex) Resolution {
	if trad, ok := ix.Get(tok.Lower); ok {
		return Resolution{Replacement: trad, Tier: TierLower, Matched: true}
	}
	if trad, ok := ix.Get(tok.Text); ok {
		return Resolution{Replacement: trad, Tier: TierText, Matched: true}
	}
	return Resolution{Replacement: tok.Text, Tier: TierPassthrough}
}
