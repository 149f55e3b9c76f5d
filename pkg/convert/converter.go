// Package convert turns text from one spelling convention into the other by
// resolving each tagged token against a dictionary and replaying the
// original whitespace.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/tagger"
)

// Converter converts paragraphs in one direction through one dictionary.
// It holds no mutable state and is safe for concurrent use when its tagger is.
type Converter struct {
	dict   *dict.Dictionary
	tagger tagger.Tagger
	dir    dict.Direction
}

// New creates a converter for the given direction.
func New(d *dict.Dictionary, t tagger.Tagger, dir dict.Direction) *Converter {
	return &Converter{dict: d, tagger: t, dir: dir}
}

// NewForward creates a traditional -> alternate converter.
func NewForward(d *dict.Dictionary, t tagger.Tagger) *Converter {
	return New(d, t, dict.Forward)
}

// NewReverse creates an alternate -> traditional converter.
func NewReverse(d *dict.Dictionary, t tagger.Tagger) *Converter {
	return New(d, t, dict.Reverse)
}

// Direction returns the conversion direction.
func (c *Converter) Direction() dict.Direction { return c.dir }

// TokenResult explains the conversion of one token.
type TokenResult struct {
	Text       string   `json:"text"`
	Lower      string   `json:"lower"`
	Tag        string   `json:"tag"`
	POS        dict.POS `json:"pos"`
	Tier       string   `json:"tier"`
	Matched    bool     `json:"matched"`
	Output     string   `json:"output"`
	Whitespace string   `json:"whitespace"`
}

// ConvertPara tokenizes text and returns it converted. A tagger failure is
// returned wrapped in ErrConversion and no partial output is produced.
func (c *Converter) ConvertPara(ctx context.Context, text string) (string, error) {
	toks, err := c.tokenize(ctx, text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range toks {
		out, _ := c.convertToken(tok)
		b.WriteString(out)
		b.WriteString(tok.Whitespace)
	}
	return b.String(), nil
}

// Explain converts text like ConvertPara but reports every token's tag,
// dictionary part of speech, matching tier and output.
func (c *Converter) Explain(ctx context.Context, text string) ([]TokenResult, error) {
	toks, err := c.tokenize(ctx, text)
	if err != nil {
		return nil, err
	}
	results := make([]TokenResult, len(toks))
	for i, tok := range toks {
		out, res := c.convertToken(tok)
		pos := dict.POSNone
		if c.dir == dict.Forward {
			pos = posFromTag(tok.Tag)
		}
		results[i] = TokenResult{
			Text:       tok.Text,
			Lower:      tok.Lower,
			Tag:        string(tok.Tag),
			POS:        pos,
			Tier:       res.Tier.String(),
			Matched:    res.Matched,
			Output:     out,
			Whitespace: tok.Whitespace,
		}
	}
	return results, nil
}

func (c *Converter) tokenize(ctx context.Context, text string) ([]tagger.Token, error) {
	toks, err := c.tagger.Tokenize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: tokenize: %w", ErrConversion, err)
	}
	return toks, nil
}

// convertToken resolves one token and restores casing on lowercase-key hits.
// Whitespace tokens are never looked up.
func (c *Converter) convertToken(tok tagger.Token) (string, Resolution) {
	if tok.Tag == tagger.Space {
		return tok.Text, Resolution{Replacement: tok.Text, Tier: TierPassthrough}
	}
	var res Resolution
	if c.dir == dict.Reverse {
		res = resolveReverse(tok, c.dict.Reverse)
	} else {
		res = resolveForward(tok, c.dict.Forward)
	}
	if !res.Matched {
		return tok.Text, res
	}
	if res.Tier.lowercase() {
		return applyCasing(tok.Text, res.Replacement), res
	}
	return res.Replacement, res
}
