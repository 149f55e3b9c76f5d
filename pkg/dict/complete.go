// CLAUDE:SUMMARY Prefix completion over dictionary spellings backed by patricia tries.
package dict

import (
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// DefaultCompleteLimit caps Complete when the caller passes limit <= 0.
const DefaultCompleteLimit = 20

// Complete returns dictionary spellings whose lowercase form starts with the
// lowercase prefix, sorted, at most limit of them. Forward completes
// traditional spellings, Reverse completes alternate spellings.
func (d *Dictionary) Complete(dir Direction, prefix string, limit int) []string {
	if limit <= 0 {
		limit = DefaultCompleteLimit
	}
	trie := d.fwdWords
	if dir == Reverse {
		trie = d.revWords
	}

	var words []string
	_ = trie.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(_ patricia.Prefix, item patricia.Item) error {
		words = append(words, item.([]string)...)
		return nil
	})
	sort.Strings(words)
	if len(words) > limit {
		words = words[:limit]
	}
	return words
}
