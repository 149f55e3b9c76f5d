// CLAUDE:SUMMARY Word -> tag lexicon for the rule tagger: built-in English closed classes plus a loadable text format.
package tagger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is the lexicon record for one lowercase word. Ambiguous words
// (noun/verb homographs) may be re-tagged by context rules.
type Entry struct {
	Tag       Tag
	Ambiguous bool
}

// Lexicon maps lowercase words to entries.
type Lexicon map[string]Entry

// LoadLexicon reads one entry per line: "word TAG" with an optional trailing
// "*" marking the word ambiguous. Blank lines and lines starting with # are skipped.
func LoadLexicon(r io.Reader) (Lexicon, error) {
	lex := make(Lexicon)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("lexicon line %d: want \"word TAG [*]\", got %q", line, text)
		}
		tag, ok := ParseTag(fields[1])
		if !ok || tag == None {
			return nil, fmt.Errorf("lexicon line %d: unknown tag %q", line, fields[1])
		}
		e := Entry{Tag: tag}
		if len(fields) == 3 {
			if fields[2] != "*" {
				return nil, fmt.Errorf("lexicon line %d: unexpected %q", line, fields[2])
			}
			e.Ambiguous = true
		}
		lex[strings.ToLower(fields[0])] = e
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return lex, nil
}

// LoadLexiconFile opens path and reads it with LoadLexicon.
func LoadLexiconFile(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadLexicon(f)
}

func defaultLexicon() Lexicon {
	lex := make(Lexicon, 512)
	add := func(tag Tag, words ...string) {
		for _, w := range words {
			lex[w] = Entry{Tag: tag}
		}
	}
	ambiguous := func(tag Tag, words ...string) {
		for _, w := range words {
			lex[w] = Entry{Tag: tag, Ambiguous: true}
		}
	}

	add(Determiner, "the", "a", "an", "this", "these", "those", "my", "your",
		"his", "its", "our", "their", "some", "any", "no", "every", "each", "all", "both",
		"few", "many", "much", "most", "other", "another", "either", "neither", "such", "what")

	add(Adposition, "in", "on", "at", "for", "with", "by", "from", "of", "about",
		"into", "through", "during", "before", "after", "above", "below", "between", "under", "over",
		"against", "among", "around", "behind", "beside", "beyond", "near", "toward", "towards",
		"upon", "within", "without", "across", "along", "inside", "outside", "throughout", "via")

	add(Aux, "is", "are", "was", "were", "be", "been", "being", "am",
		"have", "has", "had", "having", "do", "does", "did")
	add(Aux, modals...)

	add(CoordConj, "and", "or", "but", "nor", "yet", "so")
	add(SubordConj, "because", "although", "though", "while", "if", "unless", "until",
		"since", "when", "where", "whether", "than", "that")

	add(Pronoun, "i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
		"myself", "yourself", "himself", "herself", "itself", "ourselves", "themselves",
		"who", "whom", "whose", "which", "someone", "something", "anyone", "anything",
		"everyone", "everything", "nobody", "nothing", "mine", "yours", "ours", "theirs")

	add(Particle, "to", "not", "n't", "n’t", "'s", "’s")
	add(Aux, "'m", "’m", "'re", "’re", "'ve", "’ve", "'ll", "’ll", "'d", "’d",
		"ca", "wo", "sha")

	add(Interjection, "oh", "ah", "wow", "hey", "hello", "hi", "ouch", "oops", "alas",
		"hmm", "yes", "yeah", "okay", "ok", "hooray", "bravo", "goodbye", "bye", "thanks", "please")

	add(Adjective, "old", "new", "good", "bad", "great", "small", "large", "big", "little",
		"young", "long", "short", "high", "low", "early", "late", "first", "last", "dark",
		"bright", "wise", "grey", "gray", "black", "white", "red", "blue", "green", "tough",
		"rough", "enough", "whole", "own", "same", "different", "right", "wrong", "true")

	add(Adverb, "very", "quite", "rather", "really", "too", "just", "only", "also",
		"now", "then", "here", "there", "always", "never", "often", "sometimes", "soon",
		"already", "still", "even", "again", "ever", "almost", "perhaps", "away", "back", "how", "why")

	add(Verb, "go", "went", "gone", "going", "come", "came", "say", "said", "see", "saw", "seen",
		"know", "knew", "known", "take", "took", "taken", "get", "got", "make", "made",
		"think", "thought", "sat", "sit", "ran", "give", "gave", "given", "find", "found",
		"tell", "told", "become", "became", "leave", "left", "feel", "felt", "bring", "brought",
		"begin", "began", "keep", "kept", "hold", "held", "write", "wrote", "written",
		"stand", "stood", "hear", "heard", "let", "mean", "meant", "set", "meet", "met")

	add(Noun, "time", "year", "people", "way", "day", "man", "woman", "child", "children",
		"world", "life", "hand", "part", "eye", "place", "week", "case", "point", "number",
		"night", "word", "thing", "cat", "dog", "water", "school", "city", "book")

	// Homographs whose spelling can differ by part of speech; context decides.
	ambiguous(Verb, "run", "walk", "play", "work", "use", "love", "hate", "rule", "attack",
		"fight", "need", "read", "lead", "live", "close", "refuse", "produce", "permit",
		"conduct", "suspect", "protest", "tear", "bow", "row", "sow", "wound", "separate",
		"excuse", "abuse")
	ambiguous(Noun, "record", "present", "object", "project", "contract", "desert", "wind",
		"minute", "content", "subject", "address", "increase", "decrease", "export", "import",
		"conflict", "insult", "rebel", "estimate", "dove", "bass", "lives", "house")

	return lex
}

var modals = []string{"can", "could", "will", "would", "shall", "should", "may", "might", "must"}
