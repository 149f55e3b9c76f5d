// CLAUDE:SUMMARY Dictionary rows and the forward ((word, pos) -> alternate) and reverse (alternate -> traditional) indices.
package dict

// POS is a dictionary part-of-speech code as it appears in the source table.
// The empty value means the row applies regardless of part of speech.
type POS string

const (
	POSNone         POS = ""
	POSNoun         POS = "n"
	POSVerb         POS = "v"
	POSAdjective    POS = "adj"
	POSAdverb       POS = "adv"
	POSInterjection POS = "interj"
)

// Row is one line of the source table: traditional spelling, alternate
// spelling, a reserved column kept verbatim, and an optional part of speech.
type Row struct {
	Trad     string
	Alt      string
	Reserved string
	POS      POS
}

// ForwardKey identifies a forward entry. A row with an empty POS registers
// under POSNone only; rows are never duplicated to a pos-agnostic key.
type ForwardKey struct {
	Word string
	POS  POS
}

// ForwardIndex maps (traditional spelling, pos) to the alternate spelling.
type ForwardIndex map[ForwardKey]string

// ReverseIndex maps an alternate spelling to its traditional spelling.
// Part of speech is not kept: when several rows share an alternate spelling
// only the last one loaded survives.
type ReverseIndex map[string]string

// BuildForwardIndex indexes rows in order; on duplicate keys the last row wins.
func BuildForwardIndex(rows []Row) ForwardIndex {
	ix := make(ForwardIndex, len(rows))
	for _, r := range rows {
		ix[ForwardKey{Word: r.Trad, POS: r.POS}] = r.Alt
	}
	return ix
}

// BuildReverseIndex indexes rows in order; on duplicate keys the last row wins.
func BuildReverseIndex(rows []Row) ReverseIndex {
	ix := make(ReverseIndex, len(rows))
	for _, r := range rows {
		ix[r.Alt] = r.Trad
	}
	return ix
}

// Get returns the alternate spelling registered for (word, pos).
func (ix ForwardIndex) Get(word string, pos POS) (string, bool) {
	alt, ok := ix[ForwardKey{Word: word, POS: pos}]
	return alt, ok
}

// Get returns the traditional spelling registered for an alternate spelling.
func (ix ReverseIndex) Get(word string) (string, bool) {
	trad, ok := ix[word]
	return trad, ok
}
