package dict

import "testing"

func TestBuildForwardIndex_LastRowWins(t *testing.T) {
	rows := []Row{
		{Trad: "run", Alt: "X"},
		{Trad: "run", Alt: "Y", POS: POSVerb},
		{Trad: "run", Alt: "Z"},
	}
	ix := BuildForwardIndex(rows)

	if len(ix) != 2 {
		t.Fatalf("keys = %d, want 2", len(ix))
	}
	if got, _ := ix.Get("run", POSNone); got != "Z" {
		t.Errorf("(run, none) = %q, want Z", got)
	}
	if got, _ := ix.Get("run", POSVerb); got != "Y" {
		t.Errorf("(run, v) = %q, want Y", got)
	}
}

func TestBuildForwardIndex_NoPosAgnosticDuplicate(t *testing.T) {
	ix := BuildForwardIndex([]Row{{Trad: "lead", Alt: "leed", POS: POSVerb}})
	if _, ok := ix.Get("lead", POSNone); ok {
		t.Error("row with a POS must not register under the pos-agnostic key")
	}
}

func TestBuildReverseIndex_DropsPOS(t *testing.T) {
	rows := []Row{
		{Trad: "read", Alt: "red", POS: POSAdjective},
		{Trad: "red", Alt: "red"},
	}
	ix := BuildReverseIndex(rows)

	if len(ix) != 1 {
		t.Fatalf("keys = %d, want 1", len(ix))
	}
	if got, _ := ix.Get("red"); got != "red" {
		t.Errorf("reverse red = %q, want red (last row)", got)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", Forward, false},
		{"forward", Forward, false},
		{"F", Forward, false},
		{"reverse", Reverse, false},
		{" rev ", Reverse, false},
		{"sideways", Forward, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
	if Reverse.String() != "reverse" || Forward.String() != "forward" {
		t.Error("Direction.String mismatch")
	}
}
