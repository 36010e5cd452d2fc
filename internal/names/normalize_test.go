package names

import "testing"

func TestNormalizeNicknameCollapsing(t *testing.T) {
	n := NewNormalizer(DefaultNicknames())
	tests := []struct {
		a, b string
	}{
		{"Bob Smith", "Robert Smith"},
		{"rob smith", "ROBERT   SMITH"},
		{"Liz Taylor", "Elizabeth Taylor"},
		{"Katie Holmes", "kate holmes"},
		{"Bill Gates", "Will Gates"},
	}
	for _, tt := range tests {
		ka, kb := n.Normalize(tt.a), n.Normalize(tt.b)
		if ka != kb {
			t.Fatalf("expected %q and %q to share a key, got %q vs %q", tt.a, tt.b, ka, kb)
		}
	}
}

func TestNormalizeFoldsCaseAndWhitespace(t *testing.T) {
	n := NewNormalizer(DefaultNicknames())
	tests := []struct {
		in, want string
	}{
		{"  Jane   DOE ", "jane doe"},
		{"Joe Smith", "joseph smith"},
		{"Smith Joe", "smith joseph"},
		{"Madonna", "madonna"},
		{"", ""},
		{"   \t\n", ""},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer(DefaultNicknames())
	inputs := []any{"Bob Smith", "", "x", 42, nil, []string{"bob"}, 3.5}
	for _, in := range inputs {
		first := n.NormalizeValue(in)
		second := n.NormalizeValue(in)
		if first != second {
			t.Fatalf("NormalizeValue(%v) not deterministic: %q vs %q", in, first, second)
		}
	}
}

func TestNormalizeValueNonString(t *testing.T) {
	n := NewNormalizer(DefaultNicknames())
	for _, in := range []any{nil, 7, true, map[string]any{"name": "bob"}, (*string)(nil)} {
		if got := n.NormalizeValue(in); got != "" {
			t.Fatalf("NormalizeValue(%#v) = %q, want empty", in, got)
		}
	}
	name := "Bob Jones"
	if got := n.NormalizeValue(&name); got != "robert jones" {
		t.Fatalf("NormalizeValue(*string) = %q", got)
	}
}

func TestNormalizerTableIsCopied(t *testing.T) {
	table := NicknameTable{"jim": "james"}
	n := NewNormalizer(table)
	table["jim"] = "jimmy"
	if got := n.Normalize("Jim Beam"); got != "james beam" {
		t.Fatalf("normalizer observed caller mutation: %q", got)
	}
}

func TestMergeExtendsDefaults(t *testing.T) {
	table := DefaultNicknames().Merge(map[string]string{" Peggy ": "Margaret", "": "x"})
	if table["peggy"] != "margaret" {
		t.Fatalf("expected merged entry, got %q", table["peggy"])
	}
	if _, ok := table[""]; ok {
		t.Fatal("blank keys must be skipped")
	}
	if DefaultNicknames()["peggy"] != "" {
		t.Fatal("Merge must not modify the defaults")
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
		ok          bool
	}{
		{"Jane Doe", "Jane", "Doe", true},
		{"  Mary Anne  van Buren ", "Mary", "Anne van Buren", true},
		{"Madonna", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		first, last, ok := SplitName(tt.in)
		if first != tt.first || last != tt.last || ok != tt.ok {
			t.Errorf("SplitName(%q) = (%q, %q, %v), want (%q, %q, %v)", tt.in, first, last, ok, tt.first, tt.last, tt.ok)
		}
	}
}
