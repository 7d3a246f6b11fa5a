package sqlutil

import "testing"

func TestValidIdent(t *testing.T) {
	ok := []string{"cache", "cache_entries", "_t", "T9"}
	for _, s := range ok {
		if !ValidIdent(s) {
			t.Errorf("ValidIdent(%q) = false, want true", s)
		}
	}
	bad := []string{"", "9cache", "a-b", "a b", `a"b`, "a;drop table x"}
	for _, s := range bad {
		if ValidIdent(s) {
			t.Errorf("ValidIdent(%q) = true, want false", s)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{Questions(0), ""},
		{Questions(1), "?"},
		{Questions(3), "?, ?, ?"},
		{Dollars(1, 1), "$1"},
		{Dollars(3, 2), "$3, $4"},
		{Dollars(1, 0), ""},
		{DollarRows(2, 1), "($1, $2)"},
		{DollarRows(2, 2), "($1, $2), ($3, $4)"},
		{DollarRows(0, 2), ""},
		{QuestionRows(3, 2), "(?, ?, ?), (?, ?, ?)"},
		{QuestionRows(1, 0), ""},
	}
	for i, c := range cases {
		if c.got != c.want {
			t.Errorf("case %d: got %q, want %q", i, c.got, c.want)
		}
	}
}
