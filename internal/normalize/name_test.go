package normalize

import "testing"

func TestName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "LUKA DONCIC", want: "luka doncic"},
		{name: "strips diacritics", in: "Luka Dončić", want: "luka doncic"},
		{name: "strips jr suffix", in: "Gary Payton Jr.", want: "gary payton"},
		{name: "strips sr suffix without period", in: "Tim Hardaway Sr", want: "tim hardaway"},
		{name: "strips roman numeral suffix", in: "Trey Murphy III", want: "trey murphy"},
		{name: "collapses whitespace", in: "  Jaren   Jackson   Jr. ", want: "jaren jackson"},
		{name: "empty input", in: "", want: ""},
		{name: "whitespace only", in: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Name(tc.in); got != tc.want {
				t.Fatalf("Name(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNameInvariance(t *testing.T) {
	variants := []string{"Luka Dončić", "luka doncic", "LUKA DONCIC"}
	want := Name(variants[0])
	for _, v := range variants[1:] {
		if got := Name(v); got != want {
			t.Fatalf("Name(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestSuffix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "Gary Payton Jr.", want: "jr"},
		{in: "Tim Hardaway Sr", want: "sr"},
		{in: "Trey Murphy III", want: "iii"},
		{in: "Dereck Lively II", want: "ii"},
		{in: "Luka Doncic", want: ""},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		if got := Suffix(tc.in); got != tc.want {
			t.Fatalf("Suffix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSuffixesConflict(t *testing.T) {
	pairs := DefaultConflictPairs()

	cases := []struct {
		a, b string
		want bool
	}{
		{a: "jr", b: "sr", want: true},
		{a: "sr", b: "jr", want: true},
		{a: "Jr.", b: "sr", want: true},
		{a: "ii", b: "iii", want: false},
		{a: "jr", b: "jr", want: false},
		{a: "", b: "sr", want: false},
		{a: "", b: "", want: false},
	}

	for _, tc := range cases {
		if got := SuffixesConflict(tc.a, tc.b, pairs); got != tc.want {
			t.Fatalf("SuffixesConflict(%q, %q) = %t, want %t", tc.a, tc.b, got, tc.want)
		}
	}
}
