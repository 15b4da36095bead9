package keywords

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNormalize_OrderAndCaseInsensitive(t *testing.T) {
	want := "ai,nvidia"
	cases := []struct {
		name  string
		terms []string
	}{
		{"list mixed case", []string{"Nvidia", "AI"}},
		{"delimited string", []string{"ai, nvidia"}},
		{"list with blank", []string{"ai", "nvidia", " "}},
		{"duplicates and padding", []string{"Nvidia", "nvidia", " AI "}},
		{"list element with comma", []string{"nvidia,AI"}},
	}
	for _, tc := range cases {
		if got := Normalize(tc.terms...); got != want {
			t.Fatalf("%s: Normalize(%q) = %q; want %q", tc.name, tc.terms, got, want)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, in := range [][]string{nil, {}, {""}, {"  ,  "}, {" ", ","}} {
		if got := Normalize(in...); got != "" {
			t.Fatalf("Normalize(%q) = %q; want empty key", in, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Go, Rust ,go",
		"  ",
		"Élan, élan, zeta",
		"b,a,c,a",
	}
	for _, s := range inputs {
		once := Normalize(s)
		if again := Normalize(Split(s)...); again != once {
			t.Fatalf("Normalize(Split(%q)) = %q; want %q", s, again, once)
		}
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize(Normalize(%q)) = %q; want %q", s, twice, once)
		}
	}
}

func TestSplit_SortedDedupedNonNil(t *testing.T) {
	got := Split("zeta, Alpha", "alpha", "  beta ")
	if diff := cmp.Diff([]string{"alpha", "beta", "zeta"}, got); diff != "" {
		t.Fatalf("Split mismatch (-want +got):\n%s", diff)
	}

	empty := Split()
	if empty == nil || len(empty) != 0 {
		t.Fatalf("Split() = %#v; want empty non-nil slice", empty)
	}
}

func TestQuery_PreservesOriginalTerms(t *testing.T) {
	if got := Query("Nvidia", " AI ", ""); got != "Nvidia,AI" {
		t.Fatalf("Query = %q", got)
	}
	if got := Query("ai , nvidia"); got != "ai,nvidia" {
		t.Fatalf("Query = %q", got)
	}
	if got := Query(); got != "" {
		t.Fatalf("Query() = %q", got)
	}
}
