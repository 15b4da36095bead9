package middleware

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRedactor_Query(t *testing.T) {
	rd := newRedactor(RedactOptions{MaskParams: []string{" Session "}})

	tests := []struct {
		name string
		raw  string
		want url.Values
	}{
		{"empty", "", nil},
		{"plain", "q=ai,nvidia&kind=all", url.Values{"q": {"ai,nvidia"}, "kind": {"all"}}},
		{"api key any case", "APIKEY=x&api_key=y", url.Values{"APIKEY": {redacted}, "api_key": {redacted}}},
		{"custom param", "session=abc", url.Values{"session": {redacted}}},
		{"email in value", "q=ping+me%40example.com", url.Values{"q": {"ping [REDACTED:email]"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := rd.query(tt.raw)
			if tt.want == nil {
				if out != "" {
					t.Fatalf("want empty, got %q", out)
				}
				return
			}
			got, err := url.ParseQuery(out)
			if err != nil {
				t.Fatalf("output not a query: %q", out)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got := rd.query("%zz"); got != redacted {
		t.Fatalf("unparseable query should be masked, got %q", got)
	}
}

func TestRedactor_Headers(t *testing.T) {
	rd := newRedactor(RedactOptions{MaskHeaders: []string{"X-Client-Secret", ""}})
	got := rd.headers(map[string][]string{
		"Authorization":   {"Bearer x"},
		"X-Api-Key":       {"k"},
		"X-Client-Secret": {"s"},
		"From":            {"ops@example.com"},
		"Accept":          {"application/json", "text/plain"},
	})
	want := map[string]string{
		"Authorization":   redacted,
		"X-Api-Key":       redacted,
		"X-Client-Secret": redacted,
		"From":            "[REDACTED:email]",
		"Accept":          "application/json, text/plain",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
