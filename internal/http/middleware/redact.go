package middleware

import (
	"net/url"
	"regexp"
	"strings"
)

// RedactOptions configures what Logger scrubs.
//
// MaskHeaders and MaskParams extend the built-in lists; matching is
// case-insensitive.
type RedactOptions struct {
	MaskHeaders []string
	MaskParams  []string
}

const redacted = "[REDACTED]"

var (
	defaultMaskHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "X-Api-Key"}
	defaultMaskParams  = []string{"apiKey", "api_key", "token", "access_token"}

	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
)

type redactor struct {
	maskHeaders map[string]struct{}
	maskParams  map[string]struct{}
}

func newRedactor(opts RedactOptions) redactor {
	return redactor{
		maskHeaders: lowerSet(defaultMaskHeaders, opts.MaskHeaders),
		maskParams:  lowerSet(defaultMaskParams, opts.MaskParams),
	}
}

func lowerSet(lists ...[]string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, l := range lists {
		for _, s := range l {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				m[s] = struct{}{}
			}
		}
	}
	return m
}

// query masks credential parameters and e-mail addresses in a raw query
// string. Unparseable input is masked whole.
func (r redactor) query(raw string) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return redacted
	}
	for k, vv := range vals {
		if _, ok := r.maskParams[strings.ToLower(k)]; ok {
			vals[k] = []string{redacted}
			continue
		}
		for i, v := range vv {
			vv[i] = emailRE.ReplaceAllString(v, "[REDACTED:email]")
		}
	}
	return vals.Encode()
}

// headers returns a flattened copy of h with masked values.
func (r redactor) headers(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.maskHeaders[strings.ToLower(k)]; ok {
			out[k] = redacted
			continue
		}
		out[k] = emailRE.ReplaceAllString(strings.Join(vv, ", "), "[REDACTED:email]")
	}
	return out
}
