// Package extract pulls blood-panel values out of lab-report text.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"labdiet/internal/domain"
)

// ReportKind identifies the kind of lab report an upload contains.
type ReportKind string

// Supported report kinds.
const (
	BloodSugar  ReportKind = "blood_sugar"
	Cholesterol ReportKind = "cholesterol"
	Thyroxine   ReportKind = "thyroxine"
)

// ReportKinds lists the kinds in processing order.
var ReportKinds = []ReportKind{BloodSugar, Cholesterol, Thyroxine}

// Label ties a section label printed on a report to the field it reports.
type Label struct {
	Text  string
	Field domain.Field
}

var reportLabels = map[ReportKind][]Label{
	BloodSugar: {
		{"Blood Sugar Fasting", domain.FastingBloodSugar},
		{"Glucose - Post Prandial", domain.PostPrandialBloodSugar},
	},
	Cholesterol: {
		{"Cholesterol", domain.Cholesterol},
		{"LDL Cholesterol", domain.LDLCholesterol},
		{"HDL Cholesterol", domain.HDLCholesterol},
	},
	Thyroxine: {
		{"Thyroxine", domain.Thyroxine},
	},
}

// ParseReportKind validates a report kind name.
func ParseReportKind(s string) (ReportKind, error) {
	k := ReportKind(s)
	if _, ok := reportLabels[k]; !ok {
		return "", fmt.Errorf("unknown report kind %q", s)
	}
	return k, nil
}

// ReportFields extracts every field a report of kind k carries, keyed by
// field label. Labels that are absent are left out.
func ReportFields(k ReportKind, text string) (map[string]string, error) {
	labels, ok := reportLabels[k]
	if !ok {
		return nil, fmt.Errorf("unknown report kind %q", k)
	}
	var texts []string
	for _, l := range labels {
		texts = append(texts, l.Text)
	}

	out := make(map[string]string)
	for _, l := range labels {
		if tok, ok := extract(text, l.Text, longerLabels(l.Text, texts)); ok {
			out[l.Field.Label()] = tok
		}
	}
	return out, nil
}

// Extract returns the token immediately following the first occurrence of
// label in text.
func Extract(text, label string) (string, bool) {
	return extract(text, label, nil)
}

// extract skips occurrences of label that are the tail of one of longer,
// e.g. "Cholesterol" inside "LDL Cholesterol".
func extract(text, label string, longer []string) (string, bool) {
	if label == "" {
		return "", false
	}
	from := 0
	for {
		i := strings.Index(text[from:], label)
		if i < 0 {
			return "", false
		}
		start := from + i
		end := start + len(label)
		from = end
		if tailOfAny(text, start, label, longer) {
			continue
		}
		return nextToken(text[end:])
	}
}

func tailOfAny(text string, start int, label string, longer []string) bool {
	for _, l := range longer {
		prefix := len(l) - len(label)
		if start >= prefix && text[start-prefix:start+len(label)] == l {
			return true
		}
	}
	return false
}

// longerLabels returns the labels in all that end with label.
func longerLabels(label string, all []string) []string {
	var out []string
	for _, l := range all {
		if l != label && strings.HasSuffix(l, label) {
			out = append(out, l)
		}
	}
	// check the longest first so nested suffixes resolve consistently
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// nextToken returns the first whitespace-delimited token of s, skipping bare
// separators such as ":" and trimming punctuation around the value.
func nextToken(s string) (string, bool) {
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(tok, ":,;=")
		if tok == "" || tok == "-" {
			continue
		}
		return tok, true
	}
	return "", false
}

// Merge combines field maps in order. A later non-empty value replaces an
// earlier one; empty values never erase anything.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			if v != "" {
				out[k] = v
			}
		}
	}
	return out
}
