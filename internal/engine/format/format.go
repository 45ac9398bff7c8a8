// SPDX-License-Identifier: MIT

// Package format rewrites raw instrument file names into the canonical
// timestamp grammar. Each upstream archive encodes acquisition time
// differently; a Strategy knows one such encoding.
package format

import (
	"fmt"
	"regexp"

	"github.com/rinman24/arcobs/internal/chrono"
)

// Strategy recognises one raw filename date encoding.
type Strategy interface {
	// Pattern matches the date portion of a raw name.
	Pattern() *regexp.Regexp
	// Extract parses the matched portion. Encodings that omit the year
	// receive it as a hint.
	Extract(target, yearHint string) (chrono.DateTime, error)
}

// Reformat replaces the date portion of raw with the canonical stamp.
// The portions before and after the match are preserved.
func Reformat(raw, yearHint string, s Strategy) (string, error) {
	loc := s.Pattern().FindStringIndex(raw)
	if loc == nil {
		return "", fmt.Errorf("no match found: %q", raw)
	}
	dt, err := s.Extract(raw[loc[0]:loc[1]], yearHint)
	if err != nil {
		return "", fmt.Errorf("extract %q: %w", raw, err)
	}
	return raw[:loc[0]] + chrono.Stamp(dt) + raw[loc[1]:], nil
}

func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}

func atoi4(s string) int {
	return atoi2(s[:2])*100 + atoi2(s[2:4])
}
