package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON unmarshals a JSON document into T. Surrounding whitespace is
// ignored; an empty input yields the zero value.
func ParseJSON[T any](raw string) (T, error) {
	var result T
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return result, nil
	}

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}

var slashReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x00", `\0`,
)

// AddSlashes escapes quotes, backslashes and NUL the way legacy writers stored
// free text.
func AddSlashes(s string) string {
	return slashReplacer.Replace(s)
}

// StripSlashes reverses AddSlashes.
func StripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		if s[i] == '0' {
			b.WriteByte(0)
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
