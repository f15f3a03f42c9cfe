package normalize

import (
	"encoding/json"
	"io"
	"strings"
)

// maxUnwrapDepth bounds how many encoding layers are peeled off one string.
const maxUnwrapDepth = 8

// UnwrapJSON decodes s while it holds an encoded JSON object, array or string.
// Decoded containers are normalized recursively, so JSON strings nested inside
// them are decoded as well. If any layer fails to parse, s is returned as
// stored.
func UnwrapJSON(s string) interface{} {
	cur := s
	for i := 0; i < maxUnwrapDepth; i++ {
		if !looksLikeJSON(cur) {
			return cur
		}
		parsed, ok := decode(cur)
		if !ok {
			return s
		}
		next, isString := parsed.(string)
		if !isString {
			return Value(parsed)
		}
		cur = next
	}
	return cur
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return false
	}
	switch s[0] {
	case '{', '[', '"':
		return true
	}
	return false
}

func decode(s string) (interface{}, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}
