package workflow

import (
	"strconv"
	"strings"
	"unicode"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

// sanitize keeps identifier friendly characters only
func sanitize(name string) string {
	builder := strings.Builder{}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			builder.WriteRune(r)
			continue
		}
		builder.WriteRune('_')
	}
	return builder.String()
}

// DisplayName returns a label for name, optionally splitting camelCase and snake_case into words
func DisplayName(name string, split bool) string {
	if !split || name == "" {
		return name
	}
	var words []string
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		words = append(words, splitCamel(part)...)
	}
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// splitCamel splits "HTTPRequestSent" into ["HTTP", "Request", "Sent"]
func splitCamel(s string) []string {
	runes := []rune(s)
	var ret []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsLower(prev) && unicode.IsUpper(cur)
		boundary = boundary || (unicode.IsLetter(prev) && unicode.IsDigit(cur)) || (unicode.IsDigit(prev) && unicode.IsLetter(cur))
		if !boundary && i+1 < len(runes) && unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if boundary {
			ret = append(ret, string(runes[start:i]))
			start = i
		}
	}
	return append(ret, string(runes[start:]))
}
