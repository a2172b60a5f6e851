// Package argbuilder accumulates an ordered command-line token sequence
// together with a parallel sensitivity mask, so that secret values can be
// blanked wherever the command is echoed or logged.
package argbuilder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Builder holds the token sequence under construction. Token order is
// significant and survives every transform unchanged.
type Builder struct {
	args  []string
	masks []bool
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Add appends one or more plain (unmasked) tokens.
func (b *Builder) Add(tokens ...string) *Builder {
	for _, t := range tokens {
		b.append(t, false)
	}
	return b
}

// AddMasked appends a token whose value must be blanked in any echoed or
// logged rendering of the command line.
func (b *Builder) AddMasked(token string) *Builder {
	b.append(token, true)
	return b
}

func (b *Builder) append(token string, masked bool) {
	b.args = append(b.args, token)
	b.masks = append(b.masks, masked)
}

// AddKeyValuePairs appends prefix+key=value tokens for every entry of
// pairs, in sorted key order. Tokens whose key appears in sensitive are
// masked.
func (b *Builder) AddKeyValuePairs(prefix string, pairs map[string]string, sensitive map[string]struct{}) *Builder {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		token := fmt.Sprintf("%s%s=%s", prefix, k, pairs[k])
		_, masked := sensitive[k]
		b.append(token, masked)
	}
	return b
}

// AddKeyValuePairsFromPropertyString parses properties-file style text
// (one key=value per line, # and ! comments, blank lines ignored) and
// appends a prefix+key=value token per entry in file order. Values are
// passed through resolve for variable expansion; keys listed in sensitive
// produce masked tokens. A nil resolve keeps values verbatim.
func (b *Builder) AddKeyValuePairsFromPropertyString(prefix, text string, resolve func(string) string, sensitive map[string]struct{}) (*Builder, error) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return b, fmt.Errorf("malformed property line %q: missing '='", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			return b, fmt.Errorf("malformed property line %q: empty key", line)
		}
		if resolve != nil {
			value = resolve(value)
		}
		_, masked := sensitive[key]
		b.append(fmt.Sprintf("%s%s=%s", prefix, key, value), masked)
	}
	return b, nil
}

// AddTokenized splits raw on whitespace, preserving quoted segments, and
// appends the resulting tokens unmasked.
func (b *Builder) AddTokenized(raw string) (*Builder, error) {
	if strings.TrimSpace(raw) == "" {
		return b, nil
	}
	tokens, err := shellquote.Split(raw)
	if err != nil {
		return b, fmt.Errorf("tokenizing %q: %w", raw, err)
	}
	return b.Add(tokens...), nil
}

// Len returns the number of accumulated tokens.
func (b *Builder) Len() int {
	return len(b.args)
}

// ToList returns a copy of the token sequence.
func (b *Builder) ToList() []string {
	out := make([]string, len(b.args))
	copy(out, b.args)
	return out
}

// MaskArray returns a copy of the sensitivity mask, parallel to ToList.
func (b *Builder) MaskArray() []bool {
	out := make([]bool, len(b.masks))
	copy(out, b.masks)
	return out
}

// String renders the command line with masked tokens blanked out. Safe for
// logs and console echoes.
func (b *Builder) String() string {
	parts := make([]string, len(b.args))
	for i, a := range b.args {
		if b.masks[i] {
			parts[i] = "********"
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
