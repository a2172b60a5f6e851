package argbuilder

import (
	"regexp"
	"strings"
)

// emptyDefine matches a -D property assignment with an empty value, e.g.
// "-Dfoo=". The native Windows shell silently drops such assignments
// unless the empty value is explicitly quoted.
var emptyDefine = regexp.MustCompile(`^-D[^" ]+=$`)

// DefaultShellPrefixLen is the token count of the usual Windows shell
// wrapper ("cmd.exe", "/C"). Callers with a different wrapper pass their
// own length to ToWindowsCommand.
const DefaultShellPrefixLen = 2

// WrapWindows returns a new Builder with the shell wrapper prepended:
// cmd.exe /C followed by the original tokens. Wrapper tokens are unmasked;
// the original tokens keep their positions and sensitivity flags.
func (b *Builder) WrapWindows() *Builder {
	out := New().Add("cmd.exe", "/C")
	for i, a := range b.args {
		out.append(a, b.masks[i])
	}
	return out
}

// ToWindowsCommand re-escapes an already wrapped argument sequence for the
// native Windows shell. Sequences longer than three tokens are treated as
// a shell-wrapper prefix of prefixLen tokens followed by the real command;
// shorter sequences are the historical single-quoted-blob shape and go
// through the narrower legacy fix. Both paths quote empty -D values and
// keep the sensitivity mask aligned to its original tokens.
func ToWindowsCommand(b *Builder, prefixLen int) *Builder {
	if b.Len() > 3 {
		return rewriteWindows(b, prefixLen)
	}
	return rewriteWindowsLegacy(b)
}

func rewriteWindows(b *Builder, prefixLen int) *Builder {
	if prefixLen < 0 || prefixLen > b.Len() {
		prefixLen = b.Len()
	}

	out := New()
	out.Add(b.args[:prefixLen]...)

	for i := prefixLen; i < len(b.args); i++ {
		arg := b.args[i]
		if emptyDefine.MatchString(arg) {
			arg += `""`
		}
		out.append(arg, b.masks[i])
	}
	return out
}

// rewriteWindowsLegacy fixes only the final token, which in the historical
// shape is a single blob holding the whole command. Every space-delimited
// word inside it that is an empty -D assignment gets its value quoted.
func rewriteWindowsLegacy(b *Builder) *Builder {
	if b.Len() == 0 {
		return b
	}

	out := New()
	for i, a := range b.args {
		out.append(a, b.masks[i])
	}

	last := len(out.args) - 1
	words := strings.Split(out.args[last], " ")
	for i, w := range words {
		if emptyDefine.MatchString(w) {
			words[i] = w + `""`
		}
	}
	out.args[last] = strings.Join(words, " ")
	return out
}
