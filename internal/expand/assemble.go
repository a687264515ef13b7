package expand

import (
	"bytes"
	"io"
	"strings"

	"github.com/conneroisu/semtex/internal/scan"
)

// WriteTo writes buf with subs applied, rewriting line breaks inside
// replacement text to style. subs must be ordered and disjoint.
func WriteTo(w io.Writer, buf []byte, subs []scan.Substitution, style scan.NewlineStyle) (int64, error) {
	var written int64
	write := func(p []byte) error {
		n, err := w.Write(p)
		written += int64(n)
		return err
	}

	prev := 0
	for _, s := range subs {
		if err := write(buf[prev:s.Start]); err != nil {
			return written, err
		}
		if err := write([]byte(NormalizeNewlines(s.Text, style))); err != nil {
			return written, err
		}
		prev = s.End
	}
	if err := write(buf[prev:]); err != nil {
		return written, err
	}
	return written, nil
}

// Assemble returns buf with subs applied. With no substitutions the result
// equals buf.
func Assemble(buf []byte, subs []scan.Substitution, style scan.NewlineStyle) []byte {
	if len(subs) == 0 {
		out := make([]byte, len(buf))
		copy(out, buf)
		return out
	}

	var out bytes.Buffer
	out.Grow(len(buf))
	// bytes.Buffer writes never fail.
	_, _ = WriteTo(&out, buf, subs, style)
	return out.Bytes()
}

// Splice applies subs to buf without touching line breaks. It is used to
// fold a nested pass back into its parent's replacement text.
func Splice(buf []byte, subs []scan.Substitution) []byte {
	var out bytes.Buffer
	out.Grow(len(buf))

	prev := 0
	for _, s := range subs {
		out.Write(buf[prev:s.Start])
		out.WriteString(s.Text)
		prev = s.End
	}
	out.Write(buf[prev:])
	return out.Bytes()
}

// NormalizeNewlines rewrites every line break in s to style. Line breaks
// are recognized the same way the scanner counts them.
func NormalizeNewlines(s string, style scan.NewlineStyle) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}

	seq := style.Sequence()
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			sb.WriteString(seq)
		case '\n':
			if i+1 < len(s) && s[i+1] == '\r' {
				i++
			}
			sb.WriteString(seq)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
