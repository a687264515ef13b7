package replacer

import (
	"strings"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/scan"
)

const (
	keyPiecewise    = `\begin{piecewise}`
	keyPiece        = `\piece`
	keyRightBrace   = `\rightbrace`
	keyEndPiecewise = `\end{piecewise}`
)

// NewPiecewise returns the Piecewise family.
func NewPiecewise() *Replacer { return newReplacer(KindPiecewise, keyPiecewise) }

// applyPiecewise consumes everything up to and including the matching
// \end{piecewise}.
func applyPiecewise(key string, c *scan.Cursor) (string, error) {
	opts, args, err := parse(key, c)
	if err != nil {
		return "", err
	}
	if err := noOptions(key, c, opts); err != nil {
		return "", err
	}
	if len(args) > 1 {
		return "", c.Errorf(errors.ErrCodeArity, "Too many arguments for %s", key)
	}

	var sb strings.Builder
	if len(args) == 1 {
		sb.WriteString(args[0] + " = ")
	}
	sb.WriteString(`\left\{\begin{array}{l l}` + "\n")

	rightBrace := false
	for {
		for c.SkipToNextToken() {
		}

		b, ok := c.Peek()
		switch {
		case !ok:
			return "", c.Errorf(errors.ErrCodeUnterminated,
				`End of file reached before reaching end of "piecewise" definition`)
		case b == '%':
			c.SkipLine()
			continue
		case c.HasPrefix(keyEndPiecewise):
			c.Advance(len(keyEndPiecewise))
			sb.WriteString(`\end{array}\right`)
			if rightBrace {
				sb.WriteString(`\}`)
			} else {
				sb.WriteString(".")
			}
			return sb.String(), nil
		case c.HasPrefix(keyRightBrace):
			if rightBrace {
				return "", c.Errorf(errors.ErrCodeDuplicate, `"%s" seen twice (only needed once)`, keyRightBrace)
			}
			rightBrace = true
			c.Advance(len(keyRightBrace))
		default:
			piece, err := parsePiece(c)
			if err != nil {
				return "", err
			}
			sb.WriteString(piece)
		}
	}
}

func parsePiece(c *scan.Cursor) (string, error) {
	if !c.HasPrefix(keyPiece) {
		return "", c.Errorf(errors.ErrCodeMissing, `Expected a "%s" inside piecewise definition`, keyPiece)
	}
	c.Advance(len(keyPiece))

	opts, args, err := parse(keyPiece, c)
	if err != nil {
		return "", err
	}
	if err := noOptions(keyPiece, c, opts); err != nil {
		return "", err
	}

	switch len(args) {
	case 0:
		return "", c.Errorf(errors.ErrCodeArity, "%s needs at least one argument", keyPiece)
	case 1:
		return "\t" + args[0] + ", & \\\\\n", nil
	case 2:
		return "\t" + args[0] + ", & " + args[1] + " \\\\\n", nil
	default:
		return "", c.Errorf(errors.ErrCodeArity, "%s only takes one or two arguments", keyPiece)
	}
}

func noOptions(key string, c *scan.Cursor, opts *scan.MacroOptions) error {
	if len(opts.Named) != 0 {
		return c.Errorf(errors.ErrCodeInvalidOption, "%s does not take options", key)
	}
	if len(opts.Flags) != 0 {
		return c.Errorf(errors.ErrCodeInvalidOption, "%s does not take flags", key)
	}
	return nil
}
