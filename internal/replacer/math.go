package replacer

import (
	"strings"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/scan"
)

const (
	keyUnit     = `\unit`
	keyIntegral = `\integral`
	keySumm     = `\summ`
	keyDeriv    = `\deriv`
)

// NewUnit returns the Unit family.
func NewUnit() *Replacer { return newReplacer(KindUnit, keyUnit) }

// NewIntegral returns the Integral family.
func NewIntegral() *Replacer { return newReplacer(KindIntegral, keyIntegral) }

// NewSummation returns the Summation family.
func NewSummation() *Replacer { return newReplacer(KindSummation, keySumm) }

// NewDerivative returns the Derivative family.
func NewDerivative() *Replacer { return newReplacer(KindDerivative, keyDeriv) }

// \unit{kg} or \unit[u=kg]
func applyUnit(key string, c *scan.Cursor) (string, error) {
	opts, args, err := parse(key, c)
	if err != nil {
		return "", err
	}

	var unit string
	switch {
	case len(args) == 1 && opts.Empty():
		unit = args[0]
	case len(args) == 0 && len(opts.Flags) == 0 && len(opts.Named) == 1 && opts.Named["u"] != "":
		unit = opts.Named["u"]
	default:
		return "", c.Errorf(errors.ErrCodeArity,
			`Incorrect argument(s) for %s; it takes a single argument, optionally named "u"`, key)
	}

	return `\,\mathrm{` + unit + `}`, nil
}

// bounds holds the resolved arguments shared by integrals and summations.
type bounds struct {
	expr, wrt, lower, upper *string
	inf, limits, mirror     bool
}

var (
	boundNamed = map[string]bool{"expr": true, "wrt": true, "lower": true, "from": true, "upper": true, "to": true, "inf": true}
	boundFlags = map[string]bool{"inf": true, "limits": true, "mirror": true}
)

func parseBounds(key string, c *scan.Cursor) (*bounds, error) {
	opts, args, err := parse(key, c)
	if err != nil {
		return nil, err
	}

	for _, k := range opts.Keys() {
		if !boundNamed[k] {
			return nil, c.Errorf(errors.ErrCodeInvalidOption, "Unknown argument %q for %s", k, key)
		}
	}
	for _, f := range opts.FlagList() {
		if !boundFlags[f] {
			return nil, c.Errorf(errors.ErrCodeInvalidOption, "Unknown flag %q for %s", f, key)
		}
	}
	if len(args) > 4 {
		return nil, c.Errorf(errors.ErrCodeArity, "Too many arguments for %s", key)
	}

	b := &bounds{
		limits: opts.HasFlag("limits"),
		mirror: opts.HasFlag("mirror"),
	}
	positional := []**string{&b.expr, &b.wrt, &b.lower, &b.upper}
	for i := range args {
		*positional[i] = &args[i]
	}

	named := []struct {
		dst  **string
		keys []string
		what string
	}{
		{&b.expr, []string{"expr"}, "expression"},
		{&b.wrt, []string{"wrt"}, `"with respect to"`},
		{&b.lower, []string{"lower", "from"}, "lower bound"},
		{&b.upper, []string{"upper", "to"}, "upper bound"},
	}
	for _, n := range named {
		for _, k := range n.keys {
			v, ok := opts.Named[k]
			if !ok {
				continue
			}
			if *n.dst != nil {
				return nil, c.Errorf(errors.ErrCodeDuplicate, "Duplicate %s argument for %s", n.what, key)
			}
			*n.dst = &v
		}
	}

	b.inf = opts.HasFlag("inf")
	if v, ok := opts.Named["inf"]; ok {
		if b.inf {
			return nil, c.Errorf(errors.ErrCodeDuplicate, `Duplicate "inf" argument for %s`, key)
		}
		if b.inf, err = scan.ParseBool(c, "inf", v); err != nil {
			return nil, errors.InCommand(err, key)
		}
	}

	if b.expr == nil {
		return nil, c.Errorf(errors.ErrCodeMissing, "Missing mandatory expression argument for %s", key)
	}

	if b.inf && b.lower != nil && b.upper != nil {
		c.Warnf(`"inf" ignored for %s because both bounds are given`, key)
		b.inf = false
	}
	if b.mirror {
		switch {
		case b.inf:
			c.Warnf(`"mirror" ignored for %s because "inf" is set`, key)
			b.mirror = false
		case b.upper != nil:
			c.Warnf(`"mirror" ignored for %s because an upper bound is given`, key)
			b.mirror = false
		case b.lower == nil:
			c.Warnf(`"mirror" ignored for %s because there is no lower bound`, key)
			b.mirror = false
		default:
			b.upper = b.lower
		}
	}

	return b, nil
}

// \integral{expr}{wrt}{lower}{upper}
func applyIntegral(key string, c *scan.Cursor) (string, error) {
	b, err := parseBounds(key, c)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(`\int`)
	if b.limits {
		sb.WriteString(`\limits`)
	}
	switch {
	case b.lower != nil:
		sb.WriteString("_{" + *b.lower + "}")
	case b.inf:
		sb.WriteString(`_{-\infty}`)
	}
	switch {
	case b.upper != nil:
		sb.WriteString("^{" + *b.upper + "}")
	case b.inf:
		sb.WriteString(`^{\infty}`)
	}
	sb.WriteString(" " + *b.expr)
	if b.wrt != nil {
		sb.WriteString(`\,\mathrm{d}` + *b.wrt)
	}
	return sb.String(), nil
}

// \summ{expr}{wrt}{from}{to}
func applySummation(key string, c *scan.Cursor) (string, error) {
	b, err := parseBounds(key, c)
	if err != nil {
		return "", err
	}

	index := ""
	if b.wrt != nil {
		index = *b.wrt + "="
	}

	var sb strings.Builder
	sb.WriteString(`\sum`)
	if b.limits {
		sb.WriteString(`\limits`)
	}
	switch {
	case b.lower != nil:
		sb.WriteString("_{" + index + *b.lower + "}")
	case b.inf:
		sb.WriteString("_{" + index + `-\infty}`)
	case b.wrt != nil:
		sb.WriteString("_{" + *b.wrt + "}")
	}
	switch {
	case b.upper != nil:
		sb.WriteString("^{" + *b.upper + "}")
	case b.inf:
		sb.WriteString(`^{\infty}`)
	}
	sb.WriteString(" " + *b.expr)
	return sb.String(), nil
}

var derivNamed = map[string]bool{"of": true, "wrt": true, "n": true}

// \deriv{wrt}, \deriv{of}{wrt} or \deriv{of}{wrt}{n}
func applyDerivative(key string, c *scan.Cursor) (string, error) {
	opts, args, err := parse(key, c)
	if err != nil {
		return "", err
	}

	for _, k := range opts.Keys() {
		if !derivNamed[k] {
			return "", c.Errorf(errors.ErrCodeInvalidOption, "Unknown argument %q for %s", k, key)
		}
	}
	for _, f := range opts.FlagList() {
		if f != "partial" {
			return "", c.Errorf(errors.ErrCodeInvalidOption, "Unknown flag %q for %s", f, key)
		}
	}

	var of, wrt, n *string
	switch len(args) {
	case 0:
	case 1:
		wrt = &args[0]
	case 2, 3:
		of, wrt = &args[0], &args[1]
		if len(args) == 3 {
			n = &args[2]
		}
	default:
		return "", c.Errorf(errors.ErrCodeArity, "Too many arguments for %s", key)
	}

	for _, p := range []struct {
		dst  **string
		name string
	}{{&of, "of"}, {&wrt, "wrt"}, {&n, "n"}} {
		v, ok := opts.Named[p.name]
		if !ok {
			continue
		}
		if *p.dst != nil {
			return "", c.Errorf(errors.ErrCodeDuplicate, "Duplicate %q argument for %s", p.name, key)
		}
		*p.dst = &v
	}

	if wrt == nil {
		return "", c.Errorf(errors.ErrCodeMissing, `Missing mandatory "wrt" argument for %s`, key)
	}

	d := `\mathrm{d}`
	if opts.HasFlag("partial") {
		d = `\partial `
	}
	order := ""
	if n != nil {
		order = "^{" + *n + "}"
	}

	var sb strings.Builder
	sb.WriteString(`\frac{` + d + order)
	if of != nil {
		sb.WriteString(*of)
	}
	sb.WriteString("}{" + d + *wrt + order + "}")
	return sb.String(), nil
}
