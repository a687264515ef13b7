package scan

import "github.com/conneroisu/semtex/internal/errors"

var (
	trueValues = map[string]struct{}{
		"true": {}, "True": {}, "TRUE": {}, "t": {}, "T": {},
		"y": {}, "Y": {}, "yes": {}, "Yes": {}, "1": {},
	}
	falseValues = map[string]struct{}{
		"false": {}, "False": {}, "FALSE": {}, "f": {}, "F": {},
		"n": {}, "N": {}, "no": {}, "No": {}, "0": {},
	}
)

// TruthValue interprets s as a boolean option value.
func TruthValue(s string) (value, ok bool) {
	if _, found := trueValues[s]; found {
		return true, true
	}
	if _, found := falseValues[s]; found {
		return false, true
	}
	return false, false
}

// ParseBool interprets the value of the named option key, failing with a
// located error when it is not a recognized boolean.
func ParseBool(c *Cursor, key, value string) (bool, error) {
	v, ok := TruthValue(value)
	if !ok {
		return false, c.Errorf(errors.ErrCodeBoolean, "Unknown value %q for boolean argument %q", value, key)
	}
	return v, nil
}
