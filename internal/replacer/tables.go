package replacer

// directTable maps relational operators, long arrows, Greek shorthands and
// math functions to LaTeX.
var directTable = map[string]string{
	"<--":  `\leftarrow`,
	"-->":  `\rightarrow`,
	"<==":  `\Leftarrow`,
	"==>":  `\Rightarrow`,
	"<-->": `\leftrightarrow`,
	"<==>": `\Leftrightarrow`,
	"!=":   `\neq`,
	">=":   `\geq`,
	"<=":   `\leq`,

	"'a": `\alpha`,
	"'b": `\beta`,
	"'g": `\gamma`,
	"'d": `\delta`,
	"'e": `\varepsilon`,
	"'z": `\zeta`,
	"'h": `\eta`,
	"'q": `\theta`,
	"'k": `\kappa`,
	"'l": `\lambda`,
	"'m": `\mu`,
	"'n": `\nu`,
	"'x": `\xi`,
	"'p": `\pi`,
	"'r": `\rho`,
	"'s": `\sigma`,
	"'v": `\varsigma`,
	"'t": `\tau`,
	"'u": `\upsilon`,
	"'f": `\varphi`,
	"'c": `\chi`,
	"'y": `\psi`,
	"'w": `\omega`,

	"'G": `\Gamma`,
	"'D": `\Delta`,
	"'Q": `\Theta`,
	"'L": `\Lambda`,
	"'X": `\Xi`,
	"'S": `\Sigma`,
	"'U": `\Upsilon`,
	"'F": `\Phi`,
	"'Y": `\Psi`,
	"'W": `\Omega`,

	`\sinc`: `\mathrm{sinc}`,
}

var arrowTable = map[string]string{
	"<-":  `\leftarrow`,
	"->":  `\rightarrow`,
	"=>":  `\Rightarrow`,
	"<->": `\leftrightarrow`,
	"<=>": `\Leftrightarrow`,
}

// NewDirect returns the Direct family. extra entries are added to the
// built-in table and replace built-in entries with the same key.
func NewDirect(extra map[string]string) *Replacer {
	table := make(map[string]string, len(directTable)+len(extra))
	for k, v := range directTable {
		table[k] = v
	}
	for k, v := range extra {
		if k != "" {
			table[k] = v
		}
	}
	return newTableReplacer(KindDirect, table)
}

// NewArrow returns the Arrow family.
func NewArrow() *Replacer {
	table := make(map[string]string, len(arrowTable))
	for k, v := range arrowTable {
		table[k] = v
	}
	return newTableReplacer(KindArrow, table)
}
