package fixes

import "github.com/gnolang/virfix/internal/vir"

// FixMethod runs FixGhostVars and then the loop havoc pass on m. On a
// defect the original method is returned with the defect.
func FixMethod(m vir.Method, opts HavocOptions) (vir.Method, error) {
	fixed, err := FixGhostVars(m)
	if err != nil {
		return m, err
	}
	return opts.HavocMethod(fixed), nil
}
