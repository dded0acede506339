package pkg

import (
	"sync"

	"github.com/Masterminds/semver/v3"
)

// SemVer returns the parsed module version. The embedded VERSION file is
// validated by tests, so a parse failure here is a build defect.
var SemVer = sync.OnceValue(
	func() *semver.Version {
		return semver.MustParse(Version())
	},
)

// Satisfies reports whether the module version satisfies constraint, e.g.
// ">= 0.1, < 1". Constraint syntax errors are returned as is.
func Satisfies(constraint string) (bool, []error, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, nil, err
	}

	ok, errs := c.Validate(SemVer())

	return ok, errs, nil
}
