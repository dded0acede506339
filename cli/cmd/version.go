package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dyn-lang/dyn/pkg"
)

// Version prints the module version.
type Version struct {
	Require string `help:"Fail unless the version satisfies this constraint (e.g. '>= 0.1, < 1')." placeholder:"CONSTRAINT"`
	Short   bool   `help:"Print only the version number."`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	if v.Require != "" {
		ok, reasons, err := pkg.Satisfies(v.Require)
		if err != nil {
			return ErrVersion.Wrap(err).With(slog.String("constraint", v.Require))
		}

		if !ok {
			attrs := []slog.Attr{
				slog.String("version", pkg.Version()),
				slog.String("constraint", v.Require),
			}

			for _, r := range reasons {
				attrs = append(attrs, slog.String("reason", r.Error()))
			}

			return ErrVersionMismatch.With(attrs...)
		}
	}

	if v.Short {
		_, err := fmt.Fprintln(Stdout(ctx), pkg.SemVer())

		return err
	}

	_, err := fmt.Fprintf(Stdout(ctx), "%s %s (%s %s/%s)\n",
		pkg.Name, pkg.SemVer(), runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
