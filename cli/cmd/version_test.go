package cmd

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/dyn-lang/dyn/pkg"
)

func TestVersionRun(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		want    string
		wantErr error
	}{
		{
			name:    "full",
			version: Version{},
			want:    pkg.Name + " " + pkg.SemVer().String() + " (" + runtime.Version(),
		},
		{
			name:    "short",
			version: Version{Short: true},
			want:    pkg.SemVer().String() + "\n",
		},
		{
			name:    "satisfied",
			version: Version{Require: ">= " + pkg.Version(), Short: true},
			want:    pkg.SemVer().String(),
		},
		{
			name:    "unsatisfied",
			version: Version{Require: "> " + pkg.Version()},
			wantErr: ErrVersionMismatch,
		},
		{
			name:    "invalid constraint",
			version: Version{Require: "not a version"},
			wantErr: ErrVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, stdout, _ := testContext(t, nil, nil)

			err := tt.version.Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}

				if stdout.Len() != 0 {
					t.Errorf("output written on failure: %q", stdout)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if !strings.HasPrefix(stdout.String(), tt.want) {
				t.Errorf("got %q, want prefix %q", stdout, tt.want)
			}
		})
	}
}
