package cmd

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckRun(t *testing.T) {
	good := writeSource(t, "good.dyn", "let x = 1\nx + 2")
	bad := writeSource(t, "bad.dyn", "let x = {\n  1")
	deep := writeSource(t, "deep.dyn", "((((1))))")

	tests := []struct {
		name       string
		check      Check
		wantErr    bool
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "ok",
			check:      Check{Files: []string{good}},
			wantStdout: []string{good + ": ok (2 expressions, 7 tokens)"},
		},
		{
			name:       "quiet",
			check:      Check{Files: []string{good}, Quiet: true},
			wantStdout: nil,
		},
		{
			name:       "unclosed block",
			check:      Check{Files: []string{good, bad}},
			wantErr:    true,
			wantStdout: []string{good + ": ok"},
			wantStderr: []string{bad + ":", "unclosed block"},
		},
		{
			name:       "depth limit",
			check:      Check{Files: []string{deep}, MaxDepth: 2},
			wantErr:    true,
			wantStderr: []string{"maximum nesting depth exceeded"},
		},
		{
			name:       "depth limit disabled",
			check:      Check{Files: []string{deep}, MaxDepth: -1},
			wantStdout: []string{deep + ": ok"},
		},
		{
			name:       "missing file",
			check:      Check{Files: []string{good + ".missing"}},
			wantErr:    true,
			wantStderr: []string{"read source"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, stdout, stderr := testContext(t, nil, nil)

			err := tt.check.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check.Run() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && !errors.Is(err, ErrCheckFailed) {
				t.Errorf("error %v is not ErrCheckFailed", err)
			}

			if len(tt.wantStdout) == 0 && stdout.Len() > 0 {
				t.Errorf("unexpected stdout: %q", stdout)
			}

			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout %q does not contain %q", stdout, want)
				}
			}

			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr %q does not contain %q", stderr, want)
				}
			}
		})
	}
}
