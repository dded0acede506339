package cmd

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/dyn-lang/dyn/lang"
)

// Tokens prints the token stream of a source, one token per line.
type Tokens struct {
	Format string `default:"text" enum:"text,ndjson,csv" help:"Output format (${enum})." short:"f"`
	EOF    bool   `                                      help:"Include the end-of-input token." name:"eof"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// tokenRecord is the ndjson form of a token. Span offsets are bytes.
type tokenRecord struct {
	Kind string    `json:"kind"`
	Text string    `json:"text"`
	Span tokenSpan `json:"span"`
	Line int       `json:"line"`
	Col  int       `json:"column"`
}

type tokenSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	name, rc, err := Open(t.Source)
	if err != nil {
		return ErrReadSource.Wrap(err).With(slog.String("file", name))
	}
	defer rc.Close()

	src, err := io.ReadAll(rc)
	if err != nil {
		return ErrReadSource.Wrap(err).With(slog.String("file", name))
	}

	w := bufio.NewWriter(Stdout(ctx))

	emit := t.emitter(w)

	for tok, err := range lang.Tokens(string(src)) {
		if err != nil {
			_ = w.Flush()

			var diag *lang.Diagnostic
			if errors.As(err, &diag) {
				fmt.Fprintf(Stderr(ctx), "%s: %s", name, diag.Snippet())
			}

			return ErrTokenize.Wrap(err).With(slog.String("file", name))
		}

		if tok.Kind == lang.EOF && !t.EOF {
			break
		}

		if err := emit(tok); err != nil {
			return ErrFormat.Wrap(err).With(slog.String("format", t.Format))
		}
	}

	return w.Flush()
}

// emitter returns the per-token writer for the selected format.
func (t *Tokens) emitter(w io.Writer) func(lang.Token) error {
	switch t.Format {
	case "ndjson":
		enc := json.NewEncoder(w)

		return func(tok lang.Token) error {
			return enc.Encode(tokenRecord{
				Kind: tok.Kind.String(),
				Text: tok.Text,
				Span: tokenSpan{Start: tok.Pos.Offset, End: tok.Pos.Offset + tok.Len},
				Line: tok.Pos.Line,
				Col:  tok.Pos.Column,
			})
		}

	case "csv":
		cw := csv.NewWriter(w)

		return func(tok lang.Token) error {
			err := cw.Write([]string{
				strconv.Itoa(tok.Pos.Offset),
				strconv.Itoa(tok.Pos.Offset + tok.Len),
				tok.Kind.String(),
				tok.Text,
			})
			cw.Flush()

			if err != nil {
				return err
			}

			return cw.Error()
		}

	default:
		return func(tok lang.Token) error {
			_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", tok.Pos, tok.Kind, tok.Text)

			return err
		}
	}
}
