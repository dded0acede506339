package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"

	"github.com/dyn-lang/dyn/cli/cmd"
	"github.com/dyn-lang/dyn/lang"
	"github.com/dyn-lang/dyn/log"
)

// loadDyn returns a [kong.ConfigurationLoader] for configuration files
// written in Dyn.
//
// Each top-level let binding whose value is a literal sets the flag of the
// same name with hyphens removed, since Dyn identifiers are lowercase letters
// only. Other expressions are ignored.
//
//	// dyn configuration
//	let loglevel = "debug"
//	let logpretty = false
//	let maxdepth = 200
//
// This configuration is equivalent to:
//
//	--log-level=debug --no-log-pretty --max-depth=200
//
// A file that does not parse is reported and otherwise ignored. Command-line
// flags override configuration values.
func loadDyn(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		prog, err := lang.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.String("format", "dyn"),
				slog.Any("error", err),
			)

			return config{}, nil
		}

		return programConfig(prog), nil
	}
}

// programConfig collects the literal top-level let bindings of prog. Later
// bindings of a name replace earlier ones.
func programConfig(prog *lang.Program) config {
	conf := make(config)

	for _, expr := range prog.Exprs {
		let, ok := expr.(*lang.LetBinding)
		if !ok {
			continue
		}

		if v, ok := literalValue(let.Value); ok {
			conf[let.Name] = v
		}
	}

	return conf
}

// literalValue converts a literal node into a value kong can decode.
// Numbers are kept as their digits; kong parses them per flag type.
func literalValue(node lang.Node) (any, bool) {
	switch n := lang.Unparen(node).(type) {
	case *lang.StringLiteral:
		return n.Contents, true

	case *lang.NumberLiteral:
		return n.Digits, true

	case *lang.Identifier:
		switch n.Name {
		case "true":
			return true, true

		case "false":
			return false, true
		}

	case *lang.UnaryExpr:
		if num, ok := lang.Unparen(n.X).(*lang.NumberLiteral); ok && n.Op == lang.Minus {
			return "-" + num.Digits, true
		}

	case *lang.ArrayLiteral:
		list := make([]any, 0, len(n.Elements))

		for _, el := range n.Elements {
			v, ok := literalValue(el)
			if !ok {
				return nil, false
			}

			list = append(list, v)
		}

		return list, true
	}

	return nil, false
}

// loadTOML is a [kong.ConfigurationLoader] for TOML configuration files.
//
// Tables are flattened by joining keys with hyphens, and underscores in keys
// are read as hyphens, so the following both set --log-level:
//
//	log_level = "debug"
//
//	[log]
//	level = "debug"
func loadTOML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	conf := make(config)
	flatten(conf, "", doc)

	return conf, nil
}

// loadJSON is a [kong.ConfigurationLoader] for JSON configuration files.
//
// Keys are resolved the way [loadTOML] resolves them, so hyphenated names and
// nested objects both work:
//
//	{"max-depth": 200, "log": {"level": "debug"}}
//
// Anything else is left to [kong.JSON].
func loadJSON(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	base, err := kong.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	conf := make(config)
	flatten(conf, "", doc)

	return chain{conf, base}, nil
}

// chain resolves a flag with the first resolver that has a value for it.
type chain []kong.Resolver

// Validate implements [kong.Resolver].
func (c chain) Validate(app *kong.Application) error {
	for _, r := range c {
		if err := r.Validate(app); err != nil {
			return err
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (c chain) Resolve(ktx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	for _, r := range c {
		v, err := r.Resolve(ktx, parent, flag)
		if err != nil || v != nil {
			return v, err
		}
	}

	return nil, nil
}

func flatten(conf config, prefix string, table map[string]any) {
	for key, value := range table {
		key = prefix + strings.ReplaceAll(key, "_", "-")

		switch v := value.(type) {
		case map[string]any:
			flatten(conf, key+"-", v)

		case int64, float64:
			conf[key] = fmt.Sprint(v)

		default:
			conf[key] = v
		}
	}
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. A flag is looked up by its name, then
// by the name with hyphens replaced by underscores, then by its Dyn binding
// name.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
		cmd.ConfigName(flag.Name),
	} {
		if value, ok := c[name]; ok {
			return value, nil
		}
	}

	return nil, nil
}
