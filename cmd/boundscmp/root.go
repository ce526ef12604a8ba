package main

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/canon"
	"github.com/tinyrange/canonbounds/internal/config"
	"github.com/tinyrange/canonbounds/internal/fixture"
	"github.com/tinyrange/canonbounds/internal/logging"
	"github.com/tinyrange/canonbounds/internal/parser"
	"github.com/tinyrange/canonbounds/internal/types"
)

// options holds the persistent flags and the state PersistentPreRunE builds
// from them.
type options struct {
	configPath  string
	trace       bool
	logFormat   string
	logLevel    string
	fixturePath string
	function    string

	cfg  *config.Config
	log  logr.Logger
	unit *fixture.Unit
	env  parser.Env
	cmp  *canon.Lexicographic
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "boundscmp",
		Short: "Canonical ordering of bounds expressions",
		Long: `boundscmp parses bounds expressions against a YAML translation unit
fixture and orders, deduplicates or fingerprints them using the canonical
comparator.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (default: ./boundscmp.{yaml,toml,json})")
	pf.BoolVar(&o.trace, "trace", false, "log every deciding comparison")
	pf.StringVar(&o.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&o.fixturePath, "fixture", "f", "", "translation unit fixture (YAML)")
	pf.StringVar(&o.function, "in", "", "resolve names inside this function")

	cmd.AddCommand(newCompareCmd(o), newSortCmd(o), newHashCmd(o))
	return cmd
}

// setup applies precedence flags > config file > defaults, then builds the
// logger, fixture and comparator.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("trace") {
		cfg.Trace = o.trace
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	} else if cfg.Trace && cfg.Logging.Level == "info" {
		// Trace records are V(1) and would be filtered at info.
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	o.log, err = logging.New(cmd.ErrOrStderr(), cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return err
	}

	if o.fixturePath != "" {
		o.unit, err = fixture.Load(o.fixturePath)
	} else {
		o.unit, err = fixture.Build(&fixture.File{})
	}
	if err != nil {
		return err
	}
	o.env = o.unit.Env()
	if o.function != "" {
		if o.env, err = o.unit.In(o.function); err != nil {
			return err
		}
	}

	resolver, err := types.NewCachedResolver(types.Canonicalizer{}, cfg.Cache.Types)
	if err != nil {
		return fmt.Errorf("type cache: %w", err)
	}
	var opts []canon.Option
	if cfg.Trace {
		opts = append(opts, canon.WithTrace(o.log))
	}
	o.cmp = canon.New(canon.NewContext(resolver), o.unit.Relation(), opts...)
	o.log.V(1).Info("comparator ready", "unit", o.unit.Name, "typeCache", cfg.Cache.Types)
	return nil
}

func (o *options) parseAll(srcs []string) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(srcs))
	for i, src := range srcs {
		e, err := parser.ParseExpr(src, o.env)
		if err != nil {
			return nil, fmt.Errorf("expression %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	return out, nil
}
