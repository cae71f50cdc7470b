package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rubeniskov/traverse-json/internal/config"
	"github.com/rubeniskov/traverse-json/internal/formatter"
	"github.com/rubeniskov/traverse-json/pkg/core"
	"github.com/rubeniskov/traverse-json/pkg/loader"
	"github.com/rubeniskov/traverse-json/pkg/logger"
	"github.com/rubeniskov/traverse-json/pkg/settings"
	"github.com/rubeniskov/traverse-json/pkg/traverse"
)

// errShowHelp is returned when stdin is a terminal and no file was given.
var errShowHelp = errors.New("no input provided")

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps an error returned by Execute to a process exit code: 0 for
// nil, 2 for invalid flag combinations, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// rootFlags holds the values bound to the root command's flags. They only
// override the config file when set on the command line.
type rootFlags struct {
	configFile string
	debug      bool

	output      string
	inputFormat string
	decode      bool
	noColor     bool
	width       int
	treeNoVals  bool

	recursive bool
	nested    bool
	step      int
	maxDepth  int
	test      string
	regex     string
	expr      string
	selectCEL string
	path      string

	globNoBrace    bool
	globNoCase     bool
	globNoGlobStar bool
	globMatchBase  bool

	limit  int
	offset int
	tail   int
}

// NewRootCommand builds the traverse-json command tree.
func NewRootCommand() *cobra.Command {
	f := &rootFlags{}
	run := settings.NewCliParams()

	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Enumerate the paths and values of a JSON, YAML or TOML document",
		Long: `Walks a document depth-first and prints one entry per property: its
slash-separated path and the value stored there. Reads stdin when no file is
given.`,
		Example: `  traverse-json data.json
  traverse-json data.yaml --nested --test '**/name'
  traverse-json data.json --test @children -o paths
  traverse-json data.json -p /items/0 -o yaml
  cat events.ndjson | traverse-json --expr 'key == "id" && value > 10' -o ndjson`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       versionString(),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := logger.InfoLevel
			if f.debug {
				level = logger.DebugLevel
			}
			run.MinLogLevel = level
			run.ConfigFile = f.configFile
			lgr := logger.Get(level)
			lgr = logger.WithValues(lgr, logger.CommandKey, cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, lgr)
			cmd.SetContext(settings.IntoContext(ctx, run))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				run.InputPath = args[0]
			}
			run.NoColor = f.noColor
			err := runTraverse(cmd, f, run)
			if errors.Is(err, errShowHelp) {
				return cmd.Help()
			}
			return err
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/traverse-json/config.yaml)")
	pf.BoolVar(&f.debug, "debug", false, "log traversal details to stderr")

	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", string(formatter.OutputText), "output format: text|json|ndjson|yaml|paths|tree")
	fs.StringVar(&f.inputFormat, "input-format", string(loader.FormatAuto), "input format: auto|json|ndjson|yaml|toml")
	fs.BoolVar(&f.decode, "decode", false, "expand string values that hold serialized JSON/YAML/TOML")
	fs.BoolVar(&f.noColor, "no-color", false, "disable color output")
	fs.IntVar(&f.width, "width", 0, "maximum width of text output (default terminal width)")
	fs.BoolVar(&f.treeNoVals, "tree-no-values", false, "show keys only in tree output")

	fs.BoolVar(&f.recursive, "recursive", true, "descend into nested objects and arrays")
	fs.BoolVar(&f.nested, "nested", false, "also emit objects and arrays, before their children")
	fs.IntVar(&f.step, "step", 1, "advance this many entries after each emitted leaf")
	fs.IntVar(&f.maxDepth, "max-depth", traverse.DefaultMaxDepth, "stop with an error past this depth (negative disables)")
	fs.StringVarP(&f.test, "test", "t", "", "glob matched against each path, or @key to follow one key recursively")
	fs.StringVar(&f.regex, "regex", "", "regular expression matched against each path")
	fs.StringVar(&f.expr, "expr", "", "CEL predicate over path, value, key and depth")
	fs.StringVarP(&f.path, "path", "p", "", "start from the node at this path (/a/0, a[0] or a CEL expression)")
	fs.StringVarP(&f.selectCEL, "expression", "e", "", "CEL expression selecting the root to traverse, with '_' bound to the document")

	fs.BoolVar(&f.globNoBrace, "glob-nobrace", false, "treat { and } literally in --test")
	fs.BoolVar(&f.globNoCase, "glob-nocase", false, "match --test case-insensitively")
	fs.BoolVar(&f.globNoGlobStar, "glob-noglobstar", false, "make ** behave like * in --test")
	fs.BoolVar(&f.globMatchBase, "glob-matchbase", false, "match slash-less --test patterns against the last path segment")

	fs.IntVar(&f.limit, "limit", 0, "emit at most N entries")
	fs.IntVar(&f.offset, "offset", 0, "skip the first N entries")
	fs.IntVar(&f.tail, "tail", 0, "emit only the last N entries (mutually exclusive with --limit; ignores --offset)")

	cmd.AddCommand(newVersionCommand(), newConfigCommand(&f.configFile))
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(fs *pflag.FlagSet, f *rootFlags, cfg *config.File) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("output", func() { cfg.Output.Format = f.output })
	set("input-format", func() { cfg.Input.Format = f.inputFormat })
	set("decode", func() { cfg.Input.Decode = f.decode })
	set("no-color", func() { cfg.Output.NoColor = f.noColor })
	set("width", func() { cfg.Output.Width = f.width })
	set("tree-no-values", func() { cfg.Output.Tree.NoValues = f.treeNoVals })
	set("recursive", func() { cfg.Traverse.Recursive = f.recursive })
	set("nested", func() { cfg.Traverse.Nested = f.nested })
	set("step", func() { cfg.Traverse.Step = f.step })
	set("max-depth", func() { cfg.Traverse.MaxDepth = f.maxDepth })
	set("glob-nobrace", func() { cfg.Traverse.Glob.NoBrace = f.globNoBrace })
	set("glob-nocase", func() { cfg.Traverse.Glob.NoCase = f.globNoCase })
	set("glob-noglobstar", func() { cfg.Traverse.Glob.NoGlobStar = f.globNoGlobStar })
	set("glob-matchbase", func() { cfg.Traverse.Glob.MatchBase = f.globMatchBase })
	set("limit", func() { cfg.Limits.Limit = f.limit })
	set("offset", func() { cfg.Limits.Offset = f.offset })
	set("tail", func() { cfg.Limits.Tail = f.tail })

	// A filter given on the command line replaces the configured one.
	if fs.Changed("test") || fs.Changed("regex") || fs.Changed("expr") {
		cfg.Traverse.Test, cfg.Traverse.Regex, cfg.Traverse.Expr = f.test, f.regex, f.expr
	}
}

func runTraverse(cmd *cobra.Command, f *rootFlags, run *settings.Run) error {
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)

	cfgPath := config.ResolvePath(run.ConfigFile)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd.Flags(), f, cfg)
	if err := cfg.Limits.Validate(); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("record limiting error: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return &exitError{code: 2, err: err}
	}
	lgr.V(1).Info("config resolved", "path", cfgPath)

	engine, err := core.New(core.WithLogger(*lgr))
	if err != nil {
		return err
	}
	root, err := loadInput(cmd.InOrStdin(), run, cfg.Input)
	if err != nil {
		return err
	}
	if f.path != "" {
		if root, err = engine.Select(root, f.path); err != nil {
			return err
		}
	}
	if f.selectCEL != "" {
		if root, err = engine.Evaluate(f.selectCEL, root); err != nil {
			return fmt.Errorf("expression: %w", err)
		}
	}

	opts, err := cfg.Traverse.Options()
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	t, err := engine.Traverse(root, opts)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	out := cmd.OutOrStdout()
	outputFormat, _ := formatter.ParseOutput(cfg.Output.Format)
	fopts := cfg.Output.FormatterOptions(formatter.TerminalWidth(out))
	fopts.NoColor = fopts.NoColor || !formatter.IsTerminal(out)
	formatter.SetTheme(cfg.Theme.FormatterTheme())
	w, err := formatter.NewWriter(outputFormat, out, fopts)
	if err != nil {
		return err
	}
	if _, err := engine.Run(ctx, t, cfg.Limits, w); err != nil {
		return err
	}
	return w.Flush()
}

func loadInput(stdin io.Reader, run *settings.Run, in config.InputConfig) (any, error) {
	format, err := loader.ParseFormat(in.Format)
	if err != nil {
		return nil, err
	}
	var root any
	if run.ReadsStdin() {
		if formatter.IsTerminal(stdin) {
			return nil, errShowHelp
		}
		root, err = loader.LoadReader(stdin, format)
	} else {
		root, err = loader.LoadFile(run.InputPath, format)
	}
	if err != nil {
		return nil, err
	}
	if in.Decode {
		root = loader.RecursiveDecode(root)
	}
	return root, nil
}
