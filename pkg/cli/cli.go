// Package cli provides the command-line interface for uiquery.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/devicelab-dev/uiquery/pkg/config"
	"github.com/devicelab-dev/uiquery/pkg/logger"
	"github.com/devicelab-dev/uiquery/pkg/query"
	"github.com/devicelab-dev/uiquery/pkg/roots"
	"github.com/devicelab-dev/uiquery/pkg/script"
	"github.com/devicelab-dev/uiquery/pkg/selector"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "snapshot",
		Aliases: []string{"s"},
		Usage:   "Hierarchy dump (XML) to query",
		EnvVars: []string{"UIQUERY_SNAPSHOT"},
	},
	&cli.StringFlag{
		Name:    "window",
		Aliases: []string{"w"},
		Usage:   "Window title hint (substring, case-insensitive)",
		EnvVars: []string{"UIQUERY_WINDOW"},
	},
	&cli.StringFlag{
		Name:  "config",
		Usage: "Path to workspace config.yaml",
	},
	&cli.StringSliceFlag{
		Name:    "var",
		Aliases: []string{"e"},
		Usage:   "Variables for ${...} expressions in selector files (KEY=VALUE)",
	},
	&cli.IntFlag{
		Name:  "retry-attempts",
		Usage: "Retries after the first tree acquisition attempt",
	},
	&cli.IntFlag{
		Name:  "retry-interval",
		Usage: "Wait between acquisition attempts in ms",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"UIQUERY_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write logs to a file",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "uiquery",
		Usage:   "Resolve UI selectors against accessibility hierarchy dumps",
		Version: Version,
		Description: `uiquery resolves element selectors against UI accessibility trees
captured as hierarchy dumps.

Examples:
  uiquery -s dump.xml query login.yaml
  uiquery -s dump.xml query --text "Sign in"
  uiquery -s dump.xml count --class android.widget.Button
  uiquery -s dump.xml inspect --compact
  uiquery validate selectors/`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			queryCommand,
			countCommand,
			inspectCommand,
			validateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Helpers to read a flag from the current or parent context. When run as
// a subcommand, global flags live in the parent context.
func flagString(c *cli.Context, name string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if len(c.Lineage()) > 1 && c.Lineage()[1] != nil {
		return c.Lineage()[1].String(name)
	}
	return c.String(name)
}

func flagInt(c *cli.Context, name string) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	if len(c.Lineage()) > 1 && c.Lineage()[1] != nil {
		return c.Lineage()[1].Int(name)
	}
	return c.Int(name)
}

func flagBool(c *cli.Context, name string) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	if len(c.Lineage()) > 1 && c.Lineage()[1] != nil {
		return c.Lineage()[1].Bool(name)
	}
	return c.Bool(name)
}

func flagStringSlice(c *cli.Context, name string) []string {
	if c.IsSet(name) {
		return c.StringSlice(name)
	}
	if len(c.Lineage()) > 1 && c.Lineage()[1] != nil {
		return c.Lineage()[1].StringSlice(name)
	}
	return c.StringSlice(name)
}

// setupLogging initializes the logger from global flags.
func setupLogging(c *cli.Context) {
	if path := flagString(c, "log-file"); path != "" {
		if err := logger.Init(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		}
	}
	logger.SetVerbose(flagBool(c, "verbose"))
}

// loadWorkspaceConfig loads the config named by --config, or falls back
// to config.yaml in the working directory.
func loadWorkspaceConfig(c *cli.Context) (*config.Config, error) {
	if path := flagString(c, "config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadFromDir(".")
}

// buildEngine resolves flags and workspace config into a ready engine
// plus the effective window hint. CLI flags take precedence.
func buildEngine(c *cli.Context, cfg *config.Config) (*query.Engine, string, error) {
	snapshot := flagString(c, "snapshot")
	if snapshot == "" {
		snapshot = cfg.Snapshot
	}
	if snapshot == "" {
		return nil, "", fmt.Errorf("no hierarchy snapshot; use --snapshot or set snapshot in config.yaml")
	}

	window := flagString(c, "window")
	if window == "" {
		window = cfg.Window
	}

	attempts := cfg.RetryAttempts()
	if n := flagInt(c, "retry-attempts"); n > 0 {
		attempts = n
	}
	interval := cfg.RetryInterval()
	if ms := flagInt(c, "retry-interval"); ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}

	supplier := roots.NewSupplier(&roots.FileSource{Path: snapshot},
		roots.WithAttempts(attempts),
		roots.WithInterval(interval),
	)

	return query.New(supplier), window, nil
}

// parseVars parses KEY=VALUE pairs. Entries without '=' are ignored.
func parseVars(pairs []string) map[string]string {
	result := make(map[string]string)
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}

// mergeVars combines workspace config vars with --var flags. Flags win.
func mergeVars(cfg *config.Config, c *cli.Context) map[string]string {
	merged := make(map[string]string)
	for k, v := range cfg.Vars {
		merged[k] = v
	}
	for k, v := range parseVars(flagStringSlice(c, "var")) {
		merged[k] = v
	}
	return merged
}

// loadSelectorFile reads a selector file, expands ${...} expressions
// with the given variables, and parses the result.
func loadSelectorFile(path string, vars map[string]string) (*selector.Selector, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided selector file
	if err != nil {
		return nil, fmt.Errorf("failed to read selector file: %w", err)
	}

	text := string(data)
	if strings.Contains(text, "${") {
		eng := script.New()
		for k, v := range vars {
			eng.SetVariable(k, v)
		}
		expanded, err := eng.Expand(text)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", path, err)
		}
		text = expanded
	}

	sel, err := selector.Parse([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return sel, nil
}

// selectorFlags build an inline selector without a file. Shared by the
// query and count commands.
var selectorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "text",
		Usage: "Match text (substring, case-insensitive)",
	},
	&cli.StringFlag{
		Name:  "text-exact",
		Usage: "Match text exactly",
	},
	&cli.StringFlag{
		Name:  "text-matches",
		Usage: "Match text against a regular expression",
	},
	&cli.StringFlag{
		Name:  "id",
		Usage: "Match resource-id (substring)",
	},
	&cli.StringFlag{
		Name:  "class",
		Usage: "Match class name exactly",
	},
	&cli.StringFlag{
		Name:  "desc",
		Usage: "Match content description (substring)",
	},
	&cli.IntFlag{
		Name:  "index",
		Usage: "Match sibling index",
		Value: -1,
	},
}

// resolveSelector builds the selector from a file argument or from
// inline flags.
func resolveSelector(c *cli.Context, cfg *config.Config) (*selector.Selector, error) {
	if c.NArg() > 0 {
		return loadSelectorFile(c.Args().First(), mergeVars(cfg, c))
	}

	sel := selector.New()
	if v := c.String("text"); v != "" {
		sel.Text(v)
	}
	if v := c.String("text-exact"); v != "" {
		sel.TextExact(v)
	}
	if v := c.String("text-matches"); v != "" {
		sel.TextMatches(v)
	}
	if v := c.String("id"); v != "" {
		sel.ID(v)
	}
	if v := c.String("class"); v != "" {
		sel.Class(v)
	}
	if v := c.String("desc"); v != "" {
		sel.Desc(v)
	}
	if i := c.Int("index"); i >= 0 {
		sel.Index(i)
	}

	if len(sel.Predicates) == 0 {
		return nil, fmt.Errorf("no selector given; pass a selector file or use --text/--id/--class/--desc")
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return sel, nil
}
