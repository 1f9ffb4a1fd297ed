package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devicelab-dev/uiquery/pkg/core"
	"github.com/devicelab-dev/uiquery/pkg/hierarchy"
	"github.com/devicelab-dev/uiquery/pkg/logger"
	"github.com/urfave/cli/v2"
)

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "Resolve a selector and print the first matching element",
	ArgsUsage: "[selector-file]",
	Description: `Resolve a selector against a hierarchy dump. The selector comes
from a YAML file or from inline flags.

Examples:
  uiquery -s dump.xml query login-button.yaml
  uiquery -s dump.xml query --text "Sign in"
  uiquery -s dump.xml -w Settings query --id toolbar_title
  uiquery -s dump.xml query -e USER=alice form.yaml --json`,
	Flags: append(append([]cli.Flag{}, selectorFlags...),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the match as JSON",
		},
	),
	Action: runQuery,
}

func runQuery(c *cli.Context) error {
	setupLogging(c)
	defer logger.Close()

	cfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}

	sel, err := resolveSelector(c, cfg)
	if err != nil {
		return err
	}

	engine, window, err := buildEngine(c, cfg)
	if err != nil {
		return err
	}

	logger.Info("Resolving selector: %s", sel.Describe())

	node, err := engine.Search(context.Background(), sel, window)
	if err != nil {
		if errors.Is(err, core.ErrElementNotFound) {
			if !c.Bool("json") {
				fmt.Printf("  %s✗ No match%s for %s\n", color(colorRed), color(colorReset), sel.Describe())
			}
			return cli.Exit("", 1)
		}
		return err
	}

	if c.Bool("json") {
		return printNodeJSON(node)
	}

	printNode(node)
	return nil
}

// matchJSON is the JSON shape of a query result.
type matchJSON struct {
	Window     string            `json:"window,omitempty"`
	Attributes map[string]string `json:"attributes"`
	Bounds     *core.Bounds      `json:"bounds,omitempty"`
}

func printNodeJSON(n core.Node) error {
	out := matchJSON{
		Window:     n.WindowTitle(),
		Attributes: nodeAttrs(n),
	}
	if el, ok := n.(*hierarchy.Element); ok {
		b := el.Bounds
		out.Bounds = &b
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode match: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
