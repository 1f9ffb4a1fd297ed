package cli

import (
	"context"
	"fmt"

	"github.com/devicelab-dev/uiquery/pkg/logger"
	"github.com/urfave/cli/v2"
)

var countCommand = &cli.Command{
	Name:      "count",
	Usage:     "Count elements matching a selector",
	ArgsUsage: "[selector-file]",
	Description: `Count how many elements in the active window match a selector.
Counting treats the selector as a repeating pattern, so a plain
selector counts every occurrence instead of stopping at the first.

Examples:
  uiquery -s dump.xml count --class android.widget.Button
  uiquery -s dump.xml count list-row.yaml`,
	Flags:  selectorFlags,
	Action: runCount,
}

func runCount(c *cli.Context) error {
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

	n, err := engine.Count(context.Background(), sel, window)
	if err != nil {
		return err
	}

	fmt.Printf("%d\n", n)
	return nil
}
