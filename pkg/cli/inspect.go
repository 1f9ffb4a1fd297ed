package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/devicelab-dev/uiquery/pkg/hierarchy"
	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Print the element hierarchy of a dump",
	Description: `Print the windows and element tree of a hierarchy dump. With
--compact, elements carrying no text, resource-id, or content
description are skipped.

Examples:
  uiquery -s dump.xml inspect
  uiquery -s dump.xml -w Settings inspect --compact`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "compact",
			Usage: "Hide elements without text, id, or description",
		},
	},
	Action: runInspect,
}

func runInspect(c *cli.Context) error {
	cfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}

	path := flagString(c, "snapshot")
	if path == "" {
		path = cfg.Snapshot
	}
	if path == "" {
		return fmt.Errorf("no hierarchy snapshot; use --snapshot or set snapshot in config.yaml")
	}

	data, err := os.ReadFile(path) //#nosec G304 -- user-provided dump file
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap, err := hierarchy.ParseString(string(data))
	if err != nil {
		return err
	}

	hint := flagString(c, "window")
	if hint == "" {
		hint = cfg.Window
	}
	compact := c.Bool("compact")

	shown := 0
	for _, w := range snap.Windows {
		if hint != "" && !strings.Contains(strings.ToLower(w.Title), strings.ToLower(hint)) {
			continue
		}
		shown++

		marker := ""
		if w.Active {
			marker = fmt.Sprintf(" %s(active)%s", color(colorGreen), color(colorReset))
		}
		title := w.Title
		if title == "" {
			title = "<untitled>"
		}
		fmt.Printf("%s%s%s%s\n", color(colorBold), title, color(colorReset), marker)

		hierarchy.Walk(w.Root, func(e *hierarchy.Element, depth int) {
			if compact && e.Text == "" && e.ResourceID == "" && e.ContentDesc == "" {
				return
			}
			fmt.Printf("%s%s\n", strings.Repeat("  ", depth+1), e.String())
		})
	}

	if shown == 0 {
		return fmt.Errorf("no window matching %q", hint)
	}
	return nil
}
