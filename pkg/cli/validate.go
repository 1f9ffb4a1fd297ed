package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Validate selector files without resolving them",
	ArgsUsage: "<selector-file-or-folder>...",
	Description: `Parse and validate one or more selector files. Folders are
scanned for .yaml and .yml files.

Examples:
  uiquery validate login-button.yaml
  uiquery validate selectors/`,
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one selector file or folder is required")
	}

	cfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	vars := mergeVars(cfg, c)

	files, err := collectSelectorFiles(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no selector files found")
	}

	failed := 0
	for _, path := range files {
		sel, err := loadSelectorFile(path, vars)
		if err != nil {
			failed++
			fmt.Printf("  %s✗%s %s\n", color(colorRed), color(colorReset), path)
			fmt.Printf("      %s╰─%s %v\n", color(colorGray), color(colorReset), err)
			continue
		}
		fmt.Printf("  %s✓%s %s %s%s%s\n", color(colorGreen), color(colorReset), path,
			color(colorGray), sel.Describe(), color(colorReset))
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d selector file(s) invalid", failed, len(files)), 1)
	}
	return nil
}

// collectSelectorFiles expands folder arguments into the .yaml/.yml
// files they contain. File arguments pass through untouched.
func collectSelectorFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".yaml" || ext == ".yml" {
				files = append(files, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return files, nil
}
