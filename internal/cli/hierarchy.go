package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/hdlast/internal/exporter"
	"github.com/mvp-joe/hdlast/internal/graph"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

var (
	hierarchyUnitFlag   string
	hierarchyPrettyFlag bool
)

// hierarchyCmd represents the hierarchy command
var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [paths...]",
	Short: "Print the design hierarchy as JSON",
	Long: `Hierarchy resolves component instances against the entities declared in
the given files (the whole project by default) and prints the result: top
units, per-unit children, unresolved instances, instantiation cycles and a
dependency-first unit order.

Entity names are matched case-insensitively. Files that fail to parse are
reported and left out.

Examples:
  # Hierarchy of the whole project
  hdlast hierarchy --pretty

  # Instantiation tree below one unit
  hdlast hierarchy --unit cpu
`,
	RunE: runHierarchy,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
	hierarchyCmd.Flags().StringVarP(&hierarchyUnitFlag, "unit", "u", "", "Print the instantiation tree below this unit")
	hierarchyCmd.Flags().BoolVar(&hierarchyPrettyFlag, "pretty", false, "Indent JSON output")
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	p, err := openProject(rootFlag, cmd.ErrOrStderr(), verboseFlag, quietFlag)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := commandContext(cmd.Context(), p.logger)
	defer cancel()

	return executeHierarchy(ctx, p, args, hierarchyUnitFlag, hierarchyPrettyFlag, cmd.OutOrStdout())
}

func executeHierarchy(ctx context.Context, p *project, paths []string, unit string, pretty bool, stdout io.Writer) error {
	exp := p.newExporter(exportOverrides{}, nil)
	results, err := collect(ctx, p, exp, paths)
	if err != nil {
		return err
	}
	for _, r := range exporter.Failed(results) {
		p.logger.Warn("skipping file", "file", r.RelPath, "err", r.Err)
	}

	h, err := buildHierarchy(results)
	if err != nil {
		return err
	}

	var doc jsonvalue.Value
	if unit != "" {
		if _, ok := h.Unit(unit); !ok {
			return fmt.Errorf("unknown unit %q", unit)
		}
		doc = h.Tree(unit)
	} else {
		doc, err = h.Serialize()
		if err != nil {
			return fmt.Errorf("failed to serialize hierarchy: %w", err)
		}
	}

	indent := ""
	if pretty {
		indent = "  "
	}
	return jsonvalue.Encode(stdout, doc, indent)
}

func buildHierarchy(results []exporter.Result) (*graph.Hierarchy, error) {
	contexts := make([]*hdlobjects.Context, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			contexts = append(contexts, r.Context)
		}
	}
	h, err := graph.Build(contexts)
	if err != nil {
		return nil, fmt.Errorf("failed to build hierarchy: %w", err)
	}
	return h, nil
}
