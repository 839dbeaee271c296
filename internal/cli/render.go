package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/render"
	"github.com/matzehuels/laneview/pkg/scenario"
)

const (
	formatSVG   = "svg"
	formatJSON  = "json"
	formatDOT   = "dot"
	formatGraph = "graph" // DOT laid out by graphviz, as SVG
	formatText  = "text"
	formatPNG   = "png"
	formatPDF   = "pdf"
)

// validFormats lists the output formats in the order they are written.
var validFormats = []string{formatSVG, formatJSON, formatDOT, formatGraph, formatText, formatPNG, formatPDF}

// formatExt maps a format to its file extension.
var formatExt = map[string]string{
	formatSVG:   ".svg",
	formatJSON:  ".json",
	formatDOT:   ".dot",
	formatGraph: ".graph.svg",
	formatText:  ".txt",
	formatPNG:   ".png",
	formatPDF:   ".pdf",
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file (single format) or base path
	formats    []string // output formats
	overrides  scenarioOverrides
	step       int     // render the window after this step instead of the final one
	noLanes    bool    // omit lane rectangles
	noLabels   bool    // omit item labels in SVG
	overscan   bool    // grow the SVG canvas to include items outside the viewport
	detailed   bool    // frames and spans in DOT node labels
	scale      float64 // PNG scale factor
	cellWidth  int
	cellHeight int
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2.0, cellWidth: defaultCellWidth, cellHeight: defaultCellHeight}

	cmd := &cobra.Command{
		Use:   "render [scenario.toml]",
		Short: "Render the window of a scenario to SVG, JSON, DOT, text, PNG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	addOverrideFlags(cmd, &opts.overrides)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, graph, text, png, pdf (comma-separated)")
	cmd.Flags().IntVar(&opts.step, "step", 0, "render the window after this step (1-based) instead of the final window")
	cmd.Flags().BoolVar(&opts.noLanes, "no-lanes", false, "omit lane rectangles")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit item labels (svg)")
	cmd.Flags().BoolVar(&opts.overscan, "overscan", false, "include items laid out beyond the viewport (svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show frames and spans in graph nodes (dot, graph)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "png scale factor")
	cmd.Flags().IntVar(&opts.cellWidth, "cell-width", opts.cellWidth, "layout units per text column")
	cmd.Flags().IntVar(&opts.cellHeight, "cell-height", opts.cellHeight, "layout units per text row")

	return cmd
}

// validateFormats checks that all requested formats are known.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(validFormats, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", f, strings.Join(validFormats, ", "))
		}
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, ext := range formatExt {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// outputPaths maps every requested format to its file. A single format
// written to an explicit output uses that path as is.
func outputPaths(input string, opts *renderOpts) map[string]string {
	paths := make(map[string]string, len(opts.formats))
	if len(opts.formats) == 1 && opts.output != "" {
		paths[opts.formats[0]] = opts.output
		return paths
	}
	base := basePath(opts.output, input)
	for _, f := range opts.formats {
		paths[f] = base + formatExt[f]
	}
	return paths
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)
	if err := validateCells(opts.cellWidth, opts.cellHeight); err != nil {
		return err
	}

	doc, err := renderDocument(ctx, input, opts)
	if err != nil {
		return err
	}
	logger.Infof("Window: %d items in %d lanes", len(doc.Items), len(doc.Lanes))

	paths := outputPaths(input, opts)
	for _, f := range validFormats {
		path, ok := paths[f]
		if !ok {
			continue
		}
		data, err := renderFormat(ctx, doc, f, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		if err := writeOutput(path, data); err != nil {
			return err
		}
		logger.Debugf("Generated %s: %d bytes", f, len(data))
		if path != "-" {
			printFile(path)
		}
	}
	return nil
}

// renderDocument runs the scenario and returns the window to draw.
func renderDocument(ctx context.Context, input string, opts *renderOpts) (render.Document, error) {
	sc, err := loadScenario(ctx, input, &opts.overrides)
	if err != nil {
		return render.Document{}, err
	}
	if opts.step < 0 || opts.step > len(sc.Steps) {
		return render.Document{}, errors.New(errors.ErrCodeInvalidInput, "--step %d outside 1..%d", opts.step, len(sc.Steps))
	}

	runner := scenario.NewRunner(loggerFromContext(ctx))
	runner.Trace = opts.step > 0
	res, err := runner.Run(ctx, sc)
	if err != nil {
		return render.Document{}, err
	}
	if opts.step > 0 {
		return *res.Steps[opts.step-1].Doc, nil
	}
	return res.Final, nil
}

func renderFormat(ctx context.Context, doc render.Document, format string, opts *renderOpts) ([]byte, error) {
	if opts.noLanes {
		doc.Lanes = nil
	}

	switch format {
	case formatJSON:
		return render.RenderJSON(doc, render.WithIndent())
	case formatDOT:
		return []byte(render.ToDOT(doc, render.DOTOptions{Detailed: opts.detailed})), nil
	case formatGraph:
		return withSpinner(ctx, "Laying out lane graph", func() ([]byte, error) {
			return render.RenderDOT(ctx, render.ToDOT(doc, render.DOTOptions{Detailed: opts.detailed}))
		})
	case formatText:
		return []byte(render.RenderText(doc, render.TextOptions{
			CellWidth:  opts.cellWidth,
			CellHeight: opts.cellHeight,
			Legend:     true,
		})), nil
	}

	svg := render.RenderSVG(doc, svgOptions(opts)...)
	switch format {
	case formatSVG:
		return svg, nil
	case formatPNG:
		return withSpinner(ctx, "Converting to PNG", func() ([]byte, error) { return render.ToPNG(ctx, svg, opts.scale) })
	case formatPDF:
		return withSpinner(ctx, "Converting to PDF", func() ([]byte, error) { return render.ToPDF(ctx, svg) })
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
	}
}

func svgOptions(opts *renderOpts) []render.SVGOption {
	var out []render.SVGOption
	if !opts.noLanes {
		out = append(out, render.WithLanes())
	}
	if !opts.noLabels {
		out = append(out, render.WithLabels())
	}
	if opts.overscan {
		out = append(out, render.WithOverscan())
	}
	return out
}

// withSpinner runs a slow export behind a spinner.
func withSpinner(ctx context.Context, msg string, fn func() ([]byte, error)) ([]byte, error) {
	s := newSpinner(ctx, msg)
	s.Start()
	data, err := fn()
	s.Stop()
	if err == nil && s.Cancelled() {
		err = ctx.Err()
	}
	return data, err
}
