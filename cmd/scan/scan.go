// Package scan implements a one-shot fetch that prints matching links.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/headlines/cmd/common"
	"github.com/jonesrussell/north-cloud/headlines/internal/models"
	"github.com/jonesrussell/north-cloud/headlines/internal/registry"
)

// ErrSourcesFailed is returned when at least one source could not be scanned.
var ErrSourcesFailed = errors.New("one or more sources failed")

// Scanner is the registry surface the command uses.
type Scanner interface {
	Get(ctx context.Context, name string) ([]models.Link, error)
	GetAll(ctx context.Context) *registry.AllResult
}

// Command returns the "scan [source]" command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [source]",
		Short: "Fetch sources once and print the matching links",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(true)
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			reg, err := common.NewRegistry(deps)
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return Run(cmd.Context(), reg, name, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// Run scans one source, or every source when name is empty, and renders
// the links to out. Per-source failures are written to errOut.
func Run(ctx context.Context, s Scanner, name string, out, errOut io.Writer) error {
	if name != "" {
		links, err := s.Get(ctx, name)
		if err != nil {
			return fmt.Errorf("scan %s: %w", name, err)
		}
		RenderLinks(out, links)
		return nil
	}

	result := s.GetAll(ctx)
	RenderLinks(out, result.Links)
	for _, se := range result.Errors {
		fmt.Fprintf(errOut, "%s: %v\n", se.Source, se.Err)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %w", ErrSourcesFailed, result.Err())
	}
	return nil
}

// RenderLinks writes a Source/Title/URI table.
func RenderLinks(w io.Writer, links []models.Link) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Title", "URI"})
	for _, l := range links {
		t.AppendRow(table.Row{l.Source, l.Title, l.URI})
	}
	t.AppendFooter(table.Row{"", "Total", len(links)})
	t.Render()
}
