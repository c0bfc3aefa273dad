// Package sources implements the "sources" command group.
package sources

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/headlines/cmd/common"
	"github.com/jonesrussell/north-cloud/headlines/internal/config"
)

// NewSourcesCommand returns the "sources" parent command.
func NewSourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Inspect configured news sources",
	}
	cmd.AddCommand(NewListCommand())
	return cmd
}

// NewListCommand prints the configured sources without fetching them.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sources and their effective keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps(true)
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			RenderSources(cmd.OutOrStdout(), deps.Config.Sources, deps.Config.Keywords)
			return nil
		},
	}
}

// RenderSources writes one table row per source.
func RenderSources(w io.Writer, sources []config.SourceConfig, keywords []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Address", "Base", "Keywords"})

	for _, src := range sources {
		t.AppendRow(table.Row{
			src.Name,
			src.Address,
			src.Base,
			strings.Join(src.EffectiveKeywords(keywords), ", "),
		})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(sources)})
	t.Render()
}
