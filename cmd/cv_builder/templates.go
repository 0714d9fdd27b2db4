package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/rendering"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	ids := rendering.TemplateIDs()
	styles := make([]*rendering.Style, 0, len(ids))
	for _, id := range ids {
		st, err := rendering.Lookup(id)
		if err != nil {
			return err
		}
		styles = append(styles, st)
	}
	def, _ := export.ResolveTemplate(appConfig.Template)
	observability.NewPrinter(cmd.OutOrStdout()).PrintTemplates(styles, def)
	return nil
}
