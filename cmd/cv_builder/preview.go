package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/observability"
)

var (
	previewInput    string
	previewTemplate string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the page layout of a CV without saving the PDF",
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "input", "i", "", "Path to the CV JSON document (required)")
	previewCmd.Flags().StringVarP(&previewTemplate, "template", "t", "", "Template id (modern, classic, creative)")

	if err := previewCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	p := observability.NewPrinter(cmd.OutOrStdout())
	data, err := loadCV(p, previewInput, "")
	if err != nil {
		return err
	}

	tmpl := previewTemplate
	if tmpl == "" {
		tmpl = appConfig.Template
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := newExporter().Export(ctx, export.Request{Data: data, TemplateID: tmpl})
	if err != nil {
		return exportFailure(p, err)
	}
	if res.FellBack {
		p.Warn(fmt.Sprintf("Plantilla desconocida, se usó %q", res.TemplateID))
	}
	p.PrintLayoutReport(res.Report)
	return nil
}
