package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/observability"
)

var (
	renderInput    string
	renderPhoto    string
	renderTemplate string
	renderAll      bool
	renderOutDir   string
	renderPreview  bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a CV document to PDF",
	Long: `Render a CV document (canonical or legacy form JSON) to a PDF named
CV_<Name>_<template>_<date>.pdf. An unknown template falls back to the default one.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "", "Path to the CV JSON document (required)")
	renderCmd.Flags().StringVar(&renderPhoto, "photo", "", "Profile picture (JPEG, PNG or WebP) replacing the document's")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Template id (modern, classic, creative)")
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "Render every template")
	renderCmd.Flags().StringVarP(&renderOutDir, "out-dir", "o", "", "Output directory")
	renderCmd.Flags().BoolVar(&renderPreview, "preview", false, "Print where each section was placed")

	if err := renderCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}
	renderCmd.MarkFlagsMutuallyExclusive("template", "all")

	rootCmd.AddCommand(renderCmd)
}

func newExporter() *export.Exporter {
	exp := export.New(cliLogger())
	if appConfig.MaxContentBytes > 0 {
		exp.MaxContentBytes = appConfig.MaxContentBytes
	}
	exp.OnProgress = func(ev export.ProgressEvent) {
		cliLogger().Debug("export progress",
			zap.String("export_id", ev.ExportID),
			zap.String("step", ev.Step),
			zap.String("message", ev.Message))
	}
	return exp
}

func runRender(cmd *cobra.Command, _ []string) error {
	p := observability.NewPrinter(cmd.OutOrStdout())
	data, err := loadCV(p, renderInput, renderPhoto)
	if err != nil {
		return err
	}

	outDir := renderOutDir
	if outDir == "" {
		outDir = appConfig.OutputDir
	}
	tmpl := renderTemplate
	if tmpl == "" {
		tmpl = appConfig.Template
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	exp := newExporter()
	req := export.Request{Data: data, TemplateID: tmpl}

	var results []*export.Result
	if renderAll {
		results, err = exp.ExportAll(ctx, req)
	} else {
		var res *export.Result
		res, err = exp.Export(ctx, req)
		results = []*export.Result{res}
	}
	if err != nil {
		return exportFailure(p, err)
	}

	for _, res := range results {
		path, err := res.SaveTo(outDir)
		if err != nil {
			return err
		}
		p.PrintExportResult(res, path)
		if renderPreview {
			p.PrintLayoutReport(res.Report)
		}
	}
	return nil
}

// exportFailure prints the user-facing message and returns the error for the exit status.
func exportFailure(p *observability.Printer, err error) error {
	ee := export.Classify(err)
	p.Error(ee.UserMessage())
	return err
}
