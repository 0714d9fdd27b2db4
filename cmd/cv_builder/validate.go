package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/observability"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a CV document without rendering it",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Path to the CV JSON document (required)")

	if err := validateCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	p := observability.NewPrinter(cmd.OutOrStdout())
	data, err := loadCV(p, validateInput, "")
	if err != nil {
		return err
	}
	p.Success(fmt.Sprintf("Documento válido: %s (%d secciones opcionales activas)",
		data.Personal.FullName, len(data.ActiveSections)))
	return nil
}
