package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/suggestions"
)

var (
	suggestOffline bool
	suggestMerge   string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <job title>",
	Short: "Suggest skills and an experience paragraph for a job title",
	Long: `Ask the suggestion API for skills and experience text matching a job title.
When the API is unreachable the built-in table is used, then a generic set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestOffline, "offline", false, "Skip the suggestion API")
	suggestCmd.Flags().StringVar(&suggestMerge, "merge", "", "Existing comma-separated skills to merge the suggestions into")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	var remote suggestions.Provider
	if !suggestOffline && appConfig.SuggestionsURL != "" {
		hp := suggestions.NewHTTPProvider(appConfig.SuggestionsURL)
		defer func() { _ = hp.Close() }()
		remote = hp
	}
	svc := suggestions.NewService(remote, cliLogger())
	svc.Timeout = appConfig.Timeout()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	sug, err := svc.Suggest(ctx, title)
	if err != nil {
		p.Error(err.Error())
		return err
	}
	p.PrintSuggestion(title, sug)
	if cmd.Flags().Changed("merge") {
		p.Success("Habilidades: " + suggestions.CombineSkills(suggestMerge, sug.Habilidades))
	}
	return nil
}
