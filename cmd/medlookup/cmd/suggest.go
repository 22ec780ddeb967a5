package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mBrond/chat-medicamentos/internal/app"
)

var suggestLimitFlag int

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial name>",
	Short: "List medication names for autocomplete",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimitFlag, "limit", "n", 10, "maximum number of names")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	a, err := openApp(app.Options{SkipDirectory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	names, err := a.Suggestions.Suggest(cmd.Context(), strings.Join(args, " "), suggestLimitFlag)
	if err != nil {
		return err
	}

	if jsonFlag {
		return writeJSON(cmd.OutOrStdout(), names)
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
