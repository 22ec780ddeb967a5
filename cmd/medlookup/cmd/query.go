package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mBrond/chat-medicamentos/internal/app"
	"github.com/mBrond/chat-medicamentos/internal/application/services"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

var queryIntentFlag string

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Answer a question the way the chat does",
	Example: `  medlookup query --intent cid E10
  medlookup query --intent medicamento dipirona
  medlookup query --intent "onde retirar medicamento" insulina`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryIntentFlag, "intent", "i", "medicamento", "cid, medicamento or \"onde retirar medicamento\"")
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	parsed, ok := entities.ParseIntent(queryIntentFlag)
	a, err := openApp(app.Options{SkipDirectory: ok && parsed != entities.IntentLocation})
	if err != nil {
		return err
	}
	defer a.Close()

	var reply *services.ChatReply
	intent, err := services.ValidateQuery(text, queryIntentFlag, a.CodeBounds())
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeValidation {
			return err
		}
		reply = &services.ChatReply{Error: appErr.Message}
	} else {
		reply, err = a.Chat.Reply(cmd.Context(), text, intent)
		if err != nil {
			return err
		}
	}

	if jsonFlag {
		return writeJSON(out, reply)
	}
	_, err = fmt.Fprint(out, formatReply(reply))
	return err
}
