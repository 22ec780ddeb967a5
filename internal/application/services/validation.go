package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
	"github.com/mBrond/chat-medicamentos/pkg/utils"
)

// CodeBounds is the accepted length of a diagnosis code query, whitespace excluded
type CodeBounds struct {
	Min int
	Max int
}

// DefaultCodeBounds accepts codes such as "E10" up to "E10.9"
var DefaultCodeBounds = CodeBounds{Min: 3, Max: 5}

// ValidateQuery is the gate in front of the resolvers. It returns the parsed
// intent, or a VALIDATION AppError whose message can be shown to the user.
func ValidateQuery(text, intent string, bounds CodeBounds) (entities.Intent, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("Digite o nome de um medicamento ou um CID.")
	}

	parsed, ok := entities.ParseIntent(intent)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("Tipo de consulta não reconhecido: %q", intent))
	}

	if parsed == entities.IntentCode {
		n := utf8.RuneCountInString(utils.StripWhitespace(text))
		if n < bounds.Min || n > bounds.Max {
			return "", apperrors.NewValidationError(
				fmt.Sprintf("CID inválido: informe entre %d e %d caracteres.", bounds.Min, bounds.Max))
		}
	}

	return parsed, nil
}
