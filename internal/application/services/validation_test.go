package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mBrond/chat-medicamentos/internal/application/services"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

func TestValidateQuery(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		intent   string
		expected entities.Intent
		wantErr  string
	}{
		{name: "code", text: "E10", intent: "cid", expected: entities.IntentCode},
		{name: "code with spaces counts stripped length", text: "E 1 0 . 9", intent: "cid", expected: entities.IntentCode},
		{name: "code too short", text: "E1", intent: "cid", wantErr: "CID inválido"},
		{name: "code too long", text: "E10.91", intent: "code", wantErr: "CID inválido"},
		{name: "medication", text: "dipirona", intent: "medicamento", expected: entities.IntentMedication},
		{name: "long medication text is fine", text: "insulina regular humana", intent: "medication", expected: entities.IntentMedication},
		{name: "location", text: "dipirona", intent: "onde retirar medicamento", expected: entities.IntentLocation},
		{name: "empty text", text: "  ", intent: "cid", wantErr: "Digite"},
		{name: "unknown intent", text: "dipirona", intent: "preço", wantErr: "não reconhecido"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			intent, err := services.ValidateQuery(tc.text, tc.intent, services.DefaultCodeBounds)
			if tc.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, intent)
		})
	}
}
