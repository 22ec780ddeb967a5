package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mBrond/chat-medicamentos/internal/api/handlers"
	"github.com/mBrond/chat-medicamentos/internal/application/services"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

type stubChat struct {
	reply  *services.ChatReply
	err    error
	intent entities.Intent
	text   string
	calls  int
}

func (s *stubChat) Reply(ctx context.Context, text string, intent entities.Intent) (*services.ChatReply, error) {
	s.calls++
	s.text = text
	s.intent = intent
	return s.reply, s.err
}

type stubSuggester struct {
	names []string
	err   error
	limit int
}

func (s *stubSuggester) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	s.limit = limit
	return s.names, s.err
}

type stubLoader struct {
	ds  *entities.Dataset
	err error
}

func (s *stubLoader) Load(ctx context.Context) (*entities.Dataset, error) {
	return s.ds, s.err
}

func postChat(h *handlers.ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Chat(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestChatHandler_Answer(t *testing.T) {
	chat := &stubChat{reply: &services.ChatReply{Answer: "Encontrei", MatchType: entities.MatchTypeExact}}
	h := handlers.NewChatHandler(chat, services.DefaultCodeBounds)

	w := postChat(h, `{"text":"R50","intent":"cid"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.IntentCode, chat.intent)
	body := decode(t, w)
	assert.Equal(t, "Encontrei", body["answer"])
	assert.Equal(t, "exact", body["match_type"])
	assert.Contains(t, body, "latency")
	assert.NotContains(t, body, "erro")
}

func TestChatHandler_ValidationIsAFriendlyReply(t *testing.T) {
	chat := &stubChat{}
	h := handlers.NewChatHandler(chat, services.DefaultCodeBounds)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty text", `{"text":"  ","intent":"medicamento"}`, "Digite o nome"},
		{"unknown intent", `{"text":"dipirona","intent":"preço"}`, "Tipo de consulta"},
		{"code too long", `{"text":"E10.90","intent":"cid"}`, "CID inválido"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postChat(h, tt.body)
			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Contains(t, body["erro"], tt.want)
		})
	}
	assert.Equal(t, 0, chat.calls)
}

func TestChatHandler_MalformedJSON(t *testing.T) {
	h := handlers.NewChatHandler(&stubChat{}, services.DefaultCodeBounds)

	w := postChat(h, `{"text":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decode(t, w)["error"])
}

func TestChatHandler_DatasetFailure(t *testing.T) {
	chat := &stubChat{err: apperrors.NewDataLoadError("failed to read dataset", errors.New("no such file"))}
	h := handlers.NewChatHandler(chat, services.DefaultCodeBounds)

	w := postChat(h, `{"text":"dipirona","intent":"medication"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "medication dataset unavailable", decode(t, w)["error"])
}

func TestChatHandler_InternalErrorIsOpaque(t *testing.T) {
	chat := &stubChat{err: errors.New("boom")}
	h := handlers.NewChatHandler(chat, services.DefaultCodeBounds)

	w := postChat(h, `{"text":"dipirona","intent":"location"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func TestSuggestionHandler(t *testing.T) {
	suggester := &stubSuggester{names: []string{"Insulina NPH", "Insulina Regular"}}
	h := handlers.NewSuggestionHandler(suggester, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/medications/suggest?q=insu", nil)
	w := httptest.NewRecorder()
	h.SuggestMedications(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "insu", body["query"])
	assert.Equal(t, []interface{}{"Insulina NPH", "Insulina Regular"}, body["suggestions"])
	assert.Equal(t, 10, suggester.limit)

	req = httptest.NewRequest(http.MethodGet, "/api/medications/suggest?q=insu&limit=500", nil)
	w = httptest.NewRecorder()
	h.SuggestMedications(w, req)
	assert.Equal(t, 50, suggester.limit)

	req = httptest.NewRequest(http.MethodGet, "/api/medications/suggest?q=insu&limit=abc", nil)
	w = httptest.NewRecorder()
	h.SuggestMedications(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestionHandler_EmptyResultIsArray(t *testing.T) {
	h := handlers.NewSuggestionHandler(&stubSuggester{}, 5)

	req := httptest.NewRequest(http.MethodGet, "/api/medications/suggest", nil)
	w := httptest.NewRecorder()
	h.SuggestMedications(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"","suggestions":[],"count":0}`, w.Body.String())
}

func TestHealthHandler(t *testing.T) {
	ds := entities.NewDataset("data/medicamentos.csv", []entities.MedicationRecord{{Row: 1, MedicationName: "Dipirona"}})
	h := handlers.NewHealthHandler(&stubLoader{ds: ds})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, float64(1), body["records"])
	assert.Equal(t, ds.Version, body["version"])
}

func TestHealthHandler_NotReady(t *testing.T) {
	h := handlers.NewHealthHandler(&stubLoader{err: apperrors.NewDataLoadError("missing file", nil)})

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode(t, w)["status"])
}
