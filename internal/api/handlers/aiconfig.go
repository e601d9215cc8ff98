package handlers

import (
	"net/http"
	"sync"

	"github.com/ForDaCulture/document-processing-system/internal/config"
	"github.com/ForDaCulture/document-processing-system/internal/llm"
)

// AIConfigHandler exposes runtime inspection and override of the LLM
// provider configuration. Keys are write-only: responses carry masked
// previews, never the stored value.
type AIConfigHandler struct {
	mu      sync.Mutex
	llmCfg  config.LLMConfig
	gateway llm.Gateway
}

func NewAIConfigHandler(llmCfg config.LLMConfig, gw llm.Gateway) *AIConfigHandler {
	return &AIConfigHandler{llmCfg: llmCfg, gateway: gw}
}

type aiConfigView struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embeddingModel"`
	OpenAIKey      string `json:"openaiApiKey"`
	AnthropicKey   string `json:"anthropicApiKey"`
	OllamaURL      string `json:"ollamaUrl"`
}

type aiConfigUpdate struct {
	Provider     *string `json:"provider,omitempty" validate:"omitempty,oneof=openai anthropic ollama"`
	Model        *string `json:"model,omitempty"`
	OpenAIKey    *string `json:"openaiApiKey,omitempty"`
	AnthropicKey *string `json:"anthropicApiKey,omitempty"`
	OllamaURL    *string `json:"ollamaUrl,omitempty"`
}

func (h *AIConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	view := h.view()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, view)
}

func (h *AIConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req aiConfigUpdate
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	if req.Provider != nil {
		h.llmCfg.DefaultProvider = *req.Provider
	}
	if req.Model != nil {
		h.llmCfg.DefaultModel = *req.Model
	}
	if req.OpenAIKey != nil {
		h.llmCfg.OpenAIKey = *req.OpenAIKey
	}
	if req.AnthropicKey != nil {
		h.llmCfg.AnthropicKey = *req.AnthropicKey
	}
	if req.OllamaURL != nil {
		h.llmCfg.OllamaURL = *req.OllamaURL
	}
	h.gateway.Configure(h.llmCfg)
	view := h.view()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

func (h *AIConfigHandler) view() aiConfigView {
	return aiConfigView{
		Provider:       h.llmCfg.DefaultProvider,
		Model:          h.llmCfg.DefaultModel,
		EmbeddingModel: h.llmCfg.EmbeddingModel,
		OpenAIKey:      maskKey(h.llmCfg.OpenAIKey),
		AnthropicKey:   maskKey(h.llmCfg.AnthropicKey),
		OllamaURL:      h.llmCfg.OllamaURL,
	}
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
