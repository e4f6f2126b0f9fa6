package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/eleven-am/voice-client/internal/shared"
)

// Config for the credential and completion endpoints. The long-lived API key
// stays on this server; realtime clients only ever see minted ephemeral
// secrets.
type Config struct {
	APIBase   string
	APIKey    string
	Model     string
	Voice     string
	ChatModel string
}

type Handler struct {
	cfg  Config
	http *http.Client
	ai   openai.Client
	log  *slog.Logger
}

func NewHandler(cfg Config, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		ai:   openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		log:  log.With("component", "gateway"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/realtime/token", h.HandleMintToken)
	g.POST("/chat", h.HandleChat)
}

type TokenResponse struct {
	SessionID    string `json:"session_id"`
	ClientSecret string `json:"client_secret"`
	ExpiresAt    int64  `json:"expires_at"`
	Model        string `json:"model"`
}

type sessionCreateResponse struct {
	ID           string `json:"id"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// HandleMintToken creates an upstream realtime session and hands back its
// short-lived client secret.
func (h *Handler) HandleMintToken(c echo.Context) error {
	if h.cfg.APIKey == "" {
		return shared.InternalError("missing_api_key", "no upstream API key configured")
	}

	body, err := json.Marshal(map[string]string{
		"model": h.cfg.Model,
		"voice": h.cfg.Voice,
	})
	if err != nil {
		return shared.InternalError("encode_failed", "failed to encode session request")
	}

	url := h.cfg.APIBase + "/realtime/sessions"
	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return shared.InternalError("request_failed", "failed to build session request")
	}
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "realtime=v1")

	resp, err := h.http.Do(req)
	if err != nil {
		h.log.Error("session mint request failed", "error", err)
		return shared.BadGateway("upstream_unreachable", "failed to reach the realtime API")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		h.log.Error("session mint rejected", "status", resp.StatusCode, "body", string(detail))
		return shared.BadGateway("mint_rejected", fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}

	var created sessionCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return shared.BadGateway("decode_failed", "invalid session response from upstream")
	}
	if created.ClientSecret.Value == "" {
		return shared.BadGateway("missing_secret", "upstream session carried no client secret")
	}

	return c.JSON(http.StatusOK, TokenResponse{
		SessionID:    created.ID,
		ClientSecret: created.ClientSecret.Value,
		ExpiresAt:    created.ClientSecret.ExpiresAt,
		Model:        h.cfg.Model,
	})
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type ChatResponse struct {
	Text string `json:"text"`
}

// HandleChat proxies a non-realtime completion so UI surfaces that only need
// text never open a realtime session.
func (h *Handler) HandleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid request body")
	}
	if req.Prompt == "" {
		return shared.BadRequest("missing_prompt", "prompt is required")
	}

	completion, err := h.ai.Chat.Completions.New(c.Request().Context(), openai.ChatCompletionNewParams{
		Model: openai.ChatModel(h.cfg.ChatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	})
	if err != nil {
		h.log.Error("chat completion failed", "error", err)
		return shared.BadGateway("completion_failed", "upstream completion failed")
	}
	if len(completion.Choices) == 0 {
		return shared.BadGateway("empty_completion", "upstream returned no choices")
	}

	return c.JSON(http.StatusOK, ChatResponse{Text: completion.Choices[0].Message.Content})
}
