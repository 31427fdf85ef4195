// Package handlers provides the HTTP handlers for the promptgate gateway.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/promptgate/promptgate/errors"
	"github.com/promptgate/promptgate/server/middleware"
	"github.com/promptgate/promptgate/server/processing"
	"github.com/promptgate/promptgate/server/provider"
	"go.uber.org/zap"
)

// ChatRequest is the caller-supplied body of POST /v1/chat. Unknown fields
// are dropped silently, not rejected.
type ChatRequest struct {
	Role   string `json:"role" validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
}

// ChatResponse is the success body. Usage and Raw are always-null
// placeholders kept for response-shape compatibility.
type ChatResponse struct {
	OK         bool        `json:"ok"`
	Model      string      `json:"model"`
	OutputText string      `json:"output_text"`
	Usage      interface{} `json:"usage"`
	Raw        interface{} `json:"raw"`
}

// ChatHandler handles chat completion requests: it validates the body,
// assembles the composite input, invokes the completion backend, and
// relays the text. Once past validation the response is always 200 with
// ok true, even when the invoker produced placeholder error text.
type ChatHandler struct {
	assembler *processing.Assembler
	invoker   *provider.Invoker
	model     string
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewChatHandler creates a chat handler. The model parameter is the preset
// name reported in every response.
func NewChatHandler(assembler *processing.Assembler, invoker *provider.Invoker, model string, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		assembler: assembler,
		invoker:   invoker,
		model:     model,
		validate:  validator.New(),
		logger:    logger,
	}
}

// validationMessages maps struct fields to client-facing diagnostics.
var validationMessages = map[string]string{
	"Role":   "role is required and must be a non-empty string",
	"Prompt": "prompt is required and must be a non-empty string",
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	logger := h.logger.With(
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
	)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gwErr := errors.NewError(errors.BadRequest, "request body must be a JSON object",
			http.StatusBadRequest, requestID, nil, err)
		errors.LogError(logger, gwErr, requestID)
		errors.WriteError(w, gwErr)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errors.WriteError(w, errors.NewBadRequest(requestID, "invalid request", nil))
			return
		}
		msgs := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			if msg, ok := validationMessages[ve.StructField()]; ok {
				msgs = append(msgs, msg)
			} else {
				msgs = append(msgs, ve.Error())
			}
		}
		gwErr := errors.NewBadRequest(requestID, strings.Join(msgs, "; "), nil)
		errors.LogError(logger, gwErr, requestID)
		errors.WriteError(w, gwErr)
		return
	}

	input := h.assembler.Assemble(req.Prompt)
	output := h.invoker.Invoke(r.Context(), req.Role, input)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{
		OK:         true,
		Model:      h.model,
		OutputText: output,
		Usage:      nil,
		Raw:        nil,
	}); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
