package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	apperrors "github.com/lughati/lughati/internal/errors"
	"github.com/lughati/lughati/internal/gate"
	"github.com/lughati/lughati/internal/metrics"
	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/textgen/driver"
	"github.com/lughati/lughati/internal/textgen/prompt"
)

// APIKeyHeader carries the caller's own provider credential. Its value is
// forwarded to the provider and never logged or persisted.
const APIKeyHeader = "X-OPENAI-KEY"

// maxRequestBody bounds the JSON body; generous relative to the text limit.
const maxRequestBody = 64 * 1024

// TextGenerator is the slice of the generation service the handler needs.
type TextGenerator interface {
	Generate(ctx context.Context, mode, text, apiKey string) (string, error)
	HasServerCredential() bool
}

// UsageEvent is one admission outcome recorded for observability. It never
// contains the input text or any credential.
type UsageEvent struct {
	ClientID   string
	Mode       string
	TextLength int
	Allowed    bool
	Reason     string
	BYOKey     bool
	DurationMs int64
}

// UsageRecorder persists usage events. Recording is best-effort: failures are
// logged and never surface to the caller.
type UsageRecorder interface {
	Record(ctx context.Context, ev UsageEvent) error
}

// GenerateHandler serves POST /api/generate: admission check, then a single
// provider round trip.
type GenerateHandler struct {
	gate              *gate.Gate
	service           TextGenerator
	usage             UsageRecorder
	trustForwardedFor bool
}

// NewGenerateHandler wires the generation endpoint. usage may be nil.
func NewGenerateHandler(g *gate.Gate, svc TextGenerator, usage UsageRecorder, trustForwardedFor bool) *GenerateHandler {
	return &GenerateHandler{
		gate:              g,
		service:           svc,
		usage:             usage,
		trustForwardedFor: trustForwardedFor,
	}
}

// GenerateRequest is the POST /api/generate body.
type GenerateRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// GenerateResponse carries the rewritten text.
type GenerateResponse struct {
	Result string `json:"result"`
}

func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req GenerateRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			// A body this large can only mean oversized text, so it gets the
			// same stable reason as text that merely exceeds the limit.
			respondWithError(w, r, apperrors.NewTextTooLongError(
				fmt.Sprintf("Text is too long (maximum %d characters)", h.gate.Limits().MaxTextLength)))
			return
		}
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be valid JSON with text and mode fields"))
		return
	}

	clientID := h.clientID(r)
	callerKey := strings.TrimSpace(r.Header.Get(APIKeyHeader))
	hasOwnKey := callerKey != ""
	textLength := utf8.RuneCountInString(req.Text)

	decision := h.gate.Check(clientID, hasOwnKey, textLength)
	metrics.RecordGateDecision(decision.Allowed, string(decision.Reason), hasOwnKey)

	if !decision.Allowed {
		h.recordUsage(r.Context(), UsageEvent{
			ClientID:   clientID,
			Mode:       req.Mode,
			TextLength: textLength,
			Allowed:    false,
			Reason:     string(decision.Reason),
			BYOKey:     hasOwnKey,
		})
		h.respondDenied(w, r, decision)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("Text must not be empty"))
		return
	}
	if strings.TrimSpace(req.Mode) == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("Mode must not be empty"))
		return
	}

	result, err := h.service.Generate(r.Context(), req.Mode, req.Text, callerKey)
	duration := time.Since(start)
	metrics.RecordGeneration(req.Mode, err == nil, duration)

	h.recordUsage(r.Context(), UsageEvent{
		ClientID:   clientID,
		Mode:       req.Mode,
		TextLength: textLength,
		Allowed:    true,
		BYOKey:     hasOwnKey,
		DurationMs: duration.Milliseconds(),
	})

	if err != nil {
		h.respondGenerateError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(GenerateResponse{Result: result})
}

// clientID resolves the rate-limit identity of the caller. When the server
// sits behind a trusted proxy the first X-Forwarded-For entry wins; otherwise
// the socket address is used.
func (h *GenerateHandler) clientID(r *http.Request) string {
	if h.trustForwardedFor {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
			if first != "" {
				return first
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func (h *GenerateHandler) respondDenied(w http.ResponseWriter, r *http.Request, d gate.Decision) {
	if d.RetryAfter > 0 {
		seconds := int64(math.Ceil(d.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}

	limits := h.gate.Limits()
	switch d.Reason {
	case gate.ReasonTooLong:
		respondWithError(w, r, apperrors.NewTextTooLongError(
			fmt.Sprintf("Text is too long (maximum %d characters)", limits.MaxTextLength)))
	case gate.ReasonTooFast:
		respondWithError(w, r, apperrors.NewTooFastError(
			"You are sending requests too quickly. Please wait a moment and try again"))
	case gate.ReasonRateWindowExceeded:
		respondWithError(w, r, apperrors.NewRateWindowExceededError(
			"Too many requests. Please try again later"))
	case gate.ReasonNoCredentialAvailable:
		respondWithError(w, r, apperrors.NewNoCredentialAvailableError(
			"No API key is configured on the server. Provide your own key in the "+APIKeyHeader+" header"))
	case gate.ReasonDailyCapExceeded:
		respondWithError(w, r, apperrors.NewDailyCapExceededError(
			fmt.Sprintf("Daily free limit of %d requests reached. Provide your own API key to continue", limits.DailyFreeLimit)))
	default:
		respondWithError(w, r, apperrors.NewInternalError("Request was not admitted"))
	}
}

func (h *GenerateHandler) respondGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	var unknownMode *prompt.UnknownModeError
	if errors.As(err, &unknownMode) {
		respondWithError(w, r, apperrors.NewInvalidInputError(
			fmt.Sprintf("Unknown mode %q. Available modes: %s", unknownMode.Slug, strings.Join(unknownMode.Available, ", "))))
		return
	}

	var providerErr *driver.ProviderError
	if errors.As(err, &providerErr) {
		respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err,
			"The language service is temporarily unavailable. Please try again"))
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err,
			"The language service timed out. Please try again"))
		return
	}

	respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Text generation failed"))
}

func (h *GenerateHandler) recordUsage(ctx context.Context, ev UsageEvent) {
	if h.usage == nil {
		return
	}
	if err := h.usage.Record(ctx, ev); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to record usage event",
			zap.String("client_id", ev.ClientID),
			zap.Error(err))
	}
}
