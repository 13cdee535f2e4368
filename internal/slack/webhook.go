package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/datagrail/karmabot/internal/domain"
	"github.com/datagrail/karmabot/internal/metrics"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// dispatcher runs the karma pipeline for one decoded event.
type dispatcher interface {
	Dispatch(ctx context.Context, ev domain.InboundEvent) error
}

// eventEnvelope is the outer Events API payload. A url_verification handshake
// carries challenge and no event.
type eventEnvelope struct {
	Challenge string        `json:"challenge"`
	Event     *eventPayload `json:"event"`
}

type eventPayload struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	BotID   string `json:"bot_id"`
	Channel string `json:"channel"`
	User    string `json:"user"`
	Text    string `json:"text"`
	Ts      string `json:"ts"`
}

func (p *eventPayload) toDomain() domain.InboundEvent {
	return domain.InboundEvent{
		ChannelID: p.Channel,
		Type:      p.Type,
		Subtype:   p.Subtype,
		AuthorID:  p.User,
		BotID:     p.BotID,
		Text:      p.Text,
		Timestamp: p.Ts,
	}
}

// WebhookHandler receives Events API deliveries: verify the signature, answer
// the url_verification handshake, otherwise hand the decoded event to the
// pipeline. The response is 200 regardless of pipeline outcome so Slack does
// not retry on internal failures.
type WebhookHandler struct {
	verifier   *SignatureVerifier
	dispatcher dispatcher
}

func NewWebhookHandler(verifier *SignatureVerifier, d dispatcher) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, dispatcher: d}
}

// HandleEvent is the Echo handler for POST /slack/events.
func (h *WebhookHandler) HandleEvent(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	timestamp := c.Request().Header.Get("X-Slack-Request-Timestamp")
	signature := c.Request().Header.Get("X-Slack-Signature")
	if !h.verifier.Verify(timestamp, signature, body) {
		metrics.SlackSignatureFailures.Inc()
		return c.NoContent(http.StatusUnauthorized)
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Malformed input degrades to a no-op, never a hard failure.
		slog.Warn("Undecodable event payload", "error", err)
		return c.NoContent(http.StatusOK)
	}

	if envelope.Challenge != "" {
		return c.JSON(http.StatusOK, map[string]string{"challenge": envelope.Challenge})
	}

	if envelope.Event == nil {
		return c.NoContent(http.StatusOK)
	}

	ev := envelope.Event.toDomain()
	log := slog.With("delivery_id", uuid.NewString(), "event_id", ev.EventID())

	if err := h.dispatcher.Dispatch(c.Request().Context(), ev); err != nil {
		// Surface to operators only; Slack still sees success.
		log.Error("Event dispatch failed", "error", err)
	}

	return c.NoContent(http.StatusOK)
}
