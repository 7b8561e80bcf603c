package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventRunAccepted  = "run.accepted"
	EventRunStage     = "run.stage"
	EventRunRetry     = "run.retry"
	EventRunCompleted = "run.completed"
)

// RunAcceptedEvent is broadcast when a generation request enters the pipeline.
type RunAcceptedEvent struct {
	TaskID       string `json:"task_id"`
	LanguageHint string `json:"language_hint,omitempty"`
}

// RunStageEvent is broadcast on every orchestrator state transition.
type RunStageEvent struct {
	TaskID string `json:"task_id"`
	State  string `json:"state"`
}

// RunRetryEvent is broadcast when a generation stage is retried.
type RunRetryEvent struct {
	TaskID  string `json:"task_id"`
	Stage   string `json:"stage"`
	Attempt int    `json:"attempt"`
	Reason  string `json:"reason"`
}

// RunCompletedEvent is broadcast when a run reaches a terminal status.
type RunCompletedEvent struct {
	TaskID    string   `json:"task_id"`
	Status    string   `json:"status"`
	Warnings  []string `json:"warnings,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

// BroadcastEvent marshals a typed event and broadcasts it to all clients.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
