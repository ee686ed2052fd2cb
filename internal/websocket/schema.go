package websocket

import "github.com/stemsi/testcraft-backend/internal/analytics"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError         Event = "error"
	EventSummary       Event = "summary"
	EventScoresUpdated Event = "scores_updated"
	EventSignedOut     Event = "signed_out"
	EventPong          Event = "pong"
)

// SummaryResponse carries a freshly computed class summary.
type SummaryResponse struct {
	Event   Event                   `json:"event"`
	Summary *analytics.ClassSummary `json:"summary"`
}

// ScoresUpdated is published on a class channel by the ingest worker and
// relayed to monitors of that class.
type ScoresUpdated struct {
	Event     Event    `json:"event"`
	ClassID   string   `json:"class_id"`
	RecordIDs []string `json:"record_ids"`
}

// SignedOutResponse is sent right before the server closes a stream whose
// session ended.
type SignedOutResponse struct {
	Event  Event  `json:"event"`
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
