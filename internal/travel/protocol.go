// Package travel defines the network protocol for the road-travel and
// game-time service: message envelope, payload types, and the
// typed errors a client can receive.
package travel

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the kind of payload a Message carries.
type MessageType string

const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"

	TypeShortestPathRequest MessageType = "shortest_path_request"
	TypeShortestPathResult  MessageType = "shortest_path_result"

	TypeSetTimeSpeed   MessageType = "set_time_speed"
	TypeTimeSpeedSet   MessageType = "time_speed_set"
	TypeTimeTick       MessageType = "time_tick"
	TypeCurrentDate    MessageType = "current_date"
	TypeRequestDate    MessageType = "request_date"
)

// Message is the envelope for every message exchanged over the
// travel/time websocket connection.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage marshals payload and wraps it in a Message envelope.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// ParsePayload unmarshals the message's payload into v.
func (m *Message) ParsePayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode classifies an error payload.
type ErrorCode string

const (
	ErrCodeInvalidSettlement ErrorCode = "invalid_settlement"
	ErrCodeUnreachable       ErrorCode = "unreachable"
	ErrCodeInvalidSpeed      ErrorCode = "invalid_speed"
	ErrCodeInternalError     ErrorCode = "internal_error"
)

// ErrorPayload is the payload for TypeError messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// WelcomePayload greets a newly connected client.
type WelcomePayload struct {
	ServerVersion string `json:"serverVersion"`
	Seed          uint32 `json:"seed"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
}

// ShortestPathRequestPayload asks for a route between two settlements.
type ShortestPathRequestPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ShortestPathResultPayload carries a resolved route. An unreachable
// destination is reported as a TypeError message with
// ErrCodeUnreachable instead.
type ShortestPathResultPayload struct {
	Nodes    []int        `json:"nodes"`
	Polyline [][2]float64 `json:"polyline"`
	Distance float64      `json:"distance"`
}

// SetTimeSpeedPayload requests a change to the world clock's speed.
type SetTimeSpeedPayload struct {
	Speed int `json:"speed"`
}

// TimeTickPayload carries the monotonic timestamp driving the clock.
type TimeTickPayload struct {
	NowMs int64 `json:"nowMs"`
}

// CurrentDatePayload reports the derived in-world calendar date.
type CurrentDatePayload struct {
	Year       int `json:"year"`
	Month      int `json:"month"`
	Day        int `json:"day"`
	Weekday    int `json:"weekday"`
	SpecialDay int `json:"specialDay"`
	TotalDays  int `json:"totalDays"`
}
