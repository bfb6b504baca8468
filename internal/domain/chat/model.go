package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/medibot/medibot/internal/domain/disease"
)

// Message types.
const (
	TypeUser = "user"
	TypeBot  = "bot"
)

// Session maps to the chat_session table. Symptoms is the running list of
// distinct symptom tokens accumulated across the conversation; it grows
// until the user starts a new chat.
type Session struct {
	ID               uuid.UUID `db:"id" json:"id"`
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	Symptoms         []string  `db:"symptoms" json:"symptoms"`
	AwaitingSymptoms bool      `db:"awaiting_symptoms" json:"awaiting_symptoms"`
	BotResponseCount int       `db:"bot_response_count" json:"bot_response_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Message maps to the chat_message table.
type Message struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	SessionID uuid.UUID          `db:"session_id" json:"session_id"`
	Type      string             `db:"message_type" json:"message_type"`
	Content   string             `db:"content" json:"content"`
	Disease   *string            `db:"disease" json:"disease,omitempty"`
	Medicines []disease.Medicine `db:"medicines" json:"medicines,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}
