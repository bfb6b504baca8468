package plan

import (
	"time"

	"github.com/google/uuid"
)

// Unlimited is the sentinel value for quota fields that have no cap.
const Unlimited = 999

// Plan maps to the subscription_plan table. Key is the stable identifier
// used by user records ("basic", "pro", "deluxe").
type Plan struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	Key                    string    `db:"plan_key" json:"plan_key"`
	Name                   string    `db:"name" json:"name"`
	Price                  string    `db:"price" json:"price"`
	MaxChatsPerDay         int       `db:"max_chats_per_day" json:"max_chats_per_day"`
	MaxBotResponsesPerChat int       `db:"max_bot_responses_per_chat" json:"max_bot_responses_per_chat"`
	MedicineImages         bool      `db:"medicine_images" json:"medicine_images"`
	ChatHistory            bool      `db:"chat_history" json:"chat_history"`
	VoiceChat              bool      `db:"voice_chat" json:"voice_chat"`
	AvailableLanguages     []string  `db:"available_languages" json:"available_languages"`
	Layout                 string    `db:"layout" json:"layout"`
	Features               []string  `db:"features" json:"features"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// UnlimitedChats reports whether the plan has no daily chat cap.
func (p *Plan) UnlimitedChats() bool {
	return p.MaxChatsPerDay == Unlimited
}

// UnlimitedResponses reports whether the plan has no per-chat bot response cap.
func (p *Plan) UnlimitedResponses() bool {
	return p.MaxBotResponsesPerChat == Unlimited
}
