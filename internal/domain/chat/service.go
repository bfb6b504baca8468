package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medibot/medibot/internal/domain/diagnosis"
	"github.com/medibot/medibot/internal/domain/disease"
	"github.com/medibot/medibot/internal/domain/plan"
	"github.com/medibot/medibot/internal/domain/usage"
	"github.com/medibot/medibot/internal/domain/user"
)

// minSymptomsForMatch is how many distinct symptoms must accumulate before a
// diagnosis is attempted.
const minSymptomsForMatch = 2

// ErrEmptyMessage is returned when a chat message is blank.
var ErrEmptyMessage = errors.New("message cannot be empty")

// DailyLimitError signals that the user has used up today's chat quota.
type DailyLimitError struct {
	MaxChats int
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily chat limit reached (%d chats)", e.MaxChats)
}

// Localizer resolves template strings by key and language. Implementations
// must never fail: missing keys degrade to the key itself.
type Localizer interface {
	Lookup(key, lang string, args map[string]string) string
}

// Metrics records chat activity counters. A nil Metrics disables recording.
type Metrics interface {
	ChatMessageCounter(plan string)
	DiagnosisCounter(outcome string)
}

// TxRunner runs fn atomically, typically inside a database transaction that
// the repositories pick up from the context. A nil TxRunner runs fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Reply is the bot's answer to one chat message.
type Reply struct {
	Message          string             `json:"message"`
	Disease          string             `json:"disease,omitempty"`
	Medicines        []disease.Medicine `json:"medicines,omitempty"`
	BotResponsesLeft int                `json:"bot_responses_left"`
	LimitReached     bool               `json:"limit_reached,omitempty"`
}

// Service orchestrates chat sessions: it accumulates symptoms per session,
// consults the matcher, applies plan gating to the diagnosis payload, and
// keeps quota counters up to date.
type Service struct {
	users    *user.Service
	usage    *usage.Service
	sessions SessionRepository
	messages MessageRepository
	diseases disease.Repository
	loc      Localizer
	metrics  Metrics
	tx       TxRunner
	logger   zerolog.Logger

	// matcher is swapped wholesale on corpus reload; readers always see a
	// fully built instance.
	matcher atomic.Pointer[diagnosis.Matcher]
}

func NewService(
	users *user.Service,
	usageSvc *usage.Service,
	sessions SessionRepository,
	messages MessageRepository,
	diseases disease.Repository,
	loc Localizer,
	metrics Metrics,
	tx TxRunner,
	logger zerolog.Logger,
) *Service {
	s := &Service{
		users:    users,
		usage:    usageSvc,
		sessions: sessions,
		messages: messages,
		diseases: diseases,
		loc:      loc,
		metrics:  metrics,
		tx:       tx,
		logger:   logger,
	}
	s.matcher.Store(diagnosis.NewMatcher(nil))
	return s
}

func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx(ctx, fn)
}

// ReloadMatcher rebuilds the symptom matcher from the disease table and swaps
// it in atomically.
func (s *Service) ReloadMatcher(ctx context.Context) error {
	corpus, err := s.diseases.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load disease corpus: %w", err)
	}
	s.matcher.Store(diagnosis.NewMatcher(corpus))
	s.logger.Info().Int("diseases", len(corpus)).Msg("symptom matcher rebuilt")
	return nil
}

// Matcher returns the current matcher snapshot.
func (s *Service) Matcher() *diagnosis.Matcher {
	return s.matcher.Load()
}

// ProcessMessage handles one user message end to end and returns the bot's
// reply. Quota violations surface as typed errors; everything else degrades
// to a localized bot message.
func (s *Service) ProcessMessage(ctx context.Context, visitorID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	u, err := s.users.GetOrCreate(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	p := s.users.Plan(ctx, u)

	if !s.usage.WithinDailyLimit(ctx, u.ID, p) {
		return nil, &DailyLimitError{MaxChats: s.usage.MaxChats(p)}
	}

	sess, err := s.sessions.LatestByUser(ctx, u.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		sess = &Session{UserID: u.ID, Symptoms: []string{}}
		if err := s.sessions.Create(ctx, sess); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		if err := s.usage.Increment(ctx, u.ID); err != nil {
			s.logger.Error().Err(err).Msg("increment daily usage")
		}
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if p != nil && !p.UnlimitedResponses() && sess.BotResponseCount >= p.MaxBotResponsesPerChat {
		return &Reply{
			Message: s.loc.Lookup("response_limit_reached", u.Language,
				map[string]string{"max_responses": strconv.Itoa(p.MaxBotResponsesPerChat)}),
			LimitReached:     true,
			BotResponsesLeft: 0,
		}, nil
	}

	reply := s.respond(ctx, sess, u, p, message)

	// Both turns and the session counters land together or not at all.
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.messages.Create(ctx, &Message{
			SessionID: sess.ID,
			Type:      TypeUser,
			Content:   message,
		}); err != nil {
			return fmt.Errorf("save user message: %w", err)
		}

		botMsg := &Message{
			SessionID: sess.ID,
			Type:      TypeBot,
			Content:   reply.Message,
			Medicines: reply.Medicines,
		}
		if reply.Disease != "" {
			botMsg.Disease = &reply.Disease
		}
		if err := s.messages.Create(ctx, botMsg); err != nil {
			return fmt.Errorf("save bot message: %w", err)
		}

		sess.BotResponseCount++
		if err := s.sessions.Update(ctx, sess); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.usage.Increment(ctx, u.ID); err != nil {
		s.logger.Error().Err(err).Msg("increment daily usage")
	}
	if s.metrics != nil {
		s.metrics.ChatMessageCounter(planKey(p))
	}

	reply.BotResponsesLeft = s.responsesLeft(p, sess)
	return reply, nil
}

// respond implements the conversation policy: accumulate symptoms, ask for
// more until enough are known, then attempt a diagnosis.
func (s *Service) respond(ctx context.Context, sess *Session, u *user.User, p *plan.Plan, message string) *Reply {
	matcher := s.Matcher()
	detected := matcher.ExtractSymptoms(strings.ToLower(message))

	if len(detected) == 0 {
		if sess.AwaitingSymptoms {
			return &Reply{Message: s.loc.Lookup("no_symptoms_detected", u.Language, nil)}
		}
		sess.AwaitingSymptoms = true
		return &Reply{Message: s.loc.Lookup("welcome_message", u.Language, nil)}
	}

	for _, symptom := range detected {
		if !containsString(sess.Symptoms, symptom) {
			sess.Symptoms = append(sess.Symptoms, symptom)
		}
	}
	sess.AwaitingSymptoms = true
	symptomsText := strings.Join(sess.Symptoms, ", ")

	if len(sess.Symptoms) < minSymptomsForMatch {
		return &Reply{Message: s.loc.Lookup("more_symptoms", u.Language,
			map[string]string{"symptoms": symptomsText})}
	}

	res := matcher.Match(sess.Symptoms)
	if s.metrics != nil {
		outcome := "matched"
		if res == nil {
			outcome = "unmatched"
		}
		s.metrics.DiagnosisCounter(outcome)
	}
	if res == nil {
		return &Reply{Message: s.loc.Lookup("symptoms_noted", u.Language,
			map[string]string{"symptoms": symptomsText})}
	}

	msg := s.loc.Lookup("diagnosis_result", u.Language, map[string]string{
		"symptoms":  symptomsText,
		"disease":   res.Disease.Name,
		"medicines": medicineLines(p, res.Disease.Medicines),
	})
	if p != nil && p.Key == plan.KeyDeluxe {
		advice := s.loc.Lookup("health_advice", u.Language,
			map[string]string{"advice": diagnosis.Advice(res.Disease.Name)})
		msg += "\n\n" + advice
	}

	return &Reply{
		Message:   msg,
		Disease:   res.Disease.Name,
		Medicines: plan.FilterMedicines(p, res.Disease.Medicines),
	}
}

// NewChat starts a fresh session for the user, subject to the daily limit.
func (s *Service) NewChat(ctx context.Context, visitorID string) (*Session, error) {
	u, err := s.users.GetOrCreate(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	p := s.users.Plan(ctx, u)

	if !s.usage.WithinDailyLimit(ctx, u.ID, p) {
		return nil, &DailyLimitError{MaxChats: s.usage.MaxChats(p)}
	}

	sess := &Session{UserID: u.ID, Symptoms: []string{}}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.usage.Increment(ctx, u.ID); err != nil {
		s.logger.Error().Err(err).Msg("increment daily usage")
	}
	return sess, nil
}

// Stats describes the user's quota consumption for today.
type Stats struct {
	CurrentUsage int         `json:"current_usage"`
	MaxChats     int         `json:"max_chats"`
	Remaining    interface{} `json:"remaining"`
}

// UsageStats returns today's chat quota consumption for a visitor.
func (s *Service) UsageStats(ctx context.Context, visitorID string) (*Stats, error) {
	u, err := s.users.GetOrCreate(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	p := s.users.Plan(ctx, u)

	current := s.usage.ChatCount(ctx, u.ID)
	maxChats := s.usage.MaxChats(p)

	stats := &Stats{CurrentUsage: current, MaxChats: maxChats}
	if maxChats == plan.Unlimited {
		stats.Remaining = "unlimited"
	} else {
		stats.Remaining = maxChats - current
	}
	return stats, nil
}

// History returns the latest session's messages, provided the user's plan
// includes chat history.
func (s *Service) History(ctx context.Context, visitorID string, limit, offset int) ([]*Message, int, error) {
	u, err := s.users.GetOrCreate(ctx, visitorID)
	if err != nil {
		return nil, 0, err
	}
	p := s.users.Plan(ctx, u)
	if p == nil || !p.ChatHistory {
		return nil, 0, fmt.Errorf("chat history not available in plan")
	}

	sess, err := s.sessions.LatestByUser(ctx, u.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return []*Message{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load session: %w", err)
	}
	return s.messages.ListBySession(ctx, sess.ID, limit, offset)
}

func (s *Service) responsesLeft(p *plan.Plan, sess *Session) int {
	if p == nil || p.UnlimitedResponses() {
		return -1
	}
	left := p.MaxBotResponsesPerChat - sess.BotResponseCount
	if left < 0 {
		return 0
	}
	return left
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func planKey(p *plan.Plan) string {
	if p == nil {
		return plan.KeyBasic
	}
	return p.Key
}

// medicineLines renders the bullet list that goes into the diagnosis message,
// applying plan gating to pricing and purchase links.
func medicineLines(p *plan.Plan, meds []disease.Medicine) string {
	key := planKey(p)

	var b strings.Builder
	for _, med := range meds {
		b.WriteString("• " + med.Name)
		if (key == plan.KeyPro || key == plan.KeyDeluxe) && med.Price != nil {
			b.WriteString(" - " + *med.Price)
		}
		if key == plan.KeyDeluxe && med.BuyLink != nil {
			b.WriteString(" [Buy Now](" + *med.BuyLink + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

