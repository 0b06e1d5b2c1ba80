// Package conversation implements the webhook reply pipeline: one inbound
// WhatsApp message in, one composed text reply out. Each invocation is
// stateless; context is rebuilt from stored history and the domain tables on
// every call.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/ethiomaids/platform/internal/bookings"
	"github.com/ethiomaids/platform/internal/interviews"
	"github.com/ethiomaids/platform/internal/maids"
	"github.com/ethiomaids/platform/internal/messaging"
	"github.com/ethiomaids/platform/internal/observability/metrics"
	"github.com/ethiomaids/platform/internal/platform"
	"github.com/ethiomaids/platform/pkg/logging"
)

var tracer = otel.Tracer("ethiomaids.internal.conversation")

// Fixed replies. The exact strings are part of the webhook contract:
// operational tooling matches on them, so they must not drift.
const (
	ReplyPong        = "Pong! Webhook is working. Database has 5 test maids ready."
	ReplyBadInput    = "Sorry, I couldn't process your message. Please try again."
	ReplyConfigError = "System configuration error. Please contact support."
	ReplyTechnical   = "I apologize, but I'm experiencing technical difficulties. Please try again in a moment or contact our support team."
)

// errModelTimeout marks the race lost against the model call deadline.
var errModelTimeout = errors.New("conversation: model call timed out")

// FallbackReply is returned when the model call fails or times out.
func FallbackReply(platformName, supportPhone string) string {
	return fmt.Sprintf("Hello! I'm Lucy from %s. I'm experiencing high load right now. Please try again in a moment, or contact us directly at %s.", platformName, supportPhone)
}

// The interfaces below mirror the concrete repositories so tests can swap in
// fakes without a database.

// MessageStore persists and reads conversation turns.
type MessageStore interface {
	Insert(ctx context.Context, rec messaging.MessageRecord) (uuid.UUID, error)
	RecentHistory(ctx context.Context, phoneNumber string, limit int) ([]messaging.MessageRecord, error)
}

// SettingsSource loads the platform settings row.
type SettingsSource interface {
	Get(ctx context.Context) (platform.Settings, error)
}

// MaidDirectory searches and resolves worker profiles.
type MaidDirectory interface {
	SearchAvailable(ctx context.Context, filter maids.Filter) ([]maids.Profile, error)
	FindByID(ctx context.Context, id string) (*maids.Contact, error)
	FindAvailableByName(ctx context.Context, name string) (*maids.Contact, error)
}

// BookingRepository mutates and lists bookings.
type BookingRepository interface {
	Create(ctx context.Context, req bookings.CreateRequest) (*bookings.Booking, error)
	ListByPhone(ctx context.Context, phoneNumber, status string) ([]bookings.Booking, error)
	Cancel(ctx context.Context, id, phoneNumber, reason string) error
	Reschedule(ctx context.Context, id, phoneNumber string, newDate time.Time) error
}

// InterviewRepository mutates and lists video interviews.
type InterviewRepository interface {
	Create(ctx context.Context, req interviews.ScheduleRequest) (*interviews.Interview, error)
	Cancel(ctx context.Context, id, sponsorPhone, reason string) error
	Upcoming(ctx context.Context, sponsorPhone string, daysAhead int) ([]interviews.Interview, error)
}

// Deps carries the collaborators a Service needs. Logger, Metrics and LLM may
// not be nil; the rest may be nil only in tests that never reach them.
type Deps struct {
	Logger     *logging.Logger
	Metrics    *metrics.ConversationMetrics
	LLM        LLMClient
	Messages   MessageStore
	Settings   SettingsSource
	Maids      MaidDirectory
	Bookings   BookingRepository
	Interviews InterviewRepository
}

// Service handles one inbound message end-to-end.
type Service struct {
	logger     *logging.Logger
	metrics    *metrics.ConversationMetrics
	llm        LLMClient
	messages   MessageStore
	settings   SettingsSource
	maids      MaidDirectory
	bookings   BookingRepository
	interviews InterviewRepository

	model        string
	temperature  float64
	maxTokens    int
	llmTimeout   time.Duration
	historyLimit int

	// Identity fallbacks for when the settings row cannot be loaded.
	platformName string
	supportPhone string

	now func() time.Time
}

type Option func(*Service)

// WithModel sets the model id used when platform settings carry none.
func WithModel(model string) Option {
	return func(s *Service) { s.model = model }
}

// WithTemperature sets the sampling temperature fallback.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithMaxTokens caps the model completion length.
func WithMaxTokens(n int) Option {
	return func(s *Service) { s.maxTokens = n }
}

// WithLLMTimeout overrides the model-call deadline. Tests shrink it to
// milliseconds.
func WithLLMTimeout(d time.Duration) Option {
	return func(s *Service) { s.llmTimeout = d }
}

// WithHistoryLimit bounds how many stored turns are replayed to the model.
func WithHistoryLimit(n int) Option {
	return func(s *Service) { s.historyLimit = n }
}

// WithIdentity sets the platform name and support phone used in fallback
// replies when settings cannot be loaded.
func WithIdentity(platformName, supportPhone string) Option {
	return func(s *Service) {
		s.platformName = platformName
		s.supportPhone = supportPhone
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(deps Deps, opts ...Option) *Service {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	s := &Service{
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		llm:          deps.LLM,
		messages:     deps.Messages,
		settings:     deps.Settings,
		maids:        deps.Maids,
		bookings:     deps.Bookings,
		interviews:   deps.Interviews,
		model:        "anthropic.claude-3-5-sonnet-20241022-v2:0",
		temperature:  0.7,
		maxTokens:    1024,
		llmTimeout:   25 * time.Second,
		historyLimit: 20,
		platformName: "Ethiopian Maids",
		supportPhone: "+971501234567",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply handles one inbound message and always produces a user-facing text.
// Every failure branch degrades to a fixed reply; nothing escapes as an
// error, and a panic inside the pipeline becomes the technical-difficulties
// text.
func (s *Service) Reply(ctx context.Context, phoneNumber, body string) (reply string) {
	ctx, span := tracer.Start(ctx, "conversation.reply")
	defer span.End()

	start := s.now()
	outcome := "reply"
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic handling message", "panic", r, "phone", phoneNumber)
			outcome = "panic"
			reply = ReplyTechnical
		}
		s.metrics.ObserveWebhook(outcome, s.now().Sub(start).Seconds())
	}()

	if phoneNumber == "" || strings.TrimSpace(body) == "" {
		outcome = "bad_input"
		return ReplyBadInput
	}

	// Operational short-circuits run before any model or write so they stay
	// cheap and deterministic.
	lowered := strings.ToLower(body)
	if strings.Contains(lowered, "ping") {
		outcome = "pong"
		return ReplyPong
	}
	if strings.Contains(lowered, "test") {
		outcome = "test"
		return s.testDiagnostic(ctx)
	}

	// Best effort: a failed audit write must not block the reply.
	if _, err := s.messages.Insert(ctx, messaging.MessageRecord{
		PhoneNumber: phoneNumber,
		Body:        body,
		Sender:      messaging.SenderUser,
	}); err != nil {
		s.logger.Error("store inbound message", "error", err, "phone", phoneNumber)
	}

	settings := s.loadSettings(ctx)
	history := s.loadHistory(ctx, phoneNumber)

	msgs := make([]ChatMessage, 0, len(history)+1)
	for _, rec := range history {
		role := ChatRoleAssistant
		if rec.Sender == messaging.SenderUser {
			role = ChatRoleUser
		}
		msgs = append(msgs, ChatMessage{Role: role, Content: rec.Body})
	}
	msgs = append(msgs, ChatMessage{Role: ChatRoleUser, Content: body})

	model := settings.AIModel
	if model == "" {
		model = s.model
	}
	temperature := settings.AITemperature
	if temperature == 0 {
		temperature = s.temperature
	}

	modelStart := s.now()
	resp, err := s.callModel(ctx, LLMRequest{
		Model:       model,
		System:      []string{SystemPrompt(settings)},
		Messages:    msgs,
		Tools:       ToolSpecs(),
		MaxTokens:   int32(s.maxTokens),
		Temperature: float32(temperature),
	})
	s.metrics.ObserveModel(s.now().Sub(modelStart).Seconds(), int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))
	if err != nil {
		s.logger.Error("model call failed", "error", err, "model", model, "phone", phoneNumber)
		outcome = "fallback"
		return FallbackReply(settings.PlatformName, settings.SupportPhone)
	}

	var text strings.Builder
	var executed []executedTool
	for _, block := range resp.Blocks {
		switch {
		case block.ToolUse != nil:
			use := *block.ToolUse
			result := s.executeTool(ctx, phoneNumber, use)
			executed = append(executed, executedTool{ToolUseID: use.ID, Name: use.Name, Result: result})
		case block.Text != "":
			text.WriteString(block.Text)
		}
	}

	reply = composeReply(text.String(), executed)

	snapshot, err := json.Marshal(struct {
		Response    LLMResponse    `json:"response"`
		ToolResults []executedTool `json:"tool_results"`
	}{Response: resp, ToolResults: executed})
	if err != nil {
		s.logger.Error("marshal response snapshot", "error", err)
		snapshot = nil
	}
	if _, err := s.messages.Insert(ctx, messaging.MessageRecord{
		PhoneNumber: phoneNumber,
		Body:        reply,
		Sender:      messaging.SenderAssistant,
		Processed:   true,
		AIResponse:  snapshot,
	}); err != nil {
		s.logger.Error("store outbound message", "error", err, "phone", phoneNumber)
	}

	return reply
}

// callModel races the completion against the configured deadline. The loser's
// eventual result is discarded; the buffered channel keeps the goroutine from
// leaking when the timer wins.
func (s *Service) callModel(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		resp LLMResponse
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		resp, err := s.llm.Complete(ctx, req)
		done <- outcome{resp: resp, err: err}
	}()

	timer := time.NewTimer(s.llmTimeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.resp, out.err
	case <-timer.C:
		return LLMResponse{}, errModelTimeout
	}
}

func (s *Service) loadSettings(ctx context.Context) platform.Settings {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error("load platform settings", "error", err)
	}
	if settings.PlatformName == "" {
		settings.PlatformName = s.platformName
	}
	if settings.SupportPhone == "" {
		settings.SupportPhone = s.supportPhone
	}
	return settings
}

func (s *Service) loadHistory(ctx context.Context, phoneNumber string) []messaging.MessageRecord {
	history, err := s.messages.RecentHistory(ctx, phoneNumber, s.historyLimit)
	if err != nil {
		s.logger.Error("load conversation history", "error", err, "phone", phoneNumber)
		return nil
	}
	return history
}

// testDiagnostic answers the "test" command with a direct worker query,
// proving database connectivity without touching the model.
func (s *Service) testDiagnostic(ctx context.Context) string {
	profiles, err := s.maids.SearchAvailable(ctx, maids.Filter{})
	if err != nil {
		s.logger.Error("test diagnostic query", "error", err)
		return fmt.Sprintf("Test failed: %v", err)
	}
	if len(profiles) == 0 {
		return "Test mode: Database connected but no maids found."
	}
	if len(profiles) > 3 {
		profiles = profiles[:3]
	}
	var b strings.Builder
	b.WriteString("Test successful! Found maids:\n")
	for _, p := range profiles {
		fmt.Fprintf(&b, "\n• %s (%d yrs) - %s", p.FullName, p.ExperienceYears, p.Location)
	}
	return b.String()
}
