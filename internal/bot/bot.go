package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"household-planner/internal/config"
	"household-planner/internal/service"
	"household-planner/internal/timewindow"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageDescription
	stageDueDate
	stageCategory
)

type conversationState struct {
	stage  conversationStage
	member string
	input  service.TaskInput
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
)

type confirmationRequest struct {
	member string
	taskID string
	action confirmationAction
}

// sender is the part of the Telegram client the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services are the use cases reachable from chat.
type Services struct {
	Members  *service.MemberService
	Tasks    *service.TaskService
	Insights *service.InsightsService
	Reminder *service.ReminderService
	Rollover *service.RolloverService
	Gate     *service.RolloverGate
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api    sender
	client *tgbotapi.BotAPI
	svc    Services
	cfg    config.Config
	clock  timewindow.Clock
	logger zerolog.Logger

	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, svc Services, cfg config.Config, clock timewindow.Clock, logger zerolog.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := newBot(client, svc, cfg, clock, logger)
	b.client = client
	b.logger.Info().Str("account", client.Self.UserName).Msg("bot authorized")
	return b, nil
}

func newBot(api sender, svc Services, cfg config.Config, clock timewindow.Clock, logger zerolog.Logger) *Bot {
	return &Bot{
		api:           api,
		svc:           svc,
		cfg:           cfg,
		clock:         clock,
		logger:        logger.With().Str("component", "bot").Logger(),
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return fmt.Errorf("bot has no telegram client")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.logger.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		if err := b.handleUpdate(ctx, update); err != nil {
			b.logger.Error().
				Err(err).
				Int("update_id", update.UpdateID).
				Msg("handle update")
		}
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery == nil && update.Message == nil {
		return nil
	}
	if _, err := b.svc.Gate.EnsureRolloverRan(ctx); err != nil {
		b.logger.Error().
			Err(err).
			Msg("rollover before update failed")
	}

	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	default:
		return b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.logger.Info().
			Int64("chat_id", msg.Chat.ID).
			Str("command", msg.Command()).
			Str("args", msg.CommandArguments()).
			Msg("command received")
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Try /tasks or /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return b.handleHelp(msg)
	case "members":
		return b.handleMembers(ctx, msg)
	case "tasks":
		return b.handleTasks(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "add":
		return b.handleAdd(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "insights":
		return b.handleInsights(ctx, msg)
	case "dashboard":
		return b.handleDashboard(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "rollover":
		return b.handleRollover(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "🏠 <b>Household planner</b>\n" +
		"• /members — stars and today's progress\n" +
		"• /tasks &lt;member&gt; — pending tasks, tap to complete\n" +
		"• /done &lt;member&gt; &lt;n&gt; — complete task number n\n" +
		"• /insights — this week's numbers\n" +
		"• /dashboard — star leaderboard\n" +
		"• /report — today's report\n" +
		"• /cancel — stop the current input"
	if b.isAdmin(msg.Chat.ID) {
		text += "\n\n🔐 <b>Admin</b>\n" +
			"• /add &lt;member&gt; — add a task step by step\n" +
			"• /delete &lt;member&gt; &lt;n&gt; — delete task number n\n" +
			"• /rollover — run the daily rollover now"
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelTasks):
		return true, b.sendMemberPicker(ctx, msg.Chat.ID, "tasks")
	case strings.ToLower(menuLabelMembers):
		return true, b.handleMembers(ctx, msg)
	case strings.ToLower(menuLabelInsights):
		return true, b.handleInsights(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

// SendDailyReports sends the household report to every configured chat.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	if len(b.cfg.Telegram.ReportChatIDs) == 0 {
		return nil
	}
	text, err := b.svc.Reminder.DailySummary(ctx)
	if err != nil {
		return fmt.Errorf("build daily report: %w", err)
	}
	for _, chatID := range b.cfg.Telegram.ReportChatIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(chatID, text); err != nil {
			b.logger.Error().
				Err(err).
				Int64("chat_id", chatID).
				Msg("send daily report")
		}
	}
	return nil
}

func (b *Bot) isAdmin(chatID int64) bool {
	return b.cfg.IsReportChat(chatID)
}

func (b *Bot) requireAdmin(msg *tgbotapi.Message) (bool, error) {
	if b.isAdmin(msg.Chat.ID) {
		return true, nil
	}
	b.logger.Warn().
		Int64("chat_id", msg.Chat.ID).
		Str("command", msg.Command()).
		Msg("admin command from non-admin chat")
	return false, b.sendText(msg.Chat.ID, "⛔ Only the household admin chats can do that.")
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
