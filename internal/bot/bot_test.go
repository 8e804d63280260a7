package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/analytics"
	"household-planner/internal/config"
	"household-planner/internal/model"
	"household-planner/internal/repository"
	"household-planner/internal/service"
	"household-planner/internal/timewindow"
)

const (
	adminChat  int64 = 100
	memberChat int64 = 200
	userID     int64 = 7
)

var testNow = time.Date(2024, time.May, 15, 10, 0, 0, 0, timewindow.Reference)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var parts []string
	for _, m := range f.sent {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n---\n")
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type testBot struct {
	*Bot
	sender *fakeSender
	tasks  *repository.TaskRepository
}

func setupBot(t *testing.T) *testBot {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "bot.db"), zerolog.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zerolog.Nop()
	clock := timewindow.ClockFunc(func() time.Time { return testNow })
	members := repository.NewMemberRepository(db)
	tasks := repository.NewTaskRepository(db)
	profiles := repository.NewProfileRepository(db)

	memberSvc := service.NewMemberService(members, log)
	require.NoError(t, memberSvc.Seed(context.Background(), []string{"Veer", "Avni"}))
	ledger := service.NewLedgerService(profiles, clock, log)
	insights := service.NewInsightsService(members, tasks, profiles, analytics.New(log), clock)
	rollover := service.NewRolloverService(tasks, members, clock, log, nil)

	cfg := config.Config{Telegram: config.TelegramConfig{ReportChatIDs: []int64{adminChat}}}
	sender := &fakeSender{}
	b := newBot(sender, Services{
		Members:  memberSvc,
		Tasks:    service.NewTaskService(tasks, members, ledger, clock, log, nil),
		Insights: insights,
		Reminder: service.NewReminderService(tasks, insights, clock),
		Rollover: rollover,
		Gate:     service.NewRolloverGate(rollover, clock, log),
	}, cfg, clock, log)

	return &testBot{Bot: b, sender: sender, tasks: tasks}
}

func command(chatID int64, text string) tgbotapi.Update {
	name := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func reply(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}

func (tb *testBot) put(t *testing.T, member string, tasks ...model.Task) {
	t.Helper()
	require.NoError(t, tb.tasks.Save(context.Background(), member, tasks))
}

func (tb *testBot) load(t *testing.T, member string) []model.Task {
	t.Helper()
	tasks, err := tb.tasks.Load(context.Background(), member)
	require.NoError(t, err)
	return tasks
}

func pending(id, description, due string) model.Task {
	return model.Task{
		ID:          id,
		Description: description,
		Status:      model.StatusPending,
		CreatedAt:   timewindow.FormatInstant(testNow.Add(-time.Hour)),
		DueDate:     due,
	}
}

func TestDoneCompletesNumberedTask(t *testing.T) {
	tb := setupBot(t)
	ctx := context.Background()
	tb.put(t, "Veer", pending("a", "make bed", "2024-05-15"), pending("b", "feed cat", "2024-05-14"))

	require.NoError(t, tb.handleUpdate(ctx, command(memberChat, "/tasks veer")))
	listing := tb.sender.texts()
	assert.Contains(t, listing, "Veer's tasks")
	assert.Contains(t, listing, "⚠️ <b>2.</b> Feed cat")

	tb.sender.reset()
	require.NoError(t, tb.handleUpdate(ctx, command(memberChat, "/done Veer 2")))
	assert.Contains(t, tb.sender.texts(), "Veer finished \"Feed cat\". ⭐ +1 (now 1)")

	stored := tb.load(t, "Veer")
	assert.Equal(t, model.StatusPending, stored[0].Status)
	assert.Equal(t, model.StatusCompleted, stored[1].Status)

	tb.sender.reset()
	require.NoError(t, tb.handleUpdate(ctx, command(memberChat, "/done Veer 9")))
	assert.Contains(t, tb.sender.texts(), "Not found")

	tb.sender.reset()
	require.NoError(t, tb.handleUpdate(ctx, command(memberChat, "/done Veer")))
	assert.Contains(t, tb.sender.texts(), "Usage: /done")
}

func TestCallbackThenConfirm(t *testing.T) {
	tb := setupBot(t)
	ctx := context.Background()
	tb.put(t, "Avni", pending("t-1", "water plants", "2024-05-15"))

	cb := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: memberChat}},
		Data:    callbackData(cbCompletePrefix, "Avni", "t-1"),
	}}
	require.NoError(t, tb.handleUpdate(ctx, cb))
	assert.Contains(t, tb.sender.texts(), "Mark \"Water plants\" done for Avni?")
	assert.Equal(t, model.StatusPending, tb.load(t, "Avni")[0].Status)

	require.NoError(t, tb.handleUpdate(ctx, reply(memberChat, btnConfirm)))
	assert.Equal(t, model.StatusCompleted, tb.load(t, "Avni")[0].Status)

	tb.sender.reset()
	require.NoError(t, tb.handleUpdate(ctx, cb))
	assert.Contains(t, tb.sender.texts(), "already done")
}

func TestAdminCommandsNeedAdminChat(t *testing.T) {
	tb := setupBot(t)
	ctx := context.Background()

	for _, text := range []string{"/add Veer", "/delete Veer 1", "/rollover"} {
		tb.sender.reset()
		require.NoError(t, tb.handleUpdate(ctx, command(memberChat, text)))
		assert.Contains(t, tb.sender.texts(), "Only the household admin chats", text)
	}
	assert.False(t, tb.hasConversation(userID))
}

func TestAddConversation(t *testing.T) {
	tb := setupBot(t)
	ctx := context.Background()

	require.NoError(t, tb.handleUpdate(ctx, command(adminChat, "/add avni")))
	require.True(t, tb.hasConversation(userID))

	require.NoError(t, tb.handleUpdate(ctx, reply(adminChat, "Sweep the porch")))
	require.NoError(t, tb.handleUpdate(ctx, reply(adminChat, "not a date")))
	assert.Contains(t, tb.sender.texts(), "I can't read that date")
	require.NoError(t, tb.handleUpdate(ctx, reply(adminChat, "2024-05-16")))
	require.NoError(t, tb.handleUpdate(ctx, reply(adminChat, btnSkip)))

	assert.False(t, tb.hasConversation(userID))
	stored := tb.load(t, "Avni")
	require.Len(t, stored, 1)
	assert.Equal(t, "Sweep the porch", stored[0].Description)
	assert.Equal(t, "2024-05-16", stored[0].DueDate)
	assert.Nil(t, stored[0].Category)
	assert.Contains(t, tb.sender.texts(), "Task saved")
}

func TestDeleteWithConfirmation(t *testing.T) {
	tb := setupBot(t)
	ctx := context.Background()
	tb.put(t, "Veer", pending("a", "make bed", "2024-05-15"))

	require.NoError(t, tb.handleUpdate(ctx, command(adminChat, "/delete Veer 1")))
	require.NoError(t, tb.handleUpdate(ctx, reply(adminChat, btnCancel)))
	assert.Len(t, tb.load(t, "Veer"), 1)

	require.NoError(t, tb.handleUpdate(ctx, command(adminChat, "/delete Veer 1")))
	require.NoError(t, tb.handleUpdate(ctx, reply(adminChat, btnConfirm)))
	assert.Empty(t, tb.load(t, "Veer"))
}

func TestUpdatesTriggerRollover(t *testing.T) {
	tb := setupBot(t)
	ctx := context.Background()
	yesterday := timewindow.FormatInstant(testNow.Add(-20 * time.Hour))
	task := pending("old", "fold laundry", "2024-05-14")
	task.Status = model.StatusCompleted
	task.CompletedAt = &yesterday
	tb.put(t, "Veer", task)

	require.NoError(t, tb.handleUpdate(ctx, command(memberChat, "/help")))
	assert.Equal(t, model.StatusDoneYesterday, tb.load(t, "Veer")[0].Status)
	assert.NotContains(t, tb.sender.texts(), "/rollover")
}

func TestReportsAndDailyPush(t *testing.T) {
	tb := setupBot(t)
	ctx := context.Background()
	tb.put(t, "Veer", pending("a", "make bed", "2024-05-15"))

	for _, text := range []string{"/members", "/insights", "/dashboard", "/report"} {
		require.NoError(t, tb.handleUpdate(ctx, command(memberChat, text)))
	}
	out := tb.sender.texts()
	assert.Contains(t, out, "Wednesday, May 15, 2024")
	assert.Contains(t, out, "Week of 2024-05-13")
	assert.Contains(t, out, "🥇")
	assert.Contains(t, out, "Daily report")

	tb.sender.reset()
	require.NoError(t, tb.SendDailyReports(ctx))
	require.Len(t, tb.sender.sent, 1)
	assert.Equal(t, adminChat, tb.sender.sent[0].ChatID)
	assert.Contains(t, tb.sender.sent[0].Text, "Daily report")
}

func TestParseCallback(t *testing.T) {
	member, id, ok := parseCallback("c:Veer:0b6c-11", cbCompletePrefix)
	assert.True(t, ok)
	assert.Equal(t, "Veer", member)
	assert.Equal(t, "0b6c-11", id)

	for _, bad := range []string{"x:Veer:1", "c:Veer", "c::1", "c:Veer:"} {
		_, _, ok := parseCallback(bad, cbCompletePrefix)
		assert.False(t, ok, bad)
	}

	long := callbackData(cbCompletePrefix, strings.Repeat("a", 20), "123e4567-e89b-12d3-a456-426614174000")
	assert.LessOrEqual(t, len(long), 64)
}
