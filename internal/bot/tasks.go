package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"household-planner/internal/model"
	"household-planner/internal/service"
	"household-planner/internal/timewindow"
)

func (b *Bot) handleTasks(ctx context.Context, msg *tgbotapi.Message) error {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return b.sendMemberPicker(ctx, msg.Chat.ID, "tasks")
	}
	member, err := b.resolveMember(ctx, arg)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendTaskList(ctx, msg.Chat.ID, member)
}

// handleDone completes the n-th pending task as numbered by /tasks.
func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	member, task, err := b.taskByNumber(ctx, msg.CommandArguments())
	if err != nil {
		if errors.Is(err, errUsage) {
			return b.sendText(msg.Chat.ID, "Usage: /done &lt;member&gt; &lt;n&gt;, e.g. /done Veer 2")
		}
		return b.replyError(msg.Chat.ID, err)
	}
	return b.completeTask(ctx, msg.Chat.ID, member, task.ID)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	if ok, err := b.requireAdmin(msg); !ok {
		return err
	}
	member, task, err := b.taskByNumber(ctx, msg.CommandArguments())
	if err != nil {
		if errors.Is(err, errUsage) {
			return b.sendText(msg.Chat.ID, "Usage: /delete &lt;member&gt; &lt;n&gt;")
		}
		return b.replyError(msg.Chat.ID, err)
	}
	text := fmt.Sprintf("Delete \"%s\" from %s's list?", escape(normalizeTitle(task.Description)), escape(member))
	b.setConfirmation(msg.From.ID, confirmationRequest{member: member, taskID: task.ID, action: actionDelete})
	return b.sendWithReplyMarkup(msg.Chat.ID, text, confirmKeyboard())
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	if ok, err := b.requireAdmin(msg); !ok {
		return err
	}
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return b.sendMemberPicker(ctx, msg.Chat.ID, "add")
	}
	member, err := b.resolveMember(ctx, arg)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	b.logger.Info().Int64("user_id", msg.From.ID).Str("member", member).Msg("start new task conversation")
	b.setConversation(msg.From.ID, &conversationState{stage: stageDescription, member: member})
	return b.sendWithReplyMarkup(msg.Chat.ID,
		fmt.Sprintf("🆕 New task for <b>%s</b>.\n<b>Step 1:</b> what needs doing?", escape(member)),
		cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageDescription:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The description can't be empty.", cancelKeyboard())
		}
		state.input.Description = text
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ Due date as <code>2025-11-30</code> (or Skip for today).", skipKeyboard())
	case stageDueDate:
		if !isSkipInput(text) {
			if _, err := timewindow.ParseDate(text); err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I can't read that date. Use <code>2025-11-30</code> or Skip.", skipKeyboard())
			}
			state.input.DueDate = text
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Pick a category or type your own (or Skip).", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		err := b.finishTaskCreation(ctx, msg.Chat.ID, state.member, state.input)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Start again with /add.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, member string, input service.TaskInput) error {
	task, err := b.svc.Tasks.CreateTask(ctx, member, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Couldn't save the task: %s", escape(err.Error())))
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>For:</b> %s\n", escape(member)))
	summary.WriteString(fmt.Sprintf("• <b>Task:</b> %s\n", escape(normalizeTitle(task.Description))))
	summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", task.DueDate))
	if task.Category != nil {
		summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", categoryLabel(*task.Category)))
	}
	if err := b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, member)
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionDelete {
			return b.deleteTask(ctx, msg.Chat.ID, req.member, req.taskID)
		}
		return b.completeTask(ctx, msg.Chat.ID, req.member, req.taskID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		prompt := "Confirm or cancel completing the task."
		if req.action == actionDelete {
			prompt = "Confirm or cancel deleting the task."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("callback ack")
	}

	member, taskID, ok := parseCallback(cb.Data, cbCompletePrefix)
	if !ok {
		return nil
	}
	b.logger.Info().
		Int64("user_id", cb.From.ID).
		Str("member", member).
		Str("task_id", taskID).
		Msg("callback complete request")
	return b.askCompleteConfirmation(ctx, cb.Message.Chat.ID, cb.From.ID, member, taskID)
}

func (b *Bot) askCompleteConfirmation(ctx context.Context, chatID, userID int64, member, taskID string) error {
	task, err := b.svc.Tasks.GetTask(ctx, member, taskID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if task.Status != model.StatusPending {
		return b.sendText(chatID, "That task is already done.")
	}

	text := fmt.Sprintf("Mark \"%s\" done for %s?", escape(normalizeTitle(task.Description)), escape(member))
	b.setConfirmation(userID, confirmationRequest{member: member, taskID: task.ID, action: actionComplete})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, member, taskID string) error {
	done, err := b.svc.Tasks.CompleteTask(ctx, member, taskID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendTextWithRemove(chatID, "Task not found or already done.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	info := fmt.Sprintf("✅ %s finished \"%s\". ⭐ +%d (now %d)",
		escape(member), escape(normalizeTitle(done.Task.Description)), done.StarsAwarded, done.Balance)
	if err := b.sendTextWithRemove(chatID, info); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, member)
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, member, taskID string) error {
	task, err := b.svc.Tasks.GetTask(ctx, member, taskID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if err := b.svc.Tasks.DeleteTask(ctx, member, taskID); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 \"%s\" deleted.", escape(normalizeTitle(task.Description)))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, member)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, member string) error {
	tasks, err := b.svc.Tasks.ListTasks(ctx, member)
	if err != nil {
		return b.replyError(chatID, err)
	}

	today := timewindow.Today(b.clock)
	pending := pendingTasks(tasks)
	doneToday := 0
	for _, task := range tasks {
		if task.Status != model.StatusCompleted {
			continue
		}
		if at, ok, err := task.CompletedInstant(); err == nil && ok && timewindow.DateOf(at) == today {
			doneToday++
		}
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>%s's tasks</b>\n", escape(member)))
	if doneToday > 0 {
		builder.WriteString(fmt.Sprintf("✔️ Done today: %d\n", doneToday))
	}
	builder.WriteByte('\n')
	if len(pending) == 0 {
		builder.WriteString("Nothing pending. 🎉")
		return b.sendText(chatID, builder.String())
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for i, task := range pending {
		builder.WriteString(formatTask(i+1, task, today))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ %d · %s", i+1, shortTitle(task.Description, 24)),
				callbackData(cbCompletePrefix, member, task.ID),
			),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

var errUsage = errors.New("usage")

// taskByNumber parses "<member> <n>" and returns the n-th pending task.
func (b *Bot) taskByNumber(ctx context.Context, args string) (string, model.Task, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", model.Task{}, errUsage
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return "", model.Task{}, errUsage
	}
	member, err := b.resolveMember(ctx, fields[0])
	if err != nil {
		return "", model.Task{}, err
	}
	tasks, err := b.svc.Tasks.ListTasks(ctx, member)
	if err != nil {
		return "", model.Task{}, err
	}
	pending := pendingTasks(tasks)
	if n > len(pending) {
		return "", model.Task{}, fmt.Errorf("task %d: %w", n, service.ErrNotFound)
	}
	return member, pending[n-1], nil
}

// resolveMember matches a roster name case-insensitively.
func (b *Bot) resolveMember(ctx context.Context, raw string) (string, error) {
	names, err := b.svc.Members.List(ctx)
	if err != nil {
		return "", err
	}
	raw = strings.TrimSpace(raw)
	for _, name := range names {
		if strings.EqualFold(name, raw) {
			return name, nil
		}
	}
	return "", fmt.Errorf("member %q: %w", raw, service.ErrNotFound)
}

func (b *Bot) sendMemberPicker(ctx context.Context, chatID int64, command string) error {
	names, err := b.svc.Members.List(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendWithReplyMarkup(chatID, "Whose tasks?", memberKeyboard(command, names))
}

func (b *Bot) replyError(chatID int64, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return b.sendText(chatID, "Not found. Check the name with /members or the number with /tasks.")
	case errors.Is(err, service.ErrValidation):
		return b.sendText(chatID, escape(err.Error()))
	default:
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("request failed")
		return b.sendText(chatID, "Something went wrong. Try again later.")
	}
}

func pendingTasks(tasks []model.Task) []model.Task {
	var out []model.Task
	for _, task := range tasks {
		if task.Status == model.StatusPending {
			out = append(out, task)
		}
	}
	return out
}

// Callback data is "<prefix><member>:<task id>"; names are at most 20 and
// ids 36 characters, under Telegram's 64 byte limit.
func callbackData(prefix, member, taskID string) string {
	return prefix + member + ":" + taskID
}

func parseCallback(data, prefix string) (member, taskID string, ok bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", "", false
	}
	member, taskID, ok = strings.Cut(strings.TrimPrefix(data, prefix), ":")
	if !ok || member == "" || taskID == "" {
		return "", "", false
	}
	return member, taskID, true
}
