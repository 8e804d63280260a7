package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var medals = []string{"🥇", "🥈", "🥉"}

func (b *Bot) handleMembers(ctx context.Context, msg *tgbotapi.Message) error {
	home, err := b.svc.Insights.Home(ctx)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🏠 <b>%s</b>\n\n", home.DateLabel))
	for _, m := range home.Members {
		builder.WriteString(fmt.Sprintf("👤 <b>%s</b> · ⭐ %d\n", escape(m.Member), m.Stars))
		builder.WriteString(fmt.Sprintf("   pending %d · done today %d · yesterday %d\n",
			m.PendingCount, m.CompletedToday, m.CompletedYesterday))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleInsights(ctx context.Context, msg *tgbotapi.Message) error {
	report, err := b.svc.Insights.Insights(ctx)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📊 <b>Week of %s</b>\n\n", report.WeekStart))
	for _, m := range report.Members {
		builder.WriteString(fmt.Sprintf("👤 <b>%s</b> · %.2f%%\n", escape(m.Member), m.Efficiency))
		builder.WriteString(fmt.Sprintf("   this week %d · pending %d\n", m.CompletedThisWeek, m.PendingCount))
		var bars strings.Builder
		for _, day := range m.DailyActivity {
			bars.WriteString(fmt.Sprintf("%s %d  ", day.Day, day.Completed))
		}
		builder.WriteString("   " + strings.TrimSpace(bars.String()) + "\n")
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleDashboard(ctx context.Context, msg *tgbotapi.Message) error {
	dash, err := b.svc.Insights.Dashboard(ctx)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	var builder strings.Builder
	builder.WriteString("🏆 <b>Leaderboard</b>\n")
	for i, entry := range dash.Leaderboard {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		builder.WriteString(fmt.Sprintf("%s %s · ⭐ %d\n", prefix, escape(entry.Member), entry.Stars))
	}
	builder.WriteString(fmt.Sprintf("\n✅ <b>Done since %s</b>\n", dash.WeekStart))
	for _, c := range dash.Completions {
		builder.WriteString(fmt.Sprintf("%s %s %d\n", escape(c.Member), bar(c.Count, dash.MaxGraphHeight, 10), c.Count))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.svc.Reminder.DailySummary(ctx)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, text)
}

// handleRollover runs a pass now without touching the daily gate.
func (b *Bot) handleRollover(ctx context.Context, msg *tgbotapi.Message) error {
	if ok, err := b.requireAdmin(msg); !ok {
		return err
	}
	n, err := b.svc.Rollover.RollOverAll(ctx)
	if err != nil {
		b.logger.Error().Err(err).Int("transitioned", n).Msg("manual rollover finished with errors")
		return b.sendText(msg.Chat.ID, fmt.Sprintf("⚠️ Rollover moved %d tasks but hit errors; see the logs.", n))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🔄 Rollover moved %d tasks.", n))
}

// bar draws value as a block bar scaled so maxValue fills width.
func bar(value, maxValue, width int) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := value * width / maxValue
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
