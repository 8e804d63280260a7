package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"household-planner/internal/model"
	"household-planner/internal/timewindow"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	tasks    TaskStore
	insights *InsightsService
	clock    timewindow.Clock
}

func NewReminderService(tasks TaskStore, insights *InsightsService, clock timewindow.Clock) *ReminderService {
	return &ReminderService{tasks: tasks, insights: insights, clock: clock}
}

// DailySummary renders the household report as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context) (string, error) {
	report, err := s.insights.Insights(ctx)
	if err != nil {
		return "", err
	}
	today := timewindow.Today(s.clock)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", report.DateLabel))

	for _, card := range report.Members {
		tasks, err := s.tasks.Load(ctx, card.Member)
		if err != nil {
			return "", err
		}
		builder.WriteString(fmt.Sprintf("\n👤 <b>%s</b> · ⭐ %d\n", html.EscapeString(card.Member), card.Stars))
		builder.WriteString(fmt.Sprintf("   ✅ today %d · yesterday %d · this week %d\n",
			card.CompletedToday, card.CompletedYesterday, card.CompletedThisWeek))
		builder.WriteString(fmt.Sprintf("   📈 efficiency %.2f%%\n", card.Efficiency))

		pending := pendingByDue(tasks)
		if len(pending) == 0 {
			builder.WriteString("   — nothing pending\n")
			continue
		}
		for _, task := range pending {
			builder.WriteString(formatTask(task, today))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// pendingByDue returns pending tasks, earliest due date first. Tasks with an
// unreadable due date go last, newest first.
func pendingByDue(tasks []model.Task) []model.Task {
	var pending []model.Task
	for _, task := range tasks {
		if task.Status == model.StatusPending {
			pending = append(pending, task)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		di, errI := pending[i].Due()
		dj, errJ := pending[j].Due()
		switch {
		case errI != nil && errJ != nil:
			return pending[i].CreatedAt > pending[j].CreatedAt
		case errI != nil:
			return false
		case errJ != nil:
			return true
		default:
			return di.Before(dj)
		}
	})
	return pending
}

func formatTask(task model.Task, today timewindow.Date) string {
	var sb strings.Builder

	icon := "🟢"
	due, err := task.Due()
	if err == nil {
		switch {
		case due.Before(today):
			icon = "⚠️"
		case timewindow.DaysBetween(today, due) <= 1:
			icon = "⏳"
		}
	}

	sb.WriteString(fmt.Sprintf("   %s %s", icon, html.EscapeString(strings.TrimSpace(task.Description))))
	if task.Category != nil {
		if name := strings.TrimSpace(*task.Category); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
		}
	}

	if err == nil {
		if due.Before(today) {
			sb.WriteString(fmt.Sprintf(" · due %s, <b>overdue</b>", due))
		} else {
			sb.WriteString(fmt.Sprintf(" · due %s", dueLabel(today, due)))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}

func dueLabel(today, due timewindow.Date) string {
	switch timewindow.DaysBetween(today, due) {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return due.Time().Format(time.DateOnly)
	}
}
