package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"household-planner/internal/analytics"
	"household-planner/internal/model"
	"household-planner/internal/timewindow"
)

const dateLabelLayout = "Monday, January 02, 2006"

// MemberSummary is a member's card on the home screen.
type MemberSummary struct {
	Member             string `json:"member"`
	Stars              int    `json:"stars"`
	PendingCount       int    `json:"pending_count"`
	CompletedToday     int    `json:"completed_today"`
	CompletedYesterday int    `json:"completed_yesterday"`
}

// HomeSummary is the home screen for the whole household.
type HomeSummary struct {
	Date      string          `json:"date"`
	DateLabel string          `json:"date_label"`
	Members   []MemberSummary `json:"members"`
}

// MemberInsights is the per-member analytics card.
type MemberInsights struct {
	Member             string                  `json:"member"`
	Stars              int                     `json:"stars"`
	PendingCount       int                     `json:"pending_count"`
	CompletedToday     int                     `json:"completed_today"`
	CompletedYesterday int                     `json:"completed_yesterday"`
	CompletedThisWeek  int                     `json:"completed_this_week"`
	Efficiency         float64                 `json:"efficiency"`
	AvatarPlaceholder  string                  `json:"avatar_placeholder"`
	DailyActivity      []analytics.DayActivity `json:"daily_activity"`
	MaxBarValue        int                     `json:"max_bar_height_value"`
}

// InsightsReport covers every member for one reference day.
type InsightsReport struct {
	Date      string           `json:"date"`
	DateLabel string           `json:"date_label"`
	WeekStart string           `json:"week_start"`
	Members   []MemberInsights `json:"members"`
}

type LeaderboardEntry struct {
	Member string `json:"member"`
	Stars  int    `json:"stars"`
}

type WeeklyCompletion struct {
	Member string `json:"member"`
	Count  int    `json:"count"`
}

// Dashboard ranks members by stars and charts this week's completions.
type Dashboard struct {
	WeekStart      string             `json:"week_start"`
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
	Completions    []WeeklyCompletion `json:"task_completion"`
	MaxCompleted   int                `json:"max_completed"`
	MaxGraphHeight int                `json:"max_graph_height"`
}

// InsightsService assembles read-only reports from the analytics engine.
type InsightsService struct {
	members  MemberStore
	tasks    TaskStore
	profiles ProfileStore
	engine   *analytics.Engine
	clock    timewindow.Clock
}

func NewInsightsService(members MemberStore, tasks TaskStore, profiles ProfileStore, engine *analytics.Engine, clock timewindow.Clock) *InsightsService {
	return &InsightsService{
		members:  members,
		tasks:    tasks,
		profiles: profiles,
		engine:   engine,
		clock:    clock,
	}
}

type memberData struct {
	name  string
	stars int
	tasks []model.Task
}

func (s *InsightsService) load(ctx context.Context) ([]memberData, error) {
	names, err := s.members.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]memberData, 0, len(names))
	for _, name := range names {
		tasks, err := s.tasks.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		profile, err := s.profiles.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, memberData{name: name, stars: profile.Stars, tasks: tasks})
	}
	return out, nil
}

// Home returns live pending counts and today's and yesterday's completions.
func (s *InsightsService) Home(ctx context.Context) (HomeSummary, error) {
	data, err := s.load(ctx)
	if err != nil {
		return HomeSummary{}, err
	}
	today := timewindow.Today(s.clock)
	yesterday := today.AddDays(-1)

	summary := HomeSummary{
		Date:      today.String(),
		DateLabel: today.Time().Format(dateLabelLayout),
		Members:   make([]MemberSummary, 0, len(data)),
	}
	for _, m := range data {
		summary.Members = append(summary.Members, MemberSummary{
			Member:             m.name,
			Stars:              m.stars,
			PendingCount:       analytics.CurrentlyPending(m.tasks),
			CompletedToday:     s.engine.CompletedOn(m.tasks, today),
			CompletedYesterday: s.engine.CompletedOn(m.tasks, yesterday),
		})
	}
	return summary, nil
}

// Insights builds the weekly analytics card for every member.
func (s *InsightsService) Insights(ctx context.Context) (InsightsReport, error) {
	data, err := s.load(ctx)
	if err != nil {
		return InsightsReport{}, err
	}
	today := timewindow.Today(s.clock)
	weekStart := timewindow.StartOfWeek(today)

	report := InsightsReport{
		Date:      today.String(),
		DateLabel: today.Time().Format(dateLabelLayout),
		WeekStart: weekStart.String(),
		Members:   make([]MemberInsights, 0, len(data)),
	}
	for _, m := range data {
		report.Members = append(report.Members, s.memberInsights(m, today, weekStart))
	}
	return report, nil
}

// MemberInsights builds the card for a single member.
func (s *InsightsService) MemberInsights(ctx context.Context, member string) (MemberInsights, error) {
	names, err := s.members.ListNames(ctx)
	if err != nil {
		return MemberInsights{}, err
	}
	if !containsName(names, member) {
		return MemberInsights{}, fmt.Errorf("member %q: %w", member, ErrNotFound)
	}
	tasks, err := s.tasks.Load(ctx, member)
	if err != nil {
		return MemberInsights{}, err
	}
	profile, err := s.profiles.Load(ctx, member)
	if err != nil {
		return MemberInsights{}, err
	}
	today := timewindow.Today(s.clock)
	return s.memberInsights(memberData{name: member, stars: profile.Stars, tasks: tasks}, today, timewindow.StartOfWeek(today)), nil
}

func (s *InsightsService) memberInsights(m memberData, today, weekStart timewindow.Date) MemberInsights {
	pending := s.engine.PendingAsOf(m.tasks, today)
	thisWeek := s.engine.CompletedInWeek(m.tasks, weekStart, today)
	activity, maxValue := s.engine.DailyActivity(m.tasks, weekStart)

	return MemberInsights{
		Member:             m.name,
		Stars:              m.stars,
		PendingCount:       pending,
		CompletedToday:     s.engine.CompletedOn(m.tasks, today),
		CompletedYesterday: s.engine.CompletedOn(m.tasks, today.AddDays(-1)),
		CompletedThisWeek:  thisWeek,
		Efficiency:         analytics.Efficiency(thisWeek, pending),
		AvatarPlaceholder:  initial(m.name),
		DailyActivity:      activity,
		MaxBarValue:        maxValue,
	}
}

// Dashboard returns the star leaderboard and this week's completions.
func (s *InsightsService) Dashboard(ctx context.Context) (Dashboard, error) {
	data, err := s.load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	today := timewindow.Today(s.clock)
	weekStart := timewindow.StartOfWeek(today)

	dash := Dashboard{
		WeekStart:   weekStart.String(),
		Leaderboard: make([]LeaderboardEntry, 0, len(data)),
		Completions: make([]WeeklyCompletion, 0, len(data)),
	}
	for _, m := range data {
		dash.Leaderboard = append(dash.Leaderboard, LeaderboardEntry{Member: m.name, Stars: m.stars})
		count := s.engine.CompletedInWeek(m.tasks, weekStart, weekStart.AddDays(analytics.DaysPerWeek-1))
		dash.Completions = append(dash.Completions, WeeklyCompletion{Member: m.name, Count: count})
		dash.MaxCompleted = max(dash.MaxCompleted, count)
	}
	sort.SliceStable(dash.Leaderboard, func(i, j int) bool {
		return dash.Leaderboard[i].Stars > dash.Leaderboard[j].Stars
	})
	dash.MaxGraphHeight = max(1, dash.MaxCompleted)
	return dash, nil
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}
