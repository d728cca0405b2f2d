// ABOUTME: MCP tool implementations for the coach.
// ABOUTME: Logging days, reading entries and profiles, trends, sync status, and coaching replies.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/coach/internal/aggregate"
	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/interchange"
	"github.com/harperreed/coach/internal/models"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_day",
		Description: "Log (or replace) one day's wellness and training entry",
	}, s.handleLogDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_entry",
		Description: "Get the entry for one date",
	}, s.handleGetEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_entries",
		Description: "List entries newest first, optionally since a date",
	}, s.handleListEntries)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_entry",
		Description: "Delete the entry for one date",
	}, s.handleDeleteEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the training profile (created with defaults on first use)",
	}, s.handleGetProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "save_profile",
		Description: "Replace the training profile",
	}, s.handleSaveProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "recent_analysis",
		Description: "Analyse the last 7 days: energy, training frequency, soreness",
	}, s.handleRecentAnalysis)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_summary",
		Description: "Summarise the last week (needs at least 3 logged days)",
	}, s.handleWeeklySummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "progression",
		Description: "Two-week trends for volume, quality and recovery, plus split balance and plateau checks",
	}, s.handleProgression)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_status",
		Description: "Compare the store with the snapshot file",
	}, s.handleSyncStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "coach_reply",
		Description: "Ask the coach a question and get a personalised reply",
	}, s.handleCoachReply)
}

// Tool input/output types

type userInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type logDayInput struct {
	UserID          string   `json:"user_id,omitempty" jsonschema:"User ID, defaults to the configured user"`
	Date            string   `json:"date" jsonschema:"Calendar date (YYYY-MM-DD)"`
	Mood            string   `json:"mood,omitempty" jsonschema:"Mood, free text or a 0-10 score"`
	Energy          *float64 `json:"energy,omitempty" jsonschema:"Energy 0-10"`
	SleepHours      *float64 `json:"sleep_hours,omitempty" jsonschema:"Hours slept 0-24"`
	SleepQuality    *float64 `json:"sleep_quality,omitempty" jsonschema:"Sleep quality 0-10"`
	StressLevel     *float64 `json:"stress_level,omitempty" jsonschema:"Stress 0-10"`
	Soreness        string   `json:"soreness,omitempty" jsonschema:"Comma-separated sore areas, or none"`
	TrainingDone    string   `json:"training_done,omitempty" jsonschema:"What you trained, e.g. Push Day - Heavy, or rest"`
	TrainingQuality *float64 `json:"training_quality,omitempty" jsonschema:"Session quality 0-10"`
	Nutrition       string   `json:"nutrition,omitempty" jsonschema:"Comma-separated foods eaten"`
	Hydration       *float64 `json:"hydration,omitempty" jsonschema:"Hydration 0-10"`
	Notes           string   `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func (in logDayInput) record() models.Record {
	return models.Record{
		Date:            in.Date,
		Mood:            models.Text(in.Mood),
		Energy:          scalar(in.Energy),
		SleepHours:      scalar(in.SleepHours),
		SleepQuality:    scalar(in.SleepQuality),
		StressLevel:     scalar(in.StressLevel),
		Soreness:        models.Scalar(in.Soreness),
		TrainingDone:    in.TrainingDone,
		TrainingQuality: scalar(in.TrainingQuality),
		Nutrition:       in.Nutrition,
		Hydration:       scalar(in.Hydration),
		Notes:           in.Notes,
	}
}

func scalar(f *float64) models.Scalar {
	if f == nil {
		return ""
	}
	return models.ScalarFloat(*f)
}

type logDayOutput struct {
	Entry    entryView `json:"entry"`
	Warnings []string  `json:"warnings,omitempty"`
	Message  string    `json:"message"`
}

type dateInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User ID, defaults to the configured user"`
	Date   string `json:"date" jsonschema:"Calendar date (YYYY-MM-DD)"`
}

type getEntryOutput struct {
	Found bool       `json:"found"`
	Entry *entryView `json:"entry,omitempty"`
}

type listEntriesInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User ID, defaults to the configured user"`
	Since  string `json:"since,omitempty" jsonschema:"Only entries on or after this date (YYYY-MM-DD)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results (default 30)"`
}

type listEntriesOutput struct {
	Count   int         `json:"count"`
	Entries []entryView `json:"entries"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type saveProfileInput struct {
	UserID        string   `json:"user_id,omitempty" jsonschema:"User ID, defaults to the configured user"`
	Name          string   `json:"name,omitempty" jsonschema:"Display name"`
	TrainingSplit string   `json:"training_split,omitempty" jsonschema:"Training split, e.g. Push/Pull/Legs"`
	DaysPerWeek   *int     `json:"days_per_week,omitempty" jsonschema:"Planned training days per week 0-7"`
	Goals         []string `json:"goals,omitempty" jsonschema:"Training goals"`
	InjuryNotes   string   `json:"injury_notes,omitempty" jsonschema:"Injuries to work around"`
	DietaryNotes  string   `json:"dietary_notes,omitempty" jsonschema:"Dietary preferences"`
}

type recentOutput struct {
	Analysis aggregate.RecentAnalysis `json:"analysis"`
	Text     string                   `json:"text"`
}

type weeklyOutput struct {
	Summary *aggregate.WeeklySummary `json:"summary,omitempty"`
	Message string                   `json:"message,omitempty"`
}

type progressionOutput struct {
	Progression aggregate.ProgressionReport `json:"progression"`
	Balance     *coach.Balance              `json:"balance"`
	Plateau     aggregate.PlateauReport     `json:"plateau"`
}

type replyInput struct {
	UserID  string `json:"user_id,omitempty" jsonschema:"User ID, defaults to the configured user"`
	Message string `json:"message" jsonschema:"What to ask the coach"`
}

type replyOutput struct {
	Reply string `json:"reply"`
}

// Tool handlers

func (s *Server) handleLogDay(ctx context.Context, req *mcp.CallToolRequest, input logDayInput) (*mcp.CallToolResult, logDayOutput, error) {
	e, warnings, err := s.svc.LogDay(s.userOr(input.UserID), input.record())
	if err != nil {
		return nil, logDayOutput{}, fmt.Errorf("failed to log day: %w", err)
	}

	out := logDayOutput{
		Entry:   viewEntry(e),
		Message: fmt.Sprintf("Logged %s: %s, recovery %.1f/10", e.Date, e.Split, e.RecoveryScore),
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return nil, out, nil
}

func (s *Server) handleGetEntry(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, getEntryOutput, error) {
	e, err := s.svc.Entry(s.userOr(input.UserID), input.Date)
	if err != nil {
		return nil, getEntryOutput{}, fmt.Errorf("failed to get entry: %w", err)
	}
	if e == nil {
		return nil, getEntryOutput{Found: false}, nil
	}
	v := viewEntry(e)
	return nil, getEntryOutput{Found: true, Entry: &v}, nil
}

func (s *Server) handleListEntries(ctx context.Context, req *mcp.CallToolRequest, input listEntriesInput) (*mcp.CallToolResult, listEntriesOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 30
	}

	entries, err := s.svc.Entries(s.userOr(input.UserID), input.Since)
	if err != nil {
		return nil, listEntriesOutput{}, fmt.Errorf("failed to list entries: %w", err)
	}
	if len(entries) > input.Limit {
		entries = entries[:input.Limit]
	}
	return nil, listEntriesOutput{Count: len(entries), Entries: viewEntries(entries)}, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, simpleOutput, error) {
	deleted, err := s.svc.DeleteDay(s.userOr(input.UserID), input.Date)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete entry: %w", err)
	}
	if !deleted {
		return nil, simpleOutput{Message: fmt.Sprintf("No entry for %s", input.Date)}, nil
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted entry: %s", input.Date)}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, profileView, error) {
	p, err := s.svc.Profile(s.userOr(input.UserID))
	if err != nil {
		return nil, profileView{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return nil, viewProfile(p), nil
}

func (s *Server) handleSaveProfile(ctx context.Context, req *mcp.CallToolRequest, input saveProfileInput) (*mcp.CallToolResult, profileView, error) {
	p := models.NewProfile(s.userOr(input.UserID))
	p.Name = input.Name
	p.TrainingSplit = input.TrainingSplit
	if input.DaysPerWeek != nil {
		p.DaysPerWeek = *input.DaysPerWeek
	}
	p.Goals = input.Goals
	p.InjuryNotes = input.InjuryNotes
	p.DietaryNotes = input.DietaryNotes

	if err := s.svc.SaveProfile(p); err != nil {
		return nil, profileView{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return nil, viewProfile(p), nil
}

func (s *Server) handleRecentAnalysis(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, recentOutput, error) {
	a, err := s.svc.Recent(s.userOr(input.UserID))
	if err != nil {
		return nil, recentOutput{}, fmt.Errorf("failed to analyse entries: %w", err)
	}
	return nil, recentOutput{Analysis: a, Text: a.Text()}, nil
}

func (s *Server) handleWeeklySummary(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, weeklyOutput, error) {
	summary, err := s.svc.Weekly(s.userOr(input.UserID))
	if errors.Is(err, aggregate.ErrInsufficientData) {
		return nil, weeklyOutput{Message: fmt.Sprintf("Need at least %d logged days in the last week for a summary.", aggregate.MinWeeklyEntries)}, nil
	}
	if err != nil {
		return nil, weeklyOutput{}, fmt.Errorf("failed to summarise week: %w", err)
	}
	return nil, weeklyOutput{Summary: summary}, nil
}

func (s *Server) handleProgression(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, progressionOutput, error) {
	user := s.userOr(input.UserID)

	progression, err := s.svc.Progression(user)
	if err != nil {
		return nil, progressionOutput{}, fmt.Errorf("failed to detect progression: %w", err)
	}
	balance, err := s.svc.Balance(user)
	if err != nil {
		return nil, progressionOutput{}, fmt.Errorf("failed to check split balance: %w", err)
	}
	plateau, err := s.svc.Plateau(user)
	if err != nil {
		return nil, progressionOutput{}, fmt.Errorf("failed to detect plateau: %w", err)
	}
	return nil, progressionOutput{Progression: progression, Balance: balance, Plateau: plateau}, nil
}

func (s *Server) handleSyncStatus(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, interchange.SyncStatus, error) {
	if s.syncer == nil {
		return nil, interchange.SyncStatus{}, errors.New("no snapshot file configured")
	}
	status, err := s.syncer.Diff(s.userOr(input.UserID))
	if err != nil {
		return nil, interchange.SyncStatus{}, fmt.Errorf("failed to diff snapshot: %w", err)
	}
	return nil, *status, nil
}

func (s *Server) handleCoachReply(ctx context.Context, req *mcp.CallToolRequest, input replyInput) (*mcp.CallToolResult, replyOutput, error) {
	if input.Message == "" {
		return nil, replyOutput{}, errors.New("message is required")
	}
	return nil, replyOutput{Reply: s.svc.Reply(ctx, s.userOr(input.UserID), input.Message)}, nil
}
