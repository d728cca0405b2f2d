// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Calls tool and resource handlers directly against a temp SQLite store.
package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/interchange"
	"github.com/harperreed/coach/internal/storage"
)

// setupTestServer creates a server over a test database in a temp directory.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	tmpDir := t.TempDir()
	db, err := storage.Open(filepath.Join(tmpDir, "coach.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc, err := coach.NewService(db, coach.Options{})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	server, err := NewServer(svc, interchange.NewSyncer(svc.Repo(), filepath.Join(tmpDir, "snapshot.json")), "yoel")
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func float(f float64) *float64 { return &f }

func logDays(t *testing.T, s *Server) {
	t.Helper()
	days := []logDayInput{
		{Date: "2025-01-11", TrainingDone: "Pull day", Energy: float(4), Nutrition: "oats"},
		{Date: "2025-01-12", TrainingDone: "Leg day - heavy", Energy: float(6), Soreness: "quads"},
		{Date: "2025-01-13", TrainingDone: "Push Day - Moderate", Energy: float(8), SleepHours: float(7.5),
			SleepQuality: float(8), StressLevel: float(3), Soreness: "none"},
	}
	for _, in := range days {
		if _, _, err := s.handleLogDay(context.Background(), &mcp.CallToolRequest{}, in); err != nil {
			t.Fatalf("log %s: %v", in.Date, err)
		}
	}
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.svc == nil {
		t.Error("Expected non-nil service")
	}

	if _, err := NewServer(nil, nil, "yoel"); err == nil {
		t.Error("Expected error without a service")
	}
}

func TestHandleLogDay(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     logDayInput
		wantErr   bool
		errSubstr string
		warnings  int
	}{
		{
			name:  "full day",
			input: logDayInput{Date: "2025-01-13", TrainingDone: "Push Day - Moderate", Energy: float(8), Soreness: "none"},
		},
		{
			name:     "out of range value dropped",
			input:    logDayInput{Date: "2025-01-14", Energy: float(14)},
			warnings: 1,
		},
		{
			name:      "missing date",
			input:     logDayInput{Energy: float(5)},
			wantErr:   true,
			errSubstr: "invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleLogDay(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.Entry.Date != tt.input.Date {
				t.Errorf("Date = %s, want %s", output.Entry.Date, tt.input.Date)
			}
			if output.Entry.ID == "" || output.Message == "" {
				t.Errorf("Expected ID and message, got %+v", output)
			}
			if len(output.Warnings) != tt.warnings {
				t.Errorf("Warnings = %v, want %d", output.Warnings, tt.warnings)
			}
		})
	}
}

func TestHandleLogDayDerivesFields(t *testing.T) {
	server := setupTestServer(t)
	_, out, err := server.handleLogDay(context.Background(), &mcp.CallToolRequest{}, logDayInput{
		UserID: "ana", Date: "2025-01-13", TrainingDone: "Push Day - Heavy", Soreness: "Shoulder, knee",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Entry.Split != "Push" || out.Entry.TrainingVolume != "high" {
		t.Errorf("derived fields = %s/%s", out.Entry.Split, out.Entry.TrainingVolume)
	}
	if strings.Join(out.Entry.Soreness, ",") != "knee,shoulder" {
		t.Errorf("Soreness = %v", out.Entry.Soreness)
	}
	if out.Entry.RecoveryScore != 4.5 {
		t.Errorf("RecoveryScore = %v, want 4.5", out.Entry.RecoveryScore)
	}
}

func TestHandleGetListDelete(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	logDays(t, server)

	_, got, err := server.handleGetEntry(ctx, &mcp.CallToolRequest{}, dateInput{Date: "2025-01-12"})
	if err != nil || !got.Found || got.Entry.Split != "Legs" {
		t.Fatalf("get_entry = %+v, %v", got, err)
	}

	_, list, err := server.handleListEntries(ctx, &mcp.CallToolRequest{}, listEntriesInput{Since: "2025-01-12"})
	if err != nil {
		t.Fatal(err)
	}
	if list.Count != 2 || list.Entries[0].Date != "2025-01-13" {
		t.Errorf("list_entries = %+v", list)
	}

	_, limited, _ := server.handleListEntries(ctx, &mcp.CallToolRequest{}, listEntriesInput{Limit: 1})
	if limited.Count != 1 {
		t.Errorf("limit ignored: %+v", limited)
	}

	_, del, err := server.handleDeleteEntry(ctx, &mcp.CallToolRequest{}, dateInput{Date: "2025-01-12"})
	if err != nil || !strings.Contains(del.Message, "Deleted") {
		t.Errorf("delete_entry = %+v, %v", del, err)
	}
	_, del, _ = server.handleDeleteEntry(ctx, &mcp.CallToolRequest{}, dateInput{Date: "2025-01-12"})
	if !strings.Contains(del.Message, "No entry") {
		t.Errorf("second delete = %+v", del)
	}

	_, got, err = server.handleGetEntry(ctx, &mcp.CallToolRequest{}, dateInput{Date: "2025-01-12"})
	if err != nil || got.Found {
		t.Errorf("deleted entry still found: %+v, %v", got, err)
	}
}

func TestHandleProfile(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, p, err := server.handleGetProfile(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil {
		t.Fatal(err)
	}
	if p.UserID != "yoel" || p.TrainingSplit != "Push/Pull/Legs" || p.DaysPerWeek != 4 {
		t.Errorf("default profile = %+v", p)
	}

	days := 5
	_, saved, err := server.handleSaveProfile(ctx, &mcp.CallToolRequest{}, saveProfileInput{
		TrainingSplit: "Upper/Lower", DaysPerWeek: &days, Goals: []string{"handstand"}, InjuryNotes: "shoulder",
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved.TrainingSplit != "Upper/Lower" || saved.DaysPerWeek != 5 {
		t.Errorf("saved = %+v", saved)
	}

	bad := 9
	if _, _, err := server.handleSaveProfile(ctx, &mcp.CallToolRequest{}, saveProfileInput{DaysPerWeek: &bad}); err == nil {
		t.Error("Expected error for days_per_week 9")
	}
}

func TestHandleAnalysisTools(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, weekly, err := server.handleWeeklySummary(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil || weekly.Summary != nil || weekly.Message == "" {
		t.Errorf("weekly with no data = %+v, %v", weekly, err)
	}

	logDays(t, server)

	_, recent, err := server.handleRecentAnalysis(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil || recent.Analysis.EntryCount != 3 || !strings.Contains(recent.Text, "Training frequency: 3 days") {
		t.Errorf("recent = %+v, %v", recent, err)
	}

	_, weekly, err = server.handleWeeklySummary(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil || weekly.Summary == nil || *weekly.Summary.AvgEnergy != 6 {
		t.Errorf("weekly = %+v, %v", weekly, err)
	}

	_, prog, err := server.handleProgression(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil {
		t.Fatal(err)
	}
	if prog.Balance == nil || prog.Balance.Imbalanced {
		t.Errorf("balance = %+v", prog.Balance)
	}
}

func TestHandleSyncStatus(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	logDays(t, server)

	_, status, err := server.handleSyncStatus(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil {
		t.Fatal(err)
	}
	if status.SnapshotExists || len(status.MissingFromSnapshot) != 3 {
		t.Errorf("status before export = %+v", status)
	}

	if _, err := server.syncer.ExportFile("yoel", server.syncer.Path()); err != nil {
		t.Fatal(err)
	}
	_, status, err = server.handleSyncStatus(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil || !status.InSync() {
		t.Errorf("status after export = %+v, %v", status, err)
	}
}

func TestHandleCoachReply(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, out, err := server.handleCoachReply(ctx, &mcp.CallToolRequest{}, replyInput{Message: "what should I eat?"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Reply, "protein") {
		t.Errorf("reply = %q", out.Reply)
	}

	if _, _, err := server.handleCoachReply(ctx, &mcp.CallToolRequest{}, replyInput{}); err == nil {
		t.Error("Expected error for empty message")
	}
}

func TestResources(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	logDays(t, server)

	res, err := server.handleRecentResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	var recent struct {
		Entries []entryView `json:"entries"`
		Text    string      `json:"text"`
	}
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &recent); err != nil {
		t.Fatal(err)
	}
	if len(recent.Entries) != 3 || res.Contents[0].URI != recentURI {
		t.Errorf("recent resource = %+v", recent)
	}

	res, err = server.handleSummaryResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	var summary map[string]json.RawMessage
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &summary); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"profile", "stats", "balance", "weekly"} {
		if _, ok := summary[key]; !ok {
			t.Errorf("summary missing %q", key)
		}
	}
}
