// ABOUTME: MCP resource implementations for the coach.
// ABOUTME: Provides coach://recent and coach://summary for the configured user.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/coach/internal/aggregate"
)

const (
	recentURI  = "coach://recent"
	summaryURI = "coach://summary"
)

// recentResourceEntries bounds coach://recent.
const recentResourceEntries = 7

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Entries",
		Description: "Last 7 logged days with the recent analysis",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Coach Summary Dashboard",
		Description: "Profile, entry stats, weekly summary, and split balance",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	entries, err := s.svc.Entries(s.user, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	if len(entries) > recentResourceEntries {
		entries = entries[:recentResourceEntries]
	}

	analysis, err := s.svc.Recent(s.user)
	if err != nil {
		return nil, fmt.Errorf("failed to analyse entries: %w", err)
	}

	return jsonResource(recentURI, map[string]any{
		"user_id":  s.user,
		"entries":  viewEntries(entries),
		"analysis": analysis,
		"text":     analysis.Text(),
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	profile, err := s.svc.Profile(s.user)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	stats, err := s.svc.Stats(s.user)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	balance, err := s.svc.Balance(s.user)
	if err != nil {
		return nil, fmt.Errorf("failed to check split balance: %w", err)
	}

	result := map[string]any{
		"profile": viewProfile(profile),
		"stats":   stats,
		"balance": balance,
	}

	weekly, err := s.svc.Weekly(s.user)
	switch {
	case errors.Is(err, aggregate.ErrInsufficientData):
		result["weekly"] = nil
	case err != nil:
		return nil, fmt.Errorf("failed to summarise week: %w", err)
	default:
		result["weekly"] = weekly
	}

	return jsonResource(summaryURI, result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
