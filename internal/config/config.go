// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken   string
	WebhookSecret string
	AppID         int64
	ReportRepo    string
	Location      *time.Location
	SheetPrefix   string
	ListenAddr    string
	DBPath        string
}

// Load reads configuration from environment variables and returns a validated
// Config. Required: CHECKLEDGER_GITHUB_TOKEN, CHECKLEDGER_APP_ID,
// CHECKLEDGER_REPORT_REPO. Optional with defaults: CHECKLEDGER_WEBHOOK_SECRET
// (empty disables signature validation), CHECKLEDGER_TIMEZONE (UTC),
// CHECKLEDGER_SHEET_PREFIX (staging-release), CHECKLEDGER_LISTEN_ADDR
// (127.0.0.1:8080), CHECKLEDGER_DB_PATH (checkledger.db).
func Load() (*Config, error) {
	token := os.Getenv("CHECKLEDGER_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("CHECKLEDGER_GITHUB_TOKEN is required")
	}

	appIDRaw := os.Getenv("CHECKLEDGER_APP_ID")
	if appIDRaw == "" {
		return nil, fmt.Errorf("CHECKLEDGER_APP_ID is required")
	}
	appID, err := strconv.ParseInt(appIDRaw, 10, 64)
	if err != nil || appID <= 0 {
		return nil, fmt.Errorf("CHECKLEDGER_APP_ID has invalid value %q: expected a positive integer", appIDRaw)
	}

	reportRepo := os.Getenv("CHECKLEDGER_REPORT_REPO")
	if reportRepo == "" {
		return nil, fmt.Errorf("CHECKLEDGER_REPORT_REPO is required")
	}
	if parts := strings.SplitN(reportRepo, "/", 2); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("CHECKLEDGER_REPORT_REPO has invalid value %q: expected owner/repo", reportRepo)
	}

	location := time.UTC
	if v, ok := os.LookupEnv("CHECKLEDGER_TIMEZONE"); ok && v != "" {
		parsed, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("CHECKLEDGER_TIMEZONE has invalid zone %q: %w", v, err)
		}
		location = parsed
	}

	sheetPrefix := "staging-release"
	if v, ok := os.LookupEnv("CHECKLEDGER_SHEET_PREFIX"); ok && v != "" {
		sheetPrefix = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("CHECKLEDGER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "checkledger.db"
	if v, ok := os.LookupEnv("CHECKLEDGER_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		GitHubToken:   token,
		WebhookSecret: os.Getenv("CHECKLEDGER_WEBHOOK_SECRET"),
		AppID:         appID,
		ReportRepo:    reportRepo,
		Location:      location,
		SheetPrefix:   sheetPrefix,
		ListenAddr:    listenAddr,
		DBPath:        dbPath,
	}, nil
}
