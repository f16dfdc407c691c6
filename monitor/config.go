package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/boardwatch/boardwatch/monitor/internal/fingerprint"
	"github.com/boardwatch/boardwatch/report"
)

// Mail delivery modes.
const (
	MailOff      = "off"      // never send
	MailAuto     = "auto"     // send when config is complete, warn otherwise
	MailRequired = "required" // incomplete config or send failure is fatal
)

// Config configures a monitor Service.
type Config struct {
	// DistrictURLs are district pages scraped for document links
	// (minutes index, BOE landing page).
	DistrictURLs []string `yaml:"district_urls"`
	// BoardDocsURL is the public entry page of the hosted portal.
	// Empty = skip the portal.
	BoardDocsURL string `yaml:"boarddocs_url"`

	// MinYear drops documents whose inferred meeting year is older.
	// 0 = no filter.
	MinYear int `yaml:"min_year"`
	// BackfillStart overrides the first-run backfill window start.
	// Zero = BackfillEpoch.
	BackfillStart time.Time `yaml:"backfill_start"`
	// SnippetLength is the target snippet size in characters. Default: 200.
	SnippetLength int `yaml:"snippet_length"`
	// FingerprintTruncation bounds the snippet prefix hashed into the
	// fingerprint. Default: 160. Changing it orphans existing state.
	FingerprintTruncation int `yaml:"fingerprint_truncation"`
	// DisableDedupe reports every mention regardless of seen state.
	DisableDedupe bool `yaml:"disable_dedupe"`

	// StatePath is the seen-state JSON file. Default: state/seen.json.
	StatePath string `yaml:"state_path"`
	// OutputDir receives last_report.html and report.csv. Default: out.
	OutputDir string `yaml:"output_dir"`
	// RunLogPath is the SQLite run log. Empty = default out/runs.db;
	// "off" disables the run log.
	RunLogPath string `yaml:"runlog_path"`

	// MailMode is off, auto or required. Default: auto.
	MailMode string            `yaml:"mail_mode"`
	Mail     report.MailConfig `yaml:"mail"`

	// UserAgent identifies the crawler. Default: boardwatch/1.0.
	UserAgent string `yaml:"user_agent"`
	// UseBrowser renders the portal with headless Chrome instead of the
	// plain fetcher, for script-assembled pages.
	UseBrowser bool `yaml:"use_browser"`
	// FetchDelay is the courtesy pause between requests. Default: 2s.
	FetchDelay time.Duration `yaml:"fetch_delay"`
	// FetchTimeout bounds a single request. Default: 60s.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// MaxFetchBytes caps a response body. Default: 10 MB.
	MaxFetchBytes int64 `yaml:"max_fetch_bytes"`
	// RespectRobots gates fetches by robots.txt. Off by default.
	RespectRobots bool `yaml:"respect_robots"`

	// MaxBoardDocsPages bounds the portal crawl frontier. Default: 8.
	MaxBoardDocsPages int `yaml:"max_boarddocs_pages"`
	// MaxBoardDocsFiles bounds collected portal attachments. Default: 50.
	MaxBoardDocsFiles int `yaml:"max_boarddocs_files"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.SnippetLength <= 0 {
		c.SnippetLength = 200
	}
	if c.FingerprintTruncation <= 0 {
		c.FingerprintTruncation = fingerprint.DefaultSnippetTruncation
	}
	if c.StatePath == "" {
		c.StatePath = "state/seen.json"
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.RunLogPath == "" {
		c.RunLogPath = "out/runs.db"
	}
	if c.MailMode == "" {
		c.MailMode = MailAuto
	}
	if c.UserAgent == "" {
		c.UserAgent = "boardwatch/1.0"
	}
	if c.MaxBoardDocsPages <= 0 {
		c.MaxBoardDocsPages = 8
	}
	if c.MaxBoardDocsFiles <= 0 {
		c.MaxBoardDocsFiles = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("monitor: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("monitor: parse config: %w", err)
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// ApplyEnv fills mail settings from the conventional environment names.
// Environment values win over file values so deployments can keep
// credentials out of the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("REPORT_TO"); v != "" {
		c.Mail.To = splitAddrs(v)
	}
	if v := os.Getenv("REPORT_FROM"); v != "" {
		c.Mail.From = v
	} else if v := os.Getenv("MAIL_FROM"); v != "" && c.Mail.From == "" {
		c.Mail.From = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Mail.Port = port
		}
	}
	if v := firstEnv("SMTP_USER", "SMTP_USERNAME"); v != "" {
		c.Mail.User = v
	}
	if v := firstEnv("SMTP_PASS", "SMTP_PASSWORD"); v != "" {
		c.Mail.Pass = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitAddrs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
