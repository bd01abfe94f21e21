package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dvach/internal/api"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

const (
	DefaultCommentWidth    = 80
	DefaultRequestInterval = 500
	DefaultTimeoutSec      = 30
)

var exportFormats = map[string]bool{"csv": true, "json": true, "sqlite": true}

type Config struct {
	Board        string
	Thread       string
	CommentWidth int
	BaseURL      string
	Download     string
	// Plain prints the board list instead of starting the interactive
	// session.
	Plain                 bool
	Theme                 Theme
	RequestIntervalMillis int
	TimeoutSec            int
	UserAgent             string
	ExportFormat          string
	ExportOut             string
	ShowVersion           bool

	// ConfigPath is the YAML file that was loaded, if any.
	ConfigPath string
}

// fileConfig is the YAML layout of the config file. Pointers tell "unset"
// from zero.
type fileConfig struct {
	CommentWidth          *int   `yaml:"comment_width"`
	BaseURL               string `yaml:"base_url"`
	Theme                 string `yaml:"theme"`
	RequestIntervalMillis *int   `yaml:"request_interval_ms"`
	TimeoutSec            *int   `yaml:"timeout_sec"`
	UserAgent             string `yaml:"user_agent"`
	ExportFormat          string `yaml:"export_format"`
	ExportOut             string `yaml:"export_out"`
}

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

func Load() (*Config, error) {
	return Parse(os.Args[1:], os.Getenv, os.Stderr)
}

// Parse builds the configuration from defaults, the YAML file, the
// environment and args, later sources overriding earlier ones. Positional
// arguments (board, thread) may appear between flags.
func Parse(args []string, getenv func(string) string, errOut io.Writer) (*Config, error) {
	cfg := &Config{
		CommentWidth:          DefaultCommentWidth,
		BaseURL:               api.DefaultBaseURL,
		Theme:                 ThemeDark,
		RequestIntervalMillis: DefaultRequestInterval,
		TimeoutSec:            DefaultTimeoutSec,
	}

	path, explicit := configPath(args, getenv)
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(getenv)

	fs := flag.NewFlagSet("dvach", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(errOut, "usage: dvach [flags] [board [thread]]")
		fs.PrintDefaults()
	}

	var configFlag string
	fs.StringVar(&configFlag, "config", path, "path to YAML config file")
	fs.IntVar(&cfg.CommentWidth, "comment-width", cfg.CommentWidth, "column width of rendered comments")
	fs.IntVar(&cfg.CommentWidth, "w", cfg.CommentWidth, "shorthand for --comment-width")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "service root URL")
	fs.StringVar(&cfg.Download, "download", "", "download the file at `path` (relative to the base URL) to stdout")
	fs.BoolVar(&cfg.Plain, "plain", false, "print the board list and exit")
	theme := string(cfg.Theme)
	fs.StringVar(&theme, "theme", theme, "theme: dark|light")
	fs.IntVar(&cfg.RequestIntervalMillis, "request-interval-ms", cfg.RequestIntervalMillis, "minimum delay between requests to the service (0=off)")
	fs.IntVar(&cfg.TimeoutSec, "timeout-sec", cfg.TimeoutSec, "HTTP request timeout in seconds")
	fs.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header override")
	fs.StringVar(&cfg.ExportFormat, "export", cfg.ExportFormat, "write listed entries to a file instead of printing: csv|json|sqlite")
	fs.StringVar(&cfg.ExportOut, "out", cfg.ExportOut, "output path for export")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return nil, err
	}
	cfg.Theme = Theme(theme)
	if len(positional) > 2 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[2:], " "))
	}
	if len(positional) > 0 {
		cfg.Board = strings.Trim(positional[0], "/")
	}
	if len(positional) > 1 {
		cfg.Thread = positional[1]
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// everything after "--" is positional
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// configPath finds the config file: --config, then $DVACH_CONFIG, then the
// per-user default when it exists.
func configPath(args []string, getenv func(string) string) (string, bool) {
	for i, a := range args {
		if a == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value, true
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
	}
	if p := getenv("DVACH_CONFIG"); p != "" {
		return p, true
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", false
	}
	p := filepath.Join(dir, "dvach", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, false
}

func (c *Config) loadFile(path string, explicit bool) error {
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if fc.CommentWidth != nil {
		c.CommentWidth = *fc.CommentWidth
	}
	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.Theme != "" {
		c.Theme = Theme(fc.Theme)
	}
	if fc.RequestIntervalMillis != nil {
		c.RequestIntervalMillis = *fc.RequestIntervalMillis
	}
	if fc.TimeoutSec != nil {
		c.TimeoutSec = *fc.TimeoutSec
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if fc.ExportFormat != "" {
		c.ExportFormat = fc.ExportFormat
	}
	if fc.ExportOut != "" {
		c.ExportOut = fc.ExportOut
	}
	c.ConfigPath = path
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	c.BaseURL = getenvDefault(getenv, "DVACH_BASE_URL", c.BaseURL)
	c.CommentWidth = getenvDefaultInt(getenv, "DVACH_COMMENT_WIDTH", c.CommentWidth)
	c.Theme = Theme(getenvDefault(getenv, "DVACH_THEME", string(c.Theme)))
	c.RequestIntervalMillis = getenvDefaultInt(getenv, "DVACH_REQUEST_INTERVAL_MS", c.RequestIntervalMillis)
	c.TimeoutSec = getenvDefaultInt(getenv, "DVACH_TIMEOUT_SEC", c.TimeoutSec)
	c.UserAgent = getenvDefault(getenv, "DVACH_USER_AGENT", c.UserAgent)
}

func (c *Config) validate() error {
	if c.CommentWidth < 1 {
		return fmt.Errorf("comment width must be positive, got %d", c.CommentWidth)
	}
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return fmt.Errorf("unknown theme %q (want dark or light)", c.Theme)
	}
	if c.ExportFormat != "" && !exportFormats[c.ExportFormat] {
		return fmt.Errorf("unknown export format %q (want csv, json or sqlite)", c.ExportFormat)
	}
	if c.ExportFormat != "" && c.ExportOut == "" {
		return errors.New("--export requires --out path")
	}
	if c.Thread != "" {
		if n, err := strconv.Atoi(c.Thread); err != nil || n <= 0 {
			return fmt.Errorf("thread must be a positive integer, got %q", c.Thread)
		}
	}
	if c.Download != "" && c.Board != "" {
		return errors.New("--download takes no board or thread")
	}
	if c.RequestIntervalMillis < 0 || c.TimeoutSec < 0 {
		return errors.New("intervals and timeouts must not be negative")
	}
	return nil
}

func getenvDefault(getenv func(string) string, k, d string) string {
	if v := getenv(k); v != "" {
		return v
	}
	return d
}

func getenvDefaultInt(getenv func(string) string, k string, d int) int {
	if v := getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMillis) * time.Millisecond
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Program is the command prefix printed in image retrieval hints. It
// carries --base-url when the service root is not the default one.
func (c *Config) Program() string {
	if strings.TrimRight(c.BaseURL, "/") == api.DefaultBaseURL {
		return "dvach"
	}
	return "dvach --base-url " + shellQuote(c.BaseURL)
}

func (c *Config) String() string {
	return fmt.Sprintf("board=%s thread=%s width=%d base=%s theme=%s config=%s", c.Board, c.Thread, c.CommentWidth, c.BaseURL, c.Theme, c.ConfigPath)
}

// shellQuote single-quotes s unless every byte is safe in a POSIX shell
// word.
func shellQuote(s string) string {
	safe := s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:@%+=,", r))
	}) < 0
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
