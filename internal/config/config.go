package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Optional page from which links are discovered. Empty when URLs are supplied manually.
	seedURL string
	// URLs tested as-is when no crawl is wanted
	manualURLs []string
	// Maximum number of hyperlink hops from the seed. Pages at this depth are never fetched.
	maxDepth int
	// Maximum number of links a crawl may accept
	maxLinks int

	//===============
	// Politeness
	//===============
	// Minimum spacing between two crawl fetches
	politenessDelay time.Duration
	// Skip links disallowed by the host's robots.txt
	respectRobots bool

	//===============
	// HTTP
	//===============
	// Timeout of a single crawl or analyzer page fetch
	crawlTimeout time.Duration
	// Timeout of a single status probe
	probeTimeout time.Duration
	// User agent sent with every request
	userAgent string
	// Skip TLS certificate verification. Off unless explicitly enabled.
	insecureSkipVerify bool

	//===============
	// Concurrency
	//===============
	// Worker pool size of the prober
	probeConcurrency int
	// Worker pool size of each analyzer
	analyzerConcurrency int

	//===============
	// Analysis
	//===============
	// Number of healthy pages each analyzer inspects
	maxAnalyzerPages int
	// Enabled analyzers, by name
	analyzers []string

	//===============
	// Output
	//===============
	// Directory in which reports are written
	outputDir string
	// Report format: json or csv
	reportFormat string
	// SQLite file holding run history. Empty disables history.
	dbPath string
	// Address the HTTP API listens on
	listenAddr string
}

// settings is the validated view of a Config.
type settings struct {
	MaxDepth            int           `validate:"gte=0"`
	MaxLinks            int           `validate:"gte=1"`
	PolitenessDelay     time.Duration `validate:"gte=0"`
	CrawlTimeout        time.Duration `validate:"gt=0"`
	ProbeTimeout        time.Duration `validate:"gt=0"`
	UserAgent           string        `validate:"required"`
	ProbeConcurrency    int           `validate:"gte=1,lte=200"`
	AnalyzerConcurrency int           `validate:"gte=1,lte=100"`
	MaxAnalyzerPages    int           `validate:"gte=0"`
	Analyzers           []string      `validate:"dive,oneof=seo accessibility buttons performance"`
	OutputDir           string        `validate:"required"`
	ReportFormat        string        `validate:"oneof=json csv"`
	ListenAddr          string        `validate:"required"`
}

type configDTO struct {
	SeedURL             string   `json:"seedUrl,omitempty" yaml:"seedUrl,omitempty"`
	ManualURLs          []string `json:"urls,omitempty" yaml:"urls,omitempty"`
	MaxDepth            *int     `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
	MaxLinks            int      `json:"maxLinks,omitempty" yaml:"maxLinks,omitempty"`
	PolitenessDelay     string   `json:"politenessDelay,omitempty" yaml:"politenessDelay,omitempty"`
	RespectRobots       bool     `json:"respectRobots,omitempty" yaml:"respectRobots,omitempty"`
	CrawlTimeout        string   `json:"crawlTimeout,omitempty" yaml:"crawlTimeout,omitempty"`
	ProbeTimeout        string   `json:"probeTimeout,omitempty" yaml:"probeTimeout,omitempty"`
	UserAgent           string   `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	InsecureSkipVerify  bool     `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
	ProbeConcurrency    int      `json:"probeConcurrency,omitempty" yaml:"probeConcurrency,omitempty"`
	AnalyzerConcurrency int      `json:"analyzerConcurrency,omitempty" yaml:"analyzerConcurrency,omitempty"`
	MaxAnalyzerPages    *int     `json:"maxAnalyzerPages,omitempty" yaml:"maxAnalyzerPages,omitempty"`
	Analyzers           []string `json:"analyzers,omitempty" yaml:"analyzers,omitempty"`
	OutputDir           string   `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	ReportFormat        string   `json:"reportFormat,omitempty" yaml:"reportFormat,omitempty"`
	DBPath              string   `json:"dbPath,omitempty" yaml:"dbPath,omitempty"`
	ListenAddr          string   `json:"listenAddr,omitempty" yaml:"listenAddr,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	if dto.SeedURL != "" {
		cfg.seedURL = dto.SeedURL
	}
	cfg.manualURLs = dto.ManualURLs
	// depth 0 and zero analyzer pages are meaningful, so presence decides
	if dto.MaxDepth != nil {
		cfg.maxDepth = *dto.MaxDepth
	}
	if dto.MaxLinks != 0 {
		cfg.maxLinks = dto.MaxLinks
	}

	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"politenessDelay", dto.PolitenessDelay, &cfg.politenessDelay},
		{"crawlTimeout", dto.CrawlTimeout, &cfg.crawlTimeout},
		{"probeTimeout", dto.ProbeTimeout, &cfg.probeTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %s", ErrConfigParsingFail, d.name, err.Error())
		}
		*d.field = parsed
	}

	cfg.respectRobots = dto.RespectRobots
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	cfg.insecureSkipVerify = dto.InsecureSkipVerify
	if dto.ProbeConcurrency != 0 {
		cfg.probeConcurrency = dto.ProbeConcurrency
	}
	if dto.AnalyzerConcurrency != 0 {
		cfg.analyzerConcurrency = dto.AnalyzerConcurrency
	}
	if dto.MaxAnalyzerPages != nil {
		cfg.maxAnalyzerPages = *dto.MaxAnalyzerPages
	}
	if dto.Analyzers != nil {
		cfg.analyzers = dto.Analyzers
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}
	if dto.ReportFormat != "" {
		cfg.reportFormat = strings.ToLower(dto.ReportFormat)
	}
	cfg.dbPath = dto.DBPath
	if dto.ListenAddr != "" {
		cfg.listenAddr = dto.ListenAddr
	}

	return cfg.Build()
}

// WithConfigFile loads a JSON or YAML config file on top of the defaults.
// The format is chosen by extension: .yaml and .yml are YAML, anything else JSON.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		err = json.Unmarshal(configContent, &cfgDTO)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// DefaultUserAgent is overridden by the build package at startup.
var DefaultUserAgent = "webqa/dev"

// WithDefault creates a Config populated with default values.
func WithDefault() *Config {
	defaultConfig := Config{
		maxDepth:            2,
		maxLinks:            500,
		politenessDelay:     500 * time.Millisecond,
		crawlTimeout:        10 * time.Second,
		probeTimeout:        8 * time.Second,
		userAgent:           DefaultUserAgent,
		insecureSkipVerify:  false,
		probeConcurrency:    20,
		analyzerConcurrency: 10,
		maxAnalyzerPages:    3,
		analyzers:           []string{"buttons"},
		outputDir:           "output",
		reportFormat:        "json",
		dbPath:              "",
		listenAddr:          "127.0.0.1:8080",
	}
	return &defaultConfig
}

func (c *Config) WithSeedURL(seed string) *Config {
	c.seedURL = seed
	return c
}

func (c *Config) WithManualURLs(urls []string) *Config {
	c.manualURLs = urls
	return c
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithMaxLinks(links int) *Config {
	c.maxLinks = links
	return c
}

func (c *Config) WithPolitenessDelay(delay time.Duration) *Config {
	c.politenessDelay = delay
	return c
}

func (c *Config) WithRespectRobots(respect bool) *Config {
	c.respectRobots = respect
	return c
}

func (c *Config) WithCrawlTimeout(timeout time.Duration) *Config {
	c.crawlTimeout = timeout
	return c
}

func (c *Config) WithProbeTimeout(timeout time.Duration) *Config {
	c.probeTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithInsecureSkipVerify(skip bool) *Config {
	c.insecureSkipVerify = skip
	return c
}

func (c *Config) WithProbeConcurrency(n int) *Config {
	c.probeConcurrency = n
	return c
}

func (c *Config) WithAnalyzerConcurrency(n int) *Config {
	c.analyzerConcurrency = n
	return c
}

func (c *Config) WithMaxAnalyzerPages(n int) *Config {
	c.maxAnalyzerPages = n
	return c
}

func (c *Config) WithAnalyzers(names []string) *Config {
	c.analyzers = names
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithReportFormat(format string) *Config {
	c.reportFormat = strings.ToLower(format)
	return c
}

func (c *Config) WithDBPath(path string) *Config {
	c.dbPath = path
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.listenAddr = addr
	return c
}

var validate = validator.New()

// Build validates the config and returns a copy of it.
func (c *Config) Build() (Config, error) {
	err := validate.Struct(settings{
		MaxDepth:            c.maxDepth,
		MaxLinks:            c.maxLinks,
		PolitenessDelay:     c.politenessDelay,
		CrawlTimeout:        c.crawlTimeout,
		ProbeTimeout:        c.probeTimeout,
		UserAgent:           c.userAgent,
		ProbeConcurrency:    c.probeConcurrency,
		AnalyzerConcurrency: c.analyzerConcurrency,
		MaxAnalyzerPages:    c.maxAnalyzerPages,
		Analyzers:           c.analyzers,
		OutputDir:           c.outputDir,
		ReportFormat:        c.reportFormat,
		ListenAddr:          c.listenAddr,
	})
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}

	built := *c
	built.analyzers = append([]string(nil), c.analyzers...)
	built.manualURLs = append([]string(nil), c.manualURLs...)
	return built, nil
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", lowerFirst(e.Field()), formatValidationError(e)))
	}
	return strings.Join(msgs, "; ")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (c Config) SeedURL() string {
	return c.seedURL
}

func (c Config) ManualURLs() []string {
	urls := make([]string, len(c.manualURLs))
	copy(urls, c.manualURLs)
	return urls
}

func (c Config) MaxDepth() int {
	return c.maxDepth
}

func (c Config) MaxLinks() int {
	return c.maxLinks
}

func (c Config) PolitenessDelay() time.Duration {
	return c.politenessDelay
}

func (c Config) RespectRobots() bool {
	return c.respectRobots
}

func (c Config) CrawlTimeout() time.Duration {
	return c.crawlTimeout
}

func (c Config) ProbeTimeout() time.Duration {
	return c.probeTimeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) InsecureSkipVerify() bool {
	return c.insecureSkipVerify
}

func (c Config) ProbeConcurrency() int {
	return c.probeConcurrency
}

func (c Config) AnalyzerConcurrency() int {
	return c.analyzerConcurrency
}

func (c Config) MaxAnalyzerPages() int {
	return c.maxAnalyzerPages
}

func (c Config) Analyzers() []string {
	names := make([]string, len(c.analyzers))
	copy(names, c.analyzers)
	return names
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) ReportFormat() string {
	return c.reportFormat
}

func (c Config) DBPath() string {
	return c.dbPath
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}
