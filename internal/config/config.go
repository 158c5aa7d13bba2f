// Package config loads and validates the INI configuration file shared by
// the crawler and search server binaries.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// LinkExtractorKind selects which LinkExtractor implementation the crawler
// uses to discover outbound links.
type LinkExtractorKind string

const (
	LinkExtractorRegex LinkExtractorKind = "regex"
	LinkExtractorDOM   LinkExtractorKind = "dom"
)

// Config is the fully validated, immutable configuration for a crawlsearch
// process. Construct via Load or Builder.Build.
type Config struct {
	dbHost     string
	dbPort     int
	dbName     string
	dbUser     string
	dbPassword string

	startURL        string
	maxDepth        int
	timeout         time.Duration
	filterStopwords bool

	serverPort int

	logConsole bool
	logFile    bool
	logDir     string

	baseDelay     time.Duration
	jitter        time.Duration
	linkExtractor LinkExtractorKind
}

func (c Config) DBHost() string         { return c.dbHost }
func (c Config) DBPort() int            { return c.dbPort }
func (c Config) DBName() string         { return c.dbName }
func (c Config) DBUser() string         { return c.dbUser }
func (c Config) DBPassword() string     { return c.dbPassword }
func (c Config) StartURL() string       { return c.startURL }
func (c Config) MaxDepth() int          { return c.maxDepth }
func (c Config) Timeout() time.Duration { return c.timeout }
func (c Config) FilterStopwords() bool  { return c.filterStopwords }
func (c Config) ServerPort() int        { return c.serverPort }
func (c Config) LogConsole() bool       { return c.logConsole }
func (c Config) LogFile() bool          { return c.logFile }
func (c Config) LogDir() string         { return c.logDir }
func (c Config) BaseDelay() time.Duration    { return c.baseDelay }
func (c Config) Jitter() time.Duration       { return c.jitter }
func (c Config) LinkExtractor() LinkExtractorKind { return c.linkExtractor }

// DSN renders the PostgreSQL connection string for database/sql.Open with
// the pgx stdlib driver.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		c.dbHost, c.dbPort, c.dbName, c.dbUser, c.dbPassword)
}

// Builder assembles a Config field by field, mirroring the INI loader's
// section-by-section population, then validates everything in Build.
type Builder struct {
	c   Config
	err error
}

// NewBuilder returns a Builder with the expansion defaults already applied
// (politeness off, regex link extraction) so callers only need to set what
// their INI file actually specifies.
func NewBuilder() *Builder {
	return &Builder{c: Config{linkExtractor: LinkExtractorRegex}}
}

func (b *Builder) WithDatabase(host string, port int, name, user, password string) *Builder {
	b.c.dbHost, b.c.dbPort, b.c.dbName, b.c.dbUser, b.c.dbPassword = host, port, name, user, password
	return b
}

func (b *Builder) WithCrawler(startURL string, maxDepth int, timeout time.Duration, filterStopwords bool) *Builder {
	b.c.startURL, b.c.maxDepth, b.c.timeout, b.c.filterStopwords = startURL, maxDepth, timeout, filterStopwords
	return b
}

func (b *Builder) WithServerPort(port int) *Builder {
	b.c.serverPort = port
	return b
}

func (b *Builder) WithLogging(console, file bool, dir string) *Builder {
	b.c.logConsole, b.c.logFile, b.c.logDir = console, file, dir
	return b
}

func (b *Builder) WithPoliteness(baseDelay, jitter time.Duration) *Builder {
	b.c.baseDelay, b.c.jitter = baseDelay, jitter
	return b
}

func (b *Builder) WithLinkExtractor(kind LinkExtractorKind) *Builder {
	if kind != LinkExtractorRegex && kind != LinkExtractorDOM {
		b.err = fmt.Errorf("%w: %q", ErrInvalidLinkExtractor, kind)
		return b
	}
	b.c.linkExtractor = kind
	return b
}

// Build validates required fields and returns the finished Config.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	if b.c.dbHost == "" {
		return Config{}, fmt.Errorf("%w: database.host", ErrMissingKey)
	}
	if b.c.dbName == "" {
		return Config{}, fmt.Errorf("%w: database.name", ErrMissingKey)
	}
	if b.c.startURL == "" {
		return Config{}, fmt.Errorf("%w: crawler.start_url", ErrMissingKey)
	}
	if b.c.maxDepth < 0 {
		return Config{}, fmt.Errorf("%w: crawler.depth", ErrInvalidValue)
	}
	if b.c.serverPort <= 0 {
		return Config{}, fmt.Errorf("%w: server.port", ErrMissingKey)
	}
	return b.c, nil
}

// Load reads and validates the INI file at path.
func Load(path string) (Config, error) {
	sections, err := parseINI(path)
	if err != nil {
		return Config{}, err
	}

	b := NewBuilder()

	host, _ := get(sections, "database", "host")
	portStr, _ := get(sections, "database", "port")
	port, err := atoiRequired(portStr, "database.port")
	if err != nil {
		return Config{}, err
	}
	name, _ := get(sections, "database", "name")
	user, _ := get(sections, "database", "user")
	password, _ := get(sections, "database", "password")
	b.WithDatabase(host, port, name, user, password)

	startURL, _ := get(sections, "crawler", "start_url")
	depthStr, _ := get(sections, "crawler", "depth")
	depth, err := atoiRequired(depthStr, "crawler.depth")
	if err != nil {
		return Config{}, err
	}
	timeoutStr, _ := get(sections, "crawler", "timeout")
	timeoutMs, err := atoiRequired(timeoutStr, "crawler.timeout")
	if err != nil {
		return Config{}, err
	}
	filterStr, _ := get(sections, "crawler", "filter_stopwords")
	filter, err := parseBool(filterStr, "crawler.filter_stopwords")
	if err != nil {
		return Config{}, err
	}
	b.WithCrawler(startURL, depth, time.Duration(timeoutMs)*time.Millisecond, filter)

	serverPortStr, _ := get(sections, "server", "port")
	serverPort, err := atoiRequired(serverPortStr, "server.port")
	if err != nil {
		return Config{}, err
	}
	b.WithServerPort(serverPort)

	consoleStr, _ := get(sections, "logging", "console")
	console, err := parseBool(consoleStr, "logging.console")
	if err != nil {
		return Config{}, err
	}
	fileStr, _ := get(sections, "logging", "file")
	file, err := parseBool(fileStr, "logging.file")
	if err != nil {
		return Config{}, err
	}
	logDir, _ := get(sections, "logging", "log_dir")
	b.WithLogging(console, file, logDir)

	baseDelayMs, hasBaseDelay := get(sections, "crawler", "base_delay_ms")
	jitterMs, hasJitter := get(sections, "crawler", "jitter_ms")
	if hasBaseDelay || hasJitter {
		bd, err := atoiOptional(baseDelayMs, "crawler.base_delay_ms")
		if err != nil {
			return Config{}, err
		}
		jt, err := atoiOptional(jitterMs, "crawler.jitter_ms")
		if err != nil {
			return Config{}, err
		}
		b.WithPoliteness(time.Duration(bd)*time.Millisecond, time.Duration(jt)*time.Millisecond)
	}

	if kind, ok := get(sections, "crawler", "link_extractor"); ok && kind != "" {
		b.WithLinkExtractor(LinkExtractorKind(kind))
	}

	return b.Build()
}

func atoiRequired(s, key string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return n, nil
}

func atoiOptional(s, key string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return n, nil
}

func parseBool(s, key string) (bool, error) {
	if s == "" {
		return false, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return b, nil
}
