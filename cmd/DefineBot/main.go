package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BTreeMap/DefineBot/internal/bot"
	"github.com/BTreeMap/DefineBot/internal/lockfile"
	"github.com/BTreeMap/DefineBot/internal/lookup"
	"github.com/BTreeMap/DefineBot/internal/models"
	"github.com/BTreeMap/DefineBot/internal/remote"
	"github.com/BTreeMap/DefineBot/internal/store"
	"github.com/BTreeMap/DefineBot/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for DefineBot state data
	DefaultStateDir = "/var/lib/definebot"
	// DefaultCacheFileName is the default processed-comment cache filename
	DefaultCacheFileName = "processed_comments"
)

// DefaultFooter is appended to every reply unless overridden.
const DefaultFooter = "\n\n---\n\n^(Request a definition using `!define <word>`.)"

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	// One bot instance per cache path: the cache file has a single writer.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	cacheStore, err := buildCacheStore(*flags.cacheDSN)
	if err != nil {
		slog.Error("Failed to initialize cache store", "error", err)
		os.Exit(1)
	}
	defer cacheStore.Close()

	redditClient, err := remote.NewRedditClient(
		remote.WithCredentials(*flags.clientID, *flags.clientSecret, *flags.username, *flags.password),
		remote.WithUserAgent(*flags.userAgent),
	)
	if err != nil {
		slog.Error("Failed to initialize Reddit client", "error", err)
		os.Exit(1)
	}

	lookupService := lookup.NewMemo(lookup.NewWiktionaryClient(), lookup.DefaultMemoSize)

	b, err := bot.New(redditClient, lookupService, cacheStore, buildBotOptions(flags)...)
	if err != nil {
		slog.Error("Failed to initialize bot", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping DefineBot", "state_dir", *flags.stateDir, "sources", *flags.subreddits, "trigger", *flags.trigger)
	if err := b.Run(ctx); err != nil {
		if errors.Is(err, models.ErrAuthExhausted) {
			slog.Error("DefineBot stopped: authentication exhausted", "error", err)
		} else {
			slog.Error("DefineBot failed to run", "error", err)
		}
		lock.Release()
		os.Exit(1)
	}
	slog.Info("DefineBot exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir        string
	CacheDSN        string
	ClientID        string
	ClientSecret    string
	Username        string
	Password        string
	UserAgent       string
	Trigger         string
	Subreddits      string
	Footer          string
	RetrievalLimit  int
	CacheCapacity   int
	Backoff         string
	IdlePause       string
	AuthRetryDelay  string
	MaxAuthAttempts int
}

// Flags holds command line flag values
type Flags struct {
	stateDir        *string
	cacheDSN        *string
	clientID        *string
	clientSecret    *string
	username        *string
	password        *string
	userAgent       *string
	trigger         *string
	subreddits      *string
	footer          *string
	retrievalLimit  *int
	cacheCapacity   *int
	backoff         *string
	idlePause       *string
	authRetryDelay  *string
	maxAuthAttempts *int
}

// initializeLogger sets up structured logging on stdout.
// DEFINEBOT_DEBUG=true lowers the level to debug.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEFINEBOT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:        os.Getenv("DEFINEBOT_STATE_DIR"),
		CacheDSN:        os.Getenv("DEFINEBOT_CACHE_DSN"),
		ClientID:        os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret:    os.Getenv("REDDIT_CLIENT_SECRET"),
		Username:        os.Getenv("REDDIT_USERNAME"),
		Password:        os.Getenv("REDDIT_PASSWORD"),
		UserAgent:       os.Getenv("REDDIT_USER_AGENT"),
		Trigger:         os.Getenv("DEFINEBOT_TRIGGER"),
		Subreddits:      os.Getenv("DEFINEBOT_SUBREDDITS"),
		Footer:          os.Getenv("DEFINEBOT_FOOTER"),
		RetrievalLimit:  util.ParseIntEnv("DEFINEBOT_RETRIEVAL_LIMIT", bot.DefaultRetrievalLimit),
		CacheCapacity:   util.ParseIntEnv("DEFINEBOT_CACHE_CAPACITY", 0),
		Backoff:         os.Getenv("DEFINEBOT_BACKOFF"),
		IdlePause:       os.Getenv("DEFINEBOT_IDLE_PAUSE"),
		AuthRetryDelay:  os.Getenv("DEFINEBOT_AUTH_RETRY_DELAY"),
		MaxAuthAttempts: util.ParseIntEnv("DEFINEBOT_MAX_AUTH_ATTEMPTS", 0),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No DEFINEBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.CacheDSN == "" {
		config.CacheDSN = filepath.Join(config.StateDir, DefaultCacheFileName)
		slog.Debug("No cache DSN provided, defaulting to flat file", "cache_path", config.CacheDSN)
	}
	if config.Trigger == "" {
		config.Trigger = bot.DefaultTriggerPhrase
	}
	if config.Subreddits == "" {
		config.Subreddits = bot.DefaultSources
	}
	if config.Footer == "" {
		config.Footer = DefaultFooter
	}

	slog.Debug("environment variables loaded",
		"DEFINEBOT_STATE_DIR", config.StateDir,
		"DEFINEBOT_CACHE_DSN", config.CacheDSN,
		"REDDIT_CLIENT_ID_SET", config.ClientID != "",
		"REDDIT_USERNAME", config.Username,
		"DEFINEBOT_TRIGGER", config.Trigger,
		"DEFINEBOT_SUBREDDITS", config.Subreddits,
		"DEFINEBOT_RETRIEVAL_LIMIT", config.RetrievalLimit)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:        flag.String("state-dir", config.StateDir, "state directory for DefineBot data (overrides $DEFINEBOT_STATE_DIR)"),
		cacheDSN:        flag.String("cache-dsn", config.CacheDSN, "processed-comment cache location: file path, SQLite file or Postgres DSN (overrides $DEFINEBOT_CACHE_DSN)"),
		clientID:        flag.String("client-id", config.ClientID, "Reddit script-app client id (overrides $REDDIT_CLIENT_ID)"),
		clientSecret:    flag.String("client-secret", config.ClientSecret, "Reddit script-app client secret (overrides $REDDIT_CLIENT_SECRET)"),
		username:        flag.String("username", config.Username, "Reddit account username (overrides $REDDIT_USERNAME)"),
		password:        flag.String("password", config.Password, "Reddit account password (overrides $REDDIT_PASSWORD)"),
		userAgent:       flag.String("user-agent", config.UserAgent, "User-Agent for Reddit API calls (overrides $REDDIT_USER_AGENT)"),
		trigger:         flag.String("trigger", config.Trigger, "trigger phrase marking a definition request (overrides $DEFINEBOT_TRIGGER)"),
		subreddits:      flag.String("subreddits", config.Subreddits, "subreddit selector to poll (overrides $DEFINEBOT_SUBREDDITS)"),
		footer:          flag.String("footer", config.Footer, "footer appended to every reply (overrides $DEFINEBOT_FOOTER)"),
		retrievalLimit:  flag.Int("retrieval-limit", config.RetrievalLimit, "maximum comments fetched per poll cycle (overrides $DEFINEBOT_RETRIEVAL_LIMIT)"),
		cacheCapacity:   flag.Int("cache-capacity", config.CacheCapacity, "processed-comment cache size, 0 for the built-in default (overrides $DEFINEBOT_CACHE_CAPACITY)"),
		backoff:         flag.String("backoff", config.Backoff, "pause after a rate-limit signal, e.g. 2m (overrides $DEFINEBOT_BACKOFF)"),
		idlePause:       flag.String("idle-pause", config.IdlePause, "pause between poll cycles, e.g. 1s (overrides $DEFINEBOT_IDLE_PAUSE)"),
		authRetryDelay:  flag.String("auth-retry-delay", config.AuthRetryDelay, "wait between failed authentication attempts (overrides $DEFINEBOT_AUTH_RETRY_DELAY)"),
		maxAuthAttempts: flag.Int("max-auth-attempts", config.MaxAuthAttempts, "authentication attempt cap, 0 for unlimited (overrides $DEFINEBOT_MAX_AUTH_ATTEMPTS)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"cacheDSN", *flags.cacheDSN,
		"clientIDSet", *flags.clientID != "",
		"username", *flags.username,
		"trigger", *flags.trigger,
		"subreddits", *flags.subreddits,
		"retrievalLimit", *flags.retrievalLimit,
		"cacheCapacity", *flags.cacheCapacity,
		"maxAuthAttempts", *flags.maxAuthAttempts)

	return flags
}

// buildCacheStore selects the cache backend from the DSN shape.
func buildCacheStore(dsn string) (store.CacheStore, error) {
	switch store.DetectDSNType(dsn) {
	case store.DSNTypePostgres:
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL cache store", "dsn_set", true)
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	case store.DSNTypeSQLite:
		slog.Debug("Detected SQLite DSN, configuring SQLite cache store", "db_path", dsn)
		return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
	default:
		slog.Debug("Configuring flat-file cache store", "path", dsn)
		return store.NewFileStore(store.WithFilePath(dsn))
	}
}

// buildBotOptions constructs bot configuration options from parsed flags.
func buildBotOptions(flags Flags) []bot.Option {
	opts := []bot.Option{
		bot.WithTriggerPhrase(*flags.trigger),
		bot.WithSources(*flags.subreddits),
		bot.WithFooter(*flags.footer),
		bot.WithRetrievalLimit(*flags.retrievalLimit),
		bot.WithMaxAuthAttempts(*flags.maxAuthAttempts),
	}
	if *flags.cacheCapacity > 0 {
		opts = append(opts, bot.WithCacheCapacity(*flags.cacheCapacity))
	}
	if d := parseDurationFlag("backoff", *flags.backoff); d > 0 {
		opts = append(opts, bot.WithBackoff(d))
	}
	if d := parseDurationFlag("idle-pause", *flags.idlePause); d > 0 {
		opts = append(opts, bot.WithIdlePause(d))
	}
	if d := parseDurationFlag("auth-retry-delay", *flags.authRetryDelay); d > 0 {
		opts = append(opts, bot.WithAuthRetryDelay(d))
	}
	return opts
}

// parseDurationFlag parses a duration flag value, returning 0 (option
// omitted, built-in default applies) for empty or invalid input.
func parseDurationFlag(name, value string) time.Duration {
	if value == "" {
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration flag, using built-in default", "flag", name, "value", value)
		return 0
	}
	return d
}
