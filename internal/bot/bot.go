// Package bot implements the comment-processing loop for DefineBot.
//
// A single worker authenticates, polls recent comments, filters them
// through the keyword matcher and the processed-comment cache, looks up
// definitions and submits replies. Rate-limit signals pause the loop;
// every other remote failure is isolated to the item or cycle it
// occurred in. On shutdown the cache is flushed to the configured store.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BTreeMap/DefineBot/internal/dedup"
	"github.com/BTreeMap/DefineBot/internal/format"
	"github.com/BTreeMap/DefineBot/internal/lookup"
	"github.com/BTreeMap/DefineBot/internal/match"
	"github.com/BTreeMap/DefineBot/internal/models"
	"github.com/BTreeMap/DefineBot/internal/remote"
	"github.com/BTreeMap/DefineBot/internal/store"
)

// Default configuration constants
const (
	// DefaultTriggerPhrase marks a comment as a definition request.
	DefaultTriggerPhrase = "!define"
	// DefaultRetrievalLimit is the maximum number of comments fetched per cycle.
	DefaultRetrievalLimit = 500
	// DefaultSources is the source selector polled for comments.
	DefaultSources = "all"
	// DefaultBackoff is the pause after a rate-limit signal.
	DefaultBackoff = 2 * time.Minute
	// DefaultIdlePause bounds the request rate between poll cycles.
	DefaultIdlePause = 1 * time.Second
	// DefaultAuthRetryDelay is the wait between failed authentication attempts.
	DefaultAuthRetryDelay = 60 * time.Second
)

// Opts holds configuration options for the bot loop.
type Opts struct {
	TriggerPhrase   string
	RetrievalLimit  int
	CacheCapacity   int
	Sources         string
	Footer          string
	Backoff         time.Duration
	IdlePause       time.Duration
	AuthRetryDelay  time.Duration
	MaxAuthAttempts int // 0 means unlimited
}

// Option defines a configuration option for the bot loop.
type Option func(*Opts)

// WithTriggerPhrase sets the keyword that marks a definition request.
func WithTriggerPhrase(phrase string) Option {
	return func(o *Opts) {
		o.TriggerPhrase = phrase
	}
}

// WithRetrievalLimit sets the maximum comments fetched per cycle.
func WithRetrievalLimit(limit int) Option {
	return func(o *Opts) {
		o.RetrievalLimit = limit
	}
}

// WithCacheCapacity sets the processed-comment cache size.
func WithCacheCapacity(capacity int) Option {
	return func(o *Opts) {
		o.CacheCapacity = capacity
	}
}

// WithSources sets the source selector to poll.
func WithSources(sources string) Option {
	return func(o *Opts) {
		o.Sources = sources
	}
}

// WithFooter sets the footer appended to every reply.
func WithFooter(footer string) Option {
	return func(o *Opts) {
		o.Footer = footer
	}
}

// WithBackoff sets the pause after a rate-limit signal.
func WithBackoff(d time.Duration) Option {
	return func(o *Opts) {
		o.Backoff = d
	}
}

// WithIdlePause sets the pause between poll cycles.
func WithIdlePause(d time.Duration) Option {
	return func(o *Opts) {
		o.IdlePause = d
	}
}

// WithAuthRetryDelay sets the wait between failed authentication attempts.
func WithAuthRetryDelay(d time.Duration) Option {
	return func(o *Opts) {
		o.AuthRetryDelay = d
	}
}

// WithMaxAuthAttempts caps authentication attempts; 0 retries forever.
func WithMaxAuthAttempts(n int) Option {
	return func(o *Opts) {
		o.MaxAuthAttempts = n
	}
}

// Bot is the single-worker comment-processing loop.
type Bot struct {
	remote    remote.Service
	lookup    lookup.Service
	store     store.CacheStore
	matcher   *match.Matcher
	formatter *format.Formatter
	cache     *dedup.Cache
	cfg       Opts

	identity models.Identity
}

// New creates a bot wired to the given remote platform, lookup service
// and cache store, applying any provided options for customization.
func New(remoteSvc remote.Service, lookupSvc lookup.Service, cacheStore store.CacheStore, opts ...Option) (*Bot, error) {
	cfg := Opts{
		TriggerPhrase:  DefaultTriggerPhrase,
		RetrievalLimit: DefaultRetrievalLimit,
		CacheCapacity:  dedup.DefaultCapacity,
		Sources:        DefaultSources,
		Backoff:        DefaultBackoff,
		IdlePause:      DefaultIdlePause,
		AuthRetryDelay: DefaultAuthRetryDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	matcher, err := match.New(cfg.TriggerPhrase)
	if err != nil {
		return nil, fmt.Errorf("invalid trigger phrase: %w", err)
	}
	if cfg.RetrievalLimit <= 0 {
		return nil, fmt.Errorf("retrieval limit must be positive, got %d", cfg.RetrievalLimit)
	}

	return &Bot{
		remote:    remoteSvc,
		lookup:    lookupSvc,
		store:     cacheStore,
		matcher:   matcher,
		formatter: format.New(cfg.Footer),
		cfg:       cfg,
	}, nil
}

// Run executes the bot until ctx is cancelled. It returns nil on a
// clean shutdown and an error wrapping models.ErrAuthExhausted when the
// configured authentication attempt cap is exhausted.
func (b *Bot) Run(ctx context.Context) error {
	b.restoreCache(ctx)

	if err := b.authenticate(ctx); err != nil {
		if errors.Is(err, models.ErrAuthExhausted) {
			return err
		}
		// Interrupted while waiting to retry; flush and leave cleanly.
		return b.flush()
	}

	slog.Info("Bot.Run: polling started",
		"sources", b.cfg.Sources,
		"trigger", b.matcher.Trigger(),
		"retrieval_limit", b.cfg.RetrievalLimit)

	for {
		if ctx.Err() != nil {
			return b.flush()
		}
		rateLimited := b.cycle(ctx)
		pause := b.cfg.IdlePause
		if rateLimited {
			slog.Warn("Bot.Run: rate limited, backing off", "pause", b.cfg.Backoff)
			pause = b.cfg.Backoff
		}
		if !b.sleep(ctx, pause) {
			return b.flush()
		}
	}
}

// restoreCache loads the persisted snapshot. Load failures degrade to
// an empty cache; duplicate replies after a lost cache are accepted.
func (b *Bot) restoreCache(ctx context.Context) {
	ids, err := b.store.Load(ctx)
	if err != nil {
		slog.Error("Bot.restoreCache: failed to load cache, starting empty", "error", err)
		ids = nil
	}
	b.cache = dedup.Restore(b.cfg.CacheCapacity, ids)
	slog.Info("Bot.restoreCache: cache restored", "entries", b.cache.Len(), "capacity", b.cfg.CacheCapacity)
}

// authenticate retries until it succeeds, ctx is cancelled, or the
// configured attempt cap is exhausted.
func (b *Bot) authenticate(ctx context.Context) error {
	attempt := 0
	for {
		identity, err := b.remote.Authenticate(ctx)
		if err == nil {
			b.identity = identity
			slog.Info("Bot.authenticate: authenticated", "username", identity.Username)
			return nil
		}
		attempt++
		slog.Error("Bot.authenticate: authentication failed", "error", err, "attempt", attempt)
		if b.cfg.MaxAuthAttempts > 0 && attempt >= b.cfg.MaxAuthAttempts {
			return fmt.Errorf("%w after %d attempts: %v", models.ErrAuthExhausted, attempt, err)
		}
		if !b.sleep(ctx, b.cfg.AuthRetryDelay) {
			return ctx.Err()
		}
	}
}

// cycle runs one poll pass and reports whether a rate-limit signal was
// observed during listing or submission.
func (b *Bot) cycle(ctx context.Context) bool {
	comments, err := b.remote.ListComments(ctx, b.cfg.Sources, b.cfg.RetrievalLimit)
	if err != nil {
		if errors.Is(err, models.ErrRateLimited) {
			return true
		}
		slog.Error("Bot.cycle: failed to list comments", "error", err)
		return false
	}

	for _, comment := range comments {
		if ctx.Err() != nil {
			return false
		}
		if comment.Author == b.identity.Username {
			continue
		}
		if b.cache.Contains(comment.ID) {
			continue
		}
		query, ok := b.matcher.Extract(comment.Body)
		if !ok {
			continue
		}
		// Admit before processing: if the lookup or reply fails, the
		// comment is still never reprocessed.
		b.cache.Admit(comment.ID)
		req := models.PendingRequest{Comment: comment, Query: strings.ToLower(query)}
		if b.process(ctx, req) {
			return true
		}
	}
	return false
}

// process handles one pending request and reports whether submission
// was rate limited. Every other failure is logged and absorbed.
func (b *Bot) process(ctx context.Context, req models.PendingRequest) bool {
	slog.Info("Bot.process: handling request", "comment_id", req.Comment.ID, "author", req.Comment.Author, "query", req.Query)

	def, err := b.lookup.Lookup(ctx, req.Query)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			slog.Info("Bot.process: no definition, skipping", "query", req.Query)
		} else {
			slog.Error("Bot.process: lookup failed", "query", req.Query, "error", err)
		}
		return false
	}

	// Defensive re-check against replying to our own comments.
	if req.Comment.Author == b.identity.Username {
		return false
	}

	text := b.formatter.Format(def)
	if _, err := b.remote.SubmitReply(ctx, req.Comment.Fullname, text); err != nil {
		if errors.Is(err, models.ErrRateLimited) {
			return true
		}
		slog.Error("Bot.process: failed to submit reply", "comment_id", req.Comment.ID, "error", err)
		return false
	}
	slog.Info("Bot.process: reply posted", "comment_id", req.Comment.ID, "query", req.Query)
	return false
}

// flush persists the cache snapshot on shutdown. Write failures are
// reported but never abort the shutdown.
func (b *Bot) flush() error {
	slog.Info("Bot.flush: persisting cache", "entries", b.cache.Len())
	if err := b.store.Save(context.Background(), b.cache.Snapshot()); err != nil {
		slog.Error("Bot.flush: failed to persist cache", "error", err)
	}
	return nil
}

// sleep waits for d or until ctx is cancelled, reporting whether the
// full duration elapsed.
func (b *Bot) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
