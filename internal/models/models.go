// Package models defines the core data structures for DefineBot.
//
// It includes the comment, identity and definition types shared across
// modules, along with the sentinel errors used to classify remote
// failures.
package models

import "errors"

// Error variables for better error handling and testability
var (
	// ErrRateLimited indicates the remote platform refused a call because
	// the bot exceeded its request budget. The bot loop reacts by pausing
	// before the next poll cycle; it is never fatal.
	ErrRateLimited = errors.New("rate limited by remote service")
	// ErrNotFound indicates a definition lookup produced no content.
	// It is a normal negative result, not a failure.
	ErrNotFound = errors.New("no definition found")
	// ErrAuthExhausted indicates authentication failed more times than the
	// configured attempt cap allows. It is the only error that terminates
	// the process abnormally.
	ErrAuthExhausted = errors.New("authentication attempts exhausted")
)

// Identity is the authenticated account the bot posts as.
type Identity struct {
	Username string `json:"username"`
}

// Comment is a single comment retrieved from the remote platform.
type Comment struct {
	// ID is the bare comment identifier, used as the dedup key.
	ID string `json:"id"`
	// Fullname is the platform-prefixed identifier (e.g. "t1_<id>")
	// used to address the comment as a reply target.
	Fullname string `json:"fullname"`
	Author   string `json:"author"`
	Body     string `json:"body"`
}

// Definition is the structured result of a dictionary lookup.
// Fields hold raw markup fragments; formatting is the formatter's job.
type Definition struct {
	// Headword is the markup fragment containing the word and its
	// inflections, as extracted from the source page.
	Headword string `json:"headword"`
	// WordClass is the part of speech heading (Noun, Verb, ...).
	WordClass string `json:"word_class"`
	// Body is the markup fragment containing the ordered definition list.
	Body string `json:"body"`
	// SourceURL is the page the definition was extracted from.
	SourceURL string `json:"source_url"`
}

// PendingRequest is a matched comment awaiting lookup and reply.
// It exists only within a single poll cycle and is never persisted.
type PendingRequest struct {
	Comment Comment
	Query   string
}
