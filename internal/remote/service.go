// Package remote defines the social-platform abstraction the bot polls
// and replies through, and implements it for Reddit.
package remote

import (
	"context"

	"github.com/BTreeMap/DefineBot/internal/models"
)

// Service defines a pluggable comment platform abstraction.
// It supports authenticating, listing recent comments and submitting
// replies. Rate limiting surfaces as an error wrapping
// models.ErrRateLimited so the bot loop can detect it with errors.Is.
type Service interface {
	// Authenticate logs in and returns the bot's own identity.
	Authenticate(ctx context.Context) (models.Identity, error)

	// ListComments fetches up to limit recent comments from the given
	// source selector (e.g. a multireddit like "all-suicidewatch").
	ListComments(ctx context.Context, sources string, limit int) ([]models.Comment, error)

	// SubmitReply posts text as a reply to the item addressed by
	// parentFullname and returns the created comment.
	SubmitReply(ctx context.Context, parentFullname string, text string) (*models.Comment, error)
}
