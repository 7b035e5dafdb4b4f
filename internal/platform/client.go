package platform

import (
	"context"

	"github.com/temirov/postsync/internal/document"
	"github.com/temirov/postsync/internal/publishrecord"
)

// Client publishes articles to one blog platform.
type Client interface {
	// Name is the key under which the platform's identifiers are stored in the publish record.
	Name() string
	// CreatePost publishes a new post and returns the identifiers the platform assigned to it.
	CreatePost(executionContext context.Context, article document.Article) (publishrecord.Identifiers, error)
	// UpdatePost replaces the post addressed by identifiers and returns its current identifiers.
	UpdatePost(executionContext context.Context, identifiers publishrecord.Identifiers, article document.Article) (publishrecord.Identifiers, error)
}
