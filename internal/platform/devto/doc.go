// Package devto publishes articles to dev.to through the Forem REST API.
//
// Articles are created with POST /articles and replaced with PUT /articles/{id}.
// The identifiers stored for a post are its slug and numeric article id.
package devto
