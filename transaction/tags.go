/*
tags.go - User-defined labels on transactions

PURPOSE:
  Tags are collaborators, not ledger participants: they never affect
  balance correctness. Names are case-insensitively unique, the slug is
  derived from the name, and deletion is a soft archive (archived_at)
  with the filter applied explicitly on every read path.

FIND-OR-CREATE:
  FindOrCreate is a single repository-style operation: insert with
  on-conflict-ignore on the case-insensitive name index, then read back
  the surviving row. Never a naive check-then-insert.
*/
package transaction

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TagID string

func NewTagID() TagID { return TagID(uuid.NewString()) }

// Tag is a soft-deleted label. ArchivedAt nil means active.
type Tag struct {
	ID         TagID
	Name       string
	Slug       string
	ArchivedAt *time.Time
	CreatedAt  time.Time
}

// Archived reports whether the tag is soft-deleted.
func (t Tag) Archived() bool { return t.ArchivedAt != nil }

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the canonical slug from a tag name.
func Slugify(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

// FindOrCreateTag returns the tag with the given name (case-insensitive),
// creating it if absent. Concurrent callers converge on one row via the
// store's unique index, mirroring the account registry's upsert-on-identity.
func FindOrCreateTag(ctx context.Context, s TagStore, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	candidate := Tag{
		ID:   NewTagID(),
		Name: name,
		Slug: Slugify(name),
	}
	if err := s.InsertTag(ctx, candidate); err != nil {
		return nil, err
	}
	return s.GetTagByName(ctx, name)
}
