// Package pagination implements the newest-first keyset cursors used by the
// product catalogue and order history listings.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultLimit fills a four-column product grid.
	DefaultLimit = 24
	// MaxLimit caps a single page.
	MaxLimit = 96
)

// Params is what a listing endpoint accepts: a page size and the opaque
// cursor returned with the previous page.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the position of the last row of a page. Rows are ordered by
// created_at then id, both descending, so the id breaks ties between rows
// created in the same instant.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer asks for one extra row so the caller can tell whether a
// next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor returns a query-string safe token.
func EncodeCursor(cursor Cursor) string {
	payload := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + cursor.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a token from EncodeCursor. An empty token means the
// first page and yields a nil cursor.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	stamp, rawID, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}

// NewestFirst orders qb by created_at and id descending and, when cursor is
// set, skips every row up to and including it.
func NewestFirst(qb *gorm.DB, cursor *Cursor) *gorm.DB {
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return qb.Order("created_at DESC").Order("id DESC")
}

// Trim cuts a page fetched with LimitWithBuffer down to size and returns the
// cursor of the next page, or "" on the last page.
func Trim[T any](records []T, limit int, position func(T) Cursor) ([]T, string) {
	size := NormalizeLimit(limit)
	if len(records) <= size {
		return records, ""
	}
	records = records[:size]
	return records, EncodeCursor(position(records[size-1]))
}
