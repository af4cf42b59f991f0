// Package feed slices the ordered published-expert feed into cursor-addressed
// batches for the visitor scroll surface.
package feed

import "strconv"

// DefaultBatchSize is applied when the caller requests no explicit size.
const DefaultBatchSize = 5

// Item is one card in the visitor feed, backed by a published expert profile.
// The profile store itself belongs to an external collaborator.
type Item struct {
	ID       string
	ExpertID string
	Titre    string
}

// Batch is one slice of the feed plus the cursor addressing the next slice.
type Batch struct {
	Items      []Item
	NextCursor string
}

// Paginate returns the sub-sequence [afterCursor, afterCursor+batchSize) of
// items and the cursor for the following call. Malformed or negative cursors
// fall back to the start; requests past the end yield an empty batch whose
// cursor stays at the end, so repeated calls at the boundary are idempotent.
func Paginate(items []Item, afterCursor string, batchSize int) Batch {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	start := parseCursor(afterCursor)
	if start > len(items) {
		start = len(items)
	}
	end := start + batchSize
	if end > len(items) {
		end = len(items)
	}

	return Batch{
		Items:      items[start:end],
		NextCursor: strconv.Itoa(end),
	}
}

func parseCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
