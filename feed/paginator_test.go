package feed

import (
	"strconv"
	"testing"
)

func twelveItems() []Item {
	items := make([]Item, 12)
	for i := range items {
		items[i] = Item{ID: "item-" + strconv.Itoa(i), ExpertID: "expert-1"}
	}
	return items
}

func TestPaginate_WalksToTheEnd(t *testing.T) {
	items := twelveItems()

	cases := []struct {
		afterCursor string
		wantItems   int
		wantCursor  string
	}{
		{"", 5, "5"},
		{"5", 5, "10"},
		{"10", 2, "12"},
		{"12", 0, "12"},
	}
	for _, tc := range cases {
		batch := Paginate(items, tc.afterCursor, 5)
		if len(batch.Items) != tc.wantItems {
			t.Fatalf("cursor %q: expected %d items, got %d", tc.afterCursor, tc.wantItems, len(batch.Items))
		}
		if batch.NextCursor != tc.wantCursor {
			t.Fatalf("cursor %q: expected next cursor %q, got %q", tc.afterCursor, tc.wantCursor, batch.NextCursor)
		}
	}
}

func TestPaginate_EndCursorIdempotent(t *testing.T) {
	items := twelveItems()
	for i := 0; i < 3; i++ {
		batch := Paginate(items, "12", 5)
		if len(batch.Items) != 0 || batch.NextCursor != "12" {
			t.Fatalf("repeated end-cursor call %d not idempotent: %+v", i, batch)
		}
	}
}

func TestPaginate_MalformedCursorFallsBackToStart(t *testing.T) {
	items := twelveItems()
	for _, cursor := range []string{"not-a-number", "-3", "1.5"} {
		batch := Paginate(items, cursor, 5)
		if len(batch.Items) != 5 || batch.Items[0].ID != "item-0" {
			t.Fatalf("cursor %q: expected fallback to start, got %+v", cursor, batch)
		}
	}
}

func TestPaginate_DefaultBatchSize(t *testing.T) {
	batch := Paginate(twelveItems(), "", 0)
	if len(batch.Items) != DefaultBatchSize {
		t.Fatalf("expected default batch size %d, got %d", DefaultBatchSize, len(batch.Items))
	}
}

func TestPaginate_CursorPastEnd(t *testing.T) {
	batch := Paginate(twelveItems(), "500", 5)
	if len(batch.Items) != 0 || batch.NextCursor != "12" {
		t.Fatalf("expected empty batch clamped to end, got %+v", batch)
	}
}
