package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ActivityFeed/internal/domain"
)

// Page size and scan window bounds.
const (
	DefaultPageSize  = 20
	MaxPageSize      = 40
	DefaultScanLimit = 160
	MaxScanLimit     = 250
)

// ErrInvalidCursor is wrapped by every cursor resolution failure.
var ErrInvalidCursor = errors.New("cursor does not resolve to an event or timestamp")

// Request describes one page to cut from a ranked sequence.
type Request struct {
	Cursor   string
	PageSize int
	// Anchor is the creation time of the cursor event when it was looked up out of band.
	// It is used only when Cursor is not found among the ranked items.
	Anchor time.Time
}

// Page is one slice of the ranked sequence.
type Page struct {
	Items      []domain.RankedItem
	HasMore    bool
	NextCursor string
	// Start is the resume index inside the ranked sequence.
	Start int
	// ByTimestamp is set when the cursor resolved through the timestamp fallback.
	ByTimestamp bool
}

// ClampPageSize bounds the page size, using the default for zero or negative input.
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// ClampScanLimit bounds the scan window so it is never smaller than the page.
func ClampScanLimit(scanLimit, pageSize int) int {
	if scanLimit <= 0 {
		scanLimit = DefaultScanLimit
	}
	if scanLimit > MaxScanLimit {
		scanLimit = MaxScanLimit
	}
	if scanLimit < pageSize {
		scanLimit = pageSize
	}
	return scanLimit
}

// Paginate cuts one page out of items.
//
// The cursor resolves as an event ID first and resumes right after it. When the event is no longer
// in the sequence the cursor (or Anchor) is read as a timestamp and the page resumes at the first
// item created strictly before it. Re-ranking between calls can therefore reorder what remains;
// the fallback trades strict stability for freshness.
func Paginate(items []domain.RankedItem, req Request) (Page, error) {
	size := ClampPageSize(req.PageSize)

	start, byTime, err := resolve(items, req)
	if err != nil {
		return Page{}, err
	}

	end := start + size
	if end > len(items) {
		end = len(items)
	}
	page := Page{
		Items:       append([]domain.RankedItem(nil), items[start:end]...),
		HasMore:     end < len(items),
		Start:       start,
		ByTimestamp: byTime,
	}
	if page.HasMore && len(page.Items) > 0 {
		page.NextCursor = page.Items[len(page.Items)-1].EventID
	}
	return page, nil
}

func resolve(items []domain.RankedItem, req Request) (int, bool, error) {
	cursor := strings.TrimSpace(req.Cursor)
	if cursor == "" {
		return 0, false, nil
	}
	for i, item := range items {
		if item.EventID == cursor {
			return i + 1, false, nil
		}
	}

	at := req.Anchor
	if at.IsZero() {
		parsed, ok := ParseTimestamp(cursor)
		if !ok {
			return 0, false, domain.E(domain.KindInvalidCursor, "paginate",
				fmt.Errorf("%w: %q", ErrInvalidCursor, cursor))
		}
		at = parsed
	}
	for i, item := range items {
		if item.CreatedAt.Before(at) {
			return i, true, nil
		}
	}
	return 0, false, domain.E(domain.KindInvalidCursor, "paginate",
		fmt.Errorf("%w: nothing precedes %s", ErrInvalidCursor, at.UTC().Format(time.RFC3339Nano)))
}

// ParseTimestamp accepts RFC3339 (with or without fractional seconds) or unix milliseconds.
func ParseTimestamp(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}
