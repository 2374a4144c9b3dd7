package usecase

import "ActivityFeed/internal/domain"

// Merge appends next onto current for incremental loading.
// Items ranked again after re-ranking drift are dropped by event ID, render items by key.
// Merging is content-based: two racing loadMore calls on one snapshot will both merge.
func Merge(current, next Snapshot) Snapshot {
	out := next
	out.Items = make([]domain.RankedItem, 0, len(current.Items)+len(next.Items))
	out.RenderItems = make([]domain.RenderItem, 0, len(current.RenderItems)+len(next.RenderItems))

	seenItems := make(map[string]bool, cap(out.Items))
	for _, group := range [][]domain.RankedItem{current.Items, next.Items} {
		for _, item := range group {
			if seenItems[item.EventID] {
				continue
			}
			seenItems[item.EventID] = true
			out.Items = append(out.Items, item)
		}
	}

	seenKeys := make(map[string]bool, cap(out.RenderItems))
	for _, group := range [][]domain.RenderItem{current.RenderItems, next.RenderItems} {
		for _, ri := range group {
			if seenKeys[ri.Key()] {
				continue
			}
			seenKeys[ri.Key()] = true
			out.RenderItems = append(out.RenderItems, ri)
		}
	}

	out.Summary = current.Summary.Add(next.Summary)
	return out
}
