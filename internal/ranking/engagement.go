package ranking

import "ActivityFeed/internal/domain"

// FoldEngagement aggregates raw interactions per content ID.
// The viewer's reaction is their most recent reaction row when several exist.
func FoldEngagement(viewerID string, interactions []domain.Interaction) map[string]domain.Engagement {
	out := make(map[string]domain.Engagement)
	mine := make(map[string]domain.Interaction)

	for _, in := range interactions {
		agg := out[in.ContentID]
		switch in.Kind {
		case domain.InteractionReaction:
			agg.Reactions++
			if in.UserID == viewerID {
				if prev, ok := mine[in.ContentID]; !ok || in.CreatedAt.After(prev.CreatedAt) {
					mine[in.ContentID] = in
				}
			}
		case domain.InteractionComment:
			agg.Comments++
		}
		out[in.ContentID] = agg
	}

	for contentID, in := range mine {
		agg := out[contentID]
		agg.MyReaction = in.Reaction
		out[contentID] = agg
	}
	return out
}
