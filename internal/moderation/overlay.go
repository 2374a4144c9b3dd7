package moderation

import "ActivityFeed/internal/domain"

// Result is the moderated view of one page.
type Result struct {
	Visible []domain.RankedItem
	Render  []domain.RenderItem
	Summary domain.ModerationSummary
}

var messages = map[domain.SuppressionReason]string{
	domain.ReasonBlockedActor:    "You blocked this member. Their activity is hidden.",
	domain.ReasonReportedContent: "You reported this post. It is hidden from your feed.",
	domain.ReasonReportedActor:   "You reported this member. Their activity is hidden.",
}

// Message returns the human-readable text for a suppression reason.
func Message(reason domain.SuppressionReason) string {
	return messages[reason]
}

// Reason decides whether an item is suppressed for the viewer. Blocks take precedence over reports.
func Reason(item domain.RankedItem, d domain.Decisions) (domain.SuppressionReason, bool) {
	if d.BlockedActors[item.Actor.ID] {
		return domain.ReasonBlockedActor, true
	}
	if item.Content != nil && d.ReportedContent[item.Content.ID] {
		return domain.ReasonReportedContent, true
	}
	if d.ReportedActors[item.Actor.ID] {
		return domain.ReasonReportedActor, true
	}
	return "", false
}

// Apply removes or replaces items suppressed by the viewer's own blocks and reports.
func Apply(items []domain.RankedItem, d domain.Decisions, mode domain.ModerationMode) Result {
	res := Result{
		Visible: make([]domain.RankedItem, 0, len(items)),
		Render:  make([]domain.RenderItem, 0, len(items)),
	}
	for _, item := range items {
		reason, suppressed := Reason(item, d)
		if !suppressed {
			res.Visible = append(res.Visible, item)
			res.Render = append(res.Render, domain.EventRender{Item: item})
			continue
		}

		if reason == domain.ReasonBlockedActor {
			res.Summary.HiddenByBlock++
		} else {
			res.Summary.HiddenByReport++
		}
		if mode == domain.ModePlaceholder {
			res.Summary.Placeholders++
			res.Render = append(res.Render, domain.PlaceholderRender{
				EventID: item.EventID,
				Reason:  reason,
				Message: Message(reason),
			})
		}
	}
	return res
}
