package ranking

import (
	"hash/fnv"
	"strings"

	"ActivityFeed/internal/domain"
)

var accentPalette = []string{
	"#E4572E", "#29335C", "#F3A712", "#A8C686", "#669BBC", "#7E52A0", "#2E8B57", "#C94277",
}

// FallbackActor synthesizes a placeholder identity for an author whose profile is missing.
// The result depends only on actorID, so repeated calls render the same member the same way.
func FallbackActor(actorID string) domain.Actor {
	short := strings.ToUpper(shortID(actorID))
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))

	return domain.Actor{
		ID:          actorID,
		DisplayName: "Member " + short,
		Handle:      "member-" + strings.ToLower(short),
		Initials:    initials(short),
		AccentColor: accentPalette[h.Sum32()%uint32(len(accentPalette))],
		Fallback:    true,
	}
}

func shortID(id string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == ' ' {
			return -1
		}
		return r
	}, id)
	if cleaned == "" {
		return "0000"
	}
	if len(cleaned) > 6 {
		return cleaned[:6]
	}
	return cleaned
}

func initials(short string) string {
	if len(short) < 2 {
		return "M" + short
	}
	return short[:2]
}

// completeActor fills display gaps of a stored profile from the fallback identity.
func completeActor(actor domain.Actor, actorID string) domain.Actor {
	fb := FallbackActor(actorID)
	actor.ID = actorID
	if strings.TrimSpace(actor.DisplayName) == "" {
		actor.DisplayName = fb.DisplayName
	}
	if actor.Handle == "" {
		actor.Handle = fb.Handle
	}
	if actor.Initials == "" {
		actor.Initials = initialsFromName(actor.DisplayName)
	}
	if actor.AccentColor == "" {
		actor.AccentColor = fb.AccentColor
	}
	return actor
}

func initialsFromName(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
