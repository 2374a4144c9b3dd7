package usecase

import (
	"context"
	"errors"
	"strings"

	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/ports"
)

type viewerKey struct{}

// WithViewer attaches the authenticated member ID to ctx.
func WithViewer(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, viewerKey{}, strings.TrimSpace(viewerID))
}

// ContextViewer resolves the viewer set by WithViewer.
type ContextViewer struct{}

var _ ports.ViewerResolver = ContextViewer{}

func (ContextViewer) ViewerID(ctx context.Context) (string, error) {
	id, _ := ctx.Value(viewerKey{}).(string)
	if id == "" {
		return "", domain.E(domain.KindUnauthenticated, "viewer", errors.New("no viewer identity in context"))
	}
	return id, nil
}
