package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/ports"
)

// PostgresRepository serves every feed read and write from Postgres.
type PostgresRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

var _ ports.Store = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// RecentEvents returns the newest events first.
func (r *PostgresRepository) RecentEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	query, args, err := r.psql.
		Select("event_id", "actor_id", "content_id", "event_type", "caption", "metadata", "created_at").
		From("feed_events").
		OrderBy("created_at DESC", "event_id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent events: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			ev        domain.Event
			contentID sql.NullString
			caption   sql.NullString
			eventType string
			metadata  []byte
		)
		if err := rows.Scan(&ev.ID, &ev.ActorID, &contentID, &eventType, &caption, &metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.ContentID = contentID.String
		ev.Caption = caption.String
		ev.Type = domain.EventType(eventType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for event %s: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return events, nil
}

// EventTime looks up one event's creation time.
func (r *PostgresRepository) EventTime(ctx context.Context, eventID string) (time.Time, bool, error) {
	query, args, err := r.psql.
		Select("created_at").
		From("feed_events").
		Where("event_id = ?", eventID).
		ToSql()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build event time: %w", err)
	}

	var at time.Time
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("query event time: %w", err)
	}
	return at, true, nil
}

// ContentByIDs resolves workouts by ID.
func (r *PostgresRepository) ContentByIDs(ctx context.Context, ids []string) (map[string]domain.Content, error) {
	out := make(map[string]domain.Content, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := r.psql.
		Select("id", "owner_id", "group_id", "title", "visibility", "is_personal_record", "archived_at IS NOT NULL").
		From("workouts").
		Where(sq.Expr("id = ANY(?)", pq.Array(ids))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build content lookup: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c          domain.Content
			groupID    sql.NullString
			title      sql.NullString
			visibility string
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &groupID, &title, &visibility, &c.PersonalRecord, &c.Archived); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		c.GroupID = groupID.String
		c.Title = title.String
		c.Visibility = domain.Visibility(visibility)
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// ActorsByIDs resolves member profiles. Members without a profile row are absent.
func (r *PostgresRepository) ActorsByIDs(ctx context.Context, ids []string) (map[string]domain.Actor, error) {
	out := make(map[string]domain.Actor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := r.psql.
		Select("user_id", "display_name", "handle", "avatar_url").
		From("profiles").
		Where(sq.Expr("user_id = ANY(?)", pq.Array(ids))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile lookup: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a                    domain.Actor
			name, handle, avatar sql.NullString
		)
		if err := rows.Scan(&a.ID, &name, &handle, &avatar); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		a.DisplayName = name.String
		a.Handle = handle.String
		a.AvatarURL = avatar.String
		out[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Affiliation returns the viewer's home group, or "" when none is set.
func (r *PostgresRepository) Affiliation(ctx context.Context, viewerID string) (string, error) {
	query, args, err := r.psql.
		Select("home_group_id").
		From("profiles").
		Where("user_id = ?", viewerID).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build affiliation: %w", err)
	}

	var group sql.NullString
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&group); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query affiliation: %w", err)
	}
	return group.String, nil
}

// Interactions lists reactions and live comments on the given workouts.
func (r *PostgresRepository) Interactions(ctx context.Context, contentIDs []string) ([]domain.Interaction, error) {
	if len(contentIDs) == 0 {
		return nil, nil
	}
	reactions, err := r.reactionRows(ctx, contentIDs)
	if err != nil {
		return nil, err
	}
	comments, err := r.commentRows(ctx, contentIDs)
	if err != nil {
		return nil, err
	}
	return append(reactions, comments...), nil
}

func (r *PostgresRepository) reactionRows(ctx context.Context, contentIDs []string) ([]domain.Interaction, error) {
	query, args, err := r.psql.
		Select("workout_id", "user_id", "reaction", "created_at").
		From("workout_reactions").
		Where(sq.Expr("workout_id = ANY(?)", pq.Array(contentIDs))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		in := domain.Interaction{Kind: domain.InteractionReaction}
		if err := rows.Scan(&in.ContentID, &in.UserID, &in.Reaction, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) commentRows(ctx context.Context, contentIDs []string) ([]domain.Interaction, error) {
	query, args, err := r.psql.
		Select("workout_id", "user_id", "created_at").
		From("workout_comments").
		Where(sq.Expr("workout_id = ANY(?)", pq.Array(contentIDs))).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build comments: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		in := domain.Interaction{Kind: domain.InteractionComment}
		if err := rows.Scan(&in.ContentID, &in.UserID, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Following lists members the viewer follows with an accepted follow.
func (r *PostgresRepository) Following(ctx context.Context, viewerID string) ([]string, error) {
	query, args, err := r.psql.
		Select("followee_id").
		From("follows").
		Where(sq.Eq{"follower_id": viewerID, "status": "accepted"}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build following: %w", err)
	}
	return r.strings(ctx, "following", query, args)
}

// Enabled reads a feature flag; unknown flags are off.
func (r *PostgresRepository) Enabled(ctx context.Context, key string) (bool, error) {
	query, args, err := r.psql.
		Select("enabled").
		From("feature_flags").
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build feature flag: %w", err)
	}

	var on bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&on); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query feature flag %s: %w", key, err)
	}
	return on, nil
}

// BlockedActors lists members the viewer currently blocks.
func (r *PostgresRepository) BlockedActors(ctx context.Context, viewerID string) ([]string, error) {
	query, args, err := r.psql.
		Select("blocked_id").
		From("user_blocks").
		Where("blocker_id = ?", viewerID).
		Where("unblocked_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build blocks: %w", err)
	}
	return r.strings(ctx, "blocks", query, args)
}

// ReportsBy lists reports the viewer filed.
func (r *PostgresRepository) ReportsBy(ctx context.Context, viewerID string) ([]domain.Report, error) {
	query, args, err := r.psql.
		Select("id", "workout_id", "reported_user_id", "reason", "details", "created_at").
		From("content_reports").
		Where("reporter_id = ?", viewerID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reports: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var (
			rep                         domain.Report
			workoutID, actorID, details sql.NullString
			reason                      string
		)
		if err := rows.Scan(&rep.ID, &workoutID, &actorID, &reason, &details, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rep.ReporterID = viewerID
		rep.ContentID = workoutID.String
		rep.ActorID = actorID.String
		rep.Reason = domain.ReportReason(reason)
		rep.Details = details.String
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// IsBlocked reports whether blockerID currently blocks blockedID.
func (r *PostgresRepository) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	query, args, err := r.psql.
		Select("1").
		Prefix("SELECT EXISTS(").
		From("user_blocks").
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Where("unblocked_at IS NULL").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build block check: %w", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("query block check: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) strings(ctx context.Context, what, query string, args []interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
