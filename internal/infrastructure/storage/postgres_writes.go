package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ActivityFeed/internal/domain"
)

// UpsertReaction keeps a single reaction per (workout, member).
func (r *PostgresRepository) UpsertReaction(ctx context.Context, reaction domain.Reaction) error {
	query, args, err := r.psql.
		Insert("workout_reactions").
		Columns("workout_id", "user_id", "reaction", "created_at").
		Values(reaction.ContentID, reaction.UserID, reaction.Kind, reaction.CreatedAt).
		Suffix(`ON CONFLICT (workout_id, user_id) DO UPDATE
              SET reaction = EXCLUDED.reaction,
                  created_at = EXCLUDED.created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert reaction: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert reaction: %w", err)
	}
	return nil
}

// DeleteReaction removes the member's reaction if present.
func (r *PostgresRepository) DeleteReaction(ctx context.Context, contentID, userID string) error {
	query, args, err := r.psql.
		Delete("workout_reactions").
		Where("workout_id = ? AND user_id = ?", contentID, userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete reaction: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	return nil
}

// CreateComment inserts a comment, threaded when ParentID is set.
func (r *PostgresRepository) CreateComment(ctx context.Context, c domain.Comment) error {
	query, args, err := r.psql.
		Insert("workout_comments").
		Columns("id", "workout_id", "user_id", "parent_id", "body", "created_at").
		Values(c.ID, c.ContentID, c.UserID, nullable(c.ParentID), c.Body, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create comment: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Block creates or revives a block and drops follows in both directions in one transaction.
func (r *PostgresRepository) Block(ctx context.Context, b domain.Block) (err error) {
	upsert, upsertArgs, err := r.psql.
		Insert("user_blocks").
		Columns("id", "blocker_id", "blocked_id", "created_at").
		Values(b.ID, b.BlockerID, b.BlockedID, b.CreatedAt).
		Suffix(`ON CONFLICT (blocker_id, blocked_id) DO UPDATE
              SET unblocked_at = NULL,
                  created_at = EXCLUDED.created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build block: %w", err)
	}
	unfollow, unfollowArgs, err := r.psql.
		Delete("follows").
		Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			b.BlockerID, b.BlockedID, b.BlockedID, b.BlockerID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unfollow: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin block: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, upsert, upsertArgs...); err != nil {
		return fmt.Errorf("upsert block: %w", err)
	}
	if _, err = tx.ExecContext(ctx, unfollow, unfollowArgs...); err != nil {
		return fmt.Errorf("cascade unfollow: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit block: %w", err)
	}
	return nil
}

// Unblock ends an active block.
func (r *PostgresRepository) Unblock(ctx context.Context, blockerID, blockedID string) error {
	query, args, err := r.psql.
		Update("user_blocks").
		Set("unblocked_at", sq.Expr("NOW()")).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Where("unblocked_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build unblock: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("unblock: %w", err)
	}
	return nil
}

// CreateReport stores a personal report.
func (r *PostgresRepository) CreateReport(ctx context.Context, rep domain.Report) error {
	query, args, err := r.psql.
		Insert("content_reports").
		Columns("id", "reporter_id", "workout_id", "reported_user_id", "reason", "details", "created_at").
		Values(rep.ID, rep.ReporterID, nullable(rep.ContentID), nullable(rep.ActorID), string(rep.Reason), nullable(rep.Details), rep.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create report: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
