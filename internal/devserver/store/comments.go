package store

import (
	"context"
	"fmt"

	"socialnet/internal/entities"
)

// ListComments returns comments of a post newest first.
func (s *Store) ListComments(ctx context.Context, postID int64, size int, cursor int64) (entities.Page[entities.Comment], error) {
	if _, err := s.PostOwner(ctx, postID); err != nil {
		return entities.Page[entities.Comment]{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.nickname, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ? AND c.id < ?
		ORDER BY c.id DESC
		LIMIT ?`, postID, beforeID(cursor), size+1)
	if err != nil {
		return entities.Page[entities.Comment]{}, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []entities.Comment
	for rows.Next() {
		var c entities.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorNickname, &c.Content, &c.CreatedAt); err != nil {
			return entities.Page[entities.Comment]{}, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[entities.Comment]{}, err
	}
	return pageOf(comments, size, func(c entities.Comment) int64 { return c.ID }), nil
}

// CreateComment inserts a comment and returns it.
func (s *Store) CreateComment(ctx context.Context, userID, postID int64, content string) (entities.Comment, error) {
	if _, err := s.PostOwner(ctx, postID); err != nil {
		return entities.Comment{}, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO comments (post_id, user_id, content) VALUES (?, ?, ?)`,
		postID, userID, content)
	if err != nil {
		return entities.Comment{}, fmt.Errorf("insert comment: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return entities.Comment{}, err
	}

	var c entities.Comment
	err = s.db.QueryRowContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.nickname, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id WHERE c.id = ?`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorNickname, &c.Content, &c.CreatedAt)
	if err != nil {
		return entities.Comment{}, fmt.Errorf("comment %d: %w", id, mapErr(err))
	}
	return c, nil
}

// DeleteComment removes a comment written by userID and returns its post id.
func (s *Store) DeleteComment(ctx context.Context, userID, commentID int64) (int64, error) {
	var owner, postID int64
	err := s.db.QueryRowContext(ctx, `SELECT user_id, post_id FROM comments WHERE id = ?`, commentID).Scan(&owner, &postID)
	if err != nil {
		return 0, fmt.Errorf("comment %d: %w", commentID, mapErr(err))
	}
	if owner != userID {
		return 0, entities.ErrForbidden
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, commentID); err != nil {
		return 0, mapErr(err)
	}
	return postID, nil
}
