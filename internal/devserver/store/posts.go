package store

import (
	"context"
	"database/sql"
	"fmt"

	"socialnet/internal/entities"
)

const postColumns = `
	p.id, p.user_id, u.nickname, p.board, p.content, p.created_at,
	(SELECT COUNT(*) FROM post_likes WHERE post_id = p.id),
	(SELECT COUNT(*) FROM comments WHERE post_id = p.id),
	EXISTS(SELECT 1 FROM post_likes WHERE post_id = p.id AND user_id = ?)`

func scanPost(sc interface{ Scan(...any) error }) (entities.Post, error) {
	var p entities.Post
	err := sc.Scan(&p.ID, &p.AuthorID, &p.AuthorNickname, &p.Board, &p.Content, &p.CreatedAt,
		&p.LikeCount, &p.CommentCount, &p.Liked)
	return p, err
}

// ListPosts returns posts newest first. An empty board matches every board.
func (s *Store) ListPosts(ctx context.Context, viewer int64, board string, size int, cursor int64) (entities.Page[entities.Post], error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id < ? AND (? = '' OR p.board = ?)
		ORDER BY p.id DESC
		LIMIT ?`, viewer, beforeID(cursor), board, board, size+1)
	if err != nil {
		return entities.Page[entities.Post]{}, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []entities.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return entities.Page[entities.Post]{}, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[entities.Post]{}, err
	}
	pg := pageOf(posts, size, func(p entities.Post) int64 { return p.ID })
	if err := s.attachImages(ctx, pg.Items); err != nil {
		return entities.Page[entities.Post]{}, err
	}
	return pg, nil
}

// GetPost returns one post as seen by viewer.
func (s *Store) GetPost(ctx context.Context, viewer, postID int64) (entities.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id = ?`, viewer, postID)
	p, err := scanPost(row)
	if err != nil {
		return entities.Post{}, fmt.Errorf("post %d: %w", postID, mapErr(err))
	}
	posts := []entities.Post{p}
	if err := s.attachImages(ctx, posts); err != nil {
		return entities.Post{}, err
	}
	return posts[0], nil
}

func (s *Store) attachImages(ctx context.Context, posts []entities.Post) error {
	for i := range posts {
		keys, err := s.imageKeys(ctx, posts[i].ID)
		if err != nil {
			return err
		}
		posts[i].ImageKeys = keys
	}
	return nil
}

func (s *Store) imageKeys(ctx context.Context, postID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_key FROM post_images WHERE post_id = ? ORDER BY position`, postID)
	if err != nil {
		return nil, fmt.Errorf("post images: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post images: %w", err)
	}
	return keys, nil
}

// CreatePost inserts a post with its image keys.
func (s *Store) CreatePost(ctx context.Context, userID int64, req entities.CreatePostRequest) (entities.Post, error) {
	var postID int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO posts (user_id, board, content) VALUES (?, ?, ?)`,
			userID, req.Board, req.Content)
		if err != nil {
			return fmt.Errorf("insert post: %w", mapErr(err))
		}
		if postID, err = res.LastInsertId(); err != nil {
			return err
		}
		for i, key := range req.ImageKeys {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_images (post_id, position, image_key) VALUES (?, ?, ?)`, postID, i, key); err != nil {
				return fmt.Errorf("insert post image: %w", mapErr(err))
			}
		}
		return nil
	})
	if err != nil {
		return entities.Post{}, err
	}
	return s.GetPost(ctx, userID, postID)
}

// PostOwner returns the author of a post.
func (s *Store) PostOwner(ctx context.Context, postID int64) (int64, error) {
	var owner int64
	if err := s.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = ?`, postID).Scan(&owner); err != nil {
		return 0, fmt.Errorf("post %d: %w", postID, mapErr(err))
	}
	return owner, nil
}

// DeletePost removes a post owned by userID.
func (s *Store) DeletePost(ctx context.Context, userID, postID int64) error {
	owner, err := s.PostOwner(ctx, postID)
	if err != nil {
		return err
	}
	if owner != userID {
		return entities.ErrForbidden
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, postID)
	return mapErr(err)
}

// SetLike records or withdraws userID's like on postID. Repeating the same
// state is a no-op.
func (s *Store) SetLike(ctx context.Context, userID, postID int64, liked bool) (entities.LikeResult, error) {
	if _, err := s.PostOwner(ctx, postID); err != nil {
		return entities.LikeResult{}, err
	}

	var err error
	if liked {
		_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`, postID, userID)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	}
	if err != nil {
		return entities.LikeResult{}, fmt.Errorf("set like: %w", mapErr(err))
	}

	res := entities.LikeResult{PostID: postID}
	err = s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM post_likes WHERE post_id = ?),
			EXISTS(SELECT 1 FROM post_likes WHERE post_id = ? AND user_id = ?)`,
		postID, postID, userID).Scan(&res.LikeCount, &res.Liked)
	if err != nil {
		return entities.LikeResult{}, fmt.Errorf("like count: %w", err)
	}
	return res, nil
}
