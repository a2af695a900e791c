package store

import (
	"context"
	"fmt"

	"socialnet/internal/entities"
)

// Follow makes follower follow following.
func (s *Store) Follow(ctx context.Context, follower, following int64) error {
	if follower == following {
		return fmt.Errorf("cannot follow yourself: %w", entities.ErrInvalidArgument)
	}
	ok, err := s.UserExists(ctx, following)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %d: %w", following, entities.ErrNotFound)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO followers (follower_id, following_id) VALUES (?, ?)`, follower, following)
	if err != nil {
		return fmt.Errorf("follow: %w", mapErr(err))
	}
	return nil
}

// Unfollow removes the follow relationship.
func (s *Store) Unfollow(ctx context.Context, follower, following int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM followers WHERE follower_id = ? AND following_id = ?`, follower, following)
	if err != nil {
		return fmt.Errorf("unfollow: %w", mapErr(err))
	}
	return requireOne(res)
}

const followUserColumns = `
	u.id, u.nickname, u.profile_image_key,
	EXISTS(SELECT 1 FROM followers WHERE follower_id = ? AND following_id = u.id),
	EXISTS(SELECT 1 FROM followers WHERE follower_id = u.id AND following_id = ?)`

func (s *Store) listFollowUsers(ctx context.Context, query string, args ...any) ([]entities.FollowUser, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []entities.FollowUser
	for rows.Next() {
		var u entities.FollowUser
		if err := rows.Scan(&u.ID, &u.Nickname, &u.ProfileImageKey, &u.Following, &u.FollowsYou); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListFollowers returns users following userID, as seen by viewer.
func (s *Store) ListFollowers(ctx context.Context, viewer, userID int64, size int, cursor int64) (entities.Page[entities.FollowUser], error) {
	users, err := s.listFollowUsers(ctx, `
		SELECT `+followUserColumns+`
		FROM followers f JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = ? AND u.id < ?
		ORDER BY u.id DESC LIMIT ?`, viewer, viewer, userID, beforeID(cursor), size+1)
	if err != nil {
		return entities.Page[entities.FollowUser]{}, err
	}
	return pageOf(users, size, followUserID), nil
}

// ListFollowing returns users followed by userID, as seen by viewer.
func (s *Store) ListFollowing(ctx context.Context, viewer, userID int64, size int, cursor int64) (entities.Page[entities.FollowUser], error) {
	users, err := s.listFollowUsers(ctx, `
		SELECT `+followUserColumns+`
		FROM followers f JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = ? AND u.id < ?
		ORDER BY u.id DESC LIMIT ?`, viewer, viewer, userID, beforeID(cursor), size+1)
	if err != nil {
		return entities.Page[entities.FollowUser]{}, err
	}
	return pageOf(users, size, followUserID), nil
}

// Recommendations suggests users viewer does not follow yet: first friends
// of friends ranked by mutual connections, then everyone else, newest first.
func (s *Store) Recommendations(ctx context.Context, viewer int64, size int) ([]entities.FollowUser, error) {
	users, err := s.listFollowUsers(ctx, `
		SELECT `+followUserColumns+`
		FROM users u
		WHERE u.id != ?
			AND NOT EXISTS(SELECT 1 FROM followers WHERE follower_id = ? AND following_id = u.id)
		ORDER BY (
			SELECT COUNT(*) FROM followers mine
			JOIN followers theirs ON theirs.follower_id = mine.following_id
			WHERE mine.follower_id = ? AND theirs.following_id = u.id
		) DESC, u.id DESC
		LIMIT ?`, viewer, viewer, viewer, viewer, viewer, size)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entities.FollowUser{}
	}
	return users, nil
}

func followUserID(u entities.FollowUser) int64 { return u.ID }
