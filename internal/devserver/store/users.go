package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"socialnet/internal/entities"
)

// CreateUser inserts a user and returns its id.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, nickname string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password, nickname) VALUES (?, ?, ?)`,
		strings.ToLower(email), passwordHash, nickname)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", mapErr(err))
	}
	return res.LastInsertId()
}

// Credentials returns id and password hash of the user with email.
func (s *Store) Credentials(ctx context.Context, email string) (int64, string, error) {
	var id int64
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT id, password FROM users WHERE email = ?`,
		strings.ToLower(email)).Scan(&id, &hash)
	if err != nil {
		return 0, "", fmt.Errorf("user by email: %w", mapErr(err))
	}
	return id, hash, nil
}

// UserExists reports whether a user with id exists.
func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// Nickname returns the nickname of a user.
func (s *Store) Nickname(ctx context.Context, id int64) (string, error) {
	var nick string
	if err := s.db.QueryRowContext(ctx, `SELECT nickname FROM users WHERE id = ?`, id).Scan(&nick); err != nil {
		return "", mapErr(err)
	}
	return nick, nil
}

// Profile returns the profile of userID as seen by viewer. The email is only
// filled in for the viewer's own profile.
func (s *Store) Profile(ctx context.Context, viewer, userID int64) (entities.Profile, error) {
	var p entities.Profile
	var email string
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.nickname, u.bio, u.profile_image_key,
			(SELECT COUNT(*) FROM followers WHERE following_id = u.id),
			(SELECT COUNT(*) FROM followers WHERE follower_id = u.id),
			(SELECT COUNT(*) FROM posts WHERE user_id = u.id),
			EXISTS(SELECT 1 FROM followers WHERE follower_id = ? AND following_id = u.id)
		FROM users u WHERE u.id = ?`, viewer, userID).
		Scan(&p.ID, &email, &p.Nickname, &p.Bio, &p.ProfileImageKey,
			&p.FollowerCount, &p.FollowingCount, &p.PostCount, &p.Following)
	if err != nil {
		return entities.Profile{}, fmt.Errorf("profile %d: %w", userID, mapErr(err))
	}
	if viewer == userID {
		p.Email = email
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, req entities.UpdateProfileRequest) error {
	var sets []string
	var args []any
	if req.Nickname != nil {
		sets = append(sets, "nickname = ?")
		args = append(args, *req.Nickname)
	}
	if req.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *req.Bio)
	}
	if req.ProfileImageKey != nil {
		sets = append(sets, "profile_image_key = ?")
		args = append(args, *req.ProfileImageKey)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, userID)

	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", mapErr(err))
	}
	return requireOne(res)
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entities.ErrNotFound
	}
	return nil
}
