package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/linktrend/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. Emails are normalized to
// lower case before insert so the unique index catches case variants.
func (r *UserRepo) Create(ctx context.Context, name, email string, avatar *string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, avatar) VALUES (?,?,?)",
		name, email, avatar)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email, including the
// unlocked-video set.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT id,name,email,avatar,created_at FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id, including the unlocked-video set.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, "SELECT id,name,email,avatar,created_at FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var (
		u      model.User
		avatar sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &avatar, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	unlocked, err := r.unlockedFor(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.UnlockedVideos = unlocked
	return u, nil
}

// ListAll returns every user, newest first, with unlocked sets loaded.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,avatar,created_at FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var (
			u      model.User
			avatar sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &avatar, &u.CreatedAt); err != nil {
			return nil, err
		}
		if avatar.Valid {
			u.Avatar = &avatar.String
		}
		u.UnlockedVideos = []uint64{}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One pass over the join table instead of a query per user.
	byID := make(map[uint64]int, len(users))
	for i := range users {
		byID[users[i].ID] = i
	}
	urows, err := r.DB.QueryContext(ctx, "SELECT user_id, video_id FROM unlocked_videos")
	if err != nil {
		return nil, err
	}
	defer urows.Close()
	for urows.Next() {
		var userID, videoID uint64
		if err := urows.Scan(&userID, &videoID); err != nil {
			return nil, err
		}
		if i, ok := byID[userID]; ok {
			users[i].UnlockedVideos = append(users[i].UnlockedVideos, videoID)
		}
	}
	return users, urows.Err()
}

// Delete removes a user and its unlock rows.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unlocked_videos WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return tx.Commit()
}

// unlockedFor loads the unlocked-video set for a single user.
func (r *UserRepo) unlockedFor(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT video_id FROM unlocked_videos WHERE user_id=? ORDER BY video_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
