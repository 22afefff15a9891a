package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/linktrend/internal/model"
)

type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

const videoColumns = "id,title,description,price,is_premium,creator,creator_id,thumbnail_url,video_url,views,duration,upload_date,created_at"

// Create inserts a video and returns its ID. The premium flag is
// derived here from the price, overriding whatever the client sent:
// it is fixed at creation time and never recomputed afterwards.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) (uint64, error) {
	v.IsPremium = v.Price > 0
	if v.Duration == "" {
		v.Duration = "00:00"
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO videos (title, description, price, is_premium, creator, creator_id, thumbnail_url, video_url, views, duration, upload_date) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		v.Title, v.Description, v.Price, v.IsPremium, v.Creator, v.CreatorID,
		v.ThumbnailURL, v.VideoURL, v.Views, v.Duration, v.UploadDate)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a video by id.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (model.Video, error) {
	var v model.Video
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id).
		Scan(&v.ID, &v.Title, &v.Description, &v.Price, &v.IsPremium, &v.Creator,
			&v.CreatorID, &v.ThumbnailURL, &v.VideoURL, &v.Views, &v.Duration,
			&v.UploadDate, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Video{}, ErrVideoNotFound
	}
	return v, err
}

// ListAll returns the full catalog, newest first.
func (r *VideoRepo) ListAll(ctx context.Context) ([]model.Video, error) {
	return r.list(ctx, "SELECT "+videoColumns+" FROM videos ORDER BY created_at DESC, id DESC")
}

// ListByCreator returns one creator's videos, newest first.
func (r *VideoRepo) ListByCreator(ctx context.Context, creatorID string) ([]model.Video, error) {
	return r.list(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE creator_id=? ORDER BY created_at DESC, id DESC",
		creatorID)
}

func (r *VideoRepo) list(ctx context.Context, query string, args ...any) ([]model.Video, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := make([]model.Video, 0)
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Price, &v.IsPremium,
			&v.Creator, &v.CreatorID, &v.ThumbnailURL, &v.VideoURL, &v.Views,
			&v.Duration, &v.UploadDate, &v.CreatedAt); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// IncrementViews bumps the view counter atomically in the database
// and returns the updated record. Lost updates are impossible with a
// relative UPDATE; two concurrent views both land.
func (r *VideoRepo) IncrementViews(ctx context.Context, id uint64) (model.Video, error) {
	res, err := r.DB.ExecContext(ctx, "UPDATE videos SET views = views + 1 WHERE id=?", id)
	if err != nil {
		return model.Video{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Video{}, ErrVideoNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a catalog entry. Unlock rows pointing at the video
// stay behind as historical grants; they are harmless once the video
// is gone.
func (r *VideoRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM videos WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrVideoNotFound
	}
	return nil
}
