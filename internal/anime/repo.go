package anime

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"animespotlight/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const animeColumns = `id, title, en_title, description, rating, start_date, end_date,
	subtype, status, poster_image, cover_image, episode_count, categories`

func (r *Repo) List(ctx context.Context) ([]models.Anime, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+animeColumns+`
		FROM anime
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Anime, 0)
	for rows.Next() {
		a, err := scanAnime(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetByID returns (nil, nil) when the entry does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Anime, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+animeColumns+`
		FROM anime
		WHERE id = ?
	`, id)

	a, err := scanAnime(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &a, nil
}

func (r *Repo) Create(ctx context.Context, f models.AnimeFields) (models.Anime, error) {
	categories, err := json.Marshal(f.Categories)
	if err != nil {
		return models.Anime{}, fmt.Errorf("marshal categories: %w", err)
	}

	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO anime (title, en_title, description, rating, start_date, end_date,
			subtype, status, poster_image, cover_image, episode_count, categories,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.Title, f.EnTitle, f.Description, f.Rating, f.StartDate, f.EndDate,
		string(f.Subtype), string(f.Status), f.PosterImage, f.CoverImage,
		f.EpisodeCount, string(categories), now, now,
	)
	if err != nil {
		return models.Anime{}, fmt.Errorf("insert anime: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Anime{}, fmt.Errorf("last insert id: %w", err)
	}
	return models.Anime{ID: id, AnimeFields: f.Clone()}, nil
}

// Update returns (nil, nil) when the entry does not exist.
func (r *Repo) Update(ctx context.Context, id int64, f models.AnimeFields) (*models.Anime, error) {
	categories, err := json.Marshal(f.Categories)
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE anime
		SET title = ?, en_title = ?, description = ?, rating = ?, start_date = ?,
			end_date = ?, subtype = ?, status = ?, poster_image = ?, cover_image = ?,
			episode_count = ?, categories = ?, updated_at = ?
		WHERE id = ?
	`,
		f.Title, f.EnTitle, f.Description, f.Rating, f.StartDate, f.EndDate,
		string(f.Subtype), string(f.Status), f.PosterImage, f.CoverImage,
		f.EpisodeCount, string(categories), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update anime: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return &models.Anime{ID: id, AnimeFields: f.Clone()}, nil
}

// Delete reports whether a row was removed.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM anime WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete anime: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnime(row scanner) (models.Anime, error) {
	var (
		a            models.Anime
		enTitle      sql.NullString
		rating       sql.NullFloat64
		startDate    sql.NullString
		endDate      sql.NullString
		coverImage   sql.NullString
		episodeCount sql.NullInt64
		categories   string
	)

	if err := row.Scan(
		&a.ID, &a.Title, &enTitle, &a.Description, &rating, &startDate, &endDate,
		&a.Subtype, &a.Status, &a.PosterImage, &coverImage, &episodeCount, &categories,
	); err != nil {
		return models.Anime{}, err
	}

	if enTitle.Valid {
		a.EnTitle = &enTitle.String
	}
	if rating.Valid {
		a.Rating = &rating.Float64
	}
	if startDate.Valid {
		a.StartDate = &startDate.String
	}
	if endDate.Valid {
		a.EndDate = &endDate.String
	}
	if coverImage.Valid {
		a.CoverImage = &coverImage.String
	}
	if episodeCount.Valid {
		n := int(episodeCount.Int64)
		a.EpisodeCount = &n
	}

	a.Categories = []string{}
	_ = json.Unmarshal([]byte(categories), &a.Categories)
	return a, nil
}
