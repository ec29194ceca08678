package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/utils"

	"github.com/lib/pq"
)

// EnsureVideoSchema creates the videos table and its indexes if they do not exist
func EnsureVideoSchema(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS videos (
        video_id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        published_at TIMESTAMPTZ NOT NULL,
        thumbnails JSONB NOT NULL DEFAULT '{}',
        channel_id TEXT NOT NULL DEFAULT '',
        channel_title TEXT NOT NULL DEFAULT '',
        duration TEXT,
        view_count TEXT,
        like_count TEXT,
        tags TEXT[] NOT NULL DEFAULT '{}',
        category_id TEXT,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_videos_published_at ON videos (published_at DESC, video_id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_videos_published_at")
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_videos_channel_title ON videos (channel_title)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_videos_channel_title")
	}
	return nil
}

const videoColumns = `video_id, title, description, published_at, thumbnails, channel_id, channel_title,
        duration, view_count, like_count, tags, category_id, created_at, updated_at`

const upsertVideoQuery = `INSERT INTO videos (` + videoColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
        ON CONFLICT (video_id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
        published_at=EXCLUDED.published_at, thumbnails=EXCLUDED.thumbnails, channel_id=EXCLUDED.channel_id,
        channel_title=EXCLUDED.channel_title, duration=EXCLUDED.duration, view_count=EXCLUDED.view_count,
        like_count=EXCLUDED.like_count, tags=EXCLUDED.tags, category_id=EXCLUDED.category_id,
        updated_at=EXCLUDED.updated_at
        RETURNING (xmax = 0) AS inserted`

// VideoPostgresRepository stores videos in PostgreSQL. Thumbnails are kept as JSONB.
type VideoPostgresRepository struct{ db *sql.DB }

func NewVideoPostgresRepository(db *sql.DB) *VideoPostgresRepository {
	return &VideoPostgresRepository{db: db}
}

// UpsertMany writes the batch in one transaction with a prepared statement
func (r *VideoPostgresRepository) UpsertMany(ctx context.Context, videos []model.Video) (res repository.UpsertResult, err error) {
	if len(videos) == 0 {
		return res, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertVideoQuery)
	if err != nil {
		return res, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := utils.GetCurrentTime()
	for i := range videos {
		v := &videos[i]
		thumbs, mErr := json.Marshal(v.Thumbnails)
		if mErr != nil {
			return res, fmt.Errorf("failed to encode thumbnails for %s: %w", v.VideoID, mErr)
		}
		tags := v.Tags
		if tags == nil {
			tags = []string{}
		}
		var inserted bool
		err = stmt.QueryRowContext(ctx,
			v.VideoID, v.Title, v.Description, v.PublishedAt.UTC(), thumbs, v.ChannelID, v.ChannelTitle,
			v.Duration, v.ViewCount, v.LikeCount, pq.Array(tags), v.CategoryID, now,
		).Scan(&inserted)
		if err != nil {
			return res, fmt.Errorf("failed to upsert video %s: %w", v.VideoID, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Modified++
		}
	}
	if err = tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return res, nil
}

func (r *VideoPostgresRepository) Find(ctx context.Context, query model.VideoQuery) ([]model.Video, error) {
	query = query.Normalize()
	where, args := buildVideoWhere(query.Filter)

	var sb strings.Builder
	sb.WriteString("SELECT " + videoColumns + " FROM videos")
	sb.WriteString(where)
	sb.WriteString(" ORDER BY " + buildVideoOrder(query.SortBy, query.SortOrder))
	if query.Limit > 0 {
		args = append(args, query.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if query.Skip > 0 {
		args = append(args, query.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	out := make([]model.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate videos: %w", err)
	}
	return out, nil
}

func (r *VideoPostgresRepository) Count(ctx context.Context, filter model.VideoFilter) (int64, error) {
	where, args := buildVideoWhere(filter)
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM videos"+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return total, nil
}

func (r *VideoPostgresRepository) FindByID(ctx context.Context, videoID string) (*model.Video, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+videoColumns+" FROM videos WHERE video_id=$1", videoID)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*model.Video, error) {
	var v model.Video
	var thumbs []byte
	err := row.Scan(
		&v.VideoID, &v.Title, &v.Description, &v.PublishedAt, &thumbs, &v.ChannelID, &v.ChannelTitle,
		&v.Duration, &v.ViewCount, &v.LikeCount, pq.Array(&v.Tags), &v.CategoryID, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}
	if len(thumbs) > 0 {
		if err := json.Unmarshal(thumbs, &v.Thumbnails); err != nil {
			return nil, fmt.Errorf("failed to decode thumbnails for %s: %w", v.VideoID, err)
		}
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	v.PublishedAt = v.PublishedAt.UTC()
	return &v, nil
}

// buildVideoWhere renders the filter as a WHERE clause with positional arguments
func buildVideoWhere(f model.VideoFilter) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Channel != "" {
		conds = append(conds, "channel_title ILIKE "+next(likePattern(f.Channel)))
	}
	if f.DateFrom != nil {
		conds = append(conds, "published_at >= "+next(f.DateFrom.UTC()))
	}
	if f.DateTo != nil {
		conds = append(conds, "published_at <= "+next(f.DateTo.UTC()))
	}
	for _, term := range f.SearchTerms {
		p := next(likePattern(term))
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildVideoOrder sorts counts numerically with unset values lowest, then by video_id
func buildVideoOrder(sortBy, sortOrder string) string {
	expr := "published_at"
	switch sortBy {
	case model.SortByTitle:
		expr = `title COLLATE "C"`
	case model.SortByViewCount:
		expr = `CASE WHEN view_count ~ '^[0-9]+$' THEN view_count::numeric END`
	case model.SortByLikeCount:
		expr = `CASE WHEN like_count ~ '^[0-9]+$' THEN like_count::numeric END`
	}
	dir := "DESC NULLS LAST"
	if sortOrder == model.SortAsc {
		dir = "ASC NULLS FIRST"
	}
	return expr + " " + dir + ", video_id ASC"
}

func likePattern(s string) string {
	return "%" + utils.EscapeLike(s) + "%"
}
