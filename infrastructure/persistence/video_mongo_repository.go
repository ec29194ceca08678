package persistence

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const videoCollection = "videos"

// EnsureVideoIndexes creates the unique id index and the default sort index
func EnsureVideoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(videoCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "videoId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "publishedAt", Value: -1}, {Key: "videoId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "channelTitle", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create video indexes: %w", err)
	}
	return nil
}

// VideoMongoRepository stores videos in a MongoDB collection keyed by videoId
type VideoMongoRepository struct {
	collection *mongo.Collection
}

func NewVideoMongoRepository(db *mongo.Database) *VideoMongoRepository {
	return &VideoMongoRepository{collection: db.Collection(videoCollection)}
}

// UpsertMany issues one unordered bulk write of per-video upserts
func (r *VideoMongoRepository) UpsertMany(ctx context.Context, videos []model.Video) (repository.UpsertResult, error) {
	var res repository.UpsertResult
	if len(videos) == 0 {
		return res, nil
	}
	now := utils.GetCurrentTime()

	models := make([]mongo.WriteModel, 0, len(videos))
	for _, v := range videos {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "videoId", Value: v.VideoID}}).
			SetUpdate(bson.D{
				{Key: "$set", Value: videoSetDocument(v, now)},
				{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
			}).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return res, fmt.Errorf("failed to bulk upsert videos: %w", err)
	}
	res.Inserted = result.UpsertedCount
	res.Modified = result.ModifiedCount
	return res, nil
}

func (r *VideoMongoRepository) Find(ctx context.Context, query model.VideoQuery) ([]model.Video, error) {
	query = query.Normalize()
	opts := options.Find().
		SetSort(buildMongoSort(query.SortBy, query.SortOrder)).
		SetSkip(query.Skip)
	if query.Limit > 0 {
		opts.SetLimit(query.Limit)
	}
	if query.SortBy == model.SortByViewCount || query.SortBy == model.SortByLikeCount {
		// counts are numeric strings or null; numeric ordering compares them as numbers
		// and null sorts before every string, so unset counts order lowest
		opts.SetCollation(&options.Collation{Locale: "en", NumericOrdering: true})
	}

	cursor, err := r.collection.Find(ctx, buildMongoFilter(query.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find videos: %w", err)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	videos := make([]model.Video, 0)
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	for i := range videos {
		normalizeDecoded(&videos[i])
	}
	return videos, nil
}

func (r *VideoMongoRepository) Count(ctx context.Context, filter model.VideoFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, buildMongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return n, nil
}

func (r *VideoMongoRepository) FindByID(ctx context.Context, videoID string) (*model.Video, error) {
	var v model.Video
	err := r.collection.FindOne(ctx, bson.D{{Key: "videoId", Value: videoID}}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find video %s: %w", videoID, err)
	}
	normalizeDecoded(&v)
	return &v, nil
}

// videoSetDocument lists every mutable field so an upsert fully replaces them
func videoSetDocument(v model.Video, now any) bson.D {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return bson.D{
		{Key: "videoId", Value: v.VideoID},
		{Key: "title", Value: v.Title},
		{Key: "description", Value: v.Description},
		{Key: "publishedAt", Value: v.PublishedAt.UTC()},
		{Key: "thumbnails", Value: v.Thumbnails},
		{Key: "channelId", Value: v.ChannelID},
		{Key: "channelTitle", Value: v.ChannelTitle},
		{Key: "duration", Value: v.Duration},
		{Key: "viewCount", Value: numericCount(v.ViewCount)},
		{Key: "likeCount", Value: numericCount(v.LikeCount)},
		{Key: "tags", Value: tags},
		{Key: "categoryId", Value: v.CategoryID},
		{Key: "updatedAt", Value: now},
	}
}

// buildMongoFilter renders the filter; text matching uses escaped case-insensitive regexes
func buildMongoFilter(f model.VideoFilter) bson.D {
	filter := bson.D{}
	if f.Channel != "" {
		filter = append(filter, bson.E{Key: "channelTitle", Value: containsRegex(f.Channel)})
	}
	if f.DateFrom != nil || f.DateTo != nil {
		rng := bson.D{}
		if f.DateFrom != nil {
			rng = append(rng, bson.E{Key: "$gte", Value: f.DateFrom.UTC()})
		}
		if f.DateTo != nil {
			rng = append(rng, bson.E{Key: "$lte", Value: f.DateTo.UTC()})
		}
		filter = append(filter, bson.E{Key: "publishedAt", Value: rng})
	}
	if len(f.SearchTerms) > 0 {
		and := bson.A{}
		for _, term := range f.SearchTerms {
			re := containsRegex(term)
			and = append(and, bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "title", Value: re}},
				bson.D{{Key: "description", Value: re}},
			}}})
		}
		filter = append(filter, bson.E{Key: "$and", Value: and})
	}
	return filter
}

func buildMongoSort(sortBy, sortOrder string) bson.D {
	dir := -1
	if sortOrder == model.SortAsc {
		dir = 1
	}
	return bson.D{{Key: sortBy, Value: dir}, {Key: "videoId", Value: 1}}
}

// numericCount drops count strings that are not plain integers. The collation would
// sort them after every number, while unset counts must order lowest.
func numericCount(s *string) *string {
	if _, ok := utils.ParseCount(s); !ok {
		return nil
	}
	return s
}

func containsRegex(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func normalizeDecoded(v *model.Video) {
	if v.Tags == nil {
		v.Tags = []string{}
	}
	v.PublishedAt = v.PublishedAt.UTC()
}
