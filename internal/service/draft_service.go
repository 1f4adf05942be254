package service

import (
	"context"

	"samplepedia/internal/cache"
	"samplepedia/internal/models"

	"github.com/redis/go-redis/v9"
)

// draftFields are the only hash fields the draft endpoint accepts. They match
// the submission form's input names.
var draftFields = []string{
	"sha256",
	"download_link",
	"goal",
	"description",
	"difficulty",
	"tags",
	"tools",
	"reference_solution_title",
	"reference_solution_type",
	"reference_solution_url",
	"reference_solution_content",
}

// DraftService keeps a per-user submission draft in a Redis hash. It is a
// convenience layer, not authoritative: without Redis every call degrades to
// a no-op.
type DraftService struct {
	rdb *redis.Client
}

func NewDraftService(rdb *redis.Client) *DraftService {
	return &DraftService{rdb: rdb}
}

// Save stores the non-empty known fields and refreshes the draft TTL.
func (s *DraftService) Save(ctx context.Context, userID uint, fields map[string]string) error {
	if s.rdb == nil {
		return nil
	}

	values := make([]interface{}, 0, len(draftFields)*2)
	for _, name := range draftFields {
		if v, ok := fields[name]; ok && v != "" {
			values = append(values, name, v)
		}
	}
	if len(values) == 0 {
		return models.NewValidationError("No draft fields to save")
	}

	key := cache.DraftKey(userID)
	if err := s.rdb.HSet(ctx, key, values...).Err(); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.rdb.Expire(ctx, key, cache.DraftTTL).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Get returns the stored draft fields. An absent draft (or absent Redis)
// yields an empty map.
func (s *DraftService) Get(ctx context.Context, userID uint) (map[string]string, error) {
	if s.rdb == nil {
		return map[string]string{}, nil
	}
	fields, err := s.rdb.HGetAll(ctx, cache.DraftKey(userID)).Result()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return fields, nil
}

// Clear drops the draft. Called explicitly and after a successful submission.
func (s *DraftService) Clear(ctx context.Context, userID uint) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, cache.DraftKey(userID)).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
