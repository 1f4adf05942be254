package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	TaskKeyPrefix        = "task:%d"
	SolutionKeyPrefix    = "solution:%d"
	UserScoreKeyPrefix   = "user:%d:score"
	UnreadCountKeyPrefix = "user:%d:unread"
	DraftKeyPrefix       = "draft:task:%d"
)

const (
	UserTTL        = 5 * time.Minute
	TaskTTL        = 10 * time.Minute
	SolutionTTL    = 10 * time.Minute
	UserScoreTTL   = 5 * time.Minute
	UnreadCountTTL = 30 * time.Second
	DraftTTL       = 7 * 24 * time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// TaskKey caches a task detail by its primary key.
func TaskKey(taskID uint) string {
	return fmt.Sprintf(TaskKeyPrefix, taskID)
}

func SolutionKey(solutionID uint) string {
	return fmt.Sprintf(SolutionKeyPrefix, solutionID)
}

func UserScoreKey(userID uint) string {
	return fmt.Sprintf(UserScoreKeyPrefix, userID)
}

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadCountKeyPrefix, userID)
}

// DraftKey stores the per-user submission draft hash.
func DraftKey(userID uint) string {
	return fmt.Sprintf(DraftKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserScoreKey(userID))
}

func InvalidateTask(ctx context.Context, taskID uint) {
	Invalidate(ctx, TaskKey(taskID))
}

func InvalidateSolution(ctx context.Context, solutionID uint) {
	Invalidate(ctx, SolutionKey(solutionID))
}

func InvalidateUnreadCount(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadCountKey(userID))
}
