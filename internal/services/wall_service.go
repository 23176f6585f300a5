package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"moodwall/internal/models"
	"moodwall/internal/mood"
	"moodwall/internal/session"
	"moodwall/internal/store"
)

const (
	DefaultWallLimit = 100
	MaxWallLimit     = 100

	alreadySentMessage = "You already sent support to this post"
)

type WallStore interface {
	ListWallPosts(ctx context.Context, q store.WallQuery) ([]models.MoodWallPost, error)
	InsertEncouragement(ctx context.Context, e *models.Encouragement) error
}

// WallPostView is a wall post as shown to readers, without its author.
type WallPostView struct {
	models.MoodWallPost
	TimeAgo string `json:"time_ago"`
}

type EncouragementResult struct {
	Encouragement *models.Encouragement `json:"encouragement,omitempty"`
	AlreadySent   bool                  `json:"already_sent"`
	Message       string                `json:"message,omitempty"`
}

type WallService struct {
	store WallStore
	log   *zap.Logger
	now   func() time.Time
}

func NewWallService(st WallStore, log *zap.Logger) *WallService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WallService{store: st, log: log, now: time.Now}
}

// ListPosts returns public posts newest first. filter is "all" or one of the
// mood bucket names; unknown names are treated as "all".
func (s *WallService) ListPosts(ctx context.Context, filter string, limit int) ([]WallPostView, error) {
	if limit <= 0 {
		limit = DefaultWallLimit
	}
	if limit > MaxWallLimit {
		limit = MaxWallLimit
	}
	q := store.WallQuery{Limit: limit}
	if r, ok := mood.FilterRange(filter); ok {
		q.Range = &r
	}

	posts, err := s.store.ListWallPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list wall posts: %w", err)
	}
	now := s.now()
	out := make([]WallPostView, len(posts))
	for i, p := range posts {
		out[i] = WallPostView{MoodWallPost: p, TimeAgo: humanize.RelTime(p.Timestamp, now, "ago", "from now")}
	}
	return out, nil
}

// SendEncouragement records one encouragement per (sender, post). A repeat is
// reported through AlreadySent, not as an error.
func (s *WallService) SendEncouragement(ctx context.Context, sess session.Session, postID, message string) (EncouragementResult, error) {
	if !sess.Valid() {
		return EncouragementResult{}, ErrPermissionDenied
	}
	e := &models.Encouragement{FromUserID: sess.UserID, ToPostID: postID}
	if m := mood.TruncateNote(message); m != "" {
		e.Message = &m
	}

	err := s.store.InsertEncouragement(ctx, e)
	switch {
	case err == nil:
		return EncouragementResult{Encouragement: e}, nil
	case errors.Is(err, store.ErrConflict):
		return EncouragementResult{AlreadySent: true, Message: alreadySentMessage}, nil
	case errors.Is(err, store.ErrMissingReference):
		return EncouragementResult{}, ErrPostNotFound
	case errors.Is(err, store.ErrForbidden):
		return EncouragementResult{}, ErrPermissionDenied
	default:
		s.log.Error("encouragement insert failed", zap.String("post_id", postID), zap.Error(err))
		return EncouragementResult{}, fmt.Errorf("send encouragement: %w", err)
	}
}
