package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/d60-Lab/treehole/internal/model"
	"github.com/d60-Lab/treehole/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// FeedPage 一页信息流
type FeedPage struct {
	Posts   []*model.Post `json:"posts"`
	Cursor  string        `json:"cursor"`
	HasNext bool          `json:"hasNext"`
}

// FeedService 公开信息流：排除 REJECTED，按创建时间倒序。
// 游标编码 (createdAt, id) 键集位置而非偏移量，
// 其他位置的插入/删除不会造成本会话跳页或重复；
// 同一游标重复请求返回完全一致的结果，失败后可安全重试。
type FeedService interface {
	List(ctx context.Context, cursor string, count int) (*FeedPage, error)
}

type feedService struct {
	repo repository.PostRepository
}

func NewFeedService(repo repository.PostRepository) FeedService {
	return &feedService{repo: repo}
}

// cursorPayload 游标内容；t 为 createdAt 的 UnixNano
type cursorPayload struct {
	T  int64  `json:"t"`
	ID string `json:"id"`
}

func encodeCursor(p *model.Post) string {
	b, _ := json.Marshal(cursorPayload{T: p.CreatedAt.UnixNano(), ID: p.ID})
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(cursor string) (*repository.Position, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var p cursorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if p.ID == "" {
		return nil, ErrInvalidCursor
	}
	return &repository.Position{CreatedAt: time.Unix(0, p.T).UTC(), ID: p.ID}, nil
}

func (s *feedService) List(ctx context.Context, cursor string, count int) (*FeedPage, error) {
	if count < 1 {
		count = defaultPageSize
	}
	if count > maxPageSize {
		count = maxPageSize
	}

	var before *repository.Position
	if cursor != "" {
		pos, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		before = pos
	}

	// 多取一条判断是否还有下一页
	posts, err := s.repo.ListVisible(ctx, before, count+1)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	page := &FeedPage{Posts: posts, Cursor: cursor, HasNext: false}
	if len(posts) > count {
		page.Posts = posts[:count]
		page.HasNext = true
	}
	if len(page.Posts) > 0 {
		page.Cursor = encodeCursor(page.Posts[len(page.Posts)-1])
	}
	if page.Posts == nil {
		page.Posts = []*model.Post{}
	}
	return page, nil
}
