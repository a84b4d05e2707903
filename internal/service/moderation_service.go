package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/treehole/internal/model"
	"github.com/d60-Lab/treehole/internal/repository"
)

// ModerationService 审核状态机。
// PENDING → ACCEPTED / REJECTED，两个终态之间没有回退路径。
// 所有状态变更必须经由这里，不允许直接改字段。
type ModerationService interface {
	// Accept 通过帖子并原子分配下一个公开序号
	Accept(ctx context.Context, id, actor string) (*model.Post, error)

	// Reject 驳回帖子并记录原因
	Reject(ctx context.Context, id, reason, actor string) (*model.Post, error)

	// SetFBLink 通过后补写外部发布链接，可重复覆盖
	SetFBLink(ctx context.Context, id, fbLink, actor string) (*model.Post, error)

	// Remove 管理员删除，任意状态均可
	Remove(ctx context.Context, id string) error

	// ListPending 待审列表，按创建时间正序（建议按此顺序处理）
	ListPending(ctx context.Context, page, pageSize int) ([]*model.Post, error)
}

// 状态变更走事务，直接持有 db（仓储只承担普通读写）
type moderationService struct {
	db   *gorm.DB
	repo repository.PostRepository
}

func NewModerationService(db *gorm.DB, repo repository.PostRepository) ModerationService {
	return &moderationService{db: db, repo: repo}
}

// getPost 事务内按 id 取帖子
func getPost(tx *gorm.DB, id string) (*model.Post, error) {
	var post model.Post
	err := tx.Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// classifyState 条件更新未命中时给出准确的错误
func classifyState(tx *gorm.DB, id string) error {
	post, err := getPost(tx, id)
	if err != nil {
		return err
	}
	if post.Status == model.StatusAccepted {
		return ErrAlreadyAccepted
	}
	return ErrInvalidState
}

func (s *moderationService) Accept(ctx context.Context, id, actor string) (*model.Post, error) {
	var accepted *model.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := getPost(tx, id)
		if err != nil {
			return err
		}
		switch post.Status {
		case model.StatusAccepted:
			// 幂等保护：序号绝不重发，但要让调用方知道这是重复操作
			return ErrAlreadyAccepted
		case model.StatusRejected:
			return ErrInvalidState
		}

		// 先抢状态转移，抢不到说明并发方已处理，计数器不白白前进
		history := append(post.History, model.HistoryEntry{
			Action: model.ActionAccept,
			At:     time.Now().UTC(),
			Actor:  actor,
		})
		res := tx.Model(&model.Post{}).
			Where("id = ? AND status = ?", id, model.StatusPending).
			Updates(map[string]interface{}{
				"status":  model.StatusAccepted,
				"history": history,
			})
		if res.Error != nil {
			return fmt.Errorf("accept post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return classifyState(tx, id)
		}

		// 计数器行内自增，并发 Accept 不会产生重复序号；
		// 删除帖子也不回退计数，编号永不复用
		if err := tx.Model(&model.Counter{}).
			Where("name = ?", model.CounterPostNumber).
			Update("value", gorm.Expr("value + 1")).Error; err != nil {
			return fmt.Errorf("advance counter: %w", err)
		}
		var counter model.Counter
		if err := tx.Where("name = ?", model.CounterPostNumber).First(&counter).Error; err != nil {
			return fmt.Errorf("load counter: %w", err)
		}
		if err := tx.Model(&model.Post{}).
			Where("id = ?", id).
			Update("number", counter.Value).Error; err != nil {
			return fmt.Errorf("assign number: %w", err)
		}

		accepted, err = getPost(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (s *moderationService) Reject(ctx context.Context, id, reason, actor string) (*model.Post, error) {
	var rejected *model.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := getPost(tx, id)
		if err != nil {
			return err
		}
		if post.Status != model.StatusPending {
			return ErrInvalidState
		}

		history := append(post.History, model.HistoryEntry{
			Action: model.ActionReject,
			At:     time.Now().UTC(),
			Actor:  actor,
		})
		res := tx.Model(&model.Post{}).
			Where("id = ? AND status = ?", id, model.StatusPending).
			Updates(map[string]interface{}{
				"status":  model.StatusRejected,
				"reason":  strings.TrimSpace(reason),
				"history": history,
			})
		if res.Error != nil {
			return fmt.Errorf("reject post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return classifyState(tx, id)
		}

		rejected, err = getPost(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *moderationService) SetFBLink(ctx context.Context, id, fbLink, actor string) (*model.Post, error) {
	if strings.TrimSpace(fbLink) == "" {
		return nil, fmt.Errorf("%w: fbLink is required", ErrValidation)
	}
	var updated *model.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := getPost(tx, id)
		if err != nil {
			return err
		}
		if post.Status != model.StatusAccepted {
			return ErrInvalidState
		}

		// 覆盖写是允许的，重复设置链接不算错误
		history := append(post.History, model.HistoryEntry{
			Action: model.ActionSetFBLink,
			At:     time.Now().UTC(),
			Actor:  actor,
		})
		res := tx.Model(&model.Post{}).
			Where("id = ? AND status = ?", id, model.StatusAccepted).
			Updates(map[string]interface{}{
				"fb_link": strings.TrimSpace(fbLink),
				"history": history,
			})
		if res.Error != nil {
			return fmt.Errorf("set fb link: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		updated, err = getPost(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *moderationService) Remove(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if !deleted {
		return ErrPostNotFound
	}
	return nil
}

func (s *moderationService) ListPending(ctx context.Context, page, pageSize int) ([]*model.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.repo.ListPending(ctx, offset, pageSize)
}
