package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/treehole/internal/model"
	"github.com/d60-Lab/treehole/internal/repository"
	"github.com/d60-Lab/treehole/pkg/logger"
	"github.com/d60-Lab/treehole/pkg/token"
)

// ChallengeVerifier 提交前的人机验证门。Validate 不消耗挑战，
// Consume 仅在帖子成功落库后调用，保证存储失败时提交可整体重试。
type ChallengeVerifier interface {
	Validate(ctx context.Context, challengeID, answer string) error
	Consume(ctx context.Context, challengeID string) error
}

// SubmitInput 提交请求
type SubmitInput struct {
	Title       string
	Content     string
	Tag         string
	ChallengeID string
	Answer      string
}

// PostService 匿名帖子服务
type PostService interface {
	// Submit 走完整提交流程：字段校验 → 人机验证 → 铸造令牌 → 落库。
	// 返回的 Post 含 Hash，仅此一次暴露给作者。
	Submit(ctx context.Context, in SubmitInput) (*model.Post, error)

	// GetByNumber 按公开序号查询（仅 ACCEPTED 帖子持有序号）
	GetByNumber(ctx context.Context, number int64) (*model.Post, error)

	// GetByHash 作者按所有权令牌取回自己的帖子
	GetByHash(ctx context.Context, hash string) (*model.Post, error)

	// DeleteByHash 作者按所有权令牌删除自己的帖子。
	// 删除不回退其他帖子的序号
	DeleteByHash(ctx context.Context, hash string) error
}

type postService struct {
	repo     repository.PostRepository
	verifier ChallengeVerifier
}

func NewPostService(repo repository.PostRepository, verifier ChallengeVerifier) PostService {
	return &postService{repo: repo, verifier: verifier}
}

func (s *postService) Submit(ctx context.Context, in SubmitInput) (*model.Post, error) {
	// 字段校验先于人机验证：空内容不需要消耗答案即可判定
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if strings.TrimSpace(in.Tag) == "" {
		return nil, fmt.Errorf("%w: tag is required", ErrValidation)
	}

	if err := s.verifier.Validate(ctx, in.ChallengeID, in.Answer); err != nil {
		return nil, err
	}

	hash, err := token.Mint()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		Tag:       strings.TrimSpace(in.Tag),
		Hash:      hash,
		Status:    model.StatusPending,
		History:   model.History{{Action: model.ActionSubmit, At: now, Actor: "author"}},
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	// 落库成功后才作废挑战；作废失败不影响本次提交
	if err := s.verifier.Consume(ctx, in.ChallengeID); err != nil {
		logger.Warn("consume challenge failed", zap.String("challenge", in.ChallengeID), zap.Error(err))
	}
	return post, nil
}

func (s *postService) GetByNumber(ctx context.Context, number int64) (*model.Post, error) {
	post, err := s.repo.GetByNumber(ctx, number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) GetByHash(ctx context.Context, hash string) (*model.Post, error) {
	post, err := s.repo.GetByHash(ctx, hash)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 不区分“令牌错误”与“帖子不存在”
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) DeleteByHash(ctx context.Context, hash string) error {
	post, err := s.GetByHash(ctx, hash)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if !deleted {
		return ErrPostNotFound
	}
	return nil
}
