package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/treehole/internal/model"
)

// Position 信息流键集位置：严格早于 (CreatedAt, ID) 的帖子属于下一页。
// 基于键集而非偏移量，中途的插入/删除不会造成跳页或重复。
type Position struct {
	CreatedAt time.Time
	ID        string
}

// PostRepository 帖子仓储接口
type PostRepository interface {
	// Create 落地新帖子
	Create(ctx context.Context, post *model.Post) error

	// GetByID 按内部 id 查询
	GetByID(ctx context.Context, id string) (*model.Post, error)

	// GetByNumber 按公开序号查询（仅已通过的帖子有序号）
	GetByNumber(ctx context.Context, number int64) (*model.Post, error)

	// GetByHash 按所有权令牌查询
	GetByHash(ctx context.Context, hash string) (*model.Post, error)

	// ListVisible 信息流查询：排除 REJECTED，按 (created_at, id) 倒序，
	// before 为 nil 时从最新开始
	ListVisible(ctx context.Context, before *Position, limit int) ([]*model.Post, error)

	// ListPending 待审帖子，按创建时间正序（建议审核顺序）
	ListPending(ctx context.Context, offset, limit int) ([]*model.Post, error)

	// Delete 物理删除；返回是否确有删除
	Delete(ctx context.Context, id string) (bool, error)

	// Close 关闭数据库连接
	Close() error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建帖子仓储
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByNumber(ctx context.Context, number int64) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByHash(ctx context.Context, hash string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListVisible(ctx context.Context, before *Position, limit int) ([]*model.Post, error) {
	q := r.db.WithContext(ctx).
		Where("status <> ?", model.StatusRejected)
	if before != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID)
	}
	var posts []*model.Post
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListPending(ctx context.Context, offset, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusPending).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema 初始化表结构并播种序号计数器
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Post{}, &model.Counter{}); err != nil {
		return err
	}
	// 计数器行不存在时补 0 值
	return db.Where("name = ?", model.CounterPostNumber).
		FirstOrCreate(&model.Counter{Name: model.CounterPostNumber, Value: 0}).Error
}
