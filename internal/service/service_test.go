package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/treehole/internal/model"
	"github.com/d60-Lab/treehole/internal/repository"
)

func setupTestDB(t *testing.T) (*gorm.DB, repository.PostRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库限制单连接：连接池的新连接会各自拿到空库，
	// 且单连接天然串行化并发事务
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.InitSchema(db))
	return db, repository.NewPostRepository(db)
}

func seedPost(t *testing.T, repo repository.PostRepository, createdAt time.Time) *model.Post {
	t.Helper()
	id := uuid.New().String()
	post := &model.Post{
		ID:        id,
		Content:   "提交内容 " + id[:8],
		Tag:       "日常",
		Hash:      "hash-" + id,
		Status:    model.StatusPending,
		History:   model.History{{Action: model.ActionSubmit, At: createdAt, Actor: "author"}},
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

// stubVerifier 测试用验证门
type stubVerifier struct {
	pass      bool
	validated int
	consumed  int
}

func (v *stubVerifier) Validate(ctx context.Context, challengeID, answer string) error {
	v.validated++
	if !v.pass {
		return ErrVerification
	}
	return nil
}

func (v *stubVerifier) Consume(ctx context.Context, challengeID string) error {
	v.consumed++
	return nil
}
