package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/treehole/internal/model"
)

func TestFeedPagination(t *testing.T) {
	_, repo := setupTestDB(t)
	feed := NewFeedService(repo)
	ctx := context.Background()

	// t1 < t2 < ... < t20
	posts := make([]*model.Post, 20)
	for i := range posts {
		posts[i] = seedPost(t, repo, testBase.Add(time.Duration(i)*time.Minute))
	}

	first, err := feed.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, first.Posts, 10)
	require.True(t, first.HasNext)
	// 最新在前：t20..t11
	for i := 0; i < 10; i++ {
		require.Equal(t, posts[19-i].ID, first.Posts[i].ID)
	}

	second, err := feed.List(ctx, first.Cursor, 10)
	require.NoError(t, err)
	require.Len(t, second.Posts, 10)
	require.False(t, second.HasNext)
	// t10..t1
	for i := 0; i < 10; i++ {
		require.Equal(t, posts[9-i].ID, second.Posts[i].ID)
	}
}

func TestFeedSameCursorSameResult(t *testing.T) {
	_, repo := setupTestDB(t)
	feed := NewFeedService(repo)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		seedPost(t, repo, testBase.Add(time.Duration(i)*time.Minute))
	}

	first, err := feed.List(ctx, "", 10)
	require.NoError(t, err)

	// 同一游标重复请求结果完全一致，失败重试不会跳页或重复
	a, err := feed.List(ctx, first.Cursor, 10)
	require.NoError(t, err)
	b, err := feed.List(ctx, first.Cursor, 10)
	require.NoError(t, err)
	require.Equal(t, len(a.Posts), len(b.Posts))
	for i := range a.Posts {
		require.Equal(t, a.Posts[i].ID, b.Posts[i].ID)
	}
	require.Equal(t, a.Cursor, b.Cursor)
	require.Equal(t, a.HasNext, b.HasNext)
}

func TestFeedStableUnderWrites(t *testing.T) {
	_, repo := setupTestDB(t)
	feed := NewFeedService(repo)
	ctx := context.Background()

	posts := make([]*model.Post, 12)
	for i := range posts {
		posts[i] = seedPost(t, repo, testBase.Add(time.Duration(i)*time.Minute))
	}

	first, err := feed.List(ctx, "", 6)
	require.NoError(t, err)
	require.True(t, first.HasNext)

	// 游标签发后新增一条更新的帖子、删除游标所指的那条，
	// 均不影响继续翻更早的页
	seedPost(t, repo, testBase.Add(time.Hour))
	lastShown := first.Posts[len(first.Posts)-1]
	_, err = repo.Delete(ctx, lastShown.ID)
	require.NoError(t, err)

	second, err := feed.List(ctx, first.Cursor, 6)
	require.NoError(t, err)
	require.Len(t, second.Posts, 6)
	for i := 0; i < 6; i++ {
		require.Equal(t, posts[5-i].ID, second.Posts[i].ID)
	}
	require.False(t, second.HasNext)
}

func TestFeedExcludesRejected(t *testing.T) {
	db, repo := setupTestDB(t)
	feed := NewFeedService(repo)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	visible := seedPost(t, repo, testBase)
	rejected := seedPost(t, repo, testBase.Add(time.Minute))
	acceptedPost := seedPost(t, repo, testBase.Add(2*time.Minute))

	_, err := mod.Reject(ctx, rejected.ID, "不合适", "mod-a")
	require.NoError(t, err)
	_, err = mod.Accept(ctx, acceptedPost.ID, "mod-a")
	require.NoError(t, err)

	page, err := feed.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	require.Equal(t, acceptedPost.ID, page.Posts[0].ID)
	require.Equal(t, visible.ID, page.Posts[1].ID)
	require.False(t, page.HasNext)
}

func TestFeedInvalidCursor(t *testing.T) {
	_, repo := setupTestDB(t)
	feed := NewFeedService(repo)
	ctx := context.Background()

	_, err := feed.List(ctx, "不是游标!!", 10)
	require.ErrorIs(t, err, ErrInvalidCursor)

	// base64 合法但内容不是游标
	_, err = feed.List(ctx, "bm90LWEtY3Vyc29y", 10)
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestFeedEmpty(t *testing.T) {
	_, repo := setupTestDB(t)
	feed := NewFeedService(repo)

	page, err := feed.List(context.Background(), "", 10)
	require.NoError(t, err)
	require.NotNil(t, page.Posts)
	require.Empty(t, page.Posts)
	require.False(t, page.HasNext)
	require.Empty(t, page.Cursor)
}
