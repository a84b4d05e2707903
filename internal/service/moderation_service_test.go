package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/treehole/internal/model"
)

var testBase = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestAcceptAssignsSequentialNumbers(t *testing.T) {
	db, repo := setupTestDB(t)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		post := seedPost(t, repo, testBase.Add(time.Duration(i)*time.Minute))
		accepted, err := mod.Accept(ctx, post.ID, "mod-a")
		require.NoError(t, err)
		require.NotNil(t, accepted.Number)
		require.Equal(t, int64(i+1), *accepted.Number)
		require.Equal(t, model.StatusAccepted, accepted.Status)
		// number 非空 ⇔ ACCEPTED
		require.True(t, accepted.Accepted())
		// 历史追加了一条 ACCEPT
		require.Len(t, accepted.History, 2)
		require.Equal(t, model.ActionAccept, accepted.History[1].Action)
		require.Equal(t, "mod-a", accepted.History[1].Actor)
	}
}

func TestAcceptTwiceKeepsNumber(t *testing.T) {
	db, repo := setupTestDB(t)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	post := seedPost(t, repo, testBase)
	accepted, err := mod.Accept(ctx, post.ID, "mod-a")
	require.NoError(t, err)
	require.Equal(t, int64(1), *accepted.Number)

	_, err = mod.Accept(ctx, post.ID, "mod-b")
	require.ErrorIs(t, err, ErrAlreadyAccepted)

	// 序号与历史均未被二次操作影响
	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), *got.Number)
	require.Len(t, got.History, 2)

	// 重复通过不白白消耗序号
	other := seedPost(t, repo, testBase.Add(time.Minute))
	accepted2, err := mod.Accept(ctx, other.ID, "mod-a")
	require.NoError(t, err)
	require.Equal(t, int64(2), *accepted2.Number)
}

func TestRejectThenAcceptFails(t *testing.T) {
	db, repo := setupTestDB(t)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	post := seedPost(t, repo, testBase)
	rejected, err := mod.Reject(ctx, post.ID, "内容不合适", "mod-a")
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, rejected.Status)
	require.Equal(t, "内容不合适", rejected.Reason)
	require.Nil(t, rejected.Number)

	// 没有复活路径
	_, err = mod.Accept(ctx, post.ID, "mod-a")
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = mod.Reject(ctx, post.ID, "再驳一次", "mod-a")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSetFBLinkStateGuard(t *testing.T) {
	db, repo := setupTestDB(t)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	post := seedPost(t, repo, testBase)

	// 通过前不允许设置链接
	_, err := mod.SetFBLink(ctx, post.ID, "https://fb.example/1", "mod-a")
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = mod.Accept(ctx, post.ID, "mod-a")
	require.NoError(t, err)

	updated, err := mod.SetFBLink(ctx, post.ID, "https://fb.example/1", "mod-a")
	require.NoError(t, err)
	require.Equal(t, "https://fb.example/1", updated.FBLink)

	// 重复设置覆盖旧值，不报错
	updated, err = mod.SetFBLink(ctx, post.ID, "https://fb.example/2", "mod-a")
	require.NoError(t, err)
	require.Equal(t, "https://fb.example/2", updated.FBLink)
	// 历史只增不减：SUBMIT + ACCEPT + 两次 SET_FB_LINK
	require.Len(t, updated.History, 4)
}

func TestConcurrentAcceptDistinctNumbers(t *testing.T) {
	db, repo := setupTestDB(t)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	const n = 10
	posts := make([]*model.Post, n)
	for i := range posts {
		posts[i] = seedPost(t, repo, testBase.Add(time.Duration(i)*time.Second))
	}

	numbers := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range posts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			accepted, err := mod.Accept(ctx, posts[i].ID, "mod-a")
			if err != nil {
				errs[i] = err
				return
			}
			numbers[i] = *accepted.Number
		}(i)
	}
	wg.Wait()
	for i := range errs {
		require.NoError(t, errs[i])
	}

	// 序号恰好是 {1..n}，无重复无空洞
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, num := range numbers {
		require.Equal(t, int64(i+1), num)
	}
}

func TestRemoveDoesNotReuseNumber(t *testing.T) {
	db, repo := setupTestDB(t)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	first := seedPost(t, repo, testBase)
	accepted, err := mod.Accept(ctx, first.ID, "mod-a")
	require.NoError(t, err)
	require.Equal(t, int64(1), *accepted.Number)

	// 删除已编号的帖子不回退计数
	require.NoError(t, mod.Remove(ctx, first.ID))
	require.ErrorIs(t, mod.Remove(ctx, first.ID), ErrPostNotFound)

	second := seedPost(t, repo, testBase.Add(time.Minute))
	accepted, err = mod.Accept(ctx, second.ID, "mod-a")
	require.NoError(t, err)
	require.Equal(t, int64(2), *accepted.Number)
}

func TestListPendingOrder(t *testing.T) {
	db, repo := setupTestDB(t)
	mod := NewModerationService(db, repo)
	ctx := context.Background()

	late := seedPost(t, repo, testBase.Add(time.Hour))
	early := seedPost(t, repo, testBase)

	pending, err := mod.ListPending(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, early.ID, pending[0].ID)
	require.Equal(t, late.ID, pending[1].ID)
}
