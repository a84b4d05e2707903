package verifier

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/treehole/internal/service"
)

func setupVerifier(t *testing.T, ttl time.Duration) (*Verifier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	v := New(client, []QuestionPair{
		{Question: "一加一等于几？", Answer: "2"},
	}, ttl)
	return v, mr
}

func TestIssueAndValidate(t *testing.T) {
	v, _ := setupVerifier(t, time.Minute)
	ctx := context.Background()

	ch, err := v.Issue(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ch.ID)
	require.Equal(t, "一加一等于几？", ch.Question)

	require.ErrorIs(t, v.Validate(ctx, ch.ID, "3"), service.ErrVerification)
	require.NoError(t, v.Validate(ctx, ch.ID, "2"))
	// 答案忽略大小写与首尾空白
	require.NoError(t, v.Validate(ctx, ch.ID, "  2  "))
}

func TestValidateUnknownChallenge(t *testing.T) {
	v, _ := setupVerifier(t, time.Minute)
	require.ErrorIs(t, v.Validate(context.Background(), "no-such-id", "2"),
		service.ErrVerification)
}

func TestConsumeInvalidatesChallenge(t *testing.T) {
	v, _ := setupVerifier(t, time.Minute)
	ctx := context.Background()

	ch, err := v.Issue(ctx)
	require.NoError(t, err)
	// 验证本身不消耗挑战，提交失败后可重试
	require.NoError(t, v.Validate(ctx, ch.ID, "2"))
	require.NoError(t, v.Validate(ctx, ch.ID, "2"))

	require.NoError(t, v.Consume(ctx, ch.ID))
	require.ErrorIs(t, v.Validate(ctx, ch.ID, "2"), service.ErrVerification)
}

func TestChallengeExpiry(t *testing.T) {
	v, mr := setupVerifier(t, time.Minute)
	ctx := context.Background()

	ch, err := v.Issue(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	require.ErrorIs(t, v.Validate(ctx, ch.ID, "2"), service.ErrVerification)
}

func TestIssueEmptyPool(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	v := New(client, nil, time.Minute)
	_, err := v.Issue(context.Background())
	require.Error(t, err)
}
