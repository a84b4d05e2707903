package verifier

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/treehole/internal/service"
)

// Challenge 人机验证挑战
type Challenge struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// QuestionPair 题库条目
type QuestionPair struct {
	Question string
	Answer   string
}

// Verifier 人机验证网关。挑战答案以 TTL 写入 redis，
// 验证不删除挑战，Consume 在帖子落库成功后才调用，
// 存储失败时整个提交可以原样重试。
type Verifier struct {
	cache     *redis.Client
	questions []QuestionPair
	ttl       time.Duration
}

func New(cache *redis.Client, questions []QuestionPair, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Verifier{cache: cache, questions: questions, ttl: ttl}
}

func key(id string) string { return "verify:challenge:" + id }

// Issue 签发新挑战：随机抽题，答案入 redis
func (v *Verifier) Issue(ctx context.Context) (*Challenge, error) {
	if len(v.questions) == 0 {
		return nil, fmt.Errorf("verifier: empty question pool")
	}
	q := v.questions[rand.Intn(len(v.questions))]
	id := uuid.New().String()
	if err := v.cache.Set(ctx, key(id), normalize(q.Answer), v.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	return &Challenge{ID: id, Question: q.Question}, nil
}

// Validate 校验答案；挑战不存在/过期/答错均视作验证失败
func (v *Verifier) Validate(ctx context.Context, challengeID, answer string) error {
	want, err := v.cache.Get(ctx, key(challengeID)).Result()
	if err == redis.Nil {
		return service.ErrVerification
	}
	if err != nil {
		return fmt.Errorf("load challenge: %w", err)
	}
	if normalize(answer) != want {
		return service.ErrVerification
	}
	return nil
}

// Consume 作废挑战（提交成功后调用）
func (v *Verifier) Consume(ctx context.Context, challengeID string) error {
	return v.cache.Del(ctx, key(challengeID)).Err()
}

// normalize 忽略大小写与首尾空白比较答案
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
