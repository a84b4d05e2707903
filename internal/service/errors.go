package service

import "errors"

// 统一错误分类，在 handler 边界映射为响应码
var (
	// ErrVerification 人机验证失败（挑战不存在、过期或答案错误）
	ErrVerification = errors.New("verification failed")

	// ErrValidation 必填字段缺失或为空
	ErrValidation = errors.New("invalid request")

	// ErrPostNotFound 帖子不存在。按令牌查询失败也返回此错误，
	// 不区分“令牌错误”与“帖子不存在”，避免枚举探测
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidState 当前状态不允许该转移
	ErrInvalidState = errors.New("invalid post state for this action")

	// ErrAlreadyAccepted 重复通过；序号不会被重新分配
	ErrAlreadyAccepted = errors.New("post already accepted")

	// ErrInvalidCursor 分页游标无法解析
	ErrInvalidCursor = errors.New("invalid feed cursor")
)
