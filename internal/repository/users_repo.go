package repository

import (
	"context"
	"errors"

	"remedylab-client/internal/domain"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// UsersRepository 用户Repository接口
// 使用强类型领域模型，不使用map[string]any
type UsersRepository interface {
	// UpsertUser 按 user_id upsert（存在则整体更新，不存在则插入）。
	// 必须是原子操作：认证与报告同步可能交错写入同一用户
	UpsertUser(ctx context.Context, user *domain.User) error

	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmailRole 按邮箱+角色查询（登录后定位本地记录）
	GetUserByEmailRole(ctx context.Context, email, role string) (*domain.User, error)
}
