package repository

import (
	"context"
	"path/filepath"
	"sync"

	"remedylab-client/internal/domain"
)

// FileUsersRepo 文件快照实现：内存 map + JSON 快照，进程重启后恢复
type FileUsersRepo struct {
	mu    sync.RWMutex
	path  string
	users map[string]*domain.User // userID -> User
}

// NewFileUsersRepo 创建用户仓库并加载既有快照
func NewFileUsersRepo(dataDir string) (*FileUsersRepo, error) {
	r := &FileUsersRepo{
		path:  filepath.Join(dataDir, "users.json"),
		users: map[string]*domain.User{},
	}
	if err := loadSnapshot(r.path, &r.users); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileUsersRepo) UpsertUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user
	r.users[user.UserID] = &stored
	return writeSnapshot(r.path, r.users)
}

func (r *FileUsersRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *FileUsersRepo) GetUserByEmailRole(_ context.Context, email, role string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email && u.Role == role {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// Count 当前用户数（测试用）
func (r *FileUsersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
