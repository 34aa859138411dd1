package domain

import "time"

// 用户角色
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// User 用户领域模型（本地持久化实体）
// ID 由服务端分配、全局唯一；认证成功后按 ID upsert
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	// Password 客户端输入的明文密码（服务端响应不回传密码，本地保留用于重放登录）
	// 注意：明文保留是沿用现有服务端的设计，见 DESIGN.md
	Password string `json:"password"`
	Role     string `json:"role"` // "doctor" 或 "patient"

	// 医生侧可选字段
	Specialization string `json:"specialization,omitempty"`
	Experience     string `json:"experience,omitempty"`

	// 通用可选字段
	ContactNumber string `json:"contact_number,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Age           string `json:"age,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsDoctor 是否医生角色
func (u *User) IsDoctor() bool { return u.Role == RoleDoctor }
