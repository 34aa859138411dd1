package gateway

import (
	"errors"
	"fmt"
)

// 网关错误分类。每类错误最终以单条用户可见消息呈现，该层不做重试
var (
	// ErrInvalidEndpoint 无法构造合法请求地址
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrNoResponse 传输层未返回可归类的响应
	ErrNoResponse = errors.New("no response received from the server")
	// ErrMalformedResponse 响应体存在但不符合约定 schema（不允许静默取默认值）
	ErrMalformedResponse = errors.New("failed to decode the server response")
	// ErrNoConnection 连通性预检失败（发起认证前检查，未发出任何网络请求）
	ErrNoConnection = errors.New("no internet connection")
)

// ServerError 服务端拒绝（状态码在 200-299 之外），保留原始响应体便于诊断
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Body)
}

// TransportError 传输失败（DNS / 超时 / 连接重置）
type TransportError struct {
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %s", e.Message)
}

// ValidationError 客户端本地校验失败（必填字段、密码校验等），在任何网络调用之前抛出
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}
