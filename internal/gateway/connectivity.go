package gateway

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// ConnectivityChecker 连通性检查接口。
// 显式注入到需要预检的服务中（可替换为测试替身），不使用全局单例
type ConnectivityChecker interface {
	IsConnected(ctx context.Context) bool
}

// HTTPChecker 通过探测 base URL 判断连通性。
// 只要拿到任意 HTTP 响应就算在线（404 也是在线），只有传输层失败才算离线
type HTTPChecker struct {
	httpClient *resty.Client
}

// NewHTTPChecker 创建连通性检查器
func NewHTTPChecker(baseURL string) *HTTPChecker {
	return &HTTPChecker{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(3 * time.Second),
	}
}

func (c *HTTPChecker) IsConnected(ctx context.Context) bool {
	_, err := c.httpClient.R().SetContext(ctx).Head("/")
	return err == nil
}
