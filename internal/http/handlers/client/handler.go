package client

import "github.com/vale-cashback/api/internal/provider"

// Handler 客户端接口处理器入口
// 说明：该处理器用于公开接口与客户侧 API。
type Handler struct {
	*provider.Container
}

// New 创建客户端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
