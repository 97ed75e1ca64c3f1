// Package registry 实现节点注册表
package registry

import (
	"go.uber.org/fx"

	"github.com/chainp2p/go-chainp2p/internal/config"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("registry",
		fx.Provide(ProvideRegistry),
	)
}

// ProvideRegistry 提供 Registry 实例
func ProvideRegistry(cfg config.Config) (*Registry, error) {
	return New(cfg.MaxPeers, cfg.HistorySize)
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "registry"
	// Description 模块描述
	Description = "节点注册表模块，维护节点记录、槽位上限与断开历史"
)
