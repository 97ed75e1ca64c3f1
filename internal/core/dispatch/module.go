// Package dispatch 实现单线程核心归约器与动作队列
package dispatch

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/channel"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
)

// defaultSeed 空间管理随机挑选的默认种子
//
// 重放必须用与原实例相同的种子；需要不可预测性的部署
// 自行用 NewCore 注入。
const defaultSeed int64 = 0x5eed

// ============================================================================
// Fx 模块
// ============================================================================

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("dispatch",
		fx.Provide(ProvideCore),
		fx.Provide(ProvideQueue),
	)
}

// ProvideCore 提供核心归约器
func ProvideCore(cfg config.Config, reg *registry.Registry, channels *channel.Store) *Core {
	return NewCore(cfg, reg, channels, defaultSeed)
}

// ProvideQueue 提供动作队列
func ProvideQueue(core *Core, exec Executor, clk clock.Clock) *Queue {
	return NewQueue(core, exec, clk)
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "dispatch"
	// Description 模块描述
	Description = "核心归约器模块，单线程动作队列与确定性重放"
)
