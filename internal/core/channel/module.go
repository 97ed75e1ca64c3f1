// Package channel 实现传输无关的通道抽象
package channel

import (
	"go.uber.org/fx"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("channel",
		fx.Provide(NewStore),
	)
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "channel"
	// Description 模块描述
	Description = "传输无关的通道抽象模块，按通道类型表驱动实例化通用状态机"
)
