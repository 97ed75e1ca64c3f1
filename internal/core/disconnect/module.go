// Package disconnect 实现断开流程与节点空间管理
package disconnect

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "disconnect"
	// Description 模块描述
	Description = "断开管理器模块，统一断开流水线与空间管理"
)
