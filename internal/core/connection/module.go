// Package connection 实现连接建立状态机
package connection

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "connection"
	// Description 模块描述
	Description = "连接建立状态机模块，出站/入站两套子机与超时扫描"
)
