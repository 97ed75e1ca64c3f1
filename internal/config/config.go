// Package config 定义 ChainP2P 核心配置
package config

import (
	"fmt"
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// Config 核心配置
//
// 配置只在核心构造时读取一次；归约逻辑运行期间不变。
type Config struct {
	// LocalPeer 本节点标识（入站 Offer 的 target 校验使用）
	LocalPeer types.PeerID

	// ChainID 本节点所在链（链不匹配的 Offer 被拒绝）
	ChainID types.ChainID

	// MaxPeers 连接槽位上限
	//
	// 建连 Init 阶段检查；超限的出站请求失败、入站 Offer 被拒。
	// 默认值: 100
	MaxPeers int

	// MaxStablePeers 空间管理的目标连接数
	//
	// 当前连接数超过此值时，空间管理从足够稳定的节点中
	// 随机选择多余者断开。
	// 默认值: 50
	MaxStablePeers int

	// StabilityWindow 稳定窗口
	//
	// 连接时长不足此窗口的节点永远不会被空间管理断开，
	// 避免反复折腾刚加入的节点。
	// 默认值: 90 秒
	StabilityWindow time.Duration

	// SpaceCheckInterval 空间管理周期检查间隔
	// 默认值: 10 秒
	SpaceCheckInterval time.Duration

	// TimeoutSweepInterval 超时扫描间隔
	//
	// 周期性地把每个非终态建连/空闲通道的驻留时长与其
	// 超时上限比较；这是核心仅有的轮询。
	// 默认值: 1 秒
	TimeoutSweepInterval time.Duration

	// ConnectTimeoutPush Push 传输建连超时
	// 默认值: 15 秒
	ConnectTimeoutPush time.Duration

	// ConnectTimeoutPull Pull 传输建连超时
	// 默认值: 10 秒
	ConnectTimeoutPull time.Duration

	// HistorySize 断开历史容量（最旧先逐出）
	// 默认值: 256
	HistorySize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxPeers:             100,
		MaxStablePeers:       50,
		StabilityWindow:      90 * time.Second,
		SpaceCheckInterval:   10 * time.Second,
		TimeoutSweepInterval: 1 * time.Second,
		ConnectTimeoutPush:   15 * time.Second,
		ConnectTimeoutPull:   10 * time.Second,
		HistorySize:          256,
	}
}

// ConnectTimeout 返回指定传输类型的建连超时
func (c Config) ConnectTimeout(t types.TransportKind) time.Duration {
	if t == types.TransportPull {
		return c.ConnectTimeoutPull
	}
	return c.ConnectTimeoutPush
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.MaxPeers <= 0 {
		return fmt.Errorf("config: MaxPeers must be positive: %w", types.ErrInvalidArgument)
	}
	if c.MaxStablePeers <= 0 || c.MaxStablePeers > c.MaxPeers {
		return fmt.Errorf("config: MaxStablePeers must be in (0, MaxPeers]: %w", types.ErrInvalidArgument)
	}
	if c.StabilityWindow <= 0 {
		return fmt.Errorf("config: StabilityWindow must be positive: %w", types.ErrInvalidArgument)
	}
	if c.SpaceCheckInterval <= 0 {
		return fmt.Errorf("config: SpaceCheckInterval must be positive: %w", types.ErrInvalidArgument)
	}
	if c.TimeoutSweepInterval <= 0 {
		return fmt.Errorf("config: TimeoutSweepInterval must be positive: %w", types.ErrInvalidArgument)
	}
	if c.ConnectTimeoutPush <= 0 || c.ConnectTimeoutPull <= 0 {
		return fmt.Errorf("config: connect timeouts must be positive: %w", types.ErrInvalidArgument)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("config: HistorySize must be positive: %w", types.ErrInvalidArgument)
	}
	return nil
}
