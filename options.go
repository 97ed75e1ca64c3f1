package chainp2p

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/dispatch"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	cfg config.Config

	// exec 业务执行器（真实 I/O）
	exec dispatch.Executor

	// clock 注入时钟（测试用模拟时钟，缺省挂钟）
	clock clock.Clock

	// userFxOptions 用户自定义 Fx 扩展
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		cfg:   config.DefaultConfig(),
		clock: clock.New(),
	}
}

// WithLocalPeer 设置本节点标识
func WithLocalPeer(peer types.PeerID) Option {
	return func(o *options) error {
		o.cfg.LocalPeer = peer
		return nil
	}
}

// WithChainID 设置本节点所在链
func WithChainID(chain types.ChainID) Option {
	return func(o *options) error {
		o.cfg.ChainID = chain
		return nil
	}
}

// WithMaxPeers 设置连接槽位上限
func WithMaxPeers(n int) Option {
	return func(o *options) error {
		o.cfg.MaxPeers = n
		return nil
	}
}

// WithMaxStablePeers 设置空间管理的目标连接数
func WithMaxStablePeers(n int) Option {
	return func(o *options) error {
		o.cfg.MaxStablePeers = n
		return nil
	}
}

// WithStabilityWindow 设置空间管理的稳定窗口
func WithStabilityWindow(d time.Duration) Option {
	return func(o *options) error {
		o.cfg.StabilityWindow = d
		return nil
	}
}

// WithConnectTimeouts 设置两种传输的建连超时
func WithConnectTimeouts(push, pull time.Duration) Option {
	return func(o *options) error {
		o.cfg.ConnectTimeoutPush = push
		o.cfg.ConnectTimeoutPull = pull
		return nil
	}
}

// WithHistorySize 设置断开历史容量
func WithHistorySize(n int) Option {
	return func(o *options) error {
		o.cfg.HistorySize = n
		return nil
	}
}

// WithExecutor 注册业务执行器
//
// 执行器承接定时器之外的全部效果（地址解析、密钥协商、
// 握手、发送字节、上层回调），完成结果以动作回灌节点。
func WithExecutor(exec dispatch.Executor) Option {
	return func(o *options) error {
		o.exec = exec
		return nil
	}
}

// WithClock 注入时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithFxOptions 追加用户自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
