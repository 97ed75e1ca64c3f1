package dispatch

import (
	"fmt"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/channel"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
)

// Replay 重放动作日志
//
// 用相同配置与种子构造全新核心，逐条重放日志后返回注册表
// 快照。与原实例的快照逐字段相等是核心的基础性质，诊断与
// 测试都建立在这上面。重放期间产生的效果全部丢弃——它们
// 在原始运行中早已执行过。
func Replay(cfg config.Config, seed int64, journal []Entry) (registry.Snapshot, error) {
	reg, err := registry.New(cfg.MaxPeers, cfg.HistorySize)
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("dispatch: replay registry: %w", err)
	}
	channels, err := channel.NewStore()
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("dispatch: replay channel store: %w", err)
	}
	core := NewCore(cfg, reg, channels, seed)
	for _, entry := range journal {
		core.Apply(entry.At, entry.Action)
	}
	return core.Snapshot(), nil
}
