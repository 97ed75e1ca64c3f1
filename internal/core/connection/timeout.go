package connection

import (
	"time"

	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              超时扫描
// ============================================================================

// SweepTimeouts 周期性超时检查
//
// 把每个非终态建连尝试的当前子状态驻留时长与该尝试的
// 超时上限比较；超限者恰好一次地进入 Error(Timeout) 终态。
// now 来自触发扫描的 TimerFired 动作的入队时刻，转移逻辑
// 本身从不读取挂钟。
func (m *Machine) SweepTimeouts(now time.Time) []types.Effect {
	// 先收集再处理：fail 会在遍历中修改注册表
	var expired []types.PeerID
	m.reg.Each(func(rec *registry.PeerRecord) {
		if rec.Establishing() && !rec.Terminal() && rec.Timeout > 0 && rec.StateAge(now) > rec.Timeout {
			expired = append(expired, rec.ID)
		}
	})

	var effects []types.Effect
	for _, peer := range expired {
		rec, ok := m.reg.Get(peer)
		if !ok {
			continue
		}
		logger.Info("connection attempt timed out",
			"peer", peer.ShortString(),
			"state", rec.StateName(),
			"timeout", rec.Timeout.String())
		effects = append(effects, m.fail(rec, now, types.DisconnectTimeout, false,
			types.ErrConnectionTimeout.Error())...)
	}
	return effects
}
