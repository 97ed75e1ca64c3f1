package disconnect

import (
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              空间管理
// ============================================================================

// CheckSpace 周期性空间检查
//
// 已建连数超过稳定目标时，从达到稳定窗口的节点里随机挑选
// 多余者断开。候选集按节点标识字节序排定、挑选用注入种子
// 的生成器，给定相同动作日志挑选序列完全一致。now 来自
// 触发检查的 TimerFired 动作的入队时刻。
func (m *Manager) CheckSpace(now time.Time) []types.Effect {
	excess := m.reg.ReadyCount() - m.cfg.MaxStablePeers
	if excess <= 0 {
		return nil
	}

	// ReadyPeers 已按字节序排定
	var eligible []types.PeerID
	for _, peer := range m.reg.ReadyPeers() {
		rec, ok := m.reg.Get(peer)
		if !ok || rec.Phase != types.DisconnectPhaseNone {
			continue
		}
		if rec.Age(now) >= m.cfg.StabilityWindow {
			eligible = append(eligible, peer)
		}
	}
	if len(eligible) == 0 {
		logger.Debug("over stable target but no peer outside stability window",
			"excess", excess)
		return nil
	}

	n := excess
	if n > len(eligible) {
		n = len(eligible)
	}
	logger.Info("space management trimming peers",
		"ready", m.reg.ReadyCount(),
		"target", m.cfg.MaxStablePeers,
		"eligible", len(eligible),
		"trimming", n)

	var effects []types.Effect
	for i := 0; i < n; i++ {
		idx := m.rng.Intn(len(eligible))
		peer := eligible[idx]
		eligible = append(eligible[:idx], eligible[idx+1:]...)

		rec, ok := m.reg.Get(peer)
		if !ok {
			continue
		}
		effects = append(effects, m.begin(rec, now, types.DisconnectSpaceManagement)...)
	}
	return effects
}
