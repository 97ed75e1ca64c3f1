package disconnect

import (
	"math/rand"
	"time"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var logger = log.Logger("core/disconnect")

// Hooks 断开完成回调
//
// 由核心归约器实现，在记录移出注册表时丢弃该节点的
// 通道状态等伴生资源。
type Hooks interface {
	// PeerDropped 节点记录被丢弃
	PeerDropped(peer types.PeerID) []types.Effect
}

// Manager 断开管理器
//
// 所有断开（显式请求、协议违规、对端关闭、空间管理）走
// 同一条阶段流水线；方法都是纯转移，资源释放交给外部
// 服务执行并以 CleanupResult 动作回报。
type Manager struct {
	cfg   config.Config
	reg   *registry.Registry
	hooks Hooks

	// rng 空间管理的随机挑选；种子注入使重放可复现
	rng *rand.Rand
}

// New 创建断开管理器
func New(cfg config.Config, reg *registry.Registry, hooks Hooks, seed int64) *Manager {
	return &Manager{
		cfg:   cfg,
		reg:   reg,
		hooks: hooks,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// ============================================================================
//                              断开流水线
// ============================================================================

// Request 调用方请求断开
func (m *Manager) Request(at time.Time, a types.DisconnectRequest) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok {
		logger.Debug("disconnect for unknown peer ignored",
			"peer", a.Peer.ShortString())
		return nil
	}
	if rec.Phase != types.DisconnectPhaseNone {
		logger.Debug("disconnect already in progress",
			"peer", a.Peer.ShortString(),
			"phase", rec.Phase.String())
		return nil
	}
	return m.begin(rec, at, a.Reason)
}

// PeerClosed 观察到对端主动关闭
//
// 本地发起步骤没有意义，直接进入资源清理。
func (m *Manager) PeerClosed(at time.Time, a types.PeerClosed) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok {
		logger.Debug("close for unknown peer ignored",
			"peer", a.Peer.ShortString())
		return nil
	}
	if rec.Phase != types.DisconnectPhaseNone {
		// 双方同时发起：清理已在路上
		logger.Debug("peer closed while disconnecting",
			"peer", a.Peer.ShortString(),
			"phase", rec.Phase.String())
		return nil
	}
	return m.begin(rec, at, types.DisconnectPeerClosed)
}

// begin 进入断开流水线
func (m *Manager) begin(rec *registry.PeerRecord, at time.Time, reason types.DisconnectReason) []types.Effect {
	logger.Info("disconnecting peer",
		"peer", rec.ID.ShortString(),
		"reason", reason.String(),
		"age", rec.Age(at).String())

	rec.Status = types.ConnStatusDisconnecting
	rec.DisconnectReason = reason
	rec.Phase = types.DisconnectPhaseInit
	rec.Phase = types.DisconnectPhaseCleanupPending
	rec.StateEnteredAt = at

	return []types.Effect{
		types.CloseTransport{Peer: rec.ID, Transport: rec.Transport},
	}
}

// CleanupDone 传输资源清理完成回报
//
// 失败重试一次；再败则强制完成。迟到的回报（记录已不在
// CleanupPending，或已被逐出）按过期事件丢弃。
func (m *Manager) CleanupDone(at time.Time, a types.CleanupResult) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok {
		logger.Debug("cleanup result for unknown peer ignored",
			"peer", a.Peer.ShortString())
		return nil
	}
	if rec.Phase != types.DisconnectPhaseCleanupPending {
		logger.Debug("stale cleanup result ignored",
			"peer", a.Peer.ShortString(),
			"phase", rec.Phase.String())
		return nil
	}

	if a.Err != "" {
		if !rec.CleanupRetried {
			rec.CleanupRetried = true
			logger.Info("cleanup failed, retrying once",
				"peer", a.Peer.ShortString(),
				"err", a.Err)
			return []types.Effect{
				types.CloseTransport{Peer: rec.ID, Transport: rec.Transport},
			}
		}
		logger.Warn("cleanup failed after retry, forcing completion",
			"peer", a.Peer.ShortString(),
			"err", a.Err)
	}
	return m.finish(rec, at)
}

// finish 断开完成：移出注册表、留痕、通知
func (m *Manager) finish(rec *registry.PeerRecord, at time.Time) []types.Effect {
	rec.Phase = types.DisconnectPhaseFinish
	m.reg.Remove(rec.ID)
	m.reg.RecordDisconnection(registry.DisconnectionRecord{
		Peer:       rec.ID,
		Reason:     rec.DisconnectReason,
		At:         at,
		Suspicious: rec.DisconnectReason == types.DisconnectProtocolViolation,
	})

	logger.Info("peer disconnected",
		"peer", rec.ID.ShortString(),
		"reason", rec.DisconnectReason.String())

	effects := []types.Effect{
		types.NotifyDisconnected{Peer: rec.ID, Reason: rec.DisconnectReason},
	}
	if !rec.RequestID.IsEmpty() {
		// 建连尚未完成就被卷入断开流水线：调用方在等完成回调
		effects = append(effects, types.NotifyConnectOutcome{
			RequestID: rec.RequestID,
			Peer:      rec.ID,
			Err:       rec.DisconnectReason.String(),
		})
	}
	effects = append(effects, m.hooks.PeerDropped(rec.ID)...)
	return effects
}
