package connection

import (
	"time"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var logger = log.Logger("core/connection")

// Hooks 建连结果回调
//
// 由核心归约器实现，把建连终态接到通道层与断开管理器上。
// 回调返回的效果并入本次归约的效果列表。
type Hooks interface {
	// PeerEstablished 节点建连成功
	PeerEstablished(peer types.PeerID, transport types.TransportKind, at time.Time) []types.Effect

	// PeerDropped 节点记录被丢弃（建连失败或被较新连接顶替）
	PeerDropped(peer types.PeerID) []types.Effect
}

// Machine 连接建立状态机
//
// 出站与入站两套子机共用一个注册表；所有方法都是
// (状态, 动作) → 效果 的纯转移，不做任何 I/O。
type Machine struct {
	cfg   config.Config
	reg   *registry.Registry
	hooks Hooks
}

// New 创建连接建立状态机
func New(cfg config.Config, reg *registry.Registry, hooks Hooks) *Machine {
	return &Machine{cfg: cfg, reg: reg, hooks: hooks}
}

// ============================================================================
//                              公共辅助
// ============================================================================

// stale 迟到/错位的外部完成事件
//
// 防御性检查：记录日志后按无操作处理，绝不复活状态。
func (m *Machine) stale(action string, peer types.PeerID) []types.Effect {
	logger.Debug("stale completion ignored",
		"action", action,
		"peer", peer.ShortString())
	return nil
}

// fail 建连失败：进入 Error 终态并丢弃记录
//
// Error 终态把整条记录移出注册表，仅在断开历史中留痕；
// 部分状态绝不跨越一次完成的失败持续存在。
func (m *Machine) fail(rec *registry.PeerRecord, at time.Time, reason types.DisconnectReason, suspicious bool, errMsg string) []types.Effect {
	if rec.Direction == types.DirOutbound {
		rec.EnterOutgoing(types.OutgoingError, at)
	} else {
		rec.EnterIncoming(types.IncomingError, at)
	}
	logger.Info("connection attempt failed",
		"peer", rec.ID.ShortString(),
		"direction", rec.Direction.String(),
		"reason", reason.String(),
		"err", errMsg)

	m.reg.Remove(rec.ID)
	m.reg.RecordDisconnection(registry.DisconnectionRecord{
		Peer:       rec.ID,
		Reason:     reason,
		At:         at,
		Suspicious: suspicious,
	})

	effects := []types.Effect{
		types.CloseTransport{Peer: rec.ID, Transport: rec.Transport},
	}
	if !rec.RequestID.IsEmpty() {
		effects = append(effects, types.NotifyConnectOutcome{
			RequestID: rec.RequestID,
			Peer:      rec.ID,
			Err:       errMsg,
		})
	}
	effects = append(effects, m.hooks.PeerDropped(rec.ID)...)
	return effects
}

// establish 建连成功：固定传输能力、触发回调
func (m *Machine) establish(rec *registry.PeerRecord, at time.Time) []types.Effect {
	rec.Establish(at)
	logger.Info("peer connected",
		"peer", rec.ID.ShortString(),
		"direction", rec.Direction.String(),
		"transport", rec.Transport.String())

	var effects []types.Effect
	if !rec.RequestID.IsEmpty() {
		effects = append(effects, types.NotifyConnectOutcome{
			RequestID: rec.RequestID,
			Peer:      rec.ID,
		})
		rec.RequestID = types.EmptyRequestID
	}
	effects = append(effects, m.hooks.PeerEstablished(rec.ID, rec.Transport, at)...)
	return effects
}

// evictOlder 入站重复连接：关闭较旧的一条
//
// 较旧记录立即移出注册表并发出资源清理与断开通知；
// 新连接随后以全新记录继续。对已逐出节点迟到的
// CleanupResult 会因断开阶段不匹配而被当作过期事件丢弃。
func (m *Machine) evictOlder(old *registry.PeerRecord, at time.Time) []types.Effect {
	logger.Info("duplicate connection: closing older",
		"peer", old.ID.ShortString(),
		"older-direction", old.Direction.String())

	m.reg.Remove(old.ID)
	m.reg.RecordDisconnection(registry.DisconnectionRecord{
		Peer:   old.ID,
		Reason: types.DisconnectDuplicatePeer,
		At:     at,
	})

	effects := []types.Effect{
		types.CloseTransport{Peer: old.ID, Transport: old.Transport},
		types.NotifyDisconnected{Peer: old.ID, Reason: types.DisconnectDuplicatePeer},
	}
	if !old.RequestID.IsEmpty() {
		// 被顶替的是尚未完成的出站尝试：调用方在等完成回调
		effects = append(effects, types.NotifyConnectOutcome{
			RequestID: old.RequestID,
			Peer:      old.ID,
			Err:       types.ErrDuplicatePeer.Error(),
		})
	}
	effects = append(effects, m.hooks.PeerDropped(old.ID)...)
	return effects
}
