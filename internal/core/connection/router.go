package connection

import (
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              方向分派
// ============================================================================

// SignalingSendResult 信令发送完成（出站 Offer 或入站 Answer）
func (m *Machine) SignalingSendResult(at time.Time, a types.SignalingSendResult) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok || !rec.Establishing() {
		return m.stale("signaling-send-result", a.Peer)
	}
	if rec.Direction == types.DirOutbound {
		return m.outgoingSignalingSent(rec, at, a.Err)
	}
	return m.incomingSignalingSent(rec, at, a.Err)
}

// HandshakeResult 下层握手完成
//
// 出站：对应此前发出的 StartHandshake 效果。
// 入站：Push 专属分支的入口——此时该节点尚无记录。
func (m *Machine) HandshakeResult(at time.Time, a types.HandshakeResult) []types.Effect {
	if a.Direction == types.DirInbound {
		return m.incomingPush(at, a)
	}
	rec, ok := m.reg.Get(a.Peer)
	if !ok || rec.Direction != types.DirOutbound || !rec.Establishing() {
		return m.stale("handshake-result", a.Peer)
	}
	return m.outgoingHandshake(rec, at, a.Err)
}

// FinalizeResult 建连收尾完成（Pull 传输）
func (m *Machine) FinalizeResult(at time.Time, a types.FinalizeResult) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok || !rec.Establishing() {
		return m.stale("finalize-result", a.Peer)
	}
	if rec.Direction == types.DirOutbound {
		return m.outgoingFinalize(rec, at, a.Err)
	}
	return m.incomingFinalize(rec, at, a.Err)
}
