package connection

import (
	"time"

	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              入站建连（Pull）
// ============================================================================

// IncomingOffer 收到远端连接 Offer
//
// 校验顺序：目标 → 链 → 身份 → 自连接 → 重复 → 容量。
// 拒绝不创建记录，仅回发拒绝应答；IsBad 的拒绝在断开
// 历史中留下可疑标记。
func (m *Machine) IncomingOffer(at time.Time, a types.IncomingOffer) []types.Effect {
	reject := func(reason types.RejectionReason) []types.Effect {
		logger.Debug("incoming offer rejected",
			"peer", a.Peer.ShortString(),
			"reason", reason.String())
		if reason.IsBad() {
			m.reg.RecordDisconnection(registry.DisconnectionRecord{
				Peer:       a.Peer,
				Reason:     types.DisconnectSignalingFailed,
				At:         at,
				Suspicious: true,
			})
		}
		return []types.Effect{types.SendSignalingResponse{
			Target:   a.Peer,
			Response: types.ResponseRejected,
			Reason:   reason,
		}}
	}

	if !a.Target.Equal(m.cfg.LocalPeer) {
		return reject(types.RejectTargetNotMe)
	}
	if a.ChainID != m.cfg.ChainID {
		return reject(types.RejectChainIDMismatch)
	}
	if !a.IdentityOK {
		return reject(types.RejectPeerIDMismatch)
	}
	if a.Peer.Equal(m.cfg.LocalPeer) {
		return reject(types.RejectSelfConnection)
	}

	// 重复连接：入站侧关闭较旧的一条而非拒绝
	var effects []types.Effect
	if old, ok := m.reg.Get(a.Peer); ok {
		effects = append(effects, m.evictOlder(old, at)...)
	}
	if m.reg.AtCapacity() {
		return append(effects, reject(types.RejectCapacityFull)...)
	}

	rec := &registry.PeerRecord{
		ID:        a.Peer,
		Direction: types.DirInbound,
		Transport: types.TransportPull,
		Status:    types.ConnStatusConnecting,
		Timeout:   m.cfg.ConnectTimeoutPull,
	}
	if err := m.reg.Add(rec); err != nil {
		// 逐出与容量检查之后 Add 仍可能失败属于不变量破坏
		return append(effects, types.NotifyDiagnostic{
			Message: types.ErrInvariantViolation.Error() +
				": incoming offer registry add failed: " + err.Error(),
		})
	}

	rec.EnterIncoming(types.IncomingAnswerCreatePending, at)
	return append(effects, types.CreateAnswer{Peer: a.Peer, Offer: a.Offer})
}

// AnswerCreated Answer 生成完成
func (m *Machine) AnswerCreated(at time.Time, a types.AnswerCreated) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok || rec.Direction != types.DirInbound || rec.Incoming != types.IncomingAnswerCreatePending {
		return m.stale("answer-created", a.Peer)
	}
	if a.Err != "" {
		effects := []types.Effect{types.SendSignalingResponse{
			Target:   rec.ID,
			Response: types.ResponseInternalError,
		}}
		return append(effects, m.fail(rec, at, types.DisconnectSignalingFailed, false, a.Err)...)
	}

	rec.EnterIncoming(types.IncomingAnswerCreateSuccess, at)
	rec.EnterIncoming(types.IncomingAnswerReady, at)
	return []types.Effect{types.SendSignalingResponse{
		Target:   rec.ID,
		Response: types.ResponseAccepted,
		Payload:  a.Answer,
	}}
}

// incomingSignalingSent Answer 发送完成
func (m *Machine) incomingSignalingSent(rec *registry.PeerRecord, at time.Time, errMsg string) []types.Effect {
	if rec.Incoming != types.IncomingAnswerReady {
		return m.stale("signaling-send-result", rec.ID)
	}
	if errMsg != "" {
		return m.fail(rec, at, types.DisconnectSignalingFailed, false, errMsg)
	}
	rec.EnterIncoming(types.IncomingAnswerSendSuccess, at)
	rec.EnterIncoming(types.IncomingFinalizePending, at)
	return nil
}

// incomingFinalize 建连收尾完成（Pull 入站）
func (m *Machine) incomingFinalize(rec *registry.PeerRecord, at time.Time, errMsg string) []types.Effect {
	if rec.Incoming != types.IncomingFinalizePending {
		return m.stale("finalize-result", rec.ID)
	}
	if errMsg != "" {
		return m.fail(rec, at, types.DisconnectHandshakeFailed, false, errMsg)
	}
	return m.establish(rec, at)
}

// ============================================================================
//                              入站建连（Push 专属分支）
// ============================================================================

// incomingPush 登记已完成握手的 Push 入站连接
//
// 下层握手在事件浮出核心之前已经完成，跳过 Answer 生成：
// Init → FinalizePendingPush → PushReceived → Success。
func (m *Machine) incomingPush(at time.Time, a types.HandshakeResult) []types.Effect {
	if a.Err != "" {
		// 握手都没成功的入站连接不登记，只留日志
		logger.Debug("inbound push handshake failed",
			"peer", a.Peer.ShortString(), "err", a.Err)
		return nil
	}
	if a.Peer.Equal(m.cfg.LocalPeer) {
		return []types.Effect{types.CloseTransport{Peer: a.Peer, Transport: types.TransportPush}}
	}

	var effects []types.Effect
	if old, ok := m.reg.Get(a.Peer); ok {
		effects = append(effects, m.evictOlder(old, at)...)
	}
	if m.reg.AtCapacity() {
		logger.Debug("inbound push rejected: capacity", "peer", a.Peer.ShortString())
		return append(effects, types.CloseTransport{Peer: a.Peer, Transport: types.TransportPush})
	}

	rec := &registry.PeerRecord{
		ID:        a.Peer,
		Direction: types.DirInbound,
		Transport: types.TransportPush,
		Status:    types.ConnStatusConnecting,
		Timeout:   m.cfg.ConnectTimeoutPush,
	}
	if err := m.reg.Add(rec); err != nil {
		return append(effects, types.NotifyDiagnostic{
			Message: types.ErrInvariantViolation.Error() +
				": inbound push registry add failed: " + err.Error(),
		})
	}

	rec.EnterIncoming(types.IncomingFinalizePendingPush, at)
	rec.EnterIncoming(types.IncomingPushReceived, at)
	return append(effects, m.establish(rec, at)...)
}
