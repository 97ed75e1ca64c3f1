package connection

import (
	"time"

	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              出站建连
// ============================================================================

// ConnectOutgoing 发起出站连接（Init 阶段）
//
// 槽位与重复检查在这里执行；失败立即通过完成回调上报，
// 不创建任何记录。
func (m *Machine) ConnectOutgoing(at time.Time, a types.ConnectOutgoing) []types.Effect {
	outcome := func(errMsg string) []types.Effect {
		if a.RequestID.IsEmpty() {
			return nil
		}
		return []types.Effect{types.NotifyConnectOutcome{
			RequestID: a.RequestID,
			Peer:      a.Peer,
			Err:       errMsg,
		}}
	}

	if a.Peer.IsEmpty() || !a.Transport.Valid() {
		return outcome(types.ErrInvalidArgument.Error())
	}
	if a.Peer.Equal(m.cfg.LocalPeer) {
		return outcome(types.ErrSelfConnection.Error())
	}
	// 策略：拒绝优于竞态
	if _, ok := m.reg.Get(a.Peer); ok {
		return outcome(types.ErrDuplicatePeer.Error())
	}
	if m.reg.AtCapacity() {
		return outcome(types.ErrCapacityExceeded.Error())
	}

	rec := &registry.PeerRecord{
		ID:        a.Peer,
		Direction: types.DirOutbound,
		Transport: a.Transport,
		Status:    types.ConnStatusConnecting,
		Signaling: a.Signaling,
		Relay:     a.Relay,
		Addrs:     []string{a.Addr},
		RequestID: a.RequestID,
		Timeout:   m.cfg.ConnectTimeout(a.Transport),
	}
	if err := m.reg.Add(rec); err != nil {
		return outcome(err.Error())
	}

	logger.Debug("outgoing connect started",
		"peer", a.Peer.ShortString(),
		"transport", a.Transport.String(),
		"signaling", a.Signaling.String())

	switch a.Transport {
	case types.TransportPull:
		// 请求外部服务生成临时密钥对与 Offer
		rec.EnterOutgoing(types.OutgoingOfferCreatePending, at)
		return []types.Effect{types.CreateOffer{Peer: a.Peer}}
	default:
		// Push：先做显式地址解析，再交给下层握手调度器
		rec.EnterOutgoing(types.OutgoingResolvePending, at)
		return []types.Effect{types.ResolveAddr{Peer: a.Peer, Addr: a.Addr}}
	}
}

// OfferCreated Offer 生成完成
func (m *Machine) OfferCreated(at time.Time, a types.OfferCreated) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok || rec.Direction != types.DirOutbound || rec.Outgoing != types.OutgoingOfferCreatePending {
		return m.stale("offer-created", a.Peer)
	}
	if a.Err != "" {
		return m.fail(rec, at, types.DisconnectSignalingFailed, false, a.Err)
	}

	// OfferCreateSuccess 与 OfferReady 在同一次归约内走完：
	// Offer 一旦就绪立即交给选定的信令方式发送
	rec.EnterOutgoing(types.OutgoingOfferCreateSuccess, at)
	rec.EnterOutgoing(types.OutgoingOfferReady, at)
	return []types.Effect{types.SendSignaling{
		Target:    rec.ID,
		Signaling: rec.Signaling,
		Relay:     rec.Relay,
		Payload:   a.Offer,
	}}
}

// outgoingSignalingSent Offer 发送完成
func (m *Machine) outgoingSignalingSent(rec *registry.PeerRecord, at time.Time, errMsg string) []types.Effect {
	if rec.Outgoing != types.OutgoingOfferReady {
		return m.stale("signaling-send-result", rec.ID)
	}
	if errMsg != "" {
		return m.fail(rec, at, types.DisconnectSignalingFailed, false, errMsg)
	}
	rec.EnterOutgoing(types.OutgoingOfferSendSuccess, at)
	rec.EnterOutgoing(types.OutgoingAnswerRecvPending, at)
	return nil
}

// AnswerReceived 收到远端连接应答
func (m *Machine) AnswerReceived(at time.Time, a types.AnswerReceived) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok || rec.Direction != types.DirOutbound || rec.Outgoing != types.OutgoingAnswerRecvPending {
		return m.stale("answer-received", a.Peer)
	}

	switch a.Response {
	case types.ResponseAccepted:
		rec.EnterOutgoing(types.OutgoingAnswerRecvSuccess, at)
		rec.EnterOutgoing(types.OutgoingFinalizePending, at)
		return []types.Effect{types.FinalizeConnection{Peer: rec.ID, Answer: a.Answer}}
	case types.ResponseRejected:
		return m.fail(rec, at, types.DisconnectSignalingFailed, a.Reason.IsBad(),
			types.ErrOfferRejected.Error()+": "+a.Reason.String())
	default:
		return m.fail(rec, at, types.DisconnectSignalingFailed, false,
			types.ErrSignalingFailed.Error()+": "+a.Response.String())
	}
}

// ResolveResult 地址解析完成（Push 传输）
func (m *Machine) ResolveResult(at time.Time, a types.ResolveResult) []types.Effect {
	rec, ok := m.reg.Get(a.Peer)
	if !ok || rec.Direction != types.DirOutbound || rec.Outgoing != types.OutgoingResolvePending {
		return m.stale("resolve-result", a.Peer)
	}
	if a.Err != "" || len(a.Addrs) == 0 {
		errMsg := a.Err
		if errMsg == "" {
			errMsg = types.ErrResolveFailed.Error()
		}
		return m.fail(rec, at, types.DisconnectHandshakeFailed, false, errMsg)
	}

	rec.Addrs = a.Addrs
	rec.EnterOutgoing(types.OutgoingFinalizePending, at)
	return []types.Effect{types.StartHandshake{
		Peer:      rec.ID,
		Addrs:     a.Addrs,
		Transport: types.TransportPush,
	}}
}

// outgoingHandshake 下层握手完成（Push 出站）
func (m *Machine) outgoingHandshake(rec *registry.PeerRecord, at time.Time, errMsg string) []types.Effect {
	if rec.Outgoing != types.OutgoingFinalizePending {
		return m.stale("handshake-result", rec.ID)
	}
	if errMsg != "" {
		return m.fail(rec, at, types.DisconnectHandshakeFailed, false,
			types.ErrHandshakeFailed.Error()+": "+errMsg)
	}
	return m.establish(rec, at)
}

// outgoingFinalize 建连收尾完成（Pull 出站）
func (m *Machine) outgoingFinalize(rec *registry.PeerRecord, at time.Time, errMsg string) []types.Effect {
	if rec.Outgoing != types.OutgoingFinalizePending {
		return m.stale("finalize-result", rec.ID)
	}
	if errMsg != "" {
		return m.fail(rec, at, types.DisconnectHandshakeFailed, false, errMsg)
	}
	return m.establish(rec, at)
}
