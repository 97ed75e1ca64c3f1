package channel

import (
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              入站消息处理
// ============================================================================

// violate 协议违规：通道实例进入 Error，产生断开建议
func (s *Store) violate(st *State, err error) ([]types.Effect, *Violation) {
	logger.Info("channel protocol violation",
		"peer", st.Peer.ShortString(),
		"channel", st.Channel.String(),
		"err", err.Error())
	st.Status = StatusError
	return nil, &Violation{Peer: st.Peer, Channel: st.Channel, Err: err}
}

// HandleMessage 处理对端发来的（已解码）通道消息
//
// 尺寸超限、畸形消息、当前子状态不接受的消息一律按协议
// 违规处理：实例进入 Error 并返回断开建议。迟到的响应
// （关联号已被丢弃）是无操作，只留日志。
func (s *Store) HandleMessage(at time.Time, a types.BytesReceived) ([]types.Effect, *Violation) {
	m, ok := s.peers[a.Peer]
	if !ok {
		logger.Debug("message for unknown peer ignored",
			"peer", a.Peer.ShortString(), "channel", a.Channel.String())
		return nil, nil
	}
	st, ok := m[a.Channel]
	if !ok {
		// 节点已建连但在未启用的通道上发消息
		phantom := &State{Peer: a.Peer, Channel: a.Channel, Status: StatusError}
		m[a.Channel] = phantom
		return s.violate(phantom, types.ErrUnexpectedMessage)
	}
	if st.Status.Terminal() {
		logger.Debug("message for terminal channel ignored",
			"peer", a.Peer.ShortString(), "channel", a.Channel.String())
		return nil, nil
	}

	if a.Msg.Kind == types.MsgMalformed {
		return s.violate(st, types.ErrMalformedMessage)
	}
	if a.Msg.Size() > st.cfg().MaxMessageSize {
		return s.violate(st, types.ErrSizeLimitExceeded)
	}

	st.touch(at)

	switch a.Msg.Kind {
	case types.MsgOpen:
		return s.handleOpen(st)
	case types.MsgOpenAck:
		return s.handleOpenAck(st)
	}

	// 数据类消息要求通道已就绪
	if st.Status != StatusReady {
		return s.violate(st, types.ErrUnexpectedMessage)
	}

	switch a.Msg.Kind {
	case types.MsgGetNext:
		return s.handleGetNext(st, a.Msg)
	case types.MsgData:
		return s.handleData(st, a.Msg)
	case types.MsgRequest:
		return s.handleRequest(st, a.Msg)
	case types.MsgResponse, types.MsgRequestRejected:
		return s.handleResponse(st, a.Msg)
	case types.MsgChunk:
		return s.handleChunk(st, a.Msg)
	case types.MsgNext:
		return s.handleNext(st, a.Msg)
	default:
		return s.violate(st, types.ErrUnexpectedMessage)
	}
}

// handleOpen 对端打开通道
func (s *Store) handleOpen(st *State) ([]types.Effect, *Violation) {
	switch st.Status {
	case StatusEnabled:
		st.Status = StatusReady
		return []types.Effect{types.SendBytes{
			Peer: st.Peer, Channel: st.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgOpenAck},
		}}, nil
	case StatusInit, StatusPending:
		// 双方同时打开
		st.Status = StatusReady
		return []types.Effect{types.SendBytes{
			Peer: st.Peer, Channel: st.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgOpenAck},
		}}, nil
	default:
		return s.violate(st, types.ErrUnexpectedMessage)
	}
}

// handleOpenAck 对端确认通道打开
func (s *Store) handleOpenAck(st *State) ([]types.Effect, *Violation) {
	switch st.Status {
	case StatusPending:
		st.Status = StatusReady
		logger.Debug("channel ready",
			"peer", st.Peer.ShortString(), "channel", st.Channel.String())
		return nil, nil
	case StatusReady:
		// 双方同时打开时交叉到达的确认
		return nil, nil
	default:
		return s.violate(st, types.ErrUnexpectedMessage)
	}
}

// handleGetNext 对端显式拉取（Pull 传输的本地侧入口）
func (s *Store) handleGetNext(st *State, msg types.ChannelMsg) ([]types.Effect, *Violation) {
	if st.Transport != types.TransportPull {
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	if st.Local != LocalWaitingForRequest {
		// 上一个拉取还没响应就再次拉取
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	st.Local = LocalRequested
	if st.Channel == types.ChannelStreamingSync {
		st.AwaitingNext = false
		st.Progress = StreamProgress{}
	}
	// 业务层据此供给数据（ChannelRespond）
	return []types.Effect{types.NotifyChannelMessage{
		Peer: st.Peer, Channel: st.Channel, Msg: msg,
	}}, nil
}

// handleData 对端发来数据条目
func (s *Store) handleData(st *State, msg types.ChannelMsg) ([]types.Effect, *Violation) {
	switch st.Transport {
	case types.TransportPush:
		// 广播：无需请求即可到达
	default:
		// Pull：必须是我方拉取过的
		if st.Remote != RemoteRequested {
			return s.violate(st, types.ErrUnexpectedMessage)
		}
		st.Remote = RemoteResponded
		st.Remote = RemoteIdle
	}
	return []types.Effect{types.NotifyChannelMessage{
		Peer: st.Peer, Channel: st.Channel, Msg: msg,
	}}, nil
}

// handleRequest 远端发起 RPC 请求
func (s *Store) handleRequest(st *State, msg types.ChannelMsg) ([]types.Effect, *Violation) {
	if st.Channel != types.ChannelRpc {
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	if len(st.RemotePending) >= types.MaxRemotePendingRequests {
		// 并发超限：拒绝而非排队；这不是通道错误，不断开
		logger.Debug("remote request rejected",
			"peer", st.Peer.ShortString(),
			"pending", len(st.RemotePending),
			"err", types.ErrTooManyRequests.Error())
		return []types.Effect{types.SendBytes{
			Peer: st.Peer, Channel: st.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgRequestRejected, CorrelationID: msg.CorrelationID},
		}}, nil
	}
	st.RemotePending[msg.CorrelationID] = struct{}{}
	return []types.Effect{types.NotifyChannelMessage{
		Peer: st.Peer, Channel: st.Channel, Msg: msg,
	}}, nil
}

// handleResponse 收到 RPC 响应或拒绝
func (s *Store) handleResponse(st *State, msg types.ChannelMsg) ([]types.Effect, *Violation) {
	if st.Channel != types.ChannelRpc {
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	reqID, ok := st.LocalPending[msg.CorrelationID]
	if !ok {
		// 已被丢弃的关联号：无操作，不复活状态
		logger.Debug("response for unknown correlation ignored",
			"peer", st.Peer.ShortString(),
			"correlation", msg.CorrelationID)
		return nil, nil
	}
	delete(st.LocalPending, msg.CorrelationID)
	return []types.Effect{types.NotifyChannelMessage{
		Peer: st.Peer, Channel: st.Channel, Msg: msg, RequestID: reqID,
	}}, nil
}

// handleChunk 收到流式分块
func (s *Store) handleChunk(st *State, msg types.ChannelMsg) ([]types.Effect, *Violation) {
	if st.Channel != types.ChannelStreamingSync {
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	if st.Remote != RemoteRequested {
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	if st.NextOwed {
		// 发送方无视流控，未等放行就发下一块
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	st.Progress.RecvBytes += uint64(msg.Size())
	st.Progress.RecvChunks++
	if msg.Last {
		st.Remote = RemoteIdle
		st.Progress.Done = true
	} else {
		st.NextOwed = true
	}
	return []types.Effect{types.NotifyChannelMessage{
		Peer: st.Peer, Channel: st.Channel, Msg: msg,
	}}, nil
}

// handleNext 收到流控消息（发送方侧）
func (s *Store) handleNext(st *State, msg types.ChannelMsg) ([]types.Effect, *Violation) {
	if st.Channel != types.ChannelStreamingSync {
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	if st.Local != LocalRequested || !st.AwaitingNext {
		return s.violate(st, types.ErrUnexpectedMessage)
	}
	st.AwaitingNext = false
	// 业务层据此供给下一块
	return []types.Effect{types.NotifyChannelMessage{
		Peer: st.Peer, Channel: st.Channel, Msg: msg,
	}}, nil
}
