package channel

import (
	"fmt"
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              本地操作
// ============================================================================

// Open 业务层请求打开通道
//
// Enabled → Init → Pending，向对端发送打开消息。其余状态下
// 的打开请求是无操作（已打开、已就绪或已出错）。
func (s *Store) Open(at time.Time, a types.ChannelOpen) []types.Effect {
	st, ok := s.Get(a.Peer, a.Channel)
	if !ok {
		logger.Debug("open for unknown channel ignored",
			"peer", a.Peer.ShortString(), "channel", a.Channel.String())
		return nil
	}
	if st.Status != StatusEnabled {
		logger.Debug("open ignored",
			"peer", a.Peer.ShortString(),
			"channel", a.Channel.String(),
			"status", st.Status.String())
		return nil
	}
	st.Status = StatusInit
	st.Status = StatusPending
	st.touch(at)
	return []types.Effect{types.SendBytes{
		Peer: a.Peer, Channel: a.Channel,
		Msg: types.ChannelMsg{Kind: types.MsgOpen},
	}}
}

// Announce 业务层公告广播条目
//
// 两种传输上的统一退化：条目立即发给每个 Ready 的 Push 节点；
// 发给每个已拉取（Requested）的 Pull 节点并完成其本地子状态机
// 一轮。重复条目（去重缓存命中）整体丢弃。
func (s *Store) Announce(at time.Time, a types.ChannelAnnounce) []types.Effect {
	cfg := types.ChannelConfigOf(a.Channel)
	if !cfg.BroadcastCapable {
		return []types.Effect{types.NotifyDiagnostic{
			Message: fmt.Sprintf("announce on non-broadcast channel %s", a.Channel),
		}}
	}
	if len(a.Payload) > cfg.MaxMessageSize {
		return []types.Effect{types.NotifyDiagnostic{
			Message: fmt.Sprintf("announce payload exceeds %s limit: %d bytes",
				a.Channel, len(a.Payload)),
		}}
	}
	if s.seenBefore(a.Channel, a.ItemID) {
		logger.Debug("duplicate item suppressed",
			"channel", a.Channel.String(), "item", a.ItemID)
		return nil
	}

	msg := types.ChannelMsg{Kind: types.MsgData, Payload: a.Payload}
	var effects []types.Effect
	for _, peer := range s.sortedPeers() {
		st, ok := s.peers[peer][a.Channel]
		if !ok || st.Status != StatusReady {
			continue
		}
		switch st.Transport {
		case types.TransportPush:
			st.touch(at)
			effects = append(effects, types.SendBytes{Peer: peer, Channel: a.Channel, Msg: msg})
		case types.TransportPull:
			if st.Local != LocalRequested {
				continue
			}
			st.Local = LocalResponded
			st.Local = LocalWaitingForRequest
			st.touch(at)
			effects = append(effects, types.SendBytes{Peer: peer, Channel: a.Channel, Msg: msg})
		}
	}
	return effects
}

// Request 业务层向指定节点发起请求
//
// RPC 通道：分配关联号并登记本地未决请求；流式与拉取型通道：
// 向对端发送显式拉取。通道未就绪时退回诊断而非静默丢弃。
func (s *Store) Request(at time.Time, a types.ChannelRequest) []types.Effect {
	st, ok := s.Get(a.Peer, a.Channel)
	if !ok || st.Status != StatusReady {
		return []types.Effect{types.NotifyDiagnostic{
			Message: fmt.Sprintf("request on %s to %s: %v",
				a.Channel, a.Peer.ShortString(), types.ErrChannelNotReady),
		}}
	}
	if len(a.Payload) > st.cfg().MaxMessageSize {
		return []types.Effect{types.NotifyDiagnostic{
			Message: fmt.Sprintf("request payload exceeds %s limit: %d bytes",
				a.Channel, len(a.Payload)),
		}}
	}

	switch {
	case a.Channel == types.ChannelRpc:
		id := st.nextCorrelation()
		st.LocalPending[id] = a.RequestID
		st.touch(at)
		return []types.Effect{types.SendBytes{
			Peer: a.Peer, Channel: a.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgRequest, CorrelationID: id, Payload: a.Payload},
		}}

	case a.Channel == types.ChannelStreamingSync:
		if st.Remote != RemoteIdle {
			return []types.Effect{types.NotifyDiagnostic{
				Message: fmt.Sprintf("streaming pull already in flight to %s",
					a.Peer.ShortString()),
			}}
		}
		st.Remote = RemoteRequested
		st.Progress = StreamProgress{}
		st.NextOwed = false
		st.touch(at)
		return []types.Effect{types.SendBytes{
			Peer: a.Peer, Channel: a.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgGetNext, Payload: a.Payload},
		}}

	case st.Transport == types.TransportPull:
		// 拉取型通道（广播/信令的 Pull 退化）
		if st.Remote != RemoteIdle {
			return []types.Effect{types.NotifyDiagnostic{
				Message: fmt.Sprintf("pull already in flight on %s to %s",
					a.Channel, a.Peer.ShortString()),
			}}
		}
		st.Remote = RemoteRequested
		st.touch(at)
		return []types.Effect{types.SendBytes{
			Peer: a.Peer, Channel: a.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgGetNext, Payload: a.Payload},
		}}

	default:
		// Push 传输上数据主动到达，无可请求
		return []types.Effect{types.NotifyDiagnostic{
			Message: fmt.Sprintf("channel %s has no pull on push transport", a.Channel),
		}}
	}
}

// Respond 业务层响应远端请求
//
// RPC 通道按关联号配对并清除未决登记；流式通道发出下一块并
// 进入等待流控状态；拉取型通道发出数据并完成本地子状态机一轮。
func (s *Store) Respond(at time.Time, a types.ChannelRespond) []types.Effect {
	st, ok := s.Get(a.Peer, a.Channel)
	if !ok || st.Status != StatusReady {
		logger.Debug("respond on unready channel ignored",
			"peer", a.Peer.ShortString(), "channel", a.Channel.String())
		return nil
	}
	if len(a.Payload) > st.cfg().MaxMessageSize {
		return []types.Effect{types.NotifyDiagnostic{
			Message: fmt.Sprintf("response payload exceeds %s limit: %d bytes",
				a.Channel, len(a.Payload)),
		}}
	}

	switch a.Channel {
	case types.ChannelRpc:
		if _, ok := st.RemotePending[a.CorrelationID]; !ok {
			// 请求方可能已断开重连，登记不复存在
			logger.Debug("response for unknown remote request ignored",
				"peer", a.Peer.ShortString(), "correlation", a.CorrelationID)
			return nil
		}
		delete(st.RemotePending, a.CorrelationID)
		st.touch(at)
		return []types.Effect{types.SendBytes{
			Peer: a.Peer, Channel: a.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgResponse, CorrelationID: a.CorrelationID, Payload: a.Payload},
		}}

	case types.ChannelStreamingSync:
		if st.Local != LocalRequested || st.AwaitingNext {
			logger.Debug("stream chunk out of turn ignored",
				"peer", a.Peer.ShortString(),
				"local", st.Local.String(),
				"awaitingNext", st.AwaitingNext)
			return nil
		}
		st.Progress.SentBytes += uint64(len(a.Payload))
		st.Progress.SentChunks++
		if a.Last {
			st.Local = LocalResponded
			st.Local = LocalWaitingForRequest
			st.Progress.Done = true
			st.AwaitingNext = false
		} else {
			st.AwaitingNext = true
		}
		st.touch(at)
		return []types.Effect{types.SendBytes{
			Peer: a.Peer, Channel: a.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgChunk, Payload: a.Payload, Last: a.Last},
		}}

	default:
		if st.Transport != types.TransportPull || st.Local != LocalRequested {
			logger.Debug("respond out of turn ignored",
				"peer", a.Peer.ShortString(), "channel", a.Channel.String())
			return nil
		}
		st.Local = LocalResponded
		st.Local = LocalWaitingForRequest
		st.touch(at)
		return []types.Effect{types.SendBytes{
			Peer: a.Peer, Channel: a.Channel,
			Msg: types.ChannelMsg{Kind: types.MsgData, Payload: a.Payload},
		}}
	}
}

// Next 流式接收方向发送方定步
//
// 上一块已投递给业务层后，业务层通过此操作放行下一块。
func (s *Store) Next(at time.Time, a types.StreamNext) []types.Effect {
	st, ok := s.Get(a.Peer, a.Channel)
	if !ok || st.Status != StatusReady || a.Channel != types.ChannelStreamingSync {
		logger.Debug("stream next ignored",
			"peer", a.Peer.ShortString(), "channel", a.Channel.String())
		return nil
	}
	if st.Remote != RemoteRequested {
		logger.Debug("stream next without active pull ignored",
			"peer", a.Peer.ShortString())
		return nil
	}
	if !st.NextOwed {
		// 没有欠放行的块；重复放行会让发送方侧乱序
		logger.Debug("stream next with no chunk owed ignored",
			"peer", a.Peer.ShortString())
		return nil
	}
	st.NextOwed = false
	st.touch(at)
	return []types.Effect{types.SendBytes{
		Peer: a.Peer, Channel: a.Channel,
		Msg: types.ChannelMsg{Kind: types.MsgNext},
	}}
}
