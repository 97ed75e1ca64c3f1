package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// pid 构造测试用 PeerID
func pid(b byte) types.PeerID {
	var p types.PeerID
	p[0] = b
	return p
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	require.NoError(t, err)
	return s
}

// openReady 把通道推进到 Ready（本地发起打开）
func openReady(t *testing.T, s *Store, peer types.PeerID, ch types.ChannelID, at time.Time) *State {
	t.Helper()
	effects := s.Open(at, types.ChannelOpen{Peer: peer, Channel: ch})
	require.Len(t, effects, 1)
	_, v := s.HandleMessage(at, types.BytesReceived{
		Peer: peer, Channel: ch, Msg: types.ChannelMsg{Kind: types.MsgOpenAck},
	})
	require.Nil(t, v)
	st, ok := s.Get(peer, ch)
	require.True(t, ok)
	require.Equal(t, StatusReady, st.Status)
	return st
}

func findEffect[T types.Effect](t *testing.T, effects []types.Effect) T {
	t.Helper()
	for _, e := range effects {
		if v, ok := e.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("effect %T not found in %v", zero, effects)
	return zero
}

func sendBytesCount(effects []types.Effect) int {
	n := 0
	for _, e := range effects {
		if _, ok := e.(types.SendBytes); ok {
			n++
		}
	}
	return n
}

// ============================================================================
//                              生命周期与因果
// ============================================================================

func TestStore_EnablePerTransport(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	s.EnablePeer(pid(1), types.TransportPull, now)
	s.EnablePeer(pid(2), types.TransportPush, now)

	// 信令与流式同步仅在 Pull 传输启用
	_, ok := s.Get(pid(1), types.ChannelStreamingSync)
	assert.True(t, ok)
	_, ok = s.Get(pid(2), types.ChannelStreamingSync)
	assert.False(t, ok)
	_, ok = s.Get(pid(2), types.ChannelSignalingExchange)
	assert.False(t, ok)
	_, ok = s.Get(pid(2), types.ChannelBestTipPropagation)
	assert.True(t, ok)
}

func TestStore_MessageBeforeEnableIgnored(t *testing.T) {
	s := newTestStore(t)

	// 未建连节点的消息：无操作（连接先于通道的因果保证）
	effects, v := s.HandleMessage(time.Now(), types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgOpen},
	})
	assert.Nil(t, v)
	assert.Empty(t, effects)
}

func TestStore_DropPeerDiscardsState(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelRpc, now)

	s.DropPeer(pid(1))
	assert.False(t, s.HasPeer(pid(1)))

	// 丢弃后的消息按未知节点处理
	effects, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgResponse, CorrelationID: 1},
	})
	assert.Nil(t, v)
	assert.Empty(t, effects)
}

func TestChannel_OpenHandshake(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)

	// 本地打开：Enabled → Pending + MsgOpen
	effects := s.Open(now, types.ChannelOpen{Peer: pid(1), Channel: types.ChannelRpc})
	sb := findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgOpen, sb.Msg.Kind)

	// 对端确认 → Ready
	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgOpenAck},
	})
	require.Nil(t, v)
	st, _ := s.Get(pid(1), types.ChannelRpc)
	assert.Equal(t, StatusReady, st.Status)

	// 对端打开（Enabled 侧）：直接 Ready 并回 Ack
	effects, v = s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelBestTipPropagation,
		Msg: types.ChannelMsg{Kind: types.MsgOpen},
	})
	require.Nil(t, v)
	sb = findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgOpenAck, sb.Msg.Kind)
	t.Log("✅ 通道打开握手完成")
}

// ============================================================================
//                              协议违规
// ============================================================================

func TestChannel_SizeViolation(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelSnarkJobCommitment, now)

	// 承诺通道上限 2 KiB，超限即违规
	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelSnarkJobCommitment,
		Msg: types.ChannelMsg{Kind: types.MsgData, Payload: make([]byte, 3*types.KiB)},
	})
	require.NotNil(t, v)
	assert.ErrorIs(t, v.Err, types.ErrSizeLimitExceeded)

	st, _ := s.Get(pid(1), types.ChannelSnarkJobCommitment)
	assert.Equal(t, StatusError, st.Status)
}

func TestChannel_MalformedViolation(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelRpc, now)

	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgMalformed},
	})
	require.NotNil(t, v)
	assert.ErrorIs(t, v.Err, types.ErrMalformedMessage)
}

func TestChannel_OutOfOrderViolation(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelBestTipPropagation, now)

	// Pull 传输上未经拉取的数据是乱序
	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelBestTipPropagation,
		Msg: types.ChannelMsg{Kind: types.MsgData, Payload: []byte("tip")},
	})
	require.NotNil(t, v)
	assert.ErrorIs(t, v.Err, types.ErrUnexpectedMessage)

	// 违规后的实例是终态，后续消息无操作
	effects, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelBestTipPropagation,
		Msg: types.ChannelMsg{Kind: types.MsgData, Payload: []byte("tip2")},
	})
	assert.Nil(t, v)
	assert.Empty(t, effects)
	t.Log("✅ 严格状态机纪律：乱序即违规")
}

func TestChannel_DoubleGetNextViolation(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelBestTipPropagation, now)

	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelBestTipPropagation,
		Msg: types.ChannelMsg{Kind: types.MsgGetNext},
	})
	require.Nil(t, v)

	// 上一个拉取未响应就再次拉取
	_, v = s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelBestTipPropagation,
		Msg: types.ChannelMsg{Kind: types.MsgGetNext},
	})
	require.NotNil(t, v)
	assert.ErrorIs(t, v.Err, types.ErrUnexpectedMessage)
}

// ============================================================================
//                              广播
// ============================================================================

func TestAnnounce_PushAndPull(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	// 一个 Push 节点、两个 Pull 节点
	s.EnablePeer(pid(1), types.TransportPush, now)
	s.EnablePeer(pid(2), types.TransportPull, now)
	s.EnablePeer(pid(3), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelBestTipPropagation, now)
	openReady(t, s, pid(2), types.ChannelBestTipPropagation, now)
	openReady(t, s, pid(3), types.ChannelBestTipPropagation, now)

	// 只有 pid(2) 显式拉取过
	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(2), Channel: types.ChannelBestTipPropagation,
		Msg: types.ChannelMsg{Kind: types.MsgGetNext},
	})
	require.Nil(t, v)

	// Push 节点直接收到；Pull 节点中只有已拉取的收到
	effects := s.Announce(now, types.ChannelAnnounce{
		Channel: types.ChannelBestTipPropagation, ItemID: "tip-1", Payload: []byte("tip"),
	})
	assert.Equal(t, 2, sendBytesCount(effects))

	// pid(2) 的本地子状态机完成一轮，回到等待拉取
	st, _ := s.Get(pid(2), types.ChannelBestTipPropagation)
	assert.Equal(t, LocalWaitingForRequest, st.Local)
	t.Log("✅ 推拉统一退化：就绪的 Push 节点 + 已拉取的 Pull 节点")
}

func TestAnnounce_Dedup(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPush, now)
	openReady(t, s, pid(1), types.ChannelTransactionPropagation, now)

	effects := s.Announce(now, types.ChannelAnnounce{
		Channel: types.ChannelTransactionPropagation, ItemID: "tx-1", Payload: []byte("tx"),
	})
	assert.Equal(t, 1, sendBytesCount(effects))

	// 重复条目整体丢弃，防放大风暴
	effects = s.Announce(now, types.ChannelAnnounce{
		Channel: types.ChannelTransactionPropagation, ItemID: "tx-1", Payload: []byte("tx"),
	})
	assert.Empty(t, effects)
}

func TestAnnounce_PushDataDelivered(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPush, now)
	openReady(t, s, pid(1), types.ChannelBestTipPropagation, now)

	// Push 传输上数据无需请求即可到达
	effects, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelBestTipPropagation,
		Msg: types.ChannelMsg{Kind: types.MsgData, Payload: []byte("tip")},
	})
	require.Nil(t, v)
	notify := findEffect[types.NotifyChannelMessage](t, effects)
	assert.Equal(t, pid(1), notify.Peer)
}

// ============================================================================
//                              RPC
// ============================================================================

func TestRpc_RequestResponse(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelRpc, now)

	// 本地发起：分配关联号、登记未决
	effects := s.Request(now, types.ChannelRequest{
		Peer: pid(1), Channel: types.ChannelRpc, Payload: []byte("q"), RequestID: "req-1",
	})
	sb := findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgRequest, sb.Msg.Kind)
	assert.Equal(t, uint64(1), sb.Msg.CorrelationID)

	// 响应按关联号配对，回传调用方标识
	effects, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgResponse, CorrelationID: 1, Payload: []byte("a")},
	})
	require.Nil(t, v)
	notify := findEffect[types.NotifyChannelMessage](t, effects)
	assert.Equal(t, types.RequestID("req-1"), notify.RequestID)

	// 迟到的重复响应：关联号已被丢弃，无操作
	effects, v = s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgResponse, CorrelationID: 1, Payload: []byte("a")},
	})
	assert.Nil(t, v)
	assert.Empty(t, effects)
}

func TestRpc_RemoteConcurrencyCeiling(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	st := openReady(t, s, pid(1), types.ChannelRpc, now)

	// 5 个并发远端请求全部接收
	for i := uint64(1); i <= uint64(types.MaxRemotePendingRequests); i++ {
		effects, v := s.HandleMessage(now, types.BytesReceived{
			Peer: pid(1), Channel: types.ChannelRpc,
			Msg: types.ChannelMsg{Kind: types.MsgRequest, CorrelationID: i, Payload: []byte("q")},
		})
		require.Nil(t, v)
		findEffect[types.NotifyChannelMessage](t, effects)
	}
	assert.Len(t, st.RemotePending, 5)

	// 第 6 个被拒绝而非排队；这不是通道错误
	effects, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgRequest, CorrelationID: 6, Payload: []byte("q")},
	})
	require.Nil(t, v)
	sb := findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgRequestRejected, sb.Msg.Kind)
	assert.Equal(t, uint64(6), sb.Msg.CorrelationID)
	assert.Len(t, st.RemotePending, 5)
	assert.Equal(t, StatusReady, st.Status)

	// 响应其中一个后腾出名额
	effects = s.Respond(now, types.ChannelRespond{
		Peer: pid(1), Channel: types.ChannelRpc, CorrelationID: 3, Payload: []byte("a"),
	})
	sb = findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgResponse, sb.Msg.Kind)
	assert.Len(t, st.RemotePending, 4)

	_, v = s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgRequest, CorrelationID: 7, Payload: []byte("q")},
	})
	require.Nil(t, v)
	assert.Len(t, st.RemotePending, 5)
	t.Log("✅ 远端并发上限：未决数从不超过 5")
}

func TestRpc_RequestRejectedDelivered(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelRpc, now)

	s.Request(now, types.ChannelRequest{
		Peer: pid(1), Channel: types.ChannelRpc, Payload: []byte("q"), RequestID: "req-9",
	})

	// 对端拒绝：同样按关联号配对投递
	effects, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelRpc,
		Msg: types.ChannelMsg{Kind: types.MsgRequestRejected, CorrelationID: 1},
	})
	require.Nil(t, v)
	notify := findEffect[types.NotifyChannelMessage](t, effects)
	assert.Equal(t, types.RequestID("req-9"), notify.RequestID)
}

// ============================================================================
//                              流式同步
// ============================================================================

func TestStreaming_NextPacing(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	st := openReady(t, s, pid(1), types.ChannelStreamingSync, now)

	// 接收侧：发起拉取
	effects := s.Request(now, types.ChannelRequest{
		Peer: pid(1), Channel: types.ChannelStreamingSync, Payload: []byte("ledger"),
	})
	sb := findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgGetNext, sb.Msg.Kind)
	assert.Equal(t, RemoteRequested, st.Remote)

	// 第一块到达
	effects, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelStreamingSync,
		Msg: types.ChannelMsg{Kind: types.MsgChunk, Payload: make([]byte, 1024)},
	})
	require.Nil(t, v)
	findEffect[types.NotifyChannelMessage](t, effects)
	assert.Equal(t, uint64(1024), st.Progress.RecvBytes)
	assert.Equal(t, 1, st.Progress.RecvChunks)
	assert.False(t, st.Progress.Done)

	// 业务层消化后放行下一块
	effects = s.Next(now, types.StreamNext{Peer: pid(1), Channel: types.ChannelStreamingSync})
	sb = findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgNext, sb.Msg.Kind)

	// 最后一块
	_, v = s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelStreamingSync,
		Msg: types.ChannelMsg{Kind: types.MsgChunk, Payload: make([]byte, 512), Last: true},
	})
	require.Nil(t, v)
	assert.True(t, st.Progress.Done)
	assert.Equal(t, RemoteIdle, st.Remote)
	assert.Equal(t, uint64(1536), st.Progress.RecvBytes)
	t.Log("✅ 流式同步由接收方 Next 定步")
}

func TestStreaming_SenderSide(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	st := openReady(t, s, pid(1), types.ChannelStreamingSync, now)

	// 对端拉取
	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelStreamingSync,
		Msg: types.ChannelMsg{Kind: types.MsgGetNext, Payload: []byte("ledger")},
	})
	require.Nil(t, v)
	assert.Equal(t, LocalRequested, st.Local)

	// 发出第一块后等待流控
	effects := s.Respond(now, types.ChannelRespond{
		Peer: pid(1), Channel: types.ChannelStreamingSync, Payload: make([]byte, 2048),
	})
	sb := findEffect[types.SendBytes](t, effects)
	assert.Equal(t, types.MsgChunk, sb.Msg.Kind)
	assert.True(t, st.AwaitingNext)

	// 等待期间再发块是无操作
	effects = s.Respond(now, types.ChannelRespond{
		Peer: pid(1), Channel: types.ChannelStreamingSync, Payload: make([]byte, 10),
	})
	assert.Empty(t, effects)

	// 对端放行
	_, v = s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelStreamingSync,
		Msg: types.ChannelMsg{Kind: types.MsgNext},
	})
	require.Nil(t, v)
	assert.False(t, st.AwaitingNext)

	// 最后一块结束本轮
	s.Respond(now, types.ChannelRespond{
		Peer: pid(1), Channel: types.ChannelStreamingSync, Payload: make([]byte, 100), Last: true,
	})
	assert.Equal(t, LocalWaitingForRequest, st.Local)
	assert.True(t, st.Progress.Done)
	assert.Equal(t, 2, st.Progress.SentChunks)
}

func TestStreaming_UnsolicitedNextViolation(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	openReady(t, s, pid(1), types.ChannelStreamingSync, now)

	// 没有在途块时的 Next 是乱序
	_, v := s.HandleMessage(now, types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelStreamingSync,
		Msg: types.ChannelMsg{Kind: types.MsgNext},
	})
	require.NotNil(t, v)
	assert.ErrorIs(t, v.Err, types.ErrUnexpectedMessage)
}

func TestStreaming_StrictChunkPacing(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)
	st := openReady(t, s, pid(1), types.ChannelStreamingSync, now)

	s.Request(now, types.ChannelRequest{
		Peer: pid(1), Channel: types.ChannelStreamingSync, Payload: []byte("ledger"),
	})

	chunk := types.BytesReceived{
		Peer: pid(1), Channel: types.ChannelStreamingSync,
		Msg: types.ChannelMsg{Kind: types.MsgChunk, Payload: make([]byte, 256)},
	}

	// 第一块正常，欠一次放行
	_, v := s.HandleMessage(now, chunk)
	require.Nil(t, v)
	assert.True(t, st.NextOwed)

	// 放行一次；重复放行是无操作，不会让发送方乱序
	effects := s.Next(now, types.StreamNext{Peer: pid(1), Channel: types.ChannelStreamingSync})
	assert.NotEmpty(t, effects)
	effects = s.Next(now, types.StreamNext{Peer: pid(1), Channel: types.ChannelStreamingSync})
	assert.Empty(t, effects)

	// 放行后的第二块正常
	_, v = s.HandleMessage(now, chunk)
	require.Nil(t, v)
	assert.Equal(t, 2, st.Progress.RecvChunks)

	// 未放行就到的第三块：发送方无视流控，按乱序违规处理
	_, v = s.HandleMessage(now, chunk)
	require.NotNil(t, v)
	assert.ErrorIs(t, v.Err, types.ErrUnexpectedMessage)
	assert.Equal(t, StatusError, st.Status)
	t.Log("✅ 接收侧严格执行块间流控")
}

func TestRequest_UnreadyChannelDiagnostic(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, now)

	// 通道已启用但尚未打开：退回诊断而非静默丢弃
	effects := s.Request(now, types.ChannelRequest{
		Peer: pid(1), Channel: types.ChannelRpc, Payload: []byte("q"),
	})
	diag := findEffect[types.NotifyDiagnostic](t, effects)
	assert.Contains(t, diag.Message, types.ErrChannelNotReady.Error())
}

// ============================================================================
//                              空闲扫描
// ============================================================================

func TestSweepIdle(t *testing.T) {
	s := newTestStore(t)
	t0 := time.Now()
	s.EnablePeer(pid(1), types.TransportPull, t0)
	s.EnablePeer(pid(2), types.TransportPull, t0)
	openReady(t, s, pid(1), types.ChannelSignalingExchange, t0)
	openReady(t, s, pid(2), types.ChannelSignalingExchange, t0)

	// pid(2) 持续有活动
	s.HandleMessage(t0.Add(4*time.Minute), types.BytesReceived{
		Peer: pid(2), Channel: types.ChannelSignalingExchange,
		Msg: types.ChannelMsg{Kind: types.MsgGetNext},
	})

	// 信令交换空闲上限 5 分钟
	idle := s.SweepIdle(t0.Add(6 * time.Minute))
	assert.Equal(t, []types.PeerID{pid(1)}, idle)
}
