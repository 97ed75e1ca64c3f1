package chainp2p

import (
	"context"
	"testing"

	"github.com/benbjohnson/clock"
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

// captureExec 把效果转发到通道
type captureExec struct {
	ch chan types.Effect
}

func (c *captureExec) Execute(e types.Effect) error {
	c.ch <- e
	return nil
}

func newTestNode(t *testing.T) (*Node, *captureExec) {
	t.Helper()
	exec := &captureExec{ch: make(chan types.Effect, 64)}
	node, err := New(
		WithLocalPeer(pid(99)),
		WithChainID("testnet"),
		WithExecutor(exec),
		WithClock(clock.NewMock()),
	)
	require.NoError(t, err)
	return node, exec
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(WithMaxPeers(-1))
	assert.Error(t, err)

	_, err = New(WithStabilityWindow(0))
	assert.Error(t, err)
}

func TestNode_Lifecycle(t *testing.T) {
	node, _ := newTestNode(t)
	ctx := context.Background()

	assert.Equal(t, StateIdle, node.State())
	assert.ErrorIs(t, node.Stop(ctx), ErrNotStarted)

	require.NoError(t, node.Start(ctx))
	assert.Equal(t, StateRunning, node.State())
	assert.ErrorIs(t, node.Start(ctx), ErrAlreadyStarted)

	require.NoError(t, node.Stop(ctx))
	assert.Equal(t, StateStopped, node.State())

	// 停止后的 API 调用被拒
	_, err := node.Connect(pid(1), "a:1", types.TransportPull, types.SignalingDirect, types.EmptyPeerID)
	assert.ErrorIs(t, err, ErrNodeClosed)
}

func TestNode_ConnectFlow(t *testing.T) {
	node, exec := newTestNode(t)
	ctx := context.Background()
	require.NoError(t, node.Start(ctx))
	defer node.Stop(ctx)

	peer := pid(1)
	reqID, err := node.Connect(peer, "signal:443", types.TransportPull, types.SignalingDirect, types.EmptyPeerID)
	require.NoError(t, err)
	assert.False(t, reqID.IsEmpty())

	// 归约循环消费后执行器收到 Offer 生成请求
	// （定时器效果由节点内部兑现，不会流到业务执行器）
	eff := <-exec.ch
	offer, ok := eff.(types.CreateOffer)
	require.True(t, ok, "unexpected effect %T", eff)
	assert.Equal(t, peer, offer.Peer)

	// 执行器完成后把结果回灌
	require.NoError(t, node.Submit(types.OfferCreated{Peer: peer, Offer: []byte("sdp")}))
	eff = <-exec.ch
	sig, ok := eff.(types.SendSignaling)
	require.True(t, ok, "unexpected effect %T", eff)
	assert.Equal(t, peer, sig.Target)

	// 日志记录了两条动作
	journal := node.Journal()
	assert.Len(t, journal, 2)

	// 运行中的快照与统计经归约循环串行读取
	snap := node.Snapshot()
	require.Len(t, snap.Peers, 1)
	assert.Equal(t, peer.String(), snap.Peers[0].ID)
	stats := node.Stats()
	assert.Equal(t, 1, stats.NumConnecting)
	t.Log("✅ 门面 API → 队列 → 归约 → 执行器闭环")
}
