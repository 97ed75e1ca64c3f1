package disconnect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// pid 构造测试用 PeerID
func pid(b byte) types.PeerID {
	var p types.PeerID
	p[0] = b
	return p
}

// testHooks 记录丢弃回调
type testHooks struct {
	dropped []types.PeerID
}

func (h *testHooks) PeerDropped(peer types.PeerID) []types.Effect {
	h.dropped = append(h.dropped, peer)
	return nil
}

func newTestManager(t *testing.T, cfg config.Config, seed int64) (*Manager, *registry.Registry, *testHooks) {
	t.Helper()
	reg, err := registry.New(cfg.MaxPeers, cfg.HistorySize)
	require.NoError(t, err)
	hooks := &testHooks{}
	return New(cfg, reg, hooks, seed), reg, hooks
}

// addReady 在注册表中放入一个已建连节点
func addReady(t *testing.T, reg *registry.Registry, peer types.PeerID, at time.Time) *registry.PeerRecord {
	t.Helper()
	rec := &registry.PeerRecord{
		ID:        peer,
		Direction: types.DirOutbound,
		Transport: types.TransportPush,
		Status:    types.ConnStatusConnecting,
	}
	require.NoError(t, reg.Add(rec))
	rec.Establish(at)
	return rec
}

func hasEffect[T types.Effect](effects []types.Effect) bool {
	for _, e := range effects {
		if _, ok := e.(T); ok {
			return true
		}
	}
	return false
}

// findEffect 在效果列表中找到第一个指定类型的效果
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

// ============================================================================
//                              断开流水线
// ============================================================================

func TestDisconnect_Pipeline(t *testing.T) {
	cfg := config.DefaultConfig()
	m, reg, hooks := newTestManager(t, cfg, 1)
	peer := pid(1)
	t0 := time.Now()
	rec := addReady(t, reg, peer, t0)

	// 请求断开 → CleanupPending + 资源清理
	effects := m.Request(t0.Add(time.Minute), types.DisconnectRequest{
		Peer: peer, Reason: types.DisconnectRequested,
	})
	assert.True(t, hasEffect[types.CloseTransport](effects))
	assert.Equal(t, types.ConnStatusDisconnecting, rec.Status)
	assert.Equal(t, types.DisconnectPhaseCleanupPending, rec.Phase)

	// 断开期间的重复请求是无操作
	effects = m.Request(t0.Add(time.Minute), types.DisconnectRequest{
		Peer: peer, Reason: types.DisconnectRequested,
	})
	assert.Empty(t, effects)

	// 清理完成 → Finish：移出注册表、留痕、通知
	effects = m.CleanupDone(t0.Add(61*time.Second), types.CleanupResult{Peer: peer})
	assert.True(t, hasEffect[types.NotifyDisconnected](effects))

	_, ok := reg.Get(peer)
	assert.False(t, ok)
	hist, ok := reg.LastDisconnection(peer)
	require.True(t, ok)
	assert.Equal(t, types.DisconnectRequested, hist.Reason)
	assert.False(t, hist.Suspicious)
	assert.Equal(t, []types.PeerID{peer}, hooks.dropped)
	t.Log("✅ 断开流水线 Init → CleanupPending → Finish")
}

func TestDisconnect_CleanupRetryOnceThenForced(t *testing.T) {
	cfg := config.DefaultConfig()
	m, reg, hooks := newTestManager(t, cfg, 1)
	peer := pid(2)
	t0 := time.Now()
	rec := addReady(t, reg, peer, t0)

	m.Request(t0, types.DisconnectRequest{Peer: peer, Reason: types.DisconnectRequested})

	// 首次清理失败：重试一次
	effects := m.CleanupDone(t0.Add(time.Second), types.CleanupResult{Peer: peer, Err: "fd leak"})
	assert.True(t, hasEffect[types.CloseTransport](effects))
	assert.True(t, rec.CleanupRetried)
	_, ok := reg.Get(peer)
	assert.True(t, ok)

	// 再次失败：强制完成，绝不让僵尸记录占住槽位
	effects = m.CleanupDone(t0.Add(2*time.Second), types.CleanupResult{Peer: peer, Err: "fd leak"})
	assert.True(t, hasEffect[types.NotifyDisconnected](effects))
	_, ok = reg.Get(peer)
	assert.False(t, ok)
	assert.Equal(t, []types.PeerID{peer}, hooks.dropped)
	t.Log("✅ 清理失败重试一次后强制完成")
}

func TestDisconnect_PeerClosed(t *testing.T) {
	cfg := config.DefaultConfig()
	m, reg, _ := newTestManager(t, cfg, 1)
	peer := pid(3)
	t0 := time.Now()
	rec := addReady(t, reg, peer, t0)

	// 对端主动关闭：跳过本地发起步骤，直接进入资源清理
	effects := m.PeerClosed(t0, types.PeerClosed{Peer: peer})
	assert.True(t, hasEffect[types.CloseTransport](effects))
	assert.Equal(t, types.DisconnectPeerClosed, rec.DisconnectReason)

	m.CleanupDone(t0.Add(time.Second), types.CleanupResult{Peer: peer})
	hist, ok := reg.LastDisconnection(peer)
	require.True(t, ok)
	assert.Equal(t, types.DisconnectPeerClosed, hist.Reason)
}

func TestDisconnect_StaleEvents(t *testing.T) {
	cfg := config.DefaultConfig()
	m, _, _ := newTestManager(t, cfg, 1)
	t0 := time.Now()

	// 未知节点的断开与清理回报都是无操作
	assert.Empty(t, m.Request(t0, types.DisconnectRequest{Peer: pid(9), Reason: types.DisconnectRequested}))
	assert.Empty(t, m.PeerClosed(t0, types.PeerClosed{Peer: pid(9)}))
	assert.Empty(t, m.CleanupDone(t0, types.CleanupResult{Peer: pid(9)}))
}

func TestDisconnect_ConnectingPeerNotifiesCaller(t *testing.T) {
	cfg := config.DefaultConfig()
	m, reg, _ := newTestManager(t, cfg, 1)
	peer := pid(6)
	t0 := time.Now()

	// 建连尚未完成的出站记录（完成回调尚未发出）
	rec := &registry.PeerRecord{
		ID:        peer,
		Direction: types.DirOutbound,
		Transport: types.TransportPull,
		Status:    types.ConnStatusConnecting,
		RequestID: "req-mid",
	}
	require.NoError(t, reg.Add(rec))

	// 断开流水线走完：等待中的调用方收到失败回调而非永远挂起
	m.Request(t0, types.DisconnectRequest{Peer: peer, Reason: types.DisconnectRequested})
	effects := m.CleanupDone(t0.Add(time.Second), types.CleanupResult{Peer: peer})

	outcome := findEffect[types.NotifyConnectOutcome](t, effects)
	assert.Equal(t, types.RequestID("req-mid"), outcome.RequestID)
	assert.NotEmpty(t, outcome.Err)
	t.Log("✅ 建连中被断开的尝试仍然回调调用方")
}

func TestDisconnect_CleanupBeforeRequestIgnored(t *testing.T) {
	cfg := config.DefaultConfig()
	m, reg, _ := newTestManager(t, cfg, 1)
	peer := pid(4)
	t0 := time.Now()
	addReady(t, reg, peer, t0)

	// 未进入断开流程的清理回报：阶段不匹配，丢弃
	effects := m.CleanupDone(t0, types.CleanupResult{Peer: peer})
	assert.Empty(t, effects)
	_, ok := reg.Get(peer)
	assert.True(t, ok)
}

// ============================================================================
//                              空间管理
// ============================================================================

func TestSpace_TrimsExcessStablePeers(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxStablePeers = 10
	m, reg, _ := newTestManager(t, cfg, 42)
	t0 := time.Now()

	// 12 个已建连节点，全部超出稳定窗口
	for i := 1; i <= 12; i++ {
		addReady(t, reg, pid(byte(i)), t0)
	}

	effects := m.CheckSpace(t0.Add(cfg.StabilityWindow + time.Second))

	// 恰好断开 2 个多余者
	closes := 0
	for _, e := range effects {
		if _, ok := e.(types.CloseTransport); ok {
			closes++
		}
	}
	assert.Equal(t, 2, closes)

	disconnecting := 0
	reg.Each(func(rec *registry.PeerRecord) {
		if rec.Status == types.ConnStatusDisconnecting {
			disconnecting++
			assert.Equal(t, types.DisconnectSpaceManagement, rec.DisconnectReason)
		}
	})
	assert.Equal(t, 2, disconnecting)
	t.Log("✅ 空间管理断开多余的稳定节点")
}

func TestSpace_StabilityWindowProtectsYoung(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxStablePeers = 1
	m, reg, _ := newTestManager(t, cfg, 7)
	t0 := time.Now()

	addReady(t, reg, pid(1), t0)
	addReady(t, reg, pid(2), t0)

	// 89 秒：全部处于稳定窗口保护期内，无人被断开
	effects := m.CheckSpace(t0.Add(89 * time.Second))
	assert.Empty(t, effects)

	// 91 秒：超出窗口，断开 1 个多余者
	effects = m.CheckSpace(t0.Add(91 * time.Second))
	assert.True(t, hasEffect[types.CloseTransport](effects))
	t.Log("✅ 刚建连的节点永远不会被空间管理折腾")
}

func TestSpace_MixedAges(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxStablePeers = 2
	m, reg, _ := newTestManager(t, cfg, 7)
	t0 := time.Now()

	// 2 个老节点 + 2 个刚建连节点；超出目标 2 个，
	// 但只有老节点可被挑选
	addReady(t, reg, pid(1), t0)
	addReady(t, reg, pid(2), t0)
	addReady(t, reg, pid(3), t0.Add(100*time.Second))
	addReady(t, reg, pid(4), t0.Add(100*time.Second))

	effects := m.CheckSpace(t0.Add(95 * time.Second))

	closes := 0
	for _, e := range effects {
		if ct, ok := e.(types.CloseTransport); ok {
			closes++
			assert.Contains(t, []types.PeerID{pid(1), pid(2)}, ct.Peer)
		}
	}
	assert.Equal(t, 2, closes)
}

func TestSpace_DeterministicSelection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxStablePeers = 5

	pick := func(seed int64) []types.PeerID {
		m, reg, _ := newTestManager(t, cfg, seed)
		t0 := time.Now().Truncate(time.Second)
		for i := 1; i <= 8; i++ {
			addReady(t, reg, pid(byte(i)), t0)
		}
		var out []types.PeerID
		for _, e := range m.CheckSpace(t0.Add(2 * cfg.StabilityWindow)) {
			if ct, ok := e.(types.CloseTransport); ok {
				out = append(out, ct.Peer)
			}
		}
		return out
	}

	// 相同种子 → 相同挑选序列（重放性质的基础）
	assert.Equal(t, pick(123), pick(123))
}
