package chainp2p

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/dispatch"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var logger = log.Logger("chainp2p")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点生命周期状态
type NodeState int

const (
	// StateIdle 空闲状态（已创建，未启动）
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopping 停止中
	StateStopping

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              Node - 节点门面
// ════════════════════════════════════════════════════════════════════════════

// Node 网络核心节点
//
// 对调用方暴露连接、通道与诊断 API；所有写操作都折算成
// 动作入队，由单线程归约循环消费。
type Node struct {
	mu    sync.Mutex
	state NodeState

	cfg    config.Config
	app    *fx.App
	core   *dispatch.Core
	queue  *dispatch.Queue
	runner *effectRunner

	cancelRun context.CancelFunc
	runDone   chan struct{}
}

// New 创建节点
func New(opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	node := &Node{cfg: o.cfg, state: StateIdle}
	app, err := buildFxApp(o, node)
	if err != nil {
		return nil, err
	}
	node.app = app
	return node, nil
}

// ID 返回本节点标识
func (n *Node) ID() types.PeerID {
	return n.cfg.LocalPeer
}

// State 返回节点生命周期状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动节点
//
// 组件装配完成后启动归约循环；循环起步时武装周期定时器。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateRunning {
		return ErrAlreadyStarted
	}
	if n.state == StateStopping || n.state == StateStopped {
		return ErrNodeClosed
	}

	if err := n.app.Start(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	n.cancelRun = cancel
	n.runDone = make(chan struct{})
	go func() {
		defer close(n.runDone)
		if err := n.queue.Run(runCtx); err != nil && err != context.Canceled {
			logger.Warn("reduction loop exited", "err", err.Error())
		}
	}()

	n.state = StateRunning
	logger.Info("node started",
		"peer", n.cfg.LocalPeer.ShortString(),
		"chain", string(n.cfg.ChainID))
	return nil
}

// Stop 停止节点
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateRunning {
		return ErrNotStarted
	}
	n.state = StateStopping

	_ = n.queue.Close()
	n.cancelRun()
	select {
	case <-n.runDone:
	case <-ctx.Done():
	}
	n.runner.stopAll()

	err := n.app.Stop(ctx)
	n.state = StateStopped
	logger.Info("node stopped", "peer", n.cfg.LocalPeer.ShortString())
	return err
}

// ensureRunning 校验节点处于运行态
func (n *Node) ensureRunning() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	switch n.state {
	case StateRunning:
		return nil
	case StateIdle:
		return ErrNotStarted
	default:
		return ErrNodeClosed
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              连接 API
// ════════════════════════════════════════════════════════════════════════════

// Connect 发起出站连接
//
// 返回的 RequestID 与最终的建连完成回调（NotifyConnectOutcome
// 效果）配对。Pull 传输走 Offer/Answer 信令；Push 传输走
// 地址解析加直连握手。
func (n *Node) Connect(peer types.PeerID, addr string, transport types.TransportKind, signaling types.SignalingKind, relay types.PeerID) (types.RequestID, error) {
	if err := n.ensureRunning(); err != nil {
		return types.EmptyRequestID, err
	}
	reqID := types.NewRequestID()
	err := n.queue.Enqueue(types.ConnectOutgoing{
		Peer:      peer,
		Addr:      addr,
		Transport: transport,
		Signaling: signaling,
		Relay:     relay,
		RequestID: reqID,
	})
	if err != nil {
		return types.EmptyRequestID, err
	}
	return reqID, nil
}

// Disconnect 请求断开节点
func (n *Node) Disconnect(peer types.PeerID, reason types.DisconnectReason) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.queue.Enqueue(types.DisconnectRequest{Peer: peer, Reason: reason})
}

// ════════════════════════════════════════════════════════════════════════════
//                              通道 API
// ════════════════════════════════════════════════════════════════════════════

// OpenChannel 请求打开通道
func (n *Node) OpenChannel(peer types.PeerID, ch types.ChannelID) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.queue.Enqueue(types.ChannelOpen{Peer: peer, Channel: ch})
}

// Announce 把条目公告给网络
//
// 推拉差异不外泄：条目发给每个就绪的 Push 节点，以及每个
// 已显式拉取的 Pull 节点。itemID 用于去重。
func (n *Node) Announce(ch types.ChannelID, itemID string, payload []byte) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.queue.Enqueue(types.ChannelAnnounce{Channel: ch, ItemID: itemID, Payload: payload})
}

// Request 向指定节点发起请求
//
// 返回的 RequestID 在响应投递（NotifyChannelMessage 效果）
// 中回传，调用方据此配对。
func (n *Node) Request(peer types.PeerID, ch types.ChannelID, payload []byte) (types.RequestID, error) {
	if err := n.ensureRunning(); err != nil {
		return types.EmptyRequestID, err
	}
	reqID := types.NewRequestID()
	err := n.queue.Enqueue(types.ChannelRequest{
		Peer: peer, Channel: ch, Payload: payload, RequestID: reqID,
	})
	if err != nil {
		return types.EmptyRequestID, err
	}
	return reqID, nil
}

// Respond 响应远端请求
func (n *Node) Respond(peer types.PeerID, ch types.ChannelID, correlationID uint64, payload []byte, last bool) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.queue.Enqueue(types.ChannelRespond{
		Peer: peer, Channel: ch, CorrelationID: correlationID, Payload: payload, Last: last,
	})
}

// StreamNext 流式接收方放行下一块
func (n *Node) StreamNext(peer types.PeerID, ch types.ChannelID) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.queue.Enqueue(types.StreamNext{Peer: peer, Channel: ch})
}

// ════════════════════════════════════════════════════════════════════════════
//                              动作回灌
// ════════════════════════════════════════════════════════════════════════════

// Submit 把动作追加到队列
//
// 执行器完成外发请求后经此回报（OfferCreated、HandshakeResult、
// BytesReceived、CleanupResult 等）。
func (n *Node) Submit(a types.Action) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.queue.Enqueue(a)
}

// ════════════════════════════════════════════════════════════════════════════
//                              诊断
// ════════════════════════════════════════════════════════════════════════════

// Journal 返回动作日志副本（重放输入）
func (n *Node) Journal() []dispatch.Entry {
	return n.queue.Journal()
}

// Snapshot 返回注册表快照
//
// 运行中经归约循环串行读取，与动作消费互不交叠；循环
// 停止后没有并发写者，直接读取。
func (n *Node) Snapshot() registry.Snapshot {
	var snap registry.Snapshot
	if n.State() == StateRunning {
		if err := n.queue.Inspect(func() { snap = n.core.Snapshot() }); err == nil {
			return snap
		}
	}
	return n.core.Snapshot()
}

// Stats 返回注册表统计
func (n *Node) Stats() registry.Stats {
	var stats registry.Stats
	if n.State() == StateRunning {
		if err := n.queue.Inspect(func() { stats = n.core.Stats() }); err == nil {
			return stats
		}
	}
	return n.core.Stats()
}
