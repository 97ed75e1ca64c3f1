package channel

import (
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// ============================================================================
//                              Status - 通道状态
// ============================================================================

// Status 通道状态
type Status int

const (
	// StatusDisabled 通道未启用
	StatusDisabled Status = iota
	// StatusEnabled 已随连接建立启用，尚未打开
	StatusEnabled
	// StatusInit 打开已发起
	StatusInit
	// StatusPending 等待对端确认
	StatusPending
	// StatusReady 就绪，本地/远端子状态机开始独立运行
	StatusReady
	// StatusError 协议违规（终态，等待断开）
	StatusError
	// StatusClosed 已关闭（终态）
	StatusClosed
)

// String 返回通道状态的字符串表示
func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusEnabled:
		return "enabled"
	case StatusInit:
		return "init"
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal 判断是否为终态
func (s Status) Terminal() bool {
	return s == StatusError || s == StatusClosed
}

// ============================================================================
//                              子状态机
// ============================================================================

// LocalState 本地（出站数据流）子状态
//
// Pull 传输：对端必须先拉取；Push 传输不经过 Requested。
type LocalState int

const (
	// LocalWaitingForRequest 等待对端拉取
	LocalWaitingForRequest LocalState = iota
	// LocalRequested 对端已拉取，待业务层供给数据
	LocalRequested
	// LocalResponded 数据已发出
	LocalResponded
)

// String 返回本地子状态的字符串表示
func (s LocalState) String() string {
	switch s {
	case LocalWaitingForRequest:
		return "waiting-for-request"
	case LocalRequested:
		return "requested"
	case LocalResponded:
		return "responded"
	default:
		return "unknown"
	}
}

// RemoteState 远端（入站数据流）子状态
type RemoteState int

const (
	// RemoteIdle 未向对端拉取
	RemoteIdle RemoteState = iota
	// RemoteRequested 已向对端拉取，等待数据
	RemoteRequested
	// RemoteResponded 数据已到达并投递
	RemoteResponded
)

// String 返回远端子状态的字符串表示
func (s RemoteState) String() string {
	switch s {
	case RemoteIdle:
		return "idle"
	case RemoteRequested:
		return "requested"
	case RemoteResponded:
		return "responded"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              StreamProgress - 流式进度
// ============================================================================

// StreamProgress 流式同步通道的增量进度
type StreamProgress struct {
	// SentBytes 已发送字节数
	SentBytes uint64
	// RecvBytes 已接收字节数
	RecvBytes uint64
	// SentChunks 已发送块数
	SentChunks int
	// RecvChunks 已接收块数
	RecvChunks int
	// Done 本次流式传输是否完成
	Done bool
}

// ============================================================================
//                              State - 通道实例状态
// ============================================================================

// State 每个 (节点, 通道类型) 对一个实例
type State struct {
	// Peer 所属节点
	Peer types.PeerID

	// Channel 通道类型
	Channel types.ChannelID

	// Transport 所属连接的传输类型
	Transport types.TransportKind

	// Status 通道状态
	Status Status

	// Local 本地（出站）子状态
	Local LocalState

	// Remote 远端（入站）子状态
	Remote RemoteState

	// NextCorrelationID 单调递增的关联号生成器（Pull 传输的
	// 请求/响应配对；从 1 开始，0 保留表示无关联）
	NextCorrelationID uint64

	// LocalPending 本地发起、未收响应的请求：关联号 → 调用方标识
	LocalPending map[uint64]types.RequestID

	// RemotePending 远端发起、未响应的请求关联号集合
	// （RPC 通道限定并发上限）
	RemotePending map[uint64]struct{}

	// AwaitingNext 流式发送方：已发块，等待接收方 Next
	AwaitingNext bool

	// NextOwed 流式接收方：已收块，放行 Next 之前不接受下一块
	NextOwed bool

	// Progress 流式进度
	Progress StreamProgress

	// LastActivity 最近活动时刻（空闲超时依据）
	LastActivity time.Time
}

// newState 创建通道实例
func newState(peer types.PeerID, ch types.ChannelID, transport types.TransportKind, at time.Time) *State {
	return &State{
		Peer:              peer,
		Channel:           ch,
		Transport:         transport,
		Status:            StatusEnabled,
		NextCorrelationID: 1,
		LocalPending:      make(map[uint64]types.RequestID),
		RemotePending:     make(map[uint64]struct{}),
		LastActivity:      at,
	}
}

// nextCorrelation 取下一个关联号
func (s *State) nextCorrelation() uint64 {
	id := s.NextCorrelationID
	s.NextCorrelationID++
	return id
}

// touch 更新活动时刻
func (s *State) touch(at time.Time) {
	s.LastActivity = at
}

// cfg 返回通道的固定配置
func (s *State) cfg() types.ChannelConfig {
	return types.ChannelConfigOf(s.Channel)
}
