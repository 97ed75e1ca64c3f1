package registry

import (
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// PeerRecord 节点记录
//
// 注册表中每个当前已知节点一条。建连期间它承载瞬态的
// 连接尝试信息（子状态、超时、关联标识）；到达 Success
// 终态后尝试信息折叠为 Transport/ConnectedSince，Error
// 终态则整条记录被丢弃、只在断开历史中留痕。
type PeerRecord struct {
	// ID 节点标识
	ID types.PeerID

	// Direction 连接方向（Outgoing/Incoming 二选一，绝不同时）
	Direction types.Direction

	// Transport 传输能力（建连成功后固定）
	Transport types.TransportKind

	// Status 连接总状态
	Status types.ConnStatus

	// Outgoing 出站建连子状态（仅 Direction 为 Outbound 时有意义）
	Outgoing types.OutgoingState

	// Incoming 入站建连子状态（仅 Direction 为 Inbound 时有意义）
	Incoming types.IncomingState

	// Signaling 信令方式（仅 Pull 出站有意义）
	Signaling types.SignalingKind

	// Relay 中继节点（仅 Relayed 信令有意义）
	Relay types.PeerID

	// Addrs 目标/已解析地址
	Addrs []string

	// RequestID 发起方关联标识，建连完成回调据此配对
	RequestID types.RequestID

	// Timeout 本次建连尝试的超时上限（按传输类型配置）
	Timeout time.Duration

	// StateEnteredAt 进入当前子状态的时刻（超时扫描依据）
	StateEnteredAt time.Time

	// ConnectedSince 建连成功时刻（空间管理的稳定窗口依据）
	ConnectedSince time.Time

	// Phase 断开流程阶段
	Phase types.DisconnectPhase

	// DisconnectReason 断开原因（进入断开流程后有效）
	DisconnectReason types.DisconnectReason

	// CleanupRetried 清理是否已重试过一次
	CleanupRetried bool
}

// EnterOutgoing 迁移出站建连子状态
func (r *PeerRecord) EnterOutgoing(s types.OutgoingState, at time.Time) {
	r.Outgoing = s
	r.StateEnteredAt = at
}

// EnterIncoming 迁移入站建连子状态
func (r *PeerRecord) EnterIncoming(s types.IncomingState, at time.Time) {
	r.Incoming = s
	r.StateEnteredAt = at
}

// Establish 建连成功：固定传输能力并记录时间戳
func (r *PeerRecord) Establish(at time.Time) {
	r.Status = types.ConnStatusReady
	r.ConnectedSince = at
	if r.Direction == types.DirOutbound {
		r.Outgoing = types.OutgoingSuccess
	} else {
		r.Incoming = types.IncomingSuccess
	}
	r.StateEnteredAt = at
}

// Establishing 是否处于建连阶段
func (r *PeerRecord) Establishing() bool {
	return r.Status == types.ConnStatusConnecting
}

// Ready 是否已建连
func (r *PeerRecord) Ready() bool {
	return r.Status == types.ConnStatusReady
}

// Terminal 建连子机是否已到终态
func (r *PeerRecord) Terminal() bool {
	if r.Direction == types.DirOutbound {
		return r.Outgoing.Terminal()
	}
	return r.Incoming.Terminal()
}

// Age 返回建连时长
func (r *PeerRecord) Age(now time.Time) time.Duration {
	if r.ConnectedSince.IsZero() {
		return 0
	}
	return now.Sub(r.ConnectedSince)
}

// StateAge 返回当前子状态驻留时长
func (r *PeerRecord) StateAge(now time.Time) time.Duration {
	if r.StateEnteredAt.IsZero() {
		return 0
	}
	return now.Sub(r.StateEnteredAt)
}

// StateName 返回当前建连子状态名（日志/快照用）
func (r *PeerRecord) StateName() string {
	if r.Direction == types.DirOutbound {
		return r.Outgoing.String()
	}
	return r.Incoming.String()
}
