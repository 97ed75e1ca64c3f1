package types

// ============================================================================
//                              TransportKind - 传输类型
// ============================================================================

// TransportKind 传输类型
//
// 两种根本不同的通信范式：
//   - Push：面向服务器的推送/gossip 传输，数据无需请求即可广播给订阅者
//   - Pull：面向浏览器的请求/响应传输，所有数据传输由显式请求发起
type TransportKind int

const (
	// TransportUnknown 未知传输类型
	TransportUnknown TransportKind = iota
	// TransportPush 推送传输（gossip/pub-sub 风格）
	TransportPush
	// TransportPull 拉取传输（请求/响应风格，Offer/Answer 协商建连）
	TransportPull
)

// String 返回传输类型的字符串表示
func (t TransportKind) String() string {
	switch t {
	case TransportPush:
		return "push"
	case TransportPull:
		return "pull"
	default:
		return "unknown"
	}
}

// Valid 检查传输类型是否有效
func (t TransportKind) Valid() bool {
	return t == TransportPush || t == TransportPull
}

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 连接方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站连接
	DirInbound
	// DirOutbound 出站连接
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              SignalingKind - 信令方式
// ============================================================================

// SignalingKind 信令传递方式
//
// Offer/Answer 在直连建立之前通过信令通道传递：
//   - Direct：目标可直达，直接向其发送信令
//   - Relayed：经由中间节点的信令交换通道转发
//
// 选择哪种方式由外部可达性策略决定，核心只记录结果。
type SignalingKind int

const (
	// SignalingUnknown 未知信令方式
	SignalingUnknown SignalingKind = iota
	// SignalingDirect 直接信令
	SignalingDirect
	// SignalingRelayed 中继信令
	SignalingRelayed
)

// String 返回信令方式的字符串表示
func (s SignalingKind) String() string {
	switch s {
	case SignalingDirect:
		return "direct"
	case SignalingRelayed:
		return "relayed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              RejectionReason - Offer 拒绝原因
// ============================================================================

// RejectionReason 入站 Offer 被拒绝的原因
type RejectionReason int

const (
	// RejectChainIDMismatch 对端位于不同链
	RejectChainIDMismatch RejectionReason = iota
	// RejectPeerIDMismatch peer_id 与对端公钥不匹配
	RejectPeerIDMismatch
	// RejectTargetNotMe Offer 的目标不是本节点
	RejectTargetNotMe
	// RejectCapacityFull 已达节点容量上限
	RejectCapacityFull
	// RejectAlreadyConnected 已存在到该节点的连接
	RejectAlreadyConnected
	// RejectSelfConnection 检测到自连接
	RejectSelfConnection
)

// String 返回拒绝原因的字符串表示
func (r RejectionReason) String() string {
	switch r {
	case RejectChainIDMismatch:
		return "chain ID mismatch"
	case RejectPeerIDMismatch:
		return "peer ID / public key mismatch"
	case RejectTargetNotMe:
		return "target peer is not local node"
	case RejectCapacityFull:
		return "peer capacity full"
	case RejectAlreadyConnected:
		return "peer already connected"
	case RejectSelfConnection:
		return "self connection"
	default:
		return "unknown"
	}
}

// IsBad 判断拒绝原因是否表示协议违规
//
// 部分拒绝是正常运行条件（容量满、链不匹配、自连接），
// 另一些则可能表示恶意行为或实现缺陷。
func (r RejectionReason) IsBad() bool {
	switch r {
	case RejectPeerIDMismatch, RejectTargetNotMe, RejectAlreadyConnected:
		return true
	default:
		return false
	}
}

// ============================================================================
//                              DisconnectReason - 断开原因
// ============================================================================

// DisconnectReason 断开原因
//
// 断开通知与断开历史记录中携带，供上层做退避/诊断决策。
type DisconnectReason int

const (
	// DisconnectUnknown 未知原因
	DisconnectUnknown DisconnectReason = iota
	// DisconnectRequested 调用方显式请求断开
	DisconnectRequested
	// DisconnectProtocolViolation 通道协议违规（超限/畸形/乱序消息）
	DisconnectProtocolViolation
	// DisconnectSpaceManagement 空间管理自动断开
	DisconnectSpaceManagement
	// DisconnectPeerClosed 对端主动关闭
	DisconnectPeerClosed
	// DisconnectTimeout 连接建立超时
	DisconnectTimeout
	// DisconnectDuplicatePeer 重复连接（入站侧关闭较旧一条）
	DisconnectDuplicatePeer
	// DisconnectCapacityExceeded 连接槽位耗尽
	DisconnectCapacityExceeded
	// DisconnectHandshakeFailed 外部握手失败
	DisconnectHandshakeFailed
	// DisconnectSignalingFailed 信令发送/应答失败
	DisconnectSignalingFailed
)

// String 返回断开原因的字符串表示
func (r DisconnectReason) String() string {
	switch r {
	case DisconnectRequested:
		return "requested"
	case DisconnectProtocolViolation:
		return "protocol violation"
	case DisconnectSpaceManagement:
		return "space management"
	case DisconnectPeerClosed:
		return "peer closed"
	case DisconnectTimeout:
		return "timeout"
	case DisconnectDuplicatePeer:
		return "duplicate peer"
	case DisconnectCapacityExceeded:
		return "capacity exceeded"
	case DisconnectHandshakeFailed:
		return "handshake failed"
	case DisconnectSignalingFailed:
		return "signaling failed"
	default:
		return "unknown"
	}
}
