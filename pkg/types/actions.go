// Package types 定义 ChainP2P 公共类型
//
// 本文件定义核心归约器消费的入站动作（Action）词汇表。
//
// 动作是外部协作者（握手服务、信令服务、定时器、DHT 发现、
// 业务消费方）向核心上报完成事件的唯一途径。动作进入全局
// 有序队列后被逐条处理；相同的动作序列必然产生相同的状态
// ——因此动作只携带纯值（错误以字符串形式携带，保证动作
// 日志可序列化、可重放）。
package types

// ============================================================================
//                              ActionKind - 动作类别
// ============================================================================

// ActionKind 动作类别
type ActionKind int

const (
	// ActUnknown 未知动作
	ActUnknown ActionKind = iota
	// ActConnectOutgoing 调用方发起出站连接
	ActConnectOutgoing
	// ActIncomingOffer 收到远端连接 Offer
	ActIncomingOffer
	// ActOfferCreated 外部服务完成 Offer/密钥对生成
	ActOfferCreated
	// ActAnswerCreated 外部服务完成 Answer 生成
	ActAnswerCreated
	// ActAnswerReceived 收到远端连接应答
	ActAnswerReceived
	// ActSignalingSendResult 信令发送完成
	ActSignalingSendResult
	// ActResolveResult 地址解析完成（Push 传输）
	ActResolveResult
	// ActHandshakeResult 下层握手完成
	ActHandshakeResult
	// ActFinalizeResult 建连收尾完成
	ActFinalizeResult
	// ActChannelOpen 请求为节点打开通道
	ActChannelOpen
	// ActBytesReceived 通道收到（已解码的）消息
	ActBytesReceived
	// ActChannelAnnounce 业务层向网络公告条目
	ActChannelAnnounce
	// ActChannelRequest 业务层向指定节点发起请求
	ActChannelRequest
	// ActChannelRespond 业务层响应远端请求
	ActChannelRespond
	// ActStreamNext 流式接收方请求下一块
	ActStreamNext
	// ActTimerFired 定时器触发
	ActTimerFired
	// ActDisconnectRequest 调用方请求断开
	ActDisconnectRequest
	// ActPeerClosed 观察到对端主动关闭
	ActPeerClosed
	// ActCleanupResult 传输资源清理完成
	ActCleanupResult
	// ActDhtPeerDiscovered DHT 发现新节点
	ActDhtPeerDiscovered
)

// String 返回动作类别的字符串表示
func (k ActionKind) String() string {
	switch k {
	case ActConnectOutgoing:
		return "connect-outgoing"
	case ActIncomingOffer:
		return "incoming-offer"
	case ActOfferCreated:
		return "offer-created"
	case ActAnswerCreated:
		return "answer-created"
	case ActAnswerReceived:
		return "answer-received"
	case ActSignalingSendResult:
		return "signaling-send-result"
	case ActResolveResult:
		return "resolve-result"
	case ActHandshakeResult:
		return "handshake-result"
	case ActFinalizeResult:
		return "finalize-result"
	case ActChannelOpen:
		return "channel-open"
	case ActBytesReceived:
		return "bytes-received"
	case ActChannelAnnounce:
		return "channel-announce"
	case ActChannelRequest:
		return "channel-request"
	case ActChannelRespond:
		return "channel-respond"
	case ActStreamNext:
		return "stream-next"
	case ActTimerFired:
		return "timer-fired"
	case ActDisconnectRequest:
		return "disconnect-request"
	case ActPeerClosed:
		return "peer-closed"
	case ActCleanupResult:
		return "cleanup-result"
	case ActDhtPeerDiscovered:
		return "dht-peer-discovered"
	default:
		return "unknown"
	}
}

// Action 入站动作接口
type Action interface {
	// Kind 返回动作类别
	Kind() ActionKind
}

// ============================================================================
//                              连接建立动作
// ============================================================================

// ConnectOutgoing 发起出站连接
type ConnectOutgoing struct {
	// Peer 目标节点
	Peer PeerID
	// Addr 目标地址（Push 传输需解析；Pull 传输为信令可达提示）
	Addr string
	// Transport 传输类型
	Transport TransportKind
	// Signaling 信令方式（外部可达性策略已选定）
	Signaling SignalingKind
	// Relay 中继节点（仅 Signaling 为 Relayed 时有效）
	Relay PeerID
	// RequestID 可选关联标识，完成回调据此配对
	RequestID RequestID
}

// Kind 返回动作类别
func (ConnectOutgoing) Kind() ActionKind { return ActConnectOutgoing }

// IncomingOffer 收到远端连接 Offer
type IncomingOffer struct {
	// Peer 发起方节点
	Peer PeerID
	// ChainID 发起方所在链
	ChainID ChainID
	// Target Offer 的目标节点
	Target PeerID
	// IdentityOK 外部校验：peer_id 与公钥是否匹配
	IdentityOK bool
	// Offer 不透明 Offer 负载（转交 Answer 生成服务）
	Offer []byte
}

// Kind 返回动作类别
func (IncomingOffer) Kind() ActionKind { return ActIncomingOffer }

// OfferCreated 外部服务完成 Offer 与临时密钥对生成
type OfferCreated struct {
	Peer PeerID
	// Offer 不透明 Offer 负载
	Offer []byte
	// Err 非空表示生成失败
	Err string
}

// Kind 返回动作类别
func (OfferCreated) Kind() ActionKind { return ActOfferCreated }

// AnswerCreated 外部服务完成 Answer 生成
type AnswerCreated struct {
	Peer PeerID
	// Answer 不透明 Answer 负载
	Answer []byte
	// Err 非空表示生成失败
	Err string
}

// Kind 返回动作类别
func (AnswerCreated) Kind() ActionKind { return ActAnswerCreated }

// ConnectionResponseKind 连接应答类别
type ConnectionResponseKind int

const (
	// ResponseAccepted Offer 被接受，附带 Answer
	ResponseAccepted ConnectionResponseKind = iota
	// ResponseRejected Offer 被拒绝，附带拒绝原因
	ResponseRejected
	// ResponseDecryptionFailed 信令解密失败
	ResponseDecryptionFailed
	// ResponseInternalError 远端内部错误
	ResponseInternalError
)

// String 返回连接应答类别的字符串表示
func (k ConnectionResponseKind) String() string {
	switch k {
	case ResponseAccepted:
		return "accepted"
	case ResponseRejected:
		return "rejected"
	case ResponseDecryptionFailed:
		return "decryption-failed"
	case ResponseInternalError:
		return "internal-error"
	default:
		return "unknown"
	}
}

// AnswerReceived 收到远端连接应答
type AnswerReceived struct {
	Peer PeerID
	// Response 应答类别
	Response ConnectionResponseKind
	// Answer 不透明 Answer 负载（仅 Accepted 时有效）
	Answer []byte
	// Reason 拒绝原因（仅 Rejected 时有效）
	Reason RejectionReason
}

// Kind 返回动作类别
func (AnswerReceived) Kind() ActionKind { return ActAnswerReceived }

// SignalingSendResult 信令发送完成
type SignalingSendResult struct {
	Peer PeerID
	// Err 非空表示发送失败
	Err string
}

// Kind 返回动作类别
func (SignalingSendResult) Kind() ActionKind { return ActSignalingSendResult }

// ResolveResult 地址解析完成（Push 传输）
type ResolveResult struct {
	Peer PeerID
	// Addrs 解析得到的地址
	Addrs []string
	// Err 非空表示解析失败
	Err string
}

// Kind 返回动作类别
func (ResolveResult) Kind() ActionKind { return ActResolveResult }

// HandshakeResult 下层握手完成
//
// 出站：对应此前发出的 StartHandshake 效果。
// 入站 Push：首个浮出核心的事件——下层握手早已完成，
// 此时核心才为该节点建立 Incoming 记录（FinalizePendingPush 分支）。
type HandshakeResult struct {
	Peer PeerID
	// Direction 连接方向
	Direction Direction
	// Transport 传输类型
	Transport TransportKind
	// Err 非空表示握手失败
	Err string
}

// Kind 返回动作类别
func (HandshakeResult) Kind() ActionKind { return ActHandshakeResult }

// FinalizeResult 建连收尾完成（Pull 传输 Answer 处理完毕）
type FinalizeResult struct {
	Peer PeerID
	// Err 非空表示收尾失败
	Err string
}

// Kind 返回动作类别
func (FinalizeResult) Kind() ActionKind { return ActFinalizeResult }

// ============================================================================
//                              通道动作
// ============================================================================

// ChannelOpen 请求为节点打开通道
type ChannelOpen struct {
	Peer    PeerID
	Channel ChannelID
}

// Kind 返回动作类别
func (ChannelOpen) Kind() ActionKind { return ActChannelOpen }

// BytesReceived 通道收到（已解码的）消息
//
// 线上字节由外部编解码服务解码后入队；解码失败以
// Kind=MsgMalformed 的消息上报，由通道层按协议违规处理。
type BytesReceived struct {
	Peer    PeerID
	Channel ChannelID
	Msg     ChannelMsg
}

// Kind 返回动作类别
func (BytesReceived) Kind() ActionKind { return ActBytesReceived }

// ChannelAnnounce 业务层向网络公告条目
//
// 上行契约就是"把这个条目公告给网络"：通道层自行把它翻译为
// "对每个 Ready 的 Push 节点立即发送、对每个已请求的 Pull
// 节点按需发送"，传输差异不外泄给业务层。
type ChannelAnnounce struct {
	Channel ChannelID
	// ItemID 条目去重键（广播型通道防放大风暴）
	ItemID string
	// Payload 不透明条目负载
	Payload []byte
}

// Kind 返回动作类别
func (ChannelAnnounce) Kind() ActionKind { return ActChannelAnnounce }

// ChannelRequest 业务层向指定节点发起请求
//
// RPC 通道：生成本地单调递增关联号后发出请求。
// 流式通道：发起一次流式拉取。
type ChannelRequest struct {
	Peer    PeerID
	Channel ChannelID
	// Payload 不透明请求负载
	Payload []byte
	// RequestID 可选关联标识，响应回调据此配对
	RequestID RequestID
}

// Kind 返回动作类别
func (ChannelRequest) Kind() ActionKind { return ActChannelRequest }

// ChannelRespond 业务层响应远端请求
type ChannelRespond struct {
	Peer    PeerID
	Channel ChannelID
	// CorrelationID 对应远端请求的关联号
	CorrelationID uint64
	// Payload 不透明响应负载
	Payload []byte
	// Last 流式通道：是否最后一块
	Last bool
}

// Kind 返回动作类别
func (ChannelRespond) Kind() ActionKind { return ActChannelRespond }

// StreamNext 流式接收方显式请求下一块（流控）
type StreamNext struct {
	Peer    PeerID
	Channel ChannelID
}

// Kind 返回动作类别
func (StreamNext) Kind() ActionKind { return ActStreamNext }

// ============================================================================
//                              定时器与断开动作
// ============================================================================

// TimerFired 定时器触发
type TimerFired struct {
	Tag TimerTag
}

// Kind 返回动作类别
func (TimerFired) Kind() ActionKind { return ActTimerFired }

// DisconnectRequest 调用方请求断开
type DisconnectRequest struct {
	Peer   PeerID
	Reason DisconnectReason
}

// Kind 返回动作类别
func (DisconnectRequest) Kind() ActionKind { return ActDisconnectRequest }

// PeerClosed 观察到对端主动关闭
//
// 跳过本地发起的关闭步骤，直接进入资源清理。
type PeerClosed struct {
	Peer PeerID
}

// Kind 返回动作类别
func (PeerClosed) Kind() ActionKind { return ActPeerClosed }

// CleanupResult 传输资源清理完成
type CleanupResult struct {
	Peer PeerID
	// Err 非空表示清理失败（重试一次后强制完成）
	Err string
}

// Kind 返回动作类别
func (CleanupResult) Kind() ActionKind { return ActCleanupResult }

// ============================================================================
//                              发现动作
// ============================================================================

// DhtPeerDiscovered DHT 发现新节点
//
// 核心仅登记可达信息供上层连接策略使用；
// 是否发起连接由上层决定，不在此自动触发。
type DhtPeerDiscovered struct {
	Peer PeerID
	Addr string
}

// Kind 返回动作类别
func (DhtPeerDiscovered) Kind() ActionKind { return ActDhtPeerDiscovered }
