// Package types 定义 ChainP2P 公共类型
//
// 本文件定义核心归约器产生的出站效果（Effect）词汇表。
//
// 归约函数是纯函数：读取当前状态与一条动作，产出下一状态
// 与一组效果。真正的 I/O（发送字节、启动定时器、调用回调）
// 由队列循环把效果交给外部执行器完成；执行结果再以新动作
// 入队。核心内部没有任何阻塞调用。
package types

import "time"

// ============================================================================
//                              EffectKind - 效果类别
// ============================================================================

// EffectKind 效果类别
type EffectKind int

const (
	// EffUnknown 未知效果
	EffUnknown EffectKind = iota
	// EffResolveAddr 请求解析目标地址（Push 传输）
	EffResolveAddr
	// EffCreateOffer 请求生成临时密钥对与 Offer
	EffCreateOffer
	// EffCreateAnswer 请求生成 Answer
	EffCreateAnswer
	// EffStartHandshake 请求下层调度器执行套接字连接与握手
	EffStartHandshake
	// EffFinalizeConnection 把远端 Answer 交给握手收尾步骤
	EffFinalizeConnection
	// EffSendSignaling 发送信令（直接或经中继）
	EffSendSignaling
	// EffSendSignalingResponse 回应入站 Offer（接受/拒绝）
	EffSendSignalingResponse
	// EffSendBytes 在通道上发送消息
	EffSendBytes
	// EffStartTimer 启动定时器
	EffStartTimer
	// EffCancelTimer 取消定时器
	EffCancelTimer
	// EffCloseTransport 清理节点的传输资源
	EffCloseTransport
	// EffNotifyDisconnected 通知依赖方节点已断开
	EffNotifyDisconnected
	// EffNotifyChannelMessage 向业务层投递通道消息
	EffNotifyChannelMessage
	// EffNotifyConnectOutcome 连接发起方的完成回调
	EffNotifyConnectOutcome
	// EffNotifyDiagnostic 不变量违规诊断上报（非致命）
	EffNotifyDiagnostic
)

// String 返回效果类别的字符串表示
func (k EffectKind) String() string {
	switch k {
	case EffResolveAddr:
		return "resolve-addr"
	case EffCreateOffer:
		return "create-offer"
	case EffCreateAnswer:
		return "create-answer"
	case EffStartHandshake:
		return "start-handshake"
	case EffFinalizeConnection:
		return "finalize-connection"
	case EffSendSignaling:
		return "send-signaling"
	case EffSendSignalingResponse:
		return "send-signaling-response"
	case EffSendBytes:
		return "send-bytes"
	case EffStartTimer:
		return "start-timer"
	case EffCancelTimer:
		return "cancel-timer"
	case EffCloseTransport:
		return "close-transport"
	case EffNotifyDisconnected:
		return "notify-disconnected"
	case EffNotifyChannelMessage:
		return "notify-channel-message"
	case EffNotifyConnectOutcome:
		return "notify-connect-outcome"
	case EffNotifyDiagnostic:
		return "notify-diagnostic"
	default:
		return "unknown"
	}
}

// Effect 出站效果接口
type Effect interface {
	// Kind 返回效果类别
	Kind() EffectKind
}

// ============================================================================
//                              连接建立效果
// ============================================================================

// ResolveAddr 请求解析目标地址（Push 传输）
type ResolveAddr struct {
	Peer PeerID
	Addr string
}

// Kind 返回效果类别
func (ResolveAddr) Kind() EffectKind { return EffResolveAddr }

// CreateOffer 请求外部服务生成临时密钥对与连接 Offer
type CreateOffer struct {
	Peer PeerID
}

// Kind 返回效果类别
func (CreateOffer) Kind() EffectKind { return EffCreateOffer }

// CreateAnswer 请求外部服务为入站 Offer 生成 Answer
type CreateAnswer struct {
	Peer PeerID
	// Offer 入站 Offer 的不透明负载
	Offer []byte
}

// Kind 返回效果类别
func (CreateAnswer) Kind() EffectKind { return EffCreateAnswer }

// StartHandshake 请求下层调度器执行套接字连接与握手
type StartHandshake struct {
	Peer PeerID
	// Addrs 已解析的候选地址
	Addrs []string
	// Transport 传输类型
	Transport TransportKind
}

// Kind 返回效果类别
func (StartHandshake) Kind() EffectKind { return EffStartHandshake }

// FinalizeConnection 把远端 Answer 交给握手收尾步骤
type FinalizeConnection struct {
	Peer PeerID
	// Answer 不透明 Answer 负载
	Answer []byte
}

// Kind 返回效果类别
func (FinalizeConnection) Kind() EffectKind { return EffFinalizeConnection }

// SendSignaling 发送信令
type SendSignaling struct {
	// Target 信令最终目标
	Target PeerID
	// Signaling 信令方式
	Signaling SignalingKind
	// Relay 中继节点（仅 Relayed 时有效）
	Relay PeerID
	// Payload 不透明信令负载（Offer）
	Payload []byte
}

// Kind 返回效果类别
func (SendSignaling) Kind() EffectKind { return EffSendSignaling }

// SendSignalingResponse 回应入站 Offer
type SendSignalingResponse struct {
	// Target 应答目标（Offer 发起方）
	Target PeerID
	// Response 应答类别
	Response ConnectionResponseKind
	// Payload 不透明 Answer 负载（仅 Accepted 时有效）
	Payload []byte
	// Reason 拒绝原因（仅 Rejected 时有效）
	Reason RejectionReason
}

// Kind 返回效果类别
func (SendSignalingResponse) Kind() EffectKind { return EffSendSignalingResponse }

// ============================================================================
//                              通道效果
// ============================================================================

// SendBytes 在通道上发送消息
//
// 外部编解码服务负责把 ChannelMsg 编码为线上字节。
type SendBytes struct {
	Peer    PeerID
	Channel ChannelID
	Msg     ChannelMsg
}

// Kind 返回效果类别
func (SendBytes) Kind() EffectKind { return EffSendBytes }

// ============================================================================
//                              定时器效果
// ============================================================================

// StartTimer 启动定时器
type StartTimer struct {
	Tag      TimerTag
	Duration time.Duration
}

// Kind 返回效果类别
func (StartTimer) Kind() EffectKind { return EffStartTimer }

// CancelTimer 取消定时器
type CancelTimer struct {
	Tag TimerTag
}

// Kind 返回效果类别
func (CancelTimer) Kind() EffectKind { return EffCancelTimer }

// ============================================================================
//                              断开与通知效果
// ============================================================================

// CloseTransport 清理节点的传输资源
//
// Push 与 Pull 的清理路径由外部传输服务区分执行，
// 完成后以 CleanupResult 动作上报。
type CloseTransport struct {
	Peer      PeerID
	Transport TransportKind
}

// Kind 返回效果类别
func (CloseTransport) Kind() EffectKind { return EffCloseTransport }

// NotifyDisconnected 通知依赖方（共识、内存池）节点已断开
type NotifyDisconnected struct {
	Peer   PeerID
	Reason DisconnectReason
}

// Kind 返回效果类别
func (NotifyDisconnected) Kind() EffectKind { return EffNotifyDisconnected }

// NotifyChannelMessage 向业务层投递通道消息
//
// 上行契约是"这个条目来自节点 X"——不区分它是推送来的
// 还是拉取来的。
type NotifyChannelMessage struct {
	Peer    PeerID
	Channel ChannelID
	Msg     ChannelMsg
	// RequestID 本地请求的关联标识（仅响应投递时有效）
	RequestID RequestID
}

// Kind 返回效果类别
func (NotifyChannelMessage) Kind() EffectKind { return EffNotifyChannelMessage }

// NotifyConnectOutcome 连接发起方的完成回调
type NotifyConnectOutcome struct {
	RequestID RequestID
	Peer      PeerID
	// Err 非空表示建连失败
	Err string
}

// Kind 返回效果类别
func (NotifyConnectOutcome) Kind() EffectKind { return EffNotifyConnectOutcome }

// NotifyDiagnostic 不变量违规诊断上报
//
// 永远非致命：仅供运维可见性，不作为用户可见失败处理。
type NotifyDiagnostic struct {
	Message string
}

// Kind 返回效果类别
func (NotifyDiagnostic) Kind() EffectKind { return EffNotifyDiagnostic }
