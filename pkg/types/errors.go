// Package types 定义 ChainP2P 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              连接建立错误
// ============================================================================

var (
	// ErrConnectionTimeout 建连超时
	ErrConnectionTimeout = errors.New("connection timeout")

	// ErrDuplicatePeer 已存在到该节点的活跃连接
	ErrDuplicatePeer = errors.New("duplicate peer connection")

	// ErrCapacityExceeded 连接槽位已满
	ErrCapacityExceeded = errors.New("connection capacity exceeded")

	// ErrHandshakeFailed 外部握手协作者报告失败
	ErrHandshakeFailed = errors.New("handshake failed")

	// ErrSignalingFailed 信令发送或应答失败
	ErrSignalingFailed = errors.New("signaling failed")

	// ErrResolveFailed 地址解析失败（Push 传输）
	ErrResolveFailed = errors.New("address resolution failed")

	// ErrOfferRejected 对端拒绝了连接 Offer
	ErrOfferRejected = errors.New("offer rejected")

	// ErrSelfConnection 尝试连接自身
	ErrSelfConnection = errors.New("self connection")
)

// ============================================================================
//                              通道错误
// ============================================================================

var (
	// ErrSizeLimitExceeded 消息超过通道尺寸上限
	ErrSizeLimitExceeded = errors.New("message size limit exceeded")

	// ErrMalformedMessage 消息无法解码
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnexpectedMessage 当前子状态不接受该消息（严格状态机纪律）
	ErrUnexpectedMessage = errors.New("unexpected message for current state")

	// ErrTooManyRequests 远端请求并发超限（拒绝而非排队）
	ErrTooManyRequests = errors.New("remote request concurrency limit exceeded")

	// ErrChannelNotReady 通道尚未就绪
	ErrChannelNotReady = errors.New("channel not ready")
)

// ============================================================================
//                              注册表错误
// ============================================================================

var (
	// ErrPeerNotFound 节点不在注册表中
	ErrPeerNotFound = errors.New("peer not found")
)

// ============================================================================
//                              通用错误
// ============================================================================

var (
	// ErrQueueClosed 动作队列已关闭
	ErrQueueClosed = errors.New("action queue closed")

	// ErrInvalidArgument 参数无效
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation 内部不变量被破坏
	//
	// 永远非致命：记录诊断信息后该操作按无操作处理，节点继续运行。
	ErrInvariantViolation = errors.New("invariant violation")
)
