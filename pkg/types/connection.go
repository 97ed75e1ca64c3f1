// Package types 定义 ChainP2P 公共类型
//
// 本文件定义连接建立与断开的状态枚举。
// 状态刻意展平为线性枚举（而非嵌套结构），
// 以保证重放日志可读、switch 可穷举检查。
package types

// ============================================================================
//                              OutgoingState - 出站建连状态
// ============================================================================

// OutgoingState 出站连接建立状态
//
// Pull 传输：
//
//	Init → OfferCreatePending → OfferCreateSuccess → OfferReady
//	     → OfferSendSuccess → AnswerRecvPending → AnswerRecvSuccess
//	     → FinalizePending → Success
//
// Push 传输：
//
//	Init → ResolvePending → FinalizePending → Success
//
// 任何非终态均可进入 Error 终态。终态不再响应迟到的外部事件。
type OutgoingState int

const (
	// OutgoingInit 初始状态
	OutgoingInit OutgoingState = iota
	// OutgoingResolvePending 等待地址解析（仅 Push 传输）
	OutgoingResolvePending
	// OutgoingOfferCreatePending 等待外部服务生成密钥对与 Offer
	OutgoingOfferCreatePending
	// OutgoingOfferCreateSuccess Offer 生成完成
	OutgoingOfferCreateSuccess
	// OutgoingOfferReady Offer 就绪，待发送
	OutgoingOfferReady
	// OutgoingOfferSendSuccess Offer 已通过信令发出
	OutgoingOfferSendSuccess
	// OutgoingAnswerRecvPending 等待远端加密 Answer
	OutgoingAnswerRecvPending
	// OutgoingAnswerRecvSuccess Answer 已收到
	OutgoingAnswerRecvSuccess
	// OutgoingFinalizePending 等待握手完成
	OutgoingFinalizePending
	// OutgoingSuccess 建连成功（终态）
	OutgoingSuccess
	// OutgoingError 建连失败（终态）
	OutgoingError
)

// String 返回出站状态的字符串表示
func (s OutgoingState) String() string {
	switch s {
	case OutgoingInit:
		return "init"
	case OutgoingResolvePending:
		return "resolve-pending"
	case OutgoingOfferCreatePending:
		return "offer-create-pending"
	case OutgoingOfferCreateSuccess:
		return "offer-create-success"
	case OutgoingOfferReady:
		return "offer-ready"
	case OutgoingOfferSendSuccess:
		return "offer-send-success"
	case OutgoingAnswerRecvPending:
		return "answer-recv-pending"
	case OutgoingAnswerRecvSuccess:
		return "answer-recv-success"
	case OutgoingFinalizePending:
		return "finalize-pending"
	case OutgoingSuccess:
		return "success"
	case OutgoingError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal 判断是否为终态
func (s OutgoingState) Terminal() bool {
	return s == OutgoingSuccess || s == OutgoingError
}

// ============================================================================
//                              IncomingState - 入站建连状态
// ============================================================================

// IncomingState 入站连接建立状态
//
// Pull 传输（镜像出站形状）：
//
//	Init → AnswerCreatePending → AnswerCreateSuccess → AnswerReady
//	     → AnswerSendSuccess → FinalizePending → Success
//
// Push 传输专属分支（下层握手在事件浮出前已完成，跳过 Answer 生成）：
//
//	Init → FinalizePendingPush → PushReceived → Success
type IncomingState int

const (
	// IncomingInit 初始状态
	IncomingInit IncomingState = iota
	// IncomingAnswerCreatePending 等待外部服务生成 Answer
	IncomingAnswerCreatePending
	// IncomingAnswerCreateSuccess Answer 生成完成
	IncomingAnswerCreateSuccess
	// IncomingAnswerReady Answer 就绪，待发送
	IncomingAnswerReady
	// IncomingAnswerSendSuccess Answer 已通过信令发出
	IncomingAnswerSendSuccess
	// IncomingFinalizePending 等待握手完成
	IncomingFinalizePending
	// IncomingFinalizePendingPush Push 传输专属：等待登记已完成的握手
	IncomingFinalizePendingPush
	// IncomingPushReceived Push 连接已接收
	IncomingPushReceived
	// IncomingSuccess 建连成功（终态）
	IncomingSuccess
	// IncomingError 建连失败（终态）
	IncomingError
)

// String 返回入站状态的字符串表示
func (s IncomingState) String() string {
	switch s {
	case IncomingInit:
		return "init"
	case IncomingAnswerCreatePending:
		return "answer-create-pending"
	case IncomingAnswerCreateSuccess:
		return "answer-create-success"
	case IncomingAnswerReady:
		return "answer-ready"
	case IncomingAnswerSendSuccess:
		return "answer-send-success"
	case IncomingFinalizePending:
		return "finalize-pending"
	case IncomingFinalizePendingPush:
		return "finalize-pending-push"
	case IncomingPushReceived:
		return "push-received"
	case IncomingSuccess:
		return "success"
	case IncomingError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal 判断是否为终态
func (s IncomingState) Terminal() bool {
	return s == IncomingSuccess || s == IncomingError
}

// ============================================================================
//                              ConnStatus - 连接总状态
// ============================================================================

// ConnStatus 连接总状态
//
// PeerRecord 级别的粗粒度状态；建连子阶段见
// OutgoingState/IncomingState，断开子阶段见 DisconnectPhase。
type ConnStatus int

const (
	// ConnStatusConnecting 建连中
	ConnStatusConnecting ConnStatus = iota
	// ConnStatusReady 已建连（建连子机到达 Success 终态）
	ConnStatusReady
	// ConnStatusDisconnecting 断开中
	ConnStatusDisconnecting
)

// String 返回连接总状态的字符串表示
func (s ConnStatus) String() string {
	switch s {
	case ConnStatusConnecting:
		return "connecting"
	case ConnStatusReady:
		return "ready"
	case ConnStatusDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              DisconnectPhase - 断开阶段
// ============================================================================

// DisconnectPhase 断开流程阶段
//
//	Init → CleanupPending → Finish
//
// 清理失败重试一次后强制 Finish，断开必须保证完成。
type DisconnectPhase int

const (
	// DisconnectPhaseNone 未处于断开流程
	DisconnectPhaseNone DisconnectPhase = iota
	// DisconnectPhaseInit 断开已发起
	DisconnectPhaseInit
	// DisconnectPhaseCleanupPending 等待传输资源清理完成
	DisconnectPhaseCleanupPending
	// DisconnectPhaseFinish 断开完成（记录即将移出注册表）
	DisconnectPhaseFinish
)

// String 返回断开阶段的字符串表示
func (p DisconnectPhase) String() string {
	switch p {
	case DisconnectPhaseNone:
		return "none"
	case DisconnectPhaseInit:
		return "init"
	case DisconnectPhaseCleanupPending:
		return "cleanup-pending"
	case DisconnectPhaseFinish:
		return "finish"
	default:
		return "unknown"
	}
}
