// Package connection 实现连接建立状态机
//
// # 核心功能
//
// 1. 出站状态机（Pull 传输）
//
//	Init → OfferCreatePending → OfferCreateSuccess → OfferReady
//	     → OfferSendSuccess → AnswerRecvPending → AnswerRecvSuccess
//	     → FinalizePending → Success
//
// 2. 出站状态机（Push 传输）
//
//	Init → ResolvePending → FinalizePending → Success
//
// 地址解析建模为显式状态（ResolvePending），由外部解析服务
// 以 ResolveResult 动作完成；随后下层调度器执行套接字连接
// 与握手，其内部细节对核心不可见。
//
// 3. 入站状态机（镜像形状）
//
//	Init → AnswerCreatePending → AnswerCreateSuccess → AnswerReady
//	     → AnswerSendSuccess → FinalizePending → Success
//
// Push 专属分支（握手在事件浮出前已完成）：
//
//	Init → FinalizePendingPush → PushReceived → Success
//
// # 失败语义
//
// Timeout / DuplicatePeer / CapacityExceeded / HandshakeFailed /
// SignalingFailed。全部上报，绝不静默重试——重试策略属于
// 发起连接的调用方，不属于本状态机。
//
// # 重复连接策略
//
// 出站：已存在活跃连接时直接拒绝（拒绝优于竞态）。
// 入站：关闭两条同时连接中较旧的一条（入站无法像出站那样
// 在接受前拒绝，不对称是有意的）。
//
// # 终态纪律
//
// 已到 Success/Error 的尝试忽略一切迟到的外部完成事件：
// 记录一条非致命日志后按无操作处理，绝不复活状态。
package connection
