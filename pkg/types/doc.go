// Package types 定义 ChainP2P 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他 chainp2p 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据：
//
//   - 标识类型：PeerID、RequestID、TimerTag
//   - 枚举类型：TransportKind、Direction、SignalingKind、ChannelID
//   - 状态枚举：OutgoingState、IncomingState、ConnStatus
//   - 动作与效果：Action（入站完成事件）、Effect（出站效果请求）
//   - 错误类型：连接错误、通道错误、断开原因
//
// 核心归约器（internal/core/dispatch）只消费本包定义的 Action，
// 只产生本包定义的 Effect；外部服务（握手、信令、套接字 I/O）
// 通过这套词汇表与核心交互。
package types
