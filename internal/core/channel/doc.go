// Package channel 实现传输无关的通道抽象
//
// # 核心功能
//
// 通道是复用在一条节点连接之上的具名子协议（链尖交换、通用
// RPC、证明分发、交易传播、流式同步、信令发现/交换）。通用
// 状态机写一次，按通道类型表驱动实例化，每个 (节点, 通道类型)
// 对一个实例：
//
//	Disabled → Enabled → Init → Pending → Ready
//
// Ready 之后本地（出站）与远端（入站）子状态机独立运行：
//
//   - Pull 传输本地侧：WaitingForRequest → Requested → Responded，
//     对端必须先显式拉取（GetNext）才能收到数据；
//   - Push 传输本地侧：无需请求，数据直接广播给所有 Ready 的
//     订阅节点；再广播前按条目去重，防止放大风暴；
//   - 远端侧从对端视角镜像本地形状。
//
// # 协议适配规则
//
// 广播能力在两种传输上的退化是统一的："条目可用时发给每个
// Ready 的 Push 节点；被请求后发给每个已请求的 Pull 节点"。
// 这一区别不外泄：业务层向上只看到"把条目公告给网络"与
// "这个条目来自节点 X"。
//
// # RPC 通道
//
// 请求/响应用本地生成的单调关联号配对；远端发起的未完成
// 请求按节点限定并发上限（MaxRemotePendingRequests = 5），
// 第 6 个并发请求被拒绝而非排队。请求保留至响应发出，远端
// 请求没有独立超时——不良节点可钉住的内存小且隔离在它
// 自己的通道实例内。
//
// # 流式同步通道
//
// 仅存在于 Pull 传输。跟踪增量进度（已收发字节/块数），
// 由接收方的显式 Next 流控消息为发送方定步，而非无提示地
// 发送整个负载。
//
// # 错误条件
//
// 尺寸超限、畸形消息、当前子状态不接受的消息——三者同样
// 处理：该节点的通道实例进入 Error，并产生一条断开建议
// （原因 ProtocolViolation）。严格状态机纪律，不容忍乱序。
package channel
