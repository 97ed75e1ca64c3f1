// Package disconnect 实现断开流程与节点空间管理
//
// # 断开流程
//
// 每次断开走同一条阶段流水线，不论动机：
//
//	Init → CleanupPending → Finish
//
// Init 记录断开原因并停止使用连接；CleanupPending 等待外部
// 传输资源释放（CleanupResult 动作回报）；Finish 把记录移出
// 注册表、追加断开历史并通知上层。对端主动关闭（PeerClosed）
// 跳过本地发起步骤直接进入资源清理。清理失败重试一次，再败
// 则记录日志并强制完成——绝不让僵尸记录占住槽位。
//
// # 空间管理
//
// 周期检查当前连接数是否超过稳定目标（MaxStablePeers）；
// 超出时从"足够稳定"（连接时长达到稳定窗口）的节点中随机
// 挑选多余者断开。随机性来自构造时注入种子的生成器，挑选
// 候选集按节点标识字节序排定，重放时选择序列完全一致。
// 刚建连的节点处于稳定窗口保护期内，永远不会被挑中。
package disconnect
