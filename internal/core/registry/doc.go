// Package registry 实现节点注册表
//
// # 核心功能
//
// 1. 节点记录 - 每个已知节点一条 PeerRecord
//   - 连接总状态、建连子状态、断开阶段
//   - 传输能力（建连成功后固定）
//   - 建连时间戳（空间管理的稳定窗口依据）
//
// 2. 槽位控制 - 连接数上限
//   - Add 时检查容量与重复
//   - 注册表是全局连接槽位计数的唯一执法点
//
// 3. 断开历史 - 有界、最旧先逐出
//   - 仅用于诊断与上层退避决策
//   - 重连正确性不依赖历史（重连策略在本子系统之外）
//
// # 所有权
//
// 注册表由核心归约器独占持有，所有变更都经由纯转移函数；
// 没有其他参与者并发修改它，串行处理就是互斥机制，
// 因此本包不含任何锁。
//
// # 不变量
//
//  1. 每个 PeerID 至多一条 PeerRecord
//  2. 记录方向要么 Outgoing 要么 Incoming，绝不同时
//  3. 断开完成后记录必然移出注册表，不留部分状态
package registry
