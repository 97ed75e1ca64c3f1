// Package chainp2p 实现区块链节点的点对点网络核心
//
// # 设计
//
// 核心是一台确定性、可重放、单线程的状态机：连接建立
// （Push 直连与 Pull Offer/Answer 两种传输）、传输无关的
// 通道抽象（链尖/交易/证明广播、通用 RPC、流式同步、信令）
// 与断开及空间管理全部收敛在一个归约循环里。外界只能把
// 动作追加到队列；所有外发请求以效果描述的形式交给执行器
// 在归约之外完成。
//
// # 用法
//
//	node, err := chainp2p.New(
//		chainp2p.WithLocalPeer(self),
//		chainp2p.WithChainID("mainnet"),
//		chainp2p.WithExecutor(myTransportRuntime),
//	)
//	if err != nil { ... }
//	if err := node.Start(ctx); err != nil { ... }
//	defer node.Stop(ctx)
//
//	reqID, _ := node.Connect(peer, addr, types.TransportPull,
//		types.SignalingDirect, types.EmptyPeerID)
//
// 执行器负责真实 I/O（解析地址、密钥协商、套接字握手、
// 发送字节），完成结果以动作回灌：
//
//	node.Submit(types.OfferCreated{Peer: peer, Offer: sdp})
//
// # 包布局
//
//   - pkg/types          动作/效果/标识等纯值类型
//   - internal/config    核心配置
//   - internal/core      注册表、建连、通道、断开、归约器
package chainp2p
