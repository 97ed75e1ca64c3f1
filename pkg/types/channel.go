// Package types 定义 ChainP2P 公共类型
//
// 本文件定义通道类型及其固定配置表。
package types

import "time"

// ============================================================================
//                              ChannelID - 通道标识
// ============================================================================

// ChannelID 通道类型标识符
//
// 通道是复用在一条节点连接之上的、具名的子协议。
// 每种通道声明最大消息尺寸与是否具备广播能力；
// 这张表是固定的协议常量，不随配置变化。
type ChannelID int

const (
	// ChannelUnknown 未知通道
	ChannelUnknown ChannelID = iota
	// ChannelSignalingDiscovery 信令中继发现通道
	ChannelSignalingDiscovery
	// ChannelSignalingExchange 信令 Offer/Answer 交换通道
	ChannelSignalingExchange
	// ChannelBestTipPropagation 最优链尖传播通道
	ChannelBestTipPropagation
	// ChannelTransactionPropagation 交易传播通道
	ChannelTransactionPropagation
	// ChannelSnarkPropagation 证明工作传播通道
	ChannelSnarkPropagation
	// ChannelSnarkJobCommitment 证明任务承诺通道
	ChannelSnarkJobCommitment
	// ChannelRpc 通用 RPC 通道
	ChannelRpc
	// ChannelStreamingSync 长连流式同步通道（仅 Pull 传输）
	ChannelStreamingSync
)

// String 返回通道标识的字符串表示
func (c ChannelID) String() string {
	switch c {
	case ChannelSignalingDiscovery:
		return "signaling-discovery"
	case ChannelSignalingExchange:
		return "signaling-exchange"
	case ChannelBestTipPropagation:
		return "best-tip-propagation"
	case ChannelTransactionPropagation:
		return "transaction-propagation"
	case ChannelSnarkPropagation:
		return "snark-propagation"
	case ChannelSnarkJobCommitment:
		return "snark-job-commitment"
	case ChannelRpc:
		return "rpc"
	case ChannelStreamingSync:
		return "streaming-sync"
	default:
		return "unknown"
	}
}

// AllChannels 返回全部通道类型（稳定顺序）
func AllChannels() []ChannelID {
	return []ChannelID{
		ChannelSignalingDiscovery,
		ChannelSignalingExchange,
		ChannelBestTipPropagation,
		ChannelTransactionPropagation,
		ChannelSnarkPropagation,
		ChannelSnarkJobCommitment,
		ChannelRpc,
		ChannelStreamingSync,
	}
}

// ============================================================================
//                              ChannelConfig - 通道配置
// ============================================================================

// 尺寸常量
const (
	// KiB 1024 字节
	KiB = 1 << 10
	// MiB 1024 KiB
	MiB = 1 << 20
)

// MaxRemotePendingRequests RPC 通道上远端发起请求的并发上限
//
// 第 6 个并发远端请求在 5 个未完成时到达会被拒绝而非排队。
// 请求保留至响应发出，远端请求没有独立超时（仅连接级与
// 通道空闲超时适用）——单个不良节点可钉住的内存很小且
// 隔离在它自己的通道实例内，这是有意的按构造限界取舍。
const MaxRemotePendingRequests = 5

// ChannelConfig 通道类型的固定配置
type ChannelConfig struct {
	// MaxMessageSize 单条消息最大尺寸（字节）
	MaxMessageSize int

	// BroadcastCapable 是否具备广播能力
	//
	// true：Push 传输无需请求即可发送；
	// false：Pull 传输必须先收到显式拉取请求。
	BroadcastCapable bool

	// PullOnly 仅存在于 Pull 传输
	PullOnly bool

	// Dedup 再广播前是否需要去重（防放大风暴）
	Dedup bool

	// IdleTimeout 通道空闲超时（0 表示不检查）
	IdleTimeout time.Duration
}

// channelConfigs 通道配置表（按 ChannelID 索引）
var channelConfigs = map[ChannelID]ChannelConfig{
	ChannelSignalingDiscovery: {
		MaxMessageSize: 1 * KiB,
		IdleTimeout:    5 * time.Minute,
	},
	ChannelSignalingExchange: {
		MaxMessageSize: 8 * KiB,
		IdleTimeout:    5 * time.Minute,
	},
	ChannelBestTipPropagation: {
		MaxMessageSize:   32 * KiB,
		BroadcastCapable: true,
		IdleTimeout:      10 * time.Minute,
	},
	ChannelTransactionPropagation: {
		MaxMessageSize:   32 * KiB,
		BroadcastCapable: true,
		Dedup:            true,
		IdleTimeout:      10 * time.Minute,
	},
	ChannelSnarkPropagation: {
		MaxMessageSize:   32 * KiB,
		BroadcastCapable: true,
		Dedup:            true,
		IdleTimeout:      10 * time.Minute,
	},
	ChannelSnarkJobCommitment: {
		MaxMessageSize:   2 * KiB,
		BroadcastCapable: true,
		IdleTimeout:      10 * time.Minute,
	},
	ChannelRpc: {
		MaxMessageSize: 256 * MiB,
		IdleTimeout:    15 * time.Minute,
	},
	ChannelStreamingSync: {
		MaxMessageSize: 256 * MiB,
		PullOnly:       true,
		IdleTimeout:    15 * time.Minute,
	},
}

// ChannelConfigOf 返回通道类型的固定配置
//
// 未知通道返回零值配置（MaxMessageSize 为 0，任何消息都超限）。
func ChannelConfigOf(id ChannelID) ChannelConfig {
	return channelConfigs[id]
}

// ChannelsFor 返回某传输类型上启用的通道集合
//
// 仅 Pull 传输承载信令交换与流式同步；其余通道两种传输都启用。
func ChannelsFor(t TransportKind) []ChannelID {
	out := make([]ChannelID, 0, len(channelConfigs))
	for _, id := range AllChannels() {
		cfg := ChannelConfigOf(id)
		if cfg.PullOnly && t != TransportPull {
			continue
		}
		if (id == ChannelSignalingDiscovery || id == ChannelSignalingExchange) && t != TransportPull {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ============================================================================
//                              ChannelMsg - 通道消息
// ============================================================================

// ChannelMsgKind 通道消息类别
//
// 线上编解码是外部协作者的职责；核心只消费解码器给出的
// 消息类别与不透明负载，据此驱动通道子状态机。
type ChannelMsgKind int

const (
	// MsgMalformed 解码失败（协议违规处理）
	MsgMalformed ChannelMsgKind = iota
	// MsgOpen 通道打开请求
	MsgOpen
	// MsgOpenAck 通道打开确认
	MsgOpenAck
	// MsgGetNext 拉取请求（Pull 传输的显式拉取）
	MsgGetNext
	// MsgData 数据条目（广播或拉取响应）
	MsgData
	// MsgRequest RPC 请求
	MsgRequest
	// MsgResponse RPC 响应
	MsgResponse
	// MsgRequestRejected RPC 请求被拒（并发超限）
	MsgRequestRejected
	// MsgChunk 流式传输分块
	MsgChunk
	// MsgNext 流式传输流控（接收方请求下一块）
	MsgNext
)

// String 返回消息类别的字符串表示
func (k ChannelMsgKind) String() string {
	switch k {
	case MsgOpen:
		return "open"
	case MsgOpenAck:
		return "open-ack"
	case MsgGetNext:
		return "get-next"
	case MsgData:
		return "data"
	case MsgRequest:
		return "request"
	case MsgResponse:
		return "response"
	case MsgRequestRejected:
		return "request-rejected"
	case MsgChunk:
		return "chunk"
	case MsgNext:
		return "next"
	default:
		return "malformed"
	}
}

// ChannelMsg 已解码的通道消息
type ChannelMsg struct {
	// Kind 消息类别
	Kind ChannelMsgKind

	// CorrelationID 请求/响应配对标识（RPC 与流式通道使用）
	CorrelationID uint64

	// Payload 不透明负载
	Payload []byte

	// Last 流式传输：是否最后一块
	Last bool
}

// Size 返回消息负载尺寸
func (m ChannelMsg) Size() int {
	return len(m.Payload)
}
