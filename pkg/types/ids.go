// Package types 定义 ChainP2P 的基础类型
//
// 本文件定义各类标识符。
package types

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 节点唯一标识符
// 由远端节点公钥派生（公钥的 32 字节哈希），一经分配不可变更。
//
// 外部表示格式：
//   - String(): Base58 编码（用户可读、可分享）
//   - ShortString(): Base58 前缀（日志简短标识）
type PeerID [32]byte

// EmptyPeerID 空节点ID
var EmptyPeerID PeerID

// ErrInvalidPeerID 无效的节点ID错误
var ErrInvalidPeerID = errors.New("invalid peer ID: must be 32-byte Base58")

// String 返回 PeerID 的 Base58 字符串表示
func (id PeerID) String() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id[:])
}

// ShortString 返回 PeerID 的短字符串表示
//
// 格式：Base58 前 8 个字符，用于日志中的简短标识。
func (id PeerID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bytes 返回 PeerID 的字节切片
func (id PeerID) Bytes() []byte {
	return id[:]
}

// Equal 比较两个 PeerID 是否相等
func (id PeerID) Equal(other PeerID) bool {
	return id == other
}

// IsEmpty 检查 PeerID 是否为空
func (id PeerID) IsEmpty() bool {
	return id == EmptyPeerID
}

// PeerIDFromBytes 从字节切片创建 PeerID
func PeerIDFromBytes(b []byte) (PeerID, error) {
	if len(b) != 32 {
		return EmptyPeerID, ErrInvalidPeerID
	}
	var id PeerID
	copy(id[:], b)
	return id, nil
}

// ParsePeerID 从 Base58 字符串解析 PeerID
func ParsePeerID(s string) (PeerID, error) {
	if s == "" {
		return EmptyPeerID, ErrInvalidPeerID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyPeerID, ErrInvalidPeerID
	}
	return PeerIDFromBytes(b)
}

// ============================================================================
//                              RequestID - 请求关联标识
// ============================================================================

// RequestID 关联标识符
//
// 用于把一次异步请求（如发起连接）与其最终完成回调关联起来。
// 由 API 边界生成后随 Action 进入核心；核心内部从不生成新的
// RequestID（保持归约函数纯净、可重放）。
type RequestID string

// EmptyRequestID 空请求标识
const EmptyRequestID RequestID = ""

// NewRequestID 生成新的请求标识
//
// 仅在 API 边界调用，禁止在归约逻辑内部调用。
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// IsEmpty 检查 RequestID 是否为空
func (r RequestID) IsEmpty() bool {
	return r == EmptyRequestID
}

// String 返回 RequestID 字符串
func (r RequestID) String() string {
	return string(r)
}

// ============================================================================
//                              TimerTag - 定时器标签
// ============================================================================

// TimerTag 定时器标签
//
// StartTimer/CancelTimer 效果与 TimerFired 动作通过标签配对。
type TimerTag string

const (
	// TimerTagSpaceCheck 空间管理周期检查定时器
	TimerTagSpaceCheck TimerTag = "space-check"

	// TimerTagTimeoutSweep 超时扫描定时器
	TimerTagTimeoutSweep TimerTag = "timeout-sweep"
)

// String 返回定时器标签字符串
func (t TimerTag) String() string {
	return string(t)
}

// ============================================================================
//                              ChainID - 链标识
// ============================================================================

// ChainID 区块链网络标识符
//
// Offer/Answer 中携带，用于防止不同链的节点互连。
// 对核心而言是不透明字符串，仅做相等比较。
type ChainID string

// IsEmpty 检查 ChainID 是否为空
func (c ChainID) IsEmpty() bool {
	return c == ""
}

// String 返回 ChainID 字符串
func (c ChainID) String() string {
	return string(c)
}
