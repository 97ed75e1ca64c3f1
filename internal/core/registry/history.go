package registry

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// DisconnectionRecord 断开历史记录
//
// 仅供诊断与上层退避决策；重连正确性不依赖它。
type DisconnectionRecord struct {
	// Peer 被断开的节点
	Peer types.PeerID

	// Reason 断开原因
	Reason types.DisconnectReason

	// At 断开完成时刻
	At time.Time

	// Suspicious 是否疑似协议违规（拒绝原因 IsBad 或通道违规）
	Suspicious bool
}

// history 有界断开历史，最旧先逐出
//
// 底层用 LRU 缓存实现容量上限；只写入、按 Peek 读取，
// 不产生访问重排，因此逐出顺序即写入顺序。
type history struct {
	cache *lru.Cache[types.PeerID, DisconnectionRecord]
}

// newHistory 创建断开历史
func newHistory(size int) (*history, error) {
	c, err := lru.New[types.PeerID, DisconnectionRecord](size)
	if err != nil {
		return nil, err
	}
	return &history{cache: c}, nil
}

// Append 追加一条记录
//
// 同一节点再次断开会覆盖旧记录（历史按 PeerID 键控）。
func (h *history) Append(rec DisconnectionRecord) {
	h.cache.Add(rec.Peer, rec)
}

// Get 读取节点的最近一次断开记录
func (h *history) Get(peer types.PeerID) (DisconnectionRecord, bool) {
	return h.cache.Peek(peer)
}

// All 返回全部记录（最旧在前）
func (h *history) All() []DisconnectionRecord {
	keys := h.cache.Keys()
	out := make([]DisconnectionRecord, 0, len(keys))
	for _, k := range keys {
		if rec, ok := h.cache.Peek(k); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Len 返回记录条数
func (h *history) Len() int {
	return h.cache.Len()
}
