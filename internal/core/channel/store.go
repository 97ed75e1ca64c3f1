package channel

import (
	"bytes"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var logger = log.Logger("core/channel")

// dedupCacheSize 广播去重缓存容量（每个通道类型一个）
const dedupCacheSize = 4096

// Violation 协议违规
//
// 通道层不自行断开连接，只产生断开建议；由核心归约器
// 转交断开管理器执行。
type Violation struct {
	Peer    types.PeerID
	Channel types.ChannelID
	Err     error
}

// Store 通道状态存储
//
// 所有 (节点, 通道类型) 实例的属主，由核心归约器独占持有。
// 实例只在所属连接到达 Success 终态后创建（EnablePeer），
// 断开时整体丢弃（DropPeer）——通道 Ready 必然晚于连接
// Success 的因果不变量由此保证。
type Store struct {
	peers map[types.PeerID]map[types.ChannelID]*State

	// dedup 广播条目去重缓存（按通道类型）
	dedup map[types.ChannelID]*lru.Cache[string, struct{}]
}

// NewStore 创建通道状态存储
func NewStore() (*Store, error) {
	s := &Store{
		peers: make(map[types.PeerID]map[types.ChannelID]*State),
		dedup: make(map[types.ChannelID]*lru.Cache[string, struct{}]),
	}
	for _, ch := range types.AllChannels() {
		if !types.ChannelConfigOf(ch).Dedup {
			continue
		}
		c, err := lru.New[string, struct{}](dedupCacheSize)
		if err != nil {
			return nil, err
		}
		s.dedup[ch] = c
	}
	return s, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// EnablePeer 随连接建立启用节点的通道集合
//
// 只创建该传输类型启用的通道类型，状态为 Enabled。
func (s *Store) EnablePeer(peer types.PeerID, transport types.TransportKind, at time.Time) {
	m := make(map[types.ChannelID]*State)
	for _, ch := range types.ChannelsFor(transport) {
		m[ch] = newState(peer, ch, transport, at)
	}
	s.peers[peer] = m
	logger.Debug("channels enabled",
		"peer", peer.ShortString(),
		"transport", transport.String(),
		"channels", len(m))
}

// DropPeer 丢弃节点的全部通道状态
func (s *Store) DropPeer(peer types.PeerID) {
	delete(s.peers, peer)
}

// Get 查询通道实例
func (s *Store) Get(peer types.PeerID, ch types.ChannelID) (*State, bool) {
	m, ok := s.peers[peer]
	if !ok {
		return nil, false
	}
	st, ok := m[ch]
	return st, ok
}

// HasPeer 节点是否有通道状态
func (s *Store) HasPeer(peer types.PeerID) bool {
	_, ok := s.peers[peer]
	return ok
}

// ============================================================================
//                              确定性遍历
// ============================================================================

// sortedPeers 返回按字节序排序的全部节点
//
// 广播等跨节点操作的效果顺序必须确定，重放性质依赖于此。
func (s *Store) sortedPeers() []types.PeerID {
	ids := make([]types.PeerID, 0, len(s.peers))
	for id := range s.peers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// ============================================================================
//                              去重
// ============================================================================

// seenBefore 条目是否已见过（并登记之）
func (s *Store) seenBefore(ch types.ChannelID, itemID string) bool {
	c, ok := s.dedup[ch]
	if !ok || itemID == "" {
		return false
	}
	if c.Contains(itemID) {
		return true
	}
	c.Add(itemID, struct{}{})
	return false
}

// ============================================================================
//                              空闲扫描
// ============================================================================

// SweepIdle 周期性空闲检查
//
// 返回空闲超限的节点（确定顺序，去重）；由核心转交断开
// 管理器处理。
func (s *Store) SweepIdle(now time.Time) []types.PeerID {
	var out []types.PeerID
	seen := make(map[types.PeerID]bool)
	for _, peer := range s.sortedPeers() {
		for _, ch := range types.AllChannels() {
			st, ok := s.peers[peer][ch]
			if !ok || st.Status != StatusReady {
				continue
			}
			idle := st.cfg().IdleTimeout
			if idle <= 0 || st.LastActivity.IsZero() {
				continue
			}
			if now.Sub(st.LastActivity) > idle && !seen[peer] {
				seen[peer] = true
				out = append(out, peer)
			}
		}
	}
	return out
}
