package registry

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var logger = log.Logger("core/registry")

// Registry 节点注册表
//
// 进程级 PeerID → PeerRecord 映射，由核心归约器独占持有。
// 节点启动时创建；连接尝试时添加条目，断开完成时移除
// （有界的最近断开历史另行保留用于诊断）。
type Registry struct {
	maxPeers int

	peers   map[types.PeerID]*PeerRecord
	history *history

	// known DHT 发现的可达信息（PeerID → 地址）
	known map[types.PeerID]string
}

// New 创建注册表
func New(maxPeers, historySize int) (*Registry, error) {
	if maxPeers <= 0 {
		return nil, fmt.Errorf("registry: maxPeers must be positive: %w", types.ErrInvalidArgument)
	}
	h, err := newHistory(historySize)
	if err != nil {
		return nil, fmt.Errorf("registry: create history: %w", err)
	}
	return &Registry{
		maxPeers: maxPeers,
		peers:    make(map[types.PeerID]*PeerRecord),
		history:  h,
		known:    make(map[types.PeerID]string),
	}, nil
}

// ============================================================================
//                              记录管理
// ============================================================================

// Add 添加节点记录
//
// 容量与重复检查在此执行；这是全局连接槽位的唯一执法点。
func (r *Registry) Add(rec *PeerRecord) error {
	if rec.ID.IsEmpty() {
		return types.ErrInvalidArgument
	}
	if _, ok := r.peers[rec.ID]; ok {
		return types.ErrDuplicatePeer
	}
	if len(r.peers) >= r.maxPeers {
		return types.ErrCapacityExceeded
	}
	r.peers[rec.ID] = rec
	return nil
}

// Get 查询节点记录
func (r *Registry) Get(peer types.PeerID) (*PeerRecord, bool) {
	rec, ok := r.peers[peer]
	return rec, ok
}

// Remove 移除节点记录
func (r *Registry) Remove(peer types.PeerID) bool {
	if _, ok := r.peers[peer]; !ok {
		return false
	}
	delete(r.peers, peer)
	return true
}

// Len 返回当前记录数（含建连中与断开中）
func (r *Registry) Len() int {
	return len(r.peers)
}

// AtCapacity 槽位是否已满
func (r *Registry) AtCapacity() bool {
	return len(r.peers) >= r.maxPeers
}

// ============================================================================
//                              确定性遍历
// ============================================================================

// sortedIDs 返回按字节序排序的全部 PeerID
//
// map 遍历顺序不确定；任何影响状态或效果顺序的遍历
// 都必须走这里，重放确定性依赖于此。
func (r *Registry) sortedIDs() []types.PeerID {
	ids := make([]types.PeerID, 0, len(r.peers))
	for id := range r.peers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Each 按确定顺序遍历全部记录
func (r *Registry) Each(fn func(*PeerRecord)) {
	for _, id := range r.sortedIDs() {
		fn(r.peers[id])
	}
}

// ReadyPeers 返回全部已建连节点（确定顺序）
func (r *Registry) ReadyPeers() []types.PeerID {
	out := make([]types.PeerID, 0, len(r.peers))
	for _, id := range r.sortedIDs() {
		if r.peers[id].Ready() {
			out = append(out, id)
		}
	}
	return out
}

// ReadyCount 返回已建连节点数
func (r *Registry) ReadyCount() int {
	n := 0
	for _, rec := range r.peers {
		if rec.Ready() {
			n++
		}
	}
	return n
}

// ============================================================================
//                              断开历史
// ============================================================================

// RecordDisconnection 追加断开历史
func (r *Registry) RecordDisconnection(rec DisconnectionRecord) {
	r.history.Append(rec)
	logger.Debug("disconnection recorded",
		"peer", rec.Peer.ShortString(),
		"reason", rec.Reason.String(),
		"suspicious", rec.Suspicious)
}

// History 返回全部断开历史（最旧在前）
func (r *Registry) History() []DisconnectionRecord {
	return r.history.All()
}

// LastDisconnection 返回节点最近一次断开记录
func (r *Registry) LastDisconnection(peer types.PeerID) (DisconnectionRecord, bool) {
	return r.history.Get(peer)
}

// ============================================================================
//                              发现信息
// ============================================================================

// NoteDiscovered 登记 DHT 发现的节点地址
func (r *Registry) NoteDiscovered(peer types.PeerID, addr string) {
	r.known[peer] = addr
}

// KnownAddr 查询已发现的节点地址
func (r *Registry) KnownAddr(peer types.PeerID) (string, bool) {
	addr, ok := r.known[peer]
	return addr, ok
}

// ============================================================================
//                              快照
// ============================================================================

// PeerSnapshot 单节点快照
type PeerSnapshot struct {
	ID             string
	Direction      types.Direction
	Transport      types.TransportKind
	Status         types.ConnStatus
	State          string
	ConnectedSince time.Time
}

// Snapshot 注册表快照
//
// 重放性质的判定依据：相同动作日志喂给新核心实例后
// 两份快照必须完全相等。
type Snapshot struct {
	Peers   []PeerSnapshot
	History []DisconnectionRecord
}

// Snapshot 生成确定性快照
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		Peers:   make([]PeerSnapshot, 0, len(r.peers)),
		History: r.history.All(),
	}
	for _, id := range r.sortedIDs() {
		rec := r.peers[id]
		snap.Peers = append(snap.Peers, PeerSnapshot{
			ID:             rec.ID.String(),
			Direction:      rec.Direction,
			Transport:      rec.Transport,
			Status:         rec.Status,
			State:          rec.StateName(),
			ConnectedSince: rec.ConnectedSince,
		})
	}
	return snap
}

// ============================================================================
//                              统计
// ============================================================================

// Stats 注册表统计
type Stats struct {
	// NumPeers 记录总数
	NumPeers int
	// NumReady 已建连数
	NumReady int
	// NumConnecting 建连中数
	NumConnecting int
	// NumDisconnecting 断开中数
	NumDisconnecting int
	// NumInbound 入站数
	NumInbound int
	// NumOutbound 出站数
	NumOutbound int
}

// Stats 返回统计快照
func (r *Registry) Stats() Stats {
	var s Stats
	s.NumPeers = len(r.peers)
	for _, rec := range r.peers {
		switch rec.Status {
		case types.ConnStatusReady:
			s.NumReady++
		case types.ConnStatusConnecting:
			s.NumConnecting++
		case types.ConnStatusDisconnecting:
			s.NumDisconnecting++
		}
		switch rec.Direction {
		case types.DirInbound:
			s.NumInbound++
		case types.DirOutbound:
			s.NumOutbound++
		}
	}
	return s
}
