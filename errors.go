package chainp2p

import (
	"errors"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ────────────────────────────────────────────────────────────────────────
	// 核心错误别名（便于调用方 errors.Is 判断）
	// ────────────────────────────────────────────────────────────────────────

	// ErrDuplicatePeer 节点已有连接或建连尝试
	ErrDuplicatePeer = types.ErrDuplicatePeer

	// ErrCapacityExceeded 连接槽位耗尽
	ErrCapacityExceeded = types.ErrCapacityExceeded

	// ErrSelfConnection 拒绝连接自身
	ErrSelfConnection = types.ErrSelfConnection

	// ErrPeerNotFound 节点未找到
	ErrPeerNotFound = types.ErrPeerNotFound

	// ErrInvalidArgument 参数无效
	ErrInvalidArgument = types.ErrInvalidArgument
)
