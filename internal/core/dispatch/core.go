package dispatch

import (
	"time"

	"github.com/chainp2p/go-chainp2p/internal/config"
	"github.com/chainp2p/go-chainp2p/internal/core/channel"
	"github.com/chainp2p/go-chainp2p/internal/core/connection"
	"github.com/chainp2p/go-chainp2p/internal/core/disconnect"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var logger = log.Logger("core/dispatch")

// Core 核心归约器
//
// 独占持有全部状态（注册表、通道存储），把动作路由到
// 建连状态机、通道层与断开管理器，并把三者用回调缝合：
// 建连成功启用通道集合，记录丢弃时通道状态随之丢弃，
// 通道协议违规转为断开。
type Core struct {
	cfg      config.Config
	reg      *registry.Registry
	channels *channel.Store
	conn     *connection.Machine
	disc     *disconnect.Manager
}

// NewCore 创建核心归约器
//
// seed 注入空间管理的随机挑选；重放时用相同种子。
func NewCore(cfg config.Config, reg *registry.Registry, channels *channel.Store, seed int64) *Core {
	c := &Core{
		cfg:      cfg,
		reg:      reg,
		channels: channels,
	}
	c.conn = connection.New(cfg, reg, c)
	c.disc = disconnect.New(cfg, reg, c, seed)
	return c
}

// ============================================================================
//                              回调缝合
// ============================================================================

// PeerEstablished 建连成功：启用该节点的通道集合
func (c *Core) PeerEstablished(peer types.PeerID, transport types.TransportKind, at time.Time) []types.Effect {
	c.channels.EnablePeer(peer, transport, at)
	return nil
}

// PeerDropped 记录丢弃：通道状态随之丢弃
func (c *Core) PeerDropped(peer types.PeerID) []types.Effect {
	c.channels.DropPeer(peer)
	return nil
}

// ============================================================================
//                              归约
// ============================================================================

// Bootstrap 返回核心启动时的初始效果（武装两个周期定时器）
func (c *Core) Bootstrap() []types.Effect {
	return []types.Effect{
		types.StartTimer{Tag: types.TimerTagTimeoutSweep, Duration: c.cfg.TimeoutSweepInterval},
		types.StartTimer{Tag: types.TimerTagSpaceCheck, Duration: c.cfg.SpaceCheckInterval},
	}
}

// Apply 应用一条动作
//
// at 是动作的入队时刻；转移逻辑从不读取挂钟。
func (c *Core) Apply(at time.Time, a types.Action) []types.Effect {
	switch act := a.(type) {

	// ---- 建连 ----
	case types.ConnectOutgoing:
		return c.conn.ConnectOutgoing(at, act)
	case types.IncomingOffer:
		return c.conn.IncomingOffer(at, act)
	case types.OfferCreated:
		return c.conn.OfferCreated(at, act)
	case types.AnswerCreated:
		return c.conn.AnswerCreated(at, act)
	case types.AnswerReceived:
		return c.conn.AnswerReceived(at, act)
	case types.SignalingSendResult:
		return c.conn.SignalingSendResult(at, act)
	case types.ResolveResult:
		return c.conn.ResolveResult(at, act)
	case types.HandshakeResult:
		return c.conn.HandshakeResult(at, act)
	case types.FinalizeResult:
		return c.conn.FinalizeResult(at, act)

	// ---- 通道 ----
	case types.ChannelOpen:
		return c.channels.Open(at, act)
	case types.BytesReceived:
		effects, violation := c.channels.HandleMessage(at, act)
		if violation != nil {
			effects = append(effects, c.disc.Request(at, types.DisconnectRequest{
				Peer:   violation.Peer,
				Reason: types.DisconnectProtocolViolation,
			})...)
		}
		return effects
	case types.ChannelAnnounce:
		return c.channels.Announce(at, act)
	case types.ChannelRequest:
		return c.channels.Request(at, act)
	case types.ChannelRespond:
		return c.channels.Respond(at, act)
	case types.StreamNext:
		return c.channels.Next(at, act)

	// ---- 定时器 ----
	case types.TimerFired:
		return c.timerFired(at, act)

	// ---- 断开 ----
	case types.DisconnectRequest:
		return c.disc.Request(at, act)
	case types.PeerClosed:
		return c.disc.PeerClosed(at, act)
	case types.CleanupResult:
		return c.disc.CleanupDone(at, act)

	// ---- 发现 ----
	case types.DhtPeerDiscovered:
		c.reg.NoteDiscovered(act.Peer, act.Addr)
		return nil

	default:
		logger.Warn("unknown action ignored", "kind", int(a.Kind()))
		return nil
	}
}

// timerFired 周期定时器到期
//
// 扫描用的"当前时刻"取自动作入队时刻；扫描后重新武装
// 同一定时器。
func (c *Core) timerFired(at time.Time, a types.TimerFired) []types.Effect {
	switch a.Tag {
	case types.TimerTagTimeoutSweep:
		effects := c.conn.SweepTimeouts(at)
		for _, peer := range c.channels.SweepIdle(at) {
			effects = append(effects, c.disc.Request(at, types.DisconnectRequest{
				Peer:   peer,
				Reason: types.DisconnectTimeout,
			})...)
		}
		return append(effects, types.StartTimer{
			Tag: types.TimerTagTimeoutSweep, Duration: c.cfg.TimeoutSweepInterval,
		})

	case types.TimerTagSpaceCheck:
		effects := c.disc.CheckSpace(at)
		return append(effects, types.StartTimer{
			Tag: types.TimerTagSpaceCheck, Duration: c.cfg.SpaceCheckInterval,
		})

	default:
		logger.Warn("timer with unknown tag ignored", "tag", string(a.Tag))
		return nil
	}
}

// ============================================================================
//                              快照
// ============================================================================

// Snapshot 返回注册表快照（重放判定依据）
func (c *Core) Snapshot() registry.Snapshot {
	return c.reg.Snapshot()
}

// Stats 返回注册表统计
func (c *Core) Stats() registry.Stats {
	return c.reg.Stats()
}
