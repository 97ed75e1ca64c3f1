package chainp2p

import (
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/chainp2p/go-chainp2p/internal/core/dispatch"
	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var execLogger = log.Logger("chainp2p/executor")

// effectRunner 效果分流器
//
// 定时器效果在此就地兑现（注入时钟调度，到期把 TimerFired
// 动作回灌队列）；其余效果转交业务执行器。未注册执行器时
// 非定时器效果记录日志后丢弃——只适合测试与干跑。
type effectRunner struct {
	clock clock.Clock
	next  dispatch.Executor

	mu     sync.Mutex
	queue  *dispatch.Queue
	timers map[types.TimerTag]*clock.Timer
}

func newEffectRunner(clk clock.Clock, next dispatch.Executor) *effectRunner {
	return &effectRunner{
		clock:  clk,
		next:   next,
		timers: make(map[types.TimerTag]*clock.Timer),
	}
}

// bind 绑定动作队列（队列构造晚于执行器）
func (r *effectRunner) bind(q *dispatch.Queue) {
	r.mu.Lock()
	r.queue = q
	r.mu.Unlock()
}

// Execute 执行一条效果
func (r *effectRunner) Execute(e types.Effect) error {
	switch eff := e.(type) {
	case types.StartTimer:
		r.startTimer(eff)
		return nil
	case types.CancelTimer:
		r.cancelTimer(eff.Tag)
		return nil
	default:
		if r.next != nil {
			return r.next.Execute(e)
		}
		execLogger.Debug("effect dropped: no executor registered",
			"kind", int(e.Kind()))
		return nil
	}
}

func (r *effectRunner) startTimer(eff types.StartTimer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.timers[eff.Tag]; ok {
		old.Stop()
	}
	tag := eff.Tag
	r.timers[tag] = r.clock.AfterFunc(eff.Duration, func() {
		r.mu.Lock()
		q := r.queue
		r.mu.Unlock()
		if q == nil {
			return
		}
		if err := q.Enqueue(types.TimerFired{Tag: tag}); err != nil {
			execLogger.Debug("timer fire after queue close",
				"tag", tag.String())
		}
	})
}

func (r *effectRunner) cancelTimer(tag types.TimerTag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[tag]; ok {
		t.Stop()
		delete(r.timers, tag)
	}
}

// stopAll 停止全部定时器（节点关闭时）
func (r *effectRunner) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tag, t := range r.timers {
		t.Stop()
		delete(r.timers, tag)
	}
}
