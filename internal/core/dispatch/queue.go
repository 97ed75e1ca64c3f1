package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/chainp2p/go-chainp2p/pkg/types"
)

// defaultQueueSize 动作队列容量
const defaultQueueSize = 1024

// Executor 效果执行器
//
// 归约循环之外执行外发请求（建立传输、发送字节、武装
// 定时器、回调上层）；完成结果以新动作入队。执行器的
// 实现可以并发，核心状态对它不可见。
type Executor interface {
	Execute(effect types.Effect) error
}

// Entry 动作日志条目
type Entry struct {
	// At 入队时刻（注入时钟盖戳）
	At time.Time
	// Action 动作本体
	Action types.Action
}

// Queue 动作队列与归约循环
//
// 外界唯一的写入口。入队时用注入时钟盖戳；单线程归约
// 循环逐条取出、记录日志、应用并执行效果。
type Queue struct {
	clock clock.Clock
	core  *Core
	exec  Executor

	ch      chan Entry
	inspect chan func()
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	journal []Entry
}

// NewQueue 创建动作队列
func NewQueue(core *Core, exec Executor, clk clock.Clock) *Queue {
	return &Queue{
		clock:   clk,
		core:    core,
		exec:    exec,
		ch:      make(chan Entry, defaultQueueSize),
		inspect: make(chan func()),
		done:    make(chan struct{}),
	}
}

// Enqueue 追加动作
//
// 盖当前时钟戳后入队；队列已关闭时返回 ErrQueueClosed。
func (q *Queue) Enqueue(a types.Action) error {
	entry := Entry{At: q.clock.Now(), Action: a}
	select {
	case <-q.done:
		return types.ErrQueueClosed
	default:
	}
	select {
	case q.ch <- entry:
		return nil
	case <-q.done:
		return types.ErrQueueClosed
	}
}

// Run 归约循环
//
// 先执行启动效果（武装周期定时器），然后逐条消费动作直到
// 上下文取消或队列关闭。这是唯一触碰核心状态的协程。
func (q *Queue) Run(ctx context.Context) error {
	if err := q.execute(q.core.Bootstrap()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case fn := <-q.inspect:
			fn()
		case entry := <-q.ch:
			q.record(entry)
			effects := q.core.Apply(entry.At, entry.Action)
			if err := q.execute(effects); err != nil {
				logger.Warn("effect execution failed",
					"action", int(entry.Action.Kind()),
					"err", err.Error())
			}
		}
	}
}

// Inspect 在归约循环内执行只读探视
//
// 与动作消费串行，调用方借此获得一致的核心状态视图；
// 队列已关闭时返回 ErrQueueClosed（此时循环已停，没有
// 并发写者，调用方可直接读取）。
func (q *Queue) Inspect(fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case q.inspect <- wrapped:
	case <-q.done:
		return types.ErrQueueClosed
	}
	<-done
	return nil
}

// Close 关闭队列
//
// 之后的入队返回 ErrQueueClosed；归约循环随即退出。
func (q *Queue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}

// execute 逐条执行效果，聚合全部错误
func (q *Queue) execute(effects []types.Effect) error {
	var err error
	for _, e := range effects {
		err = multierr.Append(err, q.exec.Execute(e))
	}
	return err
}

// record 追加动作日志
func (q *Queue) record(entry Entry) {
	q.mu.Lock()
	q.journal = append(q.journal, entry)
	q.mu.Unlock()
}

// Journal 返回动作日志副本（重放输入）
func (q *Queue) Journal() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.journal))
	copy(out, q.journal)
	return out
}
