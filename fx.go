package chainp2p

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/chainp2p/go-chainp2p/internal/core/channel"
	"github.com/chainp2p/go-chainp2p/internal/core/dispatch"
	"github.com/chainp2p/go-chainp2p/internal/core/registry"
)

// buildFxApp 构建 Fx 应用
//
// 组装核心模块并把队列、归约器回填到 Node：
//
//	注册表 → 通道存储 → 归约器 → 动作队列
//
// 定时器效果由 effectRunner 就地兑现，其余效果转交用户
// 注册的执行器。
func buildFxApp(o *options, node *Node) (*fx.App, error) {
	runner := newEffectRunner(o.clock, o.exec)

	modules := []fx.Option{
		// 配置与运行时注入
		fx.Supply(o.cfg),
		fx.Provide(func() clock.Clock { return o.clock }),
		fx.Provide(func() dispatch.Executor { return runner }),

		// 核心模块
		registry.Module(),
		channel.Module(),
		dispatch.Module(),

		// Node 组件回填
		fx.Invoke(func(core *dispatch.Core, queue *dispatch.Queue) {
			runner.bind(queue)
			node.core = core
			node.queue = queue
			node.runner = runner
		}),
	}

	// 用户扩展
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// 禁用 Fx 自身的日志输出（避免干扰用户日志）
	modules = append(modules,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
