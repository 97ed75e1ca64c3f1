// Package dispatch 实现单线程核心归约器与动作队列
//
// # 执行模型
//
// 核心是一台确定性、可重放的状态机：全部状态由单一归约器
// 独占持有，没有锁、没有共享内存并发。外界（网络回调、
// 定时器、调用方 API）只能把动作追加到队列；队列在入队时
// 用注入时钟盖戳，归约循环逐条取出并调用
//
//	(状态, 动作, 时刻) → (状态', 效果列表)
//
// 转移逻辑从不读取挂钟、不用未注入种子的随机数、不做 I/O。
// 效果是外发请求的描述，由执行器在归约之外完成；完成结果
// 再以新动作入队。
//
// # 重放
//
// 队列记录动作日志（动作 + 入队时刻）。把同一份日志喂给
// 一个新核心实例（相同配置与种子），逐条重放后注册表快照
// 与原实例完全相等——这是诊断与测试的基础性质。
//
// # 定时器
//
// 核心仅有的两个轮询：超时扫描（建连超时 + 通道空闲）与
// 空间检查。定时器到期同样以动作（TimerFired）入队，扫描
// 用的"当前时刻"取自该动作的入队时刻。
package dispatch
