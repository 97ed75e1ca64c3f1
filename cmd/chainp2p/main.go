// Package main 提供 chainp2p 命令行入口
//
// 干跑模式：不挂接真实传输执行器，只启动核心归约循环，
// 用于验证配置与观察周期扫描日志。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	chainp2p "github.com/chainp2p/go-chainp2p"
	"github.com/chainp2p/go-chainp2p/pkg/lib/log"
	"github.com/chainp2p/go-chainp2p/pkg/types"
)

var logger = log.Logger("chainp2p/cmd")

var (
	peerID          = flag.String("peer", "", "本节点标识（base58，必填）")
	chainID         = flag.String("chain", "dev", "链标识")
	maxPeers        = flag.Int("max-peers", 100, "连接槽位上限")
	maxStable       = flag.Int("max-stable-peers", 50, "空间管理目标连接数")
	stabilityWindow = flag.Duration("stability-window", 90*time.Second, "空间管理稳定窗口")
	logLevel        = flag.String("log-level", "info", "日志级别 (debug/info/warn/error)")
	showVersion     = flag.Bool("version", false, "打印版本信息")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(chainp2p.VersionInfo())
		return
	}

	switch *logLevel {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "info":
		log.SetLevel(log.LevelInfo)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		fmt.Fprintf(os.Stderr, "invalid log level: %s\n", *logLevel)
		os.Exit(1)
	}

	self, err := types.ParsePeerID(*peerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid peer id: %v\n", err)
		os.Exit(1)
	}

	node, err := chainp2p.New(
		chainp2p.WithLocalPeer(self),
		chainp2p.WithChainID(types.ChainID(*chainID)),
		chainp2p.WithMaxPeers(*maxPeers),
		chainp2p.WithMaxStablePeers(*maxStable),
		chainp2p.WithStabilityWindow(*stabilityWindow),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create node: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := node.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start node: %v\n", err)
		os.Exit(1)
	}
	logger.Info("running", "peer", self.ShortString(), "chain", *chainID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := node.Stop(shutdownCtx); err != nil {
		logger.Warn("shutdown", "err", err.Error())
	}
}
