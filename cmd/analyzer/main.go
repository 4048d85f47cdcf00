// Package main 是交易行为偏差分析器的入口点。
// 读取交易记录 CSV，重建每个标的的已实现盈亏，归约出汇总统计，
// 并对交易集求值五条启发式偏差规则，输出洞察报告。
//
// 两种运行模式：
//   - 批处理（默认）：-input 指定 CSV，分析结果打印到标准输出并追加到报告 JSONL；
//   - 服务模式（-serve 或 server.enabled）：HTTP 上传分析 + WebSocket 报告推送。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trade-bias-analyzer/internal/config"
	"trade-bias-analyzer/internal/core/analysis"
	"trade-bias-analyzer/internal/ingest/csvfile"
	"trade-bias-analyzer/internal/output/jsonl"
	"trade-bias-analyzer/internal/server"
)

func main() {
	var (
		configPath string
		inputPath  string
		serve      bool
	)
	flag.StringVar(&configPath, "config", "", "配置文件路径（留空使用默认配置）")
	flag.StringVar(&inputPath, "input", "", "交易记录 CSV 路径（批处理模式）")
	flag.BoolVar(&serve, "serve", false, "以服务模式运行")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App.LogLevel)
	defer logger.Sync()

	if serve || cfg.Server.Enabled {
		runServer(cfg, logger)
		return
	}

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "批处理模式需要 -input 指定 CSV 文件")
		os.Exit(1)
	}
	runBatch(cfg, logger, inputPath)
}

// runBatch 批处理模式：单次读取、分析、输出
func runBatch(cfg *config.Config, logger *zap.Logger, inputPath string) {
	f, err := os.Open(inputPath)
	if err != nil {
		logger.Error("打开输入文件失败", zap.Error(err))
		os.Exit(1)
	}
	defer f.Close()

	reader := csvfile.NewReader(cfg.Ingest)
	trades, rowErrs, err := reader.Read(f)
	if err != nil {
		logger.Error("解析 CSV 失败", zap.Error(err))
		os.Exit(1)
	}
	for _, re := range rowErrs {
		logger.Warn("跳过坏行", zap.Int("line", re.Line), zap.String("reason", re.Reason))
	}

	report := analysis.New(cfg.Rules).Run(trades)

	logger.Info("分析完成",
		zap.String("run_id", report.ID),
		zap.Int("trades", report.Stats.TotalTrades),
		zap.Float64("win_rate", report.Stats.WinRate),
		zap.Int("insights", len(report.Insights)))

	if cfg.Output.ReportEnabled {
		writer, err := jsonl.NewWriter(fmt.Sprintf("%s/reports.jsonl", cfg.Output.Dir), cfg.Output.BufferSize)
		if err != nil {
			logger.Error("创建报告 writer 失败", zap.Error(err))
			os.Exit(1)
		}
		if err := writer.Write(report); err != nil {
			logger.Error("写入报告失败", zap.Error(err))
		}
		if err := writer.Close(); err != nil {
			logger.Error("关闭报告 writer 失败", zap.Error(err))
		}
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("编码报告失败", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// runServer 服务模式：阻塞直到收到退出信号
func runServer(cfg *config.Config, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 捕获 SIGINT/SIGTERM，触发优雅退出
	sigCh := make(chan os.Signal, 2)
	ossignal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("收到退出信号，开始优雅关闭")
		cancel()
	}()

	srv := server.New(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("服务退出", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("关闭完成")
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
