// Package analysis 将持仓回放、汇总统计与偏差规则串联为单遍分析管线。
// 管线是输入交易列表与规则常量的纯函数：无 I/O、无共享可变状态，
// 可对独立输入重复或并发调用。
package analysis

import (
	"fmt"
	"time"

	"trade-bias-analyzer/internal/config"
	"trade-bias-analyzer/internal/core/bias"
	"trade-bias-analyzer/internal/core/model"
	"trade-bias-analyzer/internal/core/position"
	"trade-bias-analyzer/internal/stats/perf"
	"trade-bias-analyzer/internal/util/timeutil"
)

// Analyzer 交易分析管线
type Analyzer struct {
	// rules 偏差规则引擎
	rules *bias.Engine
}

// New 创建分析管线
// 参数 cfg: 规则阈值配置
func New(cfg config.RulesConfig) *Analyzer {
	return &Analyzer{
		rules: bias.NewEngine(cfg),
	}
}

// Run 对一份交易序列执行完整分析
// 控制流严格向前：回放 → 统计 → 规则，无反馈回路。
// 参数 trades: 完整有序的交易序列（已通过入口校验）
// 返回: 分析报告，永不为 nil，引擎自身没有错误通道
func (a *Analyzer) Run(trades []model.Trade) *model.Report {
	realized := position.Replay(trades)
	stats := perf.Aggregate(realized, len(trades))
	insights := a.rules.Evaluate(trades, stats)

	return &model.Report{
		ID:          fmt.Sprintf("run-%d", timeutil.NowNano()),
		GeneratedAt: time.Now(),
		Stats:       stats,
		Insights:    insights,
	}
}
