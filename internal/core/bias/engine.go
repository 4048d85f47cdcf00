// Package bias 实现行为偏差的启发式规则引擎。
// 五条规则相互独立、按固定顺序求值，每条规则最多产生一条洞察，
// 规则之间不互相抑制，可同时命中多条。
package bias

import (
	"fmt"
	"sort"

	"trade-bias-analyzer/internal/config"
	"trade-bias-analyzer/internal/core/model"
)

// Engine 偏差规则引擎
// 阈值全部来自配置，引擎本身无可变状态，可重复调用。
type Engine struct {
	// cfg 规则阈值配置
	cfg config.RulesConfig
}

// NewEngine 创建偏差规则引擎
// 参数 cfg: 规则阈值配置
func NewEngine(cfg config.RulesConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate 对交易集与汇总统计求值全部规则
// 空交易列表不产生任何洞察（除零歧义的显式解法，见各规则守卫）。
// 参数 trades: 完整交易序列
// 参数 stats: 已计算的汇总统计
// 返回: 按规则顺序追加的洞察列表，可能为空
func (e *Engine) Evaluate(trades []model.Trade, stats model.TradeStats) []model.BiasInsight {
	insights := make([]model.BiasInsight, 0, 5)

	if in, ok := e.lossAversion(stats); ok {
		insights = append(insights, in)
	}
	if in, ok := e.overtrading(trades); ok {
		insights = append(insights, in)
	}
	if in, ok := e.recency(trades); ok {
		insights = append(insights, in)
	}
	if in, ok := e.confirmation(trades); ok {
		insights = append(insights, in)
	}
	if in, ok := e.strategyEffectiveness(len(trades), stats); ok {
		insights = append(insights, in)
	}

	return insights
}

// lossAversion 损失厌恶：平均亏损显著大于平均盈利
// avg_profit 为 0 时规则不可触发（避免 metric 公式除零，
// 视为“尚无盈利样本，无法对比”）。
func (e *Engine) lossAversion(stats model.TradeStats) (model.BiasInsight, bool) {
	if stats.AvgProfit <= 0 {
		return model.BiasInsight{}, false
	}
	if stats.AvgLoss <= stats.AvgProfit*e.cfg.LossAversionRatio {
		return model.BiasInsight{}, false
	}
	ratio := stats.AvgLoss / stats.AvgProfit
	return model.BiasInsight{
		Type:           model.BiasLossAversion,
		Severity:       model.SeverityHigh,
		Description:    fmt.Sprintf("平均亏损（%.2f）是平均盈利（%.2f）的 %.1f 倍，存在让亏损扩大、过早止盈的倾向", stats.AvgLoss, stats.AvgProfit, ratio),
		Recommendation: "为每笔交易预设止损位并严格执行，避免在亏损头寸上加码或拖延离场",
		Metric:         capMetric(ratio * 50),
	}, true
}

// overtrading 过度交易：单一标的的平均交易次数过高
// trades_per_symbol 按全部交易计（含无法识别方向的记录）。
func (e *Engine) overtrading(trades []model.Trade) (model.BiasInsight, bool) {
	if len(trades) == 0 {
		return model.BiasInsight{}, false
	}
	distinct := distinctSymbols(trades)
	if distinct == 0 {
		return model.BiasInsight{}, false
	}
	perSymbol := float64(len(trades)) / float64(distinct)
	if perSymbol <= e.cfg.OvertradingPerSymbol {
		return model.BiasInsight{}, false
	}
	return model.BiasInsight{
		Type:           model.BiasOvertrading,
		Severity:       model.SeverityMedium,
		Description:    fmt.Sprintf("平均每个标的交易 %.1f 次（共 %d 笔 / %d 个标的），交易频率偏高", perSymbol, len(trades), distinct),
		Recommendation: "减少交易频率，只在符合既定策略条件时下单，关注手续费对收益的侵蚀",
		Metric:         capMetric(perSymbol * 10),
	}, true
}

// recency 近因偏差：近期交易占比过高
// 近期窗口取按日期升序排列后的最后 floor(n/divisor) 笔；
// 向下取整为 0 时窗口退化为全部交易（保留小样本下的历史边界行为，
// 此时占比为 100）。日期零值视为最早，排序保持稳定。
func (e *Engine) recency(trades []model.Trade) (model.BiasInsight, bool) {
	n := len(trades)
	if n == 0 {
		return model.BiasInsight{}, false
	}

	sorted := make([]model.Trade, n)
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	recent := n / e.cfg.RecencyWindowDivisor
	if recent == 0 {
		recent = n
	}

	pct := float64(recent) / float64(n) * 100
	if pct <= e.cfg.RecencyThresholdPct {
		return model.BiasInsight{}, false
	}
	return model.BiasInsight{
		Type:           model.BiasRecency,
		Severity:       model.SeverityMedium,
		Description:    fmt.Sprintf("最近窗口内的交易占全部交易的 %.1f%%，决策可能过度受近期行情影响", pct),
		Recommendation: "回顾更长周期的交易记录再做决策，避免仅凭最近几笔的盈亏调整策略",
		Metric:         pct,
	}, true
}

// confirmation 确认偏差：交易过度集中于单一标的
func (e *Engine) confirmation(trades []model.Trade) (model.BiasInsight, bool) {
	n := len(trades)
	if n == 0 {
		return model.BiasInsight{}, false
	}

	freq := make(map[string]int)
	maxSym, maxFreq := "", 0
	for _, t := range trades {
		freq[t.Symbol]++
		if freq[t.Symbol] > maxFreq {
			maxSym, maxFreq = t.Symbol, freq[t.Symbol]
		}
	}

	pct := float64(maxFreq) / float64(n) * 100
	if pct <= e.cfg.ConcentrationThresholdPct {
		return model.BiasInsight{}, false
	}
	return model.BiasInsight{
		Type:           model.BiasConfirmation,
		Severity:       model.SeverityLow,
		Description:    fmt.Sprintf("%.1f%% 的交易集中在 %s 上，可能只关注支持已有观点的信息", pct, maxSym),
		Recommendation: "分散关注的标的范围，主动寻找与当前判断相反的证据",
		Metric:         pct,
	}, true
}

// strategyEffectiveness 策略有效性：胜率低于阈值
// 与是否有匹配成交无关：有交易但零匹配时 win_rate 为 0，规则照常触发；
// 空交易列表不触发。
func (e *Engine) strategyEffectiveness(totalTrades int, stats model.TradeStats) (model.BiasInsight, bool) {
	if totalTrades == 0 {
		return model.BiasInsight{}, false
	}
	if stats.WinRate >= e.cfg.MinWinRatePct {
		return model.BiasInsight{}, false
	}
	return model.BiasInsight{
		Type:           model.BiasStrategyEffectiveness,
		Severity:       model.SeverityHigh,
		Description:    fmt.Sprintf("胜率仅 %.1f%%，低于 %.0f%% 的参考线，当前策略可能并不有效", stats.WinRate, e.cfg.MinWinRatePct),
		Recommendation: "暂停加仓，复盘亏损交易的共性，先在小仓位上验证调整后的策略",
		Metric:         100 - stats.WinRate,
	}, true
}

func distinctSymbols(trades []model.Trade) int {
	seen := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		seen[t.Symbol] = struct{}{}
	}
	return len(seen)
}

// capMetric 将分值截断到 100 以内
func capMetric(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
