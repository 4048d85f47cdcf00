// Package perf 实现已实现盈亏的汇总统计。
// 纯归约，无错误路径：每个分支都有确定的零值默认。
package perf

import (
	"math"

	"trade-bias-analyzer/internal/core/model"
	"trade-bias-analyzer/internal/core/position"
)

// Aggregate 将已实现盈亏归约为汇总统计
// 参数 realized: 持仓回放产生的盈利/亏损列表
// 参数 totalTrades: 输入交易总数（含未匹配的交易）
// 返回: 汇总统计；空输入时各项为 0
func Aggregate(realized position.Realized, totalTrades int) model.TradeStats {
	out := model.TradeStats{TotalTrades: totalTrades}

	winCount := len(realized.Profits)
	lossCount := len(realized.Losses)

	// win_rate = 盈利数 / (盈利数 + 亏损数) × 100，保留一位小数
	if winCount+lossCount > 0 {
		out.WinRate = round1(float64(winCount) / float64(winCount+lossCount) * 100)
	}

	if winCount > 0 {
		out.AvgProfit = mean(realized.Profits)
	}
	if lossCount > 0 {
		out.AvgLoss = mean(realized.Losses)
	}

	// profit_factor = 总盈利 / 总亏损；avg_loss 为 0（含无亏损）时为 0
	if out.AvgLoss > 0 {
		out.ProfitFactor = (out.AvgProfit * float64(winCount)) / (out.AvgLoss * float64(lossCount))
	}

	return out
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
