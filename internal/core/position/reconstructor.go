// Package position 实现基于均价模型的持仓回放与已实现盈亏重建。
// 均价模型（而非 FIFO/LIFO 批次跟踪）是支持部分平仓盈亏的最简模型，
// 本工具定位为诊断工具而非记账系统。
package position

import (
	"trade-bias-analyzer/internal/core/model"
)

// Realized 已实现盈亏事件的汇总
// 两个列表跨所有标的合并，无序，不保留按标的归属。
type Realized struct {
	// Profits 盈利金额列表（正数）
	Profits []float64
	// Losses 亏损金额绝对值列表
	// 恰好为零的盈亏计入亏损（既定策略，非偶然行为）
	Losses []float64
}

// state 单个标的的回放状态
// 每个标的回放开始时初始化为零值，回放结束即丢弃，标的之间不共享。
type state struct {
	// openQty 当前净多头持仓数量，始终非负
	openQty float64
	// avgCost 当前持仓的成交量加权平均入场价
	avgCost float64
}

// apply 将一笔交易应用到状态上，返回产生的已实现盈亏
// 返回: (盈亏金额, 是否产生了盈亏事件)
func (s *state) apply(t model.Trade) (float64, bool) {
	switch t.Action {
	case model.ActionBuy:
		// 零数量买入会使均价公式分母为零，直接忽略
		if t.Quantity <= 0 {
			return 0, false
		}
		s.avgCost = (s.avgCost*s.openQty + t.Price*t.Quantity) / (s.openQty + t.Quantity)
		s.openQty += t.Quantity
		return 0, false

	case model.ActionSell:
		// 无持仓时的卖出不产生盈亏事件
		if s.openQty <= 0 {
			return 0, false
		}
		// 只消耗已有持仓：超量卖出按持仓量截断，持仓不会变为负数
		matched := t.Quantity
		if matched > s.openQty {
			matched = s.openQty
		}
		if matched <= 0 {
			return 0, false
		}
		pnl := (t.Price - s.avgCost) * matched
		s.openQty -= matched
		return pnl, true

	default:
		// 无法识别的方向不参与盈亏匹配
		return 0, false
	}
}

// Replay 按文件顺序回放全部交易，重建已实现盈亏
// 按 Symbol 稳定分组后对每个标的独立单遍回放；
// 回放结束时未平仓的持仓直接丢弃，不产生事件。
// 参数 trades: 完整有序的交易序列
// 返回: 跨所有标的合并的盈利/亏损列表
func Replay(trades []model.Trade) Realized {
	// 稳定分组：保留每个标的内部的原始相对顺序
	groups := make(map[string][]model.Trade)
	order := make([]string, 0)
	for _, t := range trades {
		if _, ok := groups[t.Symbol]; !ok {
			order = append(order, t.Symbol)
		}
		groups[t.Symbol] = append(groups[t.Symbol], t)
	}

	var out Realized
	for _, sym := range order {
		st := &state{}
		for _, t := range groups[sym] {
			pnl, ok := st.apply(t)
			if !ok {
				continue
			}
			if pnl > 0 {
				out.Profits = append(out.Profits, pnl)
			} else {
				out.Losses = append(out.Losses, abs(pnl))
			}
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
