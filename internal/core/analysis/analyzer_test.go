// Package analysis 分析管线端到端测试
package analysis

import (
	"math"
	"reflect"
	"testing"
	"time"

	"trade-bias-analyzer/internal/config"
	"trade-bias-analyzer/internal/core/model"
)

func newAnalyzer() *Analyzer {
	return New(config.Default().Rules)
}

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func hasInsight(r *model.Report, typ string) bool {
	for _, in := range r.Insights {
		if in.Type == typ {
			return true
		}
	}
	return false
}

// 场景：买 10@10 卖 10@15
func TestRun_SingleWin(t *testing.T) {
	report := newAnalyzer().Run([]model.Trade{
		{Date: day(0), Symbol: "AAPL", Action: model.ActionBuy, Quantity: 10, Price: 10},
		{Date: day(1), Symbol: "AAPL", Action: model.ActionSell, Quantity: 10, Price: 15},
	})

	s := report.Stats
	if s.TotalTrades != 2 {
		t.Fatalf("TotalTrades=%d, want 2", s.TotalTrades)
	}
	if s.WinRate != 100 || s.AvgProfit != 50 || s.AvgLoss != 0 || s.ProfitFactor != 0 {
		t.Fatalf("stats=%+v, want WinRate=100 AvgProfit=50 AvgLoss=0 ProfitFactor=0", s)
	}
	if hasInsight(report, model.BiasStrategyEffectiveness) {
		t.Fatalf("胜率 100 不应触发策略有效性")
	}
}

// 场景：买 10@10，卖 5@5，卖 5@8
func TestRun_AllLosses(t *testing.T) {
	report := newAnalyzer().Run([]model.Trade{
		{Date: day(0), Symbol: "AAPL", Action: model.ActionBuy, Quantity: 10, Price: 10},
		{Date: day(1), Symbol: "AAPL", Action: model.ActionSell, Quantity: 5, Price: 5},
		{Date: day(2), Symbol: "AAPL", Action: model.ActionSell, Quantity: 5, Price: 8},
	})

	s := report.Stats
	if s.WinRate != 0 {
		t.Fatalf("WinRate=%f, want 0", s.WinRate)
	}
	if math.Abs(s.AvgLoss-17.5) > 1e-9 {
		t.Fatalf("AvgLoss=%f, want 17.5", s.AvgLoss)
	}
	found := false
	for _, in := range report.Insights {
		if in.Type == model.BiasStrategyEffectiveness {
			found = true
			if in.Metric != 100 {
				t.Fatalf("Metric=%f, want 100", in.Metric)
			}
		}
	}
	if !found {
		t.Fatalf("应触发策略有效性")
	}
}

// 场景：空输入
func TestRun_EmptyInput(t *testing.T) {
	report := newAnalyzer().Run(nil)
	if report == nil {
		t.Fatalf("报告不应为 nil")
	}
	s := report.Stats
	if s.TotalTrades != 0 || s.WinRate != 0 || s.AvgProfit != 0 || s.AvgLoss != 0 || s.ProfitFactor != 0 {
		t.Fatalf("空输入统计应全为 0: %+v", s)
	}
	if len(report.Insights) != 0 {
		t.Fatalf("空输入不应产生洞察: %+v", report.Insights)
	}
}

// 场景：单标的 9 笔
func TestRun_Overtrading(t *testing.T) {
	var trades []model.Trade
	for i := 0; i < 9; i++ {
		trades = append(trades, model.Trade{
			Date: day(i), Symbol: "AAPL", Action: model.ActionBuy, Quantity: 1, Price: 10,
		})
	}
	report := newAnalyzer().Run(trades)

	for _, in := range report.Insights {
		if in.Type == model.BiasOvertrading {
			if in.Metric != 90 {
				t.Fatalf("Metric=%f, want 90", in.Metric)
			}
			return
		}
	}
	t.Fatalf("应触发过度交易: %+v", report.Insights)
}

// 场景：单标的单笔
func TestRun_SingleTradeConcentration(t *testing.T) {
	report := newAnalyzer().Run([]model.Trade{
		{Date: day(0), Symbol: "AAPL", Action: model.ActionBuy, Quantity: 1, Price: 10},
	})
	for _, in := range report.Insights {
		if in.Type == model.BiasConfirmation {
			if in.Metric != 100 {
				t.Fatalf("Metric=%f, want 100", in.Metric)
			}
			return
		}
	}
	t.Fatalf("应触发确认偏差: %+v", report.Insights)
}

// TestRun_Idempotent 对同一输入运行两次应得到完全一致的统计与洞察
func TestRun_Idempotent(t *testing.T) {
	trades := []model.Trade{
		{Date: day(0), Symbol: "AAPL", Action: model.ActionBuy, Quantity: 10, Price: 10},
		{Date: day(1), Symbol: "MSFT", Action: model.ActionBuy, Quantity: 5, Price: 100},
		{Date: day(2), Symbol: "AAPL", Action: model.ActionSell, Quantity: 10, Price: 12},
		{Date: day(3), Symbol: "MSFT", Action: model.ActionSell, Quantity: 5, Price: 90},
		{Date: day(4), Symbol: "AAPL", Action: model.ActionOther, Quantity: 1, Price: 1},
	}

	a := newAnalyzer()
	r1 := a.Run(trades)
	r2 := a.Run(trades)

	if !reflect.DeepEqual(r1.Stats, r2.Stats) {
		t.Fatalf("stats 不一致:\n%+v\n%+v", r1.Stats, r2.Stats)
	}
	if !reflect.DeepEqual(r1.Insights, r2.Insights) {
		t.Fatalf("insights 不一致:\n%+v\n%+v", r1.Insights, r2.Insights)
	}
}

// TestRun_TotalTradesIdentity TotalTrades 恒等于输入长度（含 other 记录）
func TestRun_TotalTradesIdentity(t *testing.T) {
	for _, n := range []int{0, 1, 5, 17} {
		var trades []model.Trade
		for i := 0; i < n; i++ {
			action := model.ActionBuy
			if i%3 == 1 {
				action = model.ActionSell
			} else if i%3 == 2 {
				action = model.ActionOther
			}
			trades = append(trades, model.Trade{
				Date: day(i), Symbol: "AAPL", Action: action, Quantity: 1, Price: 10,
			})
		}
		report := newAnalyzer().Run(trades)
		if report.Stats.TotalTrades != n {
			t.Fatalf("TotalTrades=%d, want %d", report.Stats.TotalTrades, n)
		}
	}
}
