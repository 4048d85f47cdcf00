package model

import "time"

// Severity 偏差洞察的严重程度
type Severity string

const (
	// SeverityLow 低
	SeverityLow Severity = "low"
	// SeverityMedium 中
	SeverityMedium Severity = "medium"
	// SeverityHigh 高
	SeverityHigh Severity = "high"
)

// 偏差规则名称
// 每条规则固定一个名称，出现顺序即规则求值顺序。
const (
	// BiasLossAversion 损失厌恶：平均亏损显著大于平均盈利
	BiasLossAversion = "loss_aversion"
	// BiasOvertrading 过度交易：单一标的的平均交易次数过高
	BiasOvertrading = "overtrading"
	// BiasRecency 近因偏差：近期交易占比过高
	BiasRecency = "recency_bias"
	// BiasConfirmation 确认偏差：交易过度集中于单一标的
	BiasConfirmation = "confirmation_bias"
	// BiasStrategyEffectiveness 策略有效性：胜率低于阈值
	BiasStrategyEffectiveness = "strategy_effectiveness"
)

// TradeStats 单次分析的汇总统计
type TradeStats struct {
	// TotalTrades 输入交易总数（含未匹配的交易）
	TotalTrades int `json:"total_trades"`
	// WinRate 胜率（百分比，保留一位小数）
	WinRate float64 `json:"win_rate"`
	// AvgProfit 平均盈利（货币单位，不做舍入）
	AvgProfit float64 `json:"avg_profit"`
	// AvgLoss 平均亏损绝对值（货币单位，不做舍入）
	AvgLoss float64 `json:"avg_loss"`
	// ProfitFactor 盈亏比：总盈利 / 总亏损；无亏损时为 0
	ProfitFactor float64 `json:"profit_factor"`
}

// BiasInsight 一条命中的偏差洞察
type BiasInsight struct {
	// Type 规则名称
	Type string `json:"type"`
	// Severity 严重程度（每条规则固定）
	Severity Severity `json:"severity"`
	// Description 模板化的人类可读描述
	Description string `json:"description"`
	// Recommendation 固定的改进建议
	Recommendation string `json:"recommendation"`
	// Metric 严重程度分值（0-100 量纲）
	Metric float64 `json:"metric"`
}

// Report 一次分析运行的完整输出
// 供 JSONL 输出与 HTTP 服务直接序列化，展示层不再做额外转换。
type Report struct {
	// ID 运行标识
	ID string `json:"id"`
	// GeneratedAt 生成时间
	GeneratedAt time.Time `json:"generated_at"`
	// Stats 汇总统计
	Stats TradeStats `json:"stats"`
	// Insights 命中的偏差洞察（按规则顺序，可为空）
	Insights []BiasInsight `json:"insights"`
}
