// Package model 定义分析器中使用的核心数据结构。
package model

import (
	"strings"
	"time"
)

// Action 交易方向
type Action string

const (
	// ActionBuy 买入
	ActionBuy Action = "buy"
	// ActionSell 卖出
	ActionSell Action = "sell"
	// ActionOther 无法识别的方向
	// 计入 TotalTrades，但不参与盈亏匹配
	ActionOther Action = "other"
)

// ParseAction 解析交易方向字符串（大小写不敏感）
// 参数 s: 原始方向字段，如 "BUY"、"sell"
// 返回: 识别出的 Action；无法识别时返回 ActionOther
func ParseAction(s string) Action {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return ActionBuy
	case "sell":
		return ActionSell
	default:
		return ActionOther
	}
}

// Trade 一条历史成交记录
// 构造后不可变，分析过程中只读。
type Trade struct {
	// Date 成交日期
	// 零值表示日期缺失，排序时视为最早
	Date time.Time `json:"date"`
	// Symbol 标的代码，大小写敏感的相等键
	Symbol string `json:"symbol"`
	// Action 交易方向: buy, sell, other
	Action Action `json:"action"`
	// Quantity 成交数量（非负）
	Quantity float64 `json:"quantity"`
	// Price 成交单价（非负）
	Price float64 `json:"price"`
}

// IsBuy 判断是否为买入
func (t *Trade) IsBuy() bool {
	return t.Action == ActionBuy
}

// IsSell 判断是否为卖出
func (t *Trade) IsSell() bool {
	return t.Action == ActionSell
}
