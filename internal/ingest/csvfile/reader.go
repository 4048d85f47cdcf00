// Package csvfile 实现交易记录 CSV 的解析与入口校验。
// 每一行要么产出一条类型化的 Trade，要么产出一条带行号的显式错误；
// 无效数值不会以 NaN 的形式进入核心引擎。
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"trade-bias-analyzer/internal/config"
	"trade-bias-analyzer/internal/core/model"
	"trade-bias-analyzer/internal/util/fastparse"
	"trade-bias-analyzer/internal/util/timeutil"
)

// 列索引（无表头时的固定列顺序）
const (
	colDate = iota
	colSymbol
	colAction
	colQuantity
	colPrice
	colCount
)

// headerAliases 表头列名到列索引的映射（大小写不敏感）
var headerAliases = map[string]int{
	"date":      colDate,
	"time":      colDate,
	"symbol":    colSymbol,
	"ticker":    colSymbol,
	"action":    colAction,
	"side":      colAction,
	"quantity":  colQuantity,
	"qty":       colQuantity,
	"shares":    colQuantity,
	"price":     colPrice,
	"avg_price": colPrice,
}

// RowError 一行记录的解析失败
type RowError struct {
	// Line 文件中的行号（从 1 开始，含表头行）
	Line int
	// Reason 失败原因
	Reason string
}

// Error 实现 error 接口
func (e RowError) Error() string {
	return fmt.Sprintf("第 %d 行: %s", e.Line, e.Reason)
}

// Reader 交易记录 CSV 解析器
type Reader struct {
	// cfg 解析配置
	cfg config.IngestConfig
}

// NewReader 创建 CSV 解析器
// 参数 cfg: 解析配置
func NewReader(cfg config.IngestConfig) *Reader {
	return &Reader{cfg: cfg}
}

// Read 解析 CSV 流为类型化的交易序列
// 坏行不会中断解析，而是收集为 RowError；当坏行数超过
// 配置的 max_row_errors（非 0 时）则整体失败。
// 返回: 按文件顺序的交易列表、坏行列表、整体性错误
func (r *Reader) Read(src io.Reader) ([]model.Trade, []RowError, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	line := 0
	cols := defaultColumns()

	if !r.cfg.NoHeader {
		header, err := cr.Read()
		if err == io.EOF {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("读取表头失败: %w", err)
		}
		line++
		cols, err = mapHeader(header)
		if err != nil {
			return nil, nil, err
		}
	}

	var trades []model.Trade
	var rowErrs []RowError

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: fmt.Sprintf("CSV 格式错误: %v", err)})
		} else if t, perr := r.parseRow(record, cols); perr != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: perr.Error()})
		} else {
			trades = append(trades, t)
		}

		if r.cfg.MaxRowErrors > 0 && len(rowErrs) > r.cfg.MaxRowErrors {
			break
		}
	}

	if r.cfg.MaxRowErrors > 0 && len(rowErrs) > r.cfg.MaxRowErrors {
		return nil, rowErrs, fmt.Errorf("坏行过多: %d 行解析失败（上限 %d）", len(rowErrs), r.cfg.MaxRowErrors)
	}

	return trades, rowErrs, nil
}

// parseRow 校验并转换单行记录
func (r *Reader) parseRow(record []string, cols [colCount]int) (model.Trade, error) {
	maxIdx := 0
	for _, idx := range cols {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(record) <= maxIdx {
		return model.Trade{}, fmt.Errorf("列数不足: 需要至少 %d 列，实际 %d 列", maxIdx+1, len(record))
	}

	date, ok := timeutil.ParseDate(record[cols[colDate]], r.cfg.DateLayouts)
	if !ok {
		return model.Trade{}, fmt.Errorf("date: 无法解析日期: %q", record[cols[colDate]])
	}

	symbol := strings.TrimSpace(record[cols[colSymbol]])
	if symbol == "" {
		return model.Trade{}, fmt.Errorf("symbol: 标的不能为空")
	}

	qty, err := fastparse.ParseNonNegative(record[cols[colQuantity]], "quantity")
	if err != nil {
		return model.Trade{}, err
	}
	price, err := fastparse.ParseNonNegative(record[cols[colPrice]], "price")
	if err != nil {
		return model.Trade{}, err
	}

	return model.Trade{
		Date:     date,
		Symbol:   symbol,
		Action:   model.ParseAction(record[cols[colAction]]),
		Quantity: qty,
		Price:    price,
	}, nil
}

// mapHeader 将表头列名映射到列索引
// 五个必需列缺一不可，无法识别的额外列忽略。
func mapHeader(header []string) ([colCount]int, error) {
	var cols [colCount]int
	found := [colCount]bool{}

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		idx, ok := headerAliases[key]
		if !ok || found[idx] {
			continue
		}
		cols[idx] = i
		found[idx] = true
	}

	names := [colCount]string{"date", "symbol", "action", "quantity", "price"}
	var missing []string
	for i, ok := range found {
		if !ok {
			missing = append(missing, names[i])
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("表头缺少必需列: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func defaultColumns() [colCount]int {
	return [colCount]int{colDate, colSymbol, colAction, colQuantity, colPrice}
}
