// Package config 负责加载和验证 YAML 配置文件。
// 提供应用程序所需的所有配置项，包括偏差规则阈值、CSV 解析设置、输出与服务配置。
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 应用配置根结构
// 包含所有子模块的配置项
type Config struct {
	// App 应用基础配置
	App AppConfig `yaml:"app"`
	// Ingest CSV 解析配置
	Ingest IngestConfig `yaml:"ingest"`
	// Rules 偏差规则阈值配置
	Rules RulesConfig `yaml:"rules"`
	// Output 输出配置
	Output OutputConfig `yaml:"output"`
	// Server HTTP 服务配置
	Server ServerConfig `yaml:"server"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	// Name 应用名称，用于日志标识
	Name string `yaml:"name"`
	// LogLevel 日志级别: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// IngestConfig CSV 解析配置
type IngestConfig struct {
	// DateLayouts 依次尝试的日期格式（Go layout 语法）
	// 为空时使用内置默认格式列表
	DateLayouts []string `yaml:"date_layouts"`
	// NoHeader 首行不是表头（默认首行为表头）
	NoHeader bool `yaml:"no_header"`
	// MaxRowErrors 单次解析允许的最大坏行数，超过即整体失败
	// 0 表示不限制
	MaxRowErrors int `yaml:"max_row_errors"`
}

// RulesConfig 偏差规则阈值配置
// 所有规则阈值集中于此，便于在边界值处测试每条规则。
type RulesConfig struct {
	// LossAversionRatio 损失厌恶触发倍数
	// 当 avg_loss > avg_profit × ratio 时触发
	LossAversionRatio float64 `yaml:"loss_aversion_ratio"`
	// OvertradingPerSymbol 过度交易阈值
	// 当 总交易数 / 标的数 > 阈值 时触发
	OvertradingPerSymbol float64 `yaml:"overtrading_per_symbol"`
	// RecencyWindowDivisor 近因窗口除数
	// 近期窗口取按日期升序排列后的最后 1/divisor（向下取整）
	RecencyWindowDivisor int `yaml:"recency_window_divisor"`
	// RecencyThresholdPct 近因触发阈值（百分比）
	RecencyThresholdPct float64 `yaml:"recency_threshold_pct"`
	// ConcentrationThresholdPct 确认偏差触发阈值（百分比）
	// 当 最高频标的占比 > 阈值 时触发
	ConcentrationThresholdPct float64 `yaml:"concentration_threshold_pct"`
	// MinWinRatePct 策略有效性最低胜率（百分比）
	// 当 胜率 < 阈值 时触发
	MinWinRatePct float64 `yaml:"min_win_rate_pct"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// Dir 输出目录
	Dir string `yaml:"dir"`
	// ReportEnabled 是否输出报告 JSONL 文件
	ReportEnabled bool `yaml:"report_enabled"`
	// BufferSize 异步写入缓冲区大小
	BufferSize int `yaml:"buffer_size"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	// Enabled 是否以服务模式运行
	Enabled bool `yaml:"enabled"`
	// Addr 监听地址，如 :8080
	Addr string `yaml:"addr"`
	// MaxUploadBytes 上传 CSV 的最大字节数
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// ReportCapacity 内存中保留的最近报告数
	ReportCapacity int `yaml:"report_capacity"`
}

// Load 从文件加载配置并验证
// 参数 path: 配置文件路径；为空时返回默认配置
// 返回: 解析后的配置对象，若失败则返回错误
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	// 设置默认值
	cfg.setDefaults()

	// 验证配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &cfg, nil
}

// Default 返回全默认配置
// 批处理模式下无配置文件时使用。
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// setDefaults 设置配置默认值
func (c *Config) setDefaults() {
	// 应用默认值
	if c.App.Name == "" {
		c.App.Name = "trade-bias-analyzer"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}

	// 规则阈值默认值
	if c.Rules.LossAversionRatio == 0 {
		c.Rules.LossAversionRatio = 1.5
	}
	if c.Rules.OvertradingPerSymbol == 0 {
		c.Rules.OvertradingPerSymbol = 8
	}
	if c.Rules.RecencyWindowDivisor == 0 {
		c.Rules.RecencyWindowDivisor = 3
	}
	if c.Rules.RecencyThresholdPct == 0 {
		c.Rules.RecencyThresholdPct = 40
	}
	if c.Rules.ConcentrationThresholdPct == 0 {
		c.Rules.ConcentrationThresholdPct = 25
	}
	if c.Rules.MinWinRatePct == 0 {
		c.Rules.MinWinRatePct = 40
	}

	// 输出默认值
	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Output.BufferSize == 0 {
		c.Output.BufferSize = 1000
	}

	// 服务默认值
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 8 << 20 // 8MB
	}
	if c.Server.ReportCapacity == 0 {
		c.Server.ReportCapacity = 100
	}
}

// Validate 验证配置合法性
// 检查所有阈值的数值范围
// 返回: 若配置无效则返回描述性错误
func (c *Config) Validate() error {
	var errs []string

	// 验证规则阈值
	if c.Rules.LossAversionRatio <= 0 {
		errs = append(errs, "rules.loss_aversion_ratio: 触发倍数必须为正数")
	}
	if c.Rules.OvertradingPerSymbol <= 0 {
		errs = append(errs, "rules.overtrading_per_symbol: 过度交易阈值必须为正数")
	}
	if c.Rules.RecencyWindowDivisor < 2 {
		errs = append(errs, "rules.recency_window_divisor: 近因窗口除数必须不小于 2")
	}
	if err := validatePct(c.Rules.RecencyThresholdPct, "rules.recency_threshold_pct"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePct(c.Rules.ConcentrationThresholdPct, "rules.concentration_threshold_pct"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePct(c.Rules.MinWinRatePct, "rules.min_win_rate_pct"); err != nil {
		errs = append(errs, err.Error())
	}

	// 验证解析配置
	if c.Ingest.MaxRowErrors < 0 {
		errs = append(errs, "ingest.max_row_errors: 最大坏行数不能为负数")
	}

	// 验证输出配置
	if c.Output.BufferSize <= 0 {
		errs = append(errs, "output.buffer_size: 缓冲区大小必须为正数")
	}

	// 验证服务配置
	if c.Server.Enabled && c.Server.Addr == "" {
		errs = append(errs, "server.addr: 服务模式下监听地址不能为空")
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "server.max_upload_bytes: 上传上限必须为正数")
	}
	if c.Server.ReportCapacity <= 0 {
		errs = append(errs, "server.report_capacity: 报告保留数必须为正数")
	}

	// 验证日志级别
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, fmt.Sprintf("app.log_level: 无效的日志级别 '%s'，有效值: debug, info, warn, error", c.App.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("配置验证错误:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// validatePct 验证百分比阈值范围 (0, 100]
// 参数 v: 阈值
// 参数 field: 字段名称，用于错误消息
// 返回: 若阈值无效则返回错误
func validatePct(v float64, field string) error {
	if v <= 0 || v > 100 {
		return fmt.Errorf("%s: 百分比阈值必须在 (0, 100] 之间，当前值: %f", field, v)
	}
	return nil
}
