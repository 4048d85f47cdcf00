package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trade-bias-analyzer/internal/config"
	"trade-bias-analyzer/internal/core/analysis"
	"trade-bias-analyzer/internal/core/store"
	"trade-bias-analyzer/internal/ingest/csvfile"
)

// Server 分析服务
// 接收 CSV 上传，运行分析管线，缓存报告并向 WebSocket 订阅者推送。
type Server struct {
	// cfg 服务配置
	cfg config.ServerConfig
	// reader CSV 入口解析器
	reader *csvfile.Reader
	// analyzer 分析管线
	analyzer *analysis.Analyzer
	// reports 最近报告缓存
	reports *store.Store
	// hub WebSocket 推送中心
	hub *Hub

	logger *zap.Logger
}

// analyzeResponse POST /api/analyze 的响应体
type analyzeResponse struct {
	// Report 分析报告
	Report any `json:"report"`
	// SkippedRows 被跳过的坏行说明（可为空）
	SkippedRows []string `json:"skipped_rows,omitempty"`
}

// New 创建分析服务
// 参数 cfg: 完整应用配置
// 参数 logger: 结构化日志
func New(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg.Server,
		reader:   csvfile.NewReader(cfg.Ingest),
		analyzer: analysis.New(cfg.Rules),
		reports:  store.New(cfg.Server.ReportCapacity),
		hub:      NewHub(logger),
		logger:   logger,
	}
}

// Router 构建 gin 路由
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.POST("/api/analyze", s.handleAnalyze)
	r.GET("/api/reports", s.handleListReports)
	r.GET("/api/reports/:id", s.handleGetReport)
	r.GET("/ws", s.handleWS)

	return r
}

// Run 启动 HTTP 服务并阻塞，ctx 取消时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("分析服务已启动", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("关闭服务失败: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"reports":    s.reports.Len(),
		"ws_clients": s.hub.ClientCount(),
	})
}

// handleAnalyze 接收 CSV（multipart 字段 file 或原始请求体）并执行分析
func (s *Server) handleAnalyze(c *gin.Context) {
	src, err := s.openUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	trades, rowErrs, err := s.reader.Read(src)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	report := s.analyzer.Run(trades)
	s.reports.Put(report)
	s.hub.Broadcast(report)

	s.logger.Info("分析完成",
		zap.String("run_id", report.ID),
		zap.Int("trades", report.Stats.TotalTrades),
		zap.Int("insights", len(report.Insights)),
		zap.Int("skipped_rows", len(rowErrs)))

	resp := analyzeResponse{Report: report}
	for _, re := range rowErrs {
		resp.SkippedRows = append(resp.SkippedRows, re.Error())
	}
	c.JSON(http.StatusOK, resp)
}

// openUpload 获取上传的 CSV 数据流并套用大小上限
func (s *Server) openUpload(c *gin.Context) (io.ReadCloser, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("读取上传文件失败: %w", err)
		}
		return f, nil
	}

	// 非 multipart：直接把请求体当作 CSV
	return c.Request.Body, nil
}

func (s *Server) handleListReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": s.reports.List()})
}

func (s *Server) handleGetReport(c *gin.Context) {
	report := s.reports.Get(c.Param("id"))
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "报告不存在"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// handleWS 升级连接并纳入报告推送
func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}
	s.hub.Serve(conn)
}
