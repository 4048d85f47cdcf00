// Package server HTTP 接口测试
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"trade-bias-analyzer/internal/config"
	"trade-bias-analyzer/internal/core/model"
)

func newTestServer() *Server {
	cfg := config.Default()
	cfg.Server.Enabled = true
	return New(cfg, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code=%d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status=%v, want ok", body["status"])
	}
}

func TestAnalyze_RawBody(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	csv := `date,symbol,action,quantity,price
2024-01-02,AAPL,buy,10,10
2024-01-05,AAPL,sell,10,15
`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Report model.Report `json:"report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Report.Stats.TotalTrades != 2 {
		t.Fatalf("TotalTrades=%d, want 2", resp.Report.Stats.TotalTrades)
	}
	if resp.Report.Stats.WinRate != 100 {
		t.Fatalf("WinRate=%f, want 100", resp.Report.Stats.WinRate)
	}
	if resp.Report.ID == "" {
		t.Fatalf("报告应带有 ID")
	}

	// 分析完成后报告应可按 ID 查询
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/reports/"+resp.Report.ID, nil)
	router.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("按 ID 查询: code=%d", w2.Code)
	}
}

func TestAnalyze_SkippedRows(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	csv := `date,symbol,action,quantity,price
2024-01-02,AAPL,buy,10,10
not-a-date,AAPL,buy,10,10
`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(csv))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Report      model.Report `json:"report"`
		SkippedRows []string     `json:"skipped_rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.SkippedRows) != 1 {
		t.Fatalf("SkippedRows=%v, want 1", resp.SkippedRows)
	}
	if resp.Report.Stats.TotalTrades != 1 {
		t.Fatalf("TotalTrades=%d, want 1", resp.Report.Stats.TotalTrades)
	}
}

func TestAnalyze_BadCSV(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	// 缺少必需列应返回 422
	csv := "date,symbol,price\n2024-01-02,AAPL,10\n"
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(csv))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code=%d, want 422", w.Code)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/run-0", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("code=%d, want 404", w.Code)
	}
}

func TestListReports(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	csv := "date,symbol,action,quantity,price\n2024-01-02,AAPL,buy,10,10\n"
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(csv))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("code=%d", w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code=%d, want 200", w.Code)
	}
	var resp struct {
		Reports []model.Report `json:"reports"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Reports) != 2 {
		t.Fatalf("Reports=%d, want 2", len(resp.Reports))
	}
}
