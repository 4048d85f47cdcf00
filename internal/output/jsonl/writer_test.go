// Package jsonl 写入器测试
package jsonl

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type testRecord struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

func TestWriter_WriteAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reports.jsonl")

	w, err := NewWriter(path, 8)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := w.Write(testRecord{ID: "r", Value: float64(i)}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	var count int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec testRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("第 %d 行不是合法 JSON: %v", count+1, err)
		}
		if rec.Value != float64(count) {
			t.Fatalf("Value=%f, want %d（应保持写入顺序）", rec.Value, count)
		}
		count++
	}
	if count != 5 {
		t.Fatalf("count=%d, want 5", count)
	}
}

func TestWriter_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	w, err := NewWriter(path, 8)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	if err := w.Write(testRecord{ID: "a", Value: 1}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("flush 后文件不应为空")
	}
}

func TestWriter_WriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	w, err := NewWriter(path, 8)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := w.Write(testRecord{ID: "a"}); err == nil {
		t.Fatalf("关闭后写入应返回错误")
	}
}

func TestWriter_MarshalError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	w, err := NewWriter(path, 8)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	// channel 不可 JSON 编码
	if err := w.Write(make(chan int)); err == nil {
		t.Fatalf("不可编码的值应返回错误")
	}
}
