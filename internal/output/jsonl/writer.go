// Package jsonl 实现分析报告的异步 JSONL 文件追加。
// JSON 编码在调用方完成（编码错误直接返回给调用方），
// 文件 I/O 在后台 goroutine 完成，Write 只负责投递。
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer 异步 JSONL 写入器
type Writer struct {
	// path 输出文件路径
	path string

	// lines 待写入的已编码行
	lines chan []byte
	// flushReq flush/close 应答通道
	flushReq chan chan error

	mu     sync.Mutex
	closed bool

	wg sync.WaitGroup
}

// NewWriter 创建 JSONL 写入器并启动后台写入循环
// 参数 path: 输出文件路径，目录不存在时自动创建
// 参数 bufferSize: 投递缓冲区大小，非正数时取 1000
func NewWriter(path string, bufferSize int) (*Writer, error) {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开输出文件失败: %w", err)
	}

	w := &Writer{
		path:     path,
		lines:    make(chan []byte, bufferSize),
		flushReq: make(chan chan error, 1),
	}

	w.wg.Add(1)
	go w.loop(f)

	return w, nil
}

// Write 追加一条 JSONL 记录
// 编码失败时立即返回错误；写入器已关闭时返回错误。
func (w *Writer) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("编码 JSON 失败: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("writer 已关闭")
	}
	w.lines <- b
	return nil
}

// Flush 等待已投递的记录全部落盘
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	done := make(chan error, 1)
	w.flushReq <- done
	return <-done
}

// Close 关闭写入器（隐含一次 flush）
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.wg.Wait()
		return nil
	}
	w.closed = true
	close(w.lines)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *Writer) loop(f *os.File) {
	defer w.wg.Done()
	defer f.Close()

	bw := bufio.NewWriterSize(f, 256<<10)

	writeLine := func(b []byte) {
		if _, err := bw.Write(b); err != nil {
			return
		}
		_ = bw.WriteByte('\n')
	}

	for {
		select {
		case b, ok := <-w.lines:
			if !ok {
				_ = bw.Flush()
				return
			}
			writeLine(b)

		case done := <-w.flushReq:
			// 先清空已投递的行再 flush
		drain:
			for {
				select {
				case b, ok := <-w.lines:
					if !ok {
						done <- bw.Flush()
						return
					}
					writeLine(b)
				default:
					break drain
				}
			}
			done <- bw.Flush()
		}
	}
}
