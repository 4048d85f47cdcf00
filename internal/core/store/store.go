// Package store 维护最近若干次分析的报告缓存。
// 供 HTTP 服务按运行标识查询；容量有界，按插入顺序淘汰最旧的报告。
package store

import (
	"sync"

	"trade-bias-analyzer/internal/core/model"
)

// Store 最近报告缓存
// 与批处理管线不同，HTTP 服务多 goroutine 并发读写，因此加读写锁保护。
// 返回的指针应视为只读。
type Store struct {
	mu sync.RWMutex

	// reports 按运行标识缓存报告
	reports map[string]*model.Report
	// order 插入顺序，用于容量淘汰与倒序列表
	order []string
	// capacity 最大保留数
	capacity int
}

// New 创建报告缓存
// 参数 capacity: 最大保留的报告数，非正数时取 100
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = 100
	}
	return &Store{
		reports:  make(map[string]*model.Report, capacity),
		capacity: capacity,
	}
}

// Put 写入一份报告
// 超过容量时淘汰最早写入的报告。
func (s *Store) Put(r *model.Report) {
	if r == nil || r.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = r

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.reports, oldest)
	}
}

// Get 按运行标识获取报告
// 返回值可能为 nil。
func (s *Store) Get(id string) *model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reports[id]
}

// List 按时间倒序返回当前缓存的全部报告
func (s *Store) List() []*model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Report, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if r, ok := s.reports[s.order[i]]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Len 当前缓存的报告数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
