package engine

import (
	"fmt"
	"sync"

	"github.com/gaokaodata/crawler/spider"
	"go.uber.org/zap"
)

/*
结果聚合器

记录同时进入当前顶层分支（如一个省份）的缓冲和全局缓冲；顶层分支遍历完成
时由遍历引擎触发Checkpoint，把该分支的缓冲交给存储后端落盘。检查点是单调
的：已落盘的分支缓冲不再接受追加，崩溃只会丢失未落盘的分支。

并行会话共用同一个聚合器，内部用互斥锁串行化Record/Checkpoint调用。
*/
type Aggregator struct {
	name   string // 任务名，作为落盘逻辑名的前缀
	repo   spider.DataRepository
	logger *zap.Logger

	mu       sync.Mutex
	branches map[string][]*spider.Record
	sealed   map[string]bool
	global   []*spider.Record
}

func NewAggregator(name string, repo spider.DataRepository, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		name:     name,
		repo:     repo,
		logger:   logger,
		branches: make(map[string][]*spider.Record),
		sealed:   make(map[string]bool),
	}
}

// 将一批记录按路径归入顶层分支缓冲和全局缓冲
// 分支已落盘后到达的记录被拒绝，调用方记日志排查，不会改写已落盘内容
func (a *Aggregator) Record(path *spider.SelectionPath, records []*spider.Record) error {
	if len(records) == 0 {
		return nil
	}
	branch := path.First()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed[branch] {
		return fmt.Errorf("branch %q already checkpointed, %d records rejected", branch, len(records))
	}
	a.branches[branch] = append(a.branches[branch], records...)
	a.global = append(a.global, records...)
	return nil
}

// 顶层分支完成时落盘该分支的缓冲并封存，重复调用幂等
func (a *Aggregator) Checkpoint(branch string) error {
	a.mu.Lock()
	if a.sealed[branch] {
		a.mu.Unlock()
		return nil
	}
	a.sealed[branch] = true
	records := a.branches[branch]
	a.mu.Unlock()

	if len(records) == 0 {
		a.logger.Debug("checkpoint with no records", zap.String("branch", branch))
		return nil
	}
	a.logger.Info("checkpoint",
		zap.String("branch", branch),
		zap.Int("records", len(records)),
	)
	if a.repo == nil {
		return nil
	}
	return a.repo.Save(a.name+"-"+branch, records...)
}

// 遍历结束或致命中止时落盘全局缓冲
func (a *Aggregator) Finalize() error {
	a.mu.Lock()
	records := a.global
	a.mu.Unlock()

	a.logger.Info("finalize", zap.Int("records", len(records)))
	if a.repo == nil || len(records) == 0 {
		return nil
	}
	return a.repo.Save(a.name, records...)
}

// 全局缓冲中的记录数
func (a *Aggregator) Total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.global)
}

// 某个顶层分支缓冲中的记录数
func (a *Aggregator) BranchTotal(branch string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.branches[branch])
}
