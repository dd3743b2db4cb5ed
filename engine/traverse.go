package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/gaokaodata/crawler/browser"
	"github.com/gaokaodata/crawler/layout"
	"github.com/gaokaodata/crawler/spider"
	"go.uber.org/zap"
)

// 结果区域的默认取法：整个body，布局识别自己在里面找表格
const defaultResultJS = `() => document.body.outerHTML`

const pageHTMLJS = `() => document.documentElement.outerHTML`

// 一次遍历的运行状态，归属于单个引擎实例，不跨会话共享
type RunState struct {
	Path     *spider.SelectionPath
	Leaves   int // 访问过的叶子数
	Records  int // 产出的记录数
	Failures []BranchFailure
}

// 一条被跳过的分支及其完整选择路径，用于事后诊断
type BranchFailure struct {
	Facet string
	Label string
	Path  map[string]string
	Err   string
}

/*
级联筛选遍历引擎

对任务的筛选维度链做深度优先枚举：每层读出当前候选项，逐个提交选择后下
探，走到链尾即叶子，做表格布局识别和行归一化，产出的记录连同路径快照交
给聚合器。任意单分支的失败（选项失效、联动超时、布局识别失败）都收敛为
跳过该分支并记录，兄弟分支继续；只有浏览器会话不可用才中止整次遍历，中
止前把聚合器已缓冲的内容落盘。

候选项按站点返回的顺序处理，不另行排序，保证可复现。
一个引擎实例只操作一个浏览器会话，同一时刻只有一个遍历帧在动页面。
*/
type Engine struct {
	options
	task   *spider.Task
	driver browser.Driver
	agg    *Aggregator
	state  *RunState
}

func New(task *spider.Task, driver browser.Driver, agg *Aggregator, opts ...Option) *Engine {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	e := &Engine{
		task:   task,
		driver: driver,
		agg:    agg,
	}
	e.options = options
	e.state = &RunState{Path: spider.NewSelectionPath()}
	return e
}

func (e *Engine) State() *RunState {
	return e.state
}

// 执行完整遍历：进入查询页、枚举整棵维度树、落盘全局缓冲
// 致命失败也会先落盘已缓冲的记录再上抛
func (e *Engine) Run(ctx context.Context) error {
	if err := e.crawl(ctx); err != nil {
		if ferr := e.agg.Finalize(); ferr != nil {
			e.logger.Error("finalize after abort failed", zap.Error(ferr))
		}
		return err
	}
	return e.agg.Finalize()
}

// 进入查询页并枚举整棵维度树，不触发全局落盘（并行模式下每分支调用）
func (e *Engine) crawl(ctx context.Context) error {
	if err := e.task.Facets.Validate(); err != nil {
		return fmt.Errorf("invalid facet spec for task %s: %w", e.task.Name, err)
	}
	if err := e.driver.Navigate(ctx, e.task.URL); err != nil {
		return spider.ResourceFailure(fmt.Errorf("navigate %s: %v", e.task.URL, err))
	}
	return e.enumerate(ctx, 0)
}

// 枚举第depth层维度；只有资源失败才会作为error返回
func (e *Engine) enumerate(ctx context.Context, depth int) error {
	if ctx.Err() != nil {
		return spider.ResourceFailure(ctx.Err())
	}
	if depth == len(e.task.Facets) {
		return e.leaf(ctx)
	}
	f := e.task.Facets[depth]

	// 依赖的维度在当前路径中缺失（上游可选维度缺位），本维度的候选集无效，
	// 按维度缺失处理直接下探
	if !e.state.Path.HasAll(f.DependsOn) {
		e.logger.Debug("facet dependencies absent, skip level",
			zap.String("facet", f.Key),
			zap.String("path", e.state.Path.String()),
		)
		return e.enumerate(ctx, depth+1)
	}

	labels, err := e.readOptions(ctx, f)
	if err != nil {
		if errors.Is(err, spider.ErrResource) {
			return err
		}
		e.skipBranch(f.Key, "", err)
		return nil
	}
	if len(labels) == 0 {
		if f.Required {
			// 必选维度结构性缺失是运行时才发现的事实，跳过子树而不是崩溃
			e.skipBranch(f.Key, "", fmt.Errorf("required facet absent at %s", e.state.Path.String()))
			return nil
		}
		// 可选维度缺失：该维度不进入路径，当前位置直接视作下一层
		return e.enumerate(ctx, depth+1)
	}

	for _, label := range labels {
		if depth == 0 && e.onlyTop != "" && label != e.onlyTop {
			continue
		}
		if err := e.descend(ctx, depth, f, label); err != nil {
			return err
		}
		if depth == 0 {
			if err := e.agg.Checkpoint(label); err != nil {
				e.logger.Error("checkpoint failed",
					zap.String("branch", label),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// 提交一个选项并下探；选择失败按退避重试，重试耗尽则跳过该标签，兄弟标签继续
func (e *Engine) descend(ctx context.Context, depth int, f spider.Facet, label string) error {
	if e.task.Limit != nil {
		if err := e.task.Limit.Wait(ctx); err != nil {
			return spider.ResourceFailure(err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= e.task.Retry; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return spider.ResourceFailure(ctx.Err())
			case <-time.After(e.backoff << (attempt - 1)):
			}
		}
		lastErr = e.selectOption(ctx, f, label)
		if lastErr == nil {
			break
		}
		if errors.Is(lastErr, spider.ErrResource) {
			return lastErr
		}
	}
	if lastErr != nil {
		e.skipBranch(f.Key, label, lastErr)
		return nil
	}

	if e.task.WaitTime > 0 {
		time.Sleep(time.Duration(rand.Int63n(e.task.WaitTime*1000)) * time.Millisecond)
	}

	e.state.Path.Push(f.Key, label)
	defer e.state.Path.Pop()
	// 本层选择已提交，下游维度的候选集全部失效，由下一层重新读取
	return e.enumerate(ctx, depth+1)
}

// 读取一个维度当前的候选项；控件不存在视为维度在此处合法缺失，返回空集
func (e *Engine) readOptions(ctx context.Context, f spider.Facet) ([]string, error) {
	if f.Selector != "" {
		if err := e.driver.WaitForSelector(ctx, f.Selector, e.probeTimeout); err != nil {
			if ctx.Err() != nil {
				return nil, spider.ResourceFailure(ctx.Err())
			}
			return nil, nil
		}
	}

	octx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	raw, err := e.driver.EvaluateInPage(octx, f.OptionJS)
	if err != nil {
		if ctx.Err() != nil {
			return nil, spider.ResourceFailure(ctx.Err())
		}
		return nil, spider.TimeoutFailure(f.Key, err)
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("%w: facet %s options not a string array: %v", spider.ErrSelection, f.Key, err)
	}
	out := labels[:0]
	for _, l := range labels {
		l = layout.CleanCell(l)
		if l == "" || strings.Contains(l, "请选择") {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// 提交一次选择并等待联动稳定
func (e *Engine) selectOption(ctx context.Context, f spider.Facet, label string) error {
	octx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	raw, err := e.driver.EvaluateInPage(octx, f.SelectJS, label)
	if err != nil {
		if ctx.Err() != nil {
			return spider.ResourceFailure(ctx.Err())
		}
		return spider.TimeoutFailure(f.Key, err)
	}
	var hit bool
	if err := json.Unmarshal(raw, &hit); err != nil || !hit {
		return spider.SelectionFailure(f.Key, label)
	}
	return e.waitSettle(ctx, f)
}

// 等待筛选联动完成：轮询任务定义的稳定判据，超出上限报TimeoutFailure
func (e *Engine) waitSettle(ctx context.Context, f spider.Facet) error {
	if e.task.SettleJS == "" {
		select {
		case <-ctx.Done():
			return spider.ResourceFailure(ctx.Err())
		case <-time.After(300 * time.Millisecond):
		}
		return nil
	}
	deadline := time.Now().Add(e.task.SettleTimeout)
	for {
		octx, cancel := context.WithTimeout(ctx, e.opTimeout)
		raw, err := e.driver.EvaluateInPage(octx, e.task.SettleJS)
		cancel()
		if err == nil {
			var done bool
			if json.Unmarshal(raw, &done) == nil && done {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return spider.TimeoutFailure(f.Key, errors.New("ui did not settle"))
		}
		select {
		case <-ctx.Done():
			return spider.ResourceFailure(ctx.Err())
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// 叶子处理：取结果区域HTML、识别布局、逐行归一化，记录交给聚合器
func (e *Engine) leaf(ctx context.Context) error {
	html, err := e.resultHTML(ctx)
	if err != nil {
		if errors.Is(err, spider.ErrResource) {
			return err
		}
		e.skipBranch("leaf", "", err)
		return nil
	}

	tables, err := layout.Classify(html, e.task.Layouts)
	if errors.Is(err, layout.ErrNoTable) {
		// 合法的空叶子，零记录回溯
		e.state.Leaves++
		e.logger.Debug("empty leaf", zap.String("path", e.state.Path.String()))
		return nil
	}
	if err != nil {
		e.skipBranch("leaf", "", err)
		return nil
	}

	snap := e.state.Path.Snapshot()
	var records []*spider.Record
	for _, tb := range tables {
		for _, row := range tb.Rows {
			rec, ok := layout.Normalize(tb.Layout, tb.Headers, row, snap, e.task.GroupRules)
			if !ok {
				continue
			}
			rec.School = e.task.School
			records = append(records, rec)
		}
	}

	e.state.Leaves++
	if len(records) == 0 {
		return nil
	}
	e.state.Records += len(records)
	e.logger.Debug("leaf records",
		zap.String("path", e.state.Path.String()),
		zap.Int("count", len(records)),
	)
	if err := e.agg.Record(e.state.Path, records); err != nil {
		e.logger.Error("record rejected", zap.Error(err))
	}
	return nil
}

// 取结果区域HTML，任务配置了XPath时先从整页定位容器
func (e *Engine) resultHTML(ctx context.Context) (string, error) {
	octx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	js := e.task.ResultJS
	if e.task.ResultXPath != "" {
		js = pageHTMLJS
	} else if js == "" {
		js = defaultResultJS
	}
	raw, err := e.driver.EvaluateInPage(octx, js)
	if err != nil {
		if ctx.Err() != nil {
			return "", spider.ResourceFailure(ctx.Err())
		}
		return "", fmt.Errorf("%w: read result html: %v", spider.ErrClassification, err)
	}
	var html string
	if err := json.Unmarshal(raw, &html); err != nil {
		return "", fmt.Errorf("%w: result html not a string: %v", spider.ErrClassification, err)
	}
	if e.task.ResultXPath != "" {
		return layout.ExtractByXPath(html, e.task.ResultXPath)
	}
	return html, nil
}

// 单分支失败收敛点：带完整路径记入运行状态并告警，必要时留一张诊断截图
func (e *Engine) skipBranch(facetKey, label string, err error) {
	e.state.Failures = append(e.state.Failures, BranchFailure{
		Facet: facetKey,
		Label: label,
		Path:  e.state.Path.Snapshot(),
		Err:   err.Error(),
	})
	e.logger.Warn("branch skipped",
		zap.String("facet", facetKey),
		zap.String("label", label),
		zap.String("path", e.state.Path.String()),
		zap.Error(err),
	)
	if e.screenshotDir != "" {
		name := fmt.Sprintf("%s-fail-%d.png", e.task.Name, len(e.state.Failures))
		if serr := e.driver.Screenshot(filepath.Join(e.screenshotDir, name)); serr != nil {
			e.logger.Debug("diagnostic screenshot failed", zap.Error(serr))
		}
	}
}
