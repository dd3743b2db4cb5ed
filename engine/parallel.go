package engine

import (
	"context"
	"fmt"

	"github.com/gaokaodata/crawler/browser"
	"github.com/gaokaodata/crawler/spider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

/*
按顶层维度分支并行遍历

先用一个探测会话读出顶层维度（通常是省份）的候选集，然后为每个标签创建
独立的浏览器会话和引擎实例并行下探，并行度由任务的Parallel控制。会话之
间不共享任何页面状态，唯一共享的是聚合器，其内部自行串行化。

任一会话出资源失败会取消同组其余会话；已缓冲的记录在收尾时统一落盘。
*/
func RunParallel(ctx context.Context, task *spider.Task, factory browser.Factory, agg *Aggregator, opts ...Option) error {
	if task.Parallel <= 1 || len(task.Facets) == 0 {
		driver, err := factory.NewDriver(ctx)
		if err != nil {
			return spider.ResourceFailure(err)
		}
		defer driver.Close()
		return New(task, driver, agg, opts...).Run(ctx)
	}

	tops, err := probeTopLabels(ctx, task, factory, opts...)
	if err != nil {
		if ferr := agg.Finalize(); ferr != nil {
			task.Logger().Error("finalize after probe failure failed", zap.Error(ferr))
		}
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(task.Parallel)
	for _, label := range tops {
		label := label
		g.Go(func() error {
			driver, err := factory.NewDriver(gctx)
			if err != nil {
				return spider.ResourceFailure(fmt.Errorf("session for branch %s: %v", label, err))
			}
			defer driver.Close()
			e := New(task, driver, agg, append(opts, withOnlyTop(label))...)
			return e.crawl(gctx)
		})
	}

	runErr := g.Wait()
	if ferr := agg.Finalize(); ferr != nil && runErr == nil {
		runErr = ferr
	}
	return runErr
}

// 用一次性会话读出顶层维度的候选集
func probeTopLabels(ctx context.Context, task *spider.Task, factory browser.Factory, opts ...Option) ([]string, error) {
	driver, err := factory.NewDriver(ctx)
	if err != nil {
		return nil, spider.ResourceFailure(err)
	}
	defer driver.Close()

	if err := task.Facets.Validate(); err != nil {
		return nil, fmt.Errorf("invalid facet spec for task %s: %w", task.Name, err)
	}
	if err := driver.Navigate(ctx, task.URL); err != nil {
		return nil, spider.ResourceFailure(fmt.Errorf("navigate %s: %v", task.URL, err))
	}
	probe := New(task, driver, nil, opts...)
	labels, err := probe.readOptions(ctx, task.Facets[0])
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("top facet %s offered no options", task.Facets[0].Key)
	}
	return labels, nil
}
