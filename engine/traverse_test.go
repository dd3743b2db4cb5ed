package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gaokaodata/crawler/layout"
	"github.com/gaokaodata/crawler/spider"
	"github.com/stretchr/testify/assert"
)

// 模拟一个级联筛选查询页：按当前已选维度给出候选项，叶子渲染表格HTML
// OptionJS/SelectJS约定为"options:<key>"和"select:<key>"，便于直接解释
type fakeDriver struct {
	mu       sync.Mutex
	options  func(key string, selected map[string]string) []string
	html     func(selected map[string]string) string
	selected map[string]string
	order    []string // 维度键的声明顺序，用于失效下游选择

	failSelect map[string]error // "key/label"→错误，模拟选项失效
	navErr     error
	reads      []string // 记录options读取时已选定的维度，校验依赖顺序
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		selected:   make(map[string]string),
		failSelect: make(map[string]error),
	}
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	return d.navErr
}

func (d *fakeDriver) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (d *fakeDriver) EvaluateInPage(ctx context.Context, js string, args ...interface{}) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case js == "settle":
		return json.Marshal(true)
	case strings.HasPrefix(js, "options:"):
		key := strings.TrimPrefix(js, "options:")
		var deps []string
		for k := range d.selected {
			deps = append(deps, k)
		}
		d.reads = append(d.reads, fmt.Sprintf("%s<-%s", key, strings.Join(deps, ",")))
		return json.Marshal(d.options(key, d.snapshot()))
	case strings.HasPrefix(js, "select:"):
		key := strings.TrimPrefix(js, "select:")
		label := args[0].(string)
		if err, ok := d.failSelect[key+"/"+label]; ok {
			if errors.Is(err, spider.ErrSelection) {
				return json.Marshal(false)
			}
			return nil, err
		}
		found := false
		for _, l := range d.options(key, d.snapshot()) {
			if l == label {
				found = true
				break
			}
		}
		if !found {
			return json.Marshal(false)
		}
		d.selected[key] = label
		// 下游维度的旧选择全部失效
		after := false
		for _, k := range d.order {
			if after {
				delete(d.selected, k)
			}
			if k == key {
				after = true
			}
		}
		return json.Marshal(true)
	default:
		// 结果区域HTML
		return json.Marshal(d.html(d.snapshot()))
	}
}

func (d *fakeDriver) Screenshot(path string) error { return nil }
func (d *fakeDriver) Close() error                 { return nil }

func (d *fakeDriver) snapshot() map[string]string {
	m := make(map[string]string, len(d.selected))
	for k, v := range d.selected {
		m[k] = v
	}
	return m
}

// 捕获落盘调用的假存储
type fakeRepo struct {
	mu    sync.Mutex
	saves map[string]int
	order []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saves: map[string]int{}}
}

func (r *fakeRepo) Save(name string, records ...*spider.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves[name] += len(records)
	r.order = append(r.order, name)
	return nil
}

func testFacet(key string, required bool, deps ...string) spider.Facet {
	return spider.Facet{
		Key:       key,
		Required:  required,
		DependsOn: deps,
		OptionJS:  "options:" + key,
		SelectJS:  "select:" + key,
	}
}

func rowHTML(major, low, high, rank string) string {
	return fmt.Sprintf(`<table>
	  <tr><th>专业</th><th>最低分</th><th>最高分</th><th>最低分排名</th></tr>
	  <tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>
	</table>`, major, low, high, rank)
}

func newTestTask(facets spider.FacetSpec) *spider.Task {
	return spider.NewTask(
		spider.WithName("test_school"),
		spider.WithSchool("测试大学"),
		spider.WithURL("https://zsb.example.edu.cn/lqcx"),
		spider.WithFacets(facets),
		spider.WithWaitTime(0),
		spider.WithSettleJS("settle"),
		spider.WithRetry(1),
	)
}

// 完整遍历：每个叶子一行记录，顶层分支逐个落盘，结束后落盘全量
func TestEngine_Run(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year", "province", "category"}
	d.options = func(key string, sel map[string]string) []string {
		switch key {
		case "year":
			return []string{"2024", "2023"}
		case "province":
			return []string{"北京", "江苏"}
		case "category":
			return []string{"理科"}
		}
		return nil
	}
	d.html = func(sel map[string]string) string {
		return rowHTML("计算机科学", "610", "640", "150")
	}

	task := newTestTask(spider.FacetSpec{
		testFacet("year", true),
		testFacet("province", true, "year"),
		testFacet("category", false, "year", "province"),
	})
	repo := newFakeRepo()
	agg := NewAggregator(task.Name, repo, nil)
	e := New(task, d, agg)

	err := e.Run(context.Background())
	assert.NoError(t, err)

	// 2年份×2省份×1科类 = 4个叶子，每叶一行
	assert.Equal(t, 4, e.State().Leaves)
	assert.Equal(t, 4, e.State().Records)
	assert.Empty(t, e.State().Failures)

	// 顶层分支各自落盘，最后是全量
	assert.Equal(t, 2, repo.saves["test_school-2024"])
	assert.Equal(t, 2, repo.saves["test_school-2023"])
	assert.Equal(t, 4, repo.saves["test_school"])
	assert.Equal(t, "test_school", repo.order[len(repo.order)-1])
}

// 读取维度候选项时其全部依赖必须已选定
func TestEngine_DependencyOrder(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year", "province"}
	d.options = func(key string, sel map[string]string) []string {
		switch key {
		case "year":
			return []string{"2024"}
		case "province":
			// 依赖未选定时模拟站点返回无效数据
			if sel["year"] == "" {
				t.Fatal("province options read before year selected")
			}
			return []string{"北京"}
		}
		return nil
	}
	d.html = func(sel map[string]string) string {
		return rowHTML("软件工程", "600", "630", "220")
	}

	task := newTestTask(spider.FacetSpec{
		testFacet("year", true),
		testFacet("province", true, "year"),
	})
	agg := NewAggregator(task.Name, newFakeRepo(), nil)
	err := New(task, d, agg).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, agg.Total())
}

// 场景C：某个科类选项失效时跳过该分支，兄弟科类继续，错误不越过引擎边界
func TestEngine_SelectionFailureSkipsBranch(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year", "category"}
	d.options = func(key string, sel map[string]string) []string {
		switch key {
		case "year":
			return []string{"2024"}
		case "category":
			return []string{"综合改革", "理科", "文科"}
		}
		return nil
	}
	d.failSelect["category/综合改革"] = spider.ErrSelection
	d.html = func(sel map[string]string) string {
		return rowHTML("法学", "590", "615", "800")
	}

	task := newTestTask(spider.FacetSpec{
		testFacet("year", true),
		testFacet("category", true, "year"),
	})
	agg := NewAggregator(task.Name, newFakeRepo(), nil)
	e := New(task, d, agg, WithBackoff(time.Millisecond))

	err := e.Run(context.Background())
	assert.NoError(t, err)
	// 三个科类里失效一个，剩下两个叶子照常产出
	assert.Equal(t, 2, e.State().Leaves)
	assert.Equal(t, 2, agg.Total())
	assert.Len(t, e.State().Failures, 1)
	assert.Equal(t, "category", e.State().Failures[0].Facet)
	assert.Equal(t, "综合改革", e.State().Failures[0].Label)
}

// 可选维度候选集为空：恰好访问一次叶子，该维度不出现在路径中
func TestEngine_OptionalFacetAbsent(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year", "specialtyGroup"}
	d.options = func(key string, sel map[string]string) []string {
		switch key {
		case "year":
			return []string{"2024"}
		case "specialtyGroup":
			return nil
		}
		return nil
	}
	d.html = func(sel map[string]string) string {
		assert.Equal(t, "", sel["specialtyGroup"])
		return rowHTML("口腔医学", "640", "668", "90")
	}

	task := newTestTask(spider.FacetSpec{
		testFacet("year", true),
		testFacet("specialtyGroup", false, "year"),
	})
	agg := NewAggregator(task.Name, newFakeRepo(), nil)
	e := New(task, d, agg)

	err := e.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, e.State().Leaves)
	assert.Equal(t, 1, agg.Total())
}

// 必选维度结构性缺失：跳过子树并记录，不崩溃
func TestEngine_RequiredFacetAbsent(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year", "province"}
	d.options = func(key string, sel map[string]string) []string {
		switch key {
		case "year":
			return []string{"2024"}
		case "province":
			return nil
		}
		return nil
	}
	d.html = func(sel map[string]string) string {
		t.Fatal("leaf should not be reached")
		return ""
	}

	task := newTestTask(spider.FacetSpec{
		testFacet("year", true),
		testFacet("province", true, "year"),
	})
	agg := NewAggregator(task.Name, newFakeRepo(), nil)
	e := New(task, d, agg)

	err := e.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, e.State().Leaves)
	assert.Len(t, e.State().Failures, 1)
}

// 场景D：叶子上没有任何表格也没有数据行，零记录回溯，不算错误
func TestEngine_EmptyLeaf(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year"}
	d.options = func(key string, sel map[string]string) []string {
		return []string{"2024"}
	}
	d.html = func(sel map[string]string) string {
		return `<div class="result"><p>暂无数据</p></div>`
	}

	task := newTestTask(spider.FacetSpec{testFacet("year", true)})
	agg := NewAggregator(task.Name, newFakeRepo(), nil)
	e := New(task, d, agg)

	err := e.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, e.State().Leaves)
	assert.Equal(t, 0, agg.Total())
	assert.Empty(t, e.State().Failures)
}

// 叶子记录的路径快照：表格缺列由筛选链回填
func TestEngine_PathFallbackIntoRecords(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year", "province"}
	d.options = func(key string, sel map[string]string) []string {
		switch key {
		case "year":
			return []string{"2024"}
		case "province":
			return []string{"浙江"}
		}
		return nil
	}
	d.html = func(sel map[string]string) string {
		return rowHTML("临床医学", "650", "671", "60")
	}

	task := newTestTask(spider.FacetSpec{
		testFacet("year", true),
		testFacet("province", true, "year"),
	})
	var got []*spider.Record
	repo := repoFunc(func(name string, records ...*spider.Record) error {
		got = append(got, records...)
		return nil
	})
	agg := NewAggregator(task.Name, repo, nil)

	err := New(task, d, agg).Run(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Equal(t, "测试大学", got[0].School)
	assert.Equal(t, "2024", got[0].Year)
	assert.Equal(t, "浙江", got[0].Province)
	assert.Equal(t, "临床医学", got[0].Major)
}

// 入口页打不开属于资源失败：错误上抛，但落盘流程仍然执行
func TestEngine_NavigateFailureIsFatal(t *testing.T) {
	d := newFakeDriver()
	d.navErr = errors.New("browser gone")
	task := newTestTask(spider.FacetSpec{testFacet("year", true)})
	agg := NewAggregator(task.Name, newFakeRepo(), nil)

	err := New(task, d, agg).Run(context.Background())
	assert.True(t, errors.Is(err, spider.ErrResource))
}

// 布局限制传递到叶子识别：未启用的布局降级为unknown
func TestEngine_LayoutFilter(t *testing.T) {
	d := newFakeDriver()
	d.order = []string{"year"}
	d.options = func(key string, sel map[string]string) []string {
		return []string{"2024"}
	}
	d.html = func(sel map[string]string) string {
		return rowHTML("计算机科学", "610", "640", "150")
	}

	task := newTestTask(spider.FacetSpec{testFacet("year", true)})
	spider.WithLayouts(layout.TagGeneral)(&task.Options)

	var got []*spider.Record
	repo := repoFunc(func(name string, records ...*spider.Record) error {
		got = append(got, records...)
		return nil
	})
	agg := NewAggregator(task.Name, repo, nil)
	err := New(task, d, agg).Run(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Equal(t, layout.TagUnknown, got[0].Extra["layout"])
}

// 未配置稳定判据时的固定等待同样响应取消，取消后按资源失败上抛
func TestEngine_SettleWaitHonorsCancel(t *testing.T) {
	task := spider.NewTask(
		spider.WithName("test_school"),
		spider.WithFacets(spider.FacetSpec{testFacet("year", true)}),
		spider.WithWaitTime(0),
	)
	e := New(task, newFakeDriver(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := e.waitSettle(ctx, spider.Facet{Key: "year"})
	assert.True(t, errors.Is(err, spider.ErrResource))
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

type repoFunc func(name string, records ...*spider.Record) error

func (f repoFunc) Save(name string, records ...*spider.Record) error {
	return f(name, records...)
}
