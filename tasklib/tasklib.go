package tasklib

// 院校门户注册表：每个院校的查询页对应一个任务定义，启动时经init注册
// 门户定义有两种写法：Go代码直接构造，或用JS模板动态生成筛选维度

import (
	"fmt"

	"github.com/gaokaodata/crawler/spider"
	"github.com/robertkrimen/otto"
)

var Store = &portalStore{
	Hash: map[string]*spider.Task{},
}

type portalStore struct {
	List []*spider.Task
	Hash map[string]*spider.Task
}

func (s *portalStore) Add(task *spider.Task) {
	s.Hash[task.Name] = task
	s.List = append(s.List, task)
}

func (s *portalStore) Get(name string) (*spider.Task, bool) {
	t, ok := s.Hash[name]
	return t, ok
}

// 执行模板脚本得到筛选维度链，转换为任务后注册
func (s *portalStore) AddJSPortal(m *spider.PortalTemplate) error {
	vm := otto.New()
	if err := vm.Set("AddFacets", convertJSFacets); err != nil {
		return err
	}
	v, err := vm.Eval(m.FacetsJS)
	if err != nil {
		return fmt.Errorf("eval portal facets %s: %w", m.Name, err)
	}
	e, err := v.Export()
	if err != nil {
		return err
	}
	facets, ok := e.(spider.FacetSpec)
	if !ok {
		return fmt.Errorf("portal %s: facets script must end with AddFacets(arr)", m.Name)
	}
	if err := facets.Validate(); err != nil {
		return fmt.Errorf("portal %s: %w", m.Name, err)
	}

	task := spider.NewTask(
		spider.WithName(m.Name),
		spider.WithSchool(m.School),
		spider.WithURL(m.URL),
		spider.WithCookie(m.Cookie),
		spider.WithWaitTime(m.WaitTime),
		spider.WithFacets(facets),
		spider.WithLayouts(m.Layouts...),
		spider.WithSettleJS(m.SettleJS),
		spider.WithResultJS(m.ResultJS),
	)
	s.Add(task)
	return nil
}

// 把JS环境中的维度描述转换为Go的Facet
func convertJSFacets(jfacets []map[string]interface{}) spider.FacetSpec {
	facets := make(spider.FacetSpec, 0, len(jfacets))
	for _, jf := range jfacets {
		f := spider.Facet{}
		f.Key, _ = jf["Key"].(string)
		f.Name, _ = jf["Name"].(string)
		f.Required, _ = jf["Required"].(bool)
		f.Selector, _ = jf["Selector"].(string)
		f.OptionJS, _ = jf["OptionJS"].(string)
		f.SelectJS, _ = jf["SelectJS"].(string)
		switch deps := jf["DependsOn"].(type) {
		case []string:
			f.DependsOn = deps
		case []interface{}:
			for _, d := range deps {
				if ds, ok := d.(string); ok {
					f.DependsOn = append(f.DependsOn, ds)
				}
			}
		}
		facets = append(facets, f)
	}
	return facets
}
