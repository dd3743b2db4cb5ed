package spider

import (
	"fmt"
	"strings"
)

// 筛选维度定义：年份、省份、校区、招生类型、科类、专业组等
// 每个维度绑定页面上的一个筛选控件，OptionJS/SelectJS由各院校的任务定义提供
type Facet struct {
	Key       string   `json:"key"`        // 稳定标识，如year、province
	Name      string   `json:"name"`       // 页面上的展示名，如"年份"、"省份"
	Required  bool     `json:"required"`   // 为false时该维度缺失直接下探，不算失败
	DependsOn []string `json:"depends_on"` // 读取本维度候选项前必须已选定的维度
	Selector  string   `json:"selector"`   // 筛选控件的容器选择器，探测控件是否存在
	OptionJS  string   `json:"option_js"`  // 返回当前可选项文本数组的页面脚本
	SelectJS  string   `json:"select_js"`  // 提交选择的页面脚本，接受目标文本，返回是否命中
}

// 有序的筛选维度列表，顺序即遍历下探的顺序
type FacetSpec []Facet

// 校验维度定义：key不能重复，依赖项只能指向更早的维度（链式DAG）
func (s FacetSpec) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.Key == "" {
			return fmt.Errorf("facet key can not be empty")
		}
		if _, ok := seen[f.Key]; ok {
			return fmt.Errorf("duplicate facet key: %s", f.Key)
		}
		for _, dep := range f.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("facet %s depends on %s which is not declared before it", f.Key, dep)
			}
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}

// 按key查找维度定义
func (s FacetSpec) Facet(key string) (Facet, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Facet{}, false
}

// 一次遍历中的当前选择路径，从根到当前深度每层一个键值对
// 只有创建它的遍历帧可以Push/Pop，产出记录时必须取Snapshot快照
type SelectionPath struct {
	keys   []string
	values map[string]string
}

func NewSelectionPath() *SelectionPath {
	return &SelectionPath{values: make(map[string]string)}
}

// 下探一层，追加一个维度的选择
func (p *SelectionPath) Push(key, label string) {
	p.keys = append(p.keys, key)
	p.values[key] = label
}

// 回溯一层，移除最近一次的选择
func (p *SelectionPath) Pop() {
	if len(p.keys) == 0 {
		return
	}
	last := p.keys[len(p.keys)-1]
	p.keys = p.keys[:len(p.keys)-1]
	delete(p.values, last)
}

func (p *SelectionPath) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *SelectionPath) Len() int {
	return len(p.keys)
}

// 判断依赖的维度是否已全部选定
func (p *SelectionPath) HasAll(deps []string) bool {
	for _, d := range deps {
		if _, ok := p.values[d]; !ok {
			return false
		}
	}
	return true
}

// 顶层分支的标签，作为落盘检查点的分支键
func (p *SelectionPath) First() string {
	if len(p.keys) == 0 {
		return ""
	}
	return p.values[p.keys[0]]
}

// 取不可变快照，之后路径的Push/Pop不会影响已产出的记录
func (p *SelectionPath) Snapshot() map[string]string {
	snap := make(map[string]string, len(p.values))
	for k, v := range p.values {
		snap[k] = v
	}
	return snap
}

// 日志用的路径描述，形如year=2024 province=北京
func (p *SelectionPath) String() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p.values[k])
	}
	return b.String()
}
