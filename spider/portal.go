package spider

// JS模板定义的门户：筛选维度由嵌入的脚本生成，便于不改代码调整维度链
type PortalTemplate struct {
	Name     string
	School   string
	URL      string
	Cookie   string
	WaitTime int64
	Layouts  []string
	SettleJS string
	ResultJS string
	// 构造维度数组并以AddFacets(arr)结尾的脚本
	FacetsJS string
}
