package nankai

// 南开大学招生网的录取分数页
// 筛选控件是标签页式的按钮组而非下拉框，结果表格套在多层容器里，
// 用XPath先定位结果容器再做布局识别

import (
	"fmt"

	"github.com/gaokaodata/crawler/layout"
	"github.com/gaokaodata/crawler/spider"
)

var Task = spider.NewTask(
	spider.WithName("nankai_scores"),
	spider.WithSchool("南开大学"),
	spider.WithURL("https://zsb.nankai.edu.cn/lqfs"),
	spider.WithFacets(spider.FacetSpec{
		{
			Key:      "year",
			Name:     "年份",
			Required: true,
			Selector: ".filter-year",
			OptionJS: tabOptionJS(".filter-year"),
			SelectJS: tabSelectJS(".filter-year"),
		},
		{
			Key:       "province",
			Name:      "省份",
			Required:  true,
			DependsOn: []string{"year"},
			Selector:  ".filter-province",
			OptionJS:  tabOptionJS(".filter-province"),
			SelectJS:  tabSelectJS(".filter-province"),
		},
		{
			Key:       "category",
			Name:      "科类",
			Required:  true,
			DependsOn: []string{"year", "province"},
			Selector:  ".filter-category",
			OptionJS:  tabOptionJS(".filter-category"),
			SelectJS:  tabSelectJS(".filter-category"),
		},
	}),
	spider.WithLayouts(layout.TagByMajor),
	spider.WithResultXPath(`//div[@class="score-list"]//table`),
	spider.WithSettleJS(`() => !document.querySelector('.score-list .spinner')`),
	spider.WithWaitTime(3),
)

func tabOptionJS(sel string) string {
	return fmt.Sprintf(`() => Array.from(document.querySelectorAll('%s li'))
		.map(li => li.textContent.trim())`, sel)
}

func tabSelectJS(sel string) string {
	return fmt.Sprintf(`(label) => {
		const li = Array.from(document.querySelectorAll('%s li'))
			.find(li => li.textContent.trim() === label);
		if (!li) return false;
		li.click();
		return true;
	}`, sel)
}
