package bit

// 北京理工大学本科招生网的历年分数查询页
// 筛选链是标准的select下拉联动，结果区同页刷新

import (
	"fmt"

	"github.com/gaokaodata/crawler/layout"
	"github.com/gaokaodata/crawler/spider"
)

var Task = spider.NewTask(
	spider.WithName("bit_scores"),
	spider.WithSchool("北京理工大学"),
	spider.WithURL("https://admission.bit.edu.cn/f/article/lnfs"),
	spider.WithFacets(spider.FacetSpec{
		{
			Key:      "year",
			Name:     "年份",
			Required: true,
			Selector: "#sel-year",
			OptionJS: optionJS("#sel-year"),
			SelectJS: selectJS("#sel-year"),
		},
		{
			Key:       "province",
			Name:      "省份",
			Required:  true,
			DependsOn: []string{"year"},
			Selector:  "#sel-province",
			OptionJS:  optionJS("#sel-province"),
			SelectJS:  selectJS("#sel-province"),
		},
		{
			Key:       "admissionType",
			Name:      "招生类型",
			Required:  true,
			DependsOn: []string{"year", "province"},
			Selector:  "#sel-type",
			OptionJS:  optionJS("#sel-type"),
			SelectJS:  selectJS("#sel-type"),
		},
		{
			Key:       "category",
			Name:      "科类",
			Required:  true,
			DependsOn: []string{"year", "province", "admissionType"},
			Selector:  "#sel-category",
			OptionJS:  optionJS("#sel-category"),
			SelectJS:  selectJS("#sel-category"),
		},
		{
			// 新高考省份才有专业组下拉，旧高考省份该控件不渲染
			Key:       "specialtyGroup",
			Name:      "专业组",
			Required:  false,
			DependsOn: []string{"category"},
			Selector:  "#sel-group",
			OptionJS:  optionJS("#sel-group"),
			SelectJS:  selectJS("#sel-group"),
		},
	}),
	spider.WithLayouts(layout.TagGeneral, layout.TagByMajor),
	spider.WithResultJS(`() => {
		const el = document.querySelector('#score-result');
		return el ? el.outerHTML : '';
	}`),
	spider.WithSettleJS(`() => {
		const mask = document.querySelector('.loading-mask');
		return !mask || mask.style.display === 'none';
	}`),
)

func optionJS(sel string) string {
	return fmt.Sprintf(`() => Array.from(document.querySelectorAll('%s option'))
		.map(o => o.textContent.trim())`, sel)
}

func selectJS(sel string) string {
	return fmt.Sprintf(`(label) => {
		const el = document.querySelector('%s');
		const opt = Array.from(el.options).find(o => o.textContent.trim() === label);
		if (!opt) return false;
		el.value = opt.value;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`, sel)
}
