package hitjs

// 哈尔滨工业大学的分数查询页，筛选维度用JS模板动态生成
// 该站三个校区共用一套页面，维度链里多一层校区选择

import (
	"github.com/gaokaodata/crawler/layout"
	"github.com/gaokaodata/crawler/spider"
)

var Portal = &spider.PortalTemplate{
	Name:     "js_hit_scores",
	School:   "哈尔滨工业大学",
	URL:      "https://zsb.hit.edu.cn/information/score",
	WaitTime: 2,
	Layouts:  []string{layout.TagGeneral, layout.TagByMajor},
	SettleJS: `() => !document.querySelector('.el-loading-mask')`,
	ResultJS: `() => {
		const el = document.querySelector('.score-table');
		return el ? el.outerHTML : '';
	}`,
	FacetsJS: `
		var chain = ["year", "campus", "province", "category"];
		var names = {year: "年份", campus: "校区", province: "省份", category: "科类"};
		var arr = new Array();
		for (var i = 0; i < chain.length; i++) {
			var key = chain[i];
			var sel = "#filter-" + key;
			arr.push({
				Key: key,
				Name: names[key],
				Required: key !== "campus",
				DependsOn: chain.slice(0, i),
				Selector: sel,
				OptionJS: "() => Array.from(document.querySelectorAll('" + sel + " option')).map(o => o.textContent.trim())",
				SelectJS: "(label) => {" +
					"const el = document.querySelector('" + sel + "');" +
					"const opt = Array.from(el.options).find(o => o.textContent.trim() === label);" +
					"if (!opt) return false;" +
					"el.value = opt.value;" +
					"el.dispatchEvent(new Event('change', { bubbles: true }));" +
					"return true; }",
			});
		}
		AddFacets(arr);
	`,
}
