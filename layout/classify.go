package layout

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaokaodata/crawler/spider"
)

// 叶子上没有任何表格也没有任何数据行，可能只是合法的空叶子，由调用方决定
var ErrNoTable = fmt.Errorf("%w: no table found", spider.ErrClassification)

// 识别出的一张结果表，同一个叶子可能同时出现多张（如汇总表+分专业表）
type Table struct {
	Layout  *Layout
	Headers []string
	Rows    [][]string
}

/*
对结果区域的HTML做布局识别

逐个探测区域内的表格，提取表头后按注册顺序与各布局的必需表头集合比对，
先完全匹配者生效；表头无法匹配但存在数据行时返回unknown布局走按列位置的
降级映射；既无表格又无数据行时返回ErrNoTable。

布局每次叶子访问单独识别一次，同一省份年份的相邻叶子完全可能渲染不同布局。
*/
func Classify(html string, enabled []string) ([]*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", spider.ErrClassification, err)
	}

	var tables []*Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		headers, rows := extractTable(sel)
		if len(headers) == 0 && len(rows) == 0 {
			return
		}
		if l := match(headers, enabled); l != nil {
			tables = append(tables, &Table{Layout: l, Headers: headers, Rows: rows})
			return
		}
		if len(rows) > 0 {
			tables = append(tables, &Table{Layout: unknownLayout, Headers: headers, Rows: rows})
		}
	})
	if len(tables) == 0 {
		return nil, ErrNoTable
	}
	return tables, nil
}

// 从一个table节点提取表头文本和数据行单元格
// 表头取th单元格，没有th的表格视作无表头，所有行都算数据行
func extractTable(sel *goquery.Selection) (headers []string, rows [][]string) {
	sel.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, CleanCell(th.Text()))
	})
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, CleanCell(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return headers, rows
}

// 供非HTML来源（扫描件抽取结果）复用的表头匹配，匹配不上退到unknown布局
func MatchHeaders(headers []string, enabled []string) *Layout {
	if l := match(headers, enabled); l != nil {
		return l
	}
	return unknownLayout
}

// 按注册顺序尝试各布局，必需表头全部出现才算命中
func match(headers []string, enabled []string) *Layout {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}
	for _, l := range list {
		if !layoutEnabled(l.Tag, enabled) || len(l.Required) == 0 {
			continue
		}
		hit := true
		for _, r := range l.Required {
			if _, ok := set[r]; !ok {
				hit = false
				break
			}
		}
		if hit {
			return l
		}
	}
	return nil
}

func layoutEnabled(tag string, enabled []string) bool {
	if len(enabled) == 0 {
		return true
	}
	for _, t := range enabled {
		if t == tag {
			return true
		}
	}
	return false
}

// 清理单元格文本：去除首尾空白和不间断空格
func CleanCell(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}
