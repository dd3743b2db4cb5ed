package layout

import (
	"github.com/gaokaodata/crawler/spider"
	"go.uber.org/zap"
)

// 筛选链可以钉住但表格常常省略的维度，表格缺列时按此回填
var facetFields = map[string]string{
	"year":           "year",
	"province":       "province",
	"campus":         "campus",
	"admissionType":  "admissionType",
	"category":       "category",
	"specialtyGroup": "specialtyGroup",
}

/*
将一行原始单元格归一化为一条记录

取值优先级：表头直接命中的单元格值 > 筛选链中对应维度的已选标签 > 空串。
专业组在表格和筛选链都没有给出时，按科类等价规则推断（启发式，可覆盖）。
行的列数少于布局要求时跳过该行，返回ok=false，不算错误。

纯函数：相同的(布局,表头,单元格,路径快照)输入永远得到相同的记录。
*/
func Normalize(l *Layout, headers []string, cells []string, path map[string]string, rules map[string]string) (*spider.Record, bool) {
	if len(cells) < l.MinCells {
		return nil, false
	}

	rec := &spider.Record{}
	if l.Tag == TagUnknown {
		// 降级模式：按列位置猜测字段，并打上布局标记便于下游审计
		for i, field := range positionalFields {
			if i >= len(cells) {
				break
			}
			rec.Set(field, CleanCell(cells[i]))
		}
		rec.Set("layout", TagUnknown)
	} else {
		for i, h := range headers {
			if i >= len(cells) {
				break
			}
			field, ok := l.Headers[CleanCell(h)]
			if !ok {
				continue
			}
			rec.Set(field, CleanCell(cells[i]))
		}
	}

	// 表格缺列时回填筛选链中已选定的维度
	for facetKey, field := range facetFields {
		if rec.Get(field) != "" {
			continue
		}
		if v, ok := path[facetKey]; ok {
			rec.Set(field, v)
		}
	}

	// 专业组推断，仅当表格和筛选链都没有给出时
	// 等价规则里没有的科类直接沿用科类名作为专业组
	if rec.SpecialtyGroup == "" && rec.Category != "" {
		if g, ok := rules[rec.Category]; ok {
			rec.SpecialtyGroup = g
		} else {
			rec.SpecialtyGroup = rec.Category
		}
	}

	if rec.FixScoreOrder() {
		zap.S().Warnw("score order inverted, swapped",
			"major", rec.Major,
			"lowest", rec.LowestScore,
			"highest", rec.HighestScore,
		)
	}
	return rec, true
}
