package extractor

// 扫描件（PDF照片表格）来源的结构化抽取通道
// 抽取本身由外部视觉模型完成，这里只约定接口，并把抽取输出当作不可信输入：
// 先做分隔符修复，再走与在线表格完全相同的归一化路径

import (
	"context"
	"encoding/csv"
	"strings"

	"github.com/gaokaodata/crawler/layout"
	"github.com/gaokaodata/crawler/spider"
	"go.uber.org/zap"
)

// 抽取上下文：扫描件无法自述的维度，由调用方从文件名或目录结构中给出
type Meta struct {
	School   string
	Year     string
	Province string
}

// 结构化记录抽取器
// 输入一组栅格化页面的路径和抽取上下文，输出逐行的CSV文本：首个非空行为
// 表头，其余每行一条记录。输出可能带有未配平的引号等格式瑕疵
type Extractor interface {
	Extract(ctx context.Context, pages []string, meta Meta) ([]string, error)
}

/*
把抽取器输出转换为规范记录

每行先过修复通道再做CSV解析；修复后仍解析失败的行按FormatRepairFailure
丢弃并记日志，不影响同批其他行。表头用与在线路径相同的布局词表匹配，行
归一化也复用同一个归一化函数，年份省份由抽取上下文回填。
*/
func Ingest(ctx context.Context, ex Extractor, pages []string, meta Meta, rules map[string]string) ([]*spider.Record, error) {
	lines, err := ex.Extract(ctx, pages, meta)
	if err != nil {
		return nil, err
	}

	path := map[string]string{}
	if meta.Year != "" {
		path["year"] = meta.Year
	}
	if meta.Province != "" {
		path["province"] = meta.Province
	}

	var (
		headers []string
		l       *layout.Layout
		records []*spider.Record
	)
	for _, line := range lines {
		if ctx.Err() != nil {
			return records, spider.ResourceFailure(ctx.Err())
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells, err := parseLine(line)
		if err != nil {
			if headers == nil {
				// 表头行报废则整批报废，否则首个数据行会被错当成表头
				return nil, spider.FormatRepairFailure(line, err)
			}
			zap.S().Warnw("extractor line dropped",
				"err", spider.FormatRepairFailure(line, err),
			)
			continue
		}
		if headers == nil {
			headers = cells
			l = layout.MatchHeaders(headers, nil)
			continue
		}
		rec, ok := layout.Normalize(l, headers, cells, path, rules)
		if !ok {
			continue
		}
		rec.School = meta.School
		records = append(records, rec)
	}
	return records, nil
}

// 修复后解析一行CSV
func parseLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(RepairLine(line)))
	cells, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range cells {
		cells[i] = layout.CleanCell(cells[i])
	}
	return cells, nil
}
