package extractor

import "strings"

/*
修复一行CSV文本中未配平的引号

视觉模型抽取自由文本字段（专业备注等）时经常产出游离引号，直接交给CSV
解析会整行报废。修复规则：

  - 引号字段内部的游离引号按CSV惯例转义成两个引号
  - 非引号字段里出现的游离引号直接丢弃
  - 行尾引号未闭合时补一个闭合引号

这是尽力而为的修复，不保证无损，修复失败的行由调用方丢弃。
*/
func RepairLine(line string) string {
	var b strings.Builder
	b.Grow(len(line) + 4)
	runes := []rune(line)
	inQuote := false
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '"' {
			b.WriteRune(c)
			continue
		}
		if !inQuote {
			// 字段开头的引号开启引号字段，字段中间的游离引号丢弃
			if i == 0 || runes[i-1] == ',' {
				inQuote = true
				b.WriteRune(c)
			}
			continue
		}
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch {
		case next == '"':
			// 已按CSV转义的引号对，原样保留
			b.WriteString(`""`)
			i++
		case next == ',' || next == 0:
			inQuote = false
			b.WriteRune(c)
		default:
			// 引号字段中游离的引号，转义
			b.WriteString(`""`)
		}
	}
	if inQuote {
		b.WriteRune('"')
	}
	return b.String()
}
