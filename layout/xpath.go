package layout

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/gaokaodata/crawler/spider"
)

// 部分站点的结果区域没有稳定的CSS可选中，任务定义可改用XPath从整页HTML中
// 定位结果容器，定位到的子树再交给Classify做布局识别
func ExtractByXPath(pageHTML, xpath string) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("%w: parse page: %v", spider.ErrClassification, err)
	}
	node, err := htmlquery.Query(doc, xpath)
	if err != nil {
		return "", fmt.Errorf("%w: bad xpath %q: %v", spider.ErrClassification, xpath, err)
	}
	if node == nil {
		return "", fmt.Errorf("%w: xpath %q matched nothing", spider.ErrClassification, xpath)
	}
	return htmlquery.OutputHTML(node, true), nil
}
