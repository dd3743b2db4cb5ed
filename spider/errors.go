package spider

import (
	"errors"
	"fmt"
)

// 失败分类
// 前四类都在最小作用域内被捕获并转为跳过+日志，只有资源失败会中止整次遍历
var (
	ErrSelection      = errors.New("selection failure")      // 目标选项不在当前候选集中，多为选项集刷新竞态
	ErrTimeout        = errors.New("timeout failure")        // 筛选提交后页面未在限定时间内稳定
	ErrClassification = errors.New("classification failure") // 叶子上没有匹配到任何表格布局
	ErrFormatRepair   = errors.New("format repair failure")  // 抽取结果修复后仍无法套入目标格式
	ErrResource       = errors.New("resource failure")       // 浏览器或会话不可用，致命
)

func SelectionFailure(facetKey, label string) error {
	return fmt.Errorf("%w: facet %s has no option %q", ErrSelection, facetKey, label)
}

func TimeoutFailure(facetKey string, err error) error {
	return fmt.Errorf("%w: facet %s did not settle: %v", ErrTimeout, facetKey, err)
}

func ResourceFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrResource, err)
}

func FormatRepairFailure(line string, err error) error {
	return fmt.Errorf("%w: %q: %v", ErrFormatRepair, line, err)
}
