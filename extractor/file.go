package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// 从落盘的抽取输出读取记录行
// 视觉模型的抽取通常离线批量完成，结果以每校一个文本文件的形式存放，
// 首个非空行为表头。pages参数在该实现下不参与抽取，仅为满足接口
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Extract(ctx context.Context, pages []string, meta Meta) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read extractor output: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
