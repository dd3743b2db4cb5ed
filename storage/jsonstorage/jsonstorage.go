package jsonstorage

// 按逻辑名落盘为两种表示：逐行JSON（.jsonl）和美化后的整体JSON（.json）
// 每个检查点整体重写对应逻辑名的文件，崩溃后已写出的分支文件保持完整

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaokaodata/crawler/spider"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

type JSONStorage struct {
	options
}

func New(opts ...Option) (*JSONStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	s := &JSONStorage{}
	s.options = options
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return s, nil
}

func (s *JSONStorage) Save(name string, records ...*spider.Record) error {
	if len(records) == 0 {
		return nil
	}
	base := filepath.Join(s.dir, sanitize(name))

	var lines bytes.Buffer
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		lines.Write(data)
		lines.WriteByte('\n')
	}
	if err := os.WriteFile(base+".jsonl", lines.Bytes(), 0o644); err != nil {
		return err
	}

	whole, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(base+".json", pretty.Pretty(whole), 0o644); err != nil {
		return err
	}

	s.logger.Info("records written",
		zap.String("name", name),
		zap.Int("count", len(records)),
	)
	return nil
}

// 逻辑名可能带路径分隔符等不适合做文件名的字符
func sanitize(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_")
	return replacer.Replace(name)
}
