package excelstorage

// 把记录导出为Excel工作簿，每个逻辑名一张工作表，便于人工核对

import (
	"fmt"
	"os"

	"github.com/gaokaodata/crawler/spider"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ExcelStorage struct {
	options
}

func New(opts ...Option) (*ExcelStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	s := &ExcelStorage{}
	s.options = options
	return s, nil
}

func (s *ExcelStorage) Save(name string, records ...*spider.Record) error {
	if len(records) == 0 {
		return nil
	}
	f, err := s.openBook()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := sheetName(name)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, 0, len(spider.FieldNames()))
	for _, h := range spider.FieldNames() {
		header = append(header, h)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		row := make([]interface{}, 0, len(header))
		for _, v := range rec.Values() {
			row = append(row, v)
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	s.logger.Info("sheet written",
		zap.String("sheet", sheet),
		zap.Int("count", len(records)),
	)
	return nil
}

// 工作簿已存在时在其上追加工作表，否则新建
func (s *ExcelStorage) openBook() (*excelize.File, error) {
	if _, err := os.Stat(s.path); err == nil {
		return excelize.OpenFile(s.path)
	}
	return excelize.NewFile(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// Excel工作表名上限31字符且不接受部分符号
func sheetName(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '\\', '?', '*', '[', ']', ':':
			out[i] = '_'
		}
	}
	if len(out) > 31 {
		out = out[:31]
	}
	return string(out)
}
