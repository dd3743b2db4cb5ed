package excelstorage

import (
	"path/filepath"
	"testing"

	"github.com/gaokaodata/crawler/spider"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

// 导出后工作表首行是表头，数据行与记录顺序一致
func TestExcelStorage_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	s, err := New(WithPath(path))
	assert.NoError(t, err)

	records := []*spider.Record{
		{School: "测试大学", Year: "2024", Major: "计算机科学", LowestScore: "620"},
		{School: "测试大学", Year: "2024", Major: "软件工程", LowestScore: "610"},
	}
	assert.NoError(t, s.Save("test-2024", records...))

	f, err := excelize.OpenFile(path)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("test-2024")
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, spider.FieldNames(), rows[0][:len(spider.FieldNames())])
	assert.Equal(t, "计算机科学", rows[1][6])
	assert.Equal(t, "软件工程", rows[2][6])
}

// 同一工作簿追加第二张表不破坏已有表
func TestExcelStorage_SaveAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	s, err := New(WithPath(path))
	assert.NoError(t, err)

	assert.NoError(t, s.Save("test-2024", &spider.Record{Major: "计算机科学"}))
	assert.NoError(t, s.Save("test-2023", &spider.Record{Major: "软件工程"}))

	f, err := excelize.OpenFile(path)
	assert.NoError(t, err)
	defer f.Close()

	for _, sheet := range []string{"test-2024", "test-2023"} {
		rows, err := f.GetRows(sheet)
		assert.NoError(t, err)
		assert.Len(t, rows, 2)
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "a_b_c", sheetName("a/b:c"))
	long := "这个逻辑名太长了这个逻辑名太长了这个逻辑名太长了这个逻辑名太长了"
	assert.Len(t, []rune(sheetName(long)), 31)
}
