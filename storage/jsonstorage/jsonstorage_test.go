package jsonstorage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaokaodata/crawler/spider"
	"github.com/stretchr/testify/assert"
)

// 落盘产出两种表示：逐行JSON和美化JSON，每行带全固定键
func TestJSONStorage_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := New(WithDir(dir))
	assert.NoError(t, err)

	records := []*spider.Record{
		{School: "测试大学", Year: "2024", Province: "北京", Major: "计算机科学", LowestScore: "620"},
		{School: "测试大学", Year: "2024", Province: "北京", Major: "软件工程", LowestScore: "610"},
	}
	assert.NoError(t, s.Save("test-北京", records...))

	raw, err := os.ReadFile(filepath.Join(dir, "test-北京.jsonl"))
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 2)

	var m map[string]string
	assert.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, "计算机科学", m["major"])
	// 缺失字段也必须有键，值为空串
	v, ok := m["specialtyGroup"]
	assert.True(t, ok)
	assert.Equal(t, "", v)

	var arr []*spider.Record
	rawPretty, err := os.ReadFile(filepath.Join(dir, "test-北京.json"))
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(rawPretty, &arr))
	assert.Len(t, arr, 2)
	assert.Equal(t, "软件工程", arr[1].Major)
}

// 零记录不产生文件
func TestJSONStorage_SaveEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := New(WithDir(dir))
	assert.NoError(t, err)
	assert.NoError(t, s.Save("empty"))
	_, err = os.Stat(filepath.Join(dir, "empty.jsonl"))
	assert.True(t, os.IsNotExist(err))
}
