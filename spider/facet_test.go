package spider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 测试维度定义的校验规则
func TestFacetSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FacetSpec
		wantErr bool
	}{
		{name: "empty", spec: FacetSpec{}, wantErr: false},
		{name: "chain", spec: FacetSpec{
			{Key: "year"},
			{Key: "province", DependsOn: []string{"year"}},
			{Key: "category", DependsOn: []string{"year", "province"}},
		}, wantErr: false},
		{name: "duplicate key", spec: FacetSpec{
			{Key: "year"},
			{Key: "year"},
		}, wantErr: true},
		{name: "empty key", spec: FacetSpec{
			{Key: ""},
		}, wantErr: true},
		{name: "depends on later facet", spec: FacetSpec{
			{Key: "year", DependsOn: []string{"province"}},
			{Key: "province"},
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// 测试选择路径的下探、回溯与依赖判断
func TestSelectionPath(t *testing.T) {
	p := NewSelectionPath()
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, "", p.First())

	p.Push("year", "2024")
	p.Push("province", "北京")
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "2024", p.First())
	assert.True(t, p.HasAll([]string{"year", "province"}))
	assert.False(t, p.HasAll([]string{"year", "category"}))

	v, ok := p.Get("province")
	assert.True(t, ok)
	assert.Equal(t, "北京", v)

	p.Pop()
	_, ok = p.Get("province")
	assert.False(t, ok)
	assert.Equal(t, 1, p.Len())
}

// 快照必须与路径解耦：记录产出后路径继续回溯不能污染快照
func TestSelectionPath_Snapshot(t *testing.T) {
	p := NewSelectionPath()
	p.Push("year", "2024")
	p.Push("province", "北京")

	snap := p.Snapshot()
	p.Pop()
	p.Push("province", "上海")

	assert.Equal(t, "北京", snap["province"])
	assert.Equal(t, "2024", snap["year"])
}
