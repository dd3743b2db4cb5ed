package spider

import (
	"encoding/json"
	"strconv"
	"strings"
)

// 录取分数记录的统一输出格式
// 数值字段一律存为字符串，保留前导零、区间写法和空值语义，缺失统一为空串
type Record struct {
	School         string `json:"school"`
	Campus         string `json:"campus"`
	Year           string `json:"year"`
	AdmissionType  string `json:"admissionType"`
	Province       string `json:"province"`
	Category       string `json:"category"`
	Major          string `json:"major"`
	SpecialtyGroup string `json:"specialtyGroup"`
	PlannedCount   string `json:"plannedCount"`
	LowestScore    string `json:"lowestScore"`
	HighestScore   string `json:"highestScore"`
	LowestRank     string `json:"lowestRank"`

	// 院校特有的扩展字段，如controlLine、cityRank，序列化时平铺进同一对象
	Extra map[string]string `json:"-"`
}

// 固定字段的列名顺序，Excel表头和数据库建表都按此顺序
func FieldNames() []string {
	return []string{
		"school", "campus", "year", "admissionType", "province", "category",
		"major", "specialtyGroup", "plannedCount", "lowestScore", "highestScore", "lowestRank",
	}
}

// 按规范字段名写入值，未知字段落入扩展字段
func (r *Record) Set(field, value string) {
	switch field {
	case "school":
		r.School = value
	case "campus":
		r.Campus = value
	case "year":
		r.Year = value
	case "admissionType":
		r.AdmissionType = value
	case "province":
		r.Province = value
	case "category":
		r.Category = value
	case "major":
		r.Major = value
	case "specialtyGroup":
		r.SpecialtyGroup = value
	case "plannedCount":
		r.PlannedCount = value
	case "lowestScore":
		r.LowestScore = value
	case "highestScore":
		r.HighestScore = value
	case "lowestRank":
		r.LowestRank = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[field] = value
	}
}

// 按规范字段名读取值
func (r *Record) Get(field string) string {
	switch field {
	case "school":
		return r.School
	case "campus":
		return r.Campus
	case "year":
		return r.Year
	case "admissionType":
		return r.AdmissionType
	case "province":
		return r.Province
	case "category":
		return r.Category
	case "major":
		return r.Major
	case "specialtyGroup":
		return r.SpecialtyGroup
	case "plannedCount":
		return r.PlannedCount
	case "lowestScore":
		return r.LowestScore
	case "highestScore":
		return r.HighestScore
	case "lowestRank":
		return r.LowestRank
	default:
		return r.Extra[field]
	}
}

// 固定字段值的切片，顺序与FieldNames一致
func (r *Record) Values() []string {
	fields := FieldNames()
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		values = append(values, r.Get(f))
	}
	return values
}

// 校核最低分不高于最高分的约束，两者均为纯数值且顺序颠倒时交换
// 返回是否发生了交换，调用方负责记录日志，不静默丢弃
func (r *Record) FixScoreOrder() bool {
	low, err1 := strconv.ParseFloat(strings.TrimSpace(r.LowestScore), 64)
	high, err2 := strconv.ParseFloat(strings.TrimSpace(r.HighestScore), 64)
	if err1 != nil || err2 != nil {
		return false
	}
	if low <= high {
		return false
	}
	r.LowestScore, r.HighestScore = r.HighestScore, r.LowestScore
	return true
}

// 序列化时固定字段全部输出（缺失为空串，不省略键），扩展字段平铺在同一层
func (r *Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(FieldNames())+len(r.Extra))
	for _, f := range FieldNames() {
		m[f] = r.Get(f)
	}
	for k, v := range r.Extra {
		m[k] = v
	}
	return json.Marshal(m)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, v := range m {
		r.Set(k, v)
	}
	return nil
}
