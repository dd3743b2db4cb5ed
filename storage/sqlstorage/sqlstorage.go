package sqlstorage

// 把规范记录批量写入MySQL：逻辑名即表名，固定字段逐列存储，
// 扩展字段合并为一个JSON列，支持按批量阈值分批落库

import (
	"encoding/json"

	"github.com/gaokaodata/crawler/spider"
	"github.com/gaokaodata/crawler/sqldb"
	"go.uber.org/zap"
)

type entry struct {
	table  string
	record *spider.Record
}

type SQLStorage struct {
	dataDocker []*entry            // 待落库的记录缓冲
	db         sqldb.DBer          // 数据库操作接口
	Table      map[string]struct{} // 已创建的表
	options
}

func New(opts ...Option) (*SQLStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	s := &SQLStorage{}
	s.options = options
	s.Table = make(map[string]struct{})
	var err error
	s.db, err = sqldb.New(
		sqldb.WithConnURL(s.sqlURL),
		sqldb.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// 将一批记录归入缓冲，表不存在先建表，缓冲达到批量阈值即落库
func (s *SQLStorage) Save(name string, records ...*spider.Record) error {
	table := tableName(name)
	if _, ok := s.Table[table]; !ok {
		if err := s.db.CreateTable(sqldb.TableData{
			TableName:   table,
			ColumnNames: columnNames(),
			AutoKey:     true,
		}); err != nil {
			s.logger.Error("create table failed", zap.Error(err))
			return err
		}
		s.Table[table] = struct{}{}
	}
	for _, rec := range records {
		if len(s.dataDocker) >= s.BatchCount {
			if err := s.Flush(); err != nil {
				s.logger.Error("insert data failed", zap.Error(err))
			}
		}
		s.dataDocker = append(s.dataDocker, &entry{table: table, record: rec})
	}
	return s.Flush()
}

// 把缓冲中的记录按表分组批量插入，完成后清空缓冲
func (s *SQLStorage) Flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}
	defer func() {
		s.dataDocker = nil
	}()

	grouped := make(map[string][]*spider.Record)
	var order []string
	for _, e := range s.dataDocker {
		if _, ok := grouped[e.table]; !ok {
			order = append(order, e.table)
		}
		grouped[e.table] = append(grouped[e.table], e.record)
	}

	for _, table := range order {
		records := grouped[table]
		args := make([]interface{}, 0, len(records)*(len(spider.FieldNames())+1))
		for _, rec := range records {
			for _, v := range rec.Values() {
				args = append(args, v)
			}
			extra := ""
			if len(rec.Extra) > 0 {
				if j, err := json.Marshal(rec.Extra); err == nil {
					extra = string(j)
				}
			}
			args = append(args, extra)
		}
		if err := s.db.Insert(sqldb.TableData{
			TableName:   table,
			ColumnNames: columnNames(),
			Args:        args,
			DataCount:   len(records),
		}); err != nil {
			return err
		}
	}
	return nil
}

// 固定字段逐列，扩展字段一个JSON列
func columnNames() []sqldb.Field {
	var columns []sqldb.Field
	for _, f := range spider.FieldNames() {
		columns = append(columns, sqldb.Field{
			Title: f,
			Type:  "VARCHAR(255)",
		})
	}
	columns = append(columns, sqldb.Field{Title: "extra", Type: "MEDIUMTEXT"})
	return columns
}

// 逻辑名里的中划线等符号不适合做表名
func tableName(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '-', ' ', '.', '/':
			out[i] = '_'
		}
	}
	return string(out)
}
