package config

import (
	"strings"
	"time"

	"go-ysql/pkg/procedure"
	"go-ysql/pkg/sqlerr"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
)

const timeLayout = "2006-01-02 15:04:05"

// procedureSetters 覆盖键（小写）到字段赋值函数
var procedureSetters = map[string]func(c *procedure.Config, v interface{}) error{
	"procedurename": func(c *procedure.Config, v interface{}) (err error) {
		c.ProcedureName, err = cast.ToStringE(v)
		return
	},
	"maintablename": func(c *procedure.Config, v interface{}) (err error) {
		c.MainTableName, err = cast.ToStringE(v)
		return
	},
	"primarykeyfield": func(c *procedure.Config, v interface{}) (err error) {
		c.PrimaryKeyField, err = cast.ToStringE(v)
		return
	},
	"timefield": func(c *procedure.Config, v interface{}) (err error) {
		c.TimeField, err = cast.ToStringE(v)
		return
	},
	"limitsize": func(c *procedure.Config, v interface{}) (err error) {
		c.LimitSize, err = cast.ToIntE(v)
		return
	},
	"minid": func(c *procedure.Config, v interface{}) (err error) {
		c.MinID, err = cast.ToInt64E(v)
		return
	},
	"createtimeend": func(c *procedure.Config, v interface{}) (err error) {
		if t, ok := v.(time.Time); ok {
			c.CreateTimeEnd = t.Format(timeLayout)
			return nil
		}
		c.CreateTimeEnd, err = cast.ToStringE(v)
		return
	},
	"addlogtable": func(c *procedure.Config, v interface{}) (err error) {
		c.AddLogTable, err = cast.ToBoolE(v)
		return
	},
	"addtemptable": func(c *procedure.Config, v interface{}) (err error) {
		c.AddTempTable, err = cast.ToBoolE(v)
		return
	},
	"customwherecondition": func(c *procedure.Config, v interface{}) (err error) {
		c.CustomWhereCondition, err = cast.ToStringE(v)
		return
	},
	"procedurecomment": func(c *procedure.Config, v interface{}) (err error) {
		c.ProcedureComment, err = cast.ToStringE(v)
		return
	},
}

// ApplyProcedureOverrides 把松散类型的覆盖值写入存储过程配置
//
// 键名不区分大小写，可以使用 - 或 _ 分隔（limit-size、limit_size、limitSize 等价）。
// 值通过 cast 转换，"5000"、5000、5000.0 都可以作为行数。
func ApplyProcedureOverrides(cfg *procedure.Config, values map[string]interface{}) error {
	for _, key := range sortedKeys(values) {
		normalized := normalizeKey(key)
		set, ok := procedureSetters[normalized]
		if !ok {
			return sqlerr.Configf("unknown procedure setting %q", key)
		}
		if err := set(cfg, values[key]); err != nil {
			return errors.Mark(errors.Wrapf(err, "invalid value for %s", key), sqlerr.ErrConfiguration)
		}
	}
	return nil
}

// ParseSetFlags 解析 key=value 形式的覆盖参数
func ParseSetFlags(pairs []string) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, sqlerr.Configf("invalid setting %q, expected key=value", pair)
		}
		values[key] = value
	}
	return values, nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}
