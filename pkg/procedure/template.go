package procedure

import (
	"fmt"
	"strings"

	"go-ysql/pkg/database"
)

// 生成的过程使用的临时表
const (
	LogTableName    = "drop_data_log"
	ActionTableName = "drop_data_action"
)

var dialect database.DatabaseDialect = &database.MySQLDialect{}

type sqlWriter struct {
	sb strings.Builder
}

func (w *sqlWriter) line(format string, args ...interface{}) {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	w.sb.WriteString(format)
	w.sb.WriteString("\n")
}

func (w *sqlWriter) blank() {
	w.sb.WriteString("\n")
}

// render 拼接存储过程文本，调用前配置必须已通过校验
func render(c Config) string {
	w := &sqlWriter{}

	w.line("CREATE DEFINER=%s@%s PROCEDURE %s(",
		dialect.QuoteIdentifier("root"), dialect.QuoteIdentifier("%"), dialect.QuoteIdentifier(c.ProcedureName))
	w.line("  IN limit_size INT, -- rows deleted per iteration")
	w.line("  IN create_time_end VARCHAR(50), -- delete rows created before this time")
	w.line("  IN min_id BIGINT -- initial last_id")
	w.line(")")
	w.line("  COMMENT '%s'", strings.ReplaceAll(c.ProcedureComment, "'", "''"))
	w.line("BEGIN")
	w.blank()

	w.line("  DECLARE done INT DEFAULT 0;  -- loop finished flag")
	w.line("  DECLARE last_id BIGINT DEFAULT 0; -- starting primary key")
	w.blank()
	w.line("  SET last_id = min_id; -- initialize last_id")
	w.blank()

	if c.AddLogTable {
		w.line("  -- temporary log table")
		w.line("  CREATE TEMPORARY TABLE IF NOT EXISTS %s (", LogTableName)
		w.line("    LogID INT AUTO_INCREMENT PRIMARY KEY,")
		w.line("    Message VARCHAR(2000),")
		w.line("    LogTime TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
		w.line("  );")
		w.blank()
	}

	if c.AddTempTable {
		w.line("  -- staging table holding the primary keys of each batch")
		w.line("  CREATE TEMPORARY TABLE IF NOT EXISTS %s (", ActionTableName)
		w.line("    temp_id BIGINT,")
		w.line("    create_time TIMESTAMP")
		w.line("  );")
		w.blank()
	}

	w.line("  -- loop until no more rows match")
	w.line("  WHILE done = 0 DO")
	if c.AddTempTable {
		renderStagedBatch(w, c)
	} else {
		renderDirectBatch(w, c)
	}
	w.line("  END WHILE;")
	w.blank()

	if c.AddLogTable {
		w.line("  SELECT * FROM %s;", LogTableName)
		w.line("  DROP TABLE IF EXISTS %s;", LogTableName)
	}
	if c.AddTempTable {
		w.line("  DROP TABLE IF EXISTS %s;", ActionTableName)
	}
	w.line("END")

	return w.sb.String()
}

// renderStagedBatch 先把一批主键写入暂存表，再联表删除并清空暂存表
func renderStagedBatch(w *sqlWriter, c Config) {
	pk, tf, table := c.PrimaryKeyField, c.TimeField, c.MainTableName

	w.line("    -- collect the next batch of primary keys")
	w.line(`    SET @sql_save_action = CONCAT("`)
	w.line("      INSERT INTO %s (temp_id, create_time)", ActionTableName)
	w.line("      SELECT main.%s, main.%s", pk, tf)
	w.line("      FROM %s main", table)
	w.line("      ")
	w.line(`      WHERE main.%s > ", last_id, " `, pk)
	w.line(`        AND main.%s < '", create_time_end, "'`, tf)
	if cond := strings.TrimSpace(c.CustomWhereCondition); cond != "" {
		w.line("        AND %s", cond)
	}
	w.line("      ")
	w.line(`      LIMIT ", limit_size);`)
	w.line("    ")
	w.line("    -- run the insert")
	w.line("    PREPARE stmt FROM @sql_save_action;")
	w.line("    EXECUTE stmt;")
	w.line("    DEALLOCATE PREPARE stmt;")
	w.line("    ")
	w.line("    -- an empty batch ends the loop")
	w.line("    SELECT COUNT(*) INTO @countData FROM %s;", ActionTableName)
	w.line("    IF @countData = 0 THEN")
	w.line("      SET done = 1;")
	w.line("    ELSE")
	w.line("      -- physical delete")
	w.line("      DELETE main FROM %s main ", table)
	w.line("      INNER JOIN %s a ON main.%s = a.temp_id", ActionTableName, pk)
	w.line("      WHERE main.%s <= create_time_end ", tf)
	w.line("        AND main.%s > last_id;", pk)
	w.line("      ")
	w.line("      -- the largest staged key becomes the next starting key")
	w.line("      SET last_id = (SELECT MAX(temp_id) FROM %s);", ActionTableName)
	if c.AddLogTable {
		renderLogInsert(w, table)
	}
	w.line("    END IF;")
	w.line("    ")
	w.line("    -- reset the staging table for the next batch")
	w.line("    TRUNCATE TABLE %s;", ActionTableName)
}

// renderDirectBatch 每轮直接执行有界 DELETE，以 ROW_COUNT() 判断是否结束
func renderDirectBatch(w *sqlWriter, c Config) {
	pk, tf, table := c.PrimaryKeyField, c.TimeField, c.MainTableName

	w.line("    -- delete directly")
	w.line("    DELETE FROM %s", table)
	w.line("    WHERE %s > last_id", pk)
	w.line("      AND %s < create_time_end", tf)
	if cond := strings.TrimSpace(c.CustomWhereCondition); cond != "" {
		w.line("      AND %s", cond)
	}
	w.line("    LIMIT limit_size;")
	w.line("    ")
	w.line("    -- rows deleted in this iteration")
	w.line("    SET @countData = ROW_COUNT();")
	w.line("    ")
	w.line("    -- nothing deleted ends the loop")
	w.line("    IF @countData = 0 THEN")
	w.line("      SET done = 1;")
	w.line("    ELSE")
	w.line("      -- advance last_id")
	w.line("      SET last_id = (SELECT MAX(%[1]s) FROM %[2]s WHERE %[1]s <= last_id + limit_size);", pk, table)
	if c.AddLogTable {
		renderLogInsert(w, table)
	}
	w.line("    END IF;")
}

func renderLogInsert(w *sqlWriter, table string) {
	w.line("      ")
	w.line("      INSERT INTO %s(Message) VALUES ( ", LogTableName)
	w.line(`        CONCAT("deleted from %s last_id:", last_id, " rows:", @countData)`, table)
	w.line("      );")
}
