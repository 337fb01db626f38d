package catalog

import (
	"errors"
	"log"
	"strconv"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/model"
)

var ErrNoIDColumn = errors.New("items 表缺少 id 列")

// Snapshot 发送给优化引擎的物料快照
type Snapshot struct {
	ItemID         int64    `json:"item_id"`
	AvgDailyDemand float64  `json:"avg_daily_demand"`
	LeadTimeDays   float64  `json:"lead_time_days"`
	UnitCost       float64  `json:"unit_cost"`
	SafetyStock    *float64 `json:"safety_stock,omitempty"`
	OrderCost      float64  `json:"order_cost"`
}

// 快照数值列，按固定顺序投影
var snapshotColumns = []string{
	"avg_daily_demand",
	"lead_time_days",
	"unit_cost",
	"safety_stock",
	"order_cost",
}

// 列缺失或取不到值时的缺省值。order_cost 缺省 50，其余为 0。
var numericDefaults = map[string]float64{
	"avg_daily_demand": 0,
	"lead_time_days":   0,
	"unit_cost":        0,
	"safety_stock":     0,
	"order_cost":       50,
}

// Store 读取 items 表并回写优化结果。线上实例的 items 表结构不完全
// 一致（手工加减过列），所有查询都先探测实际列再投影。
type Store struct {
	conn *database.Conn
}

func NewStore(conn *database.Conn) *Store {
	return &Store{conn: conn}
}

// columns 探测 items 表当前的列集合
func (s *Store) columns() (map[string]bool, error) {
	var types []gorm.ColumnType
	err := s.conn.Retry(func(db *gorm.DB) error {
		var cerr error
		types, cerr = db.Migrator().ColumnTypes("items")
		return cerr
	})
	if err != nil {
		return nil, err
	}

	cols := make(map[string]bool, len(types))
	for _, ct := range types {
		cols[ct.Name()] = true
	}
	return cols, nil
}

// Snapshots 提取可优化的物料快照。
// id 列必须存在；is_active 列存在时只取启用的行，不存在则全量；
// 数值列缺失或为 NULL 时取缺省值，safety_stock 列缺失则整个字段省略。
func (s *Store) Snapshots() ([]*Snapshot, error) {
	cols, err := s.columns()
	if err != nil {
		return nil, err
	}
	if !cols["id"] {
		return nil, ErrNoIDColumn
	}

	selected := []string{"id"}
	for _, col := range snapshotColumns {
		if cols[col] {
			selected = append(selected, col)
		}
	}

	var rows []map[string]interface{}
	err = s.conn.Retry(func(db *gorm.DB) error {
		query := db.Table("items").Select(selected).Order("id")
		if cols["is_active"] {
			query = query.Where("is_active = ?", true)
		}
		return query.Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	snapshots := make([]*Snapshot, 0, len(rows))
	for _, row := range rows {
		id, ok := toID(row["id"])
		if !ok {
			log.Printf("Skipping item row with unusable id %v", row["id"])
			continue
		}

		snap := &Snapshot{
			ItemID:         id,
			AvgDailyDemand: numeric(row, cols, "avg_daily_demand"),
			LeadTimeDays:   numeric(row, cols, "lead_time_days"),
			UnitCost:       numeric(row, cols, "unit_cost"),
			OrderCost:      numeric(row, cols, "order_cost"),
		}
		if cols["safety_stock"] {
			ss := numeric(row, cols, "safety_stock")
			snap.SafetyStock = &ss
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// WriteBack 把算出的字段回写到 items 表，只回写实际存在的列。
// 尽力而为，失败由调用方记日志，不影响任务结果。
func (s *Store) WriteBack(results []*model.OptimizationResult) (int64, error) {
	cols, err := s.columns()
	if err != nil {
		return 0, err
	}

	writable := map[string]bool{
		"eoq":           cols["eoq"],
		"reorder_point": cols["reorder_point"],
		"safety_stock":  cols["safety_stock"],
	}
	if !writable["eoq"] && !writable["reorder_point"] && !writable["safety_stock"] {
		return 0, nil
	}

	var updated int64
	for _, res := range results {
		fields := map[string]interface{}{}
		if writable["eoq"] && res.EOQ != nil {
			fields["eoq"] = *res.EOQ
		}
		if writable["reorder_point"] && res.ReorderPoint != nil {
			fields["reorder_point"] = *res.ReorderPoint
		}
		if writable["safety_stock"] && res.SafetyStock != nil {
			fields["safety_stock"] = *res.SafetyStock
		}
		if len(fields) == 0 {
			continue
		}

		itemID := res.ItemID
		err := s.conn.Retry(func(db *gorm.DB) error {
			return db.Table("items").Where("id = ?", itemID).Updates(fields).Error
		})
		if err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}

// numeric 取一行里某个数值列的值，列缺失、NULL 或无法解析时返回缺省值
func numeric(row map[string]interface{}, cols map[string]bool, col string) float64 {
	def := numericDefaults[col]
	if !cols[col] {
		return def
	}
	v, ok := toFloat(row[col])
	if !ok {
		return def
	}
	return v
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toID(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		if n > 0 {
			return n, true
		}
	case int:
		if n > 0 {
			return int64(n), true
		}
	case uint64:
		if n > 0 {
			return int64(n), true
		}
	case []byte:
		id, err := strconv.ParseInt(string(n), 10, 64)
		if err == nil && id > 0 {
			return id, true
		}
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}
