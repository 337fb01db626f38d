package optimizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
)

// ResultRow 规整后的单行结果。三个数值字段都可空，
// 空表示引擎没有算出该项。
type ResultRow struct {
	ItemID       int64
	EOQ          *float64
	ReorderPoint *float64
	SafetyStock  *float64
}

// 引擎的两套键名约定，按序取第一个命中的
var (
	idKeys  = []string{"item_id", "id"}
	eoqKeys = []string{"eoq", "EOQ"}
	ropKeys = []string{"reorder_point", "ROP"}
	ssKeys  = []string{"safety_stock", "SS"}
)

// Normalize 把引擎的松散响应规整为结果行。
// 接受裸数组或 {"results": [...]} 两种形态；缺 id、重复 id、
// 负数指标都按行丢弃并记日志，不算批次失败。
func Normalize(data []byte) ([]*ResultRow, error) {
	raws, err := decodeRows(data)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(raws))
	rows := make([]*ResultRow, 0, len(raws))
	for i, raw := range raws {
		id, ok := pickID(raw)
		if !ok {
			log.Printf("Dropping optimizer row %d: no usable item id", i)
			continue
		}
		if seen[id] {
			// 同批次里重复出现，保留先到的那行
			log.Printf("Dropping duplicate optimizer row for item %d", id)
			continue
		}
		seen[id] = true

		rows = append(rows, &ResultRow{
			ItemID:       id,
			EOQ:          pickFigure(raw, eoqKeys, id),
			ReorderPoint: pickFigure(raw, ropKeys, id),
			SafetyStock:  pickFigure(raw, ssKeys, id),
		})
	}

	return rows, nil
}

func decodeRows(data []byte) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}

	var wrapper struct {
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("unexpected optimizer response: %w", err)
	}
	if wrapper.Results == nil {
		return nil, errors.New("optimizer response has no results")
	}
	return wrapper.Results, nil
}

// pickID 按别名顺序取物料 ID，必须是正整数
func pickID(raw map[string]interface{}) (int64, bool) {
	for _, key := range idKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n > 0 && n == math.Trunc(n) {
				return int64(n), true
			}
		case string:
			id, err := strconv.ParseInt(n, 10, 64)
			if err == nil && id > 0 {
				return id, true
			}
		}
	}
	return 0, false
}

// pickFigure 按别名顺序取数值指标，取不到返回 nil（表示引擎未计算）
func pickFigure(raw map[string]interface{}, keys []string, itemID int64) *float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}

		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case string:
			if n == "" {
				continue
			}
			parsed, err := strconv.ParseFloat(n, 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}

		if f < 0 {
			log.Printf("Dropping negative %s=%v for item %d", key, f, itemID)
			return nil
		}
		return &f
	}
	return nil
}
