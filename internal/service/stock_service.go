package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

var (
	ErrInsufficientStock = errors.New("库存不足")
)

// StockService 库存变动业务逻辑。
// 变动记录和物料库存在同一事务里更新，避免出现记录和余量不一致。
type StockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{db: db}
}

// RecordMovement 记录一次库存变动并同步物料库存。
// in 为入库增量，out 为出库减量，adjust 直接设为盘点后的绝对数量。
func (s *StockService) RecordMovement(userID int64, req *dto.RecordMovementRequest) (*model.StockMovement, error) {
	movement := &model.StockMovement{
		ItemID:    req.ItemID,
		UserID:    userID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Reference: req.Reference,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		itemRepo := repository.NewItemRepository(tx)

		item, err := itemRepo.GetByID(req.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		switch req.Type {
		case "in":
			if err := itemRepo.AdjustQuantity(item.ID, req.Quantity); err != nil {
				return err
			}
		case "out":
			ok, err := itemRepo.TakeQuantity(item.ID, req.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientStock
			}
		case "adjust":
			if err := itemRepo.SetQuantity(item.ID, req.Quantity); err != nil {
				return err
			}
		}

		return repository.NewMovementRepository(tx).Create(movement)
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// ListMovements 分页获取变动记录，附带物料和操作人信息
func (s *StockService) ListMovements(page, pageSize int, itemID int64, movementType string) ([]*dto.MovementListItem, int64, error) {
	movements, total, err := repository.NewMovementRepository(s.db).List(page, pageSize, itemID, movementType)
	if err != nil {
		return nil, 0, err
	}

	itemRepo := repository.NewItemRepository(s.db)
	userRepo := repository.NewUserRepository(s.db)

	// 一页里的物料和操作人大量重复，查过一次就缓存
	itemCache := make(map[int64]*model.Item)
	userCache := make(map[int64]*model.User)

	rows := make([]*dto.MovementListItem, 0, len(movements))
	for _, m := range movements {
		row := &dto.MovementListItem{
			ID:        m.ID,
			ItemID:    m.ItemID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
			Reference: m.Reference,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}

		item, ok := itemCache[m.ItemID]
		if !ok {
			if loaded, err := itemRepo.GetByID(m.ItemID); err == nil {
				item = loaded
				itemCache[m.ItemID] = item
			}
		}
		if item != nil {
			row.ItemSKU = item.SKU
			row.ItemName = item.Name
		}

		user, ok := userCache[m.UserID]
		if !ok {
			if loaded, err := userRepo.GetByID(m.UserID); err == nil {
				user = loaded
				userCache[m.UserID] = user
			}
		}
		if user != nil {
			row.Username = user.Username
		}

		rows = append(rows, row)
	}

	return rows, total, nil
}
