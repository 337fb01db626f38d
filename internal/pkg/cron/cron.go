package cron

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/pkg/email"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

type Service struct {
	conn     *database.Conn
	mailer   *email.Service
	alerts   config.AlertsConfig
	stopChan chan struct{}
}

func NewService(
	conn *database.Conn,
	mailer *email.Service,
	alerts config.AlertsConfig,
) *Service {
	return &Service{
		conn:     conn,
		mailer:   mailer,
		alerts:   alerts,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runStaleJobReaper()
	go s.runLowStockAlert()
	log.Println("Cron service started (stale job reaper + low stock alert)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runStaleJobReaper 每 10 分钟清理一次超时任务
func (s *Service) runStaleJobReaper() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.reapStaleJobs()
		}
	}
}

// reapStaleJobs 把运行超时的任务置为失败，释放卡死的队列位
func (s *Service) reapStaleJobs() int64 {
	hours := s.alerts.StaleJobHours
	if hours <= 0 {
		hours = 6
	}
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	var count int64
	err := s.conn.Retry(func(db *gorm.DB) error {
		n, err := repository.NewJobRepository(db).FailStale(cutoff, "运行超时")
		count = n
		return err
	})
	if err != nil {
		log.Printf("Stale job reaper: %v", err)
		return 0
	}
	if count > 0 {
		log.Printf("Stale job reaper: failed %d jobs running since before %s",
			count, cutoff.Format(time.RFC3339))
	}
	return count
}

// runLowStockAlert 每日发送一次低库存告警
func (s *Service) runLowStockAlert() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sendLowStockAlerts()
			timer.Reset(24 * time.Hour)
		}
	}
}

// sendLowStockAlerts 汇总低于再订货点的物料并逐个收件人发送
func (s *Service) sendLowStockAlerts() int {
	if !s.alerts.LowStockEnabled || s.mailer == nil || len(s.alerts.LowStockRecipients) == 0 {
		return 0
	}

	var items []*model.Item
	err := s.conn.Retry(func(db *gorm.DB) error {
		list, err := repository.NewItemRepository(db).ListBelowReorderPoint()
		if err != nil {
			return err
		}
		items = list
		return nil
	})
	if err != nil {
		log.Printf("Low stock alert: failed to query items: %v", err)
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	lines := make([]email.LowStockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, email.LowStockLine{
			SKU:          item.SKU,
			Name:         item.Name,
			Quantity:     item.Quantity,
			ReorderPoint: item.ReorderPoint,
		})
	}

	sent := 0
	for _, to := range s.alerts.LowStockRecipients {
		if err := s.mailer.SendLowStockAlert(to, lines); err != nil {
			log.Printf("Low stock alert: failed to send to %s: %v", to, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("Low stock alert: notified %d recipients about %d items", sent, len(items))
	}
	return sent
}

// RunNow 立即执行一轮巡检（用于测试或手动触发）
func (s *Service) RunNow() (reaped int64, notified int) {
	return s.reapStaleJobs(), s.sendLowStockAlerts()
}
