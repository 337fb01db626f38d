package database

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// Conn 持有一个可重建的数据库连接。共享主机上 MySQL 会掐掉空闲连接，
// 优化流水线的所有数据库操作都经由 Retry 执行，断连时重建连接再试。
type Conn struct {
	mu      sync.Mutex
	db      *gorm.DB
	reopen  func() (*gorm.DB, error)
	retries int
}

// NewConn 包装已建立的连接，reopen 用于断连后重建
func NewConn(db *gorm.DB, reopen func() (*gorm.DB, error), retries int) *Conn {
	if retries <= 0 {
		retries = 2
	}
	return &Conn{db: db, reopen: reopen, retries: retries}
}

// DB 返回当前连接句柄
func (c *Conn) DB() *gorm.DB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

// Reconnect 关闭旧连接并重建
func (c *Conn) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.reopen()
	if err != nil {
		return fmt.Errorf("reconnect database: %w", err)
	}

	if old, oerr := c.db.DB(); oerr == nil {
		old.Close()
	}
	c.db = db
	return nil
}

// Retry 执行一个数据库操作，连接断开时重建连接后重试，
// 其余错误不重试，原样返回。重试次数用尽返回最后一次的错误。
func (c *Conn) Retry(op func(db *gorm.DB) error) error {
	err := op(c.DB())
	if err == nil || !IsConnLost(err) {
		return err
	}

	for attempt := 1; attempt <= c.retries; attempt++ {
		log.Printf("Database connection lost, reconnect attempt %d/%d: %v", attempt, c.retries, err)
		if rerr := c.Reconnect(); rerr != nil {
			err = rerr
			continue
		}
		err = op(c.DB())
		if err == nil || !IsConnLost(err) {
			return err
		}
	}
	return err
}

// IsConnLost 判断是否为连接断开类错误。
// 覆盖 MySQL 客户端 2002/2003/2006/2013 等报错文案。
func IsConnLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	lower := strings.ToLower(err.Error())
	for _, s := range []string{
		"server has gone away",
		"lost connection",
		"invalid connection",
		"bad connection",
		"connection refused",
		"connection reset by peer",
		"broken pipe",
	} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
