package handler

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/response"
	"github.com/qs3c/stockopt_go_server/internal/repository"
	"github.com/qs3c/stockopt_go_server/internal/service"
	"github.com/qs3c/stockopt_go_server/internal/testutil"
)

func setupWarehouseHandler(t *testing.T) (*WarehouseHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	handler := NewWarehouseHandler(service.NewWarehouseService(repository.NewWarehouseRepository(db)))

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, db, cleanup
}

func TestWarehouseHandler_Create(t *testing.T) {
	handler, db, cleanup := setupWarehouseHandler(t)
	defer cleanup()

	manager := testutil.TestUser(t, db, testutil.WithRole("manager"))

	router := gin.New()
	router.POST("/warehouses", mockAuth(manager.ID, "manager"), handler.Create)

	req := dto.CreateWarehouseRequest{
		Code: "WH-API",
		Name: "华东一号仓",
	}

	w := performRequest(router, "POST", "/warehouses", req)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	// 编码重复
	w = performRequest(router, "POST", "/warehouses", req)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
	assert.Contains(t, resp.Message, "编码")
}

func TestWarehouseHandler_Delete_HasItems(t *testing.T) {
	handler, db, cleanup := setupWarehouseHandler(t)
	defer cleanup()

	manager := testutil.TestUser(t, db, testutil.WithRole("manager"))
	warehouse := testutil.TestWarehouse(t, db)
	testutil.TestItem(t, db, testutil.WithWarehouse(warehouse.ID))

	router := gin.New()
	router.DELETE("/warehouses/:id", mockAuth(manager.ID, "manager"), handler.Delete)

	w := performRequest(router, "DELETE", fmt.Sprintf("/warehouses/%d", warehouse.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestWarehouseHandler_List(t *testing.T) {
	handler, db, cleanup := setupWarehouseHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestWarehouse(t, db)
	testutil.TestWarehouse(t, db)
	testutil.TestWarehouse(t, db)

	router := gin.New()
	router.GET("/warehouses", mockAuth(user.ID, "staff"), handler.List)

	w := performRequest(router, "GET", "/warehouses", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["total"])
}
