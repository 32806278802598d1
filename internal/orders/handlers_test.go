package orders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/platform/auth"
	"github.com/matheusmosca/sales-orders/internal/platform/httpx"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

func setupRouter(useCase OrderUseCaseInterface, actor *sales.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	if actor != nil {
		api.Use(func(c *gin.Context) {
			auth.SetActor(c, *actor)
			c.Next()
		})
	}
	NewOrderHandler(useCase).Register(api, func(c *gin.Context) { c.Next() })
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpx.ErrorResponse {
	var resp httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateOrderHandler(t *testing.T) {
	t.Run("creates order and accepts string product ids", func(t *testing.T) {
		// Arrange
		useCase := new(MockOrderUseCase)
		order := sales.NewOrder("order-1", "900123456", 1020, []sales.LineItem{{ProductID: 7, Quantity: 3}}, sales.OrderTerms{})
		useCase.On("CreateOrder", mock.Anything, seller, mock.MatchedBy(func(in CreateOrderInput) bool {
			return in.Customer == "900123456" && len(in.Products) == 2 && in.Products[1].ProductID == 7
		})).Return(CreateResult{
			Order:           order,
			StockUpdateInfo: inventory.ReservationReceipt{ID: "res-1", Items: []inventory.ReservedItem{{ProductID: 7, Quantity: 3}}},
		}, nil)
		router := setupRouter(useCase, &seller)

		// Act
		w := doJSON(router, http.MethodPost, "/api/orders", map[string]any{
			"customer": "900123456",
			"products": []map[string]any{
				{"productId": 7, "quantity": 1},
				{"productId": "7", "quantity": 2},
			},
			"netTotal":     100,
			"totalWithTax": 119,
		})

		// Assert
		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "res-1", body["stockUpdateInfo"].(map[string]any)["reservationId"])
		useCase.AssertExpectations(t)
	})

	t.Run("rejects zero quantity before reaching the use case", func(t *testing.T) {
		useCase := new(MockOrderUseCase)
		router := setupRouter(useCase, &seller)

		w := doJSON(router, http.MethodPost, "/api/orders", map[string]any{
			"customer": "900123456",
			"products": []map[string]any{{"productId": 7, "quantity": 0}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, sales.KindValidation, decodeError(t, w).Code)
		useCase.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("maps insufficient stock to 409", func(t *testing.T) {
		useCase := new(MockOrderUseCase)
		useCase.On("CreateOrder", mock.Anything, seller, mock.Anything).
			Return(CreateResult{}, sales.InsufficientStock(7, 1, 3))
		router := setupRouter(useCase, &seller)

		w := doJSON(router, http.MethodPost, "/api/orders", map[string]any{
			"customer": "900123456",
			"products": []map[string]any{{"productId": 7, "quantity": 3}},
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, sales.KindInsufficientStock, resp.Code)
		assert.EqualValues(t, 1, resp.Details["available"])
	})

	t.Run("requires an authenticated seller", func(t *testing.T) {
		router := setupRouter(new(MockOrderUseCase), nil)

		w := doJSON(router, http.MethodPost, "/api/orders", map[string]any{"customer": "x"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDeleteOrderHandler(t *testing.T) {
	t.Run("returns deletion info", func(t *testing.T) {
		useCase := new(MockOrderUseCase)
		useCase.On("DeleteOrder", mock.Anything, seller, "order-1").Return(DeletionInfo{
			OrderDeleted:        true,
			StockRestoreDetails: inventory.ReleaseReceipt{OrderID: "order-1", Unrestored: []int64{5}},
		}, nil)
		router := setupRouter(useCase, &seller)

		w := doJSON(router, http.MethodDelete, "/api/orders/order-1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			DeletionInfo DeletionInfo `json:"deletionInfo"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.DeletionInfo.OrderDeleted)
		assert.Equal(t, []int64{5}, body.DeletionInfo.StockRestoreDetails.Unrestored)
	})

	t.Run("not editable maps to 400", func(t *testing.T) {
		useCase := new(MockOrderUseCase)
		useCase.On("DeleteOrder", mock.Anything, seller, "order-1").
			Return(DeletionInfo{}, sales.OrderNotEditable("order-1", sales.OrderStatusShipped))
		router := setupRouter(useCase, &seller)

		w := doJSON(router, http.MethodDelete, "/api/orders/order-1", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, sales.KindOrderNotEditable, decodeError(t, w).Code)
	})

	t.Run("compensation failure maps to 500", func(t *testing.T) {
		useCase := new(MockOrderUseCase)
		useCase.On("DeleteOrder", mock.Anything, seller, "order-1").Return(DeletionInfo{}, &sales.Error{
			Kind:    sales.KindCompensationFailed,
			Message: "stock could not be fully restored",
			Details: map[string]any{"orderId": "order-1"},
		})
		router := setupRouter(useCase, &seller)

		w := doJSON(router, http.MethodDelete, "/api/orders/order-1", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, sales.KindCompensationFailed, decodeError(t, w).Code)
	})
}

func TestChangeStatusHandler(t *testing.T) {
	useCase := new(MockOrderUseCase)
	useCase.On("ChangeStatus", mock.Anything, seller, "order-1", sales.OrderStatusPending).
		Return(nil, sales.InvalidTransition(sales.OrderStatusShipped, sales.OrderStatusPending))
	router := setupRouter(useCase, &seller)

	w := doJSON(router, http.MethodPatch, "/api/orders/order-1/status", map[string]any{"status": "Pending"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, sales.KindInvalidTransition, decodeError(t, w).Code)
}

func TestListOrdersHandler(t *testing.T) {
	t.Run("passes filters and pagination", func(t *testing.T) {
		useCase := new(MockOrderUseCase)
		page := sales.PageRequest{Page: 2, Limit: 5}
		useCase.On("ListOrders", mock.Anything, seller, Filter{Status: sales.OrderStatusShipped}, page).
			Return(sales.NewPage([]sales.Order{}, page, 6), nil)
		router := setupRouter(useCase, &seller)

		w := doJSON(router, http.MethodGet, "/api/orders?status=Shipped&page=2&limit=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("invalid page", func(t *testing.T) {
		router := setupRouter(new(MockOrderUseCase), &seller)

		w := doJSON(router, http.MethodGet, "/api/orders?page=0", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSummaryHandler(t *testing.T) {
	useCase := new(MockOrderUseCase)
	useCase.On("Summary", mock.Anything, admin).
		Return([]StatusSummary{{Status: sales.OrderStatusPending, Count: 3, TotalWithTax: 300}}, nil)
	router := setupRouter(useCase, &admin)

	w := doJSON(router, http.MethodGet, "/api/orders/summary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"summary"`)
	useCase.AssertExpectations(t)
}
