package orders

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/model/entity"
)

const (
	testUser = "admin"
	testPass = "secret"
)

func ordersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("orders_api_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	require.NoError(t, db.AutoMigrate(entity.All()...))
	return db
}

func ordersTestServer(t *testing.T, db *gorm.DB) *echo.Echo {
	t.Helper()
	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
		return user == testUser && pass == testPass, nil
	}))
	RegisterOrderRoutes(apiGroup, db)
	return e
}

func seedCatalog(t *testing.T, db *gorm.DB) (productID, stationID uint) {
	t.Helper()
	station := entity.Station{Name: "Assembly", DefaultSeq: 1, Active: true}
	require.NoError(t, db.Create(&station).Error)

	product := entity.Product{Name: "Chair", Active: true}
	require.NoError(t, db.Create(&product).Error)

	material := entity.Material{Name: "Oak Board", Unit: "m2", UnitPrice: 12, Active: true}
	require.NoError(t, db.Create(&material).Error)
	require.NoError(t, db.Create(&entity.Stock{MaterialID: material.MaterialID, Quantity: 100}).Error)

	line := entity.BOMLine{
		ProductID:  product.ProductID,
		Kind:       entity.BOMKindMaterial,
		MaterialID: &material.MaterialID,
		Quantity:   2,
	}
	require.NoError(t, db.Create(&line).Error)
	return product.ProductID, station.StationID
}

func doJSON(e *echo.Echo, method, path string, body interface{}, auth bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		cred := base64.StdEncoding.EncodeToString([]byte(testUser + ":" + testPass))
		req.Header.Set("Authorization", "Basic "+cred)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOrdersAPI_RequiresAuth(t *testing.T) {
	db := ordersTestDB(t)
	e := ordersTestServer(t, db)

	rec := doJSON(e, http.MethodGet, "/api/orders", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrdersAPI_CreateAndLifecycle(t *testing.T) {
	db := ordersTestDB(t)
	e := ordersTestServer(t, db)
	productID, stationID := seedCatalog(t, db)

	rec := doJSON(e, http.MethodPost, "/api/orders", map[string]interface{}{
		"product_id":    productID,
		"quantity":      3,
		"customer_name": "ACME",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID     uint   `json:"id"`
		Number string `json:"number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Regexp(t, `^ORD-\d{4}-0001$`, created.Number)

	// Advancing before start is a state conflict
	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/api/orders/%d/advance", created.ID), map[string]interface{}{
		"station_id": stationID,
	}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/api/orders/%d/start", created.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/api/orders/%d/advance", created.ID), map[string]interface{}{
		"station_id": stationID,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var advanced struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advanced))
	assert.Equal(t, entity.OrderStateCompleted, advanced.State)

	// Completion consumed 2 * 3 = 6 units
	var stock entity.Stock
	require.NoError(t, db.First(&stock).Error)
	assert.Equal(t, 94.0, stock.Quantity)
}

func TestOrdersAPI_Validation(t *testing.T) {
	db := ordersTestDB(t)
	e := ordersTestServer(t, db)
	productID, _ := seedCatalog(t, db)

	rec := doJSON(e, http.MethodPost, "/api/orders", map[string]interface{}{
		"product_id": productID,
		"quantity":   0,
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/orders", map[string]interface{}{
		"product_id": 99999,
		"quantity":   1,
	}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/orders/99999", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrdersAPI_CancelOnlyPending(t *testing.T) {
	db := ordersTestDB(t)
	e := ordersTestServer(t, db)
	productID, _ := seedCatalog(t, db)

	rec := doJSON(e, http.MethodPost, "/api/orders", map[string]interface{}{
		"product_id": productID,
		"quantity":   1,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/api/orders/%d/start", created.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/orders/%d", created.ID), nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
