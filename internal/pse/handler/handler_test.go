package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/arifsuz/pre-shipment-system/internal/pse/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func setupAPI(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig()
	svc := service.NewServices(repository.NewRepositories(db), service.Deps{DB: db, Logger: zap.NewNop()}, cfg)

	r := testutil.SetupRouter()
	NewHandlers(svc, nil, cfg, zap.NewNop()).RegisterRoutes(r.Group("/api"), testutil.JWTSecret)
	return &testutil.TestEnv{DB: db, Router: r, T: t}
}

func dataOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", resp["data"])
	return data
}

func TestAuth_LoginAndMe(t *testing.T) {
	env := setupAPI(t)
	testutil.SeedUser(t, env.DB, "u-1", "operator", "secret123", entity.RoleViewer)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "operator", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := dataOf(t, testutil.ParseResponse(w))["token"].(string)
	require.NotEmpty(t, token)

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	user := dataOf(t, testutil.ParseResponse(w))["user"].(map[string]interface{})
	assert.Equal(t, "operator", user["username"])
	assert.NotContains(t, user, "password")

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "operator", "password": "nope",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/auth/login", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_Guards(t *testing.T) {
	env := setupAPI(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/shipments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/shipments", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/users", nil, testutil.ViewerToken())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/users", nil, testutil.AdminToken())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShipment_CreateValidation(t *testing.T) {
	env := setupAPI(t)

	body := map[string]interface{}{
		"shippingMark": "SM-1", "orderNo": "O-1", "caseNo": "C-1", "destination": "Tokyo",
		"model": "K1ZA", "productionMonth": "2024-03", "caseSize": "1x1x1",
		"items": []map[string]interface{}{{"boxNo": "BOX_01", "partName": "Bracket", "quantity": 2}},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments", body, testutil.AdminToken())
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := testutil.ParseResponse(w)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["errors"], "items[0].partNo is required")

	body["items"] = []map[string]interface{}{{"boxNo": "BOX_01", "partNo": "P-1", "partName": "Bracket", "quantity": "2"}}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments", body, testutil.AdminToken())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shipment := dataOf(t, testutil.ParseResponse(w))["shipment"].(map[string]interface{})
	assert.Equal(t, "DRAFT", shipment["status"])
}

func TestShipment_UpdateRejectsUnknownKeys(t *testing.T) {
	env := setupAPI(t)
	testutil.SeedShipment(t, env.DB, "s-1", entity.ShipmentStatusDraft)
	testutil.SeedShipment(t, env.DB, "s-2", entity.ShipmentStatusApproved)

	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/shipments/s-1", `{"caseNo":"C-9","userId":"x"}`, testutil.AdminToken())
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, testutil.ParseResponse(w)["errors"], "userId is not an updatable field")

	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/shipments/s-1", `{"caseNo":"C-9"}`, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/shipments/s-2", `{"caseNo":"C-9"}`, testutil.AdminToken())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/shipments/missing", nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "shipment missing not found", testutil.ParseResponse(w)["message"])
}

func TestMemo_Workflow(t *testing.T) {
	env := setupAPI(t)
	testutil.SeedShipment(t, env.DB, "s-1", entity.ShipmentStatusDraft, testutil.Item("P-1", "Bracket", 4))
	token := testutil.AdminToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/shipments/s-1/memo", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.ParseResponse(w)
	assert.Contains(t, resp, "data")
	assert.Nil(t, resp["data"])

	publish := map[string]interface{}{
		"memoNo":      "PSE/001",
		"manualItems": []map[string]interface{}{{"partNo": "P-1", "partName": "Bracket", "qty": 4}},
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments/s-1/memo/publish", publish, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PUBLISHED", dataOf(t, testutil.ParseResponse(w))["status"])

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments/s-1/memo/reconcile", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataOf(t, testutil.ParseResponse(w))
	assert.Equal(t, true, data["isMatch"])
	assert.NotContains(t, data, "firstMismatch")

	// chunked request with an empty body falls back to the stored memo
	req := httptest.NewRequest(http.MethodPost, "/api/shipments/s-1/memo/reconcile", io.NopCloser(strings.NewReader("")))
	req.TransferEncoding = []string{"chunked"}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, dataOf(t, testutil.ParseResponse(w))["isMatch"])

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments/s-1/memo/reconcile", `{"manualItems":`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	override := map[string]interface{}{
		"manualItems": []map[string]interface{}{{"partNo": "P-1", "partName": "Bracket", "qty": 3}},
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments/s-1/memo/reconcile", override, token)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataOf(t, testutil.ParseResponse(w))
	assert.Equal(t, false, data["isMatch"])
	assert.Contains(t, data, "firstMismatch")

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments/s-1/memo/save", map[string]string{"statusAfterSave": "DONE"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments/missing/memo/reconcile", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	testutil.SeedShipment(t, env.DB, "s-approved", entity.ShipmentStatusApproved)
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/shipments/s-approved/memo/save",
		map[string]string{"statusAfterSave": "DRAFT"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot modify approved shipment", testutil.ParseResponse(w)["message"])
}

func uploadFile(t *testing.T, r *gin.Engine, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/excel", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testutil.AdminToken())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpload_Excel(t *testing.T) {
	env := setupAPI(t)

	w := uploadFile(t, env.Router, "packing.csv", []byte("a,b"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only .xlsx files are allowed", testutil.ParseResponse(w)["message"])

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "SHIPPING MARK: SM-77"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "ORDER NO: ORD-77"))
	_, err := f.NewSheet("SUM")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	w = uploadFile(t, env.Router, "packing.xlsx", buf.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.ParseResponse(w)
	assert.Equal(t, "SM-77", dataOf(t, resp)["shippingMark"])
	assert.NotEmpty(t, resp["warnings"])

	w = uploadFile(t, env.Router, "broken.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, testutil.ParseResponse(w)["errors"])
}

func TestNotifications_AfterUpload(t *testing.T) {
	env := setupAPI(t)
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, uploadFile(t, env.Router, "empty.xlsx", buf.Bytes()).Code)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/notifications", nil, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code)
	list := dataOf(t, testutil.ParseResponse(w))["notifications"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Upload: empty.xlsx", list[0].(map[string]interface{})["title"])

	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/notifications/mark-all-read", nil, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, dataOf(t, testutil.ParseResponse(w))["updated"])
}

func TestStats(t *testing.T) {
	env := setupAPI(t)
	testutil.SeedShipment(t, env.DB, "s-1", entity.ShipmentStatusInProcess)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/stats", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, testutil.ParseResponse(w))
	assert.EqualValues(t, 1, data["totalShipments"])
	assert.EqualValues(t, 1, data["inProcess"])
}

func TestEvents_WithoutHub(t *testing.T) {
	env := setupAPI(t)
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/events?token="+testutil.AdminToken(), nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
