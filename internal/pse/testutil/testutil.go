package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arifsuz/pre-shipment-system/internal/config"
	"github.com/arifsuz/pre-shipment-system/internal/middleware"
	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	JWTSecret = "pse-test-jwt-secret"

	AdminID  = "test-admin-001"
	ViewerID = "test-viewer-001"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// SetupTestDB opens a private in-memory sqlite database with all tables
// migrated. It is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// One connection keeps the in-memory database alive and serializes
	// transactions.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(entity.Models()...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// TestConfig returns a configuration good enough to build the services.
func TestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             JWTSecret,
			AccessTokenExpire:  time.Hour,
			RefreshTokenExpire: 24 * time.Hour,
			Issuer:             "pse-test",
		},
		Upload: config.UploadConfig{MaxSize: 10 << 20},
		MinIO:  config.MinIOConfig{Bucket: "pse-test"},
	}
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"roles": roles,
		"iss":   "pse-test",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// AdminToken returns a token for the seeded admin.
func AdminToken() string {
	return GenerateTestToken(AdminID, "Test Admin", "admin@test.com", []string{entity.RoleAdmin})
}

// ViewerToken returns a token for a non-admin user.
func ViewerToken() string {
	return GenerateTestToken(ViewerID, "Test Viewer", "viewer@test.com", []string{entity.RoleViewer})
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonBytes, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedUser creates an active user with the given password.
func SeedUser(t *testing.T, db *gorm.DB, id, username, password, role string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &entity.User{
		ID:       id,
		Email:    username + "@test.com",
		Nama:     "User " + username,
		Username: username,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// SeedCompany creates an active company.
func SeedCompany(t *testing.T, db *gorm.DB, id, name string) *entity.Company {
	t.Helper()
	company := &entity.Company{ID: id, Name: name, Country: "Indonesia", IsActive: true}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("Failed to seed company: %v", err)
	}
	return company
}

// SeedShipment creates a shipment with the given status and items.
func SeedShipment(t *testing.T, db *gorm.DB, id, status string, items ...entity.ShipmentItem) *entity.Shipment {
	t.Helper()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		if items[i].No == 0 {
			items[i].No = i + 1
		}
		items[i].ShipmentID = id
	}
	shipment := &entity.Shipment{
		ID:           id,
		ShippingMark: "SM-" + id,
		OrderNo:      "ORD-" + id,
		CaseNo:       "C-01",
		Destination:  "Tokyo",
		Model:        "K1ZA",
		CaseSize:     "110x90x80",
		GrossWeight:  120.5,
		NetWeight:    100,
		RackNo:       entity.NewRackNumbers("R-01"),
		Status:       status,
		UserID:       AdminID,
		Items:        items,
	}
	if err := db.Create(shipment).Error; err != nil {
		t.Fatalf("Failed to seed shipment: %v", err)
	}
	return shipment
}

// Item builds a shipment item line.
func Item(partNo, partName string, qty float64) entity.ShipmentItem {
	return entity.ShipmentItem{BoxNo: "BOX_01", PartNo: partNo, PartName: partName, Quantity: qty}
}
