// internal/router/router_test.go
package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mediakart/mediakart-backend/internal/config"
	"github.com/mediakart/mediakart-backend/internal/models"
)

// APITestSuite drives the full HTTP surface end to end against an in-memory
// database and a temporary upload directory.
type APITestSuite struct {
	suite.Suite
	router *gin.Engine
}

type apiEnvelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(&models.User{}, &models.Product{}))

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey: "test-secret",
			TokenTTL:  24,
		},
		Storage: config.StorageConfig{
			UploadDir:   suite.T().TempDir(),
			MaxFileSize: 10 * 1024 * 1024,
		},
	}

	suite.router, err = Initialize(db, cfg)
	suite.Require().NoError(err)
}

func (suite *APITestSuite) doJSON(method, path, token string, payload interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, path, body)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var envelope apiEnvelope
	json.Unmarshal(w.Body.Bytes(), &envelope)
	return w, envelope
}

func (suite *APITestSuite) register(username, email string) string {
	w, envelope := suite.doJSON(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret123",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	token, _ := envelope.Data["token"].(string)
	suite.Require().NotEmpty(token)
	return token
}

func (suite *APITestSuite) uploadProduct(token, title, author, genre string) string {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"title":       title,
		"description": "a test product",
		"author":      author,
		"genre":       genre,
		"price":       "9.99",
		"productType": "ebook",
	}
	for k, v := range fields {
		suite.Require().NoError(writer.WriteField(k, v))
	}

	part, err := writer.CreateFormFile("productFile", "book.pdf")
	suite.Require().NoError(err)
	part.Write([]byte("the ebook contents"))

	part, err = writer.CreateFormFile("imageFile", "cover.png")
	suite.Require().NoError(err)
	part.Write(append(pngSignature, []byte("cover image data")...))

	suite.Require().NoError(writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/products/upload", body)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var envelope apiEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	product := envelope.Data["product"].(map[string]interface{})
	return product["id"].(string)
}

func (suite *APITestSuite) TestHealth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestRegisterDuplicateEmail() {
	suite.register("alice", "alice@example.com")

	w, envelope := suite.doJSON(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "otherpass",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Require().NotNil(envelope.Error)
	suite.Equal("DUPLICATE_EMAIL", envelope.Error.Code)
}

func (suite *APITestSuite) TestLoginInvalidCredentials() {
	suite.register("alice", "alice@example.com")

	w, envelope := suite.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpass",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Require().NotNil(envelope.Error)
	suite.Equal("INVALID_CREDENTIALS", envelope.Error.Code)
}

func (suite *APITestSuite) TestProtectedRoutesRequireToken() {
	w, _ := suite.doJSON(http.MethodPost, "/api/products/some-id/buy", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.doJSON(http.MethodPost, "/api/products/some-id/buy", "not-a-valid-token", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestUploadRequiresBothFiles() {
	token := suite.register("alice", "alice@example.com")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "No Files")
	part, _ := writer.CreateFormFile("productFile", "book.pdf")
	part.Write([]byte("contents"))
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, "/api/products/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusBadRequest, w.Code)

	var envelope apiEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	suite.Require().NotNil(envelope.Error)
	suite.Equal("MISSING_FILE", envelope.Error.Code)
}

func (suite *APITestSuite) TestSearchFiltersCatalog() {
	token := suite.register("alice", "alice@example.com")
	suite.uploadProduct(token, "Whodunit", "Agatha Christie", "Mystery")
	suite.uploadProduct(token, "Space Opera", "Iain Banks", "Sci-Fi")

	w, envelope := suite.doJSON(http.MethodGet, "/api/products?search=mystery", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	products := envelope.Data["products"].([]interface{})
	suite.Require().Len(products, 1)

	entry := products[0].(map[string]interface{})
	suite.Equal("Whodunit", entry["title"])
	suite.Equal("0", entry["average_rating"])
	suite.Equal("alice", entry["seller_username"])

	// Only the username crosses the wire; the seller record itself stays out
	// of the public catalog.
	_, sellerPresent := entry["seller"]
	suite.False(sellerPresent)
	suite.NotContains(w.Body.String(), "alice@example.com")
	suite.NotContains(w.Body.String(), "purchased_products")
}

// Full marketplace flow: seller uploads, buyer purchases, downloads, rates.
func (suite *APITestSuite) TestPurchaseDownloadRateFlow() {
	sellerToken := suite.register("alice", "alice@example.com")
	productID := suite.uploadProduct(sellerToken, "Whodunit", "Agatha Christie", "Mystery")

	buyerToken := suite.register("bob", "bob@example.com")

	// Buy
	w, envelope := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/products/%s/buy", productID), buyerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	purchased := envelope.Data["purchased_products"].([]interface{})
	suite.Require().Len(purchased, 1)
	suite.Equal(productID, purchased[0])

	// Buying twice fails
	w, envelope = suite.doJSON(http.MethodPost, fmt.Sprintf("/api/products/%s/buy", productID), buyerToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Require().NotNil(envelope.Error)
	suite.Equal("ALREADY_PURCHASED", envelope.Error.Code)

	// The seller never purchased, so download is forbidden
	w, _ = suite.doJSON(http.MethodGet, fmt.Sprintf("/api/products/%s/download", productID), sellerToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	// The buyer gets the file back
	w, _ = suite.doJSON(http.MethodGet, fmt.Sprintf("/api/products/%s/download", productID), buyerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("the ebook contents", w.Body.String())
	suite.Contains(w.Header().Get("Content-Disposition"), "attachment")

	// Rate 5 -> average 5.0, count 1
	w, envelope = suite.doJSON(http.MethodPost, fmt.Sprintf("/api/products/%s/rate", productID), buyerToken,
		map[string]interface{}{"rating": 5})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Equal("5.0", envelope.Data["average_rating"])
	suite.Equal(float64(1), envelope.Data["rating_count"])

	// Out-of-range and non-integer ratings are rejected
	w, _ = suite.doJSON(http.MethodPost, fmt.Sprintf("/api/products/%s/rate", productID), buyerToken,
		map[string]interface{}{"rating": 6})
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.doJSON(http.MethodPost, fmt.Sprintf("/api/products/%s/rate", productID), buyerToken,
		map[string]interface{}{"rating": 4.5})
	suite.Equal(http.StatusBadRequest, w.Code)

	// Catalog reflects the new average
	w, envelope = suite.doJSON(http.MethodGet, "/api/products", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	products := envelope.Data["products"].([]interface{})
	suite.Require().Len(products, 1)
	suite.Equal("5.0", products[0].(map[string]interface{})["average_rating"])
}

func (suite *APITestSuite) TestRateUnknownProduct() {
	token := suite.register("alice", "alice@example.com")

	w, envelope := suite.doJSON(http.MethodPost,
		"/api/products/11111111-2222-3333-4444-555555555555/rate", token,
		map[string]interface{}{"rating": 3})
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Require().NotNil(envelope.Error)
	suite.Equal("NOT_FOUND", envelope.Error.Code)
}

func (suite *APITestSuite) TestMe() {
	token := suite.register("alice", "alice@example.com")

	w, envelope := suite.doJSON(http.MethodGet, "/api/auth/me", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	user := envelope.Data["user"].(map[string]interface{})
	suite.Equal("alice", user["username"])
	_, present := user["password_hash"]
	suite.False(present)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
