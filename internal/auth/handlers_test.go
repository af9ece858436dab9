package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/config"
	"github.com/unipress/publishing/internal/database/dbtest"
	"github.com/unipress/publishing/internal/database/users"
	"github.com/unipress/publishing/internal/dialect"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func setupAuthRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	sm := setupSessionManager(t)
	db, mock := dbtest.New(t, dialect.MySQL)
	cfg := config.Auth{
		BcryptCost:       testBcryptCost,
		MaxLoginAttempts: 2,
	}

	mw := NewMiddleware(sm)
	controller := NewAuthController(NewService(db, cfg), sm, mw, cfg, false)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(mw.Handler())
	controller.RegisterRoutes(router)
	return router, mock
}

func doJSON(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAuthController_LoginVerifyLogout(t *testing.T) {
	router, mock := setupAuthRouter(t)
	expectUser(mock, "jdoe@example.edu", mustHash(t, "secret123"), users.RoleUser, users.StatusActive)
	mock.ExpectExec("UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?").
		WithArgs(int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := doJSON(router, http.MethodPost, "/api/users/login", `{"email":"jdoe@example.edu","password":"secret123"}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	user, _ := body["user"].(map[string]any)
	if user["id"] != float64(21) || user["username"] != "jdoe" {
		t.Errorf("unexpected user %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Error("password hash must not be returned")
	}

	var cookieSet bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" && c.Value == token {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Error("login should set the session cookie")
	}

	rr = doJSON(router, http.MethodGet, "/api/auth/verify", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", rr.Code)
	}
	body = decodeBody(t, rr)
	if body["valid"] != true {
		t.Errorf("valid = %v", body["valid"])
	}
	if expiresIn, _ := body["expiresIn"].(float64); expiresIn <= 0 {
		t.Errorf("expiresIn = %v", body["expiresIn"])
	}

	rr = doJSON(router, http.MethodPost, "/api/auth/logout", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rr.Code)
	}

	rr = doJSON(router, http.MethodGet, "/api/auth/verify", "", token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("verify after logout: expected 401, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["message"] != "Invalid token. Please login again." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAuthController_VerifyWithoutToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	rr := doJSON(router, http.MethodGet, "/api/auth/verify", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["message"] != "Access denied. No token provided." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAuthController_LoginErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		router, _ := setupAuthRouter(t)
		rr := doJSON(router, http.MethodPost, "/api/admin/login", `{`, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("pending author", func(t *testing.T) {
		router, mock := setupAuthRouter(t)
		expectUser(mock, "ada@example.edu", mustHash(t, "secret123"), users.RoleAuthor, users.StatusPending)

		rr := doJSON(router, http.MethodPost, "/api/authors/login", `{"email":"ada@example.edu","password":"secret123"}`, "")
		if rr.Code != http.StatusForbidden {
			t.Fatalf("Expected 403, got %d", rr.Code)
		}
		if body := decodeBody(t, rr); body["message"] != "Account is pending approval or inactive" {
			t.Errorf("message = %v", body["message"])
		}
	})

	t.Run("database failure exposes error outside production", func(t *testing.T) {
		router, mock := setupAuthRouter(t)
		mock.ExpectQuery("SELECT * FROM users WHERE email = ?").
			WithArgs("jdoe@example.edu").
			WillReturnError(errors.New("connection refused"))

		rr := doJSON(router, http.MethodPost, "/api/users/login", `{"email":"jdoe@example.edu","password":"secret123"}`, "")
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("Expected 500, got %d", rr.Code)
		}
		if body := decodeBody(t, rr); body["error"] == nil {
			t.Error("development responses should include the error text")
		}
	})
}

func TestAuthController_LoginRateLimit(t *testing.T) {
	router, mock := setupAuthRouter(t)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT * FROM users WHERE email = ?").
			WithArgs("jdoe@example.edu").
			WillReturnRows(sqlmock.NewRows(userColumns))
	}

	payload := `{"email":"jdoe@example.edu","password":"wrong-pass"}`
	for i := 0; i < 2; i++ {
		rr := doJSON(router, http.MethodPost, "/api/users/login", payload, "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rr.Code)
		}
		if body := decodeBody(t, rr); body["message"] != "Invalid email or password" {
			t.Errorf("message = %v", body["message"])
		}
	}

	rr := doJSON(router, http.MethodPost, "/api/users/login", payload, "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After should be set")
	}
}

func TestAuthController_RegisterUser(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router, mock := setupAuthRouter(t)
		mock.ExpectQuery("SELECT id FROM users WHERE email = ? OR username = ?").
			WithArgs("jdoe@example.edu", "jdoe").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec("INSERT INTO users (username, email, password, full_name, phone, role, status, email_verified) VALUES (?, ?, ?, ?, ?, ?, ?, ?)").
			WithArgs("jdoe", "jdoe@example.edu", sqlmock.AnyArg(), "Jane Doe", "0800", "user", "pending", false).
			WillReturnResult(sqlmock.NewResult(12, 1))

		rr := doJSON(router, http.MethodPost, "/api/users/register",
			`{"username":"jdoe","email":"jdoe@example.edu","password":"secret123","full_name":"Jane Doe","phone":"0800"}`, "")
		if rr.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
		body := decodeBody(t, rr)
		if token, _ := body["token"].(string); token == "" {
			t.Error("registration should return a token")
		}
		user, _ := body["user"].(map[string]any)
		if user["id"] != float64(12) || user["status"] != "pending" {
			t.Errorf("unexpected user %v", user)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		router, _ := setupAuthRouter(t)
		rr := doJSON(router, http.MethodPost, "/api/users/register",
			`{"username":"jdoe","email":"jdoe","password":"secret123","full_name":"Jane Doe"}`, "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", rr.Code)
		}
		if body := decodeBody(t, rr); body["message"] != "Invalid email format" {
			t.Errorf("message = %v", body["message"])
		}
	})
}

func TestAuthController_RegisterAuthor_MissingFields(t *testing.T) {
	router, mock := setupAuthRouter(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `users`").WillReturnRows(fields(fullUserColumns...))
	mock.ExpectQuery("SHOW COLUMNS FROM `authors`").WillReturnRows(fields(fullAuthorColumns...))

	rr := doJSON(router, http.MethodPost, "/api/authors/register",
		`{"full_name":"Dr. Ada Obi","email":"ada@example.edu","password":"secret123"}`, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["message"] != "Missing required fields for author registration" {
		t.Errorf("message = %v", body["message"])
	}
}
