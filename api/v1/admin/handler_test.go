package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pairtalk/internal/model"
	"pairtalk/internal/testdb"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

type listData struct {
	Items json.RawMessage `json:"items"`
	Total int64           `json:"total"`
}

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testdb.Open(t)
	h := NewHandler(gdb)
	r := gin.New()
	r.GET("/api/admin/users", h.ListUsers)
	r.DELETE("/api/admin/users/:id", h.DeleteUser)
	r.GET("/api/admin/login-attempts", h.ListAttempts)
	r.GET("/api/admin/memberships", h.ListMemberships)
	r.POST("/api/admin/memberships", h.CreateMembership)
	r.DELETE("/api/admin/memberships/:email", h.DeleteMembership)
	return r, gdb
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestListUsers(t *testing.T) {
	r, gdb := newRouter(t)
	for i := 0; i < 3; i++ {
		gdb.Create(&model.Account{
			Email:      fmt.Sprintf("user%d@example.com", i),
			ExternalID: fmt.Sprintf("uid-%d", i),
			Name:       "Jane Doe",
		})
	}

	_, resp := do(t, r, http.MethodGet, "/api/admin/users?page=1&pageSize=2", nil)

	var data listData
	json.Unmarshal(resp.Data, &data)
	if data.Total != 3 {
		t.Errorf("Expected total 3, got %d", data.Total)
	}

	var items []model.Account
	json.Unmarshal(data.Items, &items)
	if len(items) != 2 {
		t.Errorf("Expected 2 items on the page, got %d", len(items))
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	r, gdb := newRouter(t)
	acct := &model.Account{Email: "jane@example.com", ExternalID: "uid-1", Name: "Jane Doe"}
	gdb.Create(acct)
	gdb.Create(&model.PaidMembership{Email: "jane@example.com", PaidAt: time.Now()})
	gdb.Create(&model.LoginAttempt{AccountID: &acct.ID, Email: "jane@example.com", Success: true})

	w, _ := do(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", acct.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var accts, members, attempts int64
	gdb.Model(&model.Account{}).Count(&accts)
	gdb.Model(&model.PaidMembership{}).Count(&members)
	gdb.Model(&model.LoginAttempt{}).Count(&attempts)
	if accts != 0 || members != 0 || attempts != 0 {
		t.Errorf("Cascade left rows behind: accounts=%d members=%d attempts=%d", accts, members, attempts)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	r, _ := newRouter(t)

	w, _ := do(t, r, http.MethodDelete, "/api/admin/users/42", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestListAttempts_NewestFirst(t *testing.T) {
	r, gdb := newRouter(t)
	gdb.Create(&model.LoginAttempt{Email: "first@example.com"})
	gdb.Create(&model.LoginAttempt{Email: "second@example.com"})

	_, resp := do(t, r, http.MethodGet, "/api/admin/login-attempts", nil)

	var data listData
	json.Unmarshal(resp.Data, &data)
	var items []model.LoginAttempt
	json.Unmarshal(data.Items, &items)
	if len(items) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(items))
	}
	if items[0].Email != "second@example.com" {
		t.Errorf("Expected newest first, got %s", items[0].Email)
	}
}

func TestMemberships(t *testing.T) {
	r, gdb := newRouter(t)

	w, _ := do(t, r, http.MethodPost, "/api/admin/memberships", gin.H{"email": "jane@example.com", "plan": "annual"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	// A second grant for the same email is a conflict when done by hand
	w, _ = do(t, r, http.MethodPost, "/api/admin/memberships", gin.H{"email": "jane@example.com"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", w.Code)
	}

	_, resp := do(t, r, http.MethodGet, "/api/admin/memberships", nil)
	var data listData
	json.Unmarshal(resp.Data, &data)
	if data.Total != 1 {
		t.Errorf("Expected 1 membership, got %d", data.Total)
	}

	w, _ = do(t, r, http.MethodDelete, "/api/admin/memberships/jane@example.com", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var count int64
	gdb.Model(&model.PaidMembership{}).Count(&count)
	if count != 0 {
		t.Error("Membership should be gone")
	}
}
