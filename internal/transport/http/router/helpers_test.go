package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wwreviews/internal/core/database/dbtest"
	"wwreviews/internal/domain"
	"wwreviews/internal/service"
	"wwreviews/pkg/utils"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type listBody struct {
	List   []map[string]any `json:"list"`
	Total  int64            `json:"total"`
	Limit  *int             `json:"limit"`
	Offset *int             `json:"offset"`
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	return Deps{
		Log:     zap.NewNop(),
		DB:      db,
		Catalog: service.NewCatalogService(nil),
		Reviews: service.NewReviewService(db),
		Members: service.NewMemberService(db, nil, nil),
	}
}

func newTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	d := testDeps(t)
	return NewAPIEngine(d), d.DB
}

// seedMember 建 user + member + token，返回 token 与 user id
func seedMember(t *testing.T, db *gorm.DB, name string, role domain.Role) (string, uint) {
	t.Helper()
	u := domain.User{Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, db.Create(&domain.Member{UserID: u.ID, Role: role, RedditUsername: name}).Error)
	tok := domain.AuthToken{Key: utils.NewTokenKey(), UserID: u.ID}
	require.NoError(t, db.Create(&tok).Error)
	return tok.Key, u.ID
}

func seedCategory(t *testing.T, db *gorm.DB, name string, parent *uint) domain.Category {
	t.Helper()
	c := domain.Category{Name: name, ParentID: parent}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, categoryID uint) domain.Product {
	t.Helper()
	p := domain.Product{
		ProductBase: domain.ProductBase{
			Name:     name,
			Price:    price,
			Link:     "https://example.com/" + name,
			ImageURL: "https://img.example.com/" + name + ".png",
		},
		CategoryID: categoryID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func newRecorder(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
