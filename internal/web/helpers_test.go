package web

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	mydb "storefront/internal/db"
	"storefront/internal/metrics"
	models "storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/upload"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testApp struct {
	t         *testing.T
	srv       *httptest.Server
	products  *store.Products
	users     *store.Users
	metrics   *metrics.Metrics
	uploadDir string
}

func newApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := mydb.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, mydb.Migrate(gdb))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	products := store.NewProducts(gdb)
	users := store.NewUsers(gdb)
	dir := t.TempDir()
	m := metrics.New()

	r, err := NewRouter(Deps{
		DB:            gdb,
		Products:      products,
		Users:         users,
		Cart:          cart.NewService(cart.NewMemoryStore(time.Hour), products, log),
		Uploads:       upload.New(upload.NewLocalDisk(dir, "/uploads/productos"), 4<<20),
		Metrics:       m,
		Log:           log,
		SessionSecret: "test-secret",
		UploadRoot:    dir,
		UploadURL:     "/uploads/productos",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testApp{t: t, srv: srv, products: products, users: users, metrics: m, uploadDir: dir}
}

func (a *testApp) product(name, price string, stock int) *models.Product {
	a.t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(a.t, a.products.Create(context.Background(), p))
	return p
}

func (a *testApp) user(email, pw string, role models.Role) *models.User {
	a.t.Helper()
	u := &models.User{Email: email, Role: role}
	require.NoError(a.t, u.SetPassword(pw))
	require.NoError(a.t, a.users.Create(context.Background(), u))
	return u
}

// visitor — браузер с собственной cookie-сессией
type visitor struct {
	app    *testApp
	client *http.Client
}

func (a *testApp) visitor() *visitor {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &visitor{app: a, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

type page struct {
	status   int
	location string
	body     string
}

func (v *visitor) do(req *http.Request) page {
	v.app.t.Helper()
	resp, err := v.client.Do(req)
	require.NoError(v.app.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(v.app.t, err)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (v *visitor) get(path string) page {
	req, err := http.NewRequest(http.MethodGet, v.app.srv.URL+path, nil)
	require.NoError(v.app.t, err)
	return v.do(req)
}

func (v *visitor) post(path string, form url.Values, headers ...string) page {
	req, err := http.NewRequest(http.MethodPost, v.app.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(v.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return v.do(req)
}

// postMultipart шлёт форму товара; filename == "" - без файла
func (v *visitor) postMultipart(path string, fields map[string]string, filename string, content []byte) page {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, val := range fields {
		require.NoError(v.app.t, mw.WriteField(k, val))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(v.app.t, err)
		_, err = part.Write(content)
		require.NoError(v.app.t, err)
	}
	require.NoError(v.app.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, v.app.srv.URL+path, &body)
	require.NoError(v.app.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return v.do(req)
}

func (v *visitor) login(email, pw string) {
	v.app.t.Helper()
	p := v.post("/login", url.Values{"email": {email}, "password": {pw}})
	require.Equal(v.app.t, http.StatusSeeOther, p.status, p.body)
}

var tokenRe = regexp.MustCompile(`action="/admin/producto/(\d+)/delete"[^>]*>\s*<input type="hidden" name="_token" value="([0-9a-f]+)"`)

// deleteTokens: product id -> токен из списка админки
func deleteTokens(body string) map[string]string {
	out := map[string]string{}
	for _, m := range tokenRe.FindAllStringSubmatch(body, -1) {
		out[m[1]] = m[2]
	}
	return out
}
