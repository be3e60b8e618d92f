package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/logging"
	"github.com/dmitrijs2005/herbalgarden/internal/server/auth"
	"github.com/dmitrijs2005/herbalgarden/internal/server/config"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/dmitrijs2005/herbalgarden/internal/server/services"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeAuth struct {
	signupIn services.SignupInput
	resetIn  services.ResetInput
	email    string
	code     string

	err      error
	loginRes *services.LoginResult
}

func (f *fakeAuth) Signup(_ context.Context, in services.SignupInput) (int64, error) {
	f.signupIn = in
	return 1, f.err
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*services.LoginResult, error) {
	f.email = email
	if f.err != nil {
		return nil, f.err
	}
	return f.loginRes, nil
}

func (f *fakeAuth) ForgotPassword(_ context.Context, email string) error {
	f.email = email
	return f.err
}

func (f *fakeAuth) VerifyOTP(_ context.Context, email, code string) error {
	f.email, f.code = email, code
	return f.err
}

func (f *fakeAuth) ResetPassword(_ context.Context, in services.ResetInput) error {
	f.resetIn = in
	return f.err
}

type fakeCatalog struct {
	err error

	lastQuery    models.ListQuery
	lastID       int64
	catPatch     models.CategoryPatch
	plantPatch   models.PlantPatch
	createdCat   models.Category
	createdPlant models.Plant
	changed      bool

	categories *models.ListResult[models.Category]
	plants     *services.PlantList
	plant      *models.Plant
	systems    []models.System
}

func (f *fakeCatalog) ListCategories(_ context.Context, q models.ListQuery) (*models.ListResult[models.Category], error) {
	f.lastQuery = q
	return f.categories, f.err
}

func (f *fakeCatalog) CreateCategory(_ context.Context, c models.Category) (*models.Category, error) {
	f.createdCat = c
	if f.err != nil {
		return nil, f.err
	}
	c.ID = 7
	return &c, nil
}

func (f *fakeCatalog) UpdateCategory(_ context.Context, id int64, p models.CategoryPatch) (bool, error) {
	f.lastID, f.catPatch = id, p
	return f.changed, f.err
}

func (f *fakeCatalog) DeleteCategory(_ context.Context, id int64) error {
	f.lastID = id
	return f.err
}

func (f *fakeCatalog) ListPlants(_ context.Context, q models.ListQuery) (*services.PlantList, error) {
	f.lastQuery = q
	return f.plants, f.err
}

func (f *fakeCatalog) GetPlant(_ context.Context, id int64) (*models.Plant, error) {
	f.lastID = id
	return f.plant, f.err
}

func (f *fakeCatalog) CreatePlant(_ context.Context, p models.Plant) (*models.Plant, error) {
	f.createdPlant = p
	if f.err != nil {
		return nil, f.err
	}
	p.ID = 11
	p.Slug = "tulsi"
	return &p, nil
}

func (f *fakeCatalog) UpdatePlant(_ context.Context, id int64, p models.PlantPatch) (bool, error) {
	f.lastID, f.plantPatch = id, p
	return f.changed, f.err
}

func (f *fakeCatalog) DeletePlant(_ context.Context, id int64) error {
	f.lastID = id
	return f.err
}

func (f *fakeCatalog) ListSystems(context.Context) ([]models.System, error) {
	return f.systems, f.err
}

func newTestServer(t *testing.T, a *fakeAuth, c *fakeCatalog) *HTTPServer {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret
	cfg.TLSCertFile = ""
	cfg.TokenValidityDuration = time.Hour
	if a == nil {
		a = &fakeAuth{}
	}
	if c == nil {
		c = &fakeCatalog{}
	}
	return NewHTTPServer(cfg, logging.Nop{}, a, c)
}

func token(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Identity{ID: 1, Email: "a@b.c", Role: role}, []byte(testSecret), ttl)
	require.NoError(t, err)
	return tok
}

func adminToken(t *testing.T) string {
	return token(t, common.RoleAdmin, time.Hour)
}

// do sends a request through the fiber app. body may be empty.
func do(t *testing.T, s *HTTPServer, method, target, body string, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func asAdmin(t *testing.T, s *HTTPServer, method, target, body string) *http.Response {
	t.Helper()
	return do(t, s, method, target, body, map[string]string{
		"Cookie": common.TokenCookieName + "=" + adminToken(t),
	})
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func jsonDecode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
