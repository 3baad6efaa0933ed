package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/payment"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/storage"
	"github.com/Skotchmaster/beauty_shop/internal/testutil"
	"github.com/Skotchmaster/beauty_shop/pkg/tokens"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type stubGateway struct {
	mu      sync.Mutex
	outcome payment.Outcome
	initErr error
}

func (g *stubGateway) Initiate(_ context.Context, req payment.InitiateRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &payment.Session{PaymentURL: "https://pay.test/" + req.OrderID, Pidx: "pidx-" + req.OrderID}, nil
}

func (g *stubGateway) Verify(context.Context, string) (payment.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome, nil
}

type testEnv struct {
	e       *echo.Echo
	repo    *repo.GormRepo
	gateway *stubGateway
	rec     *events.Recorder
	user    uuid.UUID
	userTok string
	admTok  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.InitTestDB(t)}
	images, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	env := &testEnv{
		e:       echo.New(),
		repo:    r,
		gateway: &stubGateway{outcome: payment.Outcome{State: payment.Completed, Status: "Completed"}},
		rec:     &events.Recorder{},
		user:    uuid.New(),
	}

	carts := &service.CartService{Store: r, Products: r, Events: env.rec}
	notes := &service.NotificationService{Repo: r, Events: env.rec}
	profiles := &service.ProfileService{Repo: r}
	orders := &service.OrderService{
		Orders:   r,
		Products: r,
		Carts:    carts,
		Gateway:  env.gateway,
		Events:   env.rec,
		Notifier: notes,
		Cfg: service.OrderConfig{
			FrontendURL:       "https://shop.test",
			DeliveryFee:       decimal.NewFromInt(50),
			StrictTransitions: true,
		},
		Addresses: profiles,
	}

	env.e.HTTPErrorHandler = ErrorHandler
	Register(env.e, &Deps{
		ProductHandler: &ProductHTTP{Svc: &service.CatalogService{Repo: r, Images: images, Events: env.rec}},
		CartHandler:    &CartHTTP{Svc: carts, Currency: "Rs."},
		OrderHandler:   &OrderHTTP{Svc: orders},
		HeroHandler:    &HeroHTTP{Svc: &service.HeroService{Repo: r, Images: images}},
		JWTSecret:      testSecret,
		Ready:          r.Ping,

		NotificationHandler: &NotificationHTTP{Svc: notes},
		ProfileHandler:      &ProfileHTTP{Svc: profiles},
	})

	env.userTok = mustToken(t, env.user.String(), "user")
	env.admTok = mustToken(t, uuid.NewString(), tokens.RoleAdmin)
	return env
}

func mustToken(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(sub, role, time.Now().Add(time.Hour), testSecret)
	require.NoError(t, err)
	return tok
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("token", token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

type uploadPart struct {
	field, name, content string
}

func (env *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, files []uploadPart) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (env *testEnv) seedProduct(t *testing.T, name, price string, shades ...string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: "desc",
		Price:       decimal.RequireFromString(price),
		Brand:       "Glow",
		Category:    models.CategoryLips,
		Images:      []string{"/uploads/" + name + ".png"},
	}
	for _, s := range shades {
		p.Shades = append(p.Shades, models.Shade{Name: s, ColorCode: "#000000", Images: []string{"/uploads/s.png"}})
	}
	created, err := env.repo.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return created
}

func jsonUnmarshal(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
