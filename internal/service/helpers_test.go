package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/payment"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/storage"
	"github.com/Skotchmaster/beauty_shop/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memImages struct {
	mu      sync.Mutex
	files   map[string]string
	failOn  string
	deleted []string
}

func newMemImages() *memImages {
	return &memImages{files: map[string]string{}}
}

func (m *memImages) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if filepath.Ext(filename) == ".exe" {
		return "", fmt.Errorf("%w: %q", storage.ErrUnsupportedType, filename)
	}
	if m.failOn != "" && filename == m.failOn {
		return "", errors.New("disk full")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "/uploads/" + uuid.NewString() + filepath.Ext(filename)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[url] = string(b)
	return url, nil
}

func (m *memImages) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *memImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func upload(name string) Upload {
	return Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("data:" + name)), nil
		},
	}
}

type fakeGateway struct {
	mu        sync.Mutex
	initiated []payment.InitiateRequest
	initErr   error
	session   *payment.Session
	outcome   payment.Outcome
	verifyErr error
	verified  []string
}

func (g *fakeGateway) Initiate(_ context.Context, req payment.InitiateRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initiated = append(g.initiated, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.session != nil {
		return g.session, nil
	}
	return &payment.Session{PaymentURL: "https://pay.test/" + req.OrderID, Pidx: "pidx-" + req.OrderID}, nil
}

func (g *fakeGateway) Verify(_ context.Context, pidx string) (payment.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified = append(g.verified, pidx)
	return g.outcome, g.verifyErr
}

type failingCarts struct {
	err   error
	calls int
}

func (f *failingCarts) ClearCart(context.Context, uuid.UUID) error {
	f.calls++
	return f.err
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testutil.InitTestDB(t)}
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, price string, shades ...string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: "test product",
		Price:       decimal.RequireFromString(price),
		Brand:       "Glow",
		Category:    models.CategoryLips,
		Images:      []string{"/uploads/" + name + ".png"},
	}
	for _, s := range shades {
		p.Shades = append(p.Shades, models.Shade{Name: s, ColorCode: "#AA0000", Images: []string{"/uploads/" + s + ".png"}})
	}
	created, err := r.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return created
}

type fixture struct {
	repo    *repo.GormRepo
	images  *memImages
	rec     *events.Recorder
	gateway *fakeGateway
	carts   *CartService
	orders  *OrderService
	catalog *CatalogService
	notes   *NotificationService
	profile *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := newTestRepo(t)
	f := &fixture{
		repo:    r,
		images:  newMemImages(),
		rec:     &events.Recorder{},
		gateway: &fakeGateway{outcome: payment.Outcome{State: payment.Completed, Status: "Completed"}},
	}
	f.carts = &CartService{Store: r, Products: r, Events: f.rec}
	f.catalog = &CatalogService{Repo: r, Images: f.images, Events: f.rec}
	f.notes = &NotificationService{Repo: r, Events: f.rec}
	f.profile = &ProfileService{Repo: r}
	f.orders = &OrderService{
		Orders:   r,
		Products: r,
		Carts:    f.carts,
		Gateway:  f.gateway,
		Events:   f.rec,
		Notifier: f.notes,
		Cfg: OrderConfig{
			FrontendURL:       "https://shop.test",
			DeliveryFee:       decimal.NewFromInt(50),
			StrictTransitions: true,
		},
		Addresses: f.profile,
	}
	return f
}
