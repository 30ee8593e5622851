package handlers

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/payment"
	"github.com/01moynul/farinez-golang/internal/store"
)

// --- in-memory stores ---

type fakeProducts struct {
	mu      sync.Mutex
	items   []models.Product
	creates int
}

func (f *fakeProducts) List(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items), nil
}

func (f *fakeProducts) Get(_ context.Context, id int64) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, store.ErrNotFound
}

func (f *fakeProducts) GetMany(ctx context.Context, ids []int64) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, err := f.Get(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Create(_ context.Context, p models.Product) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	p.ID = int64(len(f.items) + 1)
	f.items = append(f.items, p)
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, p models.Product) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == p.ID {
			f.items[i] = p
			return p, nil
		}
	}
	return models.Product{}, store.ErrNotFound
}

func (f *fakeProducts) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeProducts) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

type fakeRecipes struct {
	mu      sync.Mutex
	items   []models.Recipe
	creates int
}

func (f *fakeRecipes) List(context.Context) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items), nil
}

func (f *fakeRecipes) Get(_ context.Context, id int64) (models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Recipe{}, store.ErrNotFound
}

func (f *fakeRecipes) Create(_ context.Context, r models.Recipe) (models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	r.ID = int64(len(f.items) + 1)
	f.items = append(f.items, r)
	return r, nil
}

func (f *fakeRecipes) Update(_ context.Context, r models.Recipe) (models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == r.ID {
			f.items[i] = r
			return r, nil
		}
	}
	return models.Recipe{}, store.ErrNotFound
}

func (f *fakeRecipes) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRecipes) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

type fakeUsers struct {
	mu    sync.Mutex
	items []models.User
}

func (f *fakeUsers) List(_ context.Context, filter store.UserFilter) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.items {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if n := strings.ToLower(strings.TrimSpace(filter.Name)); n != "" &&
			!strings.Contains(strings.ToLower(u.Name), n) && !strings.Contains(strings.ToLower(u.Username), n) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = int64(len(f.items) + 1)
	f.items = append(f.items, u)
	return u, nil
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

type fakePaquetes struct {
	mu    sync.Mutex
	items []models.Paquete
}

func (f *fakePaquetes) List(context.Context) ([]models.Paquete, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items), nil
}

func (f *fakePaquetes) Get(_ context.Context, id int64) (models.Paquete, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Paquete{}, store.ErrNotFound
}

func (f *fakePaquetes) Create(_ context.Context, p models.Paquete) (models.Paquete, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.items) + 1)
	p.CreatedAt = time.Now()
	f.items = append(f.items, p)
	return p, nil
}

func (f *fakePaquetes) Update(_ context.Context, p models.Paquete) (models.Paquete, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == p.ID {
			p.CreatedAt = f.items[i].CreatedAt
			f.items[i] = p
			return p, nil
		}
	}
	return models.Paquete{}, store.ErrNotFound
}

func (f *fakePaquetes) Stats(context.Context) (store.PaqueteStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s store.PaqueteStats
	for _, p := range f.items {
		s.Total++
		if p.IsShipped() {
			s.Shipped++
		}
		s.Revenue += p.Total
	}
	return s, nil
}

// --- outbound fakes ---

type fakeGeocoder struct {
	place checkout.Place
	err   error
	calls []string
}

func (f *fakeGeocoder) Search(_ context.Context, q string) (checkout.Place, error) {
	f.calls = append(f.calls, q)
	return f.place, f.err
}

func (f *fakeGeocoder) Reverse(context.Context, float64, float64) (checkout.Place, error) {
	f.calls = append(f.calls, "reverse")
	return f.place, f.err
}

type fakeGateway struct {
	mu      sync.Mutex
	pref    payment.Preference
	err     error
	calls   int
	last    payment.Request
	started chan struct{}
	block   chan struct{}

	payment    payment.Payment
	paymentErr error
	lookups    int
}

func (f *fakeGateway) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.paymentErr != nil {
		return payment.Payment{}, f.paymentErr
	}
	if id == "" || fmt.Sprint(f.payment.ID) != id {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	return f.payment, nil
}

func (f *fakeGateway) CreatePreference(_ context.Context, req payment.Request) (payment.Preference, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return f.pref, f.err
	}
	if _, err := f.pref.RedirectURL(); err != nil {
		return f.pref, err
	}
	return f.pref, nil
}
