package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/01moynul/farinez-golang/internal/auth"
	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/01moynul/farinez-golang/internal/config"
	"github.com/01moynul/farinez-golang/internal/middleware"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/payment"
	"github.com/01moynul/farinez-golang/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	h        *Handlers
	products *fakeProducts
	recipes  *fakeRecipes
	users    *fakeUsers
	paquetes *fakePaquetes
	gateway  *fakeGateway
	geocoder *fakeGeocoder
	router   *gin.Engine
	session  string
}

type envOption func(*testEnv)

func withGeocoding(place checkout.Place, err error) envOption {
	return func(e *testEnv) {
		e.geocoder = &fakeGeocoder{place: place, err: err}
		e.h.Geocoder = e.geocoder
		e.h.Config.CheckoutGeocoding = true
		e.h.Sessions = session.NewMemoryStore(true)
	}
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	e := &testEnv{
		products: &fakeProducts{},
		recipes:  &fakeRecipes{},
		users:    &fakeUsers{},
		paquetes: &fakePaquetes{},
		gateway:  &fakeGateway{pref: payment.Preference{ID: "pref-1", InitPoint: "https://mp.test/checkout/pref-1"}},
		session:  uuid.NewString(),
	}
	e.h = &Handlers{
		Products: e.products,
		Recipes:  e.recipes,
		Users:    e.users,
		Paquetes: e.paquetes,
		Sessions: session.NewMemoryStore(false),
		Guard:    checkout.NewSubmitGuard(),
		Auth:     auth.NewIssuer("test-secret"),
		Payments: e.gateway,
		Config: &config.Config{
			Shipping:          checkout.DefaultTiers,
			RecipeEditEnabled: true,
			UploadDir:         t.TempDir(),
			APIBaseURL:        "http://api.test",
		},
		Log: log,
	}
	e.gateway.payment = payment.Payment{ID: 123, Status: "approved", ExternalReference: e.session}
	for _, opt := range opts {
		opt(e)
	}
	e.router = testRouter(e.h)
	return e
}

// testRouter mounts the handlers the way the API router does.
func testRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/validate", h.ValidateCredentials)
	api.GET("/productos", h.ListProducts)
	api.GET("/productos/:id", h.GetProduct)
	api.GET("/catalogo/productos", h.BrowseProducts)
	api.GET("/catalogo/recetas", h.BrowseRecipes)
	api.GET("/recetas/:id", h.GetRecipe)
	api.GET("/recetas/:id/ingredientes", h.GetRecipeIngredients)
	api.GET("/categorias", h.ListCategories)
	api.POST("/create-preference", h.CreatePreference)
	api.POST("/webhooks/mercadopago", h.MercadoPagoWebhook)

	sess := api.Group("/", middleware.SessionMiddleware(false))
	sess.GET("/carrito", h.GetCart)
	sess.POST("/carrito/items", h.AddToCart)
	sess.PUT("/carrito/items/:id", h.UpdateCartItem)
	sess.DELETE("/carrito/items/:id", h.RemoveCartItem)
	sess.DELETE("/carrito", h.ClearCart)
	sess.POST("/recetas/:id/carrito", h.AddIngredientsToCart)
	sess.GET("/checkout", h.GetCheckout)
	sess.POST("/checkout/siguiente", h.NextStep)
	sess.POST("/checkout/anterior", h.PrevStep)
	sess.PUT("/checkout/direccion", h.SetAddress)
	sess.POST("/checkout/ubicacion", h.SetLocation)
	sess.POST("/checkout/pagar", h.Pay)
	sess.GET("/pago/resultado", h.GetPaymentResult)

	admin := api.Group("/", middleware.AuthMiddleware(h.Auth), middleware.RoleMiddleware(models.RoleAdmin))
	admin.POST("/productos", h.CreateProduct)
	admin.PUT("/productos/:id", h.UpdateProduct)
	admin.DELETE("/productos/:id", h.DeleteProduct)
	admin.POST("/recetas", h.CreateRecipe)
	admin.PUT("/recetas/:id", h.UpdateRecipe)
	admin.DELETE("/recetas/:id", h.DeleteRecipe)
	admin.GET("/usuarios", h.ListUsers)
	admin.POST("/usuarios", h.CreateUser)
	admin.POST("/uploads", h.UploadImage)
	admin.GET("/admin/estadisticas", h.GetAdminStats)

	staff := api.Group("/paquetes", middleware.AuthMiddleware(h.Auth), middleware.RoleMiddleware(models.RoleAdmin, models.RoleOperator))
	staff.GET("", h.ListPaquetes)
	staff.GET("/:id", h.GetPaquete)
	staff.PUT("/:id", h.UpdatePaquete)
	return r
}

func (e *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := e.h.Auth.GenerateToken("tester", role)
	require.NoError(t, err)
	return tok
}

// do sends a JSON request on the env's cart session. token may be empty.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, e.session)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["error"].(string)
}

func fullAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Name:       "Lucía Pérez",
		Street:     "Av. Corrientes 1234",
		Floor:      "3B",
		Locality:   "San Nicolás",
		Department: "Comuna 1",
		Province:   "Buenos Aires",
		Phone:      "1155554444",
	}
}

func (e *testEnv) seedProduct(p models.Product) models.Product {
	p.ID = int64(len(e.products.items) + 1)
	e.products.items = append(e.products.items, p)
	return p
}
