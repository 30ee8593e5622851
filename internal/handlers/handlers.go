package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/01moynul/farinez-golang/internal/auth"
	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/01moynul/farinez-golang/internal/config"
	"github.com/01moynul/farinez-golang/internal/middleware"
	"github.com/01moynul/farinez-golang/internal/payment"
	"github.com/01moynul/farinez-golang/internal/session"
	"github.com/01moynul/farinez-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Geocoder resolves typed addresses and map clicks.
type Geocoder interface {
	Search(ctx context.Context, query string) (checkout.Place, error)
	Reverse(ctx context.Context, lat, lon float64) (checkout.Place, error)
}

// PaymentGateway creates hosted checkout preferences and looks up the
// payments made against them.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, req payment.Request) (payment.Preference, error)
	GetPayment(ctx context.Context, id string) (payment.Payment, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Products store.ProductStore
	Recipes  store.RecipeStore
	Users    store.UserStore
	Paquetes store.PaqueteStore

	Sessions session.Store
	Guard    *checkout.SubmitGuard
	Auth     *auth.Issuer
	Geocoder Geocoder // nil unless CheckoutGeocoding is on
	Payments PaymentGateway

	Config *config.Config
	Log    logrus.FieldLogger
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return id, true
}

// storeFailure answers a repository error: 404 for missing rows, 500 (logged)
// otherwise.
func (h *Handlers) storeFailure(c *gin.Context, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	h.Log.WithError(err).WithField("path", c.FullPath()).Error(failMsg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
}

// --- Session helpers ---

func sessionID(c *gin.Context) string {
	return c.GetString(middleware.CtxSessionID)
}

// loadSession fetches the caller's cart and checkout state. On failure it has
// already answered the request.
func (h *Handlers) loadSession(c *gin.Context) (session.State, bool) {
	st, err := h.Sessions.Load(c.Request.Context(), sessionID(c))
	if err != nil {
		h.Log.WithError(err).WithField("session", sessionID(c)).Error("load session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer el carrito"})
		return session.State{}, false
	}
	return st, true
}

func (h *Handlers) saveSession(c *gin.Context, st session.State) bool {
	if err := h.Sessions.Save(c.Request.Context(), sessionID(c), st); err != nil {
		h.Log.WithError(err).WithField("session", sessionID(c)).Error("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo guardar el carrito"})
		return false
	}
	return true
}
