package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/payment"
	"github.com/01moynul/farinez-golang/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Payment outcome statuses reported by the gateway redirect.
const (
	PaymentApproved = "approved"
	PaymentPending  = "pending"
	PaymentRejected = "rejected"
)

// PaymentResult carries the query parameters of the gateway redirect.
type PaymentResult struct {
	PaymentID         string `form:"payment_id" json:"payment_id"`
	Status            string `form:"status" json:"status"`
	CollectionStatus  string `form:"collection_status" json:"collection_status"`
	MerchantOrderID   string `form:"merchant_order_id" json:"merchant_order_id"`
	PreferenceID      string `form:"preference_id" json:"preference_id"`
	ExternalReference string `form:"external_reference" json:"external_reference"`
	PaymentType       string `form:"payment_type" json:"payment_type"`
	SiteID            string `form:"site_id" json:"site_id"`
	ProcessingMode    string `form:"processing_mode" json:"processing_mode"`
	MerchantAccountID string `form:"merchant_account_id" json:"merchant_account_id"`

	// failure only
	ErrorMessage string `form:"error_message" json:"error_message,omitempty"`
	PayWithCash  string `form:"pay_with_cash" json:"pay_with_cash,omitempty"`
}

func (r PaymentResult) outcome() string {
	status := r.Status
	if status == "" {
		status = r.CollectionStatus
	}
	switch status {
	case PaymentApproved:
		return PaymentApproved
	case PaymentPending, "in_process":
		return PaymentPending
	default:
		return PaymentRejected
	}
}

var outcomeMessages = map[string]string{
	PaymentApproved: "¡Pago exitoso! Tu pedido ha sido procesado correctamente.",
	PaymentPending:  "Pago pendiente. Tu pago está siendo procesado.",
	PaymentRejected: "Algo salió mal... No pudimos procesar tu pago.",
}

// matches reports whether the redirect belongs to the preference this
// session created from a payable wizard.
func (r PaymentResult) matches(sessionID string, st session.State) bool {
	return st.Checkout.PreferenceID != "" &&
		r.PreferenceID == st.Checkout.PreferenceID &&
		r.ExternalReference == sessionID &&
		st.Checkout.ReadyToPay(st.Cart) == nil
}

// GetPaymentResult handles GET /api/pago/resultado. An approved payment turns
// the session cart into a pending paquete and empties the cart once the
// gateway confirms it.
func (h *Handlers) GetPaymentResult(c *gin.Context) {
	var result PaymentResult
	if err := c.ShouldBindQuery(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parámetros de pago inválidos"})
		return
	}
	outcome := result.outcome()
	log := h.Log.WithFields(logrus.Fields{
		"session":    sessionID(c),
		"payment_id": result.PaymentID,
		"status":     outcome,
	})

	resp := gin.H{
		"outcome": outcome,
		"message": outcomeMessages[outcome],
		"payment": result,
	}
	if outcome != PaymentApproved {
		log.Info("payment not approved")
		c.JSON(http.StatusOK, resp)
		return
	}

	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	if st.Cart.Empty() {
		// already recorded on an earlier visit
		c.JSON(http.StatusOK, resp)
		return
	}

	// 1. --- Match Redirect to Checkout ---
	if !result.matches(sessionID(c), st) {
		log.WithField("preference_id", result.PreferenceID).Warn("payment result does not match session checkout")
		c.JSON(http.StatusConflict, gin.H{"error": "El pago no corresponde a este carrito"})
		return
	}

	// 2. --- Confirm with Gateway ---
	paid, err := h.Payments.GetPayment(c.Request.Context(), result.PaymentID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			log.Warn("payment not found at gateway")
			c.JSON(http.StatusConflict, gin.H{"error": "El pago no corresponde a este carrito"})
			return
		}
		log.WithError(err).Error("confirm payment")
		c.JSON(http.StatusBadGateway, gin.H{"error": "No se pudo confirmar el pago"})
		return
	}
	if paid.Status != PaymentApproved || paid.ExternalReference != sessionID(c) {
		log.WithField("gateway_status", paid.Status).Warn("payment not confirmed by gateway")
		c.JSON(http.StatusConflict, gin.H{"error": "El pago no fue aprobado por la pasarela"})
		return
	}

	// 3. --- Record Paquete ---
	paquete, err := h.recordPaquete(c, st)
	if err != nil {
		log.WithError(err).Error("record paquete")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "El pago fue aprobado pero no se pudo registrar el pedido"})
		return
	}

	st.Cart.Clear()
	st.Checkout.Reset()
	if !h.saveSession(c, st) {
		return
	}

	log.WithField("numero_orden", paquete.OrderNumber).Info("payment approved, paquete created")
	resp["paquete"] = paquete
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) recordPaquete(c *gin.Context, st session.State) (models.Paquete, error) {
	items, err := json.Marshal(st.Cart.Items())
	if err != nil {
		return models.Paquete{}, fmt.Errorf("encode items: %w", err)
	}
	totals := st.Checkout.Compute(st.Cart)
	return h.Paquetes.Create(c.Request.Context(), models.Paquete{
		OrderNumber:     newOrderNumber(),
		Total:           totals.Total,
		Status:          models.StatusPending,
		ShippingAddress: checkout.FormatAddress(st.Checkout.Address),
		Items:           items,
	})
}

func newOrderNumber() string {
	return "FZ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// MercadoPagoWebhook handles POST /api/webhooks/mercadopago. Notifications are
// logged and acknowledged.
func (h *Handlers) MercadoPagoWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo inválido"})
		return
	}

	var note struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		Data   struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &note)

	h.Log.WithFields(logrus.Fields{
		"type":    firstNonEmpty(note.Type, c.Query("type"), c.Query("topic")),
		"action":  note.Action,
		"data_id": firstNonEmpty(note.Data.ID, c.Query("data.id"), c.Query("id")),
	}).Info("mercadopago notification")

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// CreatePreference handles POST /api/create-preference: a raw proxy for
// clients that build the item list themselves.
func (h *Handlers) CreatePreference(c *gin.Context) {
	var req payment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error al crear la preferencia de pago"})
		return
	}

	pref, err := h.Payments.CreatePreference(c.Request.Context(), req)
	if err != nil {
		h.Log.WithError(err).Error("create-preference proxy")
		switch {
		case errors.Is(err, payment.ErrGateway):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error al crear la preferencia de pago"})
		case errors.Is(err, payment.ErrMissingRedirect):
			c.JSON(http.StatusBadGateway, gin.H{"error": "La pasarela de pago no devolvió una URL de pago"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                 pref.ID,
		"init_point":         pref.InitPoint,
		"sandbox_init_point": pref.SandboxInitPoint,
	})
}
