package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Paquete (shipment) Handlers: administrador and operador ---
//

// PaqueteInput is the full record sent by the status screen. Any state may
// follow any other.
type PaqueteInput struct {
	OrderNumber     string          `json:"numero_orden" binding:"required"`
	UserID          int64           `json:"usuario_id" binding:"gte=0"`
	Total           models.Amount   `json:"total" binding:"gte=0"`
	Status          string          `json:"estado" binding:"required"`
	ShippingAddress string          `json:"direccion_envio"`
	Items           json.RawMessage `json:"items"`
}

// ListPaquetes handles GET /api/paquetes, newest first.
func (h *Handlers) ListPaquetes(c *gin.Context) {
	paquetes, err := h.Paquetes.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar los paquetes")
		return
	}
	models.SortNewestFirst(paquetes)
	c.JSON(http.StatusOK, paquetes)
}

// GetPaquete handles GET /api/paquetes/:id
func (h *Handlers) GetPaquete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.Paquetes.Get(c.Request.Context(), id)
	if err != nil {
		h.storeFailure(c, err, "Paquete no encontrado", "Error al cargar el paquete")
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdatePaquete handles PUT /api/paquetes/:id
func (h *Handlers) UpdatePaquete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input PaqueteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo actualizar el estado del paquete: " + err.Error()})
		return
	}
	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Estado inválido",
			"allowed":  models.PaqueteStatuses,
			"received": input.Status,
		})
		return
	}
	if len(input.Items) > 0 && !json.Valid(input.Items) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Los items del paquete no son JSON válido"})
		return
	}

	// 2. --- Save ---
	updated, err := h.Paquetes.Update(c.Request.Context(), models.Paquete{
		ID:              id,
		OrderNumber:     strings.TrimSpace(input.OrderNumber),
		UserID:          input.UserID,
		Total:           input.Total.Cents(),
		Status:          input.Status,
		ShippingAddress: input.ShippingAddress,
		Items:           input.Items,
	})
	if err != nil {
		h.storeFailure(c, err, "Paquete no encontrado", "No se pudo actualizar el estado del paquete")
		return
	}

	h.Log.WithField("paquete_id", id).WithField("estado", updated.Status).Info("paquete status updated")
	c.JSON(http.StatusOK, updated)
}
