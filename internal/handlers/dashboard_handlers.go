package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/store"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

//
// --- Admin Dashboard Stats ---
//

type AdminStats struct {
	Products      int     `json:"productos"`
	Recipes       int     `json:"recetas"`
	Users         int     `json:"usuarios"`
	Orders        int     `json:"pedidos"`
	ShippedOrders int     `json:"pedidos_enviados"`
	TotalSales    float64 `json:"ventas_totales"`
	Growth        string  `json:"crecimiento"`
}

// GrowthRate is the share of shipped paquetes over all of them, as "12.50%".
// With no paquetes it is "0%".
func GrowthRate(shipped, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(shipped)/float64(total)*100)
}

// GetAdminStats handles GET /api/admin/estadisticas. The four counts are
// fetched concurrently.
func (h *Handlers) GetAdminStats(c *gin.Context) {
	var (
		stats    AdminStats
		paquetes store.PaqueteStats
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		stats.Products, err = h.Products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Recipes, err = h.Recipes.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Users, err = h.Users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		paquetes, err = h.Paquetes.Stats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.storeFailure(c, err, "", "Error al cargar las estadísticas")
		return
	}

	stats.Orders = paquetes.Total
	stats.ShippedOrders = paquetes.Shipped
	stats.TotalSales = models.RoundCents(paquetes.Revenue)
	stats.Growth = GrowthRate(paquetes.Shipped, paquetes.Total)

	c.JSON(http.StatusOK, stats)
}
