package routes

import (
	"net/http"
	"strings"

	"github.com/01moynul/farinez-golang/internal/handlers"
	"github.com/01moynul/farinez-golang/internal/middleware"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware lets the storefront at origin call the API with credentials.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+middleware.SessionHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.SessionHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware(h.Config.CORSOrigin))

	router.Static("/uploads", h.Config.UploadDir)

	requireAuth := middleware.AuthMiddleware(h.Auth)
	adminOnly := middleware.RoleMiddleware(models.RoleAdmin)
	staff := middleware.RoleMiddleware(models.RoleAdmin, models.RoleOperator)

	api := router.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth ---
		api.POST("/auth/validate", h.ValidateCredentials)

		// --- Public Catalog ---
		api.GET("/productos", h.ListProducts)
		api.GET("/productos/:id", h.GetProduct)
		api.GET("/recetas", h.ListRecipes)
		api.GET("/recetas/:id", h.GetRecipe)
		api.GET("/recetas/:id/ingredientes", h.GetRecipeIngredients)
		api.GET("/catalogo/productos", h.BrowseProducts)
		api.GET("/catalogo/recetas", h.BrowseRecipes)
		api.GET("/categorias", h.ListCategories)

		// --- Payment Gateway ---
		api.POST("/create-preference", h.CreatePreference)
		api.POST("/webhooks/mercadopago", h.MercadoPagoWebhook)

		// --- Session Routes (cart, checkout, payment outcome) ---
		sess := api.Group("/")
		sess.Use(middleware.SessionMiddleware(strings.HasPrefix(h.Config.PublicURL, "https://")))
		{
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
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/")
		admin.Use(requireAuth, adminOnly)
		{
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
		}

		// --- Staff Routes (administrador + operador) ---
		staffGroup := api.Group("/paquetes")
		staffGroup.Use(requireAuth, staff)
		{
			staffGroup.GET("", h.ListPaquetes)
			staffGroup.GET("/:id", h.GetPaquete)
			staffGroup.PUT("/:id", h.UpdatePaquete)
		}
	}

	return router
}
