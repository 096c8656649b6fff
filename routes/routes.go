package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/farm-marketplace/controllers"
	"github.com/yashrajoria/farm-marketplace/middleware"
	"github.com/yashrajoria/farm-marketplace/models"
)

// Controllers bundles everything the router needs.
type Controllers struct {
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Orders   *controllers.OrderController
	Messages *controllers.MessageController
	Admin    *controllers.AdminController
}

// Register wires every route group. Public browse stays open; everything
// else runs behind the JWT middleware with role guards per group.
func Register(r *gin.Engine, c Controllers, jwtSecret []byte) {
	auth := middleware.Auth(jwtSecret)

	// Public catalog
	products := r.Group("/products")
	products.GET("", c.Products.ListPublic)
	products.GET("/:id", c.Products.GetPublic)

	// Farmer listings
	farmer := r.Group("/farmer")
	farmer.Use(auth, middleware.RequireRole(models.RoleFarmer))
	farmer.POST("/products", c.Products.Submit)
	farmer.GET("/products", c.Products.ListMine)
	farmer.DELETE("/products/:id", c.Products.Deactivate)

	// Buyer cart and orders
	cart := r.Group("/cart")
	cart.Use(auth, middleware.RequireRole(models.RoleBuyer))
	cart.GET("", c.Cart.Get)
	cart.POST("/items", c.Cart.AddLine)
	cart.PATCH("/items/:productId", c.Cart.SetLineQuantity)
	cart.DELETE("/items/:productId", c.Cart.RemoveLine)
	cart.DELETE("", c.Cart.Clear)

	orders := r.Group("/orders")
	orders.Use(auth)
	orders.POST("/confirm", middleware.RequireRole(models.RoleBuyer), c.Cart.Confirm)
	orders.GET("", middleware.RequireRole(models.RoleBuyer), c.Orders.ListMine)
	orders.GET("/:id", c.Orders.Get)

	// Messaging, any authenticated role
	messages := r.Group("/messages")
	messages.Use(auth)
	messages.POST("", c.Messages.Send)
	messages.GET("/conversations", c.Messages.ListConversations)
	messages.GET("/thread/:threadId", c.Messages.OpenThread)
	messages.GET("/unread-count", c.Messages.UnreadCount)
	messages.GET("/contacts", c.Messages.Contacts)

	// Admin
	admin := r.Group("/admin")
	admin.Use(auth, middleware.RequireRole(models.RoleAdmin))
	admin.GET("/products/pending", c.Products.ListPending)
	admin.PATCH("/products/:id/approve", c.Products.Approve)
	admin.PATCH("/products/:id/reject", c.Products.Reject)
	admin.GET("/orders/pending", c.Orders.ListPending)
	admin.PATCH("/orders/:id/approve", c.Orders.Approve)
	admin.PATCH("/orders/:id/reject", c.Orders.Reject)
	admin.PATCH("/orders/:id/complete", c.Orders.Complete)
	admin.GET("/activity-logs", c.Admin.ActivityLogs)
	admin.GET("/dashboard/stats", c.Admin.DashboardStats)
	admin.PATCH("/users/:id/toggle-status", c.Admin.ToggleUserStatus)
}
