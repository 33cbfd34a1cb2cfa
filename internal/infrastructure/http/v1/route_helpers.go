// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// ContentRouteHandler defines the interface for numbered content handlers.
type ContentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterContentRoutes registers standard CRUD routes for numbered content.
// param names the item path parameter; deleteGuards run before Delete.
//
// Usage:
//
//	handler := handlers.NewChapterHandler(baseHandler, chapterService)
//	RegisterContentRoutes(books.Group("/:id/chapters"), handler, "chapterId")
func RegisterContentRoutes(group *gin.RouterGroup, handler ContentRouteHandler, param string, deleteGuards ...gin.HandlerFunc) {
	item := "/:" + param

	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET(item, handler.Get)
	group.PUT(item, handler.Update)
	group.DELETE(item, append(deleteGuards, handler.Delete)...)
}
