/*
 * @Description: 路由注册
 * @Author: 安知鱼
 * @Date: 2025-09-25 09:14:02
 * @LastEditTime: 2025-10-22 17:05:48
 * @LastEditors: 安知鱼
 */
package router

import (
	"github.com/gin-gonic/gin"

	sitemap_handler "github.com/anzhiyu-c/anheyu-sitemap/pkg/handler/sitemap"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")

		// 继续处理请求
		c.Next()
	})
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	sitemapHandler *sitemap_handler.Handler
}

// NewRouter 是 Router 的构造函数。
func NewRouter(
	sitemapHandler *sitemap_handler.Handler,
) *Router {
	return &Router{
		sitemapHandler: sitemapHandler,
	}
}

// Setup 注册全部路由。
func (r *Router) Setup(engine *gin.Engine) {
	// 公开的出站文档，允许搜索引擎与 CDN 缓存
	engine.GET("/sitemap.xml", r.sitemapHandler.GetSitemapIndex)
	engine.GET("/sitemaps/:file", r.sitemapHandler.GetSitemapFile)
	engine.GET("/robots.txt", r.sitemapHandler.GetRobots)

	apiGroup := engine.Group("/api")
	// API 响应永不缓存
	apiGroup.Use(NoCacheMiddleware())

	r.registerSitemapRoutes(apiGroup)
}

// registerSitemapRoutes 注册站点地图管理接口。
func (r *Router) registerSitemapRoutes(api *gin.RouterGroup) {
	group := api.Group("/sitemaps")
	{
		group.POST("/generate", r.sitemapHandler.Generate)
		group.POST("/generate-all", r.sitemapHandler.GenerateAll)
		group.POST("/generate-latest", r.sitemapHandler.GenerateLatest)
		group.POST("/halt", r.sitemapHandler.Halt)
		group.POST("/resume", r.sitemapHandler.Resume)
		group.POST("/reset", r.sitemapHandler.Reset)
		group.GET("/progress", r.sitemapHandler.Progress)
		group.GET("/detection", r.sitemapHandler.Detection)
		group.DELETE("/:date", r.sitemapHandler.Delete)
	}
}
