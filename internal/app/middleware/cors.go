/*
 * @Description: 管理接口的跨域处理
 * @Author: 安知鱼
 * @Date: 2025-09-25 11:02:40
 * @LastEditTime: 2025-10-12 17:26:09
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Cors 只为 /api 下的管理接口做跨域放行。
// 公开的 XML 端点面向爬虫，不需要跨域头。
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		origin := c.Request.Header.Get("Origin")
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")

		// 预检请求直接应答
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
