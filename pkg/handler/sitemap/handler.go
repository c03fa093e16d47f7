/*
 * @Description: 站点地图 HTTP 处理器
 * @Author: 安知鱼
 * @Date: 2025-09-24 15:08:11
 * @LastEditTime: 2025-10-21 20:17:33
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/response"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/sitemap"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/utility"
)

// 出站文档的缓存时长
const outputCacheTTL = 10 * time.Minute

// Handler 站点地图处理器
type Handler struct {
	svc          sitemap.Service
	manager      *sitemap.ProgressManager
	detector     *sitemap.Detector
	cacheSvc     utility.CacheService
	latestWindow time.Duration
}

// NewHandler 创建站点地图处理器
func NewHandler(
	svc sitemap.Service,
	manager *sitemap.ProgressManager,
	detector *sitemap.Detector,
	cacheSvc utility.CacheService,
	latestWindow time.Duration,
) *Handler {
	return &Handler{
		svc:          svc,
		manager:      manager,
		detector:     detector,
		cacheSvc:     cacheSvc,
		latestWindow: latestWindow,
	}
}

// GetSitemapIndex 输出根索引文档
// @Summary      获取站点地图索引
// @Description  列出所有已生成的站点地图文档
// @Tags         公开站点地图
// @Produce      xml
// @Success      200  {string}  string  "XML 索引文档"
// @Router       /sitemap.xml [get]
func (h *Handler) GetSitemapIndex(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := h.cacheSvc.Get(ctx, constant.SitemapIndexCacheKey); err == nil && cached != "" {
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(cached))
		return
	}

	xml, err := h.svc.GenerateIndex(ctx)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	_ = h.cacheSvc.Set(ctx, constant.SitemapIndexCacheKey, xml, outputCacheTTL)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(xml))
}

// GetSitemapFile 输出单个站点地图文档
// @Summary      获取站点地图文档
// @Description  按文件名获取一份已生成的站点地图，如 sitemap-2024-02-29.xml
// @Tags         公开站点地图
// @Produce      xml
// @Param        file  path  string  true  "文件名"
// @Success      200  {string}  string  "XML 文档"
// @Failure      404  {object}  response.Response  "文档不存在"
// @Router       /sitemaps/{file} [get]
func (h *Handler) GetSitemapFile(c *gin.Context) {
	file := c.Param("file")
	dateKey, ok := parseSitemapFileName(file)
	if !ok {
		response.Fail(c, http.StatusBadRequest, "文件名格式不正确")
		return
	}

	ctx := c.Request.Context()
	cacheKey := constant.SitemapFileCachePrefix + dateKey

	if cached, err := h.cacheSvc.Get(ctx, cacheKey); err == nil && cached != "" {
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(cached))
		return
	}

	// 不存在时 GetStored 返回 ErrNotFound，由 FailWithError 映射为 404
	stored, err := h.svc.GetStored(ctx, dateKey)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	_ = h.cacheSvc.Set(ctx, cacheKey, stored.XML, outputCacheTTL)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(stored.XML))
}

// GetRobots 输出 robots.txt
// @Summary      获取 robots.txt
// @Tags         公开站点地图
// @Produce      plain
// @Success      200  {string}  string
// @Router       /robots.txt [get]
func (h *Handler) GetRobots(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := h.cacheSvc.Get(ctx, constant.RobotsCacheKey); err == nil && cached != "" {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(cached))
		return
	}

	body := h.svc.GenerateRobots()
	_ = h.cacheSvc.Set(ctx, constant.RobotsCacheKey, body, outputCacheTTL)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Generate 为指定日期（重新）生成站点地图
// @Summary      生成站点地图
// @Description  为一组日期查询生成站点地图，year 必填，month/day 为 0 表示整月/整年
// @Tags         站点地图管理
// @Accept       json
// @Produce      json
// @Param        body  body  object{dates=[]object{year=int,month=int,day=int},force=bool}  true  "日期查询"
// @Success      200  {object}  response.Response  "操作结果"
// @Failure      400  {object}  response.Response  "请求参数错误"
// @Router       /api/sitemaps/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req struct {
		Dates []struct {
			Year  int `json:"year"`
			Month int `json:"month"`
			Day   int `json:"day"`
		} `json:"dates" binding:"required"`
		Force bool `json:"force"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	queries := make([]model.DateQuery, 0, len(req.Dates))
	for _, d := range req.Dates {
		queries = append(queries, model.DateQuery{Year: d.Year, Month: d.Month, Day: d.Day})
	}

	result := h.svc.GenerateForDateQueries(c.Request.Context(), queries, req.Force, "api")
	h.respondResult(c, result, "生成完成")
}

// GenerateAll 启动覆盖全部内容的后台回填
// @Summary      启动全量回填
// @Description  初始化后台回填队列，由周期任务逐天推进
// @Tags         站点地图管理
// @Produce      json
// @Success      202  {object}  response.Response  "已启动"
// @Failure      409  {object}  response.Response  "已有任务进行中"
// @Router       /api/sitemaps/generate-all [post]
func (h *Handler) GenerateAll(c *gin.Context) {
	if err := h.manager.StartFromAllArticles(c.Request.Context()); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusAccepted, nil, "回填任务已启动")
}

// GenerateLatest 刷新最近有内容更新的日期
// @Summary      刷新近期站点地图
// @Description  为最近窗口内被修改过的内容所在日期重新生成，days 缺省使用配置值
// @Tags         站点地图管理
// @Produce      json
// @Param        days  query  int  false  "回看窗口（天）"
// @Success      200  {object}  response.Response  "操作结果"
// @Router       /api/sitemaps/generate-latest [post]
func (h *Handler) GenerateLatest(c *gin.Context) {
	window := h.latestWindow
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			response.Fail(c, http.StatusBadRequest, "days 参数不正确")
			return
		}
		window = time.Duration(days) * 24 * time.Hour
	}

	result := h.svc.GenerateFromLatest(c.Request.Context(), window, "api")
	h.respondResult(c, result, "刷新完成")
}

// Halt 请求停止后台回填
// @Summary      停止回填
// @Description  协作式停止：当前天单元处理完后停止，队列原样保留
// @Tags         站点地图管理
// @Produce      json
// @Success      200  {object}  response.Response  "已受理"
// @Router       /api/sitemaps/halt [post]
func (h *Handler) Halt(c *gin.Context) {
	if err := h.manager.RequestHalt(c.Request.Context()); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "停止请求已受理")
}

// Resume 恢复被停止的回填
// @Summary      恢复回填
// @Tags         站点地图管理
// @Produce      json
// @Success      200  {object}  response.Response  "已恢复"
// @Router       /api/sitemaps/resume [post]
func (h *Handler) Resume(c *gin.Context) {
	if err := h.manager.Resume(c.Request.Context()); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "回填已恢复")
}

// Reset 丢弃回填进度
// @Summary      重置回填
// @Tags         站点地图管理
// @Produce      json
// @Success      200  {object}  response.Response  "已重置"
// @Router       /api/sitemaps/reset [post]
func (h *Handler) Reset(c *gin.Context) {
	if err := h.manager.Reset(c.Request.Context()); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "回填进度已重置")
}

// Progress 查询回填进度
// @Summary      查询回填进度
// @Tags         站点地图管理
// @Produce      json
// @Success      200  {object}  response.Response  "进度"
// @Router       /api/sitemaps/progress [get]
func (h *Handler) Progress(c *gin.Context) {
	progress, err := h.manager.Status(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	if progress == nil {
		response.Success(c, gin.H{"state": model.GenerationStateIdle, "pending_units": 0}, "获取进度成功")
		return
	}
	response.Success(c, gin.H{
		"state":         progress.State(),
		"pending_units": progress.PendingUnits(),
		"progress":      progress,
	}, "获取进度成功")
}

// Detection 对比内容与存储，返回缺失与过期的日期
// @Summary      覆盖检测
// @Tags         站点地图管理
// @Produce      json
// @Success      200  {object}  response.Response{data=sitemap.DetectionReport}  "检测结果"
// @Router       /api/sitemaps/detection [get]
func (h *Handler) Detection(c *gin.Context) {
	report, err := h.detector.Detect(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, report, "检测完成")
}

// Delete 删除一份已存储的文档
// @Summary      删除站点地图
// @Tags         站点地图管理
// @Produce      json
// @Param        date  path  string  true  "日期键，如 2024-02-29 或 2024-02-29-2"
// @Success      200  {object}  response.Response  "操作结果"
// @Router       /api/sitemaps/{date} [delete]
func (h *Handler) Delete(c *gin.Context) {
	dateKey := c.Param("date")
	result := h.svc.DeleteDate(c.Request.Context(), dateKey)
	h.respondResult(c, result, "删除完成")
}

// respondResult 把操作结果翻译成 HTTP 响应，错误码决定状态码。
func (h *Handler) respondResult(c *gin.Context, result *model.SitemapOperationResult, okMessage string) {
	if result.Success() {
		response.Success(c, result, okMessage)
		return
	}

	status := http.StatusInternalServerError
	switch result.ErrorCode() {
	case constant.CodeValidationFailed:
		status = http.StatusBadRequest
	case constant.CodeRepositoryUnavailable:
		status = http.StatusServiceUnavailable
	case constant.CodeGenerationInProgress:
		status = http.StatusConflict
	}

	c.JSON(status, response.Response{
		Code:    status,
		Message: result.Message(),
		Data:    result,
	})
}

// parseSitemapFileName 从 "sitemap-<日期键>.xml" 里解析日期键。
func parseSitemapFileName(file string) (string, bool) {
	if !strings.HasPrefix(file, "sitemap-") || !strings.HasSuffix(file, ".xml") {
		return "", false
	}
	dateKey := strings.TrimSuffix(strings.TrimPrefix(file, "sitemap-"), ".xml")
	if dateKey == "" {
		return "", false
	}
	return dateKey, true
}
