/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-25 10:35:28
 * @LastEditTime: 2025-10-24 16:15:28
 * @LastEditors: 安知鱼
 */
// anheyu-sitemap/cmd/server/app.go
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-sitemap/internal/app/listener"
	"github.com/anzhiyu-c/anheyu-sitemap/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-sitemap/internal/app/task"
	"github.com/anzhiyu-c/anheyu-sitemap/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-sitemap/internal/infra/persistence/sqldb"
	"github.com/anzhiyu-c/anheyu-sitemap/internal/infra/router"
	"github.com/anzhiyu-c/anheyu-sitemap/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/config"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/repository"
	sitemap_handler "github.com/anzhiyu-c/anheyu-sitemap/pkg/handler/sitemap"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/sitemap"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/utility"
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg        *config.Config
	engine     *gin.Engine
	taskBroker *task.Broker
	sqlDB      *sql.DB
	sitemapSvc sitemap.Service
	manager    *sitemap.ProgressManager
	detector   *sitemap.Detector
	cacheSvc   utility.CacheService
	eventBus   *event.EventBus
	contentSrc repository.ContentSource
	storeRepo  repository.SitemapRepository
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, driverName, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}

	dbType := cfg.GetString(config.KeyDBType)
	if dbType == "" {
		dbType = "mysql"
	}
	if dbType == "mariadb" {
		dbType = "mysql"
	}

	// 尝试连接 Redis（如果失败，将自动降级到内存缓存）
	redisClient, err := database.NewRedisClient(context.Background(), cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("redis 初始化失败: %w", err)
	}

	cleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		sqlDB.Close()
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	// --- Phase 3: 数据库结构迁移 ---
	migrator := database.NewMigrationService(sqlDB, dbType)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return nil, cleanup, fmt.Errorf("数据库初始化失败: %w", err)
	}

	eventBus := event.NewEventBus()

	// 使用智能缓存工厂，自动选择 Redis 或内存缓存
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient)

	// --- Phase 4: 初始化数据仓库层 ---
	sqlxDB := database.NewSqlxDB(sqlDB, driverName)
	siteURL := cfg.GetString(config.KeySiteURL)
	contentSrc := sqldb.NewArticleContentSource(sqlxDB, siteURL)
	storeRepo := sqldb.NewSitemapRepository(sqlxDB)
	progressRepo := sqldb.NewProgressRepository(sqlxDB)

	// --- Phase 5: 初始化业务逻辑层 ---
	stalenessTolerance := time.Duration(cfg.GetIntDefault(config.KeySitemapStalenessToleranceSec, 5)) * time.Second
	sitemapSvc := sitemap.NewService(contentSrc, storeRepo, eventBus, sitemap.Options{
		SiteURL:            siteURL,
		MaxURLsPerFile:     cfg.GetInt(config.KeySitemapMaxURLs),
		QueryBatchSize:     cfg.GetInt(config.KeySitemapBatchSize),
		StalenessTolerance: stalenessTolerance,
		IncludeImages:      cfg.GetBool(config.KeySitemapIncludeImages),
	})
	detector := sitemap.NewDetector(contentSrc, storeRepo, stalenessTolerance)
	manager := sitemap.NewProgressManager(progressRepo, contentSrc, sitemapSvc, eventBus)

	latestWindow := time.Duration(cfg.GetIntDefault(config.KeySitemapLatestWindowDays, 7)) * 24 * time.Hour

	// --- Phase 6: 初始化后台任务与事件监听 ---
	taskBroker := task.NewBroker(sitemapSvc, manager, detector, latestWindow)
	listener.NewSitemapCacheListener(eventBus, cacheSvc)

	// --- Phase 7: 初始化 HTTP 层 ---
	if !cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.Use(middleware.Cors())

	sitemapHandler := sitemap_handler.NewHandler(sitemapSvc, manager, detector, cacheSvc, latestWindow)
	appRouter := router.NewRouter(sitemapHandler)
	appRouter.Setup(engine)

	app := &App{
		cfg:        cfg,
		engine:     engine,
		taskBroker: taskBroker,
		sqlDB:      sqlDB,
		sitemapSvc: sitemapSvc,
		manager:    manager,
		detector:   detector,
		cacheSvc:   cacheSvc,
		eventBus:   eventBus,
		contentSrc: contentSrc,
		storeRepo:  storeRepo,
	}

	return app, cleanup, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) DB() *sql.DB {
	return a.sqlDB
}

func (a *App) CacheService() utility.CacheService {
	return a.cacheSvc
}

// SitemapService 返回站点地图编排服务
func (a *App) SitemapService() sitemap.Service {
	return a.sitemapSvc
}

// EventBus 返回事件总线，用于发布和订阅事件
func (a *App) EventBus() *event.EventBus {
	return a.eventBus
}

func (a *App) Run() error {
	a.taskBroker.RegisterCronJobs()
	a.taskBroker.Start()
	a.taskBroker.DispatchDetectionReport()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)

	return a.engine.Run(":" + port)
}

func (a *App) Stop() {
	if a.taskBroker != nil {
		a.taskBroker.Stop()
		log.Println("任务调度器已停止。")
	}
	if a.eventBus != nil {
		a.eventBus.Shutdown()
	}
}
