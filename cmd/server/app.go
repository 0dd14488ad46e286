// anheyu-photos/cmd/server/app.go
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-photos/internal/app/task"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/config"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/logger"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/database"
	ent_impl "github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/migrate"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/router"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-photos/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-photos/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	album_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/album"
	photo_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/photo"
	search_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/search"
	user_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/user"
	version_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/version"
	webhook_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/webhook"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/album"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/cleanup"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/engagement"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
	parser_service "github.com/anzhiyu-c/anheyu-photos/pkg/service/parser"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/photo"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/search"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/user"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/webhook"
)

const defaultPort = "8091"

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg        *config.Config
	engine     *gin.Engine
	server     *http.Server
	taskBroker *task.Broker
	sqlDB      *sql.DB
	mw         *middleware.Middleware
}

// printBanner 打印应用启动 banner
func (a *App) printBanner() {
	banner := `

       █████╗ ███╗   ██╗██╗  ██╗███████╗██╗   ██╗██╗   ██╗
      ██╔══██╗████╗  ██║██║  ██║██╔════╝╚██╗ ██╔╝██║   ██║
      ███████║██╔██╗ ██║███████║█████╗   ╚████╔╝ ██║   ██║
      ██╔══██║██║╚██╗██║██╔══██║██╔══╝    ╚██╔╝  ██║   ██║
      ██║  ██║██║ ╚████║██║  ██║███████╗   ██║   ╚██████╔╝
      ╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝╚══════╝   ╚═╝    ╚═════╝

`
	log.Println(banner)
	log.Println("--------------------------------------------------------")
	log.Printf(" Anheyu Photos %s\n", version.GetVersionString())
	log.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	ctx := context.Background()

	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	zapLogger, err := logger.New(cfg.GetString(config.KeyLogLevel), cfg.GetString(config.KeyLogFormat))
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}
	drv, err := database.NewDriver(sqlDB, cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("创建数据库驱动失败: %w", err)
	}
	if err := migrate.Create(ctx, drv); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	var (
		redisClient *redis.Client
		cacheSvc    utility.CacheService
	)
	redisClient, err = database.NewRedisClient(ctx, cfg)
	if err != nil {
		// 未配置或无法连接 Redis 时退回进程内缓存，多实例部署时 Webhook 去重只在单实例内有效
		zap.S().Warnf("Redis 不可用，使用内存缓存: %v", err)
		cacheSvc = utility.NewMemoryCacheService()
	} else {
		cacheSvc = utility.NewRedisCacheService(redisClient)
	}

	provider, err := storage.NewProvider(ctx, storage.PolicyFromConfig(cfg))
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("初始化对象存储失败: %w", err)
	}

	cleanupFunc := func() {
		log.Println("执行清理操作：关闭数据库和Redis连接...")
		if redisClient != nil {
			redisClient.Close()
		}
		sqlDB.Close()
		_ = zapLogger.Sync()
	}

	// --- Phase 3: 初始化数据仓库层 ---
	repos := ent_impl.NewRepositories(drv)

	// --- Phase 4: 初始化业务逻辑层 ---
	parserSvc := parser_service.NewService()
	imageSvc := utility.NewImageService(utility.NewColorService(), constant.ThumbnailMaxSize)
	cleanupSvc := cleanup.NewService(provider, repos.Orphan)
	identitySvc := identity.NewService(repos.User, cacheSvc)
	userSvc := user.NewUserService(repos.User, repos.Album, identitySvc)
	albumSvc := album.NewAlbumService(repos.Album, repos.Photo, cleanupSvc)
	photoSvc := photo.NewPhotoService(repos.Album, repos.Photo, repos.Like, repos.Bookmark, provider, imageSvc, cleanupSvc)
	engagementSvc := engagement.NewService(repos.User, repos.Album, repos.Photo, repos.Like, repos.Comment, repos.Bookmark, repos.Follow, parserSvc)
	searchSvc := search.NewService(userSvc, albumSvc, photoSvc)

	var webhookSvc *webhook.Service
	if secret := cfg.GetString(config.KeyWebhookSecret); secret != "" {
		whVerifier, err := webhook.NewVerifier(secret)
		if err != nil {
			cleanupFunc()
			return nil, nil, fmt.Errorf("初始化 Webhook 签名校验失败: %w", err)
		}
		webhookSvc = webhook.NewService(whVerifier, identitySvc, cacheSvc)
	} else {
		zap.S().Warn("未配置 Webhook.Secret，身份事件将被拒绝")
	}

	verifier, err := newSessionVerifier(ctx, cfg)
	if err != nil {
		cleanupFunc()
		return nil, nil, err
	}
	mw := middleware.NewMiddleware(verifier, identitySvc)

	taskBroker := task.NewBroker(cleanupSvc)

	// --- Phase 5: 初始化表现层 (Handlers) ---
	albumHandler := album_handler.NewAlbumHandler(albumSvc, engagementSvc)
	photoHandler := photo_handler.NewPhotoHandler(photoSvc, engagementSvc)
	userHandler := user_handler.NewUserHandler(userSvc, identitySvc, engagementSvc)
	searchHandler := search_handler.NewSearchHandler(searchSvc)
	webhookHandler := webhook_handler.NewWebhookHandler(webhookSvc)
	checks := map[string]version_handler.Pinger{
		"database": version_handler.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, sqlDB) }),
	}
	if redisClient != nil {
		checks["redis"] = version_handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	versionHandler := version_handler.NewHandler(checks)

	// --- Phase 6: 初始化路由 ---
	appRouter := router.NewRouter(albumHandler, photoHandler, userHandler, searchHandler, webhookHandler, versionHandler, mw)

	// --- Phase 7: 配置 Gin 引擎 ---
	debug := cfg.GetBool(config.KeyServerDebug)
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(nil); err != nil {
		cleanupFunc()
		return nil, nil, fmt.Errorf("设置信任代理失败: %w", err)
	}
	engine.ForwardedByClientIP = true
	engine.MaxMultipartMemory = constant.MaxUploadMemory
	engine.Use(middleware.ZapLogger(), middleware.ZapRecovery())
	engine.Use(middleware.Cors(cfg.GetStringSlice(config.KeyServerCorsOrigins)))
	if rps := cfg.GetInt(config.KeyServerRateLimit); rps > 0 {
		engine.Use(middleware.RateLimit(middleware.NewIPRateLimiter(float64(rps), cfg.GetInt(config.KeyServerRateBurst))))
	}
	if debug {
		pprof.Register(engine)
		zap.S().Info("Debug 模式已开启，pprof 路由已注册到 /debug/pprof")
	}
	if local, ok := provider.(*storage.LocalProvider); ok {
		router.SetupStatic(engine, local.Root())
	}
	appRouter.Setup(engine)

	app := &App{
		cfg:        cfg,
		engine:     engine,
		taskBroker: taskBroker,
		sqlDB:      sqlDB,
		mw:         mw,
	}
	return app, cleanupFunc, nil
}

// newSessionVerifier 配置了签发方或 JWKS 时使用 OIDC 校验，否则使用共享密钥
func newSessionVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	issuer := cfg.GetString(config.KeyAuthIssuer)
	jwksURL := cfg.GetString(config.KeyAuthJWKSURL)
	if issuer != "" || jwksURL != "" {
		v, err := auth.NewOIDCVerifier(ctx, issuer, jwksURL)
		if err != nil {
			return nil, fmt.Errorf("初始化 OIDC 会话校验失败: %w", err)
		}
		zap.S().Infof("会话校验: OIDC (issuer=%s)", issuer)
		return v, nil
	}
	v, err := auth.NewHMACVerifier(cfg.GetString(config.KeyAuthHMACSecret), "")
	if err != nil {
		return nil, fmt.Errorf("初始化共享密钥会话校验失败: %w", err)
	}
	zap.S().Warn("会话校验: 共享密钥模式，仅建议用于开发与测试")
	return v, nil
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

func (a *App) Middleware() *middleware.Middleware {
	return a.mw
}

// Run 启动后台任务并阻塞监听端口，直到 Shutdown 被调用
func (a *App) Run() error {
	if err := a.taskBroker.RegisterCronJobs(); err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}
	a.taskBroker.Start()

	port := a.cfg.GetStringDefault(config.KeyServerPort, defaultPort)
	a.printBanner()
	zap.S().Infof("应用程序启动成功，正在监听端口: %s", port)

	a.server = &http.Server{
		Addr:              ":" + port,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭 HTTP 服务
func (a *App) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

func (a *App) Stop() {
	if a.taskBroker != nil {
		a.taskBroker.Stop()
		log.Println("任务调度器已停止。")
	}
}
