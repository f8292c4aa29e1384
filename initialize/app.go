package initialize

import (
	"fmt"
	"net/http"
	"time"

	"attendsync/app/cache"
	"attendsync/app/controllers"
	"attendsync/app/db"
	jwtutil "attendsync/app/jwt"
	"attendsync/app/middleware"
	"attendsync/app/models"
	"attendsync/app/payload"
	"attendsync/app/repo"
	"attendsync/app/services"
	"attendsync/config"
	"attendsync/global"
	"attendsync/router"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Router    http.Handler
	Monitor   *services.Monitor
	Runner    *services.Runner
	Scheduler *services.SchedulerService
	Health    *services.HealthService
	Alerts    *services.AlertService
	Roster    *services.RosterService
}

func Build(configPath string) (*App, error) {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = *cfg

	// Connect DB
	gdb, err := db.Connect(db.Config{Host: cfg.DB.Host, Port: cfg.DB.Port, User: cfg.DB.User, Password: cfg.DB.Pass, DBName: cfg.DB.Name})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	// Migrate
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Device{},
		&models.Employee{},
		&models.DeviceCommand{},
		&models.ReportJob{},
		&models.ReportRun{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Optional redis-backed health cache
	var healthCache services.HealthCache
	if cfg.Redis.Addr != "" {
		global.Rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if cfg.Redis.HealthCacheTTL > 0 {
			healthCache = cache.NewRedisHealthCache(global.Rdb, time.Duration(cfg.Redis.HealthCacheTTL)*time.Second)
		}
	}

	// Repositories
	userRepo := repo.NewUserRepository(gdb)
	deviceRepo := repo.NewDeviceRepository(gdb)
	employeeRepo := repo.NewEmployeeRepository(gdb)
	commandRepo := repo.NewCommandRepository(gdb)
	jobRepo := repo.NewReportJobRepository(gdb)
	runRepo := repo.NewReportRunRepository(gdb)

	// Services
	userSvc := services.NewUserService(userRepo)
	dispatchSvc := services.NewDispatchService(deviceRepo, commandRepo, payload.LineEncoder{})
	rosterSvc := services.NewRosterService(gdb, employeeRepo, dispatchSvc)
	healthSvc := services.NewHealthService(deviceRepo, commandRepo, healthCache)
	alertSvc := services.NewAlertService(deviceRepo, commandRepo)
	schedulerSvc := services.NewSchedulerService(
		jobRepo, runRepo,
		services.StubReportGenerator{},
		services.LogMailer{Log: global.Logger},
		global.Logger,
		time.Duration(cfg.Scheduler.JobLeaseTTL)*time.Second,
	)
	if err := userSvc.EnsureAdmin("admin", "admin123"); err != nil {
		// non-critical
	}

	// Background loops
	monitor := services.NewMonitor(
		alertSvc, commandRepo,
		services.LogNotifier{Log: global.Logger},
		global.Logger,
		time.Duration(cfg.Monitor.Interval)*time.Second,
		cfg.Queue.DeadLetterAfterRetries,
	)
	runner := services.NewRunner(schedulerSvc, global.Logger, time.Duration(cfg.Scheduler.PollInterval)*time.Second)

	// Controllers
	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpMin: cfg.JWT.ExpMin}
	mw := &middleware.Auth{Signer: signer}
	authCtrl := controllers.NewAuthController(userSvc, signer)
	rosterCtrl := controllers.NewRosterController(rosterSvc, employeeRepo)
	deviceCtrl := controllers.NewDeviceController(deviceRepo)
	terminalCtrl := controllers.NewTerminalController(deviceRepo, commandRepo)
	healthCtrl := controllers.NewHealthController(healthSvc, alertSvc)
	scheduleCtrl := controllers.NewScheduleController(schedulerSvc)

	// Router
	h := router.NewRouter(authCtrl, rosterCtrl, deviceCtrl, terminalCtrl, healthCtrl, scheduleCtrl, mw)
	h = middleware.Logging(h)

	return &App{
		Cfg:       cfg,
		DB:        gdb,
		Router:    h,
		Monitor:   monitor,
		Runner:    runner,
		Scheduler: schedulerSvc,
		Health:    healthSvc,
		Alerts:    alertSvc,
		Roster:    rosterSvc,
	}, nil
}
