package main

import (
	"net/http"
	"staffing/account"
	"staffing/assistant"
	"staffing/audit"
	"staffing/bizerror"
	"staffing/client/es"
	"staffing/client/gemini"
	"staffing/common"
	"staffing/config"
	"staffing/credential"
	"staffing/domain/allocation"
	"staffing/domain/consultant"
	"staffing/domain/dashboard"
	"staffing/domain/margin"
	"staffing/domain/project"
	"staffing/domain/timesheet"
	"staffing/domain/validation"
	"staffing/infra/tracing"
	"staffing/persistence"
	"staffing/schema"
	"staffing/servehttp"
	"staffing/session"
	"staffing/sessions"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		common.Log.Fatalf("load config failed: %v", err)
	}
	common.SetServiceName(cfg.ServiceName)
	common.SetLevel(cfg.LogLevel)
	common.Log.Info("service start")

	closer, err := tracing.SetupTracer(cfg.TracingEnabled)
	if err != nil {
		common.Log.Fatalf("setup tracer failed: %v", err)
	}
	defer closer.Close()

	// create database (no conflict)
	if cfg.Database.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(cfg.Database.DriverArgs); err != nil {
			common.Log.Fatalf("failed to prepare database: %v", err)
		}
	}
	ds := &persistence.DataSourceManager{DatabaseConfig: &cfg.Database}
	if err := ds.Start(); err != nil {
		common.Log.Fatalf("database connection failed: %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	if err := schema.Migrate(ds.GormDB(nil)); err != nil {
		common.Log.Fatalf("database migration failed: %v", err)
	}

	account.ActiveTokenService = credential.NewTokenService(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if _, err := account.BootstrapDirecteur(cfg.Security.InitialAdminEmail, cfg.Security.InitialAdminPassword); err != nil {
		common.Log.Fatalf("bootstrap directeur failed: %v", err)
	}

	if len(cfg.Search.Addresses) > 0 {
		client, err := es.NewClient(cfg.Search.Addresses)
		if err != nil {
			common.Log.Fatalf("create search client failed: %v", err)
		}
		audit.Handlers = append(audit.Handlers, audit.SearchMirror(client, cfg.Search.AuditIndex, 2*time.Second))
	}
	if cfg.Gemini.APIKey != "" {
		assistant.Configure(gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, cfg.Gemini.Timeout),
			cfg.Gemini.RatePerSecond, cfg.Gemini.RateBurst, cfg.Gemini.Timeout)
	} else {
		common.Log.Info("no assistant model configured, replies are templated")
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, cfg.ServiceName)
	})

	authFilter := session.AuthFilter(account.ActiveTokenService)
	sessions.RegisterSessionsHandler(engine, authFilter)
	account.RegisterUsersHandler(engine, authFilter)
	consultant.RegisterConsultantsRestAPI(engine, authFilter)
	project.RegisterProjectsRestAPI(engine, authFilter)
	allocation.RegisterInterventionsRestAPI(engine, authFilter)
	timesheet.RegisterTimesheetsRestAPI(engine, authFilter)
	validation.RegisterValidationsRestAPI(engine, authFilter)
	margin.RegisterMarginsRestAPI(engine, authFilter)
	dashboard.RegisterDashboardsRestAPI(engine, authFilter)
	audit.RegisterAuditRestAPI(engine, authFilter)
	assistant.RegisterAssistantRestAPI(engine, authFilter)

	if err := servehttp.StartHTTPServer(cfg.HTTPAddr, servehttp.WithCors(engine, cfg.CorsOrigins)); err != nil {
		common.Log.Fatalf("http server failed: %v", err)
	}
}
