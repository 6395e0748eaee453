package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"pustaka-backend/internal/accounts"
	"pustaka-backend/internal/catalog/books"
	"pustaka-backend/internal/catalog/categories"
	"pustaka-backend/internal/circulation/loans"
	"pustaka-backend/internal/favorites"
	"pustaka-backend/internal/master"
	"pustaka-backend/internal/messaging"
	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/db"
	"pustaka-backend/internal/platform/logging"
	"pustaka-backend/internal/stats"
	reviewsvc "pustaka-backend/internal/reviews"
)

const apiPrefix = "/api/v1"

// capabilities is the one place that says which routes need which role.
// Everything else in the authed group is open to any signed-in user.
func capabilities() auth.CapabilityTable {
	t := auth.CapabilityTable{}
	admin := []string{
		"GET " + apiPrefix + "/users",
		"POST " + apiPrefix + "/users",
		"GET " + apiPrefix + "/users/:user_id",
		"PUT " + apiPrefix + "/users/:user_id",
		"DELETE " + apiPrefix + "/users/:user_id",
		"POST " + apiPrefix + "/books",
		"PUT " + apiPrefix + "/books/:book_id",
		"DELETE " + apiPrefix + "/books/:book_id",
		"POST " + apiPrefix + "/categories",
		"PUT " + apiPrefix + "/categories/:category_id",
		"DELETE " + apiPrefix + "/categories/:category_id",
		"POST " + apiPrefix + "/majors",
		"PUT " + apiPrefix + "/majors/:entry_id",
		"DELETE " + apiPrefix + "/majors/:entry_id",
		"POST " + apiPrefix + "/classes",
		"PUT " + apiPrefix + "/classes/:entry_id",
		"DELETE " + apiPrefix + "/classes/:entry_id",
		"GET " + apiPrefix + "/loans",
		"GET " + apiPrefix + "/loans/report",
		"GET " + apiPrefix + "/loans/:loan_id",
		"POST " + apiPrefix + "/loans/:loan_id/approve",
		"POST " + apiPrefix + "/loans/:loan_id/reject",
		"POST " + apiPrefix + "/loans/:loan_id/pickup",
		"POST " + apiPrefix + "/loans/:loan_id/verify-return",
		"GET " + apiPrefix + "/stats/admin",
	}
	student := []string{
		"POST " + apiPrefix + "/loans",
		"GET " + apiPrefix + "/loans/mine",
		"POST " + apiPrefix + "/loans/:loan_id/return",
		"POST " + apiPrefix + "/reviews",
		"GET " + apiPrefix + "/favorites",
		"GET " + apiPrefix + "/favorites/:book_id",
		"POST " + apiPrefix + "/favorites/:book_id",
		"DELETE " + apiPrefix + "/favorites/:book_id",
		"GET " + apiPrefix + "/stats/student",
	}
	for _, k := range admin {
		t[k] = auth.RoleAdmin
	}
	for _, k := range student {
		t[k] = auth.RoleStudent
	}
	return t
}

func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting", zap.String("mode", cfg.Mode), zap.String("addr", cfg.Addr))

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer conn.Close()
	log.Info("connected to db", zap.String("dbname", cfg.DB.DBName))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	secret := []byte(cfg.Auth.Secret)
	tokenTTL := time.Duration(cfg.Auth.TokenTTL) * time.Hour

	hub := messaging.NewHub()
	accountsSvc := accounts.NewService(conn, secret, tokenTTL)
	loansSvc := loans.NewService(conn, log.Named("loans"))

	api := r.Group(apiPrefix)
	accounts.RegisterPublicRoutes(api, accountsSvc)

	authed := api.Group("")
	authed.Use(auth.RequireAuth(secret), auth.Gate(capabilities()))

	accounts.RegisterRoutes(authed, accountsSvc)
	books.RegisterRoutes(authed, books.NewService(conn))
	categories.RegisterRoutes(authed, categories.NewService(conn))
	master.RegisterRoutes(authed, master.NewService(conn))
	loans.RegisterRoutes(authed, loansSvc)
	messaging.RegisterRoutes(authed, messaging.NewService(conn, hub), hub)
	reviewsvc.RegisterRoutes(authed, reviewsvc.NewService(conn))
	favorites.RegisterRoutes(authed, favorites.NewStore(conn))
	stats.RegisterRoutes(authed, stats.NewService(conn))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go loansSvc.RunOverdueSweep(sweepCtx, time.Hour)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("shutting down")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("shutdown failed", zap.Error(err))
	}
}
