package main

import (
	"context"
	"errors"
	"time"

	"lab-inventory/internal/config"
	"lab-inventory/internal/middleware"
	"lab-inventory/internal/notify"
	"lab-inventory/internal/repository"
	"lab-inventory/internal/seed"
	"lab-inventory/internal/server"
	"lab-inventory/internal/service"
	"lab-inventory/internal/ws"
	"lab-inventory/pkg/database"
	"lab-inventory/pkg/events"
	"lab-inventory/pkg/jwt"
	"lab-inventory/pkg/logger"
	"lab-inventory/pkg/mailer"
	"lab-inventory/pkg/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	var skipSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg(), skipSeed)
		},
	}
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not seed reference data on boot")
	return cmd
}

func serve(ctx context.Context, conf *config.Config, skipSeed bool) error {
	log := logger.Logger

	db, err := database.Connect(conf.Database.DSN(), conf.IsDevelopment())
	if err != nil {
		return err
	}
	defer database.Close(db)

	rdb, err := database.ConnectRedis(ctx, conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := migrate(db); err != nil {
		return err
	}
	if !skipSeed {
		admin := seed.Admin{Email: conf.Auth.AdminEmail, Password: conf.Auth.AdminPassword}
		if err := seed.New(db).Run(ctx, admin); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var publisher events.Publisher = events.NoopPublisher{}
	if brokers := conf.Kafka.BrokerList(); len(brokers) > 0 {
		kp, err := events.NewKafkaPublisher(brokers, conf.Kafka.Topic)
		if err != nil {
			return err
		}
		publisher = kp
		log.Info().Strs("brokers", brokers).Str("topic", conf.Kafka.Topic).Msg("Publishing inventory events to Kafka")
	}
	defer publisher.Close()

	hub := ws.NewHub()
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	dispatcher, err := notify.New(conf.Server.WorkerPool, hub, publisher, registry)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	files, err := storage.NewLocal(conf.Server.UploadDir)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	labRepo := repository.NewLaboratoryRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	materialRepo := repository.NewMaterialRepo(db)
	stockRepo := repository.NewStockRepo(db)
	recordRepo := repository.NewRecordRepo(db)
	logRepo := repository.NewInventoryLogRepo(db)

	svc := server.Services{
		Auth: service.NewAuthService(service.AuthDeps{
			Users:      userRepo,
			Roles:      roleRepo,
			Privileges: privilegeRepo,
			Labs:       labRepo,
			OTPs:       repository.NewOTPRepo(rdb),
			Mailer: mailer.New(mailer.SMTPConfig{
				Host:     conf.Mail.Host,
				Port:     conf.Mail.Port,
				Username: conf.Mail.Username,
				Password: conf.Mail.Password,
				From:     conf.Mail.From,
			}),
			Tokens:      jwt.NewManager(conf.Auth.JWTSecret, conf.Auth.TokenTTL()),
			Notifier:    dispatcher,
			OTP:         service.OTPPolicy{TTL: conf.OTP.TTL(), MaxAttempts: conf.OTP.MaxAttempts},
			IdleTimeout: conf.Auth.IdleTimeout(),
		}),
		Users:       service.NewUserService(userRepo, privilegeRepo, roleRepo, labRepo),
		Materials:   service.NewMaterialService(materialRepo, categoryRepo, supplierRepo, labRepo, stockRepo, logRepo, dispatcher),
		Transaction: service.NewTransactionService(materialRepo, userRepo, stockRepo, recordRepo, files, dispatcher),
		Suppliers:   service.NewSupplierService(supplierRepo, userRepo, dispatcher),
		Categories:  service.NewCategoryService(categoryRepo, labRepo),
		Dashboard:   service.NewDashboardService(logRepo),
		Roles:       roleRepo,
		Privileges:  privilegeRepo,
	}

	app, err := server.New(conf, svc, server.Options{
		Hub:         hub,
		RateCounter: middleware.NewRedisWindow(rdb),
		Registry:    registry,
	})
	if err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", conf.Server.Port).Msg("HTTP server listening")
		listenErr <- app.Listen(":" + conf.Server.Port)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
	return nil
}
