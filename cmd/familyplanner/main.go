package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-planner/internal/bot"
	"family-planner/internal/config"
	"family-planner/internal/repository"
	"family-planner/internal/service"
	"family-planner/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	loc := cfg.Location()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	helperRepo := repository.NewHelperRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationLogRepository(db)

	categorySvc := service.NewCategoryService(categoryRepo)
	taskSvc := service.NewTaskService(taskRepo, categoryRepo)
	guard := service.NewNotificationGuard(notificationRepo, cfg.DedupWindow)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, familyRepo, helperRepo, categorySvc, taskSvc, loc)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	reminderSvc := service.NewReminderService(
		userRepo, taskRepo, categoryRepo, guard, telegramBot, loc, cfg.ReminderWindow)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: web.NewServer(reminderSvc, cfg).Handler(),
	}
	go func() {
		log.Printf("[info] http listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	scheduler := service.NewSchedulerService(loc, 30*time.Second)
	if _, err := scheduler.ScheduleInterval("reminder-tick", cfg.ReminderInterval, func(jobCtx context.Context) error {
		_, err := reminderSvc.RunTick(jobCtx, time.Now().In(loc))
		return err
	}); err != nil {
		log.Fatalf("schedule reminders: %v", err)
	}
	if cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily("morning-digest", cfg.DigestTime, telegramBot.SendMorningDigest); err != nil {
			log.Fatalf("schedule digest: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Family planner started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
