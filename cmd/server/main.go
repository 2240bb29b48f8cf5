package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/handler"
	"bankdemo/internal/infrastructure/cache"
	"bankdemo/internal/infrastructure/database"
	"bankdemo/internal/infrastructure/logging"
	"bankdemo/internal/infrastructure/mq"
	"bankdemo/internal/job"
	"bankdemo/internal/ledger"
	"bankdemo/internal/repository"
	"bankdemo/internal/service"
	"bankdemo/pkg/idgen"

	"github.com/sirupsen/logrus"
)

const purgeInterval = time.Minute

func main() {
	configPath := flag.String("config", envOr("BANK_CONFIG", "config/config.yaml"), "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(&cfg.Log, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化账号生成器与账本
	sf, err := idgen.NewSnowflake(cfg.Ledger.WorkerID)
	if err != nil {
		log.WithError(err).Fatal("初始化 ID 生成器失败")
	}
	store := ledger.New(
		ledger.WithIDSource(ledger.NewIDSource(sf)),
		ledger.WithLogger(log),
		ledger.WithMaxIDAttempts(cfg.Ledger.MaxIDAttempts),
	)
	if cfg.Ledger.SeedDemo {
		if err := ledger.SeedDemo(store); err != nil {
			log.WithError(err).Fatal("写入演示数据失败")
		}
	}

	db, err := database.OpenSQLite(&cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("初始化 outbox 存储失败")
	}

	outboxRepo := repository.NewOutboxRepository(db)
	bankService := service.NewBankService(store, outboxRepo, log)

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	if cfg.Notify.Driver != config.NotifyDriverNone {
		publisher, err := newPublisher(cfg, log)
		if err != nil {
			log.WithError(err).WithField("driver", cfg.Notify.Driver).Fatal("初始化通知通道失败")
		}
		defer publisher.Close()

		sender := job.NewNotificationSender(outboxRepo, publisher, cfg, log)
		go sender.Start(ctx)
	}

	purgeJob := job.NewOutboxPurgeJob(outboxRepo, purgeInterval, cfg.Notify.KeepSent, log)
	go purgeJob.Start(ctx)

	// 设置路由
	router := handler.SetupRouter(bankService, log, cfg.Server.Mode)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("服务启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("服务启动失败")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("服务关闭异常")
	}

	log.Info("服务已关闭")
}

// newPublisher 按配置选择通知投递通道
func newPublisher(cfg *config.Config, log *logrus.Logger) (job.Publisher, error) {
	switch cfg.Notify.Driver {
	case config.NotifyDriverKafka:
		producer, err := mq.NewKafkaProducer(&cfg.Notify.Kafka)
		if err != nil {
			return nil, err
		}
		return mq.NewKafkaPublisher(producer, cfg.Notify.Kafka.Topic, log), nil
	case config.NotifyDriverRedis:
		client, err := cache.NewRedisClient(&cfg.Notify.Redis)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisPublisher(client, cfg.Notify.Redis.Channel), nil
	default:
		return mq.NewLogPublisher(log), nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
