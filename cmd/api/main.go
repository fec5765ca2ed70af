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

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"bankcore/internal/bank/api"
	"bankcore/internal/bank/journal"
	"bankcore/internal/bank/ledger"
	"bankcore/internal/bank/loan"
	"bankcore/internal/bank/queue"
	"bankcore/internal/bank/service"
	"bankcore/internal/platform/logger"
	"bankcore/internal/platform/server"
)

func main() {
	// 1. 加载配置：缺省值即单店柜面的营业规则，配置文件可覆盖
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.log_level", "")
	viper.SetDefault("bank.opening_deposit", 700)
	viper.SetDefault("bank.min_withdraw", 500)
	viper.SetDefault("bank.min_balance", 700)
	viper.SetDefault("bank.loan_id_seed", 1000)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file: %s", err)
		}
		// 没有配置文件也能起：全部走缺省值
	}

	// 2. 初始化基础设施 (Infra)
	appLogger := logger.New(viper.GetString("server.mode"), viper.GetString("server.log_level"))
	defer appLogger.Sync()

	// 3. 依赖注入 (Wiring)
	policy := service.Policy{
		OpeningDeposit: viper.GetInt64("bank.opening_deposit"),
		MinWithdraw:    viper.GetInt64("bank.min_withdraw"),
		MinBalance:     viper.GetInt64("bank.min_balance"),
	}
	store := ledger.NewStore()
	engine := loan.NewEngine(viper.GetInt("bank.loan_id_seed"))
	jnl := journal.New(appLogger)
	waitQueue := queue.New()
	bankSvc := service.NewBankService(store, engine, jnl, waitQueue, policy, appLogger)
	bankHandler := api.NewBankHandler(bankSvc)

	// 4. 初始化 Server (Gateway)
	srv := server.NewServer(
		appLogger,
		viper.GetString("server.port"),
		viper.GetString("server.mode"),
		bankHandler,
	)

	// 5. 启动服务 + 优雅停机
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server startup failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
