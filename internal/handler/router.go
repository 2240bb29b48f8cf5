package handler

import (
	"bankdemo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter 配置路由
func SetupRouter(bankService *service.BankService, log logrus.FieldLogger, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()

	// 注册中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(log))
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware())

	h := NewHandler(bankService, log)

	api := r.Group("/api/v1")
	{
		accounts := api.Group("/accounts")
		{
			accounts.GET("", h.ListAccounts)
			accounts.POST("", h.CreateAccount)
			accounts.GET("/current", h.GetCurrentAccount)
			accounts.PUT("/current", h.SelectAccount)
			accounts.DELETE("/:id", h.DeleteAccount)
			accounts.GET("/:id/transactions", h.ListTransactions)
			accounts.GET("/:id/reconcile", h.Reconcile)
		}

		api.POST("/transactions", h.PerformTransaction)
		api.GET("/notifications", h.ListNotifications)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
