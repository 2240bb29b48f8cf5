package handler

import (
	"errors"
	"strconv"
	"strings"

	"bankdemo/internal/ledger"
	"bankdemo/internal/model"
	"bankdemo/internal/service"
	"bankdemo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Handler 统一处理器
type Handler struct {
	bankService *service.BankService
	log         logrus.FieldLogger
}

// NewHandler 创建处理器实例
func NewHandler(bankService *service.BankService, log logrus.FieldLogger) *Handler {
	return &Handler{
		bankService: bankService,
		log:         log,
	}
}

// ============================================================
// 账户相关接口
// ============================================================

// ListAccounts 按开户顺序列出账户
// GET /api/v1/accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	store := h.bankService.Store()
	selected := store.SelectedID()
	accounts := store.ListAccounts()

	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, newAccountView(a, selected))
	}

	response.Success(c, gin.H{
		"list":                views,
		"total":               len(views),
		"selected_account_id": selected,
	})
}

// CreateAccountRequest 开户请求；只做裁剪，校验以账本为准
type CreateAccountRequest struct {
	HolderName     string          `json:"holder_name"`
	Email          string          `json:"email"`
	AccountType    string          `json:"account_type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
	Select         bool            `json:"select"`
}

// CreateAccount 开户
// POST /api/v1/accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	acc, res, err := h.bankService.CreateAccount(c.Request.Context(), &service.CreateAccountRequest{
		HolderName:     strings.TrimSpace(req.HolderName),
		Email:          strings.TrimSpace(req.Email),
		AccountType:    model.AccountType(strings.ToLower(strings.TrimSpace(req.AccountType))),
		InitialDeposit: req.InitialDeposit,
		Select:         req.Select,
	})
	if err != nil {
		h.fail(c, err, err.Error())
		return
	}

	response.SuccessWithMessage(c, res.Message, newAccountView(*acc, h.bankService.Store().SelectedID()))
}

// GetCurrentAccount 当前选中账户及其流水
// GET /api/v1/accounts/current
func (h *Handler) GetCurrentAccount(c *gin.Context) {
	store := h.bankService.Store()
	acc, ok := store.CurrentAccount()
	if !ok {
		response.BusinessError(c, response.CodeNoAccount, "no accounts")
		return
	}

	txns, err := store.TransactionsFor(acc.ID)
	if err != nil {
		h.fail(c, err, err.Error())
		return
	}

	response.Success(c, gin.H{
		"account":      newAccountView(acc, acc.ID),
		"transactions": transactionViews(txns),
	})
}

// SelectAccountRequest 切换账户请求
type SelectAccountRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// SelectAccount 切换当前账户
// PUT /api/v1/accounts/current
func (h *Handler) SelectAccount(c *gin.Context) {
	var req SelectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	acc, err := h.bankService.SelectAccount(c.Request.Context(), strings.TrimSpace(req.AccountID))
	if err != nil {
		h.fail(c, err, err.Error())
		return
	}

	response.Success(c, newAccountView(*acc, acc.ID))
}

// DeleteAccount 删除账户，级联删除流水
// DELETE /api/v1/accounts/:id
func (h *Handler) DeleteAccount(c *gin.Context) {
	res, err := h.bankService.DeleteAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, err.Error())
		return
	}

	response.SuccessWithMessage(c, res.Message, gin.H{
		"selected_account_id": h.bankService.Store().SelectedID(),
	})
}

// ListTransactions 账户流水，最新的在前
// GET /api/v1/accounts/:id/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	txns, err := h.bankService.Store().TransactionsFor(c.Param("id"))
	if err != nil {
		h.fail(c, err, err.Error())
		return
	}

	response.List(c, transactionViews(txns), len(txns))
}

// Reconcile 回放流水校验余额
// GET /api/v1/accounts/:id/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	report, err := h.bankService.Store().Reconcile(c.Param("id"))
	if err != nil {
		h.fail(c, err, err.Error())
		return
	}

	response.Success(c, gin.H{
		"report":     report,
		"consistent": report.Consistent(),
	})
}

// ============================================================
// 交易相关接口
// ============================================================

// TransactionRequest 存取款请求
type TransactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// PerformTransaction 对当前账户存款或取款
// POST /api/v1/transactions
func (h *Handler) PerformTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Please enter a valid amount")
		return
	}

	txn, res, err := h.bankService.PerformTransaction(c.Request.Context(), &service.TransactionRequest{
		Type:        model.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		h.fail(c, err, res.Message)
		return
	}

	response.SuccessWithMessage(c, res.Message, newTransactionView(*txn))
}

// ============================================================
// 通知
// ============================================================

// ListNotifications 最近的操作提示
// GET /api/v1/notifications?limit=20
func (h *Handler) ListNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		response.ParamError(c, "limit 参数错误")
		return
	}

	list, err := h.bankService.Notifications(c.Request.Context(), limit)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.List(c, list, len(list))
}

// fail 按错误类别返回业务码
func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		response.ParamError(c, message)
	case errors.Is(err, ledger.ErrInsufficientBalance):
		response.BusinessError(c, response.CodeBalanceNotEnough, message)
	case errors.Is(err, ledger.ErrNotFound):
		response.BusinessError(c, response.CodeAccountNotFound, message)
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		response.ServerError(c, message)
	}
}

func transactionViews(txns []model.Transaction) []TransactionView {
	views := make([]TransactionView, 0, len(txns))
	for _, t := range txns {
		views = append(views, newTransactionView(t))
	}
	return views
}
