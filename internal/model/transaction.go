package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 交易类型常量
// ============================================================================

// TransactionType 交易类型
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"    // 存款
	TransactionTypeWithdrawal TransactionType = "withdrawal" // 取款
	// TransactionTypeTransfer 预留，目前没有任何操作会产生转账流水
	TransactionTypeTransfer TransactionType = "transfer"
)

// ============================================================================
// 账户流水实体
// ============================================================================

// Transaction 账户流水
// 只追加，不修改；删除账户时随账户一起级联删除
type Transaction struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"` // 恒为正数
	Description  string          `json:"description"`
	Timestamp    time.Time       `json:"timestamp"`
	BalanceAfter decimal.Decimal `json:"balance_after"` // 交易后余额
}
