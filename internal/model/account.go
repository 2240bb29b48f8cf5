package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType 账户类型
type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
)

// Valid 是否为受支持的账户类型
func (t AccountType) Valid() bool {
	return t == AccountTypeSavings || t == AccountTypeChecking
}

// Account 银行账户
// 创建后除 Balance 外所有字段不可变，Balance 永远不为负
type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"` // 对外展示的账号，全局唯一
	HolderName    string          `json:"holder_name"`
	Email         string          `json:"email"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   AccountType     `json:"account_type"`
	CreatedAt     time.Time       `json:"created_at"`
}
