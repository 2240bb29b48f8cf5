package handler

import (
	"time"

	"bankdemo/internal/model"
	"bankdemo/pkg/money"

	"github.com/shopspring/decimal"
)

// AccountView 账户展示结构，金额同时给出原值与格式化文本
type AccountView struct {
	ID             string            `json:"id"`
	AccountNumber  string            `json:"account_number"`
	HolderName     string            `json:"holder_name"`
	Email          string            `json:"email"`
	Balance        decimal.Decimal   `json:"balance"`
	BalanceDisplay string            `json:"balance_display"`
	AccountType    model.AccountType `json:"account_type"`
	CreatedAt      time.Time         `json:"created_at"`
	Selected       bool              `json:"selected"`
}

type TransactionView struct {
	ID                  string                `json:"id"`
	AccountID           string                `json:"account_id"`
	Type                model.TransactionType `json:"type"`
	Amount              decimal.Decimal       `json:"amount"`
	AmountDisplay       string                `json:"amount_display"`
	Description         string                `json:"description"`
	Timestamp           time.Time             `json:"timestamp"`
	BalanceAfter        decimal.Decimal       `json:"balance_after"`
	BalanceAfterDisplay string                `json:"balance_after_display"`
}

func newAccountView(a model.Account, selectedID string) AccountView {
	return AccountView{
		ID:             a.ID,
		AccountNumber:  a.AccountNumber,
		HolderName:     a.HolderName,
		Email:          a.Email,
		Balance:        a.Balance,
		BalanceDisplay: money.Format(a.Balance),
		AccountType:    a.AccountType,
		CreatedAt:      a.CreatedAt,
		Selected:       a.ID == selectedID,
	}
}

func newTransactionView(t model.Transaction) TransactionView {
	return TransactionView{
		ID:                  t.ID,
		AccountID:           t.AccountID,
		Type:                t.Type,
		Amount:              t.Amount,
		AmountDisplay:       money.Format(t.Amount),
		Description:         t.Description,
		Timestamp:           t.Timestamp,
		BalanceAfter:        t.BalanceAfter,
		BalanceAfterDisplay: money.Format(t.BalanceAfter),
	}
}
