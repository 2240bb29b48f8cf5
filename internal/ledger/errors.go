package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// 错误类别，供 errors.Is 判断
var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")
)

// ValidationError 输入格式或取值非法
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientBalanceError 取款金额超过当前余额
type InsufficientBalanceError struct {
	AccountID string
	Balance   decimal.Decimal
	Amount    decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in account %s: have %s, need %s",
		e.AccountID, e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// NotFoundError 引用的对象不存在
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func accountNotFound(id string) error {
	return &NotFoundError{Resource: "account", ID: id}
}

func noSelection() error {
	return &NotFoundError{Resource: "selected account"}
}
