package service

import (
	"context"
	"errors"
	"fmt"

	"bankdemo/internal/ledger"
	"bankdemo/internal/model"
	"bankdemo/internal/repository"
	"bankdemo/pkg/money"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BankService 面向展示层的账本门面：调用账本，生成用户可读的提示并写入 outbox
type BankService struct {
	store      *ledger.Store
	outboxRepo *repository.OutboxRepository
	log        logrus.FieldLogger
}

func NewBankService(store *ledger.Store, outboxRepo *repository.OutboxRepository, log logrus.FieldLogger) *BankService {
	return &BankService{
		store:      store,
		outboxRepo: outboxRepo,
		log:        log,
	}
}

// Store 底层账本，只读查询直接使用
func (s *BankService) Store() *ledger.Store {
	return s.store
}

type CreateAccountRequest struct {
	HolderName     string
	Email          string
	AccountType    model.AccountType
	InitialDeposit decimal.Decimal
	Select         bool // 开户后立即切换到新账户
}

type Result struct {
	Message string
}

func (s *BankService) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*model.Account, *Result, error) {
	acc, err := s.store.CreateAccount(ledger.CreateAccountRequest{
		HolderName:     req.HolderName,
		Email:          req.Email,
		AccountType:    req.AccountType,
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		return nil, nil, err
	}

	if req.Select {
		if err := s.store.SelectAccount(acc.ID); err != nil {
			return nil, nil, fmt.Errorf("select new account: %w", err)
		}
	}

	msg := fmt.Sprintf("Account created successfully! Account number: %s", acc.AccountNumber)
	s.notify(ctx, model.EventAccountCreated, model.LevelSuccess, acc.ID, msg)
	return &acc, &Result{Message: msg}, nil
}

func (s *BankService) SelectAccount(ctx context.Context, accountID string) (*model.Account, error) {
	if err := s.store.SelectAccount(accountID); err != nil {
		return nil, err
	}
	acc, ok := s.store.CurrentAccount()
	if !ok {
		return nil, &ledger.NotFoundError{Resource: "selected account"}
	}
	s.notify(ctx, model.EventAccountSelected, model.LevelSuccess, acc.ID,
		fmt.Sprintf("Switched to account %s", acc.AccountNumber))
	return &acc, nil
}

func (s *BankService) DeleteAccount(ctx context.Context, accountID string) (*Result, error) {
	if err := s.store.DeleteAccount(accountID); err != nil {
		return nil, err
	}
	msg := "Account deleted successfully"
	s.notify(ctx, model.EventAccountDeleted, model.LevelSuccess, accountID, msg)
	return &Result{Message: msg}, nil
}

type TransactionRequest struct {
	Type        model.TransactionType
	Amount      decimal.Decimal
	Description string
}

// PerformTransaction 对当前账户存取款；失败同样会生成一条错误提示
func (s *BankService) PerformTransaction(ctx context.Context, req *TransactionRequest) (*model.Transaction, *Result, error) {
	txn, err := s.store.PerformTransaction(req.Type, req.Amount, req.Description)
	if err != nil {
		msg := FailureMessage(err)
		if !ledger.IsRecoverable(err) {
			s.log.WithError(err).Error("交易失败")
		}
		s.notify(ctx, model.EventTransactionFailed, model.LevelError, failedAccountID(err), msg)
		return nil, &Result{Message: msg}, err
	}

	msg := fmt.Sprintf("%s of %s completed", label(txn.Type), money.Format(txn.Amount))
	s.notify(ctx, model.EventTransactionPosted, model.LevelSuccess, txn.AccountID, msg)
	return &txn, &Result{Message: msg}, nil
}

// FailureMessage 把账本错误转换为给用户看的提示
func FailureMessage(err error) string {
	var verr *ledger.ValidationError
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return "Transaction failed. Insufficient balance."
	case errors.As(err, &verr):
		if verr.Field == "amount" {
			return "Please enter a valid amount"
		}
		return fmt.Sprintf("Transaction failed. Invalid %s: %s", verr.Field, verr.Reason)
	case errors.Is(err, ledger.ErrNotFound):
		return "Transaction failed. No account selected."
	default:
		return "Transaction failed."
	}
}

// failedAccountID 失败涉及的账户取自账本错误本身，不再回读当前选中账户
func failedAccountID(err error) string {
	var ierr *ledger.InsufficientBalanceError
	if errors.As(err, &ierr) {
		return ierr.AccountID
	}
	return ""
}

func label(typ model.TransactionType) string {
	if typ == model.TransactionTypeWithdrawal {
		return "Withdrawal"
	}
	return "Deposit"
}

// Notifications 最近的通知，供前端展示提示
func (s *BankService) Notifications(ctx context.Context, limit int) ([]*model.Notification, error) {
	return s.outboxRepo.GetRecent(ctx, limit)
}

// notify 写入 outbox；写入失败只记日志，不影响已完成的账本操作
func (s *BankService) notify(ctx context.Context, event, level, accountID, message string) {
	n := &model.Notification{
		Event:     event,
		Level:     level,
		AccountID: accountID,
		Message:   message,
	}
	if err := s.outboxRepo.Create(ctx, n); err != nil {
		s.log.WithError(err).WithField("event", event).Error("写入通知失败")
	}
}
