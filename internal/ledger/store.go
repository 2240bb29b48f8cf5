// Package ledger 维护内存中的账户、流水与当前选中账户。
//
// Store 用一把读写锁串行化所有变更：余额修改与流水追加在同一临界区内完成，
// 查询返回值拷贝，调用方看到的永远是一致的快照。
package ledger

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"bankdemo/internal/model"
	"bankdemo/pkg/idgen"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxIDAttempts = 5
	initialDepositNote   = "Initial deposit"
)

// IDSource 生成账户/流水ID与账号，唯一性由 Store 再次校验
type IDSource interface {
	NewID() string
	NewAccountNumber() string
}

type defaultIDSource struct {
	sf *idgen.Snowflake
}

// NewIDSource 随机 UUID 作为ID，雪花算法生成账号
func NewIDSource(sf *idgen.Snowflake) IDSource {
	return defaultIDSource{sf: sf}
}

func (d defaultIDSource) NewID() string            { return uuid.NewString() }
func (d defaultIDSource) NewAccountNumber() string { return d.sf.AccountNumber() }

// Option 配置 Store
type Option func(*Store)

func WithIDSource(ids IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithMaxIDAttempts 生成ID冲突时的最大重试次数
func WithMaxIDAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// Store 内存账本
type Store struct {
	mu          sync.RWMutex
	ids         IDSource
	now         func() time.Time
	log         logrus.FieldLogger
	maxAttempts int

	order    []string // 账户插入顺序
	accounts map[string]*model.Account
	numbers  map[string]struct{}
	txns     []model.Transaction // 流水插入顺序
	txnIDs   map[string]struct{}
	selected string
	lastTS   time.Time
}

// New 创建空账本
func New(opts ...Option) *Store {
	s := &Store{
		now:         time.Now,
		log:         logrus.StandardLogger(),
		maxAttempts: defaultMaxIDAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewIDSource(idgen.MustNewSnowflake(1))
	}
	s.resetLocked()
	return s
}

// Reset 清空账本，相当于会话重启
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.log.Info("ledger reset")
}

func (s *Store) resetLocked() {
	s.order = nil
	s.accounts = make(map[string]*model.Account)
	s.numbers = make(map[string]struct{})
	s.txns = nil
	s.txnIDs = make(map[string]struct{})
	s.selected = ""
	s.lastTS = time.Time{}
}

// CreateAccountRequest 开户参数
type CreateAccountRequest struct {
	HolderName     string
	Email          string
	AccountType    model.AccountType
	InitialDeposit decimal.Decimal
}

// CreateAccount 开户；初始存款大于0时同时记录一笔 "Initial deposit" 流水。
// 不改变当前选中账户，除非账本此前没有任何选中账户。
func (s *Store) CreateAccount(req CreateAccountRequest) (model.Account, error) {
	holder := strings.TrimSpace(req.HolderName)
	email := strings.TrimSpace(req.Email)

	switch {
	case holder == "":
		return model.Account{}, invalid("holder_name", "must not be empty")
	case email == "":
		return model.Account{}, invalid("email", "must not be empty")
	case !strings.Contains(email, "@"):
		return model.Account{}, invalid("email", "must contain @")
	case !req.AccountType.Valid():
		return model.Account{}, invalid("account_type", fmt.Sprintf("must be %q or %q",
			model.AccountTypeSavings, model.AccountTypeChecking))
	case req.InitialDeposit.IsNegative():
		return model.Account{}, invalid("initial_deposit", "must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.unique("account id", s.ids.NewID, func(v string) bool {
		_, ok := s.accounts[v]
		return ok
	})
	if err != nil {
		return model.Account{}, err
	}
	number, err := s.unique("account number", s.ids.NewAccountNumber, func(v string) bool {
		_, ok := s.numbers[v]
		return ok
	})
	if err != nil {
		return model.Account{}, err
	}

	var txnID string
	if req.InitialDeposit.IsPositive() {
		if txnID, err = s.newTransactionID(); err != nil {
			return model.Account{}, err
		}
	}

	// 以下不再失败，开始写入
	now := s.tick()
	acc := &model.Account{
		ID:            id,
		AccountNumber: number,
		HolderName:    holder,
		Email:         email,
		Balance:       req.InitialDeposit,
		AccountType:   req.AccountType,
		CreatedAt:     now,
	}
	s.accounts[id] = acc
	s.numbers[number] = struct{}{}
	s.order = append(s.order, id)

	if txnID != "" {
		s.appendTransaction(model.Transaction{
			ID:           txnID,
			AccountID:    id,
			Type:         model.TransactionTypeDeposit,
			Amount:       req.InitialDeposit,
			Description:  initialDepositNote,
			Timestamp:    now,
			BalanceAfter: req.InitialDeposit,
		})
	}

	if s.selected == "" {
		s.selected = id
	}

	s.log.WithFields(logrus.Fields{
		"account_id":     id,
		"account_number": number,
		"account_type":   req.AccountType,
		"balance":        acc.Balance.String(),
	}).Info("account created")

	return *acc, nil
}

// PerformTransaction 对当前选中账户存款或取款。
// 余额变更与流水追加在同一临界区完成；任何失败都不会修改状态。
func (s *Store) PerformTransaction(typ model.TransactionType, amount decimal.Decimal, description string) (model.Transaction, error) {
	switch typ {
	case model.TransactionTypeDeposit, model.TransactionTypeWithdrawal:
	case model.TransactionTypeTransfer:
		return model.Transaction{}, invalid("type", "transfer is reserved and not supported")
	default:
		return model.Transaction{}, invalid("type", fmt.Sprintf("unknown transaction type %q", typ))
	}
	if !amount.IsPositive() {
		return model.Transaction{}, invalid("amount", "must be greater than zero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[s.selected]
	if !ok {
		return model.Transaction{}, noSelection()
	}

	newBalance := acc.Balance.Add(amount)
	if typ == model.TransactionTypeWithdrawal {
		if amount.GreaterThan(acc.Balance) {
			s.log.WithFields(logrus.Fields{
				"account_id": acc.ID,
				"balance":    acc.Balance.String(),
				"amount":     amount.String(),
			}).Info("withdrawal rejected")
			return model.Transaction{}, &InsufficientBalanceError{
				AccountID: acc.ID,
				Balance:   acc.Balance,
				Amount:    amount,
			}
		}
		newBalance = acc.Balance.Sub(amount)
	}

	txnID, err := s.newTransactionID()
	if err != nil {
		return model.Transaction{}, err
	}

	desc := strings.TrimSpace(description)
	if desc == "" {
		desc = defaultDescription(typ)
	}

	txn := model.Transaction{
		ID:           txnID,
		AccountID:    acc.ID,
		Type:         typ,
		Amount:       amount,
		Description:  desc,
		Timestamp:    s.tick(),
		BalanceAfter: newBalance,
	}
	acc.Balance = newBalance
	s.appendTransaction(txn)

	s.log.WithFields(logrus.Fields{
		"account_id":     acc.ID,
		"transaction_id": txn.ID,
		"type":           typ,
		"amount":         amount.String(),
		"balance_after":  newBalance.String(),
	}).Info("transaction posted")

	return txn, nil
}

// DeleteAccount 删除账户并级联删除其全部流水。
// 若删除的是选中账户，则改选删除前顺序中第一个剩余账户；没有剩余账户时清空选中。
func (s *Store) DeleteAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return accountNotFound(id)
	}

	remaining := make([]string, 0, len(s.order))
	for _, other := range s.order {
		if other != id {
			remaining = append(remaining, other)
		}
	}

	kept := make([]model.Transaction, 0, len(s.txns))
	removed := 0
	for _, t := range s.txns {
		if t.AccountID == id {
			delete(s.txnIDs, t.ID)
			removed++
			continue
		}
		kept = append(kept, t)
	}

	s.order = remaining
	s.txns = kept
	delete(s.accounts, id)
	delete(s.numbers, acc.AccountNumber)

	if s.selected == id {
		s.selected = ""
		if len(remaining) > 0 {
			s.selected = remaining[0]
		}
	}

	s.log.WithFields(logrus.Fields{
		"account_id":           id,
		"transactions_removed": removed,
		"selected":             s.selected,
	}).Info("account deleted")

	return nil
}

// SelectAccount 切换当前选中账户
func (s *Store) SelectAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return accountNotFound(id)
	}
	s.selected = id
	return nil
}

// ListAccounts 按开户顺序返回全部账户
func (s *Store) ListAccounts() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.accounts[id])
	}
	return out
}

// CurrentAccount 返回当前选中账户；没有账户时 ok 为 false
func (s *Store) CurrentAccount() (acc model.Account, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[s.selected]
	if !ok {
		return model.Account{}, false
	}
	return *a, true
}

// SelectedID 当前选中账户ID，没有时为空串
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Account 按ID查询账户
func (s *Store) Account(id string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, accountNotFound(id)
	}
	return *a, nil
}

// TransactionsFor 返回账户流水，时间倒序；时间相同的按插入顺序倒序
func (s *Store) TransactionsFor(accountID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, accountNotFound(accountID)
	}

	out := make([]model.Transaction, 0)
	for i := len(s.txns) - 1; i >= 0; i-- {
		if s.txns[i].AccountID == accountID {
			out = append(out, s.txns[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// unique 生成一个 exists 判定为不存在的值，超过重试次数则报错
func (s *Store) unique(what string, gen func() string, exists func(string) bool) (string, error) {
	for i := 0; i < s.maxAttempts; i++ {
		v := gen()
		if v != "" && !exists(v) {
			return v, nil
		}
		s.log.WithField("attempt", i+1).Warnf("%s collision, regenerating", what)
	}
	return "", errors.Errorf("could not generate a unique %s after %d attempts", what, s.maxAttempts)
}

func (s *Store) newTransactionID() (string, error) {
	return s.unique("transaction id", s.ids.NewID, func(v string) bool {
		_, ok := s.txnIDs[v]
		return ok
	})
}

func (s *Store) appendTransaction(t model.Transaction) {
	s.txns = append(s.txns, t)
	s.txnIDs[t.ID] = struct{}{}
}

// tick 返回单调不减的时间戳，时钟回拨时沿用上一次的时间
func (s *Store) tick() time.Time {
	now := s.now()
	if now.Before(s.lastTS) {
		now = s.lastTS
	}
	s.lastTS = now
	return now
}

func defaultDescription(typ model.TransactionType) string {
	if typ == model.TransactionTypeWithdrawal {
		return "Withdrawal"
	}
	return "Deposit"
}

// AmountFromFloat 将浮点金额转换为 decimal，拒绝 NaN 与 ±Inf
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, invalid("amount", "must be a finite number")
	}
	return decimal.NewFromFloat(f), nil
}

// ParseAmount 解析十进制金额字符串
func ParseAmount(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, invalid("amount", "must be a decimal number")
	}
	return d, nil
}

// IsRecoverable 账本返回的业务错误都可由调用方处理
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrNotFound)
}
