package ledger

import (
	"sort"

	"bankdemo/internal/model"

	"github.com/shopspring/decimal"
)

// Mismatch 回放流水时发现的不一致
type Mismatch struct {
	TransactionID string          `json:"transaction_id,omitempty"` // 为空表示账户当前余额不一致
	Expected      decimal.Decimal `json:"expected"`
	Recorded      decimal.Decimal `json:"recorded"`
}

// ReconcileReport 对账结果
type ReconcileReport struct {
	AccountID    string          `json:"account_id"`
	Transactions int             `json:"transactions"`
	Replayed     decimal.Decimal `json:"replayed_balance"`
	Balance      decimal.Decimal `json:"balance"`
	Mismatches   []Mismatch      `json:"mismatches,omitempty"`
}

// Consistent 回放结果与记录完全一致
func (r ReconcileReport) Consistent() bool {
	return len(r.Mismatches) == 0
}

// Reconcile 从零余额按时间正序回放账户流水（时间相同按插入顺序），
// 校验每笔 BalanceAfter 以及账户当前余额。
func (s *Store) Reconcile(accountID string) (ReconcileReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return ReconcileReport{}, accountNotFound(accountID)
	}

	var history []model.Transaction
	for _, t := range s.txns {
		if t.AccountID == accountID {
			history = append(history, t)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})

	report := ReconcileReport{
		AccountID:    accountID,
		Transactions: len(history),
		Balance:      acc.Balance,
	}

	balance := decimal.Zero
	for _, t := range history {
		switch t.Type {
		case model.TransactionTypeDeposit:
			balance = balance.Add(t.Amount)
		case model.TransactionTypeWithdrawal:
			balance = balance.Sub(t.Amount)
		}
		if !balance.Equal(t.BalanceAfter) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				TransactionID: t.ID,
				Expected:      balance,
				Recorded:      t.BalanceAfter,
			})
		}
	}
	report.Replayed = balance

	if !balance.Equal(acc.Balance) {
		report.Mismatches = append(report.Mismatches, Mismatch{
			Expected: balance,
			Recorded: acc.Balance,
		})
	}

	if !report.Consistent() {
		s.log.WithField("account_id", accountID).
			WithField("mismatches", len(report.Mismatches)).
			Warn("reconciliation drift detected")
	}

	return report, nil
}
