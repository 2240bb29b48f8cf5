package ledger

import (
	"bankdemo/internal/model"

	"github.com/pkg/errors"
)

type seedTxn struct {
	typ    model.TransactionType
	amount float64
	note   string
}

type seedAccount struct {
	holder  string
	email   string
	typ     model.AccountType
	opening float64
	history []seedTxn
}

// 演示数据，流水按时间正序排列
var demoAccounts = []seedAccount{
	{
		holder:  "Bakhromov Sardor",
		email:   "sardor@example.com",
		typ:     model.AccountTypeSavings,
		opening: 9120.50,
		history: []seedTxn{
			{model.TransactionTypeDeposit, 1500, "Freelance payment"},
			{model.TransactionTypeWithdrawal, 200, "ATM withdrawal"},
			{model.TransactionTypeDeposit, 5000, "Salary deposit"},
		},
	},
	{
		holder:  "John Smith",
		email:   "john@example.com",
		typ:     model.AccountTypeChecking,
		opening: 8750.25,
	},
}

// SeedDemo 通过账本自身的操作写入演示账户，结束后选中第一个演示账户
func SeedDemo(s *Store) error {
	var first string
	for _, sa := range demoAccounts {
		opening, err := AmountFromFloat(sa.opening)
		if err != nil {
			return errors.Wrapf(err, "seed %s", sa.holder)
		}
		acc, err := s.CreateAccount(CreateAccountRequest{
			HolderName:     sa.holder,
			Email:          sa.email,
			AccountType:    sa.typ,
			InitialDeposit: opening,
		})
		if err != nil {
			return errors.Wrapf(err, "seed %s", sa.holder)
		}
		if first == "" {
			first = acc.ID
		}

		if len(sa.history) == 0 {
			continue
		}
		if err := s.SelectAccount(acc.ID); err != nil {
			return errors.Wrapf(err, "seed %s", sa.holder)
		}
		for _, st := range sa.history {
			amount, err := AmountFromFloat(st.amount)
			if err != nil {
				return errors.Wrapf(err, "seed %s", sa.holder)
			}
			if _, err := s.PerformTransaction(st.typ, amount, st.note); err != nil {
				return errors.Wrapf(err, "seed %s: %s", sa.holder, st.note)
			}
		}
	}

	if first == "" {
		return nil
	}
	return s.SelectAccount(first)
}
