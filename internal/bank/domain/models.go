package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account 账户实体。
// Balance 以最小货币单位的整数存储；History 为只追加的交易流水；
// Loans 为该账户名下的贷款集合（已结清的贷款保留可见）。
type Account struct {
	AccNo   int
	Name    string
	Balance int64
	History []Transaction
	Loans   []*Loan
}

// Transaction 一条不可变的交易流水。
// CounterAcc 仅在转账时记录对方账号，其余场景为 0。
type Transaction struct {
	ID         uuid.UUID
	Kind       string
	Amount     int64
	CounterAcc int
	At         time.Time
}

// NewTransaction 生成带 ID 与时间戳的流水记录
func NewTransaction(kind string, amount int64, counterAcc int) Transaction {
	return Transaction{
		ID:         uuid.New(),
		Kind:       kind,
		Amount:     amount,
		CounterAcc: counterAcc,
		At:         time.Now(),
	}
}

// Loan 贷款实体。
// ID 由全局单调递增计数器分配，永不复用；Remaining 为浮点，
// 余额扣款时按整数截断（与 EMI 摊还的精度模型一致）。
// 不变式：Remaining >= 0，且 Status == LoanClosed 当且仅当 Remaining == 0。
type Loan struct {
	ID         int
	Type       string // 业务类型，如 "Personal", "Auto"
	Principal  int64
	AnnualRate float64
	Kind       InterestKind
	TermMonths int
	EMI        float64 // 非摊还贷款为近似月供
	Remaining  float64
	Status     LoanStatus
}

// Action 一次已完成变更的可逆记录。
// 同一份数据正反两个方向都能推出效果（反向即符号取反），
// 因此 undo/redo 共用同一条记录，在两个栈之间转移所有权。
// Extra 的含义依 Kind 而定：还款时为付款前的 Remaining 快照，
// 放款时为放款后的 Remaining 总额。
// Snapshot 仅销户动作持有（深拷贝，供撤销销户时完整还原）。
type Action struct {
	Kind            ActionKind
	AccNo           int
	CounterAccNo    int // 转账对方账号，其余为 0
	AccName         string
	Amount          int64
	LoanID          int
	LoanType        string
	Extra           float64
	BalanceSnapshot int64
	Snapshot        *AccountSnapshot
}

// AccountSnapshot 销户时留存的账户深拷贝。
// 与原始指针脱钩，撤销销户可以无歧义地还原流水与贷款。
type AccountSnapshot struct {
	AccNo   int
	Name    string
	Balance int64
	History []Transaction
	Loans   []*Loan
}

// SnapshotOf 对账户做深拷贝快照
func SnapshotOf(a *Account) *AccountSnapshot {
	s := &AccountSnapshot{
		AccNo:   a.AccNo,
		Name:    a.Name,
		Balance: a.Balance,
		History: make([]Transaction, len(a.History)),
		Loans:   make([]*Loan, len(a.Loans)),
	}
	copy(s.History, a.History)
	for i, ln := range a.Loans {
		cp := *ln
		s.Loans[i] = &cp
	}
	return s
}
