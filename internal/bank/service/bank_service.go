// Package service 实现银行核心服务：业务规则校验、账本变更、
// 流水追加与命令日志记录在同一临界区内完成。
package service

import (
	"sync"

	"go.uber.org/zap"

	"bankcore/internal/bank/domain"
	"bankcore/internal/bank/journal"
	"bankcore/internal/bank/ledger"
	"bankcore/internal/bank/loan"
	"bankcore/internal/bank/queue"
)

// Policy 营业策略。缺省值见 configs/config.yaml。
type Policy struct {
	OpeningDeposit int64 // 开户强制押金
	MinWithdraw    int64 // 单笔最小取款额
	MinBalance     int64 // 取款后必须保留的余额下限
}

// BankService 聚合根：账本、贷款引擎、命令日志、客服队列
// 全部作为显式字段注入，不存在包级可变全局状态。
// 单把互斥锁串行化所有操作——每个操作完整执行后才接受下一个，
// 因此跨组件的复合变更（扣款 + 流水 + Action）天然原子。
type BankService struct {
	mu      sync.Mutex
	store   *ledger.Store
	engine  *loan.Engine
	journal *journal.Journal
	queue   *queue.Queue
	policy  Policy
	logger  *zap.Logger
}

func NewBankService(store *ledger.Store, engine *loan.Engine, jnl *journal.Journal, q *queue.Queue, policy Policy, logger *zap.Logger) *BankService {
	return &BankService{
		store:   store,
		engine:  engine,
		journal: jnl,
		queue:   q,
		policy:  policy,
		logger:  logger,
	}
}

// record 记录 Action 并无条件清空 redo 栈：
// 新的变更让旧的 redo 历史失效，即使本次变更只有这一条记录。
func (s *BankService) record(a domain.Action) {
	s.journal.Record(a)
	s.journal.ClearRedo()
}

// CreateAccount 开户。强制押金作为首条流水入账。
func (s *BankService) CreateAccount(accNo int, name string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.store.Create(accNo, name)
	if err != nil {
		return nil, err
	}
	acc.Balance = s.policy.OpeningDeposit
	acc.History = append(acc.History, domain.NewTransaction(domain.TxOpeningDeposit, s.policy.OpeningDeposit, 0))

	s.record(domain.Action{
		Kind:            domain.ActCreateAccount,
		AccNo:           accNo,
		AccName:         name,
		BalanceSnapshot: acc.Balance,
	})
	s.logger.Info("account created", zap.Int("acc_no", accNo), zap.Int64("balance", acc.Balance))
	return snapshotAccount(acc), nil
}

// UpdateName 修改户名。不进命令日志（非可撤销操作）。
func (s *BankService) UpdateName(accNo int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return domain.ErrAccountNotFound
	}
	acc.Name = name
	return nil
}

// DeleteAccount 销户。深拷贝快照挂在 Action 上，供撤销时完整还原。
func (s *BankService) DeleteAccount(accNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Delete(accNo)
	if err != nil {
		return err
	}
	s.record(domain.Action{
		Kind:            domain.ActDeleteAccount,
		AccNo:           snap.AccNo,
		AccName:         snap.Name,
		BalanceSnapshot: snap.Balance,
		Snapshot:        snap,
	})
	s.logger.Info("account deleted", zap.Int("acc_no", accNo))
	return nil
}

// Deposit 存款
func (s *BankService) Deposit(accNo int, amount int64) (*domain.Account, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	acc.Balance += amount
	acc.History = append(acc.History, domain.NewTransaction(domain.TxDeposit, amount, 0))

	s.record(domain.Action{
		Kind:            domain.ActDeposit,
		AccNo:           accNo,
		Amount:          amount,
		BalanceSnapshot: acc.Balance - amount,
	})
	return snapshotAccount(acc), nil
}

// Withdraw 取款。两条营业规则：
// 1) 单笔不得低于 MinWithdraw；2) 取款后余额不得低于 MinBalance。
func (s *BankService) Withdraw(accNo int, amount int64) (*domain.Account, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	if amount < s.policy.MinWithdraw {
		return nil, domain.ErrMinWithdraw
	}
	if acc.Balance-amount < s.policy.MinBalance {
		return nil, domain.ErrMinBalance
	}
	acc.Balance -= amount
	acc.History = append(acc.History, domain.NewTransaction(domain.TxWithdraw, amount, 0))

	s.record(domain.Action{
		Kind:            domain.ActWithdraw,
		AccNo:           accNo,
		Amount:          amount,
		BalanceSnapshot: acc.Balance + amount,
	})
	return snapshotAccount(acc), nil
}

// Transfer 转账：校验全部通过后在同一临界区内完成双边变更，
// 双方各追加一条标注对方账号的流水，命令日志只记一条 Transfer Action。
func (s *BankService) Transfer(fromAccNo, toAccNo int, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if fromAccNo == toAccNo {
		return domain.ErrSameAccount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.store.Find(fromAccNo)
	to := s.store.Find(toAccNo)
	if from == nil || to == nil {
		return domain.ErrAccountNotFound
	}
	if from.Balance < amount {
		return domain.ErrInsufficientBalance
	}

	from.Balance -= amount
	to.Balance += amount
	from.History = append(from.History, domain.NewTransaction(domain.TxTransferOut, amount, toAccNo))
	to.History = append(to.History, domain.NewTransaction(domain.TxTransferIn, amount, fromAccNo))

	s.record(domain.Action{
		Kind:         domain.ActTransfer,
		AccNo:        fromAccNo,
		CounterAccNo: toAccNo,
		Amount:       amount,
	})
	s.logger.Info("transfer",
		zap.Int("from", fromAccNo), zap.Int("to", toAccNo), zap.Int64("amount", amount))
	return nil
}

// ApplyLoan 放款。本金立即入账；Action 的 Extra 留存放款后的应还总额快照。
func (s *BankService) ApplyLoan(accNo int, loanType string, principal int64, annualRate float64, kind domain.InterestKind, termMonths int) (*domain.Loan, error) {
	if principal <= 0 || termMonths <= 0 || annualRate < 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	ln := s.engine.Apply(acc, loanType, principal, annualRate, kind, termMonths)

	s.record(domain.Action{
		Kind:            domain.ActLoanApply,
		AccNo:           accNo,
		Amount:          principal,
		LoanID:          ln.ID,
		LoanType:        loanType,
		Extra:           ln.Remaining,
		BalanceSnapshot: acc.Balance - principal,
	})
	s.logger.Info("loan approved",
		zap.Int("acc_no", accNo), zap.Int("loan_id", ln.ID),
		zap.Int64("principal", principal), zap.Float64("emi", ln.EMI))
	cp := *ln
	return &cp, nil
}

// PayLoan 还款。Extra 留存付款前的 Remaining 快照，撤销时据此还原；
// 若本次还款结清贷款，额外追加一条 LoanClose Action（再次清空 redo）。
func (s *BankService) PayLoan(accNo, loanID int, amount float64) (*domain.Loan, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	var prevRemaining float64
	if ln := loan.Find(acc, loanID); ln != nil {
		prevRemaining = ln.Remaining
	}
	ln, err := s.engine.Pay(acc, loanID, amount)
	if err != nil {
		return nil, err
	}

	s.record(domain.Action{
		Kind:            domain.ActLoanPayment,
		AccNo:           accNo,
		Amount:          int64(amount),
		LoanID:          loanID,
		Extra:           prevRemaining,
		BalanceSnapshot: acc.Balance + int64(amount),
	})
	if ln.Status == domain.LoanClosed {
		s.record(domain.Action{
			Kind:            domain.ActLoanClose,
			AccNo:           accNo,
			LoanID:          loanID,
			LoanType:        ln.Type,
			BalanceSnapshot: acc.Balance,
		})
		s.logger.Info("loan closed", zap.Int("acc_no", accNo), zap.Int("loan_id", loanID))
	}
	cp := *ln
	return &cp, nil
}

// Undo 撤销最近一次变更
func (s *BankService) Undo() (domain.ActionKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Undo(s.store, s.engine)
}

// Redo 重放最近一次被撤销的变更
func (s *BankService) Redo() (domain.ActionKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Redo(s.store, s.engine)
}

// GetAccount 查询账户快照（值拷贝，不暴露内部指针）
func (s *BankService) GetAccount(accNo int) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	return snapshotAccount(acc), nil
}

// ListAccounts 全部账户，按账号升序
func (s *BankService) ListAccounts() []*domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.store.List()
	out := make([]*domain.Account, len(all))
	for i, acc := range all {
		out[i] = snapshotAccount(acc)
	}
	return out
}

// History 账户交易流水，按入账顺序
func (s *BankService) History(accNo int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	out := make([]domain.Transaction, len(acc.History))
	copy(out, acc.History)
	return out, nil
}

// Loans 账户名下全部贷款（含已结清）
func (s *BankService) Loans(accNo int) ([]*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.store.Find(accNo)
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	out := make([]*domain.Loan, len(acc.Loans))
	for i, ln := range acc.Loans {
		cp := *ln
		out[i] = &cp
	}
	return out, nil
}

// EnqueueCustomer 客户排队，账户必须存在
func (s *BankService) EnqueueCustomer(accNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Find(accNo) == nil {
		return domain.ErrAccountNotFound
	}
	s.queue.Enqueue(accNo)
	return nil
}

// ServeCustomer 叫号
func (s *BankService) ServeCustomer() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Serve()
}

// snapshotAccount 返回账户的值拷贝，流水与贷款一并复制，
// 调用方无法越权改写内部状态。
func snapshotAccount(a *domain.Account) *domain.Account {
	cp := &domain.Account{
		AccNo:   a.AccNo,
		Name:    a.Name,
		Balance: a.Balance,
		History: make([]domain.Transaction, len(a.History)),
		Loans:   make([]*domain.Loan, len(a.Loans)),
	}
	copy(cp.History, a.History)
	for i, ln := range a.Loans {
		l := *ln
		cp.Loans[i] = &l
	}
	return cp
}
