// Package ledger 提供账本存储：以账号为键的账户集合。
// 对外唯一的顺序契约是 List 按账号升序输出；内部用 map + 按需排序实现，
// 不依赖任何平衡树结构。
package ledger

import (
	"sort"

	"bankcore/internal/bank/domain"
)

// Store 账户仓储（in-memory）。
// 所有并发控制由上层 BankService 的互斥锁负责，Store 本身不加锁。
type Store struct {
	accounts map[int]*domain.Account
}

func NewStore() *Store {
	return &Store{accounts: make(map[int]*domain.Account)}
}

// Create 开户。账号冲突返回 ErrDuplicateAccount。
// 新账户余额为 0，开户押金属于业务策略，由 service 层入账。
func (s *Store) Create(accNo int, name string) (*domain.Account, error) {
	if _, ok := s.accounts[accNo]; ok {
		return nil, domain.ErrDuplicateAccount
	}
	a := &domain.Account{AccNo: accNo, Name: name}
	s.accounts[accNo] = a
	return a, nil
}

// Find 按账号查找；不存在返回 nil
func (s *Store) Find(accNo int) *domain.Account {
	return s.accounts[accNo]
}

// Delete 销户并返回深拷贝快照。
// 快照与被删对象完全脱钩，命令日志靠它做撤销销户的还原。
func (s *Store) Delete(accNo int) (*domain.AccountSnapshot, error) {
	a, ok := s.accounts[accNo]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	snap := domain.SnapshotOf(a)
	delete(s.accounts, accNo)
	return snap, nil
}

// Restore 依快照重建账户（撤销销户路径）。
// 若账号已被占用则直接返回现有账户，不覆盖。
func (s *Store) Restore(snap *domain.AccountSnapshot) *domain.Account {
	if existing, ok := s.accounts[snap.AccNo]; ok {
		return existing
	}
	a := &domain.Account{
		AccNo:   snap.AccNo,
		Name:    snap.Name,
		Balance: snap.Balance,
		History: make([]domain.Transaction, len(snap.History)),
		Loans:   make([]*domain.Loan, len(snap.Loans)),
	}
	copy(a.History, snap.History)
	for i, ln := range snap.Loans {
		cp := *ln
		a.Loans[i] = &cp
	}
	s.accounts[snap.AccNo] = a
	return a
}

// List 返回全部账户，按账号升序。
func (s *Store) List() []*domain.Account {
	out := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccNo < out[j].AccNo })
	return out
}

func (s *Store) Len() int {
	return len(s.accounts)
}
