// Package journal 实现可逆命令日志：每个变更操作记录为一条 Action，
// undo 弹出并施加反向效果后推入 redo 栈，redo 弹出并重放正向效果后推回 undo 栈。
// 同一条 Action 记录服务于两个方向——字段是对称的，反向只是算术符号取反。
package journal

import (
	"go.uber.org/zap"

	"bankcore/internal/bank/domain"
	"bankcore/internal/bank/ledger"
	"bankcore/internal/bank/loan"
)

// Journal 持有 undo / redo 两个 LIFO 栈。
// 不变式：一条 Action 任一时刻至多属于一个栈；
// 任何新的变更操作都会清空 redo 栈（时间线分叉后旧的 redo 历史失效）。
type Journal struct {
	undo   []domain.Action
	redo   []domain.Action
	logger *zap.Logger
}

func New(logger *zap.Logger) *Journal {
	return &Journal{logger: logger}
}

// Record 将一条已完成变更压入 undo 栈
func (j *Journal) Record(a domain.Action) {
	j.undo = append(j.undo, a)
}

// ClearRedo 清空 redo 栈。每个变更操作在记录 Action 后无条件调用。
func (j *Journal) ClearRedo() {
	j.redo = j.redo[:0]
}

func (j *Journal) UndoDepth() int { return len(j.undo) }
func (j *Journal) RedoDepth() int { return len(j.redo) }

// Undo 弹出最近一条 Action，施加反向效果，并将同一条记录推入 redo 栈。
// 失败分支（目标账户/贷款已不存在、对方余额不足以回退）只报告错误并
// 丢弃已弹出的 Action——不重推、不重试，两个栈保持弹出后的状态。
func (j *Journal) Undo(store *ledger.Store, engine *loan.Engine) (domain.ActionKind, error) {
	if len(j.undo) == 0 {
		return 0, domain.ErrNothingToUndo
	}
	a := j.undo[len(j.undo)-1]
	j.undo = j.undo[:len(j.undo)-1]

	if err := j.invert(a, store, engine); err != nil {
		j.logger.Warn("undo dropped", zap.String("kind", a.Kind.String()), zap.Error(err))
		return a.Kind, err
	}
	j.redo = append(j.redo, a)
	return a.Kind, nil
}

// Redo 弹出最近一条被撤销的 Action，重放正向效果，推回 undo 栈。
// 失败语义与 Undo 相同：非致命，Action 被丢弃。
func (j *Journal) Redo(store *ledger.Store, engine *loan.Engine) (domain.ActionKind, error) {
	if len(j.redo) == 0 {
		return 0, domain.ErrNothingToRedo
	}
	a := j.redo[len(j.redo)-1]
	j.redo = j.redo[:len(j.redo)-1]

	if err := j.replay(a, store, engine); err != nil {
		j.logger.Warn("redo dropped", zap.String("kind", a.Kind.String()), zap.Error(err))
		return a.Kind, err
	}
	j.undo = append(j.undo, a)
	return a.Kind, nil
}

// invert 反向效果。流水是只追加的审计日志：
// 每个分支追加一条 "Undo X" 流水，绝不删除原始记录。
func (j *Journal) invert(a domain.Action, store *ledger.Store, engine *loan.Engine) error {
	switch a.Kind {
	case domain.ActDeposit:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		acc.Balance -= a.Amount
		acc.History = append(acc.History, domain.NewTransaction("Undo Deposit", a.Amount, 0))
		return nil

	case domain.ActWithdraw:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		acc.Balance += a.Amount
		acc.History = append(acc.History, domain.NewTransaction("Undo Withdraw", a.Amount, 0))
		return nil

	case domain.ActTransfer:
		from := store.Find(a.AccNo)
		to := store.Find(a.CounterAccNo)
		if from == nil || to == nil {
			return domain.ErrAccountNotFound
		}
		// 收款方余额必须足以退回，检查先于任何改动，两条腿要么全做要么全不做
		if to.Balance < a.Amount {
			return domain.ErrInsufficientBalance
		}
		to.Balance -= a.Amount
		from.Balance += a.Amount
		from.History = append(from.History, domain.NewTransaction("Undo Transfer (back)", a.Amount, a.CounterAccNo))
		to.History = append(to.History, domain.NewTransaction("Undo Transfer (reversed)", a.Amount, a.AccNo))
		return nil

	case domain.ActCreateAccount:
		// 撤销开户 = 销户（快照丢弃，redo 重建时只还原余额）
		if _, err := store.Delete(a.AccNo); err != nil {
			return err
		}
		return nil

	case domain.ActDeleteAccount:
		// 撤销销户：依深拷贝快照完整还原（含流水与贷款）
		if a.Snapshot == nil {
			return domain.ErrAccountNotFound
		}
		store.Restore(a.Snapshot)
		return nil

	case domain.ActLoanApply:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		ln := loan.Remove(acc, a.LoanID)
		if ln == nil {
			return domain.ErrLoanNotFound
		}
		// 本金退回可能让余额转负，这里允许（撤销优先于保底规则）
		acc.Balance -= ln.Principal
		acc.History = append(acc.History, domain.NewTransaction("Undo Loan Apply (removed)", ln.Principal, 0))
		return nil

	case domain.ActLoanPayment:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		ln := loan.Find(acc, a.LoanID)
		if ln == nil {
			return domain.ErrLoanNotFound
		}
		// Extra 存的是付款前的 Remaining 快照
		acc.Balance += a.Amount
		ln.Remaining = a.Extra
		if ln.Remaining > 0 {
			ln.Status = domain.LoanActive
		}
		acc.History = append(acc.History, domain.NewTransaction("Undo Loan Payment", a.Amount, 0))
		return nil

	case domain.ActLoanClose:
		// 只把状态改回 Active，不回滚导致结清的那些还款
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		ln := loan.Find(acc, a.LoanID)
		if ln == nil {
			return domain.ErrLoanNotFound
		}
		ln.Status = domain.LoanActive
		return nil
	}
	return domain.ErrNothingToUndo
}

// replay 正向效果重放。
func (j *Journal) replay(a domain.Action, store *ledger.Store, engine *loan.Engine) error {
	switch a.Kind {
	case domain.ActDeposit:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		acc.Balance += a.Amount
		acc.History = append(acc.History, domain.NewTransaction("Redo Deposit", a.Amount, 0))
		return nil

	case domain.ActWithdraw:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		if acc.Balance < a.Amount {
			return domain.ErrInsufficientBalance
		}
		acc.Balance -= a.Amount
		acc.History = append(acc.History, domain.NewTransaction("Redo Withdraw", a.Amount, 0))
		return nil

	case domain.ActTransfer:
		from := store.Find(a.AccNo)
		to := store.Find(a.CounterAccNo)
		if from == nil || to == nil {
			return domain.ErrAccountNotFound
		}
		if from.Balance < a.Amount {
			return domain.ErrInsufficientBalance
		}
		from.Balance -= a.Amount
		to.Balance += a.Amount
		from.History = append(from.History, domain.NewTransaction("Redo Transfer (to)", a.Amount, a.CounterAccNo))
		to.History = append(to.History, domain.NewTransaction("Redo Transfer (from)", a.Amount, a.AccNo))
		return nil

	case domain.ActCreateAccount:
		acc, err := store.Create(a.AccNo, a.AccName)
		if err != nil {
			return err
		}
		acc.Balance = a.BalanceSnapshot
		if a.BalanceSnapshot > 0 {
			acc.History = append(acc.History, domain.NewTransaction("Redo Initial Balance", a.BalanceSnapshot, 0))
		}
		return nil

	case domain.ActDeleteAccount:
		if _, err := store.Delete(a.AccNo); err != nil {
			return err
		}
		return nil

	case domain.ActLoanApply:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		// 降级重建：Action 未留存原始利率/期限/计息方式，用缺省值补齐，
		// 再覆盖留存的贷款号与应还总额快照
		ln := engine.Rebuild(a.LoanID, a.LoanType, a.Amount, a.Extra)
		acc.Loans = append(acc.Loans, ln)
		acc.Balance += a.Amount
		acc.History = append(acc.History, domain.NewTransaction("Redo Loan Disbursed", a.Amount, 0))
		return nil

	case domain.ActLoanPayment:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		ln := loan.Find(acc, a.LoanID)
		if ln == nil {
			return domain.ErrLoanNotFound
		}
		if acc.Balance < a.Amount {
			return domain.ErrInsufficientBalance
		}
		acc.Balance -= a.Amount
		ln.Remaining -= float64(a.Amount)
		if ln.Remaining <= 0 {
			ln.Remaining = 0
			ln.Status = domain.LoanClosed
		}
		acc.History = append(acc.History, domain.NewTransaction("Redo Loan Payment", a.Amount, 0))
		return nil

	case domain.ActLoanClose:
		acc := store.Find(a.AccNo)
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		ln := loan.Find(acc, a.LoanID)
		if ln == nil {
			return domain.ErrLoanNotFound
		}
		ln.Status = domain.LoanClosed
		return nil
	}
	return domain.ErrNothingToRedo
}
