// Package loan 实现贷款引擎：EMI 试算、放款、还款与余额追踪。
package loan

import (
	"math"

	"bankcore/internal/bank/domain"
)

// QuoteEMI 等额本息月供：
//
//	EMI = P·r·(1+r)^n / ((1+r)^n - 1)，r = annualRate/12
//
// 零利率（或分母为 0）时退化为 P/n，避免除零。
func QuoteEMI(principal, annualRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	r := annualRate / 12.0
	if r <= 0 {
		return principal / float64(termMonths)
	}
	numerator := principal * r * math.Pow(1+r, float64(termMonths))
	denom := math.Pow(1+r, float64(termMonths)) - 1.0
	if denom == 0 {
		return principal / float64(termMonths)
	}
	return numerator / denom
}

// Engine 贷款引擎。nextID 为全局单调递增的贷款号计数器，
// 作为显式字段注入而非包级全局，保证可测试。
type Engine struct {
	nextID int
}

// NewEngine 从给定贷款号种子创建引擎
func NewEngine(idSeed int) *Engine {
	return &Engine{nextID: idSeed}
}

// Apply 放款：分配贷款号、计算应还总额与月供、
// 立即将本金入账并追加 "Loan Disbursed" 流水。
//
// 单利：remaining = P + P·rate·(月数/12)，月供按零利率摊还该总额的近似值
// （不是严格的单利摊还表，保持既有口径）。
// 复利：emi 按摊还公式计算，remaining = emi × 月数。
func (e *Engine) Apply(acc *domain.Account, loanType string, principal int64, annualRate float64, kind domain.InterestKind, termMonths int) *domain.Loan {
	ln := &domain.Loan{
		ID:         e.nextID,
		Type:       loanType,
		Principal:  principal,
		AnnualRate: annualRate,
		Kind:       kind,
		TermMonths: termMonths,
		Status:     domain.LoanActive,
	}
	e.nextID++

	if kind == domain.InterestSimple {
		years := float64(termMonths) / 12.0
		ln.Remaining = float64(principal) + float64(principal)*annualRate*years
		ln.EMI = QuoteEMI(ln.Remaining, 0, termMonths)
	} else {
		ln.EMI = QuoteEMI(float64(principal), annualRate, termMonths)
		ln.Remaining = ln.EMI * float64(termMonths)
	}

	acc.Balance += principal
	acc.Loans = append(acc.Loans, ln)
	acc.History = append(acc.History, domain.NewTransaction(domain.TxLoanDisbursed, principal, 0))
	return ln
}

// Pay 还款。金额超过账户余额返回 ErrInsufficientBalance；
// 余额按整数截断扣款，Remaining 按浮点全额递减，
// 减到 <= 0 时钳位为 0 并置 Closed。追加 "Loan Payment" 流水。
func (e *Engine) Pay(acc *domain.Account, loanID int, amount float64) (*domain.Loan, error) {
	ln := Find(acc, loanID)
	if ln == nil {
		return nil, domain.ErrLoanNotFound
	}
	if ln.Status == domain.LoanClosed {
		return nil, domain.ErrLoanClosed
	}
	if float64(acc.Balance) < amount {
		return nil, domain.ErrInsufficientBalance
	}

	acc.Balance -= int64(amount)
	ln.Remaining -= amount
	if ln.Remaining <= 0 {
		ln.Remaining = 0
		ln.Status = domain.LoanClosed
	}
	acc.History = append(acc.History, domain.NewTransaction(domain.TxLoanPayment, int64(amount), 0))
	return ln, nil
}

// Rebuild 重建贷款记录（redo 放款的降级路径）。
// Action 只留存了类型名、本金、贷款号与应还总额快照，
// 原始利率/期限/计息方式无从恢复，用保守缺省值补齐。
func (e *Engine) Rebuild(loanID int, loanType string, principal int64, remaining float64) *domain.Loan {
	return &domain.Loan{
		ID:         loanID,
		Type:       loanType,
		Principal:  principal,
		AnnualRate: 0,
		Kind:       domain.InterestSimple,
		TermMonths: 1,
		EMI:        QuoteEMI(float64(principal), 0, 1),
		Remaining:  remaining,
		Status:     domain.LoanActive,
	}
}

// Find 在账户名下按贷款号查找；不存在返回 nil
func Find(acc *domain.Account, loanID int) *domain.Loan {
	for _, ln := range acc.Loans {
		if ln.ID == loanID {
			return ln
		}
	}
	return nil
}

// Remove 从账户名下摘除指定贷款（撤销放款路径）；
// 返回被摘除的记录，不存在返回 nil。
func Remove(acc *domain.Account, loanID int) *domain.Loan {
	for i, ln := range acc.Loans {
		if ln.ID == loanID {
			acc.Loans = append(acc.Loans[:i], acc.Loans[i+1:]...)
			return ln
		}
	}
	return nil
}
