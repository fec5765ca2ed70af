package loan

import (
	"errors"
	"math"
	"testing"

	"bankcore/internal/bank/domain"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestQuoteEMIZeroRate 零利率边界：EMI 退化为 P/n
func TestQuoteEMIZeroRate(t *testing.T) {
	cases := []struct {
		principal float64
		months    int
		want      float64
	}{
		{12000, 12, 1000},
		{700, 7, 100},
		{999, 3, 333},
	}
	for _, c := range cases {
		got := QuoteEMI(c.principal, 0, c.months)
		if !almostEqual(got, c.principal/float64(c.months), 1e-9) {
			t.Fatalf("QuoteEMI(%v,0,%d)=%v", c.principal, c.months, got)
		}
		if !almostEqual(got, c.want, 0.5) {
			t.Fatalf("QuoteEMI(%v,0,%d)=%v want≈%v", c.principal, c.months, got, c.want)
		}
	}
	if QuoteEMI(1000, 0.1, 0) != 0 {
		t.Fatal("zero term must quote 0")
	}
}

// TestQuoteEMICompound 等额本息标准用例：P=12000, 年利率 12%, 12 期
// EMI ≈ 1066.19
func TestQuoteEMICompound(t *testing.T) {
	emi := QuoteEMI(12000, 0.12, 12)
	if !almostEqual(emi, 1066.19, 0.05) {
		t.Fatalf("emi=%v want≈1066.19", emi)
	}
}

// TestApplyCompound 放款（复利）：本金立即入账，
// remaining = emi × 期数，追加 "Loan Disbursed" 流水
func TestApplyCompound(t *testing.T) {
	e := NewEngine(1000)
	acc := &domain.Account{AccNo: 101, Balance: 700}

	ln := e.Apply(acc, "Personal", 12000, 0.12, domain.InterestCompound, 12)
	if ln.ID != 1000 {
		t.Fatalf("loan id=%d want=1000", ln.ID)
	}
	if acc.Balance != 12700 {
		t.Fatalf("balance=%d want=12700", acc.Balance)
	}
	if !almostEqual(ln.Remaining, ln.EMI*12, 1e-9) {
		t.Fatalf("remaining=%v emi=%v", ln.Remaining, ln.EMI)
	}
	if len(acc.History) != 1 || acc.History[0].Kind != domain.TxLoanDisbursed {
		t.Fatalf("history=%+v", acc.History)
	}

	// 贷款号单调递增，永不复用
	ln2 := e.Apply(acc, "Auto", 1000, 0.1, domain.InterestCompound, 6)
	if ln2.ID != 1001 {
		t.Fatalf("second loan id=%d want=1001", ln2.ID)
	}
}

// TestApplySimple 单利口径：remaining = P + P·rate·(月数/12)，
// 月供为零利率摊还该总额的近似值
func TestApplySimple(t *testing.T) {
	e := NewEngine(1000)
	acc := &domain.Account{AccNo: 101}

	ln := e.Apply(acc, "Personal", 12000, 0.10, domain.InterestSimple, 24)
	if !almostEqual(ln.Remaining, 14400, 1e-9) {
		t.Fatalf("remaining=%v want=14400", ln.Remaining)
	}
	if !almostEqual(ln.EMI, 600, 1e-9) {
		t.Fatalf("emi=%v want=600", ln.EMI)
	}
}

// TestPay 还款：部分还款、结清钳位、状态不变式
func TestPay(t *testing.T) {
	e := NewEngine(1000)
	acc := &domain.Account{AccNo: 101, Balance: 700}
	ln := e.Apply(acc, "Personal", 10000, 0, domain.InterestSimple, 10) // remaining=10000

	if _, err := e.Pay(acc, 9999, 100); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("want ErrLoanNotFound, got %v", err)
	}
	if _, err := e.Pay(acc, ln.ID, 99999); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}

	got, err := e.Pay(acc, ln.ID, 4000)
	if err != nil {
		t.Fatal(err)
	}
	if got.Remaining != 6000 || got.Status != domain.LoanActive {
		t.Fatalf("after partial pay: %+v", got)
	}
	if acc.Balance != 6700 {
		t.Fatalf("balance=%d want=6700", acc.Balance)
	}

	// 超额还款钳位到 0 并结清；不变式 Closed ⟺ Remaining == 0
	got, err = e.Pay(acc, ln.ID, 6500)
	if err != nil {
		t.Fatal(err)
	}
	if got.Remaining != 0 || got.Status != domain.LoanClosed {
		t.Fatalf("after closing pay: %+v", got)
	}

	// 已结清贷款拒绝再还款
	if _, err := e.Pay(acc, ln.ID, 1); !errors.Is(err, domain.ErrLoanClosed) {
		t.Fatalf("want ErrLoanClosed, got %v", err)
	}
}

// TestPayStatusInvariant 每次还款后检查 Closed ⟺ Remaining == 0
func TestPayStatusInvariant(t *testing.T) {
	e := NewEngine(1000)
	acc := &domain.Account{AccNo: 101, Balance: 100000}
	ln := e.Apply(acc, "Auto", 5000, 0.05, domain.InterestCompound, 6)

	for i := 0; i < 10; i++ {
		got, err := e.Pay(acc, ln.ID, 600)
		if errors.Is(err, domain.ErrLoanClosed) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		closed := got.Status == domain.LoanClosed
		if closed != (got.Remaining == 0) {
			t.Fatalf("invariant violated: %+v", got)
		}
		if got.Remaining < 0 {
			t.Fatalf("remaining negative: %v", got.Remaining)
		}
	}
}

// TestRebuild redo 放款的降级重建：只带类型名/本金/贷款号/应还快照，
// 其余字段用缺省值补齐
func TestRebuild(t *testing.T) {
	e := NewEngine(1000)
	ln := e.Rebuild(1042, "Personal", 8000, 8800)
	if ln.ID != 1042 || ln.Principal != 8000 || ln.Remaining != 8800 {
		t.Fatalf("rebuilt=%+v", ln)
	}
	if ln.AnnualRate != 0 || ln.TermMonths != 1 || ln.Kind != domain.InterestSimple {
		t.Fatalf("fallback defaults wrong: %+v", ln)
	}
	if ln.Status != domain.LoanActive {
		t.Fatalf("rebuilt loan must be active: %+v", ln)
	}
}

// TestFindRemove 名下查找与摘除
func TestFindRemove(t *testing.T) {
	e := NewEngine(1000)
	acc := &domain.Account{AccNo: 101}
	a := e.Apply(acc, "A", 100, 0, domain.InterestSimple, 1)
	b := e.Apply(acc, "B", 200, 0, domain.InterestSimple, 1)

	if Find(acc, b.ID) == nil || Find(acc, 9999) != nil {
		t.Fatal("Find misbehaves")
	}
	removed := Remove(acc, a.ID)
	if removed == nil || removed.ID != a.ID {
		t.Fatalf("removed=%+v", removed)
	}
	if len(acc.Loans) != 1 || acc.Loans[0].ID != b.ID {
		t.Fatalf("loans after remove: %+v", acc.Loans)
	}
	if Remove(acc, a.ID) != nil {
		t.Fatal("second remove must return nil")
	}
}
