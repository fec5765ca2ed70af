// API 层集成测试：起一个完整 gin 引擎，端对端验证
// 请求绑定、金额字符串解析、领域错误到 HTTP 状态码的映射。
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bankcore/internal/bank/journal"
	"bankcore/internal/bank/ledger"
	"bankcore/internal/bank/loan"
	"bankcore/internal/bank/queue"
	"bankcore/internal/bank/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	svc := service.NewBankService(
		ledger.NewStore(),
		loan.NewEngine(1000),
		journal.New(logger),
		queue.New(),
		service.Policy{OpeningDeposit: 700, MinWithdraw: 500, MinBalance: 700},
		logger,
	)
	r := gin.New()
	NewBankHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

// doJSON 发送 JSON 请求并校验状态码；out 非 nil 时解析响应体
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != wantStatus {
		t.Fatalf("%s %s status=%d want=%d body=%s", method, path, w.Code, wantStatus, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v body=%s", err, w.Body.String())
		}
	}
}

// TestAccountLifecycle 开户 → 存款 → 取款规则 → 查询 → 销户
func TestAccountLifecycle(t *testing.T) {
	r := newTestRouter(t)

	var created struct {
		AccNo   int   `json:"acc_no"`
		Balance int64 `json:"balance"`
	}
	doJSON(t, r, "POST", "/api/v1/accounts",
		map[string]any{"acc_no": 101, "name": "Alice"}, http.StatusCreated, &created)
	if created.Balance != 700 {
		t.Fatalf("opening balance=%d want=700", created.Balance)
	}

	// 账号冲突 → 409
	doJSON(t, r, "POST", "/api/v1/accounts",
		map[string]any{"acc_no": 101, "name": "Bob"}, http.StatusConflict, nil)

	// 金额走字符串
	var after struct {
		Balance int64 `json:"balance"`
	}
	doJSON(t, r, "POST", "/api/v1/accounts/101/deposit",
		map[string]any{"amount": "1300"}, http.StatusOK, &after)
	if after.Balance != 2000 {
		t.Fatalf("balance=%d want=2000", after.Balance)
	}

	// 非法金额格式 → 400
	doJSON(t, r, "POST", "/api/v1/accounts/101/deposit",
		map[string]any{"amount": "12x"}, http.StatusBadRequest, nil)
	doJSON(t, r, "POST", "/api/v1/accounts/101/deposit",
		map[string]any{"amount": "-5"}, http.StatusBadRequest, nil)

	// 取款规则：低于最小取款额 / 击穿保底线 → 409
	doJSON(t, r, "POST", "/api/v1/accounts/101/withdraw",
		map[string]any{"amount": "300"}, http.StatusConflict, nil)
	doJSON(t, r, "POST", "/api/v1/accounts/101/withdraw",
		map[string]any{"amount": "1500"}, http.StatusConflict, nil)
	doJSON(t, r, "POST", "/api/v1/accounts/101/withdraw",
		map[string]any{"amount": "1000"}, http.StatusOK, &after)
	if after.Balance != 1000 {
		t.Fatalf("balance=%d want=1000", after.Balance)
	}

	// 不存在的账户 → 404
	doJSON(t, r, "GET", "/api/v1/accounts/999", nil, http.StatusNotFound, nil)

	doJSON(t, r, "DELETE", "/api/v1/accounts/101", nil, http.StatusOK, nil)
	doJSON(t, r, "GET", "/api/v1/accounts/101", nil, http.StatusNotFound, nil)
}

// TestTransferAndHistory 转账 + 流水查询
func TestTransferAndHistory(t *testing.T) {
	r := newTestRouter(t)
	doJSON(t, r, "POST", "/api/v1/accounts", map[string]any{"acc_no": 101, "name": "A"}, http.StatusCreated, nil)
	doJSON(t, r, "POST", "/api/v1/accounts", map[string]any{"acc_no": 102, "name": "B"}, http.StatusCreated, nil)
	doJSON(t, r, "POST", "/api/v1/accounts/101/deposit", map[string]any{"amount": "1300"}, http.StatusOK, nil)

	// 同户转账 → 400
	doJSON(t, r, "POST", "/api/v1/transfers",
		map[string]any{"from_acc": 101, "to_acc": 101, "amount": "100"}, http.StatusBadRequest, nil)
	// 余额不足 → 409
	doJSON(t, r, "POST", "/api/v1/transfers",
		map[string]any{"from_acc": 102, "to_acc": 101, "amount": "99999"}, http.StatusConflict, nil)

	doJSON(t, r, "POST", "/api/v1/transfers",
		map[string]any{"from_acc": 101, "to_acc": 102, "amount": "600"}, http.StatusOK, nil)

	var hist struct {
		Transactions []struct {
			Kind       string `json:"kind"`
			Amount     int64  `json:"amount"`
			CounterAcc int    `json:"counter_acc"`
		} `json:"transactions"`
	}
	doJSON(t, r, "GET", "/api/v1/accounts/102/transactions", nil, http.StatusOK, &hist)
	last := hist.Transactions[len(hist.Transactions)-1]
	if last.Kind != "Transfer In" || last.Amount != 600 || last.CounterAcc != 101 {
		t.Fatalf("last tx=%+v", last)
	}
}

// TestLoanEndpoints 放款、名下贷款、还款
func TestLoanEndpoints(t *testing.T) {
	r := newTestRouter(t)
	doJSON(t, r, "POST", "/api/v1/accounts", map[string]any{"acc_no": 101, "name": "A"}, http.StatusCreated, nil)

	var ln struct {
		LoanID    int     `json:"loan_id"`
		EMI       float64 `json:"emi"`
		Remaining float64 `json:"remaining"`
		Status    string  `json:"status"`
	}
	doJSON(t, r, "POST", "/api/v1/accounts/101/loans", map[string]any{
		"loan_type":     "Personal",
		"principal":     "12000",
		"annual_rate":   0.12,
		"interest_kind": "compound",
		"term_months":   12,
	}, http.StatusCreated, &ln)
	if ln.LoanID != 1000 {
		t.Fatalf("loan_id=%d want=1000", ln.LoanID)
	}
	if ln.EMI < 1066.1 || ln.EMI > 1066.3 {
		t.Fatalf("emi=%v want≈1066.19", ln.EMI)
	}

	// 本金已入账：700 + 12000
	var acc struct {
		Balance int64 `json:"balance"`
	}
	doJSON(t, r, "GET", "/api/v1/accounts/101", nil, http.StatusOK, &acc)
	if acc.Balance != 12700 {
		t.Fatalf("balance=%d want=12700", acc.Balance)
	}

	doJSON(t, r, "POST", "/api/v1/accounts/101/loans/1000/payments",
		map[string]any{"amount": "1066.19"}, http.StatusOK, &ln)
	if ln.Status != "active" {
		t.Fatalf("status=%q want=active", ln.Status)
	}

	// 不存在的贷款 → 404
	doJSON(t, r, "POST", "/api/v1/accounts/101/loans/9999/payments",
		map[string]any{"amount": "10"}, http.StatusNotFound, nil)

	var list struct {
		Loans []json.RawMessage `json:"loans"`
	}
	doJSON(t, r, "GET", "/api/v1/accounts/101/loans", nil, http.StatusOK, &list)
	if len(list.Loans) != 1 {
		t.Fatalf("loans len=%d want=1", len(list.Loans))
	}
}

// TestJournalEndpoints undo/redo 端点与空栈语义
func TestJournalEndpoints(t *testing.T) {
	r := newTestRouter(t)

	// 空栈 → 422
	doJSON(t, r, "POST", "/api/v1/journal/undo", nil, http.StatusUnprocessableEntity, nil)
	doJSON(t, r, "POST", "/api/v1/journal/redo", nil, http.StatusUnprocessableEntity, nil)

	doJSON(t, r, "POST", "/api/v1/accounts", map[string]any{"acc_no": 101, "name": "A"}, http.StatusCreated, nil)
	doJSON(t, r, "POST", "/api/v1/accounts/101/deposit", map[string]any{"amount": "200"}, http.StatusOK, nil)

	var res struct {
		Kind string `json:"kind"`
	}
	doJSON(t, r, "POST", "/api/v1/journal/undo", nil, http.StatusOK, &res)
	if res.Kind != "deposit" {
		t.Fatalf("kind=%q want=deposit", res.Kind)
	}

	var acc struct {
		Balance int64 `json:"balance"`
	}
	doJSON(t, r, "GET", "/api/v1/accounts/101", nil, http.StatusOK, &acc)
	if acc.Balance != 700 {
		t.Fatalf("after undo balance=%d want=700", acc.Balance)
	}

	doJSON(t, r, "POST", "/api/v1/journal/redo", nil, http.StatusOK, &res)
	doJSON(t, r, "GET", "/api/v1/accounts/101", nil, http.StatusOK, &acc)
	if acc.Balance != 900 {
		t.Fatalf("after redo balance=%d want=900", acc.Balance)
	}
}

// TestQueueEndpoints 排队与叫号
func TestQueueEndpoints(t *testing.T) {
	r := newTestRouter(t)
	doJSON(t, r, "POST", "/api/v1/accounts", map[string]any{"acc_no": 101, "name": "A"}, http.StatusCreated, nil)

	// 不存在的账户不可排队 → 404
	doJSON(t, r, "POST", "/api/v1/queue", map[string]any{"acc_no": 999}, http.StatusNotFound, nil)
	doJSON(t, r, "POST", "/api/v1/queue", map[string]any{"acc_no": 101}, http.StatusOK, nil)

	var served struct {
		AccNo int `json:"acc_no"`
	}
	doJSON(t, r, "POST", "/api/v1/queue/serve", nil, http.StatusOK, &served)
	if served.AccNo != 101 {
		t.Fatalf("served=%d want=101", served.AccNo)
	}
	doJSON(t, r, "POST", "/api/v1/queue/serve", nil, http.StatusNotFound, nil)
}
