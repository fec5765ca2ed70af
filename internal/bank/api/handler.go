package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bankcore/internal/bank/domain"
	"bankcore/internal/bank/service"
)

type BankHandler struct {
	svc *service.BankService
}

func NewBankHandler(svc *service.BankService) *BankHandler {
	return &BankHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *BankHandler) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts")
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("", h.ListAccounts)
		accounts.GET("/:accNo", h.GetAccount)
		accounts.PUT("/:accNo", h.UpdateAccount)
		accounts.DELETE("/:accNo", h.DeleteAccount)
		accounts.POST("/:accNo/deposit", h.Deposit)
		accounts.POST("/:accNo/withdraw", h.Withdraw)
		accounts.GET("/:accNo/transactions", h.ListTransactions)
		accounts.POST("/:accNo/loans", h.ApplyLoan)
		accounts.GET("/:accNo/loans", h.ListLoans)
		accounts.POST("/:accNo/loans/:loanID/payments", h.PayLoan)
	}
	r.POST("/transfers", h.Transfer)

	journal := r.Group("/journal")
	{
		journal.POST("/undo", h.Undo)
		journal.POST("/redo", h.Redo)
	}

	queue := r.Group("/queue")
	{
		queue.POST("", h.Enqueue)
		queue.POST("/serve", h.Serve)
	}
}

// writeError 领域错误 → HTTP 状态码
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrQueueEmpty):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateAccount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrMinWithdraw),
		errors.Is(err, domain.ErrMinBalance),
		errors.Is(err, domain.ErrLoanClosed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNothingToUndo),
		errors.Is(err, domain.ErrNothingToRedo):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// accNoParam 解析路径中的账号
func accNoParam(c *gin.Context) (int, bool) {
	accNo, err := strconv.Atoi(c.Param("accNo"))
	if err != nil || accNo <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account number"})
		return 0, false
	}
	return accNo, true
}

// parseAmount 金额字符串 → 正整数货币单位。
// 用 decimal 解析校验，小数部分截断（账本以整数单位记账）。
func parseAmount(c *gin.Context, raw string) (int64, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount format: " + raw})
		return 0, false
	}
	if d.LessThanOrEqual(decimal.Zero) {
		writeError(c, domain.ErrInvalidAmount)
		return 0, false
	}
	return d.IntPart(), true
}

// POST /api/v1/accounts
func (h *BankHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	acc, err := h.svc.CreateAccount(req.AccNo, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountView(acc))
}

// GET /api/v1/accounts
func (h *BankHandler) ListAccounts(c *gin.Context) {
	all := h.svc.ListAccounts()
	out := make([]gin.H, len(all))
	for i, acc := range all {
		out[i] = accountView(acc)
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

// GET /api/v1/accounts/:accNo
func (h *BankHandler) GetAccount(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	acc, err := h.svc.GetAccount(accNo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountView(acc))
}

// PUT /api/v1/accounts/:accNo
func (h *BankHandler) UpdateAccount(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	var req UpdateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.svc.UpdateName(accNo, req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account updated"})
}

// DELETE /api/v1/accounts/:accNo
func (h *BankHandler) DeleteAccount(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(accNo); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// POST /api/v1/accounts/:accNo/deposit
func (h *BankHandler) Deposit(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	var req AmountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}
	acc, err := h.svc.Deposit(accNo, amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acc_no": acc.AccNo, "balance": acc.Balance})
}

// POST /api/v1/accounts/:accNo/withdraw
func (h *BankHandler) Withdraw(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	var req AmountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}
	acc, err := h.svc.Withdraw(accNo, amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acc_no": acc.AccNo, "balance": acc.Balance})
}

// POST /api/v1/transfers
func (h *BankHandler) Transfer(c *gin.Context) {
	var req TransferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}
	if err := h.svc.Transfer(req.FromAcc, req.ToAcc, amount); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transfer completed"})
}

// GET /api/v1/accounts/:accNo/transactions
func (h *BankHandler) ListTransactions(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	history, err := h.svc.History(accNo)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, len(history))
	for i, tx := range history {
		v := gin.H{
			"id":     tx.ID,
			"kind":   tx.Kind,
			"amount": tx.Amount,
			"at":     tx.At,
		}
		if tx.CounterAcc != 0 {
			v["counter_acc"] = tx.CounterAcc
		}
		out[i] = v
	}
	c.JSON(http.StatusOK, gin.H{"acc_no": accNo, "transactions": out})
}

// POST /api/v1/accounts/:accNo/loans
func (h *BankHandler) ApplyLoan(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	var req ApplyLoanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	principal, ok := parseAmount(c, req.Principal)
	if !ok {
		return
	}
	kind := domain.InterestSimple
	if req.InterestKind == "compound" {
		kind = domain.InterestCompound
	}
	ln, err := h.svc.ApplyLoan(accNo, req.LoanType, principal, req.AnnualRate, kind, req.TermMonths)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loanView(ln))
}

// GET /api/v1/accounts/:accNo/loans
func (h *BankHandler) ListLoans(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	loans, err := h.svc.Loans(accNo)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, len(loans))
	for i, ln := range loans {
		out[i] = loanView(ln)
	}
	c.JSON(http.StatusOK, gin.H{"acc_no": accNo, "loans": out})
}

// POST /api/v1/accounts/:accNo/loans/:loanID/payments
func (h *BankHandler) PayLoan(c *gin.Context) {
	accNo, ok := accNoParam(c)
	if !ok {
		return
	}
	loanID, err := strconv.Atoi(c.Param("loanID"))
	if err != nil || loanID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}
	var req AmountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	// 还款金额保留小数：Remaining 按浮点递减
	d, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount format: " + req.Amount})
		return
	}
	if d.LessThanOrEqual(decimal.Zero) {
		writeError(c, domain.ErrInvalidAmount)
		return
	}
	ln, err := h.svc.PayLoan(accNo, loanID, d.InexactFloat64())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loanView(ln))
}

// POST /api/v1/journal/undo
func (h *BankHandler) Undo(c *gin.Context) {
	kind, err := h.svc.Undo()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "undone", "kind": kind.String()})
}

// POST /api/v1/journal/redo
func (h *BankHandler) Redo(c *gin.Context) {
	kind, err := h.svc.Redo()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "redone", "kind": kind.String()})
}

// POST /api/v1/queue
func (h *BankHandler) Enqueue(c *gin.Context) {
	var req EnqueueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.svc.EnqueueCustomer(req.AccNo); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "queued", "acc_no": req.AccNo})
}

// POST /api/v1/queue/serve
func (h *BankHandler) Serve(c *gin.Context) {
	accNo, err := h.svc.ServeCustomer()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "serving", "acc_no": accNo})
}

func accountView(acc *domain.Account) gin.H {
	return gin.H{
		"acc_no":  acc.AccNo,
		"name":    acc.Name,
		"balance": acc.Balance,
	}
}

func loanView(ln *domain.Loan) gin.H {
	kind := "simple"
	if ln.Kind == domain.InterestCompound {
		kind = "compound"
	}
	return gin.H{
		"loan_id":       ln.ID,
		"loan_type":     ln.Type,
		"principal":     ln.Principal,
		"annual_rate":   ln.AnnualRate,
		"interest_kind": kind,
		"term_months":   ln.TermMonths,
		"emi":           ln.EMI,
		"remaining":     ln.Remaining,
		"status":        ln.Status.String(),
	}
}
