package domain

// ActionKind 可撤销操作类型 (1-8)
type ActionKind int16

const (
	ActDeposit       ActionKind = 1 // 存款
	ActWithdraw      ActionKind = 2 // 取款
	ActTransfer      ActionKind = 3 // 转账 (双边)
	ActCreateAccount ActionKind = 4 // 开户
	ActDeleteAccount ActionKind = 5 // 销户
	ActLoanApply     ActionKind = 6 // 放款
	ActLoanPayment   ActionKind = 7 // 还款
	ActLoanClose     ActionKind = 8 // 贷款结清
)

// String 用于日志与 API 输出
func (k ActionKind) String() string {
	switch k {
	case ActDeposit:
		return "deposit"
	case ActWithdraw:
		return "withdraw"
	case ActTransfer:
		return "transfer"
	case ActCreateAccount:
		return "create_account"
	case ActDeleteAccount:
		return "delete_account"
	case ActLoanApply:
		return "loan_apply"
	case ActLoanPayment:
		return "loan_payment"
	case ActLoanClose:
		return "loan_close"
	}
	return "unknown"
}

// InterestKind 计息方式
type InterestKind int16

const (
	InterestSimple   InterestKind = 0 // 单利
	InterestCompound InterestKind = 1 // 复利 (按月等额本息摊还)
)

// LoanStatus 贷款状态
type LoanStatus int16

const (
	LoanActive LoanStatus = 0
	LoanClosed LoanStatus = 1
)

func (s LoanStatus) String() string {
	if s == LoanClosed {
		return "closed"
	}
	return "active"
}

// 交易流水类型。历史是只追加的审计日志：撤销某笔操作时
// 追加一条反向流水，而不是删除原始记录。
const (
	TxOpeningDeposit = "Initial Deposit (Mandatory)"
	TxDeposit        = "Deposit"
	TxWithdraw       = "Withdraw"
	TxTransferOut    = "Transfer Out"
	TxTransferIn     = "Transfer In"
	TxLoanDisbursed  = "Loan Disbursed"
	TxLoanPayment    = "Loan Payment"
)
