package api

// CreateAccountReq 开户请求
type CreateAccountReq struct {
	AccNo int    `json:"acc_no" binding:"required,gt=0"`
	Name  string `json:"name" binding:"required"`
}

// UpdateAccountReq 修改户名
type UpdateAccountReq struct {
	Name string `json:"name" binding:"required"`
}

// AmountReq 存取款通用请求。金额用字符串传输防止精度丢失。
type AmountReq struct {
	Amount string `json:"amount" binding:"required"`
}

// TransferReq 转账请求
type TransferReq struct {
	FromAcc int    `json:"from_acc" binding:"required,gt=0"`
	ToAcc   int    `json:"to_acc" binding:"required,gt=0"`
	Amount  string `json:"amount" binding:"required"`
}

// ApplyLoanReq 放款请求
type ApplyLoanReq struct {
	LoanType     string  `json:"loan_type" binding:"required"`
	Principal    string  `json:"principal" binding:"required"`
	AnnualRate   float64 `json:"annual_rate" binding:"gte=0"`
	InterestKind string  `json:"interest_kind" binding:"required,oneof=simple compound"` // 单利或等额本息
	TermMonths   int     `json:"term_months" binding:"required,gt=0"`
}

// EnqueueReq 客服排队请求
type EnqueueReq struct {
	AccNo int `json:"acc_no" binding:"required,gt=0"`
}
