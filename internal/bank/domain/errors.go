package domain

import "errors"

// 领域错误集中定义。全部为可恢复错误：操作被拒绝时账本状态不变，
// 上层 API handler 依据错误值映射 HTTP 状态码。
var (
	// ErrAccountNotFound 账户不存在 (404)
	ErrAccountNotFound = errors.New("account not found")

	// ErrLoanNotFound 贷款不存在 (404)
	ErrLoanNotFound = errors.New("loan not found")

	// ErrDuplicateAccount 开户账号冲突 (409)
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidAmount 金额非法：<= 0 (400)
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientBalance 余额不足 (409)
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrMinWithdraw 低于最小取款额 (409)
	ErrMinWithdraw = errors.New("amount below minimum withdrawal")

	// ErrMinBalance 取款后余额低于保底线 (409)
	ErrMinBalance = errors.New("balance would fall below required minimum")

	// ErrSameAccount 转账收付方相同 (400)
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrNothingToUndo / ErrNothingToRedo 命令日志为空 (422)
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrLoanClosed 贷款已结清，不可再还款 (409)
	ErrLoanClosed = errors.New("loan already closed")

	// ErrQueueEmpty 客服队列为空 (404)
	ErrQueueEmpty = errors.New("no customers waiting")
)
