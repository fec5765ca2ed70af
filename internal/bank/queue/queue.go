// Package queue 客服等候队列，简单 FIFO。
package queue

import "bankcore/internal/bank/domain"

type Queue struct {
	waiting []int
}

func New() *Queue {
	return &Queue{}
}

// Enqueue 客户按账号排队
func (q *Queue) Enqueue(accNo int) {
	q.waiting = append(q.waiting, accNo)
}

// Serve 叫号：弹出队首账号；队列为空返回 ErrQueueEmpty
func (q *Queue) Serve() (int, error) {
	if len(q.waiting) == 0 {
		return 0, domain.ErrQueueEmpty
	}
	accNo := q.waiting[0]
	q.waiting = q.waiting[1:]
	return accNo, nil
}

func (q *Queue) Len() int {
	return len(q.waiting)
}
