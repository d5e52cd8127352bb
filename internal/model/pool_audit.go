package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// 奖池管理审计动作
const (
	PoolAuditActionCreate = 1
	PoolAuditActionUpdate = 2
	PoolAuditActionDelete = 3
)

// PoolAudit 对应 pool_audit 表（奖池管理审计）
// action 采用数值枚举（1=create 2=update 3=delete）
// snapshot 为变更后条目的 JSON 快照，删除时为变更前快照
type PoolAudit struct {
	ID          int64  `db:"id"`
	PoolEntryID int64  `db:"pool_entry_id"`
	Action      int8   `db:"action"`
	Operator    string `db:"operator"`
	Snapshot    string `db:"snapshot"`
	TraceID     string `db:"trace_id"`
	CreatedAt   int64  `db:"created_at"`
}

// Insert
func (a *PoolAudit) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()

	sqlStr := "INSERT INTO pool_audit (pool_entry_id, action, operator, snapshot, trace_id, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	args := []interface{}{a.PoolEntryID, a.Action, a.Operator, a.Snapshot, a.TraceID, now}

	_, err := exec.ExecContext(ctx, sqlStr, args...)
	return err
}
