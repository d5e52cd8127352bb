package service

import (
	"context"
	"errors"
	"fmt"

	"lottery-server/common/constant"
	infmysql "lottery-server/internal/infra/mysql"
	"lottery-server/internal/model"

	"github.com/jmoiron/sqlx"
)

// 中奖台账：查询与批量消费

var (
	ErrPrizeNotFound    = errors.New("prize not found")
	ErrNotOwned         = errors.New("prize not owned by account")
	ErrAlreadyGenerated = errors.New("prize already generated")
)

// PrizeView 对外的中奖记录视图
type PrizeView struct {
	PrizeNo   string `json:"prizeNo"`
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	PrizeType string `json:"prizeType"`
	Image     string `json:"image"`
	Status    string `json:"status"`
	OrderNo   string `json:"orderNo,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

type LedgerService interface {
	ListMyPrizes(ctx context.Context, accountID string) ([]PrizeView, error)
}

type ledgerService struct{}

func NewLedgerService() LedgerService { return &ledgerService{} }

// ListMyPrizes 查询账户的全部中奖记录
func (s *ledgerService) ListMyPrizes(ctx context.Context, accountID string) ([]PrizeView, error) {
	awards, err := model.ListAwardsByAccount(ctx, infmysql.SQLX(), accountID)
	if err != nil {
		fmt.Printf("[Ledger]  查询中奖记录失败: account_id=%s, error=%v\n", accountID, err)
		return nil, err
	}
	out := make([]PrizeView, 0, len(awards))
	for _, a := range awards {
		out = append(out, PrizeView{
			PrizeNo:   a.PrizeNo,
			ItemID:    a.ItemID,
			Name:      a.PrizeName,
			PrizeType: a.PrizeType,
			Image:     a.Image,
			Status:    constant.FromPrizeStatusCode(a.Status),
			OrderNo:   a.OrderNo,
			CreatedAt: a.CreatedAt,
		})
	}
	return out, nil
}

// validateConsumable 批量消费前置校验：每个编号都存在、归属一致且仍为 AVAILABLE
// 任一奖品不满足即整批拒绝，返回的 map 供调用方按请求顺序回填结果
func validateConsumable(awards []model.PrizeAward, accountID string, prizeNos []string) (map[string]model.PrizeAward, error) {
	byNo := make(map[string]model.PrizeAward, len(awards))
	for _, a := range awards {
		byNo[a.PrizeNo] = a
	}

	for _, no := range prizeNos {
		a, ok := byNo[no]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPrizeNotFound, no)
		}
		if a.AccountID != accountID {
			return nil, fmt.Errorf("%w: %s", ErrNotOwned, no)
		}
		if a.Status != constant.PrizeStatusAvailable {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyGenerated, no)
		}
	}
	return byNo, nil
}

// markGeneratedInTx 在事务中批量消费奖品（全部成功或全部失败）
// 流程：FOR UPDATE 锁定全部奖品 -> 校验存在性/归属/状态 -> 批量置 GENERATED
// 任一奖品校验失败即返回错误，由调用方回滚事务。
func markGeneratedInTx(ctx context.Context, tx *sqlx.Tx, accountID string, prizeNos []string, orderNo string) ([]model.PrizeAward, error) {
	awards, err := model.ListAwardsForUpdate(ctx, tx, prizeNos)
	if err != nil {
		return nil, err
	}

	byNo, err := validateConsumable(awards, accountID, prizeNos)
	if err != nil {
		fmt.Printf("[Ledger]  批量消费校验失败: error=%v, account_id=%s\n", err, accountID)
		return nil, err
	}

	n, err := model.MarkGeneratedBatch(ctx, tx, prizeNos, orderNo)
	if err != nil {
		return nil, err
	}
	// 行锁下状态已校验，更新行数必须与请求数一致
	if n != int64(len(prizeNos)) {
		fmt.Printf("[Ledger]  批量消费行数不一致: expected=%d, actual=%d, order_no=%s\n",
			len(prizeNos), n, orderNo)
		return nil, ErrAlreadyGenerated
	}

	out := make([]model.PrizeAward, 0, len(prizeNos))
	for _, no := range prizeNos {
		a := byNo[no]
		a.Status = constant.PrizeStatusGenerated
		a.OrderNo = orderNo
		out = append(out, a)
	}
	return out, nil
}
