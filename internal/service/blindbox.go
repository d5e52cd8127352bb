package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lottery-server/common/constant"
	infmysql "lottery-server/internal/infra/mysql"
	infrds "lottery-server/internal/infra/redis"
	"lottery-server/internal/metrics"
	"lottery-server/internal/model"
)

// 盲盒：抽取时只返回不透明句柄，内容通过揭晓接口获取

// BlindBoxDrawOutput 盲盒抽取结果：只暴露奖品编号，不暴露内容
type BlindBoxDrawOutput struct {
	DrawNo    string   `json:"drawNo"`
	Requested int      `json:"requested"`
	Allocated int      `json:"allocated"`
	Partial   bool     `json:"partial"`
	PrizeNos  []string `json:"prizeNos"`
}

// BlindBoxContent 揭晓后的盲盒内容（中奖时刻快照，重复揭晓结果不变）
type BlindBoxContent struct {
	PrizeNo   string `json:"prizeNo"`
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	PrizeType string `json:"prizeType"`
	Image     string `json:"image"`
	DrawnAt   int64  `json:"drawnAt"`
}

type BlindBoxService interface {
	DrawBlindBox(ctx context.Context, in DrawInput) (*BlindBoxDrawOutput, error)
	GetContent(ctx context.Context, accountID, prizeNo string) (*BlindBoxContent, error)
}

type blindBoxService struct {
	draw DrawService
}

func NewBlindBoxService(draw DrawService) BlindBoxService {
	return &blindBoxService{draw: draw}
}

var ErrNotBlindBox = errors.New("prize is not a blind box")

// 盲盒内容缓存 TTL
const blindBoxContentTTL = 1 * time.Hour

// DrawBlindBox 盲盒抽取：限定 BLIND_BOX 类型走通用抽奖流程，结果脱去内容信息
func (s *blindBoxService) DrawBlindBox(ctx context.Context, in DrawInput) (*BlindBoxDrawOutput, error) {
	start := time.Now()
	result := "fail"
	defer func() { metrics.RecordBlindBox(result, start) }()

	in.PrizeType = constant.PrizeTypeBlindBoxStr
	out, err := s.draw.Draw(ctx, in)
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			result = "exhausted"
		}
		return nil, err
	}

	prizeNos := make([]string, 0, len(out.Prizes))
	for _, p := range out.Prizes {
		prizeNos = append(prizeNos, p.PrizeNo)
	}

	result = "success"
	return &BlindBoxDrawOutput{
		DrawNo:    out.DrawNo,
		Requested: out.Requested,
		Allocated: out.Allocated,
		Partial:   out.Partial,
		PrizeNos:  prizeNos,
	}, nil
}

// GetContent 揭晓盲盒内容
// 内容为中奖时刻的快照，多次揭晓返回一致；已揭晓内容走 Redis 缓存
func (s *blindBoxService) GetContent(ctx context.Context, accountID, prizeNo string) (*BlindBoxContent, error) {

	// Redis 快路径
	if r := infrds.Client(); r != nil {
		if bs, _ := r.Get(ctx, infrds.BlindBoxContentKey(prizeNo)).Bytes(); len(bs) > 0 {
			var cached struct {
				AccountID string          `json:"accountId"`
				Content   BlindBoxContent `json:"content"`
			}
			if json.Unmarshal(bs, &cached) == nil {
				// 缓存命中仍需校验归属
				if cached.AccountID != accountID {
					return nil, ErrNotOwned
				}
				return &cached.Content, nil
			}
		}
	}

	award, err := model.GetAwardByPrizeNo(ctx, infmysql.SQLX(), prizeNo)
	if err != nil {
		fmt.Printf("[BlindBox]  查询盲盒失败: prize_no=%s, error=%v\n", prizeNo, err)
		return nil, err
	}
	if award == nil {
		return nil, ErrPrizeNotFound
	}
	if award.AccountID != accountID {
		fmt.Printf("[BlindBox]  盲盒归属校验失败: prize_no=%s, owner=%s, account_id=%s\n",
			prizeNo, award.AccountID, accountID)
		return nil, ErrNotOwned
	}
	if award.PrizeType != constant.PrizeTypeBlindBoxStr {
		return nil, ErrNotBlindBox
	}

	content := &BlindBoxContent{
		PrizeNo:   award.PrizeNo,
		ItemID:    award.ItemID,
		Name:      award.PrizeName,
		PrizeType: award.PrizeType,
		Image:     award.Image,
		DrawnAt:   award.CreatedAt,
	}

	// 写入缓存（降级容错）
	if r := infrds.Client(); r != nil {
		payload := struct {
			AccountID string          `json:"accountId"`
			Content   BlindBoxContent `json:"content"`
		}{AccountID: accountID, Content: *content}
		if b, e := json.Marshal(payload); e == nil {
			_ = r.Set(ctx, infrds.BlindBoxContentKey(prizeNo), b, blindBoxContentTTL).Err()
		}
	}

	return content, nil
}
