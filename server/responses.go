package server

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/0xnicolas/safe-yield-bot/business/rebalance/domain"
)

type ratesResponse struct {
	Asset       string    `json:"asset"`
	AaveBps     int64     `json:"aave_bps"`
	CompoundBps int64     `json:"compound_bps"`
	AsOf        time.Time `json:"as_of"`
}

type decisionResponse struct {
	AaveBps      int64     `json:"aave_bps"`
	CompoundBps  int64     `json:"compound_bps"`
	DifferenceBp int64     `json:"difference_bp"`
	Better       string    `json:"better"`
	Current      string    `json:"current"`
	ShouldMove   bool      `json:"should_move"`
	Amount       string    `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
}

func newDecisionResponse(d domain.YieldDecision) decisionResponse {
	return decisionResponse{
		AaveBps:      d.AaveBps,
		CompoundBps:  d.CompoundBps,
		DifferenceBp: d.DifferenceBp,
		Better:       d.Better.String(),
		Current:      d.Current.String(),
		ShouldMove:   d.ShouldMove,
		Amount:       d.Amount.Raw().String(),
		Timestamp:    d.Timestamp,
	}
}

type callResponse struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

type planResponse struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Amount string         `json:"amount"`
	Calls  []callResponse `json:"calls"`
}

func newPlanResponse(p domain.RebalancePlan) planResponse {
	resp := planResponse{
		From:   p.From.String(),
		To:     p.To.String(),
		Amount: p.Amount.Raw().String(),
		Calls:  make([]callResponse, 0, len(p.Calls)),
	}
	for _, c := range p.Calls {
		resp.Calls = append(resp.Calls, callResponse{
			To:    c.Target.Hex(),
			Value: c.Value.String(),
			Data:  hexutil.Encode(c.Payload),
		})
	}
	return resp
}

type rebalanceResponse struct {
	Submitted bool             `json:"submitted"`
	Decision  decisionResponse `json:"decision"`
	Plan      planResponse     `json:"plan"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}
