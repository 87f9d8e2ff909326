package request

import (
	"bytes"
	"encoding/json"

	"eth-gateway/internal/service"
)

// NumberString 兼容 JSON 数字和字符串两种写法: 21000 或 "21000" 或 "0x5208"
type NumberString string

func (n *NumberString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberString(s)
		return nil
	}
	// 其他 JSON 值 (true / {} / []) 原样保留, 由业务层按数字校验并报错
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		*n = NumberString(data)
		return nil
	}
	*n = NumberString(num.String())
	return nil
}

// TransactionRequest 交易预览 / 发送请求体
// value 同样接受数字, 但建议用字符串避免浮点精度丢失
type TransactionRequest struct {
	From     string       `json:"from" binding:"required,eth_addr"`
	To       string       `json:"to" binding:"required,eth_addr"`
	Value    NumberString `json:"value" binding:"required"`
	Gas      NumberString `json:"gas"`
	GasPrice string       `json:"gasPrice"`
}

func (r TransactionRequest) Draft() service.TransactionDraft {
	return service.TransactionDraft{
		From:     r.From,
		To:       r.To,
		Value:    string(r.Value),
		Gas:      string(r.Gas),
		GasPrice: r.GasPrice,
	}
}

type CreateAccountRequest struct {
	Passphrase string `json:"passphrase"`
}

type GetBlockQuery struct {
	Full bool   `form:"full"`
	Tag  string `form:"tag"` // 大小写不敏感, 由 service 校验
}
