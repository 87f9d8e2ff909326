package gasoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"eth-gateway/pkg/errno"
	"eth-gateway/pkg/logger"
	"eth-gateway/pkg/monitor"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultURL     = "https://ethgasstation.info/json/ethgasAPI.json"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var tenth = decimal.New(1, -1)

// response 预言机返回体，数值单位为 0.1 gwei
// decimal.Decimal 同时接受 JSON 数字和数字字符串
type response struct {
	SafeLow *decimal.Decimal `json:"safeLow"`
	Average *decimal.Decimal `json:"average"`
	Fast    *decimal.Decimal `json:"fast"`
}

// HTTPOracle 通过一次 HTTP GET 获取 gas 价格
type HTTPOracle struct {
	url    string
	client *http.Client
}

func NewHTTPOracle(url string, timeout time.Duration) *HTTPOracle {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPOracle{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Quote 不做重试，任何失败都以 errno.ErrGasOracle 返回
func (o *HTTPOracle) Quote(ctx context.Context) (*Quote, error) {
	start := time.Now()
	q, err := o.fetch(ctx)
	monitor.Business.ObserveUpstream(monitor.SourceGasOracle, "quote", start, err)
	if err != nil {
		logger.Ctx(ctx).Error("gas oracle request failed", zap.String("url", o.url), zap.Error(err))
		return nil, errno.ErrGasOracle.Wrap(err)
	}

	monitor.Business.GasPriceGwei.WithLabelValues(TierLow).Set(q.Low.InexactFloat64())
	monitor.Business.GasPriceGwei.WithLabelValues(TierMedium).Set(q.Medium.InexactFloat64())
	monitor.Business.GasPriceGwei.WithLabelValues(TierHigh).Set(q.High.InexactFloat64())
	return q, nil
}

func (o *HTTPOracle) fetch(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return r.quote()
}

func (r response) quote() (*Quote, error) {
	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"safeLow", r.SafeLow},
		{"average", r.Average},
		{"fast", r.Fast},
	}
	for _, f := range fields {
		if f.value == nil {
			return nil, fmt.Errorf("malformed response: missing %s", f.name)
		}
		if f.value.IsNegative() {
			return nil, fmt.Errorf("malformed response: negative %s", f.name)
		}
	}

	return &Quote{
		Low:    r.SafeLow.Mul(tenth),
		Medium: r.Average.Mul(tenth),
		High:   r.Fast.Mul(tenth),
	}, nil
}
