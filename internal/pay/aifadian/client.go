package aifadian

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	BaseURL    string
	AppID      string
	Token      string
	EncryptKey string
}

// Client talks to the Aifadian open API. Order creation is redirect-only:
// CreateOrderURL builds a signed URL the browser is sent to, and the webhook
// later carries the encrypted remark back.
type Client struct {
	cfg   Config
	httpc *http.Client
	now   func() time.Time
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 15 * time.Second},
		now:   time.Now,
	}
}

type BaseResponse struct {
	EC int    `json:"ec"`
	EM string `json:"em"`
}

type OrderRecord struct {
	OutTradeNo    string `json:"out_trade_no"`
	CustomOrderID string `json:"custom_order_id"`
	UserID        string `json:"user_id"`
	PlanID        string `json:"plan_id"`
	Month         int    `json:"month"`
	TotalAmount   string `json:"total_amount"`
	ShowAmount    string `json:"show_amount"`
	Status        int    `json:"status"`
	Remark        string `json:"remark"`
	ProductType   int    `json:"product_type"`
	Discount      string `json:"discount"`
}

type OrdersResponse struct {
	BaseResponse
	Data struct {
		List       []OrderRecord `json:"list"`
		TotalCount int           `json:"total_count"`
		TotalPage  int           `json:"total_page"`
	} `json:"data"`
}

// CreateOrderURL builds the order-creation redirect URL with the encrypted
// correlation tuple in the remark field.
func (c *Client) CreateOrderURL(planID, customOrderID string, payload RemarkPayload) (string, error) {
	remark, err := EncryptRemark(c.cfg.EncryptKey, payload)
	if err != nil {
		return "", err
	}

	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	target := base.JoinPath("/order/create")
	q := target.Query()
	q.Set("plan_id", planID)
	q.Set("product_type", "0")
	q.Set("custom_order_id", customOrderID)
	q.Set("remark", remark)
	target.RawQuery = q.Encode()
	return target.String(), nil
}

type signedRequest struct {
	UserID string `json:"user_id"`
	TS     int64  `json:"ts"`
	Params string `json:"params"`
	Sign   string `json:"sign"`
}

// sign computes the md5 request signature over
// {token}params{params}ts{ts}user_id{appId}.
func (c *Client) sign(params string) signedRequest {
	ts := c.now().Unix()
	toSign := fmt.Sprintf("%sparams%sts%duser_id%s", c.cfg.Token, params, ts, c.cfg.AppID)
	sum := md5.Sum([]byte(toSign))
	return signedRequest{
		UserID: c.cfg.AppID,
		TS:     ts,
		Params: params,
		Sign:   hex.EncodeToString(sum[:]),
	}
}

func (c *Client) post(ctx context.Context, path string, params interface{}, out interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	body, err := json.Marshal(c.sign(string(raw)))
	if err != nil {
		return err
	}

	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return err
	}
	target := base.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Ping(ctx context.Context) (*BaseResponse, error) {
	var out BaseResponse
	if err := c.post(ctx, "/api/open/ping", map[string]interface{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryOrders pages through the provider-side order history. Used by the
// admin billing sync to backfill webhooks that never arrived.
func (c *Client) QueryOrders(ctx context.Context, page int, outTradeNos []string, perPage int) (*OrdersResponse, error) {
	params := map[string]interface{}{
		"page":     page,
		"per_page": perPage,
	}
	if len(outTradeNos) > 0 {
		params["out_trade_no"] = strings.Join(outTradeNos, ",")
	}
	var out OrdersResponse
	if err := c.post(ctx, "/api/open/query-order", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecryptRemark exposes the remark codec with the client's configured key.
func (c *Client) DecryptRemark(data string) RemarkPayload {
	return DecryptRemark(c.cfg.EncryptKey, data)
}
