package aifadian

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestCreateOrderURL(t *testing.T) {
	client := NewClient(Config{
		BaseURL:    "https://afdian.example",
		AppID:      "user-1",
		Token:      "token-1",
		EncryptKey: "remark-key",
	})

	raw, err := client.CreateOrderURL("plan-9", "custom-42", RemarkPayload{
		Email:       "buyer@example.com",
		ProductID:   "prod-9",
		IncreaseDay: 7,
		OrderID:     "custom-42",
	})
	if err != nil {
		t.Fatalf("CreateOrderURL: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	if parsed.Path != "/order/create" {
		t.Errorf("path = %q, want /order/create", parsed.Path)
	}
	q := parsed.Query()
	if q.Get("plan_id") != "plan-9" {
		t.Errorf("plan_id = %q", q.Get("plan_id"))
	}
	if q.Get("product_type") != "0" {
		t.Errorf("product_type = %q", q.Get("product_type"))
	}
	if q.Get("custom_order_id") != "custom-42" {
		t.Errorf("custom_order_id = %q", q.Get("custom_order_id"))
	}

	remark := DecryptRemark("remark-key", q.Get("remark"))
	if remark.Email != "buyer@example.com" || remark.OrderID != "custom-42" {
		t.Errorf("remark did not round trip: %+v", remark)
	}
}

func TestSign(t *testing.T) {
	client := NewClient(Config{AppID: "user-1", Token: "token-1"})
	fixed := time.Unix(1700000000, 0)
	client.now = func() time.Time { return fixed }

	req := client.sign(`{"page":1}`)

	if req.UserID != "user-1" {
		t.Errorf("UserID = %q", req.UserID)
	}
	if req.TS != fixed.Unix() {
		t.Errorf("TS = %d, want %d", req.TS, fixed.Unix())
	}
	sum := md5.Sum([]byte(fmt.Sprintf("token-1params%sts%duser_iduser-1", `{"page":1}`, fixed.Unix())))
	if want := hex.EncodeToString(sum[:]); req.Sign != want {
		t.Errorf("Sign = %q, want %q", req.Sign, want)
	}
}

func TestQueryOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/open/query-order" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req signedRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("request body not a signed request: %v", err)
		}
		if req.Sign == "" || req.Params == "" {
			t.Errorf("unsigned request: %+v", req)
		}
		fmt.Fprint(w, `{"ec":200,"em":"","data":{"list":[{"out_trade_no":"trade-1","custom_order_id":"custom-1","total_amount":"5.00","remark":"deadbeef"}],"total_count":1,"total_page":1}}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, AppID: "u", Token: "t"})
	resp, err := client.QueryOrders(context.Background(), 1, []string{"trade-1"}, 50)
	if err != nil {
		t.Fatalf("QueryOrders: %v", err)
	}
	if resp.EC != 200 {
		t.Fatalf("ec = %d", resp.EC)
	}
	if len(resp.Data.List) != 1 || resp.Data.List[0].OutTradeNo != "trade-1" {
		t.Errorf("unexpected order list: %+v", resp.Data.List)
	}
}
