package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nulln0ne/dex-amm/internal/ledger"
	"github.com/nulln0ne/dex-amm/internal/pool"
	"github.com/nulln0ne/dex-amm/internal/service"
)

var (
	tokenA   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	poolAddr = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokA := ledger.NewToken("Token A", "TKA", tokenA)
	tokB := ledger.NewToken("Token B", "TKB", tokenB)
	for _, tok := range []*ledger.Token{tokA, tokB} {
		if err := tok.Mint(alice, uint256.NewInt(1_000_000)); err != nil {
			t.Fatalf("mint: %v", err)
		}
	}
	reg := prometheus.NewRegistry()
	engine := pool.New(logger, poolAddr,
		ledger.NewVault(tokA, poolAddr), ledger.NewVault(tokB, poolAddr),
		pool.WithMetrics(pool.NewMetrics(reg)))
	svc := service.NewPoolService(logger, engine, tokA, tokB)

	app := fiber.New()
	Register(app, logger, svc, reg)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, string) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func approveAll(t *testing.T, app *fiber.App, owner common.Address) {
	t.Helper()
	for _, asset := range []string{"A", "B"} {
		status, body := do(t, app, http.MethodPost, "/tokens/"+asset+"/approve",
			`{"owner":"`+owner.Hex()+`","spender":"`+poolAddr.Hex()+`","amount":"1000000"}`)
		if status != http.StatusNoContent {
			t.Fatalf("approve %s: status %d: %s", asset, status, body)
		}
	}
}

func TestPoolHandler_Flow(t *testing.T) {
	app := newTestApp(t)
	approveAll(t, app, alice)

	status, body := do(t, app, http.MethodPost, "/liquidity/add",
		`{"account":"`+alice.Hex()+`","amount_a":"100","amount_b":"200"}`)
	if status != http.StatusOK {
		t.Fatalf("add liquidity: status %d: %s", status, body)
	}
	var added AddLiquidityResponse
	if err := json.Unmarshal([]byte(body), &added); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if added.SharesMinted != "100" {
		t.Fatalf("shares minted = %s, want 100", added.SharesMinted)
	}

	status, body = do(t, app, http.MethodGet, "/quote?src="+tokenA.Hex()+"&dst="+tokenB.Hex()+"&src_amount=10", "")
	if status != http.StatusOK || body != "18" {
		t.Fatalf("quote: status %d body %q, want 200 \"18\"", status, body)
	}

	status, body = do(t, app, http.MethodPost, "/swap",
		`{"account":"`+alice.Hex()+`","asset_in":"TKA","amount_in":"10"}`)
	if status != http.StatusOK {
		t.Fatalf("swap: status %d: %s", status, body)
	}
	var swapped SwapResponse
	if err := json.Unmarshal([]byte(body), &swapped); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if swapped.AmountOut != "18" || swapped.AssetIn != tokenA.Hex() {
		t.Fatalf("unexpected swap response: %+v", swapped)
	}

	status, body = do(t, app, http.MethodGet, "/pool", "")
	if status != http.StatusOK {
		t.Fatalf("pool: status %d", status)
	}
	var info PoolResponse
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.ReserveA != "110" || info.ReserveB != "182" || info.TotalShares != "100" || info.Providers != 1 {
		t.Fatalf("unexpected pool state: %+v", info)
	}
	if info.TokenA.Symbol != "TKA" || info.Address != poolAddr.Hex() {
		t.Fatalf("unexpected pool identity: %+v", info)
	}

	status, body = do(t, app, http.MethodGet, "/price", "")
	if status != http.StatusOK {
		t.Fatalf("price: status %d", status)
	}
	var price PriceResponse
	if err := json.Unmarshal([]byte(body), &price); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if price.Ratio != "91/55" {
		t.Fatalf("price ratio = %s, want 91/55", price.Ratio)
	}

	status, body = do(t, app, http.MethodGet, "/shares/"+alice.Hex(), "")
	if status != http.StatusOK || !strings.Contains(body, `"shares":"100"`) {
		t.Fatalf("shares: status %d body %s", status, body)
	}

	status, body = do(t, app, http.MethodPost, "/liquidity/remove",
		`{"account":"`+alice.Hex()+`","shares":"100"}`)
	if status != http.StatusOK {
		t.Fatalf("remove liquidity: status %d: %s", status, body)
	}
	var removed RemoveLiquidityResponse
	if err := json.Unmarshal([]byte(body), &removed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if removed.AmountA != "110" || removed.AmountB != "182" {
		t.Fatalf("unexpected withdrawal: %+v", removed)
	}

	status, body = do(t, app, http.MethodGet, "/metrics", "")
	if status != http.StatusOK || !strings.Contains(body, "amm_swaps_total") {
		t.Fatalf("metrics: status %d, missing amm_swaps_total", status)
	}
}

func TestPoolHandler_Validation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"quote missing params", http.MethodGet, "/quote", "", http.StatusBadRequest},
		{"quote same token", http.MethodGet, "/quote?src=" + tokenA.Hex() + "&dst=" + tokenA.Hex() + "&src_amount=1", "", http.StatusBadRequest},
		{"quote bad amount", http.MethodGet, "/quote?src=" + tokenA.Hex() + "&dst=" + tokenB.Hex() + "&src_amount=1.5", "", http.StatusBadRequest},
		{"quote zero amount", http.MethodGet, "/quote?src=" + tokenA.Hex() + "&dst=" + tokenB.Hex() + "&src_amount=0", "", http.StatusBadRequest},
		{"quote empty pool", http.MethodGet, "/quote?src=" + tokenA.Hex() + "&dst=" + tokenB.Hex() + "&src_amount=10", "", http.StatusBadRequest},
		{"price empty pool", http.MethodGet, "/price", "", http.StatusBadRequest},
		{"shares bad account", http.MethodGet, "/shares/0x123", "", http.StatusBadRequest},
		{"add without approval", http.MethodPost, "/liquidity/add", `{"account":"` + bob.Hex() + `","amount_a":"1","amount_b":"1"}`, http.StatusBadRequest},
		{"add zero", http.MethodPost, "/liquidity/add", `{"account":"` + alice.Hex() + `","amount_a":"0","amount_b":"1"}`, http.StatusBadRequest},
		{"remove without shares", http.MethodPost, "/liquidity/remove", `{"account":"` + alice.Hex() + `","shares":"1"}`, http.StatusBadRequest},
		{"swap empty pool", http.MethodPost, "/swap", `{"account":"` + alice.Hex() + `","asset_in":"A","amount_in":"1"}`, http.StatusBadRequest},
		{"swap as pool", http.MethodPost, "/swap", `{"account":"` + poolAddr.Hex() + `","asset_in":"A","amount_in":"1"}`, http.StatusBadRequest},
		{"swap unknown token", http.MethodPost, "/swap", `{"account":"` + alice.Hex() + `","asset_in":"DAI","amount_in":"1"}`, http.StatusNotFound},
		{"balance unknown token", http.MethodGet, "/tokens/DAI/balance/" + alice.Hex(), "", http.StatusNotFound},
		{"transfer overdraft", http.MethodPost, "/tokens/B/transfer", `{"from":"` + bob.Hex() + `","to":"` + alice.Hex() + `","amount":"1"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, tt.method, tt.target, tt.body)
			if status != tt.want {
				t.Fatalf("status = %d, want %d (body %q)", status, tt.want, body)
			}
		})
	}
}

func TestTokenHandler_TransferAndBalance(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/tokens/"+tokenB.Hex()+"/transfer",
		`{"from":"`+alice.Hex()+`","to":"`+bob.Hex()+`","amount":"250"}`)
	if status != http.StatusNoContent {
		t.Fatalf("transfer: status %d: %s", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/tokens/b/balance/"+bob.Hex(), "")
	if status != http.StatusOK {
		t.Fatalf("balance: status %d", status)
	}
	var bal BalanceResponse
	if err := json.Unmarshal([]byte(body), &bal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bal.Balance != "250" || bal.Token != tokenB.Hex() {
		t.Fatalf("unexpected balance: %+v", bal)
	}
}
