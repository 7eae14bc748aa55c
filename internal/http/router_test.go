package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlh01p/project-altar-server/internal/checkout"
	"github.com/mtlh01p/project-altar-server/internal/clients"
	"github.com/mtlh01p/project-altar-server/internal/config"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
)

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     string
}

type stubResponse struct {
	Status      int
	ContentType string
	Body        string
}

// stubBackend answers "METHOD /path" from routes and 200 {"ok":true} otherwise.
type stubBackend struct {
	*httptest.Server
	mu       sync.Mutex
	routes   map[string]stubResponse
	requests []recordedRequest
}

func newStubBackend(t *testing.T, routes map[string]stubResponse) *stubBackend {
	t.Helper()
	if routes == nil {
		routes = map[string]stubResponse{}
	}
	sb := &stubBackend{routes: routes}
	sb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sb.mu.Lock()
		sb.requests = append(sb.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     string(body),
		})
		resp, ok := sb.routes[r.Method+" "+r.URL.Path]
		sb.mu.Unlock()

		if !ok {
			resp = stubResponse{Status: http.StatusOK, ContentType: "application/json", Body: `{"ok":true}`}
		}
		if resp.ContentType != "" {
			w.Header().Set("Content-Type", resp.ContentType)
		}
		w.WriteHeader(resp.Status)
		_, _ = w.Write([]byte(resp.Body))
	}))
	t.Cleanup(sb.Close)
	return sb
}

func (sb *stubBackend) Requests() []recordedRequest {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return append([]recordedRequest(nil), sb.requests...)
}

func (sb *stubBackend) setRoute(key string, resp stubResponse) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.routes[key] = resp
}

func (sb *stubBackend) Calls() []string {
	var out []string
	for _, r := range sb.Requests() {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func jsonResp(status int, body string) stubResponse {
	return stubResponse{Status: status, ContentType: "application/json", Body: body}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newRouterWithBaseURL(baseURL string) http.Handler {
	return newRouterWithConfig(baseURL, config.Config{CORSAllowOrigins: []string{"*"}})
}

func newRouterWithConfig(baseURL string, cfg config.Config) http.Handler {
	logger := quietLogger()
	httpClient := &http.Client{Timeout: 5 * time.Second}
	base := clients.NewClient("backend", baseURL, httpClient)

	return NewRouter(Deps{
		Logger:       logger,
		Cfg:          cfg,
		Auth:         clients.NewAuthClient(base),
		Products:     clients.NewProductClient(base),
		Inventory:    clients.NewInventoryClient(base),
		Cart:         clients.NewCartClient(base),
		Transactions: clients.NewTransactionClient(base),
		Checkout:     checkout.NewService(clients.NewCheckoutBackend(base), logger),
		HealthProbes: []clients.HealthProbe{{Name: "backend", Client: base, Path: "/health"}},
	})
}

func serve(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

var session = &http.Cookie{Name: middleware.AccessTokenCookie, Value: "tok-abc"}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestHealthRoute(t *testing.T) {
	router := newRouterWithBaseURL("http://example.com")

	rr := serve(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "altar-gateway", body["service"])
}

func TestHealthUpstreams(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{"GET /health": jsonResp(http.StatusOK, `{"status":"ok"}`)})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodGet, "/health/upstreams", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"backend","ok":true`)
}

func TestCorrelationIDEchoAndForwarding(t *testing.T) {
	sb := newStubBackend(t, nil)
	router := newRouterWithBaseURL(sb.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("X-Correlation-Id", "cid-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "cid-123", rr.Header().Get("X-Correlation-Id"))
	reqs := sb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "cid-123", reqs[0].Header.Get("X-Correlation-Id"))

	rr = serve(router, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-Id"))
}

func TestCORSPreflight(t *testing.T) {
	router := newRouterWithConfig("http://example.com", config.Config{CORSAllowOrigins: []string{"http://pos.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://pos.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://pos.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSDefaultConfigRejectsForeignOrigins(t *testing.T) {
	router := newRouterWithConfig("http://example.com", config.Config{})

	req := httptest.NewRequest(http.MethodOptions, "/api/checkout", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestLoginSetsCookieAndReturnsUser(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /auth/login": jsonResp(http.StatusOK, `{"access_token":"jwt-1","user":"ann@example.com"}`),
	})
	router := newRouterWithConfig(sb.URL, config.Config{CORSAllowOrigins: []string{"*"}, Env: "production"})

	rr := serve(router, http.MethodPost, "/api/login", `{"email":"ann@example.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user":"ann@example.com"}`, rr.Body.String())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "access_token", c.Name)
	assert.Equal(t, "jwt-1", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	reqs := sb.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"email":"ann@example.com","password":"pw"}`, reqs[0].Body)
}

func TestLoginFailureIs401WithBackendBody(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /auth/login": jsonResp(http.StatusBadRequest, `{"error":"Missing credentials"}`),
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPost, "/api/login", `{}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Missing credentials"}`, rr.Body.String())
	assert.Empty(t, rr.Result().Cookies())
}

func TestRegister(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /auth/register": jsonResp(http.StatusCreated, `{"message":"User registered successfully"}`),
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPost, "/api/register", `{"email":"a@x","password":"pw"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Registration successful"}`, rr.Body.String())

	sb.setRoute("POST /auth/register", jsonResp(http.StatusBadRequest, `{"error":"userId already taken"}`))
	rr = serve(router, http.MethodPost, "/api/register", `{"email":"a@x","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"userId already taken"}`, rr.Body.String())
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newRouterWithBaseURL("http://example.com")

	rr := serve(router, http.MethodPost, "/api/logout", "", session)

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMeRequiresToken(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"GET /auth/me": jsonResp(http.StatusOK, `{"user":{"id":"u-1","name":"Ann"}}`),
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, rr)["error"])
	assert.Empty(t, sb.Requests())

	for _, path := range []string{"/api/me", "/api/auth/me"} {
		rr = serve(router, http.MethodGet, path, "", session)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"user":{"id":"u-1","name":"Ann"}}`, rr.Body.String())
	}
	for _, r := range sb.Requests() {
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
	}
}

func TestProxyWrapsHTMLErrors(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /products": {Status: http.StatusInternalServerError, ContentType: "text/html", Body: "<h1>boom</h1>"},
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPost, "/api/products", `{"name":"tea"}`, session)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Backend error", body["error"])
	assert.Equal(t, "<h1>boom</h1>", body["details"])
}

func TestProxyWrapsJSONErrors(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /inventory": jsonResp(http.StatusBadRequest, `{"error":"name required"}`),
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPost, "/api/inventory", `{}`, session)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Failed to create inventory item", body["error"])
	assert.Equal(t, map[string]any{"error": "name required"}, body["details"])
}

func TestInventoryListRequiresToken(t *testing.T) {
	sb := newStubBackend(t, nil)
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodGet, "/api/inventory", "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "No token found", decodeBody(t, rr)["error"])
	assert.Empty(t, sb.Requests())
}

func TestForwardingPathsAndMethods(t *testing.T) {
	cases := []struct {
		name      string
		method    string
		path      string
		body      string
		wantPath  string
		wantQuery string
	}{
		{name: "products", method: http.MethodGet, path: "/api/products?limit=10", wantPath: "/products", wantQuery: "limit=10"},
		{name: "product by id", method: http.MethodGet, path: "/api/products/42", wantPath: "/products/42"},
		{name: "update product", method: http.MethodPut, path: "/api/products/42", body: `{"stock":3}`, wantPath: "/products/42"},
		{name: "delete product", method: http.MethodDelete, path: "/api/products/42", wantPath: "/products/42"},
		{name: "products by inventory", method: http.MethodGet, path: "/api/products/inventory/7", wantPath: "/products/inventory/7"},
		{name: "inventory list", method: http.MethodGet, path: "/api/inventory", wantPath: "/inventory"},
		{name: "update inventory", method: http.MethodPut, path: "/api/inventory/7", body: `{"name":"Main"}`, wantPath: "/inventory/7"},
		{name: "delete inventory", method: http.MethodDelete, path: "/api/inventory/7", wantPath: "/inventory/7"},
		{name: "inventory logs", method: http.MethodGet, path: "/api/inventorylogs?inventoryId=7", wantPath: "/inventory-logs", wantQuery: "inventoryId=7"},
		{name: "create inventory log", method: http.MethodPost, path: "/api/inventorylogs", body: `{"inventoryId":7,"action":"restock"}`, wantPath: "/inventory-logs"},
		{name: "carts", method: http.MethodGet, path: "/api/cart", wantPath: "/cart"},
		{name: "create cart", method: http.MethodPost, path: "/api/cart", body: `{"cartName":"Till 1"}`, wantPath: "/cart"},
		{name: "cart by id", method: http.MethodGet, path: "/api/cart/c-1", wantPath: "/cart/c-1/items"},
		{name: "cart items", method: http.MethodGet, path: "/api/cart/c-1/items", wantPath: "/cart/c-1/items"},
		{name: "add cart item", method: http.MethodPost, path: "/api/cart/c-1/items", body: `{"productId":42,"quantity":1}`, wantPath: "/cart/c-1/items"},
		{name: "delete cart", method: http.MethodDelete, path: "/api/cart/c-1", wantPath: "/cart/c-1"},
		{name: "delete cart item", method: http.MethodDelete, path: "/api/cart/items/5", wantPath: "/cart/items/5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sb := newStubBackend(t, nil)
			router := newRouterWithBaseURL(sb.URL + "/api")

			rr := serve(router, tc.method, tc.path, tc.body, session)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

			reqs := sb.Requests()
			require.Len(t, reqs, 1)
			rec := reqs[0]
			assert.Equal(t, tc.method, rec.Method)
			assert.Equal(t, "/api"+tc.wantPath, rec.Path)
			assert.Equal(t, tc.wantQuery, rec.RawQuery)
			assert.Equal(t, "Bearer tok-abc", rec.Header.Get("Authorization"))
			assert.Empty(t, rec.Header.Get("Cookie"))
			assert.NotEmpty(t, rec.Header.Get("X-Correlation-Id"))
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rec.Body)
			}
		})
	}
}

func TestForwardingStripsHopByHopHeaders(t *testing.T) {
	sb := newStubBackend(t, nil)
	router := newRouterWithBaseURL(sb.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"item"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Proxy-Authorization", "Basic x")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	reqs := sb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Empty(t, reqs[0].Header.Get("Connection"))
	assert.Empty(t, reqs[0].Header.Get("Proxy-Authorization"))
}

func TestCartItemPatch(t *testing.T) {
	sb := newStubBackend(t, nil)
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPatch, "/api/cart/items/5", `{"quantity":3}`, session)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(router, http.MethodPatch, "/api/cart/items/5", `{"quantity":0}`, session)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(router, http.MethodPatch, "/api/cart/items/5", `{}`, session)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing quantity", decodeBody(t, rr)["error"])

	rr = serve(router, http.MethodPatch, "/api/cart/items/5", `{"quantity":-2}`, session)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, []string{"PATCH /cart/items/5", "DELETE /cart/items/5"}, sb.Calls())
	assert.JSONEq(t, `{"quantity":3}`, sb.Requests()[0].Body)
}

func TestTransactionsCreate(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /transactions/create": jsonResp(http.StatusCreated, `{"transactionId":1,"productIds":[4,4],"total":7}`),
	})
	router := newRouterWithBaseURL(sb.URL)

	for _, bad := range []string{`{"total":5}`, `{"productIds":"4","total":5}`, `{"productIds":[4],"total":0}`, `{"productIds":[4]}`} {
		rr := serve(router, http.MethodPost, "/api/transactions", bad, session)
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
		assert.Equal(t, "Missing required fields: productIds, total", decodeBody(t, rr)["error"])
	}
	assert.Empty(t, sb.Requests())

	rr := serve(router, http.MethodPost, "/api/transactions", `{"productIds":[4,4],"total":7}`, session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"transaction":{"transactionId":1,"productIds":[4,4],"total":7}}`, rr.Body.String())

	reqs := sb.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"productIds":[4,4],"total":7,"userId":null,"inventoryId":null}`, reqs[0].Body)
}

func TestTransactionsCreateRelaysBackendFailure(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /transactions/create": {Status: http.StatusInternalServerError, ContentType: "text/plain", Body: "db down"},
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPost, "/api/transactions", `{"productIds":[4],"total":2.5,"userId":"u-1"}`, session)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "db down", decodeBody(t, rr)["error"])
	assert.JSONEq(t, `{"productIds":[4],"total":2.5,"userId":"u-1","inventoryId":null}`, sb.Requests()[0].Body)
}

func TestTransactionsListNormalisesShapes(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"GET /transactions": jsonResp(http.StatusOK, `[{"transactionId":1}]`),
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodGet, "/api/transactions?userId=u-1&junk=1", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"transactions":[{"transactionId":1}]}`, rr.Body.String())
	assert.Equal(t, "userId=u-1", sb.Requests()[0].RawQuery)

	sb.setRoute("GET /transactions", jsonResp(http.StatusOK, `{"transactions":[{"transactionId":2}]}`))
	rr = serve(router, http.MethodGet, "/api/transactions", "", session)
	assert.JSONEq(t, `{"transactions":[{"transactionId":2}]}`, rr.Body.String())
	assert.Equal(t, "", sb.Requests()[1].RawQuery)

	sb.setRoute("GET /transactions", jsonResp(http.StatusOK, `{}`))
	rr = serve(router, http.MethodGet, "/api/transactions", "", session)
	assert.JSONEq(t, `{"transactions":[]}`, rr.Body.String())
}

func TestTransactionsListFailureIsEmpty200(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"GET /transactions": jsonResp(http.StatusInternalServerError, `{"error":"Failed to fetch transactions"}`),
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodGet, "/api/transactions", "", session)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, []any{}, body["transactions"])
	assert.Contains(t, body["error"], "500")
}

const checkoutBody = `{
	"cartId": "cart-1",
	"items": [
		{"id": 11, "productId": 4, "quantity": 2, "price": 3.50, "productStock": 5, "inventoryId": 9},
		{"id": 12, "productId": 6, "quantity": 1, "price": 2.75, "productStock": 0}
	]
}`

func TestCheckoutFlow(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"GET /auth/me":              jsonResp(http.StatusOK, `{"user":{"id":"u-1"}}`),
		"POST /transactions/create": jsonResp(http.StatusCreated, `{"transactionId":77,"total":9.75}`),
		"DELETE /cart/items/12":     {Status: http.StatusNotFound, ContentType: "application/json", Body: `{"error":"Item not found"}`},
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPost, "/api/checkout", checkoutBody, session)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	assert.Equal(t, map[string]any{"transactionId": float64(77), "total": 9.75}, body["transaction"])
	warnings, ok := body["warnings"].([]any)
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.Equal(t, "delete_cart_item", warnings[0].(map[string]any)["step"])

	assert.Equal(t, []string{
		"GET /auth/me",
		"POST /transactions/create",
		"PUT /products/4",
		"PUT /products/6",
		"DELETE /cart/items/11",
		"DELETE /cart/items/12",
		"DELETE /cart/cart-1",
	}, sb.Calls())

	reqs := sb.Requests()
	assert.JSONEq(t, `{"productIds":[4,4,6],"total":9.75,"userId":"u-1","inventoryId":9}`, reqs[1].Body)
	assert.JSONEq(t, `{"stock":3}`, reqs[2].Body)
	assert.JSONEq(t, `{"stock":0}`, reqs[3].Body)
	for _, r := range reqs {
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
	}
}

func TestCheckoutBadRequestMakesNoCalls(t *testing.T) {
	sb := newStubBackend(t, nil)
	router := newRouterWithBaseURL(sb.URL)

	for _, body := range []string{`{"items":[]}`, `{"cartId":"c","items":[]}`, `{"items":[{"id":1,"productId":1,"quantity":1,"price":1}]}`} {
		rr := serve(router, http.MethodPost, "/api/checkout", body, session)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No cart or items provided", decodeBody(t, rr)["error"])
	}

	rr := serve(router, http.MethodPost, "/api/checkout", `not json`, session)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Empty(t, sb.Requests())
}

type storedCheckouts map[string]checkout.Replay

func (s storedCheckouts) Completed(_ context.Context, key string) (checkout.Replay, bool, error) {
	r, ok := s[key]
	return r, ok, nil
}

func (s storedCheckouts) Record(context.Context, checkout.Record) error { return nil }

func TestCheckoutIdempotencyKeyForOtherCartIsConflict(t *testing.T) {
	sb := newStubBackend(t, nil)
	logger := quietLogger()
	base := clients.NewClient("backend", sb.URL, &http.Client{Timeout: 5 * time.Second})
	journal := storedCheckouts{"k": {CartID: "cart-A", Transaction: json.RawMessage(`{"transactionId":99}`)}}
	router := NewRouter(Deps{
		Logger:       logger,
		Auth:         clients.NewAuthClient(base),
		Products:     clients.NewProductClient(base),
		Inventory:    clients.NewInventoryClient(base),
		Cart:         clients.NewCartClient(base),
		Transactions: clients.NewTransactionClient(base),
		Checkout:     checkout.NewService(clients.NewCheckoutBackend(base), logger, checkout.WithJournal(journal)),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k")
	req.AddCookie(session)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	assert.Empty(t, rr.Header().Get("Idempotent-Replay"))
	assert.Empty(t, sb.Requests())
}

func TestCheckoutOversizedQuantityIsRejected(t *testing.T) {
	sb := newStubBackend(t, nil)
	router := newRouterWithBaseURL(sb.URL)

	body := `{"cartId":"c","items":[{"id":1,"productId":1,"quantity":2000000000,"price":1,"productStock":1}]}`
	rr := serve(router, http.MethodPost, "/api/checkout", body, session)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, sb.Requests())
}

func TestCheckoutTransactionFailureStops(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"GET /auth/me":              jsonResp(http.StatusUnauthorized, `{"error":"Unauthorized"}`),
		"POST /transactions/create": jsonResp(http.StatusBadRequest, `{"error":"Total must be greater than 0"}`),
	})
	router := newRouterWithBaseURL(sb.URL)

	rr := serve(router, http.MethodPost, "/api/checkout", checkoutBody)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Total must be greater than 0", decodeBody(t, rr)["error"])
	assert.Equal(t, []string{"GET /auth/me", "POST /transactions/create"}, sb.Calls())
	assert.Contains(t, sb.Requests()[1].Body, `"userId":null`)
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	router := newRouterWithBaseURL("http://example.com")

	rr := serve(router, http.MethodGet, "/pos", "")
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	rr = serve(router, http.MethodGet, "/pos", "", session)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(router, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPagesAreProxiedToFrontend(t *testing.T) {
	frontend := newStubBackend(t, map[string]stubResponse{
		"GET /dashboard": {Status: http.StatusOK, ContentType: "text/html", Body: "<html>dash</html>"},
	})
	router := newRouterWithConfig("http://example.com", config.Config{CORSAllowOrigins: []string{"*"}, FrontendURL: frontend.URL})

	rr := serve(router, http.MethodGet, "/dashboard", "", session)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<html>dash</html>", rr.Body.String())
}

func TestLoginRateLimit(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /auth/login": jsonResp(http.StatusUnauthorized, `{"error":"Invalid email or password"}`),
	})
	logger := quietLogger()
	base := clients.NewClient("backend", sb.URL, &http.Client{Timeout: 5 * time.Second})
	router := NewRouter(Deps{
		Logger:       logger,
		Cfg:          config.Config{CORSAllowOrigins: []string{"*"}},
		Auth:         clients.NewAuthClient(base),
		Products:     clients.NewProductClient(base),
		Inventory:    clients.NewInventoryClient(base),
		Cart:         clients.NewCartClient(base),
		Transactions: clients.NewTransactionClient(base),
		Checkout:     checkout.NewService(clients.NewCheckoutBackend(base), logger),
		LoginLimiter: middleware.NewRateLimiter(0.001, 1, logger),
	})

	rr := serve(router, http.MethodPost, "/api/login", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = serve(router, http.MethodPost, "/api/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = serve(router, http.MethodPost, "/api/register", `{}`)
	assert.NotEqual(t, http.StatusTooManyRequests, rr.Code)
}

func TestLoginRateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	sb := newStubBackend(t, map[string]stubResponse{
		"POST /auth/login": jsonResp(http.StatusUnauthorized, `{"error":"Invalid email or password"}`),
	})
	logger := quietLogger()
	base := clients.NewClient("backend", sb.URL, &http.Client{Timeout: 5 * time.Second})
	router := NewRouter(Deps{
		Logger:       logger,
		Auth:         clients.NewAuthClient(base),
		Products:     clients.NewProductClient(base),
		Inventory:    clients.NewInventoryClient(base),
		Cart:         clients.NewCartClient(base),
		Transactions: clients.NewTransactionClient(base),
		Checkout:     checkout.NewService(clients.NewCheckoutBackend(base), logger),
		LoginLimiter: middleware.NewRateLimiter(0.001, 1, logger),
	})

	throttled := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i+1))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			throttled++
		}
	}

	assert.Equal(t, 19, throttled)
	assert.Len(t, sb.Requests(), 1)
}

func TestRecoverMiddleware(t *testing.T) {
	handler := middleware.Recover(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decodeBody(t, rr)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouterWithBaseURL("http://example.com")
	serve(router, http.MethodGet, "/health", "")

	rr := serve(router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "altar_gateway_http_requests_total")
}
