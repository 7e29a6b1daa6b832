package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sangyanhq/sangyan-api/internal/auth"
	"github.com/sangyanhq/sangyan-api/internal/identity"
	"github.com/sangyanhq/sangyan-api/internal/metrics"
	"github.com/sangyanhq/sangyan-api/internal/model"
	"github.com/sangyanhq/sangyan-api/internal/notifier"
	"github.com/sangyanhq/sangyan-api/internal/ratelimit"
	"github.com/sangyanhq/sangyan-api/internal/repository"
	"github.com/sangyanhq/sangyan-api/internal/usecase"
)

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	m := metrics.New()
	profiles := repository.NewProfileMemoryRepository()
	creds := repository.NewCredentialMemoryRepository()
	hub := identity.NewHub()

	issuer := auth.NewIssuer(
		auth.NewJWTAuthenticator("test", "test"),
		"test",
		"access-secret", "refresh-secret",
		time.Hour, 24*time.Hour,
	)

	if limiter == nil {
		limiter = ratelimit.New(6000, 100)
	}

	h := New(Deps{
		Issuer:      issuer,
		Credentials: identity.NewCredentialsService(creds, hub),
		Hub:         hub,
		Profiles:    usecase.NewProfileUsecase(profiles, nil, notifier.NewLogNotifier(&logger), m, &logger),
		Ledger:      usecase.NewLedgerUsecase(profiles, m, &logger),
		Limiter:     limiter,
		Metrics:     m,
		Logger:      &logger,
	})

	server := httptest.NewServer(h.Router())
	t.Cleanup(server.Close)

	return server
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func register(t *testing.T, server *httptest.Server, email string) authResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/auth/register", "", registerRequest{
		Email:       email,
		Password:    "hunter2secret",
		DisplayName: "Test User",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}

	var out authResponse
	decode(t, resp, &out)
	return out
}

func TestRegisterLoginFlow(t *testing.T) {
	server := newTestServer(t, nil)

	registered := register(t, server, "user@example.com")
	if registered.AccessToken == "" || registered.UserID == "" {
		t.Fatalf("register response = %+v", registered)
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/auth/login", "", loginRequest{
		Email:    "user@example.com",
		Password: "hunter2secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	var loggedIn authResponse
	decode(t, resp, &loggedIn)
	if loggedIn.UserID != registered.UserID {
		t.Fatalf("login user id %q != registered %q", loggedIn.UserID, registered.UserID)
	}
}

func TestRegisterValidation(t *testing.T) {
	server := newTestServer(t, nil)

	tests := []struct {
		name string
		req  registerRequest
	}{
		{name: "bad email", req: registerRequest{Email: "nope", Password: "hunter2secret", DisplayName: "X"}},
		{name: "short password", req: registerRequest{Email: "a@b.com", Password: "short", DisplayName: "X"}},
		{name: "missing name", req: registerRequest{Email: "a@b.com", Password: "hunter2secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, server.URL+"/v1/auth/register", "", tt.req)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	server := newTestServer(t, nil)
	register(t, server, "user@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/auth/login", "", loginRequest{
		Email:    "user@example.com",
		Password: "wrongpassword",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestProfileRequiresToken(t *testing.T) {
	server := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/v1/profile", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGetProfileMaterializesWelcomeBonus(t *testing.T) {
	server := newTestServer(t, nil)
	tokens := register(t, server, "user@example.com")

	resp := doJSON(t, http.MethodGet, server.URL+"/v1/profile", tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var profile profileResponse
	decode(t, resp, &profile)
	if profile.Balance != model.WelcomeBonus {
		t.Fatalf("balance = %d, want %d", profile.Balance, model.WelcomeBonus)
	}
	if len(profile.History) != 1 || profile.History[0].Type != "earned" {
		t.Fatalf("history = %+v, want single earned entry", profile.History)
	}
	if profile.Role != "guest" || profile.MembershipStatus != "pending" {
		t.Fatalf("defaults = %s/%s, want guest/pending", profile.Role, profile.MembershipStatus)
	}
}

func TestUpdateProfile(t *testing.T) {
	server := newTestServer(t, nil)
	tokens := register(t, server, "user@example.com")

	// Materialize the record first.
	doJSON(t, http.MethodGet, server.URL+"/v1/profile", tokens.AccessToken, nil).Body.Close()

	bio := "community volunteer"
	city := "Jaipur"
	resp := doJSON(t, http.MethodPatch, server.URL+"/v1/profile", tokens.AccessToken, updateProfileRequest{
		Bio:  &bio,
		City: &city,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var profile profileResponse
	decode(t, resp, &profile)
	if profile.Bio != bio || profile.City != city {
		t.Fatalf("profile = %+v, updates missing", profile)
	}
	if profile.Balance != model.WelcomeBonus {
		t.Fatalf("balance = %d, ledger fields must be untouched", profile.Balance)
	}
}

func TestUpdateProfileRejectsEmptyBody(t *testing.T) {
	server := newTestServer(t, nil)
	tokens := register(t, server, "user@example.com")

	doJSON(t, http.MethodGet, server.URL+"/v1/profile", tokens.AccessToken, nil).Body.Close()

	resp := doJSON(t, http.MethodPatch, server.URL+"/v1/profile", tokens.AccessToken, updateProfileRequest{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEarnAndSpendFlow(t *testing.T) {
	server := newTestServer(t, nil)
	tokens := register(t, server, "user@example.com")

	doJSON(t, http.MethodGet, server.URL+"/v1/profile", tokens.AccessToken, nil).Body.Close()

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/stones/earn", tokens.AccessToken, earnRequest{
		Amount: 50,
		Reason: "event attendance",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("earn status = %d, want 200", resp.StatusCode)
	}

	var profile profileResponse
	decode(t, resp, &profile)
	if profile.Balance != model.WelcomeBonus+50 {
		t.Fatalf("balance after earn = %d, want %d", profile.Balance, model.WelcomeBonus+50)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/v1/stones/spend", tokens.AccessToken, spendRequest{
		Amount: 120,
		Reason: "redeem voucher",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("spend status = %d, want 200", resp.StatusCode)
	}

	var spend spendResponse
	decode(t, resp, &spend)
	if !spend.OK {
		t.Fatal("spend rejected despite sufficient balance")
	}

	// Balance is now 30; overspend is a normal negative result.
	resp = doJSON(t, http.MethodPost, server.URL+"/v1/stones/spend", tokens.AccessToken, spendRequest{
		Amount: 31,
		Reason: "too much",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("overspend status = %d, want 200", resp.StatusCode)
	}
	decode(t, resp, &spend)
	if spend.OK {
		t.Fatal("overspend accepted")
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/v1/stones/history", tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d, want 200", resp.StatusCode)
	}

	var history historyResponse
	decode(t, resp, &history)
	if len(history.Transactions) != 3 {
		t.Fatalf("history length = %d, want 3 (welcome, earn, spend)", len(history.Transactions))
	}
}

func TestEarnValidation(t *testing.T) {
	server := newTestServer(t, nil)
	tokens := register(t, server, "user@example.com")

	tests := []struct {
		name string
		req  earnRequest
	}{
		{name: "zero amount", req: earnRequest{Amount: 0, Reason: "x"}},
		{name: "negative amount", req: earnRequest{Amount: -5, Reason: "x"}},
		{name: "missing reason", req: earnRequest{Amount: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, server.URL+"/v1/stones/earn", tokens.AccessToken, tt.req)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestLedgerRateLimit(t *testing.T) {
	server := newTestServer(t, ratelimit.New(1, 1))
	tokens := register(t, server, "user@example.com")

	doJSON(t, http.MethodGet, server.URL+"/v1/profile", tokens.AccessToken, nil).Body.Close()

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/stones/earn", tokens.AccessToken, earnRequest{
		Amount: 1,
		Reason: "first",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first earn status = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/v1/stones/earn", tokens.AccessToken, earnRequest{
		Amount: 1,
		Reason: "second",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second earn status = %d, want 429", resp.StatusCode)
	}
}

func TestGoogleLoginDisabled(t *testing.T) {
	server := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/auth/google", "", googleLoginRequest{IDToken: "x"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
