package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pratik-mahalle/mealplanner/internal/auth"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/migrations"
)

// setupDB creates a migrated sqlite file and points the CLI at it
func setupDB(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "admin.db")
	db, err := postgres.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	fsys, err := migrations.GetFS("sqlite")
	if err != nil {
		t.Fatalf("GetFS() error = %v", err)
	}
	if _, err := postgres.RunMigrations(context.Background(), db, fsys); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	db.Close()

	t.Setenv("MEALPLANNER_DB_DRIVER", "sqlite")
	t.Setenv("MEALPLANNER_DB_PATH", path)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRetentionClassify(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantExpired bool
		wantSoon    bool
	}{
		{
			name:     "free expiring soon",
			args:     []string{"--created-at", "2026-03-01T00:00:00Z", "--tier", "free", "--at", "2026-03-01T11:00:00Z"},
			wantSoon: true,
		},
		{
			name:        "free expired",
			args:        []string{"--created-at", "2026-03-01T00:00:00Z", "--at", "2026-03-01T12:00:00Z"},
			wantExpired: true,
		},
		{
			name: "paid never expires",
			args: []string{"--created-at", "2020-01-01T00:00:00Z", "--tier", "paid", "--at", "2026-03-01T12:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"retention", "classify", "-o", "json"}, tt.args...)...)
			if err != nil {
				t.Fatalf("classify error = %v", err)
			}
			var got classifyOutput
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode %q: %v", out, err)
			}
			if got.Status.IsExpired != tt.wantExpired || got.Status.IsExpiringSoon != tt.wantSoon {
				t.Errorf("classify = %+v, want expired=%v soon=%v", got.Status, tt.wantExpired, tt.wantSoon)
			}
		})
	}

	if _, err := run(t, "retention", "classify", "--created-at", "yesterday"); err == nil {
		t.Error("classify with a bad timestamp should fail")
	}
	if _, err := run(t, "retention", "classify", "--created-at", "2026-03-01T00:00:00Z", "--tier", "gold"); err == nil {
		t.Error("classify with an unknown tier should fail")
	}
}

func TestPlansList(t *testing.T) {
	setupDB(t)

	out, err := run(t, "plans", "list", "-o", "json")
	if err != nil {
		t.Fatalf("plans list error = %v", err)
	}
	var plans []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plans) != 3 {
		t.Errorf("plans list returned %d plans, want 3", len(plans))
	}

	table, err := run(t, "plans", "list")
	if err != nil {
		t.Fatalf("plans list table error = %v", err)
	}
	if !strings.Contains(table, "299.00 INR") {
		t.Errorf("table output missing individual price:\n%s", table)
	}

	yml, err := run(t, "plans", "list", "-o", "yaml")
	if err != nil {
		t.Fatalf("plans list yaml error = %v", err)
	}
	if !strings.Contains(yml, "credits_per_period: 42") {
		t.Errorf("yaml output missing limits:\n%s", yml)
	}
}

func TestQuotaReserveAndInfo(t *testing.T) {
	setupDB(t)
	at := "2026-04-10T08:00:00Z"

	if _, err := run(t, "quota", "reserve", "--user", "cli-user", "--action", "weekly", "--at", at); err != nil {
		t.Fatalf("quota reserve error = %v", err)
	}

	out, err := run(t, "quota", "info", "--user", "cli-user", "--at", at, "-o", "json")
	if err != nil {
		t.Fatalf("quota info error = %v", err)
	}
	var info struct {
		PlanID  string `json:"plan_id"`
		Credits struct {
			Used  int64 `json:"used"`
			Limit int64 `json:"limit"`
		} `json:"credits"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.PlanID != "free" || info.Credits.Used != 4 || info.Credits.Limit != 7 {
		t.Errorf("quota info = %+v, want free 4/7", info)
	}

	// 3 left, monthly costs 7
	if _, err := run(t, "quota", "reserve", "--user", "cli-user", "--action", "monthly", "--at", at); err == nil {
		t.Error("over-quota reserve should return an error")
	}
	if _, err := run(t, "quota", "reserve", "--user", "cli-user", "--action", "hourly"); err == nil {
		t.Error("unknown action should fail")
	}
}

func TestPaymentReconcileAndExpire(t *testing.T) {
	setupDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay_cli" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"id":"pay_cli","amount":29900,"currency":"INR","status":"captured","order_id":"order_cli"}`)
	}))
	defer srv.Close()

	t.Setenv("MEALPLANNER_PAYMENT_GATEWAY", "razorpay")
	t.Setenv("MEALPLANNER_PAYMENT_KEY_ID", "rzp_test")
	t.Setenv("MEALPLANNER_PAYMENT_KEY_SECRET", "rzp_secret")
	t.Setenv("MEALPLANNER_PAYMENT_BASE_URL", srv.URL)

	args := []string{"payment", "reconcile", "--user", "cli-payer", "--order", "order_cli", "--payment", "pay_cli",
		"--plan", "individual", "--at", "2026-04-01T00:00:00Z", "-o", "json"}

	if _, err := run(t, append(args, "--signature", "forged")...); err == nil {
		t.Fatal("reconcile with a forged signature should fail")
	}

	out, err := run(t, append(args, "--sign")...)
	if err != nil {
		t.Fatalf("reconcile error = %v", err)
	}
	var res struct {
		State  string `json:"state"`
		Ledger struct {
			CreditsLimit int64 `json:"credits_limit"`
		} `json:"ledger"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.State != "RECONCILED" || res.Ledger.CreditsLimit != 42 {
		t.Errorf("reconcile = %+v, want RECONCILED with 42 credits", res)
	}

	out, err = run(t, "subscription", "expire-lapsed", "--at", "2026-04-15T00:00:00Z")
	if err != nil || !strings.Contains(out, "Expired 0") {
		t.Errorf("expire-lapsed inside period = %q, %v", out, err)
	}
	out, err = run(t, "subscription", "expire-lapsed", "--at", "2026-06-01T00:00:00Z")
	if err != nil || !strings.Contains(out, "Expired 1") {
		t.Errorf("expire-lapsed after period = %q, %v", out, err)
	}

	out, err = run(t, "subscription", "show", "--user", "cli-payer", "-o", "json")
	if err != nil {
		t.Fatalf("subscription show error = %v", err)
	}
	if !strings.Contains(out, `"status": "expired"`) {
		t.Errorf("subscription show = %s, want expired", out)
	}
}

func TestPaymentSign(t *testing.T) {
	t.Setenv("MEALPLANNER_PAYMENT_KEY_SECRET", "rzp_secret")
	out, err := run(t, "payment", "sign", "--order", "o1", "--payment", "p1")
	if err != nil {
		t.Fatalf("payment sign error = %v", err)
	}
	if got := strings.TrimSpace(out); len(got) != 64 {
		t.Errorf("payment sign = %q, want 64 hex chars", got)
	}
}

func TestTokenMint(t *testing.T) {
	if _, err := run(t, "token", "--user", "u1"); err == nil {
		t.Error("token without a secret should fail")
	}

	t.Setenv("MEALPLANNER_AUTH_JWT_SECRET", "cli-secret")
	out, err := run(t, "token", "--user", "u1")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}
	sub, err := auth.NewJWTVerifier("cli-secret").VerifyBearerToken(context.Background(), strings.TrimSpace(out))
	if err != nil || sub != "u1" {
		t.Errorf("minted token verifies as %q, %v; want u1", sub, err)
	}
}
