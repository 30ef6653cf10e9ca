package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/airpass/airpass/internal/baggage"
	"github.com/airpass/airpass/internal/bus"
	"github.com/airpass/airpass/internal/cache"
	"github.com/airpass/airpass/internal/complaint"
	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/repository"
	"github.com/airpass/airpass/internal/rights"
	"github.com/airpass/airpass/internal/schema"
	json "github.com/goccy/go-json"
)

type testEnv struct {
	server *Server
	repo   *repository.SQLRepository
	cache  *cache.LRUCache
	bus    *bus.ChannelBus
}

func newTestEnv(t *testing.T, adminToken string) *testEnv {
	t.Helper()

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:       "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "airpass.db"),
		QueryTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if _, err := repository.SeedAirlines(context.Background(), repo, domain.DefaultAirlines()); err != nil {
		t.Fatalf("failed to seed airlines: %v", err)
	}

	lru := cache.NewLRUCache(100)
	channelBus := bus.NewChannelBus(100)
	t.Cleanup(func() { channelBus.Close() })

	rightsResolver, err := rights.NewResolver(rights.DefaultTable())
	if err != nil {
		t.Fatalf("failed to create rights resolver: %v", err)
	}
	validator, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	srv := NewServer(domain.ServerConfig{Host: "localhost", Port: 8080}, Deps{
		Repo:       repo,
		Cache:      lru,
		Bus:        channelBus,
		Rules:      baggage.NewResolver(repo, lru, time.Hour),
		Rights:     rightsResolver,
		Complaints: complaint.NewAssembler(),
		Validator:  validator,
		AdminToken: adminToken,
		Version:    "test-v1",
	})

	return &testEnv{server: srv, repo: repo, cache: lru, bus: channelBus}
}

// do sends body (a raw string or any JSON-encodable value) and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func indigoRule() map[string]any {
	return map[string]any{
		"airlineCode":            "6e",
		"routeType":              "domestic",
		"cabinClass":             "economy",
		"cabinBaggageCount":      1,
		"cabinBaggageWeight":     7,
		"cabinBaggageDimensions": "55x35x25 cm",
		"checkedBaggageCount":    1,
		"checkedBaggageWeight":   15,
		"excessFeePerKg":         500,
		"excessFeeFlat":          1000,
		"effectiveFrom":          "2024-01-01",
		"notes":                  "Standard fare",
	}
}

func createRule(t *testing.T, env *testEnv, body map[string]any) domain.BaggageRule {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/admin/rules", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var rule domain.BaggageRule
	decodeBody(t, rr, &rule)
	return rule
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, "")

	t.Run("Health", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/health", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var resp struct {
			Status  string            `json:"status"`
			Version string            `json:"version"`
			Checks  map[string]string `json:"checks"`
		}
		decodeBody(t, rr, &resp)
		if resp.Status != "healthy" {
			t.Errorf("expected healthy, got %s (%v)", resp.Status, resp.Checks)
		}
		if resp.Version != "test-v1" {
			t.Errorf("expected version test-v1, got %s", resp.Version)
		}
		for _, name := range []string{"repository", "cache", "eventBus"} {
			if resp.Checks[name] != "ok" {
				t.Errorf("expected %s ok, got %q", name, resp.Checks[name])
			}
		}
	})

	t.Run("Ready", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/ready", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("RequestIDHeaders", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/health", nil, RequestIDHeader, "req-123")
		if rr.Header().Get(RequestIDHeader) != "req-123" {
			t.Errorf("expected request ID echoed, got %q", rr.Header().Get(RequestIDHeader))
		}
		if rr.Header().Get(TraceIDHeader) == "" {
			t.Error("expected trace ID header")
		}
	})
}

func TestBaggageCalculation(t *testing.T) {
	env := newTestEnv(t, "")
	created := createRule(t, env, indigoRule())

	t.Run("RoundTrip", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/admin/rules/"+created.ID, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var stored domain.BaggageRule
		decodeBody(t, rr, &stored)

		if stored.AirlineCode != "6E" || stored.RouteType != domain.RouteDomestic || stored.CabinClass != domain.CabinEconomy {
			t.Errorf("unexpected key: %+v", stored.Key())
		}
		if stored.PassengerType != domain.PassengerAdult || stored.Currency != "INR" || !stored.IsActive {
			t.Errorf("expected defaults applied, got %+v", stored)
		}
		if stored.EffectiveFrom.String() != "2024-01-01" || stored.EffectiveTo != nil {
			t.Errorf("unexpected validity window: %s to %v", stored.EffectiveFrom, stored.EffectiveTo)
		}
		if stored.ExcessFeePerKg == nil || *stored.ExcessFeePerKg != 500 {
			t.Errorf("unexpected per-kg fee: %v", stored.ExcessFeePerKg)
		}

		selected, err := env.server.Handler().rules.SelectRule(context.Background(), stored.Key(), domain.Today())
		if err != nil {
			t.Fatalf("SelectRule failed: %v", err)
		}
		if selected.ID != stored.ID || selected.CabinBaggageWeight != stored.CabinBaggageWeight ||
			selected.CabinBaggageDimensions != stored.CabinBaggageDimensions || selected.Notes != stored.Notes {
			t.Errorf("selected rule differs from stored rule:\n%+v\n%+v", selected, stored)
		}
	})

	t.Run("ExtraFee", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/baggage/calculate", map[string]any{
			"airlineCode": "6E",
			"routeType":   "Domestic",
			"cabinClass":  "ECONOMY",
			"cabinBags":   []map[string]any{{"weight": 8}},
			"checkedBags": []map[string]any{{"weight": 12}, {"weight": 8}},
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp CalculateResponse
		decodeBody(t, rr, &resp)

		if resp.RuleID != created.ID {
			t.Errorf("expected rule %s, got %s", created.ID, resp.RuleID)
		}
		if resp.RouteType != "DOMESTIC" || resp.PassengerType != "ADULT" {
			t.Errorf("expected normalized echo, got %s/%s", resp.RouteType, resp.PassengerType)
		}
		if resp.Allowances.Cabin.Weight != 7 || resp.Allowances.Cabin.Dimensions != "55x35x25 cm" {
			t.Errorf("unexpected cabin allowance: %+v", resp.Allowances.Cabin)
		}
		if resp.YourBags.Checked.Count != 2 || resp.YourBags.Checked.TotalWeight != 20 {
			t.Errorf("unexpected checked summary: %+v", resp.YourBags.Checked)
		}
		c := resp.Calculations
		if c.CabinExcess != 1 || c.CheckedExcess != 5 || c.TotalExcess != 6 {
			t.Errorf("unexpected excess: %+v", c)
		}
		if c.ExcessFee != 4000 || c.Currency != "INR" {
			t.Errorf("expected fee 4000 INR, got %v %s", c.ExcessFee, c.Currency)
		}
		if resp.Status.Cabin != domain.StatusExtraFee || resp.Status.Checked != domain.StatusExtraFee || resp.Status.Overall != domain.StatusExtraFee {
			t.Errorf("unexpected status: %+v", resp.Status)
		}
		if resp.PolicyURL != "https://www.goindigo.in/baggage.html" {
			t.Errorf("expected airline policy fallback, got %q", resp.PolicyURL)
		}
		if resp.Notes != "Standard fare" || resp.Disclaimer == "" {
			t.Errorf("expected notes and disclaimer, got %q %q", resp.Notes, resp.Disclaimer)
		}
	})

	t.Run("NotAllowed", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/baggage/calculate", map[string]any{
			"airlineCode": "6E",
			"routeType":   "DOMESTIC",
			"cabinClass":  "ECONOMY",
			"checkedBags": []map[string]any{{"weight": 35}},
		})
		var resp CalculateResponse
		decodeBody(t, rr, &resp)
		if resp.Status.Cabin != domain.StatusAllowed || resp.Status.Checked != domain.StatusNotAllowed {
			t.Errorf("unexpected status: %+v", resp.Status)
		}
		if resp.Status.Overall != domain.StatusNotAllowed {
			t.Errorf("expected overall NOT_ALLOWED, got %s", resp.Status.Overall)
		}
		if resp.YourBags.Cabin.Bags == nil {
			t.Error("expected empty bag list, not null")
		}
	})

	t.Run("TravelDateBeforeRule", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/baggage/calculate", map[string]any{
			"airlineCode": "6E",
			"routeType":   "DOMESTIC",
			"cabinClass":  "ECONOMY",
			"travelDate":  "2023-06-01",
		})
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/baggage/calculate", map[string]any{
			"airlineCode": "AI",
			"routeType":   "INTERNATIONAL",
			"cabinClass":  "FIRST",
		})
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
		var resp map[string]string
		decodeBody(t, rr, &resp)
		if resp["error"] != "Rules not found" || resp["message"] != "No baggage rules found for the specified criteria" {
			t.Errorf("unexpected not-found body: %v", resp)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"BadRouteType", `{"airlineCode":"6E","routeType":"REGIONAL","cabinClass":"ECONOMY"}`},
			{"BadPassengerType", `{"airlineCode":"6E","routeType":"DOMESTIC","cabinClass":"ECONOMY","passengerType":"SENIOR"}`},
			{"NegativeWeight", `{"airlineCode":"6E","routeType":"DOMESTIC","cabinClass":"ECONOMY","cabinBags":[{"weight":-3}]}`},
			{"UnknownField", `{"airlineCode":"6E","routeType":"DOMESTIC","cabinClass":"ECONOMY","coupon":"X"}`},
			{"MissingField", `{"airlineCode":"6E"}`},
			{"Malformed", `{"airlineCode":`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr := env.do(t, http.MethodPost, "/baggage/calculate", tt.body)
				if rr.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
				}
				var resp struct {
					Error   string   `json:"error"`
					Details []string `json:"details"`
				}
				decodeBody(t, rr, &resp)
				if resp.Error != "invalid request" || len(resp.Details) == 0 {
					t.Errorf("unexpected body: %s", rr.Body.String())
				}
			})
		}
	})
}

func TestRuleChangesInvalidateCache(t *testing.T) {
	env := newTestEnv(t, "")
	created := createRule(t, env, indigoRule())

	calculate := func() CalculateResponse {
		rr := env.do(t, http.MethodPost, "/baggage/calculate", map[string]any{
			"airlineCode": "6E",
			"routeType":   "DOMESTIC",
			"cabinClass":  "ECONOMY",
			"cabinBags":   []map[string]any{{"weight": 9}},
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp CalculateResponse
		decodeBody(t, rr, &resp)
		return resp
	}

	if got := calculate().Calculations.CabinExcess; got != 2 {
		t.Fatalf("expected cabin excess 2, got %v", got)
	}
	if size, _ := env.cache.Stats(); size == 0 {
		t.Fatal("expected the selected rule to be cached")
	}

	update := indigoRule()
	update["cabinBaggageWeight"] = 10
	rr := env.do(t, http.MethodPut, "/admin/rules/"+created.ID, update)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if got := calculate().Calculations.CabinExcess; got != 0 {
		t.Errorf("expected cached rule to be replaced, got cabin excess %v", got)
	}

	rr = env.do(t, http.MethodDelete, "/admin/rules/"+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/baggage/calculate", `{"airlineCode":"6E","routeType":"DOMESTIC","cabinClass":"ECONOMY"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rr.Code)
	}
}

func TestRuleChangePublishesEvent(t *testing.T) {
	env := newTestEnv(t, "")

	events := make(chan domain.RuleChangedEvent, 1)
	_, err := env.bus.Subscribe(context.Background(), domain.TopicRuleChanged, func(ctx context.Context, msg *domain.Message) error {
		var event domain.RuleChangedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return err
		}
		events <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	created := createRule(t, env, indigoRule())

	select {
	case event := <-events:
		if event.RuleID != created.ID || event.AirlineCode != "6E" || event.Action != domain.ActionCreated {
			t.Errorf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for rule change event")
	}
}

func TestAdminRules(t *testing.T) {
	env := newTestEnv(t, "")
	active := createRule(t, env, indigoRule())

	inactiveBody := indigoRule()
	inactiveBody["cabinClass"] = "BUSINESS"
	inactiveBody["isActive"] = false
	inactive := createRule(t, env, inactiveBody)

	t.Run("ListActiveOnly", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/admin/rules?airlineCode=6e", nil)
		var resp struct {
			Rules []domain.BaggageRule `json:"rules"`
			Count int                  `json:"count"`
		}
		decodeBody(t, rr, &resp)
		if resp.Count != 1 || resp.Rules[0].ID != active.ID {
			t.Errorf("expected only the active rule, got %d rules", resp.Count)
		}
	})

	t.Run("ListIncludeInactive", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/admin/rules?airlineCode=6E&includeInactive=true", nil)
		var resp struct {
			Count int `json:"count"`
		}
		decodeBody(t, rr, &resp)
		if resp.Count != 2 {
			t.Errorf("expected 2 rules, got %d", resp.Count)
		}
	})

	t.Run("InactiveIsNeverSelected", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/baggage/calculate", `{"airlineCode":"6E","routeType":"DOMESTIC","cabinClass":"BUSINESS"}`)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404 for inactive rule %s, got %d", inactive.ID, rr.Code)
		}
	})

	t.Run("UnknownAirline", func(t *testing.T) {
		body := indigoRule()
		body["airlineCode"] = "ZZ"
		rr := env.do(t, http.MethodPost, "/admin/rules", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("InvalidWindow", func(t *testing.T) {
		body := indigoRule()
		body["effectiveTo"] = "2023-01-01"
		rr := env.do(t, http.MethodPost, "/admin/rules", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		body := indigoRule()
		body["id"] = active.ID
		rr := env.do(t, http.MethodPost, "/admin/rules", body)
		if rr.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rr.Code)
		}
	})

	t.Run("MissingRule", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			rr := env.do(t, method, "/admin/rules/does-not-exist", nil)
			if rr.Code != http.StatusNotFound {
				t.Errorf("%s: expected 404, got %d", method, rr.Code)
			}
		}
		rr := env.do(t, http.MethodPut, "/admin/rules/does-not-exist", indigoRule())
		if rr.Code != http.StatusNotFound {
			t.Errorf("PUT: expected 404, got %d", rr.Code)
		}
	})
}

func TestAdminToken(t *testing.T) {
	env := newTestEnv(t, "s3cret")

	rr := env.do(t, http.MethodPost, "/admin/rules", indigoRule())
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/admin/rules", indigoRule(), AdminTokenHeader, "wrong")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/admin/rules", indigoRule(), AdminTokenHeader, "s3cret")
	if rr.Code != http.StatusCreated {
		t.Errorf("expected 201 with token, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/airlines", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("public routes must not need a token, got %d", rr.Code)
	}
}

func TestCurrentRuleListing(t *testing.T) {
	env := newTestEnv(t, "")
	createRule(t, env, indigoRule())

	intl := indigoRule()
	intl["routeType"] = "INTERNATIONAL"
	intl["checkedBaggageWeight"] = 30
	createRule(t, env, intl)

	expired := indigoRule()
	expired["cabinClass"] = "FIRST"
	expired["effectiveFrom"] = "2020-01-01"
	expired["effectiveTo"] = "2020-12-31"
	createRule(t, env, expired)

	rr := env.do(t, http.MethodGet, "/baggage/rules/6e", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var rules []domain.BaggageRule
	decodeBody(t, rr, &rules)
	if len(rules) != 2 {
		t.Errorf("expected 2 current rules, got %d", len(rules))
	}

	rr = env.do(t, http.MethodGet, "/baggage/rules/6E?routeType=international", nil)
	decodeBody(t, rr, &rules)
	if len(rules) != 1 || rules[0].CheckedBaggageWeight != 30 {
		t.Errorf("expected the international rule, got %+v", rules)
	}

	rr = env.do(t, http.MethodGet, "/baggage/rules/SG", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestRightsEndpoint(t *testing.T) {
	env := newTestEnv(t, "")

	t.Run("LongDelay", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/rights/calculate", `{"issueType":"DELAY","delayHours":6,"flightType":"domestic"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var ent domain.RightsEntitlement
		decodeBody(t, rr, &ent)
		if ent.Compensation != 10000 || len(ent.Assistance) != 4 {
			t.Errorf("unexpected entitlement: %+v", ent)
		}
		if len(ent.LegalReferences) != 2 {
			t.Errorf("expected 2 legal references, got %v", ent.LegalReferences)
		}
	})

	t.Run("ShortDelay", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/rights/calculate", `{"issueType":"delay","delayHours":1,"flightType":"domestic"}`)
		var ent domain.RightsEntitlement
		decodeBody(t, rr, &ent)
		if ent.Compensation != 0 || len(ent.Assistance) != 0 {
			t.Errorf("unexpected entitlement: %+v", ent)
		}
		if !strings.Contains(rr.Body.String(), `"assistance":[]`) {
			t.Errorf("expected an empty assistance array, got %s", rr.Body.String())
		}
	})

	t.Run("UnknownIssue", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/rights/calculate", `{"issueType":"LOST_PASSPORT"}`)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("MissingIssue", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/rights/calculate", `{"delayHours":3}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func complaintBody() map[string]any {
	return map[string]any{
		"passengerName":      "Asha Rao",
		"passengerEmail":     "asha@example.com",
		"flightNumber":       "6E-204",
		"airline":            "IndiGo",
		"pnr":                "ABC123",
		"flightDate":         "2025-03-05",
		"departureAirport":   "BLR",
		"arrivalAirport":     "DEL",
		"issueType":          "DELAY",
		"issueDescription":   "Seven hour delay without meals.",
		"compensationAmount": 10000,
		"supportingDocs":     []map[string]any{{"type": "Boarding pass", "description": "Scanned copy"}},
	}
}

func TestComplaintEndpoints(t *testing.T) {
	env := newTestEnv(t, "")

	t.Run("Email", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/complaints/email", complaintBody())
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var email domain.ComplaintEmail
		decodeBody(t, rr, &email)
		if email.Subject != "Formal Complaint Regarding IndiGo Flight 6E-204" {
			t.Errorf("unexpected subject %q", email.Subject)
		}
		if email.ToEmail != "customer.relations@indigo.com" {
			t.Errorf("unexpected recipient %q", email.ToEmail)
		}
		if !strings.Contains(email.EmailText, "Amount: ₹10,000") {
			t.Errorf("expected formatted amount in email:\n%s", email.EmailText)
		}
		if len(email.Reference) != 12 {
			t.Errorf("expected reference, got %q", email.Reference)
		}
	})

	t.Run("PDF", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/complaints/pdf", complaintBody())
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("expected application/pdf, got %q", ct)
		}
		if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "complaint-IndiGo-6E-204-") {
			t.Errorf("unexpected Content-Disposition %q", cd)
		}
		if rr.Header().Get(ComplaintReferenceHeader) == "" {
			t.Error("expected complaint reference header")
		}
		if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
			t.Error("expected a PDF body")
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		body := complaintBody()
		body["passengerEmail"] = "not-an-email"
		delete(body, "flightNumber")
		for _, path := range []string{"/complaints/email", "/complaints/pdf"} {
			rr := env.do(t, http.MethodPost, path, body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", path, rr.Code)
			}
		}
	})
}

func TestAirlineEndpoints(t *testing.T) {
	env := newTestEnv(t, "")

	t.Run("List", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/airlines", nil)
		var resp struct {
			Airlines []domain.Airline `json:"airlines"`
			Count    int              `json:"count"`
		}
		decodeBody(t, rr, &resp)
		if resp.Count != 4 {
			t.Errorf("expected 4 seeded airlines, got %d", resp.Count)
		}
	})

	t.Run("Get", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/airlines/6e", nil)
		var airline domain.Airline
		decodeBody(t, rr, &airline)
		if airline.Name != "IndiGo" {
			t.Errorf("expected IndiGo, got %q", airline.Name)
		}

		rr = env.do(t, http.MethodGet, "/airlines/ZZ", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/admin/airlines/qp", `{"name":"Akasa Air","policyUrl":"https://www.akasaair.com/baggage"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var airline domain.Airline
		decodeBody(t, rr, &airline)
		if airline.Code != "QP" || !airline.Active {
			t.Errorf("unexpected airline: %+v", airline)
		}

		rr = env.do(t, http.MethodPut, "/admin/airlines/QP", `{"name":"Akasa","active":false}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		stored, err := env.repo.GetAirline(context.Background(), "QP")
		if err != nil {
			t.Fatalf("GetAirline failed: %v", err)
		}
		if stored.Name != "Akasa" || stored.Active {
			t.Errorf("expected update applied, got %+v", stored)
		}
	})

	t.Run("BadCode", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/admin/airlines/TOOLONG", `{"name":"X"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	env := newTestEnv(t, "")

	t.Run("CORSPreflight", func(t *testing.T) {
		rr := env.do(t, http.MethodOptions, "/baggage/calculate", nil, "Origin", "https://airpass.example")
		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rr.Code)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://airpass.example" {
			t.Errorf("unexpected allow-origin %q", got)
		}
	})

	t.Run("RecoverPanic", func(t *testing.T) {
		env.server.Router().Get("/panic", func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})
		rr := env.do(t, http.MethodGet, "/panic", nil)
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rr.Code)
		}
	})
}
