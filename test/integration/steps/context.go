// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/config"
	"github.com/finance-tracker/wallet-ledger/internal/application/adapter"
	"github.com/finance-tracker/wallet-ledger/internal/infra/dependency"
	"github.com/finance-tracker/wallet-ledger/internal/integration/adapters"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence/model"
	"github.com/finance-tracker/wallet-ledger/test/integration/mock"
)

const (
	testJWTSecret    = "test-jwt-secret-key-for-testing-purposes"
	testCloudName    = "ledger-test"
	testUploadPreset = "unsigned-ledger"
	uploadPath       = "/v1_1/" + testCloudName + "/image/upload"
)

var placeholder = regexp.MustCompile(`\{(wallet|transaction|user):([^}]+)\}`)

// TestContext holds the state of a single scenario.
type TestContext struct {
	// HTTP
	server       *httptest.Server
	injector     *dependency.Injector
	response     *http.Response
	responseBody []byte

	// Request building
	requestHeaders map[string]string

	// Collaborators
	db     *mock.Db
	images *mock.ApiMock
	clock  *mock.Time
	tokens adapter.TokenService

	// Auth
	currentUser string
	accessToken string

	// Aliases used in feature files
	users        map[string]uuid.UUID
	wallets      map[string]uuid.UUID
	transactions map[string]uuid.UUID

	cfg *config.Config
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

var images *mock.ApiMock

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)

		mock.NewDb(model.AllModels()...)
		mock.NewRedis()

		images = mock.NewApiServer()
		images.Start()
	})

	ctx.AfterSuite(func() {
		if images != nil {
			images.Close()
		}
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc, err := newTestContext()
		if err != nil {
			return ctx, err
		}
		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc := GetTestContext(ctx)
		if tc == nil {
			return ctx, nil
		}
		// Cascades must not outlive the scenario that started them.
		tc.injector.DeleteWallet.Wait()
		if tc.server != nil {
			tc.server.Close()
		}
		return ctx, nil
	})

	registerAPISteps(ctx)
	registerLedgerSteps(ctx)
	registerResponseSteps(ctx)
}

func newTestContext() (*TestContext, error) {
	database := mock.NewDb(model.AllModels()...)
	if err := database.ClearDB(); err != nil {
		return nil, fmt.Errorf("failed to clear database: %w", err)
	}

	redisClient := mock.NewRedis()
	if err := mock.ClearRedis(redisClient); err != nil {
		return nil, fmt.Errorf("failed to clear redis: %w", err)
	}

	if images == nil {
		images = mock.NewApiServer()
		images.Start()
	}
	images.Clear()
	images.SetResponse(-1, http.MethodPost, uploadPath, http.StatusOK, map[string]any{
		"secure_url": "https://res.cloudinary.com/" + testCloudName + "/image/upload/receipt.png",
	})

	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.JWT = config.JWTConfig{Secret: testJWTSecret, AccessTokenExpiry: time.Hour}
	cfg.Images = config.ImagesConfig{
		CloudName:    testCloudName,
		UploadPreset: testUploadPreset,
		BaseURL:      images.GetUrl(),
		Timeout:      5 * time.Second,
	}
	cfg.Ledger.CascadeBatchSize = 5
	cfg.Ledger.LockTTL = 5 * time.Second
	cfg.Ledger.LockWait = 2 * time.Second
	cfg.Ledger.StatsTimezone = "UTC"
	cfg.RateLimit.MaxRequests = 0

	clock := mock.NewTime()
	tokens := adapters.NewTokenService(testJWTSecret, time.Hour)

	injector := dependency.NewInjectorWithOptions(cfg, database.DbConn, redisClient, dependency.Options{
		TokenService: tokens,
		Clock:        clock.Now,
	})

	return &TestContext{
		server:         httptest.NewServer(injector.Router.Setup(cfg.Server.Environment)),
		injector:       injector,
		requestHeaders: make(map[string]string),
		db:             database,
		images:         images,
		clock:          clock,
		tokens:         tokens,
		users:          map[string]uuid.UUID{},
		wallets:        map[string]uuid.UUID{},
		transactions:   map[string]uuid.UUID{},
		cfg:            cfg,
	}, nil
}

// registerAPISteps registers HTTP request steps.
func registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the API server is running$`, theAPIServerIsRunning)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, iSendARequestToWithBody)
	ctx.Step(`^I set header "([^"]*)" to "([^"]*)"$`, iSetHeaderTo)
	ctx.Step(`^I am signed in as "([^"]*)"$`, iAmSignedInAs)
	ctx.Step(`^I am not signed in$`, iAmNotSignedIn)
}

// registerResponseSteps registers response validation steps.
func registerResponseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, theResponseShouldBeJSON)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, theResponseFieldShouldExist)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, theResponseFieldShouldHaveItems)
	ctx.Step(`^the db should contain (\d+) objects in the "([^"]*)" table$`, theDbShouldContainObjectsInTheTable)
}

// expand replaces {wallet:Name}, {transaction:alias} and {user:name}
// placeholders with the IDs recorded earlier in the scenario.
func (tc *TestContext) expand(text string) (string, error) {
	var missing string
	expanded := placeholder.ReplaceAllStringFunc(text, func(match string) string {
		parts := placeholder.FindStringSubmatch(match)
		var ids map[string]uuid.UUID
		switch parts[1] {
		case "wallet":
			ids = tc.wallets
		case "transaction":
			ids = tc.transactions
		default:
			ids = tc.users
		}
		id, ok := ids[parts[2]]
		if !ok {
			missing = match
			return match
		}
		return id.String()
	})
	if missing != "" {
		return "", fmt.Errorf("unknown placeholder %s", missing)
	}
	return expanded, nil
}

func (tc *TestContext) send(method, endpoint string, body io.Reader, contentType string) error {
	endpoint, err := tc.expand(endpoint)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, tc.server.URL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range tc.requestHeaders {
		req.Header.Set(key, value)
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	tc.response = resp
	tc.responseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

func (tc *TestContext) sendJSON(method, endpoint string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tc.send(method, endpoint, bytes.NewReader(raw), "application/json")
}

// expectStatus fails with the response body so broken steps are debuggable.
func (tc *TestContext) expectStatus(status int) error {
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}
	if tc.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d. Body: %s", status, tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

// field resolves a dotted path such as "buckets.6.income" in the response.
func (tc *TestContext) field(path string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	current := data
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field '%s' not found in response", path)
			}
			current = value
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(node) {
				return nil, fmt.Errorf("index '%s' of '%s' is out of range", part, path)
			}
			current = node[index]
		default:
			return nil, fmt.Errorf("field '%s' not found in response", path)
		}
	}
	return current, nil
}

// Step implementations

func theAPIServerIsRunning(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil || tc.server == nil {
		return fmt.Errorf("test server is not running")
	}
	if err := tc.send(http.MethodGet, "/health", nil, ""); err != nil {
		return err
	}
	return tc.expectStatus(http.StatusOK)
}

func iSendARequestTo(ctx context.Context, method, endpoint string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(method, endpoint, nil, "")
}

func iSendARequestToWithBody(ctx context.Context, method, endpoint string, body *godog.DocString) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	content, err := tc.expand(body.Content)
	if err != nil {
		return err
	}
	return tc.send(method, endpoint, strings.NewReader(content), "application/json")
}

func iSetHeaderTo(ctx context.Context, header, value string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.requestHeaders[header] = value
	return nil
}

func iAmSignedInAs(ctx context.Context, name string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	userID, ok := tc.users[name]
	if !ok {
		userID = uuid.New()
		tc.users[name] = userID
	}

	token, err := tc.tokens.GenerateAccessToken(context.Background(), userID, name+"@example.com")
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	tc.currentUser = name
	tc.accessToken = token
	return nil
}

func iAmNotSignedIn(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.currentUser = ""
	tc.accessToken = ""
	return nil
}

func theResponseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.expectStatus(expectedStatus)
}

func theResponseShouldBeJSON(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	var js json.RawMessage
	if err := json.Unmarshal(tc.responseBody, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func theResponseShouldContain(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if !strings.Contains(string(tc.responseBody), expected) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, string(tc.responseBody))
	}
	return nil
}

func theResponseFieldShouldBe(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	value, err := tc.field(field)
	if err != nil {
		return err
	}

	expected, err = tc.expand(expected)
	if err != nil {
		return err
	}

	actual := fmt.Sprintf("%v", value)
	if actual != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actual)
	}
	return nil
}

func theResponseFieldShouldExist(ctx context.Context, field string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	_, err := tc.field(field)
	return err
}

func theResponseFieldShouldHaveItems(ctx context.Context, field string, count int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	value, err := tc.field(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list", field)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(items))
	}
	return nil
}

func theDbShouldContainObjectsInTheTable(ctx context.Context, count int, table string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	actual, err := tc.db.Count(table)
	if err != nil {
		return err
	}
	if actual != int64(count) {
		return fmt.Errorf("expected %d objects in %s, got %d", count, table, actual)
	}
	return nil
}
