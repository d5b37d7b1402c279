package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"financial-ledger/internal/config"
	"financial-ledger/internal/server"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type IntegrationTestSuite struct {
	suite.Suite
	postgresContainer *tcpostgres.PostgresContainer
	serverInstance    *server.Server
	serverPort        string
	baseURL           string
	client            *http.Client
}

func (suite *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("financial_ledger"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		suite.T().Fatalf("Failed to start postgres container: %s", err)
	}
	suite.postgresContainer = postgresContainer

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		suite.T().Fatalf("Failed to get container host: %s", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		suite.T().Fatalf("Failed to get mapped port: %s", err)
	}

	// The server runs migrations itself on startup.
	cfg := &config.Config{
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "postgres",
		DBPassword: "password",
		DBName:     "financial_ledger",
		DBSSLMode:  "disable",
		ServerPort: "0", // Let OS choose a free port
	}

	serverInstance, serverPort, err := server.StartServer(cfg)
	if err != nil {
		suite.T().Fatalf("Failed to start application server: %s", err)
	}

	suite.serverInstance = serverInstance
	suite.serverPort = serverPort
	suite.baseURL = "http://localhost:" + serverPort

	suite.client = &http.Client{
		Timeout: 30 * time.Second,
	}

	if err := suite.waitForServerReady(); err != nil {
		suite.T().Fatalf("Server not ready: %s", err)
	}
}

func (suite *IntegrationTestSuite) waitForServerReady() error {
	timeout := 30 * time.Second
	start := time.Now()

	for time.Since(start) < timeout {
		resp, err := http.Get(suite.baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if suite.serverInstance != nil {
		suite.serverInstance.Stop(ctx)
	}

	if suite.postgresContainer != nil {
		suite.postgresContainer.Terminate(ctx)
	}
}

// Helper methods for API calls

func (suite *IntegrationTestSuite) postJSON(path string, payload interface{}) (int, map[string]interface{}) {
	body, err := json.Marshal(payload)
	require.NoError(suite.T(), err)

	resp, err := suite.client.Post(suite.baseURL+path, "application/json", bytes.NewReader(body))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(suite.T(), err)

	var parsed map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(respBody, &parsed), "unparseable response: %s", respBody)
	return resp.StatusCode, parsed
}

func (suite *IntegrationTestSuite) getJSON(path string, params url.Values) (int, map[string]interface{}) {
	u := suite.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	resp, err := suite.client.Get(u)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(suite.T(), err)

	var parsed map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(respBody, &parsed), "unparseable response: %s", respBody)
	return resp.StatusCode, parsed
}

func (suite *IntegrationTestSuite) submitTransaction(id, txType, amount, category string) {
	status, resp := suite.postJSON("/api/transactions", map[string]interface{}{
		"transaction_id":   id,
		"user_id":          "user-1",
		"account_number":   "ACC-SEED",
		"transaction_type": txType,
		"amount":           json.Number(amount),
		"category":         category,
	})
	require.Equal(suite.T(), http.StatusCreated, status)
	require.Equal(suite.T(), true, resp["success"])
}

func (suite *IntegrationTestSuite) listTransactions(params url.Values) ([]interface{}, float64) {
	status, resp := suite.getJSON("/api/transactions", params)
	require.Equal(suite.T(), http.StatusOK, status)
	require.Equal(suite.T(), true, resp["success"])

	data := resp["data"].([]interface{})
	pagination := resp["pagination"].(map[string]interface{})
	return data, pagination["total_pages"].(float64)
}

func (suite *IntegrationTestSuite) assertDecimalEqual(expected, actual string, msgAndArgs ...interface{}) {
	expectedDec, err := decimal.NewFromString(expected)
	require.NoError(suite.T(), err, "invalid expected decimal: %s", expected)

	actualDec, err := decimal.NewFromString(actual)
	require.NoError(suite.T(), err, "invalid actual decimal: %s", actual)

	assert.True(suite.T(), expectedDec.Equal(actualDec),
		"Decimal values not equal: expected %s, got %s", expected, actual)
}

// ------------------------------------------------------------------
// Steps below are helpers (non-test methods) executed in the order
// invoked by TestFlow, for deterministic ordering.
// ------------------------------------------------------------------

func (suite *IntegrationTestSuite) stepHealthCheck() {
	resp, err := suite.client.Get(suite.baseURL + "/health")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (suite *IntegrationTestSuite) stepCreateAccount() {
	status, resp := suite.postJSON("/api/accounts", map[string]interface{}{
		"account_number":  "ACC-1001",
		"initial_balance": "500.00",
	})
	assert.Equal(suite.T(), http.StatusCreated, status)
	assert.Equal(suite.T(), true, resp["success"])

	status, resp = suite.getJSON("/api/accounts/ACC-1001", nil)
	assert.Equal(suite.T(), http.StatusOK, status)
	data := resp["data"].(map[string]interface{})
	suite.assertDecimalEqual("500.00", data["balance"].(string))
}

func (suite *IntegrationTestSuite) stepAccountCreditAndDebit() {
	status, resp := suite.postJSON("/api/accounts/transaction", map[string]interface{}{
		"account_number":   "ACC-1001",
		"user_id":          "user-1",
		"transaction_type": "credit",
		"amount":           json.Number("250.00"),
		"category":         "Salary",
	})
	assert.Equal(suite.T(), http.StatusCreated, status)
	data := resp["data"].(map[string]interface{})
	assert.Equal(suite.T(), "success", data["status"])

	status, _ = suite.postJSON("/api/accounts/transaction", map[string]interface{}{
		"account_number":   "ACC-1001",
		"user_id":          "user-1",
		"transaction_type": "debit",
		"amount":           json.Number("100.00"),
		"category":         "Shopping",
	})
	assert.Equal(suite.T(), http.StatusCreated, status)

	_, resp = suite.getJSON("/api/accounts/ACC-1001", nil)
	account := resp["data"].(map[string]interface{})
	// 500.00 + 250.00 - 100.00 = 650.00
	suite.assertDecimalEqual("650.00", account["balance"].(string))
}

func (suite *IntegrationTestSuite) stepInsufficientFunds() {
	status, resp := suite.postJSON("/api/accounts/transaction", map[string]interface{}{
		"account_number":   "ACC-1001",
		"user_id":          "user-1",
		"transaction_type": "debit",
		"amount":           json.Number("10000.00"),
		"category":         "Shopping",
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, status)
	assert.Equal(suite.T(), false, resp["success"])
	assert.Equal(suite.T(), "Insufficient funds", resp["error"])

	// Balance untouched.
	_, resp = suite.getJSON("/api/accounts/ACC-1001", nil)
	account := resp["data"].(map[string]interface{})
	suite.assertDecimalEqual("650.00", account["balance"].(string))

	// The failed attempt still lands in the ledger.
	rows, _ := suite.listTransactions(url.Values{
		"account_number": {"ACC-1001"},
		"status":         {"failed"},
	})
	assert.Len(suite.T(), rows, 1)
}

func (suite *IntegrationTestSuite) stepSeedPendingTransactions() {
	for i := 0; i < 23; i++ {
		suite.submitTransaction(
			fmt.Sprintf("seed-%02d", i),
			"debit",
			fmt.Sprintf("%d.00", i+1),
			"Groceries",
		)
	}
}

func (suite *IntegrationTestSuite) stepPaginationPartition() {
	params := url.Values{"status": {"pending"}, "pageSize": {"10"}}

	seen := make(map[string]bool)
	var lastPageLen int
	for page := 1; page <= 3; page++ {
		params.Set("page", fmt.Sprintf("%d", page))
		rows, totalPages := suite.listTransactions(params)
		assert.Equal(suite.T(), float64(3), totalPages)
		for _, row := range rows {
			id := row.(map[string]interface{})["transaction_id"].(string)
			assert.False(suite.T(), seen[id], "id %s appeared on two pages", id)
			seen[id] = true
		}
		lastPageLen = len(rows)
	}

	assert.Len(suite.T(), seen, 23)
	assert.Equal(suite.T(), 3, lastPageLen, "page 3 returns exactly the remainder")
}

func (suite *IntegrationTestSuite) stepInvalidQueryFallsBack() {
	rows, totalPages := suite.listTransactions(url.Values{
		"status":   {"pending"},
		"sortBy":   {"no_such_column"},
		"page":     {"-5"},
		"pageSize": {"0"},
	})
	assert.Equal(suite.T(), float64(3), totalPages, "invalid input is corrected to defaults")
	assert.Len(suite.T(), rows, 10)
}

func (suite *IntegrationTestSuite) stepDrillDownWidensPage() {
	rows, totalPages := suite.listTransactions(url.Values{
		"category":  {"Groceries"},
		"drilldown": {"true"},
	})
	assert.Equal(suite.T(), float64(1), totalPages)
	assert.Len(suite.T(), rows, 23, "drill-down returns the whole category in one page")
}

func (suite *IntegrationTestSuite) stepBulkUpdateStatus() {
	status, resp := suite.postJSON("/api/transactions/bulk-update-status", map[string]interface{}{
		"transactionIds": []string{"seed-00", "seed-01"},
		"status":         "success",
	})
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.Equal(suite.T(), true, resp["success"])
	assert.Len(suite.T(), resp["updated"].([]interface{}), 2)
	assert.Empty(suite.T(), resp["failed"].([]interface{}))

	// Repeating is idempotent.
	status, resp = suite.postJSON("/api/transactions/bulk-update-status", map[string]interface{}{
		"transactionIds": []string{"seed-00"},
		"status":         "success",
	})
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.Len(suite.T(), resp["updated"].([]interface{}), 1)

	rows, _ := suite.listTransactions(url.Values{"status": {"pending"}, "pageSize": {"100"}})
	assert.Len(suite.T(), rows, 21)
}

func (suite *IntegrationTestSuite) stepBulkDeletePartialFailure() {
	status, resp := suite.postJSON("/api/transactions/bulk-delete", map[string]interface{}{
		"transactionIds": []string{"seed-02"},
	})
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.Len(suite.T(), resp["updated"].([]interface{}), 1)

	// seed-02 is already gone, seed-03 is live, nope was never there.
	status, resp = suite.postJSON("/api/transactions/bulk-delete", map[string]interface{}{
		"transactionIds": []string{"seed-02", "seed-03", "nope"},
	})
	assert.Equal(suite.T(), http.StatusOK, status)
	updated := resp["updated"].([]interface{})
	assert.Equal(suite.T(), []interface{}{"seed-03"}, updated)

	failed := resp["failed"].([]interface{})
	assert.Len(suite.T(), failed, 2)
	reasons := make(map[string]string)
	for _, f := range failed {
		entry := f.(map[string]interface{})
		reasons[entry["id"].(string)] = entry["reason"].(string)
	}
	assert.Equal(suite.T(), "already_deleted", reasons["seed-02"])
	assert.Equal(suite.T(), "not_found", reasons["nope"])
}

func (suite *IntegrationTestSuite) stepEmptySelectionRejected() {
	status, resp := suite.postJSON("/api/transactions/bulk-update-status", map[string]interface{}{
		"transactionIds": []string{},
		"status":         "success",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, status)
	assert.Equal(suite.T(), false, resp["success"])
}

func (suite *IntegrationTestSuite) stepSummaryConsistency() {
	status, resp := suite.getJSON("/api/dashboard/summary", nil)
	assert.Equal(suite.T(), http.StatusOK, status)
	data := resp["data"].(map[string]interface{})

	total := data["total_transactions"].(float64)
	creditCount := data["credit_count"].(float64)
	debitCount := data["debit_count"].(float64)
	assert.Equal(suite.T(), total, creditCount+debitCount,
		"credit and debit partition the live set exactly")

	// The summary respects the same filters as the list.
	rows, _ := suite.listTransactions(url.Values{"status": {"pending"}, "pageSize": {"100"}})
	_, resp = suite.getJSON("/api/dashboard/summary", url.Values{"status": {"pending"}})
	filtered := resp["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(len(rows)), filtered["total_transactions"].(float64))
}

func (suite *IntegrationTestSuite) stepCategories() {
	status, resp := suite.getJSON("/api/transactions/categories", nil)
	assert.Equal(suite.T(), http.StatusOK, status)

	var categories []string
	for _, c := range resp["data"].([]interface{}) {
		categories = append(categories, c.(string))
	}
	assert.Contains(suite.T(), categories, "Groceries")
	assert.Contains(suite.T(), categories, "Salary")
}

func (suite *IntegrationTestSuite) TestFlow() {
	if testing.Short() {
		suite.T().Skip("Skipping integration test in short mode")
	}

	suite.stepHealthCheck()
	suite.stepCreateAccount()
	suite.stepAccountCreditAndDebit()
	suite.stepInsufficientFunds()
	suite.stepSeedPendingTransactions()
	suite.stepPaginationPartition()
	suite.stepInvalidQueryFallsBack()
	suite.stepDrillDownWidensPage()
	suite.stepBulkUpdateStatus()
	suite.stepBulkDeletePartialFailure()
	suite.stepEmptySelectionRejected()
	suite.stepSummaryConsistency()
	suite.stepCategories()
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
