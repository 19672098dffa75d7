package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/finance-tracker/wallet-ledger/test/integration/mock"
)

const walletLockPrefix = "ledger:wallet-lock:"

func registerLedgerSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the current time is "([^"]*)"$`, theCurrentTimeIs)

	ctx.Step(`^I create a wallet "([^"]*)"$`, iCreateAWallet)
	ctx.Step(`^I record an? (income|expense) of "([^"]*)" in "([^"]*)" as "([^"]*)"$`, iRecordATransaction)
	ctx.Step(`^I record an? (income|expense) of "([^"]*)" in "([^"]*)" on "([^"]*)" as "([^"]*)"$`, iRecordADatedTransaction)
	ctx.Step(`^I record (\d+) incomes of "([^"]*)" in "([^"]*)"$`, iRecordIncomes)
	ctx.Step(`^I try to record an? (income|expense) of "([^"]*)" in "([^"]*)"$`, iTryToRecordATransaction)
	ctx.Step(`^I change "([^"]*)" to an? (income|expense) of "([^"]*)" in "([^"]*)"$`, iChangeTransaction)
	ctx.Step(`^I delete "([^"]*)"$`, iDeleteTransaction)
	ctx.Step(`^I upload a receipt "([^"]*)" with an? (income|expense) of "([^"]*)" in "([^"]*)"$`, iUploadAReceipt)

	ctx.Step(`^the image service rejects uploads$`, theImageServiceRejectsUploads)
	ctx.Step(`^the image service should have received (\d+) uploads?$`, theImageServiceShouldHaveReceivedUploads)
	ctx.Step(`^the last upload should go to folder "([^"]*)"$`, theLastUploadShouldGoToFolder)

	ctx.Step(`^the wallet "([^"]*)" should have balance "([^"]*)", income "([^"]*)" and expenses "([^"]*)"$`, theWalletShouldHaveBalance)
	ctx.Step(`^the wallet deletion has finished$`, theWalletDeletionHasFinished)
	ctx.Step(`^no wallet locks should be held$`, noWalletLocksShouldBeHeld)
}

type transactionDraft struct {
	WalletID string  `json:"wallet_id"`
	Type     string  `json:"type"`
	Amount   string  `json:"amount"`
	Category string  `json:"category"`
	Date     *string `json:"date,omitempty"`
}

func (tc *TestContext) walletID(name string) (uuid.UUID, error) {
	id, ok := tc.wallets[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("wallet %q was not created in this scenario", name)
	}
	return id, nil
}

func (tc *TestContext) responseID(field string) (uuid.UUID, error) {
	value, err := tc.field(field)
	if err != nil {
		return uuid.Nil, err
	}
	raw, ok := value.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("field '%s' is not a string", field)
	}
	return uuid.Parse(raw)
}

func (tc *TestContext) submit(method, endpoint, txType, amount, walletName string, date *string) error {
	walletID, err := tc.walletID(walletName)
	if err != nil {
		return err
	}
	return tc.sendJSON(method, endpoint, transactionDraft{
		WalletID: walletID.String(),
		Type:     txType,
		Amount:   amount,
		Category: "general",
		Date:     date,
	})
}

func (tc *TestContext) record(txType, amount, walletName string, date *string, alias string) error {
	if err := tc.submit(http.MethodPost, "/api/v1/transactions", txType, amount, walletName, date); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusCreated); err != nil {
		return err
	}
	id, err := tc.responseID("id")
	if err != nil {
		return err
	}
	if alias != "" {
		tc.transactions[alias] = id
	}
	return nil
}

func theCurrentTimeIs(ctx context.Context, value string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", value, err)
	}
	tc.clock.SetCurrentTime(now)
	return nil
}

func iCreateAWallet(ctx context.Context, name string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	if err := tc.sendJSON(http.MethodPost, "/api/v1/wallets", map[string]string{"name": name}); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusCreated); err != nil {
		return err
	}
	id, err := tc.responseID("id")
	if err != nil {
		return err
	}
	tc.wallets[name] = id
	return nil
}

func iRecordATransaction(ctx context.Context, txType, amount, walletName, alias string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.record(txType, amount, walletName, nil, alias)
}

func iRecordADatedTransaction(ctx context.Context, txType, amount, walletName, date, alias string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.record(txType, amount, walletName, &date, alias)
}

func iRecordIncomes(ctx context.Context, count int, amount, walletName string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	for i := 0; i < count; i++ {
		if err := tc.record("income", amount, walletName, nil, ""); err != nil {
			return fmt.Errorf("income %d: %w", i+1, err)
		}
	}
	return nil
}

func iTryToRecordATransaction(ctx context.Context, txType, amount, walletName string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.submit(http.MethodPost, "/api/v1/transactions", txType, amount, walletName, nil)
}

func iChangeTransaction(ctx context.Context, alias, txType, amount, walletName string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.submit(http.MethodPatch, "/api/v1/transactions/{transaction:"+alias+"}", txType, amount, walletName, nil)
}

func iDeleteTransaction(ctx context.Context, alias string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	return tc.send(http.MethodDelete, "/api/v1/transactions/{transaction:"+alias+"}", nil, "")
}

func iUploadAReceipt(ctx context.Context, filename, txType, amount, walletName string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	walletID, err := tc.walletID(walletName)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"wallet_id": walletID.String(),
		"type":      txType,
		"amount":    amount,
		"category":  "general",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("receipt", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte("\x89PNG fake receipt")); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return tc.send(http.MethodPost, "/api/v1/transactions", &body, writer.FormDataContentType())
}

func theImageServiceRejectsUploads(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.images.SetResponse(-1, http.MethodPost, uploadPath, http.StatusBadRequest, map[string]any{
		"error": map[string]any{"message": "Invalid image file"},
	})
	return nil
}

func theImageServiceShouldHaveReceivedUploads(ctx context.Context, count int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if actual := tc.images.RequestCount(http.MethodPost, uploadPath); actual != count {
		return fmt.Errorf("expected %d uploads, got %d", count, actual)
	}
	return nil
}

func theLastUploadShouldGoToFolder(ctx context.Context, folder string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	count := tc.images.RequestCount(http.MethodPost, uploadPath)
	if count == 0 {
		return fmt.Errorf("no uploads received")
	}
	form := tc.images.GetRequestBody(http.MethodPost, uploadPath, count-1)
	if form["folder"] != folder {
		return fmt.Errorf("expected folder %q, got %v", folder, form["folder"])
	}
	if form["upload_preset"] != testUploadPreset {
		return fmt.Errorf("expected upload preset %q, got %v", testUploadPreset, form["upload_preset"])
	}
	return nil
}

func theWalletShouldHaveBalance(ctx context.Context, walletName, amount, income, expenses string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	if err := tc.send(http.MethodGet, "/api/v1/wallets/{wallet:"+walletName+"}", nil, ""); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}

	var balance struct {
		Amount        string `json:"amount"`
		TotalIncome   string `json:"total_income"`
		TotalExpenses string `json:"total_expenses"`
	}
	if err := json.Unmarshal(tc.responseBody, &balance); err != nil {
		return fmt.Errorf("failed to parse wallet: %w", err)
	}

	if balance.Amount != amount || balance.TotalIncome != income || balance.TotalExpenses != expenses {
		return fmt.Errorf("expected %s/%s/%s, got %s/%s/%s",
			amount, income, expenses,
			balance.Amount, balance.TotalIncome, balance.TotalExpenses,
		)
	}
	return nil
}

func theWalletDeletionHasFinished(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.injector.DeleteWallet.Wait()
	return nil
}

func noWalletLocksShouldBeHeld(ctx context.Context) error {
	if keys := mock.RedisKeys(walletLockPrefix); len(keys) > 0 {
		return fmt.Errorf("wallet locks still held: %v", keys)
	}
	return nil
}
