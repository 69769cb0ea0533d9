//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-pos-server/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type sessionToken struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

type catalogItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Category  string `json:"category"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestTerminalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	bearer := matchers.Regex(pacttest.ExampleToken, "^Bearer .+$")

	pact.AddInteraction().
		Given(pacttest.StateEmployeeExists).
		UponReceiving("a sign-in with valid credentials").
		WithRequest("POST", "/v1/sessions", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"username": matchers.S(pacttest.EmployeeUsername),
				"password": matchers.S(pacttest.EmployeePassword),
			})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"token":     matchers.Like("eyJhbGciOiJIUzI1NiJ9.e30.sig"),
				"sessionId": matchers.Like("0b7c4a5e-8f0e-4c43-9a59-3c4f0f3c2d11"),
				"username":  matchers.S(pacttest.EmployeeUsername),
				"role":      matchers.S("employee"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateEmployeeExists).
		UponReceiving("a sign-in with a wrong password").
		WithRequest("POST", "/v1/sessions", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"username": matchers.S(pacttest.EmployeeUsername),
				"password": matchers.S(pacttest.WrongPassword),
			})
		}).
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"title":  matchers.Like("Unauthorized"),
				"status": matchers.Like(http.StatusUnauthorized),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogSeeded).
		UponReceiving("a request for the catalog").
		WithRequest("GET", "/v1/catalog", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":        matchers.Like(pacttest.ItemID),
				"name":      matchers.Like(pacttest.ItemName),
				"unitPrice": matchers.Term(pacttest.ItemUnitPrice, "^\\d+\\.\\d{2}$"),
				"category":  matchers.Term(pacttest.ItemCategory, "main|side|drink"),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateMirrorsHealthy).
		UponReceiving("a health check").
		WithRequest("GET", "/healthz").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"status": matchers.S("ok")})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newTerminalClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		token, err := client.SignIn(ctx, pacttest.EmployeeUsername, pacttest.EmployeePassword)
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		if token.Token == "" || token.Role != "employee" {
			return fmt.Errorf("unexpected session token %+v", token)
		}

		if _, err := client.SignIn(ctx, pacttest.EmployeeUsername, pacttest.WrongPassword); err == nil {
			return fmt.Errorf("expected 401 for a wrong password")
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusUnauthorized {
			return fmt.Errorf("expected 401, got %d", apiErr.Status())
		}

		items, err := client.Catalog(ctx, pacttest.ExampleToken)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		if len(items) == 0 || items[0].UnitPrice == "" {
			return fmt.Errorf("expected at least one priced item, got %+v", items)
		}

		if err := client.Healthz(ctx); err != nil {
			return fmt.Errorf("healthz: %w", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type terminalClient struct {
	baseURL    string
	httpClient *http.Client
}

func newTerminalClient(config pactconsumer.MockServerConfig) *terminalClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &terminalClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *terminalClient) SignIn(ctx context.Context, username, password string) (*sessionToken, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	var token sessionToken
	if err := c.do(req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *terminalClient) Catalog(ctx context.Context, authorization string) ([]catalogItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/catalog", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authorization)
	var items []catalogItem
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *terminalClient) Healthz(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	var report map[string]any
	return c.do(req, &report)
}

func (c *terminalClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
