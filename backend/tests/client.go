package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// apiResponse mirrors the response envelope the api wraps every payload in.
type apiResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func (r apiResponse) decodeData(result interface{}) error {
	if result == nil {
		return nil
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data field to decode")
	}
	return json.Unmarshal(r.Data, result)
}

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

func (r *httpTestRequest) Body(body io.Reader) *httpTestRequest {
	r.body = body
	return r
}

// Send performs the request and returns the status code along with the parsed
// envelope, so callers can assert on rejections as well as successes.
func (r *httpTestRequest) Send() (int, apiResponse, error) {
	if r.json != nil {
		body := new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(r.json); err != nil {
			return 0, apiResponse{}, fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	for k, v := range r.headers {
		req.Header.Add(k, v)
	}

	w := httptest.NewRecorder()
	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, apiResponse{}, fmt.Errorf("error reading %v response from endpoint %v: %w", r.method, r.endpoint, err)
	}

	// Middleware rejections (auth, rate limiting) write plain text rather
	// than the envelope; leave the envelope empty in that case.
	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		envelope = apiResponse{Message: string(raw)}
	}

	return res.StatusCode, envelope, nil
}

// Do performs the request, requires a successful response, and decodes the
// data field into result. Pass nil when no result is expected.
func (r *httpTestRequest) Do(result interface{}) error {
	status, envelope, err := r.Send()
	if err != nil {
		return err
	}

	if status >= http.StatusBadRequest || !envelope.Success {
		return fmt.Errorf("%v request to endpoint %v returned status %d, message '%v'", r.method, r.endpoint, status, envelope.Message)
	}

	if result != nil {
		return envelope.decodeData(result)
	}
	return nil
}

type client struct {
	api       chi.Router
	authToken string
	hwID      uint
}

func (c *client) request(method, endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, method, endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Get(endpoint string) *httpTestRequest {
	return c.request("GET", endpoint)
}

func (c *client) Post(endpoint string) *httpTestRequest {
	return c.request("POST", endpoint)
}

func (c *client) Put(endpoint string) *httpTestRequest {
	return c.request("PUT", endpoint)
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	return c.request("DELETE", endpoint)
}

type loginResult struct {
	HwID        uint   `json:"hwID"`
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

func (c *client) login(email, password, role string) error {
	body := map[string]string{"email": email, "password": password, "role": role}

	var result loginResult
	if err := c.Post("/api/v1/login").Json(body).Do(&result); err != nil {
		return err
	}

	c.authToken = result.AccessToken
	c.hwID = result.HwID
	return nil
}
