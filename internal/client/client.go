// Package client speaks the fitness-tracking service's mini-app
// protocol: tenant and token checks, record image uploads and the
// two-phase start/finish record submission.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/leostudiooo/GOOSE/internal/profile"
	"github.com/leostudiooo/GOOSE/internal/record"
)

const (
	defaultBaseURL = "https://tyxsjpt.seu.edu.cn"

	checkTenantPath       = "/api/miniapp/anno/checkTenant"
	checkTokenPath        = "/api/miniapp/student/checkToken"
	saveStartRecordPath   = "/api/exercise/exerciseRecord/saveStartRecord"
	saveRecordPath        = "/api/exercise/exerciseRecord/saveRecord"
	uploadStartImagePath  = "/api/miniapp/exercise/uploadRecordImage"
	uploadFinishImagePath = "/api/miniapp/exercise/uploadRecordImage2"
	listRulePath          = "/api/miniapp/exercise/listRule"

	contentTypeJSON       = "application/json;charset=UTF-8"
	contentTypeJSONSimple = "application/json"

	imageFilename = "1.jpg"
	imageMIMEType = "image/jpeg"

	successCode = 0
	// a response without a code field must never read as success
	missingCode = 1 - (1 << 31)

	minRequestDelay = 1500 * time.Millisecond
	maxRequestDelay = 3500 * time.Millisecond
)

// requestDelay samples the pause taken before every outbound call. The
// pacing keeps the tool from hammering the service; it is part of the
// protocol here, not tunable.
var requestDelay = func() time.Duration {
	return minRequestDelay + rand.N(maxRequestDelay-minRequestDelay)
}

// Client is an authenticated session bound to one header set and one
// bearer token.
type Client struct {
	http    *resty.Client
	tenant  string
	headers map[string]string
}

// New builds a client from the deployment's header set and the user's
// token. An empty baseURL selects the production service.
func New(h profile.SystemHeaders, token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:   resty.New().SetBaseURL(baseURL),
		tenant: h.Tenant,
		headers: map[string]string{
			"token":           "Bearer " + token,
			"miniappversion":  h.MiniappVersion,
			"User-Agent":      h.UserAgent,
			"tenant":          h.Tenant,
			"Referer":         h.Referer,
			"xweb_xhr":        "1",
			"Accept":          "*/*",
			"Sec-Fetch-Site":  "cross-site",
			"Sec-Fetch-Mode":  "cors",
			"Sec-Fetch-Dest":  "empty",
			"Accept-Encoding": "gzip, deflate, br",
			"Accept-Language": "zh-CN,zh;q=0.9",
		},
	}
}

// CheckTenant validates the tenant code without authentication.
func (c *Client) CheckTenant(ctx context.Context) error {
	headers := c.headerSet("tenant", "token")
	headers["Content-Type"] = contentTypeJSON

	_, err := c.call(ctx, http.MethodPost, checkTenantPath, func(req *resty.Request) {
		req.SetHeaders(headers).
			SetQueryParam("tenantCode", c.tenant).
			SetBody(map[string]any{})
	})
	if err != nil {
		return &ClientError{Desc: "checking tenant", Err: err}
	}
	return nil
}

// CheckToken validates that the server still accepts the bearer token.
func (c *Client) CheckToken(ctx context.Context) error {
	headers := c.headerSet()
	headers["Content-Type"] = contentTypeJSONSimple

	_, err := c.call(ctx, http.MethodGet, checkTokenPath, func(req *resty.Request) {
		req.SetHeaders(headers).SetQueryParam("para", "undefined")
	})
	if err != nil {
		return &ClientError{Desc: "checking token", Err: err}
	}
	return nil
}

// UploadStartImage uploads the picture proving the session start and
// returns the server-assigned URL.
func (c *Client) UploadStartImage(ctx context.Context, image []byte) (string, error) {
	url, err := c.uploadImage(ctx, image, uploadStartImagePath)
	if err != nil {
		return "", &ClientError{Desc: "uploading start image", Err: err}
	}
	return url, nil
}

// UploadFinishImage uploads the picture proving the session end and
// returns the server-assigned URL.
func (c *Client) UploadFinishImage(ctx context.Context, image []byte) (string, error) {
	url, err := c.uploadImage(ctx, image, uploadFinishImagePath)
	if err != nil {
		return "", &ClientError{Desc: "uploading finish image", Err: err}
	}
	return url, nil
}

func (c *Client) uploadImage(ctx context.Context, image []byte, path string) (string, error) {
	body, err := c.call(ctx, http.MethodPost, path, func(req *resty.Request) {
		req.SetHeaders(c.headerSet()).
			SetMultipartField("file", imageFilename, imageMIMEType, bytes.NewReader(image))
	})
	if err != nil {
		return "", err
	}

	var url string
	if len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, &url); err != nil {
			return "", fmt.Errorf("unreadable image URL in response: %w", err)
		}
	}
	return url, nil
}

// SubmitStart creates the record in started state and returns the
// server-issued record id the finish call must reference.
func (c *Client) SubmitStart(ctx context.Context, payload record.StartPayload) (string, error) {
	body, err := c.submitRecord(ctx, saveStartRecordPath, payload)
	if err != nil {
		return "", &ClientError{Desc: "submitting start record", Err: err}
	}

	var id string
	if len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, &id); err != nil {
			return "", &ClientError{
				Desc: "submitting start record",
				Err:  fmt.Errorf("unreadable record id in response: %w", err),
			}
		}
	}
	return id, nil
}

// SubmitFinish completes a previously started record. The payload must
// carry the id returned by SubmitStart in this same run.
func (c *Client) SubmitFinish(ctx context.Context, payload record.FinishPayload) (bool, error) {
	if payload.ID == "" {
		return false, &ClientError{
			Desc: "submitting finish record",
			Err:  errors.New("no record id: the record was never started"),
		}
	}

	body, err := c.submitRecord(ctx, saveRecordPath, payload)
	if err != nil {
		return false, &ClientError{Desc: "submitting finish record", Err: err}
	}

	var ok bool
	if len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, &ok); err != nil {
			return false, &ClientError{
				Desc: "submitting finish record",
				Err:  fmt.Errorf("unreadable result in response: %w", err),
			}
		}
	}
	return ok, nil
}

func (c *Client) submitRecord(ctx context.Context, path string, payload any) (*apiResponse, error) {
	headers := c.headerSet()
	headers["Content-Type"] = contentTypeJSON

	return c.call(ctx, http.MethodPost, path, func(req *resty.Request) {
		req.SetHeaders(headers).SetBody(payload)
	})
}

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Code *int            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// call pauses, sends one request and checks the envelope. Outbound
// requests are strictly sequential; the server's two-phase ordering
// depends on it.
func (c *Client) call(ctx context.Context, method, path string, build func(*resty.Request)) (*apiResponse, error) {
	if err := c.pause(ctx); err != nil {
		return nil, err
	}

	req := c.http.R().SetContext(ctx)
	build(req)

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	var body apiResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("undecodable response from '%s': %w", path, err)
	}

	code := missingCode
	if body.Code != nil {
		code = *body.Code
	}
	if code != successCode {
		respErr := &ResponseError{Endpoint: path, Code: code, Msg: body.Msg}
		if resp.IsError() {
			return nil, fmt.Errorf("'%s' answered HTTP status %d: %w", path, resp.StatusCode(), respErr)
		}
		return nil, respErr
	}

	if resp.IsError() {
		return nil, fmt.Errorf("'%s' answered HTTP status %d", path, resp.StatusCode())
	}
	return &body, nil
}

func (c *Client) pause(ctx context.Context) error {
	timer := time.NewTimer(requestDelay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// headerSet copies the session headers, dropping the named ones.
func (c *Client) headerSet(drop ...string) map[string]string {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	for _, k := range drop {
		delete(headers, k)
	}
	return headers
}
