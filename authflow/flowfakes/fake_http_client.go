package flowfakes

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-auth-client/authflow"
	"github.com/pkg/errors"
)

var _ authflow.HTTPClient = (*FakeHTTPClient)(nil)

// FakeHTTPClient is a scripted transport for tests. It captures each
// request (including the submitted form body) and replies with the
// configured status, body, or transport error.
type FakeHTTPClient struct {
	StatusCode int
	Body       []byte
	Err        error

	lock         sync.Mutex
	doCalls      int
	lastRequest  *http.Request
	lastFormBody string
}

func NewFakeHTTPClient(statusCode int, body []byte, err error) *FakeHTTPClient {
	return &FakeHTTPClient{
		StatusCode: statusCode,
		Body:       body,
		Err:        err,
	}
}

func (c *FakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.doCalls++
	c.lastRequest = req
	if req.Body != nil {
		formBody, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "FakeHTTPClient read request body")
		}
		c.lastFormBody = string(formBody)
	}
	if c.Err != nil {
		return nil, c.Err
	}
	statusCode := c.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	return &http.Response{
		StatusCode: statusCode,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(c.Body)),
		Request:    req,
	}, nil
}

func (c *FakeHTTPClient) DoCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.doCalls
}

func (c *FakeHTTPClient) LastRequest() *http.Request {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastRequest
}

func (c *FakeHTTPClient) LastFormBody() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastFormBody
}
