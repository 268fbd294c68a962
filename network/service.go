package network

import (
	"fmt"
	"net/http"

	"gitee.com/kxapp/kxapp-common/httpz"
	"gitee.com/kxapp/kxapp-common/httpz/cookiejar"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request describes one HTTP round trip. Body may be nil, a string, or any
// value the transport can serialize as JSON.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Response carries the metadata of a completed round trip. The body is
// returned separately so callers that only want headers don't hold it.
type Response struct {
	StatusCode int
	Header     http.Header
}

// Service is the transport collaborator. RequestData performs no status
// validation: every status code is handed back to the caller together with
// the raw body. RequestVoid reports transport failures only.
type Service interface {
	RequestData(req Request) ([]byte, *Response, error)
	RequestVoid(req Request) error
}

// StatusError is returned by RequestObject when the server answers with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("network: unexpected status %d: %s", e.StatusCode, string(e.Body))
}

// DecodeError wraps a JSON decode failure together with the offending body.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("network: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RequestObject performs req, requires a 2xx status and decodes the JSON
// body into T.
func RequestObject[T any](s Service, req Request) (T, error) {
	var out T
	data, resp, err := s.RequestData(req)
	if err != nil {
		return out, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &StatusError{StatusCode: resp.StatusCode, Body: data}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &DecodeError{Body: data, Err: err}
	}
	return out, nil
}

// HTTPService is the production Service. All requests share one cookie-jar
// backed http.Client so that tokens issued mid-flow are echoed on the
// requests that follow.
type HTTPService struct {
	client *http.Client
}

func NewHTTPService() *HTTPService {
	jar, _ := cookiejar.New(nil)
	return &HTTPService{client: httpz.NewHttpClient(jar)}
}

func (s *HTTPService) RequestData(req Request) ([]byte, *Response, error) {
	r := s.do(req)
	if r.HasError() {
		return nil, nil, r.Error
	}
	return r.Body, &Response{StatusCode: r.Status, Header: r.Header}, nil
}

func (s *HTTPService) RequestVoid(req Request) error {
	r := s.do(req)
	if r.HasError() {
		return r.Error
	}
	return nil
}

func (s *HTTPService) do(req Request) *httpz.HttpResponse {
	builder := httpz.NewHttpRequestBuilder(req.Method, req.URL)
	if len(req.Headers) > 0 {
		builder = builder.AddHeaders(req.Headers)
	}
	if req.Body != nil {
		builder = builder.AddBody(req.Body)
	}
	response := builder.Request(s.client)
	if response.HasError() {
		log.WithField("url", req.URL).WithError(response.Error).Debug("request failed")
	} else {
		log.WithFields(log.Fields{"url": req.URL, "status": response.Status}).Debug("request done")
	}
	return response
}

// ClearCookies drops every cookie held by the underlying client, forgetting
// any authenticated session state.
func (s *HTTPService) ClearCookies() {
	jar, _ := cookiejar.New(nil)
	s.client.Jar = jar
}
