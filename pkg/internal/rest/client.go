package rest

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"github.com/valyala/fasthttp"
)

type Options struct {
	BaseURL string `validate:"required,url"`
	Token   string
	Timeout time.Duration
}

var validate = validator.New()

func OptionsFromConfig() (Options, error) {
	opts := Options{
		BaseURL: viper.GetString("rest.base_url"),
		Token:   viper.GetString("rest.token"),
		Timeout: viper.GetDuration("rest.timeout"),
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if err := validate.Struct(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// Client covers the plain request/response collaborators of the sync core:
// history pages, direct channel lists, reading anchors. Idempotent calls,
// JSON bodies, nothing stateful.
type Client struct {
	opts Options
	http *fasthttp.Client
}

func NewClient(opts Options) *Client {
	return &Client{
		opts: opts,
		http: &fasthttp.Client{
			ReadTimeout:  opts.Timeout,
			WriteTimeout: opts.Timeout,
		},
	}
}

func (c *Client) do(method string, path string, body any, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.opts.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if len(c.opts.Token) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.opts.Token))
	}

	if body != nil {
		raw, err := jsoniter.Marshal(body)
		if err != nil {
			return err
		}
		req.SetBody(raw)
	}

	if err := c.http.DoTimeout(req, resp, c.opts.Timeout); err != nil {
		return err
	}

	if code := resp.StatusCode(); code >= 400 {
		return fmt.Errorf("request to %s failed with status %d", path, code)
	}

	if out != nil {
		return jsoniter.Unmarshal(resp.Body(), out)
	}

	return nil
}

func (c *Client) get(path string, out any) error {
	return c.do(fasthttp.MethodGet, path, nil, out)
}

func (c *Client) post(path string, body any, out any) error {
	return c.do(fasthttp.MethodPost, path, body, out)
}
