package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	syncUC "github.com/progresssync/backend/usecase/sync"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// Client talks to the Todoist REST API over fasthttp.
type Client struct {
	base    string
	http    *fasthttp.Client
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: baseURL,
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		timeout: timeout,
	}
}

type remoteTask struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"is_completed"`
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]syncUC.RemoteTask, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, "/tasks", token, nil)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("decode todoist response: %w", err)
	}

	tasks := make([]syncUC.RemoteTask, 0, len(raws))
	for _, raw := range raws {
		var rt remoteTask
		if err := json.Unmarshal(raw, &rt); err != nil {
			return nil, fmt.Errorf("decode todoist task: %w", err)
		}
		tasks = append(tasks, syncUC.RemoteTask{
			ID:        rt.ID,
			Content:   rt.Content,
			Completed: rt.IsCompleted,
			Raw:       raw,
		})
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token, content string) (*syncUC.RemoteTask, error) {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, fasthttp.MethodPost, "/tasks", token, payload)
	if err != nil {
		return nil, err
	}

	var rt remoteTask
	if err := json.Unmarshal(body, &rt); err != nil {
		return nil, fmt.Errorf("decode todoist response: %w", err)
	}
	return &syncUC.RemoteTask{
		ID:        rt.ID,
		Content:   rt.Content,
		Completed: rt.IsCompleted,
		Raw:       body,
	}, nil
}

func (c *Client) CloseTask(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, fasthttp.MethodPost, fmt.Sprintf("/tasks/%s/close", id), token, nil)
	return err
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, fasthttp.MethodDelete, fmt.Sprintf("/tasks/%s", id), token, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.base + path)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("todoist request: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("todoist responded %d", status)
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

var _ syncUC.RemoteClient = (*Client)(nil)
