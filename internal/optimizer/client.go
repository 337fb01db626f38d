package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qs3c/stockopt_go_server/internal/catalog"
)

// BatchRequest 一个批次的请求体
type BatchRequest struct {
	JobID        int64               `json:"job_id"`
	HorizonDays  int                 `json:"horizon_days,omitempty"`
	ServiceLevel float64             `json:"service_level,omitempty"`
	Items        []*catalog.Snapshot `json:"items"`
}

// Client 远程优化引擎的 HTTP 客户端。
// 每个批次只调用一次，不做重试：引擎算一批要几十秒，卡住的请求
// 重发只会雪上加霜，超时直接算本批失败。
type Client struct {
	url  string
	http *http.Client
}

func NewClient(baseURL, path string, timeout time.Duration) *Client {
	return &Client{
		url:  strings.TrimRight(baseURL, "/") + path,
		http: &http.Client{Timeout: timeout},
	}
}

// Optimize 同步调用优化引擎并返回规整后的结果行。
// 网络错误、非 2xx、响应不是合法 JSON 都视为本批次失败。
func (c *Client) Optimize(ctx context.Context, req *BatchRequest) ([]*ResultRow, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal optimize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build optimize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call optimizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("optimizer returned %d: %s", resp.StatusCode, string(snippet))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read optimizer response: %w", err)
	}

	return Normalize(data)
}
