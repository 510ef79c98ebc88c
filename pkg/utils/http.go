package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

const maxErrorBody = 8192

// JSONRequest sends body (if any) as JSON and decodes the response into dest (if any).
// The request is bounded by timeout and by ctx's deadline, whichever comes first.
func JSONRequest(ctx context.Context, client *fasthttp.Client, method, url string, timeout time.Duration, body any, dest any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(b)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := client.DoDeadline(req, resp, deadline); err != nil {
		return err
	}

	data := resp.Body()
	if resp.StatusCode() >= 400 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return fmt.Errorf("request failed: status=%d body=%s", resp.StatusCode(), string(data))
	}

	if dest != nil {
		return json.Unmarshal(data, dest)
	}
	return nil
}
