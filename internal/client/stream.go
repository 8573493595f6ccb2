package client

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
)

// StreamEvent is one server-sent event of the lap stream.
type StreamEvent struct {
	Name string
	Data []byte
}

// StreamLaps follows /api/laps/stream and calls handle for every event
// until ctx is done or the server closes the stream. The request has
// no client timeout.
func (c *Client) StreamLaps(ctx context.Context, handle func(StreamEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/laps/stream", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("open lap stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	c.logger.Debug().Msg("lap stream opened")

	err = readEvents(bufio.NewScanner(resp.Body), handle)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func readEvents(scanner *bufio.Scanner, handle func(StreamEvent)) error {
	var (
		name string
		data []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" || len(data) > 0 {
				handle(StreamEvent{Name: name, Data: []byte(strings.Join(data, "\n"))})
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return scanner.Err()
}
