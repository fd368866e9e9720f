package main

import (
	"bufio"
	"chat-broadcaster/infrastructure/http/server"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run signs up, prints the history, then follows the live stream while
// every line typed on stdin is posted to the channel.
func run() (int, error) {
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(config.ServerURL)
	if err != nil {
		return exitConfig, err
	}
	printer := Printer{Colours: config.Colours}

	session, err := client.SignUp(ctx, config.UserName)
	if err != nil {
		return exitRuntime, err
	}
	log.Info("Signed up", "user_id", session.UserID, "user_name", session.UserName)

	history, err := client.History(ctx)
	if err != nil {
		return exitRuntime, err
	}
	for _, m := range history {
		fmt.Println(printer.Message(m))
	}

	events := make(chan Event, 16)
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- client.Stream(ctx, events)
	}()
	go client.forwardInput(ctx, log, os.Stdin)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return exitOK, nil
		case err := <-streamErr:
			if ctx.Err() != nil {
				return exitOK, nil
			}
			if err == nil {
				err = errors.New("stream closed by server")
			}
			return exitRuntime, err
		case e := <-events:
			line, err := printer.Event(e)
			if err != nil {
				log.Warn("Skipping malformed event", "event", e.Name, "error", err)
				continue
			}
			fmt.Println(line)
		}
	}
}

type Client struct {
	base *url.URL
	http *http.Client
}

func newClient(serverURL string) (*Client, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: base, http: &http.Client{Jar: jar}}, nil
}

func (c *Client) url(path string) string {
	return c.base.JoinPath(path).String()
}

func (c *Client) SignUp(ctx context.Context, name string) (server.SessionDTO, error) {
	var session server.SessionDTO
	err := c.getJSON(ctx, "/chat/signup/"+url.PathEscape(name), &session)
	return session, err
}

func (c *Client) History(ctx context.Context) ([]server.MessageDTO, error) {
	var messages []server.MessageDTO
	err := c.getJSON(ctx, "/chat/history", &messages)
	return messages, err
}

func (c *Client) Send(ctx context.Context, text string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/chat/send"), strings.NewReader(text))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Stream blocks until the server closes the stream or ctx is done.
func (c *Client) Stream(ctx context.Context, out chan<- Event) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/chat"), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	return readEvents(ctx, resp.Body, out)
}

func (c *Client) forwardInput(ctx context.Context, log *slog.Logger, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := c.Send(sendCtx, text); err != nil {
			log.Error("Sending message failed", "error", err)
		}
		cancel()
	}
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	var body server.ErrorDTO
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("unexpected status %s", resp.Status)
}
