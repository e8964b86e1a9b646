// Package main provides a simple CLI client for the pizzabot streaming API.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/stream"
)

// Client talks to the pizzabot streaming endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	threadID   string
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// No overall timeout: streamed turns are open-ended.
		httpClient: &http.Client{},
	}
}

// Send posts one message and renders the streamed reply as it arrives.
func (c *Client) Send(message string) error {
	body, err := json.Marshal(domain.MessageRequest{
		Message:  message,
		ThreadID: c.threadID,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/agent/stream", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	dec := stream.NewDecoder()
	view := dec.View()

	buf := make([]byte, 4096)
	lastShown := ""
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			render(view, &lastShown)
			if view.Done {
				break
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}

	if view.ThreadID != "" {
		c.threadID = view.ThreadID
	}
	if view.Err != "" {
		fmt.Printf("\nServer error: %s\n", view.Err)
	} else {
		fmt.Println()
	}
	return nil
}

// render repaints the current line whenever the view text changes.
func render(view *stream.View, lastShown *string) {
	text := view.Text()
	if text == *lastShown {
		return
	}
	fmt.Printf("\r\033[K%s", text)
	*lastShown = text
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Pizzabot server address")
	flag.Parse()

	log.SetFlags(log.Ltime)

	client := NewClient(*addr)

	fmt.Printf("Connected to %s\n", *addr)
	fmt.Println("Type a message and press Enter to send.")
	fmt.Println("Commands: /new to start a fresh thread, /quit to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit":
			fmt.Println("Bye!")
			return
		case "/new":
			client.threadID = ""
			fmt.Println("Started a new thread.")
			continue
		}

		start := time.Now()
		if err := client.Send(input); err != nil {
			log.Printf("Send error: %v", err)
			continue
		}
		fmt.Printf("(thread %s, %s)\n", client.threadID, time.Since(start).Round(time.Millisecond))
	}
}
