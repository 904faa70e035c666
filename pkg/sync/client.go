// Package sync is the page-level consumer of the API: it fetches
// current state over REST first, then holds a live subscription and
// merges pushed updates into the local copy. Fetch happens before
// subscribe; events published before the subscription are never
// replayed.
package sync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type apiEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type apiError struct {
	Message string `json:"message"`
}

func getJSON(httpc *http.Client, url string, out any) error {
	resp, err := httpc.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func postJSON(httpc *http.Client, url string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := httpc.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// dialSocket connects to the /ws endpoint of an http(s) base URL and
// joins one room.
func dialSocket(baseURL, joinType, id string) (*websocket.Conn, error) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(joinMsg{Type: joinType, ID: id}); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
