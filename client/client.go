package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is the thin HTTP client used by the terminal tooling and the
// presence poller. It speaks the server's JSON wire types verbatim.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	IsRead     bool   `json:"isRead"`
	CreatedAt  string `json:"createdAt"`
}

type historyResponse struct {
	Messages []Message `json:"messages"`
	Cursor   string    `json:"cursor"`
}

// History fetches the conversation window after the given cursor. An empty
// cursor reads from the beginning.
func (c *Client) History(ctx context.Context, otherUserID, cursor string) ([]Message, string, error) {
	query := url.Values{"otherUserId": {otherUserID}}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var response historyResponse
	if err := c.get(ctx, "/messages", query, &response); err != nil {
		return nil, cursor, err
	}
	next := response.Cursor
	if next == "" {
		next = cursor
	}
	return response.Messages, next, nil
}

type unreadResponse struct {
	Unread int `json:"unread"`
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var response unreadResponse
	if err := c.get(ctx, "/notifications/unread-count", nil, &response); err != nil {
		return 0, err
	}
	return response.Unread, nil
}

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

type notificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	query := url.Values{}
	if unreadOnly {
		query.Set("unreadOnly", "true")
	}
	var response notificationsResponse
	if err := c.get(ctx, "/notifications", query, &response); err != nil {
		return nil, err
	}
	return response.Notifications, nil
}

type Connection struct {
	ID        string `json:"id"`
	PeerID    string `json:"peerId"`
	Initiator bool   `json:"initiator"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type connectionsResponse struct {
	Connections []Connection `json:"connections"`
}

func (c *Client) Connections(ctx context.Context, status string) ([]Connection, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var response connectionsResponse
	if err := c.get(ctx, "/connections", query, &response); err != nil {
		return nil, err
	}
	return response.Connections, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+c.token)

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", response.StatusCode, path)
	}
	return json.NewDecoder(response.Body).Decode(out)
}
