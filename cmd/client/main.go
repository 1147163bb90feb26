package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"alumnet/client"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Terminal companion: polls the open conversation and the notification
// feed the way a real client view would, and renders what it sees.
func main() {
	_ = godotenv.Load()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}
	logger := logs.GetLoggerFromLevel(slog.LevelWarn)

	api := client.New(config.ServerURL, config.Token, config.HTTPTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	cursor := ""
	lastUnread := -1

	var pollers []*client.Poller

	if config.PeerID != "" {
		conversation := client.NewPoller(config.PollInterval, func(ctx context.Context) error {
			mu.Lock()
			current := cursor
			mu.Unlock()

			messages, next, err := api.History(ctx, config.PeerID, current)
			if err != nil {
				return err
			}
			mu.Lock()
			cursor = next
			mu.Unlock()

			if len(messages) > 0 {
				renderMessages(messages)
			}
			return nil
		}, logger)
		pollers = append(pollers, conversation)
	}

	notifications := client.NewPoller(config.PollInterval, func(ctx context.Context) error {
		unread, err := api.UnreadCount(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		changed := unread != lastUnread
		lastUnread = unread
		mu.Unlock()

		if changed {
			color.Info.Printf("unread notifications: %d\n", unread)
		}
		return nil
	}, logger)
	pollers = append(pollers, notifications)

	var wg sync.WaitGroup
	for _, p := range pollers {
		wg.Add(1)
		go func(p *client.Poller) {
			defer wg.Done()
			_ = p.Run(ctx)
		}(p)
	}

	color.Comment.Println("polling... press Ctrl-C to quit")
	wg.Wait()
}

func renderMessages(messages []client.Message) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "From", "Type", "Read", "Content"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, m := range messages {
		read := ""
		if m.IsRead {
			read = "✓"
		}
		table.Append([]string{m.CreatedAt, shorten(m.SenderID), m.Type, read, m.Content})
	}
	table.Render()
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
