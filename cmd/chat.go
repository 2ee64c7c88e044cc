package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/skilllink-cli/internal/adapters/realtime"
	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/bnema/skilllink-cli/internal/adapters/render/style"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/obs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

func newChatCmd(app *app) *cobra.Command {
	var metricsAddr string
	var history bool

	cmd := &cobra.Command{
		Use:   "chat <task-id>",
		Short: "Join a task room and chat in real time",
		Long:  "chat prints the task history, then streams new messages. Every line typed on stdin is sent to the room. When the realtime channel is down, lines are posted over HTTP instead.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				shutdown, err := serveMetrics(app, metricsAddr)
				if err != nil {
					return err
				}
				defer shutdown()
			}

			return runChat(ctx, cmd, app, args[0], history)
		},
	}

	cmd.Flags().BoolVar(&history, "history", true, "Print earlier messages before joining")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while chatting")

	return cmd
}

type chatSession struct {
	app    *app
	taskID string
	selfID string
	styles style.Styles

	mu  sync.Mutex
	out io.Writer
}

func (c *chatSession) print(message domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, listing.ChatLine(message, c.selfID, c.styles))
}

func runChat(ctx context.Context, cmd *cobra.Command, app *app, taskID string, history bool) error {
	user, err := app.currentUser(ctx)
	if err != nil {
		return err
	}

	chat := &chatSession{
		app:    app,
		taskID: taskID,
		selfID: user.ID,
		styles: app.styles(ctx),
		out:    cmd.OutOrStdout(),
	}

	if history {
		messages, err := app.client.Messages.History(ctx, taskID)
		if err != nil {
			return fmt.Errorf("fetch messages for task %s: %w", taskID, err)
		}
		for _, message := range messages {
			chat.print(message)
		}
	}

	manager, err := app.newManager()
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Stop(); err != nil {
			app.logger.WithError(err).Debug("stop realtime channel")
		}
	}()

	channel := manager.Channel()
	messages := channel.OnMessage(func(message domain.Message) {
		if message.TaskID == taskID {
			chat.print(message)
		}
	})
	defer messages.Unsubscribe()
	states := channel.OnStateChange(func(state domain.ChannelState) {
		app.logger.WithField("state", state.String()).Debug("realtime channel state")
	})
	defer states.Unsubscribe()

	if err := manager.Start(ctx); err != nil {
		app.notifier.Error(fmt.Sprintf("Realtime unavailable, sending over HTTP: %v", err))
	}
	if err := channel.JoinRoom(ctx, taskID); err != nil {
		app.logger.WithError(err).Warn("join task room")
	}

	lines := make(chan string)
	go scanLines(ctx, cmd.InOrStdin(), lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			content := strings.TrimSpace(line)
			if content == "" {
				continue
			}
			if err := chat.send(ctx, manager, content); err != nil {
				app.notifier.Error(err.Error())
			}
		}
	}
}

// send prefers the realtime channel, reconnecting once after a drop, and
// posts over HTTP when the channel stays down.
func (c *chatSession) send(ctx context.Context, manager *realtime.Manager, content string) error {
	channel := manager.Channel()

	err := channel.Send(ctx, c.taskID, content)
	if errors.Is(err, domain.ErrNotConnected) {
		if reconnectErr := manager.Reconnect(ctx); reconnectErr == nil {
			if joinErr := channel.JoinRoom(ctx, c.taskID); joinErr == nil {
				err = channel.Send(ctx, c.taskID, content)
			}
		}
	}
	if err == nil {
		return nil
	}

	c.app.logger.WithError(err).Debug("realtime send failed, falling back to http")
	message, err := c.app.client.Messages.Send(ctx, c.taskID, content)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	c.print(message)
	return nil
}

func scanLines(ctx context.Context, in io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// serveMetrics exposes the gateway metrics until the returned func is called.
func serveMetrics(app *app, addr string) (func(), error) {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Method(http.MethodGet, "/metrics", obs.Handler(app.registry))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}

	server := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.WithError(err).Warn("metrics server stopped")
		}
	}()
	app.logger.WithField("addr", listener.Addr().String()).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
