package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eleven-am/voice-client/internal/bootstrap"
	"github.com/eleven-am/voice-client/internal/realtime"
	"github.com/eleven-am/voice-client/internal/session"
)

func main() {
	cfg := bootstrap.LoadConfig()
	log := bootstrap.NewLogger()

	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is required")
		os.Exit(1)
	}

	client, cleanup := bootstrap.BuildClient(cfg, log)
	defer cleanup()

	sess := session.New(client, sessionConfig(cfg), printTurn, log)
	sess.Attach()

	client.Subscribe(realtime.EventTypeClose, func(ev realtime.Event) {
		log.Info("connection closed", "code", ev.Int("code"), "reason", ev.Str("reason"))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Connect(ctx); err != nil {
		log.Error("connect failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("connected. speak, or type a message and press enter (ctrl-c to quit)")

	go readStdin(ctx, sess)

	<-ctx.Done()
	fmt.Println("\nshutting down")
}

func sessionConfig(cfg *bootstrap.Config) session.SessionConfig {
	sc := session.DefaultConfig()
	sc.Voice = cfg.Voice
	sc.Instructions = cfg.Instructions
	return sc
}

func printTurn(role, text string) {
	fmt.Printf("[%s] %s\n", role, text)
}

func readStdin(ctx context.Context, sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := sess.SendText(line); err != nil {
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		}
	}
}
