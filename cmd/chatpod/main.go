package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/chatpod/chatpod"
)

const rejectionMessage = "Sorry, you are not on the allow-list for this assistant."

func main() {
	user := flag.String("user", "local", "User ID to chat as")
	verbose := flag.Bool("verbose", false, "Print partial updates as they stream in")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := chatpod.LoadConfig()
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}
	if !cfg.Allowed(*user) {
		fmt.Println(rejectionMessage)
		os.Exit(1)
	}

	var transcripts chatpod.TranscriptStore = chatpod.NoopTranscripts{}
	switch {
	case cfg.PostgresDSN != "":
		store, err := chatpod.NewPostgresTranscripts(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to open transcript archive: %v", err)
		}
		transcripts = store
	case cfg.SQLitePath != "":
		store, err := chatpod.NewSQLiteTranscripts(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open transcript archive: %v", err)
		}
		transcripts = store
	}
	defer transcripts.Close()

	relay := chatpod.NewRelay(cfg, chatpod.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), transcripts)
	relay.SetLogger(logger)

	fmt.Println(chatpod.Modes["default"].Welcome)
	fmt.Println("Commands: /start /python /cpp /japanese /academic /mode <persona> /model; 'clear' wipes history, 'exit' quits.")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Sentinels map to a plain reset, never to a model call.
		if line == "clear" || line == "exit" {
			relay.Reset(*user)
			fmt.Println("Chat history cleared, now let's start over!")
			if line == "exit" {
				return
			}
			continue
		}

		if strings.HasPrefix(line, "/") {
			handleCommand(relay, *user, line)
			continue
		}

		for update := range relay.Message(ctx, *user, line) {
			switch update.Kind {
			case chatpod.UpdatePartial:
				if *verbose {
					fmt.Println(update.Text + "...")
				}
			case chatpod.UpdateFinal, chatpod.UpdateError:
				fmt.Println(update.Text)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
}

func handleCommand(relay *chatpod.Relay, user, line string) {
	cmd, rest, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	switch cmd {
	case "start":
		cmd = "default"
		fallthrough
	case "default", "python", "cpp", "japanese", "academic":
		mode, err := relay.SetMode(user, cmd)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(mode.Welcome)
	case "mode":
		if err := relay.SetCustomMode(user, rest); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Custom mode set! The assistant will stay in character from now on.")
	case "model":
		fmt.Printf("Switched to %s.\n", relay.ToggleModel(user))
	default:
		fmt.Printf("Unknown command: /%s\n", cmd)
	}
}
