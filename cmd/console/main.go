package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chatsphere/domain"
	"chatsphere/enforcement"
	"chatsphere/internal"
	"chatsphere/lifecycle"
	"chatsphere/moderation"
	"chatsphere/repositories"
	"chatsphere/services"
	"chatsphere/sink"
)

// The console drives the full engine from stdin: create rooms, post
// messages, watch the moderation verdicts. Handy for trying out new
// patterns without spinning up the daemon.
func main() {
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatalf("database opening failed: %v", err)
	}
	defer db.Close()

	index, err := repositories.NewViolationIndex(config.BlugeFilepath, logger)
	if err != nil {
		log.Fatalf("violation index opening failed: %v", err)
	}
	defer index.Close()

	rooms := repositories.NewRoomRepository(db, logger)
	ledger := repositories.NewLedgerRepository(db, logger)
	settings := repositories.NewSettingsRepository(db)
	presence := repositories.NewStorePresenceOracle(rooms, logger)
	identity := services.NewNicknameRegistry()

	classifier, err := moderation.NewClassifier()
	if err != nil {
		log.Fatalf("classifier initialization failed: %v", err)
	}
	policy := enforcement.NewPolicy(ledger, logger)
	manager := lifecycle.NewManager(rooms, presence, identity, lifecycle.DefaultConfig(), logger)
	if err := manager.SeedOfficialRooms(); err != nil {
		log.Fatalf("official room seeding failed: %v", err)
	}
	service := services.NewRoomService(
		manager, settings, classifier, policy, index,
		sink.NewLogNotificationSink(logger), logger)

	repl(service, manager, ledger, identity, os.Stdin)
}

func repl(
	service *services.RoomService,
	manager *lifecycle.Manager,
	ledger repositories.ILedgerRepository,
	identity *services.NicknameRegistry,
	in *os.File,
) {
	fmt.Println("chatsphere console. Type 'help' for commands, 'quit' to exit.")
	scanner := bufio.NewScanner(in)
	var userID string

	for {
		fmt.Printf("[%s]> ", orAnon(userID))
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "me":
			if len(args) < 1 {
				fmt.Println("usage: me <user_id> [nickname]")
				continue
			}
			userID = args[0]
			if len(args) > 1 {
				identity.Register(userID, args[1])
			}
		case "create":
			if len(args) < 2 {
				fmt.Println("usage: create <name> <public|private>")
				continue
			}
			room, err := manager.CreateRoom(lifecycle.CreateRoomRequest{
				Name: args[0], HostID: userID, Type: domain.RoomType(args[1]),
			})
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("created", room.ID)
		case "join":
			report(oneArg(args, "join <room_id>", func(roomID string) error {
				_, err := manager.JoinRoom(roomID, userID)
				return err
			}))
		case "leave":
			report(oneArg(args, "leave <room_id>", func(roomID string) error {
				return manager.LeaveRoom(roomID, userID)
			}))
		case "post":
			if len(args) < 2 {
				fmt.Println("usage: post <room_id> <text...>")
				continue
			}
			outcome, err := service.PostMessage(args[0], domain.Message{
				ID:       uuid.New(),
				Text:     strings.Join(args[1:], " "),
				SenderID: userID,
				SentAt:   time.Now().UTC(),
			})
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("delivered=%v violations=%d\n", outcome.Delivered, len(outcome.Violations))
			for i, v := range outcome.Violations {
				fmt.Printf("  [%s/%s] %s -> %s\n", v.Type, v.Severity, v.Reason, outcome.Actions[i])
			}
		case "rooms":
			active, err := manager.ListActiveRooms()
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, r := range active {
				fmt.Printf("%s  %-20s %s (%d participants)\n", r.ID, r.Name, r.Type, len(r.Participants))
			}
		case "history":
			report(oneArg(args, "history <room_id>", func(roomID string) error {
				room, err := manager.GetRoom(roomID)
				if err != nil {
					return err
				}
				for _, m := range room.Messages {
					fmt.Printf("%s  %s: %s\n", m.SentAt.Format("15:04:05"), m.SenderID, m.Text)
				}
				return nil
			}))
		case "status":
			report(oneArg(args, "status <user_id>", func(target string) error {
				fmt.Println(ledgerStatus(ledger, target))
				return nil
			}))
		default:
			fmt.Println("unknown command, try 'help'")
		}
	}
}

func ledgerStatus(ledger repositories.ILedgerRepository, userID string) string {
	history, err := ledger.GetHistory(userID)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return fmt.Sprintf("%s: status=%s violations=%d", userID, history.Status, len(history.Violations))
}

func oneArg(args []string, usage string, fn func(string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", usage)
	}
	return fn(args[0])
}

func report(err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("ok")
}

func orAnon(userID string) string {
	if userID == "" {
		return "anon"
	}
	return userID
}

func printHelp() {
	fmt.Println(`commands:
  me <user_id> [nickname]      switch identity
  create <name> <type>         create a room (public|private)
  join <room_id>               join a room
  leave <room_id>              leave a room
  post <room_id> <text...>     post a message through moderation
  rooms                        list active rooms
  history <room_id>            print room messages
  status <user_id>             moderation status of a user
  quit`)
}
