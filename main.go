package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"atomgram-service/blob"
	"atomgram-service/config"
	"atomgram-service/controller"
	"atomgram-service/database"
	"atomgram-service/event"
	"atomgram-service/hub"
	"atomgram-service/messenger"
	"atomgram-service/presence"
	"atomgram-service/router"
	"atomgram-service/socketio"
	"atomgram-service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetPrefix("atomgram-service: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "atomgram-service",
	})

	rest.Use(cors.New())

	database.RedisConnect()
	database.PostgresConnect()

	if event.Enabled() {
		event.RabbitMQConnect([]string{
			event.NotificationsQueue,
		})
	}

	uploadsDir := config.Config("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}
	blobs, err := blob.NewStore(uploadsDir)
	if err != nil {
		panic(fmt.Sprintf("failed to open blob store: %v", err))
	}

	st := store.NewGorm(database.Postgres)
	fanout := hub.New()
	svc := messenger.NewService(st, &event.Notifier{Next: fanout}, blobs, socketio.UserEmitter{})
	registry := presence.NewRegistry(fanout, st)

	controller.Init(st, svc, registry, blobs)
	router.Init(fanout, svc, registry, st)

	// Reclaim blobs orphaned while the service was down
	go startupSweep(st, blobs)

	socket := socketio.Init(rest)

	router.Rest(rest)
	router.Socket(socket)

	go rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT")))

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close(nil)
	if event.Enabled() {
		event.RabbitMQChannel.Close()
		event.RabbitMQConnection.Close()
	}
	os.Exit(0)
}

func startupSweep(st store.Store, blobs *blob.Store) {
	used := map[string]struct{}{}

	messages, err := st.FindMessagesWithFiles()
	if err != nil {
		log.Printf("startup sweep skipped: %v", err)
		return
	}
	for _, message := range messages {
		for _, file := range message.Files {
			used[file.Locator] = struct{}{}
		}
	}

	users, err := st.FindUsers()
	if err != nil {
		log.Printf("startup sweep skipped: %v", err)
		return
	}
	for _, user := range users {
		if user.Avatar != "" {
			used[user.Avatar] = struct{}{}
		}
	}

	if removed, err := blobs.Sweep(used); err == nil && removed > 0 {
		log.Printf("startup sweep removed %d orphaned blobs", removed)
	}
}
