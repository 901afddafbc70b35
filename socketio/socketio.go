package socketio

import (
	"context"
	"time"

	"atomgram-service/config"
	"atomgram-service/database"
	"atomgram-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	elog "github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/socket.io-go-redis/adapter"
	r_type "github.com/zishang520/socket.io-go-redis/types"
	"github.com/zishang520/socket.io/v2/socket"
)

var server *socket.Server

func Init(app *fiber.App) *socket.Server {
	elog.DEBUG = config.Config("SOCKET_DEBUG") == "TRUE"

	options := socket.DefaultServerOptions()
	options.SetServeClient(true)
	options.SetAllowEIO3(true)
	options.SetPingInterval(25 * time.Second)
	options.SetPingTimeout(20 * time.Second)
	options.SetMaxHttpBufferSize(100000000)
	options.SetConnectTimeout(5 * time.Second)
	options.SetAdapter(&adapter.RedisAdapterBuilder{
		Redis: r_type.NewRedisClient(context.Background(), database.Redis[1]),
		Opts:  &adapter.RedisAdapterOptions{},
	})

	server = socket.NewServer(nil, nil)

	// Identity is bound once per connection from the access token;
	// unauthenticated sockets connect but never receive a session.
	server.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		token, auth := client.Conn().Request().Query().Get("token")

		if auth {
			claims, err := utils.CheckAndExtractTokenMetadata(token, "JWT_ACCESS_KEY")

			if err == nil {
				if !claims.Otp {
					client.Join(socket.Room(claims.Id))
					client.SetData(claims)
				}
			}
		}

		next(nil)
	})

	app.Get("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))
	app.Post("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))

	return server
}

// Emit targets all sockets of one user id through its room; the redis
// adapter carries the emit to sockets on other nodes.
func Emit(id string, event string, message any) {
	server.To(socket.Room(id)).Emit(event, message)
}

// UserEmitter adapts Emit to the messenger's per-user notifications.
type UserEmitter struct{}

func (UserEmitter) NotifyUser(userID string, event string, payload interface{}) {
	Emit(userID, event, payload)
}
