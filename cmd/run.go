package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"tally/api"
	apimiddleware "tally/api/middleware"
	v1 "tally/api/v1"
	"tally/auth"
	"tally/config"
	"tally/database"
	"tally/events"
	"tally/repository"
	"tally/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting tally server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize event bus and logging subscribers
	eventBus := events.NewBus()
	subscribeLogging(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	userService := service.NewUserService(uowFactory)
	roomService := service.NewRoomService(uowFactory)
	roundService := service.NewRoundService(uowFactory)

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.HTTPErrorHandler
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	root := e.Group("/api/v1")
	v1.NewAuthHandler(userService, tokens).RegisterRoutes(root.Group("/auth"))

	users := root.Group("/users")
	users.Use(apimiddleware.JWT(tokens))
	v1.NewUserHandler(userService).RegisterRoutes(users)

	rooms := root.Group("/rooms")
	rooms.Use(apimiddleware.JWT(tokens))
	v1.NewRoomHandler(roomService).RegisterRoutes(rooms)

	sessions := root.Group("/sessions")
	sessions.Use(apimiddleware.JWT(tokens))
	v1.NewRoundHandler(roundService).RegisterRoutes(rooms, sessions)

	// Start the server
	errChan := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Infof("Server is running in %s mode", cfg.Environment)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Give in-flight requests time to complete
	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown error")
	}

	log.Info("Shutdown completed")
	return nil
}

// subscribeLogging attaches structured-log handlers to the domain events
func subscribeLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeRoomCreated, func(ctx context.Context, event events.Event) {
		e := event.(events.RoomCreatedEvent)
		log.WithFields(log.Fields{
			"roomId":  e.RoomID,
			"ownerId": e.OwnerID,
		}).Info("Room created")
	})

	bus.Subscribe(events.EventTypeMemberJoined, func(ctx context.Context, event events.Event) {
		e := event.(events.MemberJoinedEvent)
		log.WithFields(log.Fields{
			"roomId": e.RoomID,
			"userId": e.UserID,
		}).Info("Member joined room")
	})

	bus.Subscribe(events.EventTypeMemberKicked, func(ctx context.Context, event events.Event) {
		e := event.(events.MemberKickedEvent)
		log.WithFields(log.Fields{
			"roomId":   e.RoomID,
			"userId":   e.UserID,
			"kickedBy": e.KickedBy,
		}).Info("Member removed from room")
	})

	bus.Subscribe(events.EventTypeRoundSubmitted, func(ctx context.Context, event events.Event) {
		e := event.(events.RoundSubmittedEvent)
		log.WithFields(log.Fields{
			"gameSessionId": e.GameSessionID,
			"roomId":        e.RoomID,
			"entryCount":    e.EntryCount,
		}).Info("Round submitted")
	})

	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		e := event.(events.BalanceChangeEvent)
		log.WithFields(log.Fields{
			"userId":       e.UserID,
			"roomId":       e.RoomID,
			"changeAmount": e.ChangeAmount,
			"result":       e.Result,
		}).Debug("Balance changed")
	})

	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, event events.Event) {
		e := event.(events.UserRegisteredEvent)
		log.WithField("userId", e.UserID).Info("User registered")
	})
}
