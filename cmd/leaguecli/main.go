package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fantasyleague/leagueclient/activity"
	"github.com/fantasyleague/leagueclient/auth"
	"github.com/fantasyleague/leagueclient/internal/config"
	"github.com/fantasyleague/leagueclient/internal/utils"
	"github.com/fantasyleague/leagueclient/leagueapi"
	"github.com/fantasyleague/leagueclient/sessions"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	// No .env file just means system env vars.
	_ = godotenv.Load()
	cfg := config.Load()
	displayAppname(cfg.AppName)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer store.Close()

	api := leagueapi.NewClient(cfg.APIBaseURL,
		leagueapi.WithBasePath(cfg.APIBasePath),
		leagueapi.WithLogger(logger),
	)
	svc, err := auth.New(store, api, auth.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating session service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	tracker := activity.New(svc, activity.WithLogger(logger))
	svc.OnChange(func(s *sessions.Session) {
		if s == nil {
			tracker.Stop()
		} else {
			tracker.Start()
		}
	})
	if svc.IsAuthenticated() {
		tracker.Start()
		fmt.Printf("Sesión activa: %s\n", svc.Current().Email)
	}

	return promptLoop(ctx, svc, tracker)
}

func openStore(cfg config.AppConfig, logger zerolog.Logger) (sessions.Store, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})
		return sessions.NewRedisStore(client, sessions.WithRedisLogger(logger))
	}
	dir := cfg.StoreDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		dir = filepath.Join(base, "leagueclient")
	}
	return sessions.NewFileStore(dir, sessions.WithFileLogger(logger))
}

func promptLoop(ctx context.Context, svc *auth.Service, tracker *activity.Tracker) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("Comandos: login, logout, whoami, unlock, confirm, setpass, quit")
	for ctx.Err() == nil {
		input, err := line.Prompt("league> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		// Every keystroke that produced a line counts as activity.
		tracker.Signal(activity.KindKeyboard)

		switch strings.TrimSpace(input) {
		case "login":
			doLogin(ctx, svc, line)
		case "logout":
			svc.LogoutContext(ctx)
			fmt.Println("Sesión cerrada.")
		case "whoami":
			doWhoami(svc)
		case "unlock":
			doUnlock(ctx, svc, line)
		case "confirm":
			doConfirm(ctx, svc, line)
		case "setpass":
			doSetPassword(ctx, svc, line)
		case "quit", "exit":
			return nil
		case "":
		default:
			fmt.Println("Comando desconocido.")
		}
	}
	return nil
}

func doLogin(ctx context.Context, svc *auth.Service, line *liner.State) {
	email, err := line.Prompt("Correo: ")
	if err != nil {
		return
	}
	password, err := line.PasswordPrompt("Contraseña: ")
	if err != nil {
		return
	}
	res := svc.LoginContext(ctx, strings.TrimSpace(email), password)
	if !res.OK {
		fmt.Println(res.Message)
		if res.Status == auth.StatusLocked {
			fmt.Println("Usa el comando 'unlock' para solicitar un enlace de desbloqueo.")
		}
		return
	}
	fmt.Printf("Sesión iniciada como %s\n", svc.Current().Email)
	if redirect := utils.Value(res.Data).RedirectTo; redirect != "" {
		fmt.Printf("Destino: %s\n", redirect)
	}
}

func doWhoami(svc *auth.Service) {
	sess := svc.Current()
	if sess == nil {
		fmt.Println("Sin sesión activa.")
		return
	}
	fmt.Printf("%s (id %s), última actividad %s\n", sess.Email, sess.UserID, sess.LastActivity.Format("15:04:05"))
}

func doUnlock(ctx context.Context, svc *auth.Service, line *liner.State) {
	email, err := line.Prompt("Correo: ")
	if err != nil {
		return
	}
	res := svc.RequestUnlock(ctx, strings.TrimSpace(email))
	fmt.Println(res.Message)
}

func doConfirm(ctx context.Context, svc *auth.Service, line *liner.State) {
	token, err := line.Prompt("Token: ")
	if err != nil {
		return
	}
	res := svc.ConfirmUnlock(ctx, strings.TrimSpace(token))
	fmt.Println(res.Message)
	if res.OK {
		fmt.Println("Ahora define una nueva contraseña con 'setpass'.")
	}
}

func doSetPassword(ctx context.Context, svc *auth.Service, line *liner.State) {
	token, err := line.Prompt("Token: ")
	if err != nil {
		return
	}
	password, err := line.PasswordPrompt("Nueva contraseña: ")
	if err != nil {
		return
	}
	confirm, err := line.PasswordPrompt("Confirmar contraseña: ")
	if err != nil {
		return
	}
	if password != confirm {
		fmt.Println("Las contraseñas no coinciden.")
		return
	}
	res := svc.SetNewPassword(ctx, strings.TrimSpace(token), password)
	fmt.Println(res.Message)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
