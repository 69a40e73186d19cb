package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Goofygiraffe06/otprelay/api"
	"github.com/Goofygiraffe06/otprelay/internal/config"
	"github.com/Goofygiraffe06/otprelay/internal/i18n"
	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/manager"
	"github.com/Goofygiraffe06/otprelay/internal/provider"
	"github.com/Goofygiraffe06/otprelay/internal/sms"
	"github.com/Goofygiraffe06/otprelay/store"
)

func main() {
	f, err := logging.InitLogger(config.LogFile())
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer f.Close()
	defer logging.Sync()

	logging.InfoLog("Starting OTP relay")

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		logging.FatalLog("Failed to load locales: %v", err)
	}
	logging.DebugLog("Locales loaded: %v", bundle.Languages())

	directory, closer := openDirectory()
	defer closer.Close()

	verifier := sms.NewClient(
		config.TwilioAccountSID(),
		config.TwilioAuthToken(),
		config.TwilioVerifyServiceSID(),
		sms.WithBaseURL(config.TwilioBaseURL()),
	)

	mgr := manager.NewWorkManager()

	router := api.NewRouter(api.Deps{
		Directory:      directory,
		SMS:            verifier,
		Locales:        bundle,
		Manager:        mgr,
		AllowedOrigins: config.CORSAllowedOrigins(),
		MaxBodyBytes:   config.MaxRequestBodyBytes(),
	})

	srv := &http.Server{
		Addr:              config.ListenAddr(),
		Handler:           router,
		ReadTimeout:       config.ServerReadTimeout(),
		ReadHeaderTimeout: config.ServerReadHeaderTimeout(),
		WriteTimeout:      config.ServerWriteTimeout(),
		IdleTimeout:       config.ServerIdleTimeout(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.InfoLog("OTP relay listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.FatalLog("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logging.InfoLog("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLog("Graceful shutdown failed: %v", err)
	}
	if !manager.RunWithTimeout(shutdownCtx, config.ShutdownTimeout(), func(context.Context) { mgr.Close() }) {
		logging.WarnLog("Worker pools did not drain before the shutdown deadline")
	}
}

// openDirectory returns the user directory picked by DIRECTORY_DRIVER.
func openDirectory() (api.Directory, io.Closer) {
	switch driver := config.DirectoryDriver(); driver {
	case "sqlite":
		path := config.DirectorySQLitePath()
		if _, err := os.Stat(path); err == nil {
			if err := os.Chmod(path, 0600); err != nil {
				logging.ErrorLog("Failed to set restrictive permissions on %s: %v", path, err)
			}
		}
		dir, err := store.NewSQLiteDirectory(path)
		if err != nil {
			logging.FatalLog("Failed to open SQLite directory: %v", err)
		}
		logging.InfoLog("Using SQLite user directory: %s", path)
		return dir, dir
	case "supabase":
		logging.InfoLog("Using Supabase user directory: %s", config.SupabaseURL())
		return provider.NewAdminClient(config.SupabaseURL(), config.SupabaseServiceKey()), io.NopCloser(nil)
	default:
		logging.FatalLog("Unknown DIRECTORY_DRIVER %q", driver)
		return nil, nil
	}
}
