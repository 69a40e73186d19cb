// Command authform runs the login, signup and password reset forms in a
// terminal against a live auth provider and OTP relay.
package main

import (
	"io"
	"os"

	"github.com/Goofygiraffe06/otprelay/internal/config"
	"github.com/Goofygiraffe06/otprelay/internal/controller"
	"github.com/Goofygiraffe06/otprelay/internal/i18n"
	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/provider"
	"github.com/Goofygiraffe06/otprelay/internal/relay"
	"github.com/spf13/cobra"
)

type app struct {
	auth   *provider.Client
	relay  *relay.Client
	locale *controller.Locale
	ui     *prompter
	logs   io.Closer

	relayURL    string
	appOrigin   string
	lang        string
	verifyCodes bool
}

func main() {
	a := &app{ui: newPrompter(os.Stdin, os.Stdout)}
	err := a.rootCmd().Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "authform",
		Short:         "Sign in, sign up or reset a password from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Flags().Changed("lang"))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.relayURL, "relay", config.RelayBaseURL(), "OTP relay base URL")
	flags.StringVar(&a.appOrigin, "app-origin", config.AppOrigin(), "origin used in password reset links")
	flags.StringVar(&a.lang, "lang", config.DefaultLanguage(), "interface language (en or ar)")
	flags.BoolVar(&a.verifyCodes, "verify-codes", config.VerifyOTPCodes(), "check SMS codes with the relay before continuing")

	root.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.forgotPasswordCmd(),
		a.updatePasswordCmd(),
		a.languageCmd(),
		a.directoryCmd(),
	)
	return root
}

// init opens the log and builds the clients. An explicit --lang becomes
// the remembered language.
func (a *app) init(langFlagSet bool) error {
	f, err := logging.InitLogger(config.AuthformLogFile())
	if err != nil {
		return err
	}
	a.logs = f

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return err
	}
	var opts []controller.LocaleOption
	if store, err := newLanguageFile(); err != nil {
		logging.WarnLog("Language will not be remembered: %v", err)
	} else {
		opts = append(opts, controller.WithLanguageStore(store))
	}
	a.locale = controller.NewLocale(bundle, a.lang, opts...)
	if langFlagSet {
		if err := a.locale.Select(a.lang); err != nil {
			return err
		}
	}

	a.auth = provider.NewClient(config.SupabaseURL(), config.SupabaseAnonKey())
	a.relay = relay.NewClient(a.relayURL)
	return nil
}

// close flushes and closes the log whether or not the command succeeded.
func (a *app) close() {
	if a.logs == nil {
		return
	}
	logging.Sync()
	a.logs.Close()
	a.logs = nil
}
