package main

import (
	"github.com/Goofygiraffe06/otprelay/internal/controller"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with an email or phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.ui.ask(a.locale.T("email_or_phone"))
			if err != nil {
				return err
			}
			pw, err := a.ui.ask(a.locale.T("password"))
			if err != nil {
				return err
			}

			out, err := controller.NewLogin(a.auth).Submit(cmd.Context(), controller.LoginForm{Identifier: id, Password: pw})
			if err != nil {
				a.ui.errorf("%s", a.locale.Message(err))
				return err
			}
			a.ui.successf("%s", a.locale.T("welcome_back"))
			return a.chooseLanguage(out)
		},
	}
}

// chooseLanguage is where a successful login lands.
func (a *app) chooseLanguage(out controller.Outcome) error {
	if out.Navigate != controller.RouteSelectLanguage {
		return nil
	}
	lang, err := a.ui.ask(a.locale.T("select_language") + " (" + a.locale.Current() + ")")
	if err != nil || lang == "" {
		return err
	}
	if err := a.locale.Select(lang); err != nil {
		a.ui.errorf("%s", a.locale.Message(err))
		return err
	}
	a.ui.infof("%s (%s)", a.locale.Current(), a.locale.Direction())
	return nil
}

func (a *app) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account by email, or by phone with an SMS code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []controller.SignupOption
			if a.verifyCodes {
				opts = append(opts, controller.WithCodeVerification())
			}
			s := controller.NewSignup(a.auth, a.relay, opts...)

			for _, field := range []struct {
				key string
				set func(string)
			}{
				{"full_name", s.SetFullName},
				{"email_or_phone", s.SetIdentifier},
				{"password", s.SetPassword},
			} {
				v, err := a.ui.ask(a.locale.T(field.key))
				if err != nil {
					return err
				}
				field.set(v)
			}

			for {
				out, err := s.Submit(cmd.Context())
				switch {
				case err != nil:
					a.ui.errorf("%s", a.locale.Message(err))
					if !s.ShowOTPField() {
						return err
					}
				case out.Navigate != "":
					a.ui.successf("%s → %s", s.State(), out.Navigate)
					return nil
				default:
					a.ui.infof("%s", a.locale.Info(out))
				}

				code, err := a.ui.ask(a.locale.T("enter_otp"))
				if err != nil {
					return err
				}
				s.SetOTP(code)
			}
		},
	}
}

func (a *app) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a reset link by email or a code by SMS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []controller.ForgotPasswordOption
			if a.verifyCodes {
				opts = append(opts, controller.WithResetCodeVerification())
			}
			f := controller.NewForgotPassword(a.auth, a.relay, a.appOrigin, opts...)

			form := controller.ForgotPasswordForm{}
			id, err := a.ui.ask(a.locale.T("email_or_phone"))
			if err != nil {
				return err
			}
			form.Identifier = id

			for {
				out, err := f.Submit(cmd.Context(), form)
				switch {
				case err != nil:
					a.ui.errorf("%s", a.locale.Message(err))
					if !f.OTPSent() {
						return err
					}
				case out.Navigate != "":
					a.ui.successf("→ %s", out.Navigate)
					a.ui.printf("Run \"authform update-password\" to choose a new password.\n")
					return nil
				default:
					a.ui.infof("%s", a.locale.Info(out))
					if !f.OTPSent() {
						return nil
					}
				}

				if form.OTP, err = a.ui.ask(a.locale.T("enter_otp")); err != nil {
					return err
				}
			}
		},
	}
}

func (a *app) updatePasswordCmd() *cobra.Command {
	var accessToken string
	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Set a new password, optionally using a recovery access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := controller.NewUpdatePassword(a.auth)
			if err := u.Establish(cmd.Context(), accessToken); err != nil {
				a.ui.errorf("%s", a.locale.Message(err))
				return err
			}

			var form controller.UpdatePasswordForm
			var err error
			if form.NewPassword, err = a.ui.ask(a.locale.T("new_password")); err != nil {
				return err
			}
			if form.ConfirmPassword, err = a.ui.ask(a.locale.T("confirm_password")); err != nil {
				return err
			}

			out, err := u.Submit(cmd.Context(), form)
			if err != nil {
				a.ui.errorf("%s", a.locale.Message(err))
				return err
			}
			a.ui.successf("%s", a.locale.Info(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&accessToken, "access-token", "", "access token from the password recovery link")
	return cmd
}

func (a *app) languageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "language [en|ar]",
		Short: "Pick the interface language, or toggle it when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				a.locale.Toggle()
			} else if err := a.locale.Select(args[0]); err != nil {
				a.ui.errorf("%s", a.locale.Message(err))
				return err
			}
			a.ui.infof("%s: %s (%s)", a.locale.T("select_language"), a.locale.Current(), a.locale.Direction())
			return nil
		},
	}
}
