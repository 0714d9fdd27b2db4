package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/authclient"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/types"
)

// passwordEnv supplies the password when --password is not given.
const passwordEnv = "CV_PASSWORD"

var (
	authEmail    string
	authPassword string

	registerName         string
	registerConfirmation string
	registerProfile      types.RegisterRequest
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the CV account API",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the CV account API",
	RunE:  runRegister,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email (required)")
		c.Flags().StringVar(&authPassword, "password", "", "Password, defaults to $"+passwordEnv)
		if err := c.MarkFlagRequired("email"); err != nil {
			panic(fmt.Sprintf("failed to mark email flag as required: %v", err))
		}
	}

	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name (required)")
	registerCmd.Flags().StringVar(&registerConfirmation, "password-confirmation", "", "Password confirmation, defaults to the password")
	registerCmd.Flags().StringVar(&registerProfile.CargoDeseado, "cargo-deseado", "", "Desired position")
	registerCmd.Flags().StringVar(&registerProfile.ExperienciaLaboral, "experiencia", "", "Work experience summary")
	registerCmd.Flags().StringVar(&registerProfile.Educacion, "educacion", "", "Education summary")
	registerCmd.Flags().StringVar(&registerProfile.Habilidades, "habilidades", "", "Comma-separated skills")
	registerCmd.Flags().StringVar(&registerProfile.Idiomas, "idiomas", "", "Languages")
	if err := registerCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}

	rootCmd.AddCommand(loginCmd, registerCmd)
}

func newAuthClient() (*authclient.Client, error) {
	return authclient.New(appConfig.APIBaseURL, authclient.Options{
		Timeout: appConfig.Timeout(),
		Logger:  cliLogger(),
	})
}

func password() string {
	if authPassword != "" {
		return authPassword
	}
	return os.Getenv(passwordEnv)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	client, err := newAuthClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	resp, err := client.Login(ctx, types.LoginRequest{Email: authEmail, Password: password()})
	if err != nil {
		return authFailure(p, err)
	}

	name := authEmail
	if resp.User != nil && resp.User.Name != "" {
		name = resp.User.Name
	}
	p.Success("Sesión iniciada como " + name)
	if exp := client.ExpiresAt(); !exp.IsZero() {
		p.Warn("La sesión expira el " + exp.Local().Format("02/01/2006 15:04"))
	}
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	client, err := newAuthClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	req := registerProfile
	req.Name = registerName
	req.Email = authEmail
	req.Password = password()
	req.PasswordConfirmation = registerConfirmation
	if req.PasswordConfirmation == "" {
		req.PasswordConfirmation = req.Password
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	resp, err := client.Register(ctx, req)
	if err != nil {
		return authFailure(p, err)
	}
	p.Success(resp.Message)
	return nil
}

// authFailure prints the API's message, or the form errors for a request rejected locally.
func authFailure(p *observability.Printer, err error) error {
	var (
		apiErr *authclient.APIError
		valErr *types.ValidationError
	)
	switch {
	case errors.As(err, &apiErr):
		if len(apiErr.Fields) > 0 {
			lines := make([]string, 0, len(apiErr.Fields))
			for _, f := range apiErr.Fields {
				for _, m := range f.Messages {
					lines = append(lines, f.Field+": "+m)
				}
			}
			p.PrintValidationErrors(authclient.MsgValidation, lines)
		} else {
			p.Error(apiErr.Message)
		}
	case errors.As(err, &valErr):
		lines := make([]string, 0, len(valErr.Fields))
		for _, f := range valErr.Fields {
			lines = append(lines, f.Field+": "+f.Message)
		}
		p.PrintValidationErrors("Hay campos con errores", lines)
	default:
		p.Error(err.Error())
	}
	return err
}
