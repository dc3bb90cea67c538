package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"text/tabwriter"

	"github.com/ferrost/identity-core/internal/config"
	"github.com/ferrost/identity-core/internal/database"
	"github.com/ferrost/identity-core/internal/identity"
	"github.com/ferrost/identity-core/internal/server"
)

const usage = `Usage: admin <command> [flags]

Commands:
  create          create a user (optionally with a first password)
  list            list active users
  deactivate      deactivate a user by id
  add-password    add a password credential to a user
  enroll-totp     generate and store a TOTP secret for a user
  verify          verify a password or one-time code for an identity
`

type env struct {
	cfg       *config.AppConfig
	users     identity.UserRepository
	creds     identity.CredentialRepository
	passwords *identity.PasswordCredentialStore
	service   *identity.Service
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", "development")
	}

	e, err := setup()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ctx := context.Background()
	if err := run(ctx, e, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func setup() (*env, error) {
	cfg, err := server.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := server.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		return nil, err
	}

	manager, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	users := identity.NewUserRepository(manager.DB())
	creds := identity.NewCredentialRepository(manager.DB())
	passwords := identity.NewPasswordCredentialStore(&cfg.Credentials, logger, creds)
	totp := identity.NewTOTPVerifier(&cfg.Credentials, creds)

	return &env{
		cfg:       cfg,
		users:     users,
		creds:     creds,
		passwords: passwords,
		service:   identity.NewService(logger, users, passwords, totp),
	}, nil
}

func run(ctx context.Context, e *env, command string, args []string) error {
	switch command {
	case "create":
		return createUser(ctx, e, args)
	case "list":
		return listUsers(ctx, e)
	case "deactivate":
		return deactivateUser(ctx, e, args)
	case "add-password":
		return addPassword(ctx, e, args)
	case "enroll-totp":
		return enrollTOTP(ctx, e, args)
	case "verify":
		return verify(ctx, e, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func createUser(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	identityArg := fs.String("identity", "", "identity string, typically an email (required)")
	nickname := fs.String("nickname", "", "display name")
	userType := fs.Int("type", 0, "role tag")
	password := fs.String("password", "", "initial password (optional)")
	fs.Parse(args)

	if *identityArg == "" {
		return fmt.Errorf("-identity is required")
	}

	nu := identity.NewUser{
		Identity: *identityArg,
		Nickname: *nickname,
		Type:     int16(*userType),
	}

	var user identity.User
	var err error
	if *password != "" {
		user, err = e.service.Register(ctx, nu, *password)
	} else {
		user, err = e.users.Create(ctx, nu)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("Created user %d (%s)\n", user.ID, user.Identity)
	return nil
}

func listUsers(ctx context.Context, e *env) error {
	users, err := e.users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tIDENTITY\tNICKNAME\tTYPE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			u.ID, u.Identity, u.Nickname, u.Type, u.Created.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func deactivateUser(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("deactivate", flag.ExitOnError)
	id := fs.Int64("id", 0, "user id (required)")
	fs.Parse(args)

	if *id == 0 {
		return fmt.Errorf("-id is required")
	}

	if err := e.users.Deactivate(ctx, *id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	fmt.Printf("Deactivated user %d\n", *id)
	return nil
}

func addPassword(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("add-password", flag.ExitOnError)
	identityArg := fs.String("identity", "", "identity string (required)")
	password := fs.String("password", "", "password to add (required)")
	fs.Parse(args)

	if *identityArg == "" || *password == "" {
		return fmt.Errorf("-identity and -password are required")
	}

	user, err := e.service.Resolve(ctx, *identityArg)
	if err != nil {
		return err
	}

	if err := e.passwords.AddCredential(ctx, user, *password); err != nil {
		return err
	}

	fmt.Printf("Added password credential for user %d\n", user.ID)
	return nil
}

func enrollTOTP(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("enroll-totp", flag.ExitOnError)
	identityArg := fs.String("identity", "", "identity string (required)")
	qrPath := fs.String("qr", "", "write a QR code PNG to this path")
	fs.Parse(args)

	if *identityArg == "" {
		return fmt.Errorf("-identity is required")
	}

	user, err := e.service.Resolve(ctx, *identityArg)
	if err != nil {
		return err
	}

	enroller := identity.NewTOTPEnroller(&e.cfg.Credentials, e.creds)
	key, err := enroller.Enroll(ctx, user)
	if err != nil {
		return err
	}

	fmt.Printf("TOTP secret: %s\n", key.Secret())
	fmt.Printf("Provisioning URL: %s\n", key.URL())

	if *qrPath != "" {
		img, err := key.Image(256, 256)
		if err != nil {
			return fmt.Errorf("render qr code: %w", err)
		}
		f, err := os.Create(*qrPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("write qr code: %w", err)
		}
		fmt.Printf("QR code written to %s\n", *qrPath)
	}
	return nil
}

func verify(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	identityArg := fs.String("identity", "", "identity string (required)")
	password := fs.String("password", "", "password to verify")
	code := fs.String("totp", "", "one-time code to verify")
	fs.Parse(args)

	if *identityArg == "" {
		return fmt.Errorf("-identity is required")
	}

	switch {
	case *password != "":
		ok, err := e.service.VerifyPassword(ctx, *identityArg, *password)
		if err != nil {
			return err
		}
		fmt.Printf("password valid: %t\n", ok)
	case *code != "":
		ok, err := e.service.VerifyTOTP(ctx, *identityArg, *code)
		if err != nil {
			return err
		}
		fmt.Printf("totp valid: %t\n", ok)
	default:
		return fmt.Errorf("one of -password or -totp is required")
	}
	return nil
}
