// Package admincli implements the operator commands that manage admin
// accounts directly in the database. Admins cannot sign up over the API.
package admincli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/server/auth"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/repomanager"
)

const usage = `usage:
  admin create-admin     create a new admin account (prompts for details)
  admin promote <email>  grant the admin role to an existing user`

var ErrUsage = errors.New(usage)

type App struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	in          *bufio.Reader
	out         io.Writer
}

func NewApp(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, in io.Reader, out io.Writer) *App {
	return &App{db: db, repomanager: m, hasher: hasher, in: bufio.NewReader(in), out: out}
}

// Run dispatches args[0] to a command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "create-admin":
		return a.CreateAdmin(ctx)
	case "promote":
		if len(args) != 2 {
			return ErrUsage
		}
		return a.Promote(ctx, args[1])
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], ErrUsage)
	}
}

func (a *App) CreateAdmin(ctx context.Context) error {
	name, err := GetSimpleText(a.in, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	if name == "" || email == "" {
		return errors.New("full name and email are required")
	}

	pw, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer wipe(pw)
	confirm, err := GetPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer wipe(confirm)

	if len(pw) == 0 {
		return errors.New("password must not be empty")
	}
	if !bytes.Equal(pw, confirm) {
		return common.ErrPasswordMismatch
	}

	hash, err := a.hasher.Hash(string(pw))
	if err != nil {
		return err
	}

	u, err := a.repomanager.Users(a.db).Create(ctx, &models.User{
		FullName:     name,
		Email:        email,
		Role:         common.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Admin %s created (id %d)\n", u.Email, u.ID)
	return nil
}

func (a *App) Promote(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := a.repomanager.Users(a.db).SetRole(ctx, email, common.RoleAdmin); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}
	fmt.Fprintf(a.out, "%s is now an admin\n", email)
	return nil
}
