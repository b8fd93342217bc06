package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gobarber/gobarber/internal/client/api"
	"github.com/gobarber/gobarber/internal/client/authsession"
	"github.com/gobarber/gobarber/internal/client/router"
	"github.com/gobarber/gobarber/internal/client/signin"
	"github.com/gobarber/gobarber/internal/client/signup"
	"github.com/gobarber/gobarber/internal/client/toast"
)

type signUpOptions struct {
	Name     string
	Email    string
	Password string
}

type signInOptions struct {
	Email    string
	Password string
}

type updateProfileOptions struct {
	Name  string
	Email string
}

func runSignUp(cmdCtx *commandContext, args []string) error {
	opts, err := parseSignUpFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	sess, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	defer closeSession(cmdCtx, sess)

	history := router.NewHistory("/signup")
	center := toast.NewCenter(cmdCtx.Logger)

	submitErr := signup.NewForm(sess.API, history, center, signup.WithLogger(cmdCtx.Logger)).Submit(cmdCtx.Ctx, signup.Input{
		Name:     opts.Name,
		Email:    opts.Email,
		Password: opts.Password,
	})
	if err := printToasts(cmdCtx.Stdout, center); err != nil {
		return err
	}
	return submitErr
}

func runSignIn(cmdCtx *commandContext, args []string) error {
	opts, err := parseSignInFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	sess, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	defer closeSession(cmdCtx, sess)

	history := router.NewHistory("/")
	center := toast.NewCenter(cmdCtx.Logger)

	submitErr := signin.NewForm(sess.Manager, history, center).Submit(cmdCtx.Ctx, api.Credentials{
		Email:    opts.Email,
		Password: opts.Password,
	})
	if err := printToasts(cmdCtx.Stdout, center); err != nil {
		return err
	}
	if submitErr != nil {
		return submitErr
	}

	user, _ := sess.Manager.User()
	return writef(cmdCtx.Stdout, "Signed in as %s\n", displayName(user))
}

func runSignOut(cmdCtx *commandContext, args []string) error {
	if err := parseNoFlags("signout", args); err != nil {
		return err
	}

	sess, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	defer closeSession(cmdCtx, sess)

	_, hasUser := sess.Manager.User()
	_, signedIn := sess.Manager.Session()
	if !hasUser && !signedIn {
		return writef(cmdCtx.Stdout, "Not signed in\n")
	}

	// The local session goes regardless; a token the server already
	// dropped must not keep the client signed in.
	if signedIn {
		if err := sess.API.DeleteSession(cmdCtx.Ctx); err != nil {
			cmdCtx.Logger.Warn("server sign-out failed", "error", err)
		}
	}
	if err := sess.Manager.SignOut(cmdCtx.Ctx); err != nil {
		return err
	}
	return writef(cmdCtx.Stdout, "Signed out\n")
}

func runWhoAmI(cmdCtx *commandContext, args []string) error {
	if err := parseNoFlags("whoami", args); err != nil {
		return err
	}

	sess, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	defer closeSession(cmdCtx, sess)

	user, ok := sess.Manager.User()
	if !ok {
		return writef(cmdCtx.Stdout, "Not signed in\n")
	}

	if err := writef(cmdCtx.Stdout, "Email: %s\n", user.Email); err != nil {
		return err
	}
	if user.Name != "" {
		if err := writef(cmdCtx.Stdout, "Name:  %s\n", user.Name); err != nil {
			return err
		}
	}
	if user.ID != "" {
		if err := writef(cmdCtx.Stdout, "ID:    %s\n", user.ID); err != nil {
			return err
		}
	}
	return nil
}

func runUpdateProfile(cmdCtx *commandContext, args []string) error {
	opts, err := parseUpdateProfileFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	sess, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	defer closeSession(cmdCtx, sess)

	session, ok := sess.Manager.Session()
	if !ok {
		return authsession.ErrNotSignedIn
	}
	current := session.User

	update := api.ProfileUpdate{Name: current.Name, Email: current.Email}
	if opts.Name != "" {
		update.Name = opts.Name
	}
	if opts.Email != "" {
		update.Email = opts.Email
	}

	updated, err := sess.API.UpdateProfile(cmdCtx.Ctx, update)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if err := sess.Manager.UpdateUser(cmdCtx.Ctx, *updated); err != nil {
		return err
	}
	return writef(cmdCtx.Stdout, "Profile updated: %s\n", displayName(*updated))
}

func parseSignUpFlags(cmdCtx *commandContext, args []string) (signUpOptions, error) {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)

	var opts signUpOptions
	fs.StringVar(&opts.Name, "name", "", "Full name")
	fs.StringVar(&opts.Email, "email", "", "Email address")
	fs.StringVar(&opts.Password, "password", "", "Password (read from stdin when omitted)")

	if err := fs.Parse(args); err != nil {
		return signUpOptions{}, err
	}
	if opts.Name == "" || opts.Email == "" {
		return signUpOptions{}, errors.New("--name and --email are required")
	}
	if opts.Password == "" {
		pw, err := readPassword(cmdCtx)
		if err != nil {
			return signUpOptions{}, err
		}
		opts.Password = pw
	}
	return opts, nil
}

func parseSignInFlags(cmdCtx *commandContext, args []string) (signInOptions, error) {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)

	var opts signInOptions
	fs.StringVar(&opts.Email, "email", "", "Email address")
	fs.StringVar(&opts.Password, "password", "", "Password (read from stdin when omitted)")

	if err := fs.Parse(args); err != nil {
		return signInOptions{}, err
	}
	if opts.Email == "" {
		return signInOptions{}, errors.New("--email is required")
	}
	if opts.Password == "" {
		pw, err := readPassword(cmdCtx)
		if err != nil {
			return signInOptions{}, err
		}
		opts.Password = pw
	}
	return opts, nil
}

func parseUpdateProfileFlags(cmdCtx *commandContext, args []string) (updateProfileOptions, error) {
	fs := flag.NewFlagSet("update-profile", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)

	var opts updateProfileOptions
	fs.StringVar(&opts.Name, "name", "", "New name")
	fs.StringVar(&opts.Email, "email", "", "New email address")

	if err := fs.Parse(args); err != nil {
		return updateProfileOptions{}, err
	}
	if opts.Name == "" && opts.Email == "" {
		return updateProfileOptions{}, errors.New("nothing to update: pass --name and/or --email")
	}
	return opts, nil
}

func parseNoFlags(name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%s takes no arguments", name)
	}
	return nil
}

// readPassword reads one line from stdin.
func readPassword(cmdCtx *commandContext) (string, error) {
	if err := writef(cmdCtx.Stderr, "Password: "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

func printToasts(w io.Writer, center *toast.Center) error {
	for _, msg := range center.Messages() {
		line := fmt.Sprintf("[%s] %s", msg.Type, msg.Title)
		if msg.Description != "" {
			line += " " + msg.Description
		}
		if err := writef(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func displayName(u api.UserProfile) string {
	if u.Name != "" {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	return u.Email
}

func closeSession(cmdCtx *commandContext, sess *clientSession) {
	if err := sess.Close(); err != nil {
		cmdCtx.Logger.Warn("closing storage failed", "error", err)
	}
}
