package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hrmis/internal/client/avatar"
	"github.com/dmitrijs2005/hrmis/internal/client/guard"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/filex"
	"github.com/dmitrijs2005/hrmis/internal/timex"
)

var errProfileUnavailable = errors.New("profile unavailable")

// readAvatarFile is a test seam for filex.ReadLimited.
var readAvatarFile = filex.ReadLimited

func (a *App) open(ctx context.Context, path string) error {
	switch path {
	case ProfilePath:
		return a.Profile(ctx)
	default:
		return a.Dashboard(ctx)
	}
}

// protect renders view only for an allowed session. A denied viewer is
// told to log in and from is remembered for after the login. A view that
// rendered stays mounted, so that a sign-out arriving later is noticed
// before the next prompt.
func (a *App) protect(ctx context.Context, from string, view func(ctx context.Context, sess *models.Session) error) error {
	g, access, err := guard.Mount(ctx, a.session, from, a.logger, view, guard.WithLoginPath(LoginPath))
	if access.Decision != guard.Allow {
		a.returnTo = access.ReturnTo
		a.println(common.UserMessage(common.ErrNoSession))
		return common.ErrNoSession
	}
	if err != nil {
		g.Release()
		return err
	}
	a.mount(g)
	return nil
}

// mount makes g the guard of the current view.
func (a *App) mount(g *guard.Guard) {
	a.unmount()
	a.mounted = g
}

func (a *App) unmount() {
	if a.mounted != nil {
		a.mounted.Release()
		a.mounted = nil
	}
}

// followView reports a session that ended under the mounted view. The view
// is dropped and remembered for after the next login.
func (a *App) followView() {
	if a.mounted == nil {
		return
	}
	select {
	case access, ok := <-a.mounted.Updates():
		if !ok || access.Decision != guard.Redirect {
			return
		}
		a.unmount()
		a.returnTo = access.ReturnTo
		a.println("Your session has ended.", common.UserMessage(common.ErrNoSession))
	default:
	}
}

// loadProfile returns the signed-in user's profile. A load failure ends
// the session: an unreadable profile makes every guarded view unusable.
func (a *App) loadProfile(ctx context.Context, from string, sess *models.Session) (*models.Profile, error) {
	p, err := a.ensureProfile(ctx, sess)
	if err == nil {
		return p, nil
	}

	a.logger.Error(ctx, "profile load failed", "user_id", sess.UserID, "error", err)
	a.unmount()
	_ = a.session.SignOut(ctx)
	a.profiles.Reset()
	a.returnTo = from
	a.println("Could not load your profile, please log in again")
	return nil, errProfileUnavailable
}

func (a *App) Dashboard(ctx context.Context) error {
	return a.protect(ctx, DashboardPath, func(ctx context.Context, sess *models.Session) error {
		p, err := a.loadProfile(ctx, DashboardPath, sess)
		if err != nil {
			return err
		}

		name := p.DisplayName()
		if name == "" {
			name = sess.Email
		}

		a.println("== Dashboard ==")
		a.println(a.avatarLine())
		a.println("Welcome,", name)
		a.println("Email:", sess.Email)
		if !sess.CreatedAt.IsZero() {
			a.println("Member since:", timex.FormatDate(sess.CreatedAt))
		}
		return nil
	})
}

func (a *App) Profile(ctx context.Context) error {
	return a.protect(ctx, ProfilePath, func(ctx context.Context, sess *models.Session) error {
		p, err := a.loadProfile(ctx, ProfilePath, sess)
		if err != nil {
			return err
		}
		a.renderProfile(sess, p)
		return nil
	})
}

func (a *App) renderProfile(sess *models.Session, p *models.Profile) {
	a.println("== Profile ==")
	a.println(a.avatarLine())
	a.println("Full name:", orDash(p.DisplayName()))
	a.println("Email:    ", sess.Email)
	a.println("Birthday: ", orDash(p.BirthdayString()))
	if p.Age != nil {
		a.println("Age:      ", *p.Age)
	} else {
		a.println("Age:      ", "-")
	}
	a.println("Updated:  ", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

func (a *App) avatarLine() string {
	if url := a.profiles.AvatarURL(); url != "" {
		return "Avatar: " + url
	}
	return fmt.Sprintf("Avatar: [%s]", a.profiles.Initials())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SetName changes the full name: name <full name>.
func (a *App) SetName(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		a.println("Usage: name <full name>")
		return common.NewValidationError("Usage: name <full name>")
	}
	return a.updateFields(ctx, models.FieldsPatch{FullName: &name})
}

// SetBirthday changes the birthday: birthday <YYYY-MM-DD>. The age is
// recomputed from it.
func (a *App) SetBirthday(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: birthday <YYYY-MM-DD>")
		return common.NewValidationError("Usage: birthday <YYYY-MM-DD>")
	}
	bday, err := timex.ParseDate(args[0])
	if err != nil {
		verr := common.NewValidationError("Invalid date, use YYYY-MM-DD")
		a.println(common.UserMessage(verr))
		return verr
	}
	return a.updateFields(ctx, models.FieldsPatch{Birthday: &bday})
}

func (a *App) updateFields(ctx context.Context, patch models.FieldsPatch) error {
	return a.protect(ctx, ProfilePath, func(ctx context.Context, sess *models.Session) error {
		if _, err := a.loadProfile(ctx, ProfilePath, sess); err != nil {
			return err
		}

		p, err := a.profiles.UpdateFields(ctx, sess.UserID, patch)
		if err != nil {
			a.logger.Warn(ctx, "profile update failed", "user_id", sess.UserID, "error", err)
			a.println(common.UserMessage(err))
			return err
		}

		a.println("Profile updated successfully!")
		a.renderProfile(sess, p)
		return nil
	})
}

// SetAvatar uploads the image at path as the new avatar: avatar <path>.
func (a *App) SetAvatar(ctx context.Context, args []string) error {
	path := strings.Join(args, " ")
	if path == "" {
		a.println("Usage: avatar <path to image>")
		return common.NewValidationError("You must select an image to upload.")
	}

	return a.protect(ctx, ProfilePath, func(ctx context.Context, sess *models.Session) error {
		if _, err := a.loadProfile(ctx, ProfilePath, sess); err != nil {
			return err
		}

		raw, _, err := readAvatarFile(path, MaxAvatarBytes)
		if err != nil {
			a.logger.Warn(ctx, "avatar file unreadable", "path", path, "error", err)
			if !errors.Is(err, common.ErrValidation) {
				err = common.NewValidationError("Could not read " + path)
			}
			a.println(common.UserMessage(err))
			return err
		}

		data, ext, err := avatar.Normalize(raw, a.config.AvatarMaxSide)
		if err != nil {
			a.println(common.UserMessage(err))
			return err
		}

		a.println("Uploading...")
		p, err := a.profiles.UpdateAvatar(ctx, sess.UserID, data, ext)
		if err != nil {
			a.logger.Warn(ctx, "avatar update failed", "user_id", sess.UserID, "error", err)
			a.println(common.UserMessage(err))
			return err
		}

		a.println("Avatar updated successfully!")
		a.renderProfile(sess, p)
		return nil
	})
}
