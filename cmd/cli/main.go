package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aryan0dhankhar/coursehub/internal/app"
	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/forms"
	"github.com/aryan0dhankhar/coursehub/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/coursehub/internal/security"
	"github.com/aryan0dhankhar/coursehub/internal/service"
	"github.com/aryan0dhankhar/coursehub/pkg/config"
)

var (
	errUsage       = errors.New("invalid usage")
	errNotLoggedIn = errors.New("not logged in: run `coursehub auth login` first")
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "help" {
		printUsage(os.Stdout)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Keep the terminal quiet unless a level was asked for
	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	log := logger.New(os.Stderr, level)

	ctx := context.Background()
	instance, err := app.New(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = run(ctx, instance, os.Args[1:], os.Stdout)
	instance.Close()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		}
		os.Exit(1)
	}
}

type cli struct {
	app   *app.App
	authz *security.AuthorizationService
	out   io.Writer
}

// run executes one command against instance. Every invocation is a full
// instance lifetime: the session was restored when instance was built.
func run(ctx context.Context, instance *app.App, args []string, out io.Writer) error {
	if len(args) < 1 {
		printUsage(out)
		return errUsage
	}

	c := &cli{
		app:   instance,
		authz: security.NewAuthorizationService(instance.Logger),
		out:   out,
	}

	switch args[0] {
	case "auth":
		return c.handleAuth(ctx, args[1:])
	case "course":
		return c.handleCourse(ctx, args[1:])
	case "dashboard":
		return c.dashboard()
	case "help":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(out, "unknown command: %s\n", args[0])
		printUsage(out)
		return errUsage
	}
}

func (c *cli) handleAuth(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: coursehub auth <register|login|logout|who>")
		return errUsage
	}

	switch args[0] {
	case "register":
		return c.register(ctx, args[1:])
	case "login":
		return c.login(ctx, args[1:])
	case "logout":
		return c.logout(ctx)
	case "who":
		return c.whoAmI()
	default:
		fmt.Fprintf(c.out, "unknown auth command: %s\n", args[0])
		return errUsage
	}
}

func (c *cli) handleCourse(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: coursehub course <list|search|featured|show|create|add-video|enroll>")
		return errUsage
	}

	switch args[0] {
	case "list":
		c.printCourses(c.app.Catalog.Courses())
		return nil
	case "search":
		c.printCourses(c.app.Catalog.SearchCourses(strings.Join(args[1:], " ")))
		return nil
	case "featured":
		return c.featured(args[1:])
	case "show":
		return c.showCourse(args[1:])
	case "create":
		return c.createCourse(ctx, args[1:])
	case "add-video":
		return c.addVideo(ctx, args[1:])
	case "enroll":
		return c.enroll(ctx, args[1:])
	default:
		fmt.Fprintf(c.out, "unknown course command: %s\n", args[0])
		return errUsage
	}
}

func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// Auth commands
func (c *cli) register(ctx context.Context, args []string) error {
	var form forms.RegisterForm
	fs := c.newFlagSet("register")
	fs.StringVar(&form.Name, "name", "", "display name")
	fs.StringVar(&form.Email, "email", "", "user email")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.Role, "role", "", "instructor or student")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := forms.Validate(&form); err != nil {
		fs.PrintDefaults()
		return errors.New(forms.MissingFieldsMessage)
	}

	user, ok, err := c.app.Identity.Register(ctx, form.Name, form.Email, form.Password, domain.Role(form.Role))
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("email already registered")
	}
	fmt.Fprintf(c.out, "✓ Registered and logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	var form forms.LoginForm
	fs := c.newFlagSet("login")
	fs.StringVar(&form.Email, "email", "", "user email")
	fs.StringVar(&form.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := forms.Validate(&form); err != nil {
		fs.PrintDefaults()
		return errors.New(forms.MissingFieldsMessage)
	}

	user, ok, err := c.app.Identity.Login(ctx, form.Email, form.Password)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid email or password")
	}
	fmt.Fprintf(c.out, "✓ Logged in as: %s (%s)\n", user.Email, user.Name)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	if err := c.app.Identity.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "✓ Logged out")
	return nil
}

func (c *cli) whoAmI() error {
	user, ok := c.app.Identity.CurrentUser()
	if !ok {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", user.ID, user.Name, user.Email, user.Role)
	if err := w.Flush(); err != nil {
		return err
	}

	perms := c.authz.GetRolePermissions(user.Role)
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	fmt.Fprintf(c.out, "\nPermissions: %s\n", strings.Join(names, ", "))
	return nil
}

// requirePermission returns the session user if their role carries perm
func (c *cli) requirePermission(perm security.Permission) (domain.User, error) {
	user, ok := c.app.Identity.CurrentUser()
	if !ok {
		return domain.User{}, errNotLoggedIn
	}
	if err := c.authz.ValidatePermission(user.Role, perm); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Course commands
func (c *cli) featured(args []string) error {
	fs := c.newFlagSet("featured")
	n := fs.Int("n", c.app.Config.FeaturedCourses, "number of courses")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	c.printCourses(c.app.Catalog.FeaturedCourses(*n))
	return nil
}

func (c *cli) showCourse(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: coursehub course show <course-id>")
		return errUsage
	}

	course, found := c.app.Catalog.GetCourse(args[0])
	if !found {
		return errors.New("course not found")
	}

	fmt.Fprintf(c.out, "%s\n%s\n\n", course.Title, course.Description)
	fmt.Fprintf(c.out, "Instructor: %s\n", course.InstructorName)
	fmt.Fprintf(c.out, "Students:   %d\n", len(course.EnrolledStudents))
	fmt.Fprintf(c.out, "Videos:     %d\n", len(course.Videos))

	user, ok := c.app.Identity.CurrentUser()
	if ok {
		switch {
		case c.app.Catalog.IsEnrolled(course.ID, user.ID):
			fmt.Fprintln(c.out, "You are enrolled in this course")
		case service.IsOwner(course, user):
			fmt.Fprintln(c.out, "You teach this course")
		}
	}
	if !ok || !service.CanViewContent(course, user) {
		fmt.Fprintln(c.out, "\nEnroll to watch the videos in this course")
		return nil
	}

	fmt.Fprintln(c.out)
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tVIDEO\tDURATION\tURL")
	for i, v := range course.Videos {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, v.Title, v.Duration, v.URL)
	}
	return w.Flush()
}

func (c *cli) createCourse(ctx context.Context, args []string) error {
	user, err := c.requirePermission(security.PermCreateCourse)
	if err != nil {
		return err
	}

	var form forms.CourseForm
	fs := c.newFlagSet("create")
	fs.StringVar(&form.Title, "title", "", "course title")
	fs.StringVar(&form.Description, "description", "", "course description")
	fs.StringVar(&form.Thumbnail, "thumbnail", "", "thumbnail URL (optional)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := forms.Validate(&form); err != nil {
		fs.PrintDefaults()
		return errors.New(forms.MissingFieldsMessage)
	}

	course, err := c.app.Catalog.AddCourse(ctx, form.Draft(user))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "✓ Created course %s (%s)\n", course.Title, course.ID)
	return nil
}

func (c *cli) addVideo(ctx context.Context, args []string) error {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(c.out, "Usage: coursehub course add-video <course-id> -title ... -description ... -url ... -duration ...")
		return errUsage
	}
	courseID := args[0]

	user, err := c.requirePermission(security.PermAddVideo)
	if err != nil {
		return err
	}
	course, found := c.app.Catalog.GetCourse(courseID)
	if !found {
		return errors.New("course not found")
	}
	if err := c.authz.ValidateCourseOwnership(user, course); err != nil {
		return err
	}

	var form forms.VideoForm
	fs := c.newFlagSet("add-video")
	fs.StringVar(&form.Title, "title", "", "video title")
	fs.StringVar(&form.Description, "description", "", "video description")
	fs.StringVar(&form.URL, "url", "", "video URL")
	fs.StringVar(&form.Duration, "duration", "", "display duration, e.g. 10:30")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	if err := forms.Validate(&form); err != nil {
		fs.PrintDefaults()
		return errors.New(forms.MissingFieldsMessage)
	}

	if err := c.app.Catalog.AddVideoToCourse(ctx, courseID, form.Draft()); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "✓ Added video %q to %s\n", form.Title, course.Title)
	return nil
}

func (c *cli) enroll(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: coursehub course enroll <course-id>")
		return errUsage
	}

	user, err := c.requirePermission(security.PermEnroll)
	if err != nil {
		return err
	}
	course, found := c.app.Catalog.GetCourse(args[0])
	if !found {
		return errors.New("course not found")
	}

	if err := c.app.Catalog.EnrollInCourse(ctx, course.ID, user.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "✓ Enrolled in %s\n", course.Title)
	return nil
}

// dashboard lists the session user's own courses: taught for instructors,
// enrolled for students.
func (c *cli) dashboard() error {
	user, ok := c.app.Identity.CurrentUser()
	if !ok {
		return errNotLoggedIn
	}

	if c.authz.HasPermission(user.Role, security.PermViewInstructorDashboard) {
		fmt.Fprintf(c.out, "Courses taught by %s\n\n", user.Name)
		c.printCourses(c.app.Catalog.GetInstructorCourses(user.ID))
		return nil
	}
	fmt.Fprintf(c.out, "Courses %s is enrolled in\n\n", user.Name)
	c.printCourses(c.app.Catalog.GetEnrolledCourses(user.ID))
	return nil
}

func (c *cli) printCourses(courses []domain.Course) {
	if len(courses) == 0 {
		fmt.Fprintln(c.out, "No courses found")
		return
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tINSTRUCTOR\tVIDEOS\tSTUDENTS")
	for _, course := range courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			course.ID, course.Title, course.InstructorName, len(course.Videos), len(course.EnrolledStudents))
	}
	w.Flush()
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `CourseHub CLI

Usage:
  coursehub auth register -name NAME -email EMAIL -password PASSWORD -role instructor|student
  coursehub auth login -email EMAIL -password PASSWORD
  coursehub auth logout
  coursehub auth who

  coursehub course list
  coursehub course search TERM
  coursehub course featured [-n N]
  coursehub course show COURSE_ID
  coursehub course create -title TITLE -description TEXT [-thumbnail URL]
  coursehub course add-video COURSE_ID -title TITLE -description TEXT -url URL -duration MM:SS
  coursehub course enroll COURSE_ID

  coursehub dashboard

State is kept in the configured storage backend (STORAGE_BACKEND, default
sqlite at ~/.coursehub/state.db).
`)
}
