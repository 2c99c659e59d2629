package main

import (
	"context"
	"fmt"
	"group-lab/domain"
	"group-lab/internal"
	"group-lab/moderation"
	"group-lab/repositories"
	"group-lab/runtime"
	"group-lab/services"
	"group-lab/sink"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires storage, sinks and services, then plays the membership
// scenario and prints what happened.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing bluge index...")
		_ = writer.Close()
	}()

	// 3. Sinks & services
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	index := repositories.NewMessageIndex(writer, log)
	indexSink := sink.NewIndexSink(index, log, config.IndexBatchSize, config.IndexFlushTimeout)
	defer func() {
		if err := indexSink.Flush(); err != nil {
			log.Error("Final index flush failed", "error", err)
		}
	}()

	registry := runtime.NewRegistry()
	fanout := runtime.NewFanout(log, registry, config.SinkTimeout,
		sink.NewDiskSink(messageRepository, log),
		indexSink,
		sink.NewLogSink(log),
	)

	opts := []services.GroupOption{services.WithSearchLimit(config.SearchLimit)}
	if words := config.CensoredWordList(); len(words) > 0 {
		char, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		moderator, err := moderation.NewModerator(words, char, log)
		if err != nil {
			return fmt.Errorf("moderator: %w", err)
		}
		opts = append(opts, services.WithModerator(moderator))
	}

	users := services.NewUserService(repositories.NewUserRepository(db), log)
	groups := services.NewGroupService(log, users, repositories.NewGroupRepository(db),
		messageRepository, index, registry, fanout, opts...)

	if err := users.Load(); err != nil {
		return err
	}
	if err := groups.Load(); err != nil {
		return err
	}
	log.Info("State restored", "users", len(users.ListUsers()), "groups", len(groups.ListGroups()))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return scenario(ctx, os.Stdout, users, groups, indexSink)
}

func scenario(ctx context.Context, out io.Writer, users *services.UserService, groups *services.GroupService, indexSink *sink.IndexSink) error {
	now := time.Now()
	register := func(name string, age int, location string) (*domain.User, error) {
		return users.Register(services.RegisterUserRequest{
			Username:  name,
			Birthdate: now.AddDate(-age, 0, -1),
			Location:  location,
		})
	}
	admin, err := register("Admin", 33, "City A")
	if err != nil {
		return err
	}
	user1, err := register("User1", 28, "City B")
	if err != nil {
		return err
	}
	kid, err := register("Kid", 10, "City C")
	if err != nil {
		return err
	}

	team, err := groups.CreateGroup(ctx, admin.ID, services.CreateGroupRequest{Name: "Team", MinAgeToJoin: lo.ToPtr(18)})
	if err != nil {
		return err
	}
	printStatus(out, "create", domain.Outcome{Status: fmt.Sprintf("Group %s created by %s.", team.Name, admin.Username)}, nil)

	steps := []struct {
		name string
		run  func() (domain.Outcome, error)
	}{
		{"join", func() (domain.Outcome, error) { return groups.Join(ctx, team.ID, user1.ID, domain.RoleMember) }},
		{"join", func() (domain.Outcome, error) { return groups.Join(ctx, team.ID, kid.ID, domain.RoleMember) }},
		{"promote", func() (domain.Outcome, error) { return groups.Promote(ctx, team.ID, admin.ID, user1.ID) }},
		{"demote", func() (domain.Outcome, error) { return groups.Demote(ctx, team.ID, admin.ID, user1.ID) }},
		{"post", func() (domain.Outcome, error) {
			return groups.PostMessage(ctx, team.ID, user1.ID, "Hello, how are you?")
		}},
		{"post", func() (domain.Outcome, error) {
			return groups.PostMessage(ctx, team.ID, admin.ID, "Welcome to the team, hello everyone!")
		}},
		{"post", func() (domain.Outcome, error) { return groups.PostMessage(ctx, team.ID, kid.ID, "let me in") }},
	}
	for _, step := range steps {
		outcome, err := step.run()
		printStatus(out, step.name, outcome, err)
	}

	report, err := groups.ShowInfo(team.ID)
	if err != nil {
		return err
	}
	printReport(out, report)

	if err := indexSink.Flush(); err != nil {
		return err
	}
	hits, err := groups.SearchMessages(ctx, team.ID, "hello")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSearch %q: %d hit(s)\n", "hello", len(hits))
	for _, hit := range hits {
		fmt.Fprintf(out, "  [%s %.2f] %s: %s\n", hit.Language, hit.Score, hit.Author, hit.Content)
	}

	if err := users.AddContact(admin.ID, user1.ID); err != nil {
		return err
	}
	if err := users.AddContact(user1.ID, admin.ID); err != nil {
		return err
	}
	call, err := users.Call(admin.ID, user1.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nCall %s -> %s until %s\n", admin.Username, user1.Username, call.EndsAt.Format(domain.TimestampLayout))
	return nil
}

func printStatus(out io.Writer, step string, outcome domain.Outcome, err error) {
	tag := color.New(color.FgGreen).Render(fmt.Sprintf("%-8s", step))
	if err != nil {
		tag = color.New(color.FgRed).Render(fmt.Sprintf("%-8s", step))
		if outcome.Status == "" {
			outcome.Status = err.Error()
		}
	}
	fmt.Fprintf(out, "%s %s\n", tag, outcome.Status)
}

func printReport(out io.Writer, report domain.Report) {
	fmt.Fprintln(out)
	fmt.Fprint(out, report.String())

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Member", "Role"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, m := range report.Members {
		table.Append([]string{m.Username, m.Role.String()})
	}
	table.Render()
}
