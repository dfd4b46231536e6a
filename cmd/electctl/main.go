// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command electctl is the operator CLI for a quickly-vote server.
//
//	electctl [-server URL] [-key ADMIN_KEY] <command> [flags]
//
// Commands: status, tally, leader, winner, stats [-group key],
// start [-deadline RFC3339], end, reset, admin-key.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/danielhkuo/quickly-vote/auth"
)

const usage = `usage: electctl [-server URL] [-key ADMIN_KEY] <command> [flags]

commands:
  status                     phase, deadline and totals
  tally                      per-candidate results
  leader                     provisional leader
  winner                     final winner (after end)
  stats [-group key]         turnout, optionally by voter attribute
  start [-deadline RFC3339]  open voting (admin)
  end                        close voting (admin)
  reset                      clear all votes, back to setup (admin)
  admin-key                  print the admin key for ELECTION_NAME/ADMIN_KEY_SALT
`

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes one command; getenv is injected for tests
func run(ctx context.Context, args []string, getenv func(string) string, out io.Writer) error {
	fs := flag.NewFlagSet("electctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	server := fs.String("server", "", "server base URL (ELECTCTL_SERVER, default http://localhost:$PORT)")
	key := fs.String("key", "", "admin key (ADMIN_KEY)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if fs.NArg() == 0 {
		return errors.New(usage)
	}

	if *server == "" {
		*server = getenv("ELECTCTL_SERVER")
	}
	if *server == "" {
		port := getenv("PORT")
		if port == "" {
			port = "3318"
		}
		*server = "http://localhost:" + port
	}
	if *key == "" {
		*key = getenv("ADMIN_KEY")
	}
	if *key == "" {
		*key = derivedAdminKey(getenv)
	}

	c := newClient(*server, *key)
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "status":
		s, err := c.status(ctx)
		if err != nil {
			return err
		}
		renderStatus(out, s)

	case "tally":
		t, err := c.tally(ctx)
		if err != nil {
			return err
		}
		renderTally(out, t)

	case "leader":
		l, err := c.leader(ctx)
		if err != nil {
			return err
		}
		renderLeader(out, l)

	case "winner":
		l, err := c.winner(ctx)
		if err != nil {
			return err
		}
		renderLeader(out, l)

	case "stats":
		sfs := flag.NewFlagSet("stats", flag.ContinueOnError)
		sfs.SetOutput(io.Discard)
		group := sfs.String("group", "", "voter attribute to group by (gender, village, region, ...)")
		if err := sfs.Parse(cmdArgs); err != nil {
			return err
		}
		s, err := c.stats(ctx, *group)
		if err != nil {
			return err
		}
		renderStats(out, s)

	case "start":
		sfs := flag.NewFlagSet("start", flag.ContinueOnError)
		sfs.SetOutput(io.Discard)
		deadlineStr := sfs.String("deadline", "", "voting deadline (RFC3339)")
		if err := sfs.Parse(cmdArgs); err != nil {
			return err
		}
		var deadline *time.Time
		if *deadlineStr != "" {
			d, err := time.Parse(time.RFC3339, *deadlineStr)
			if err != nil {
				return fmt.Errorf("invalid -deadline: %w", err)
			}
			deadline = &d
		}
		s, err := c.start(ctx, deadline)
		if err != nil {
			return err
		}
		renderState(out, s)

	case "end":
		s, err := c.end(ctx)
		if err != nil {
			return err
		}
		renderState(out, s)

	case "reset":
		r, err := c.reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared %d votes; phase %s\n", r.Cleared, r.Phase)

	case "admin-key":
		k := derivedAdminKey(getenv)
		if k == "" {
			return errors.New("ADMIN_KEY_SALT required")
		}
		fmt.Fprintln(out, k)

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}

// derivedAdminKey computes the key from the server's own settings, or ""
func derivedAdminKey(getenv func(string) string) string {
	salt := getenv("ADMIN_KEY_SALT")
	if salt == "" {
		return ""
	}
	election := getenv("ELECTION_NAME")
	if election == "" {
		election = "general"
	}
	return auth.GenerateAdminKey(election, salt)
}
