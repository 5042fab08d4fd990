// tokenctl is a developer tool for poking the notify server: it mints
// signed identity tokens and can fire a test notification at the database
// so an attached event stream shows a frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/jackc/pgx/v5"
	"github.com/olekukonko/tablewriter"

	"github.com/PY0226H/aicomm/auth"
	"github.com/PY0226H/aicomm/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tokenctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		keyFile  = flag.String("key", "", "path to the Ed25519 private key PEM")
		userID   = flag.Uint64("user", 1, "user id to embed")
		wsID     = flag.Int64("ws", 1, "workspace id to embed")
		fullname = flag.String("name", "Test User", "fullname to embed")
		email    = flag.String("email", "test@acme.org", "email to embed")
		ttl      = flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
		dbURL    = flag.String("db", "", "database URL; when set, -channel/-payload fire a NOTIFY")
		channel  = flag.String("channel", "chat_message_created", "notification channel for -db")
		payload  = flag.String("payload", "", "raw notification payload for -db")
	)
	flag.Parse()

	if *dbURL != "" {
		return sendNotify(*dbURL, *channel, *payload)
	}
	if *keyFile == "" {
		return fmt.Errorf("either -key (mint a token) or -db (send a notification) is required")
	}

	ek, err := auth.LoadEncodingKey(*keyFile, *ttl)
	if err != nil {
		return err
	}

	user := domain.User{ID: *userID, WsID: *wsID, Fullname: *fullname, Email: *email}
	token, err := ek.Sign(user)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	color.Green.Println("Token minted")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Claim", "Value"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.Append([]string{"id", strconv.FormatUint(user.ID, 10)})
	table.Append([]string{"ws_id", strconv.FormatInt(user.WsID, 10)})
	table.Append([]string{"fullname", user.Fullname})
	table.Append([]string{"email", user.Email})
	table.Append([]string{"ttl", ttl.String()})
	table.Render()

	fmt.Println(token)
	return nil
}

func sendNotify(dbURL, channel, payload string) error {
	if payload == "" {
		return fmt.Errorf("-payload is required with -db")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect %s: %w", dbURL, err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	if _, err := conn.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	color.Cyan.Printf("Sent %d bytes on %s\n", len(payload), channel)
	return nil
}
