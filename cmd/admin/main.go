// Command admin is the operator tool for out-of-band record fix-ups. It
// authenticates the operator, then selects user records with the closed
// predicate language and applies allow-listed field changes or deletions.
//
// Examples:
//
//	admin -operator root@x.com -action update -where "email=old@x.com" -set "email=new@x.com"
//	admin -operator root@x.com -action delete-first -where "id=42"
//	admin -operator root@x.com -action delete-all -where "about=;name=test"
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dpavlenko/newsboard/internal/flagx"
	"github.com/dpavlenko/newsboard/internal/logging"
	"github.com/dpavlenko/newsboard/internal/server/admin"
	"github.com/dpavlenko/newsboard/internal/server/config"
	"github.com/dpavlenko/newsboard/internal/server/repositories/repomanager"
	"github.com/dpavlenko/newsboard/internal/server/services"
)

// condOps is ordered so that two-character operators match before their
// one-character prefixes.
var condOps = []admin.Op{admin.OpLe, admin.OpGe, admin.OpNe, admin.OpEq, admin.OpLt, admin.OpGt}

func parseCond(s string) (admin.Cond, error) {
	for _, op := range condOps {
		if i := strings.Index(s, string(op)); i > 0 {
			field := strings.TrimSpace(s[:i])
			value := strings.TrimSpace(s[i+len(op):])
			return admin.Cond{Field: admin.Field(field), Op: op, Value: value}, nil
		}
	}
	return admin.Cond{}, fmt.Errorf("cannot parse condition %q", s)
}

// parseWhere builds an AND of ';'-separated conditions.
func parseWhere(s string) (admin.Predicate, error) {
	parts := strings.Split(s, ";")
	conds := make([]admin.Predicate, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		cond, err := parseCond(part)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	if len(conds) == 0 {
		return nil, fmt.Errorf("empty -where")
	}
	return admin.And(conds...), nil
}

// parseSet builds a change set from ';'-separated "field=value" pairs.
func parseSet(s string) (admin.Changes, error) {
	changes := admin.Changes{}
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		field, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("cannot parse change %q", part)
		}
		changes[admin.Field(strings.TrimSpace(field))] = strings.TrimSpace(value)
	}
	return changes, nil
}

func readPassword(operator string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", operator)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	var action, where, set, operator string

	args := flagx.FilterArgs(os.Args[1:], []string{"-action", "-where", "-set", "-operator"})
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	fs.StringVar(&action, "action", "", "one of: update, delete-first, delete-all")
	fs.StringVar(&where, "where", "", "AND of ';'-separated conditions, e.g. \"email=a@x.com;name<>test\"")
	fs.StringVar(&set, "set", "", "';'-separated field changes for -action update, e.g. \"name=New Name\"")
	fs.StringVar(&operator, "operator", "", "email of the operator account")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("%v", err)
	}

	if operator == "" || action == "" || where == "" {
		log.Fatalf("-operator, -action and -where are required")
	}

	pred, err := parseWhere(where)
	if err != nil {
		log.Fatalf("%v", err)
	}

	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	sessionService := services.NewSessionService(db, rm, cfg, logger)
	adminService := services.NewAdminService(db, rm, logger)

	password, err := readPassword(operator)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if _, err := sessionService.Authenticate(ctx, operator, password); err != nil {
		log.Fatalf("authentication failed")
	}

	switch action {
	case "update":
		changes, err := parseSet(set)
		if err != nil {
			log.Fatalf("%v", err)
		}
		user, err := adminService.UpdateFirstMatch(ctx, pred, changes)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("updated user %s\n", user.ID)
	case "delete-first":
		if err := adminService.DeleteFirstMatch(ctx, pred); err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println("deleted 1 user")
	case "delete-all":
		n, err := adminService.DeleteMatching(ctx, pred)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("deleted %d users\n", n)
	default:
		log.Fatalf("unknown action %q", action)
	}
}
