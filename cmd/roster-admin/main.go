// ABOUTME: Admin CLI for inspecting the roster database
// ABOUTME: Opens the SQLite file directly; the server does not need to be running

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/rosterhq/roster/internal/config"
	"github.com/rosterhq/roster/internal/store"
)

const banner = `
                 _                          _           _
 _ __ ___  ___| |_ ___ _ __       __ _  __| |_ __ ___ (_)_ __
| '__/ _ \/ __| __/ _ \ '__|____ / _' |/ _' | '_ ' _ \| | '_ \
| | | (_) \__ \ ||  __/ | |_____| (_| | (_| | | | | | | | | | |
|_|  \___/|___/\__\___|_|        \__,_|\__,_|_| |_| |_|_|_| |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "owners":
		err = cmdOwners(ctx)
	case "students":
		err = cmdStudents(ctx, args)
	case "stats":
		err = cmdStats(ctx)
	case "seed":
		err = cmdSeed(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: roster-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  owners                  List anonymous owners and when they were last seen")
	fmt.Println("  students <owner-id>     List one owner's student records")
	fmt.Println("  stats                   Show record counts per owner")
	fmt.Println("  seed <owner-id>         Insert demo records into an owner's partition")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  ROSTER_CONFIG           Config file path (default: ~/.config/roster/roster.yaml)")
	fmt.Println()
}

// getConfigPath mirrors the server's config resolution.
func getConfigPath() string {
	if envPath := os.Getenv("ROSTER_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "roster.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "roster", "roster.yaml")
}

// openStore opens the configured SQLite database.
func openStore() (*store.SQLiteStore, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path, cfg.App.ID)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}

func cmdOwners(ctx context.Context) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	owners, err := s.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("listing owners: %w", err)
	}

	if len(owners) == 0 {
		fmt.Println("No owners yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OWNER ID\tCREATED\tLAST SEEN")
	for _, o := range owners {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			o.ID,
			o.CreatedAt.Format(time.DateTime),
			o.LastSeen.Format(time.DateTime),
		)
	}
	return w.Flush()
}

func cmdStudents(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: roster-admin students <owner-id>")
	}
	ownerID := args[0]

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	students, err := s.ListStudents(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}

	if len(students) == 0 {
		fmt.Println("No students for this owner.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTUDENT ID\tPHONE\tCREATED")
	for _, st := range students {
		phone := st.Phone
		if phone == "" {
			phone = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			st.ID, st.Name, st.Email, st.StudentID, phone,
			st.CreatedAt.Format(time.DateTime),
		)
	}
	return w.Flush()
}

func cmdStats(ctx context.Context) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	owners, err := s.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("listing owners: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  Owners: ")
	fmt.Printf("%d\n", len(owners))

	total := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OWNER ID\tSTUDENTS")
	for _, o := range owners {
		count, err := s.CountStudents(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("counting students for %s: %w", o.ID, err)
		}
		total += count
		fmt.Fprintf(w, "%s\t%d\n", o.ID, count)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	green.Printf("  Total records: ")
	fmt.Printf("%d\n", total)
	return nil
}

func cmdSeed(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: roster-admin seed <owner-id>")
	}
	ownerID := args[0]

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.TouchOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("creating owner: %w", err)
	}

	demo := []*store.Student{
		{Name: "Ana Li", Email: "ana.li@example.edu", StudentID: "S100", Phone: "555-0101"},
		{Name: "Bo Chen", Email: "bo.chen@example.edu", StudentID: "S200"},
		{Name: "Carla Mendez", Email: "carla.mendez@example.edu", StudentID: "S300", Phone: "555-0103"},
	}

	green := color.New(color.FgGreen)
	for _, st := range demo {
		st.OwnerID = ownerID
		if err := s.CreateStudent(ctx, st); err != nil {
			return fmt.Errorf("seeding %s: %w", st.Name, err)
		}
		green.Printf("  ✓ ")
		fmt.Printf("%s (%s)\n", st.Name, st.ID)
	}

	fmt.Printf("\nSeeded %d records for owner %s\n", len(demo), ownerID)
	return nil
}
