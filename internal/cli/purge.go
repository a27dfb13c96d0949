package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/jisho/internal/config"
	"github.com/mrlokans/jisho/internal/importer"
)

// PurgeCommand deletes all imported dictionaries and resets derived
// configuration.
type PurgeCommand struct {
	DatabasePath string
	Yes          bool
}

func NewPurgeCommand() *PurgeCommand {
	return &PurgeCommand{}
}

func (cmd *PurgeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.BoolVar(&cmd.Yes, "yes", false, "Skip the confirmation prompt")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s purge [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete all imported dictionaries and their terms, and clear the\n")
		fmt.Fprintf(os.Stderr, "dictionary entries from every configuration profile.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *PurgeCommand) Run() error {
	fmt.Println("Dictionary Purge")
	fmt.Println("================")
	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	if !cmd.Yes {
		fmt.Print("\nThis will delete all imported dictionaries. Type 'yes' to continue: ")
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(answer) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	orch, db, err := openOrchestrator(cmd.DatabasePath, importer.Details{})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	orch.Purge(ctx)

	status := orch.Status()
	if len(status.Errors) > 0 {
		for _, line := range status.Errors {
			fmt.Printf("  [ERROR] %s\n", line.Text)
		}
		return fmt.Errorf("purge finished with errors")
	}

	fmt.Println("\nPurge complete!")
	return nil
}
